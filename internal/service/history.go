package service

import (
	"sync"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

const DefaultHistoryCapacity = 1000

// experienceHistory is a fixed-capacity FIFO. When full, the oldest entry is evicted.
type experienceHistory struct {
	mu    sync.RWMutex
	buf   []domain.Experience
	start int
	size  int
}

func newExperienceHistory(capacity int) *experienceHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &experienceHistory{buf: make([]domain.Experience, capacity)}
}

func (h *experienceHistory) append(e domain.Experience) {
	h.mu.Lock()
	defer h.mu.Unlock()

	end := (h.start + h.size) % len(h.buf)
	h.buf[end] = e
	if h.size < len(h.buf) {
		h.size++
		return
	}
	h.start = (h.start + 1) % len(h.buf)
}

// items returns the history oldest first.
func (h *experienceHistory) items() []domain.Experience {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Experience, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *experienceHistory) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *experienceHistory) capacity() int {
	return len(h.buf)
}
