package service

import (
	"context"
	"errors"
	"sync"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"go.uber.org/zap"
)

type mockKnowledgeLog struct {
	mu          sync.Mutex
	triples     []domain.Triple
	experiences []domain.Experience
	failWrites  bool
	pingErr     error
}

var errMockWrite = errors.New("mock write failure")

func newMockKnowledgeLog() *mockKnowledgeLog {
	return &mockKnowledgeLog{}
}

func (m *mockKnowledgeLog) AppendTriple(ctx context.Context, t *domain.Triple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errMockWrite
	}
	t.ID = int64(len(m.triples) + 1)
	m.triples = append(m.triples, *t)
	return nil
}

func (m *mockKnowledgeLog) ListTriples(ctx context.Context) ([]domain.Triple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Triple(nil), m.triples...), nil
}

func (m *mockKnowledgeLog) CountTriples(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.triples)), nil
}

func (m *mockKnowledgeLog) AppendExperience(ctx context.Context, e *domain.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errMockWrite
	}
	e.ID = int64(len(m.experiences) + 1)
	m.experiences = append(m.experiences, *e)
	return nil
}

func (m *mockKnowledgeLog) ListExperiences(ctx context.Context, actorID string, limit int) ([]domain.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Experience
	for i := len(m.experiences) - 1; i >= 0 && len(out) < limit; i-- {
		if actorID == "" || m.experiences[i].ActorID == actorID {
			out = append(out, m.experiences[i])
		}
	}
	return out, nil
}

func (m *mockKnowledgeLog) CountExperiences(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.experiences)), nil
}

func (m *mockKnowledgeLog) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}
