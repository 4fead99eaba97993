package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type multiError interface {
	Unwrap() []error
}

// warnings flattens a persistence error into one message per failed write.
func warnings(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	if me, ok := err.(multiError); ok {
		for _, e := range me.Unwrap() {
			if e == service.ErrPersistence {
				continue
			}
			if joined, ok := e.(multiError); ok {
				for _, je := range joined.Unwrap() {
					out = append(out, je.Error())
				}
				continue
			}
			out = append(out, e.Error())
		}
	}
	if len(out) == 0 {
		return []string{err.Error()}
	}
	return out
}
