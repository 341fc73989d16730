package report

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"edfrt/internal/sched"
)

// Source supplies telemetry snapshots.
type Source interface {
	Snapshot() sched.Stats
}

// NewHandler serves telemetry:
//
//	GET /stats       JSON snapshot
//	GET /stats/text  plain-text table
//	GET /healthz     503 once the scheduler has halted
func NewHandler(src Source) http.Handler {
	r := chi.NewRouter()

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(src.Snapshot())
	})
	r.Get("/stats/text", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = WriteText(w, src.Snapshot(), false)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if src.Snapshot().Halted {
			http.Error(w, "halted", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	})

	return r
}
