package slotwatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/slotwatch/shield"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/journal"
)

// Status tracks the progress of a run for the status endpoint. The poll
// loop writes it; HTTP handlers only read snapshots.
type Status struct {
	mu      sync.Mutex
	snap    StatusSnapshot
	journal *journal.Journal
}

// StatusSnapshot is the JSON body of GET /status.
type StatusSnapshot struct {
	Profile     string          `json:"profile"`
	StartedAt   time.Time       `json:"started_at"`
	Cycles      int             `json:"cycles"`
	LastCheck   time.Time       `json:"last_check,omitzero"`
	LastOutcome journal.Outcome `json:"last_outcome,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Found       bool            `json:"found"`
	Outcomes    map[string]int  `json:"outcomes,omitempty"`
}

// NewStatus creates a tracker for profile. j may be nil.
func NewStatus(profile string, j *journal.Journal) *Status {
	return &Status{
		snap:    StatusSnapshot{Profile: profile, StartedAt: time.Now()},
		journal: j,
	}
}

func (s *Status) update(seq int, o journal.Outcome, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Cycles = seq
	s.snap.LastCheck = at
	s.snap.LastOutcome = o
	s.snap.LastError = ""
	if err != nil {
		s.snap.LastError = err.Error()
	}
	if o == journal.Available {
		s.snap.Found = true
	}
}

// Snapshot returns the current state, with the journal's outcome counts
// when a journal is attached.
func (s *Status) Snapshot(ctx context.Context) StatusSnapshot {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()

	if s.journal != nil {
		if sum, err := s.journal.Summary(ctx, snap.Profile); err == nil {
			snap.Outcomes = make(map[string]int, len(sum.Outcomes))
			for o, n := range sum.Outcomes {
				snap.Outcomes[string(o)] = n
			}
		}
	}
	return snap
}

// Handler serves GET /healthz and GET /status.
func (s *Status) Handler(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range shield.Stack(logger) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Snapshot(r.Context()))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
