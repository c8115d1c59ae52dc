package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/go-chi/chi/v5"
)

// handleRunReport returns the audit events of a finished run as JSON, or as
// the Markdown report when the client accepts text/markdown.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "runID"))
	if job == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if !snap.Status.Done() {
		jsonError(w, "run has not finished", http.StatusConflict)
		return
	}

	events := job.Events()
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		sum := audit.Summary{
			Title:     snap.Title,
			SourceDir: s.cfg.SourceDir,
			OutputDir: s.cfg.OutputDir,
			MapFile:   s.cfg.MapFile,
			Topics:    snap.Progress.TotalTopics,
			Started:   snap.CreatedAt,
			Duration:  snap.UpdatedAt.Sub(snap.CreatedAt),
		}
		for _, e := range events {
			if e.Kind == audit.SourceMissing {
				sum.Placeholders++
			}
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := audit.WriteReport(w, sum, events); err != nil {
			s.log.Error("write report", "run_id", snap.ID, "error", err)
		}
		return
	}

	counts := make(map[audit.Kind]int, len(audit.Kinds))
	for _, k := range audit.Kinds {
		counts[k] = 0
	}
	for _, e := range events {
		counts[e.Kind]++
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":      snap.ID,
		"status":      snap.Status,
		"finished_at": snap.UpdatedAt.Format(time.RFC3339),
		"counts":      counts,
		"events":      events,
	})
}
