package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/ditagen/internal/parser"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":    s.orchestrator.QueueDepth(),
		"max_queue":      s.cfg.MaxQueueSize,
		"source_formats": parser.SourceExtensions,
	})
}
