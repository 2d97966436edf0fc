package api

import (
	"net/http"
)

func (s *Server) handleDartStats(w http.ResponseWriter, r *http.Request) {
	if s.dart == nil || s.dart.Stats == nil {
		jsonError(w, "dart stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.dart.Stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
