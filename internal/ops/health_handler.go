package ops

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler verifies the engine is wired and the follow session is
// running. It returns 503 Service Unavailable until the session goroutine
// is alive.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// 1. Liveness Check: Is the basic infrastructure initialized?
	if s.app == nil || s.app.Controller == nil || s.app.Follow == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "unavailable",
			Detail: "engine not initialized",
		})
		return
	}

	// 2. Readiness Check: Is the follow session consuming emissions?
	if !s.app.Follow.Running() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "starting",
			Detail: "follow session is not running",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status: "ok",
	})
}
