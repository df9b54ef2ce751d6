// Package ops serves the operational HTTP surface: health, Prometheus
// metrics, and a development-only state dump. It carries no map data; the
// engine's inputs and outputs stay in-process.
package ops

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gimbal.openfield.org/internal/app"
)

// Server wires the ops handlers to an Application.
type Server struct {
	app *app.Application
}

// NewServer creates an ops server for the given application.
func NewServer(application *app.Application) *Server {
	return &Server{app: application}
}

// Handler returns the ops HTTP handler with logging and metrics middleware
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.HandleFunc("GET /debug/state", s.debugStateHandler)

	if s.app.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(
			s.app.Metrics.Registry,
			promhttp.HandlerOpts{},
		))
	}

	var handler http.Handler = mux
	handler = MetricsHandler(s.app.Metrics)(handler)
	handler = NewRequestLoggingMiddleware(s.app.Logger)(handler)
	return handler
}
