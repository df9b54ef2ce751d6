// Package metrics provides Prometheus metrics for the gimbal camera engine.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recompute outcomes recorded by FitRecomputesTotal.
const (
	OutcomeApplied    = "applied"
	OutcomeUnchanged  = "unchanged"
	OutcomeThrottled  = "throttled"
	OutcomeSuppressed = "suppressed"
)

// EngineStats is a point-in-time snapshot of engine state collected by the
// background stats collector.
type EngineStats struct {
	POICount    int
	TrackPoints int
}

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics for the ops listener
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Camera engine metrics
	FitRecomputesTotal  *prometheus.CounterVec
	ZoomChangeMagnitude prometheus.Histogram
	GesturesTotal       *prometheus.CounterVec
	POIIndexSize        prometheus.Gauge
	TrackPoints         prometheus.Gauge
	LocationFixesTotal  prometheus.Counter

	// logger for error reporting
	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	// cancel stops the engine stats collector goroutine
	cancel context.CancelFunc

	// wg tracks the stats collector goroutine for graceful shutdown
	wg sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gimbal_http_requests_total",
			Help: "Total number of HTTP requests to the ops listener",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gimbal_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	fitRecomputesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gimbal_fit_recomputes_total",
			Help: "Auto-fit recomputations by outcome",
		},
		[]string{"outcome"},
	)

	zoomChangeMagnitude := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gimbal_zoom_change_magnitude",
		Help:    "Absolute zoom level delta of applied camera changes",
		Buckets: []float64{0.2, 0.5, 1, 2, 3, 5, 8},
	})

	gesturesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gimbal_gestures_total",
			Help: "User gestures translated by the viewport controller",
		},
		[]string{"kind"},
	)

	poiIndexSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gimbal_poi_index_size",
		Help: "Number of points of interest currently indexed",
	})

	trackPoints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gimbal_track_points",
		Help: "Number of location fixes held by the track recorder",
	})

	locationFixesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gimbal_location_fixes_total",
		Help: "Total location fixes received from the location source",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		fitRecomputesTotal,
		zoomChangeMagnitude,
		gesturesTotal,
		poiIndexSize,
		trackPoints,
		locationFixesTotal,
	)

	return &Metrics{
		Registry:            registry,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		FitRecomputesTotal:  fitRecomputesTotal,
		ZoomChangeMagnitude: zoomChangeMagnitude,
		GesturesTotal:       gesturesTotal,
		POIIndexSize:        poiIndexSize,
		TrackPoints:         trackPoints,
		LocationFixesTotal:  locationFixesTotal,
		logger:              logger,
	}
}

// StartEngineStatsCollector starts a goroutine that periodically snapshots
// engine state via the stats callback and updates the corresponding gauges.
// This method is idempotent - calling it multiple times has no effect after
// the first call. Call Shutdown() to stop the collector.
func (m *Metrics) StartEngineStatsCollector(stats func() EngineStats, interval time.Duration) {
	if stats == nil {
		return
	}

	// Prevent spawning multiple collectors
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic in engine stats collector", "error", r)
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s := stats()
				m.POIIndexSize.Set(float64(s.POICount))
				m.TrackPoints.Set(float64(s.TrackPoints))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the engine stats collector goroutine and waits for it to
// exit. This method is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
