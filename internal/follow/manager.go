// Package follow runs the auto-fit session: it consumes location fixes and
// POI index changes, recomputes the zoom-to-fit on each emission, and applies
// the result to the viewport controller. A single goroutine consumes both
// inputs, so fit reads and conditional writes are naturally serialized.
package follow

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"gimbal.openfield.org/internal/camera"
	"gimbal.openfield.org/internal/clock"
	"gimbal.openfield.org/internal/geo"
	"gimbal.openfield.org/internal/metrics"
	"gimbal.openfield.org/internal/poi"
	"gimbal.openfield.org/internal/track"
	"gimbal.openfield.org/internal/viewport"
)

const defaultMaxNearby = 8

// Location is a single emission from the location source. Valid is false
// when the provider has no fix; an invalid location suppresses the dependent
// recompute but is still delivered so the session can log it.
type Location struct {
	Point geo.Point
	Valid bool
}

// LocationSource is the push-style device location provider.
type LocationSource interface {
	Locations() <-chan Location
}

// Config tunes the follow session.
type Config struct {
	// Options are the camera fit parameters.
	Options camera.Options
	// RecomputeHz caps recompute frequency; zero disables throttling.
	RecomputeHz int
	// MaxNearby is how many POIs accompany the tracked location in the
	// fit input (the fit sees MaxNearby+1 points at most).
	MaxNearby int
	// Tracking is the initial tracking toggle state.
	Tracking bool
}

// Deps are the collaborators the session wires together.
type Deps struct {
	Controller *viewport.Controller
	Index      *poi.Index
	Source     LocationSource
	Recorder   *track.Recorder // optional
	Clock      clock.Clock
	Metrics    *metrics.Metrics // optional
	Logger     *slog.Logger
}

// Manager owns the session goroutine and its state.
type Manager struct {
	controller *viewport.Controller
	index      *poi.Index
	source     LocationSource
	recorder   *track.Recorder
	clk        clock.Clock
	metrics    *metrics.Metrics
	logger     *slog.Logger

	opts      camera.Options
	maxNearby int
	limiter   *rate.Limiter

	mu       sync.Mutex
	lastFix  Location
	tracking bool

	running atomic.Bool
	started atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager validates the wiring and creates a stopped session.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	if deps.Controller == nil {
		return nil, errors.New("follow: viewport controller is required")
	}
	if deps.Index == nil {
		return nil, errors.New("follow: poi index is required")
	}
	if deps.Source == nil {
		return nil, errors.New("follow: location source is required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.MaxNearby <= 0 {
		cfg.MaxNearby = defaultMaxNearby
	}

	var limiter *rate.Limiter
	if cfg.RecomputeHz > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RecomputeHz), 1)
	}

	return &Manager{
		controller: deps.Controller,
		index:      deps.Index,
		source:     deps.Source,
		recorder:   deps.Recorder,
		clk:        deps.Clock,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With(slog.String("component", "follow")),
		opts:       cfg.Options,
		maxNearby:  cfg.MaxNearby,
		limiter:    limiter,
		tracking:   cfg.Tracking,
	}, nil
}

// Start launches the session goroutine. It is idempotent; only the first
// call has an effect. Call Stop to shut the session down.
func (m *Manager) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.running.Store(true)
	m.wg.Add(1)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	go m.run(ctx)
}

// Stop cancels the session goroutine and waits for it to exit. Safe to call
// multiple times and from any goroutine; a Stop that observes no prior Start
// is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

// Running reports whether the session goroutine is alive.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// SetTracking toggles whether location fixes move the camera. Enabling
// tracking recomputes immediately from the last known fix.
func (m *Manager) SetTracking(on bool) {
	m.mu.Lock()
	wasOn := m.tracking
	m.tracking = on
	fix := m.lastFix
	m.mu.Unlock()

	if on && !wasOn && fix.Valid {
		m.recompute(fix.Point)
	}
}

// Tracking returns the current tracking toggle state.
func (m *Manager) Tracking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracking
}

// Stats snapshots engine state for the metrics collector.
func (m *Manager) Stats() metrics.EngineStats {
	s := metrics.EngineStats{POICount: m.index.Len()}
	if m.recorder != nil {
		s.TrackPoints = m.recorder.Len()
	}
	return s
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	defer m.running.Store(false)

	watch := m.index.Watch()
	m.logger.Info("follow session started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("follow session stopped")
			return
		case loc, ok := <-m.source.Locations():
			if !ok {
				m.logger.Warn("location source closed, stopping follow session")
				return
			}
			m.onLocation(loc)
		case <-watch:
			m.onPOIChange()
		}
	}
}

// onLocation records the fix and recomputes the fit when tracking is on.
// An invalid (absent) location suppresses the recompute.
func (m *Manager) onLocation(loc Location) {
	if m.metrics != nil {
		m.metrics.LocationFixesTotal.Inc()
	}

	m.mu.Lock()
	m.lastFix = loc
	tracking := m.tracking
	m.mu.Unlock()

	if !loc.Valid {
		m.countRecompute(metrics.OutcomeSuppressed)
		return
	}
	if m.recorder != nil {
		m.recorder.Add(loc.Point, m.clk.Now())
	}
	if !tracking {
		m.countRecompute(metrics.OutcomeSuppressed)
		return
	}
	m.recompute(loc.Point)
}

// onPOIChange recomputes from the last known fix, if any.
func (m *Manager) onPOIChange() {
	m.mu.Lock()
	fix := m.lastFix
	tracking := m.tracking
	m.mu.Unlock()

	if !fix.Valid || !tracking {
		return
	}
	m.recompute(fix.Point)
}

// recompute runs one fit pass: the tracked location plus its nearest POIs
// against the current view. Only the zoom is ever written back.
func (m *Manager) recompute(location geo.Point) {
	if m.limiter != nil && !m.limiter.Allow() {
		m.countRecompute(metrics.OutcomeThrottled)
		return
	}

	view := m.controller.View()

	points := make([]geo.Point, 0, m.maxNearby+1)
	points = append(points, location)
	for _, e := range m.index.Nearest(location, m.maxNearby) {
		points = append(points, e.Point)
	}

	result := camera.Fit(points, view, m.opts)
	if !result.Changed {
		m.countRecompute(metrics.OutcomeUnchanged)
		return
	}

	m.controller.MoveTo(view.Center, result.Zoom)
	m.countRecompute(metrics.OutcomeApplied)
	if m.metrics != nil {
		m.metrics.ZoomChangeMagnitude.Observe(math.Abs(result.Zoom - view.Zoom))
	}
	m.logger.Debug("camera fit applied",
		slog.Float64("zoom", result.Zoom),
		slog.Float64("previous_zoom", view.Zoom),
		slog.Int("points", len(points)))
}

func (m *Manager) countRecompute(outcome string) {
	if m.metrics != nil {
		m.metrics.FitRecomputesTotal.WithLabelValues(outcome).Inc()
	}
}
