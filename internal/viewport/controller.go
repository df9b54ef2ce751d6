// Package viewport owns the camera state of the map widget and translates
// user gestures into camera mutations and listener callbacks. It is the
// single writer of center and zoom; everything else observes.
package viewport

import (
	"log/slog"
	"math"
	"sync"

	"gimbal.openfield.org/internal/camera"
	"gimbal.openfield.org/internal/geo"
	"gimbal.openfield.org/internal/metrics"
)

const (
	defaultMaxZoom     = 21
	defaultTapRadiusPx = 24
)

// Listener receives viewport events. Callbacks are invoked synchronously on
// the goroutine that triggered the mutation, outside the controller lock.
type Listener interface {
	OnDragStart()
	OnDragEnd(center geo.Point)
	OnTap(point geo.Point, hit geo.Bounds)
	OnCameraChange(center geo.Point, zoom float64)
}

// Config is the initial viewport state.
type Config struct {
	Center      geo.Point
	Zoom        float64
	MinZoom     float64
	MaxZoom     float64
	WidthPx     float64
	HeightPx    float64
	Padding     camera.Insets
	TapRadiusPx float64
}

// Controller is the viewport state holder. All methods are safe for
// concurrent use; callers that read and then conditionally write should do
// so from a single goroutine, as the follow session does.
type Controller struct {
	mu          sync.Mutex
	center      geo.Point
	zoom        float64
	minZoom     float64
	maxZoom     float64
	widthPx     float64
	heightPx    float64
	padding     camera.Insets
	tapRadiusPx float64
	dragging    bool
	listeners   []Listener

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewController creates a controller from the initial config.
// A nil metrics instance disables gesture counting.
func NewController(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Controller {
	if cfg.MaxZoom <= 0 {
		cfg.MaxZoom = defaultMaxZoom
	}
	if cfg.TapRadiusPx <= 0 {
		cfg.TapRadiusPx = defaultTapRadiusPx
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		center:      cfg.Center,
		minZoom:     cfg.MinZoom,
		maxZoom:     cfg.MaxZoom,
		widthPx:     cfg.WidthPx,
		heightPx:    cfg.HeightPx,
		padding:     cfg.Padding,
		tapRadiusPx: cfg.TapRadiusPx,
		logger:      logger.With(slog.String("component", "viewport")),
		metrics:     m,
	}
	c.zoom = c.clampZoom(cfg.Zoom)
	return c
}

// AddListener registers a listener for viewport events.
func (c *Controller) AddListener(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Center returns the current camera center.
func (c *Controller) Center() geo.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Zoom returns the current zoom level.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// View returns a snapshot usable as camera fit input.
func (c *Controller) View() camera.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return camera.View{
		Center:   c.center,
		Zoom:     c.zoom,
		WidthPx:  c.widthPx,
		HeightPx: c.heightPx,
		Padding:  c.padding,
	}
}

// MoveTo moves the camera to the given center and zoom. Zoom is clamped to
// the configured range. Listeners are notified only when state changed.
func (c *Controller) MoveTo(center geo.Point, zoom float64) {
	c.mu.Lock()
	zoom = c.clampZoom(zoom)
	changed := center != c.center || zoom != c.zoom
	c.center = center
	c.zoom = zoom
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l.OnCameraChange(center, zoom)
	}
}

// SetZoom changes the zoom level, keeping the center fixed.
func (c *Controller) SetZoom(zoom float64) {
	c.MoveTo(c.Center(), zoom)
}

// SetSize updates the viewport pixel dimensions.
func (c *Controller) SetSize(widthPx, heightPx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.widthPx = widthPx
	c.heightPx = heightPx
}

// SetPadding updates the viewport padding insets.
func (c *Controller) SetPadding(p camera.Insets) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.padding = p
}

// DragBy translates a drag gesture by (dxPx, dyPx) screen pixels into a
// center shift. The first delta of a gesture fires OnDragStart; the gesture
// ends with EndDrag.
func (c *Controller) DragBy(dxPx, dyPx float64) {
	c.mu.Lock()
	started := !c.dragging
	c.dragging = true

	mpp := geo.MetersPerPixel(c.center.Lat, c.zoom)
	latChange := dyPx * mpp / geo.MetersPerDegreeLat
	lonChange := -dxPx * mpp / (geo.MetersPerDegreeLat * math.Cos(c.center.Lat*math.Pi/180))

	c.center.Lat += latChange
	c.center.Lon += lonChange
	center := c.center
	zoom := c.zoom
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if started {
		c.countGesture("drag")
		for _, l := range listeners {
			l.OnDragStart()
		}
	}
	for _, l := range listeners {
		l.OnCameraChange(center, zoom)
	}
}

// EndDrag completes a drag gesture and fires OnDragEnd with the final center.
// Calling it without a preceding drag is a no-op.
func (c *Controller) EndDrag() {
	c.mu.Lock()
	wasDragging := c.dragging
	c.dragging = false
	center := c.center
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if !wasDragging {
		return
	}
	for _, l := range listeners {
		l.OnDragEnd(center)
	}
}

// Dragging reports whether a drag gesture is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// PinchBy applies a pinch-zoom gesture with the given linear scale factor.
// A scale of 2 zooms in one level, 0.5 zooms out one level.
func (c *Controller) PinchBy(scale float64) {
	if scale <= 0 {
		return
	}
	c.countGesture("pinch")
	c.mu.Lock()
	zoom := c.clampZoom(c.zoom + math.Log2(scale))
	changed := zoom != c.zoom
	c.zoom = zoom
	center := c.center
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l.OnCameraChange(center, zoom)
	}
}

// Tap resolves a tap at screen position (xPx, yPx) to a geographic point and
// a hit bounding box sized by the tap radius at the current resolution, and
// fires OnTap.
func (c *Controller) Tap(xPx, yPx float64) (geo.Point, geo.Bounds) {
	c.countGesture("tap")
	c.mu.Lock()
	worldX, worldY := geo.WorldCoordinates(c.center, c.zoom)
	worldX += xPx - c.widthPx/2
	worldY += yPx - c.heightPx/2
	point := geo.PointFromWorld(worldX, worldY, c.zoom)
	hitRadius := c.tapRadiusPx * geo.MetersPerPixel(point.Lat, c.zoom)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	hit := geo.BoundsFromRadius(point, hitRadius)
	for _, l := range listeners {
		l.OnTap(point, hit)
	}
	return point, hit
}

// clampZoom constrains zoom to [minZoom, maxZoom].
// Caller must hold c.mu (or the controller must not yet be shared).
func (c *Controller) clampZoom(zoom float64) float64 {
	return math.Max(c.minZoom, math.Min(zoom, c.maxZoom))
}

// snapshotListeners copies the listener slice so callbacks run outside the
// lock. Caller must hold c.mu.
func (c *Controller) snapshotListeners() []Listener {
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func (c *Controller) countGesture(kind string) {
	if c.metrics != nil {
		c.metrics.GesturesTotal.WithLabelValues(kind).Inc()
	}
}
