package viewport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gimbal.openfield.org/internal/geo"
	"gimbal.openfield.org/internal/metrics"
)

var testCenter = geo.Point{Lat: 47.6062, Lon: -122.3321}

func newTestController() *Controller {
	return NewController(Config{
		Center:   testCenter,
		Zoom:     16,
		MinZoom:  2,
		MaxZoom:  20,
		WidthPx:  1000,
		HeightPx: 800,
	}, nil, nil)
}

// recordingListener captures every callback for assertions.
type recordingListener struct {
	dragStarts    int
	dragEnds      []geo.Point
	taps          []geo.Point
	tapBounds     []geo.Bounds
	cameraChanges int
	lastCenter    geo.Point
	lastZoom      float64
}

func (l *recordingListener) OnDragStart() { l.dragStarts++ }

func (l *recordingListener) OnDragEnd(center geo.Point) {
	l.dragEnds = append(l.dragEnds, center)
}

func (l *recordingListener) OnTap(p geo.Point, hit geo.Bounds) {
	l.taps = append(l.taps, p)
	l.tapBounds = append(l.tapBounds, hit)
}

func (l *recordingListener) OnCameraChange(center geo.Point, zoom float64) {
	l.cameraChanges++
	l.lastCenter = center
	l.lastZoom = zoom
}

func TestMoveTo_ClampsZoom(t *testing.T) {
	c := newTestController()

	c.MoveTo(testCenter, 25)
	assert.Equal(t, 20.0, c.Zoom())

	c.MoveTo(testCenter, -3)
	assert.Equal(t, 2.0, c.Zoom())
}

func TestMoveTo_NotifiesOnChangeOnly(t *testing.T) {
	c := newTestController()
	l := &recordingListener{}
	c.AddListener(l)

	c.MoveTo(testCenter, 17)
	assert.Equal(t, 1, l.cameraChanges)
	assert.Equal(t, 17.0, l.lastZoom)

	// Same state again: no notification.
	c.MoveTo(testCenter, 17)
	assert.Equal(t, 1, l.cameraChanges)
}

func TestSetZoom_KeepsCenter(t *testing.T) {
	c := newTestController()
	c.SetZoom(18)

	assert.Equal(t, 18.0, c.Zoom())
	assert.Equal(t, testCenter, c.Center())
}

func TestDragBy_MovesCenter(t *testing.T) {
	c := newTestController()

	before := c.Center()
	c.DragBy(0, 10)
	after := c.Center()
	assert.Greater(t, after.Lat, before.Lat, "vertical drag shifts latitude")
	assert.Equal(t, before.Lon, after.Lon)

	before = after
	c.DragBy(10, 0)
	after = c.Center()
	assert.Less(t, after.Lon, before.Lon, "horizontal drag shifts longitude")
	assert.Equal(t, before.Lat, after.Lat)
}

func TestDragLifecycle(t *testing.T) {
	c := newTestController()
	l := &recordingListener{}
	c.AddListener(l)

	c.DragBy(5, 5)
	c.DragBy(5, 5)
	assert.Equal(t, 1, l.dragStarts, "one gesture fires one drag start")
	assert.True(t, c.Dragging())

	c.EndDrag()
	require.Len(t, l.dragEnds, 1)
	assert.Equal(t, c.Center(), l.dragEnds[0])
	assert.False(t, c.Dragging())

	// EndDrag without a drag is a no-op.
	c.EndDrag()
	assert.Len(t, l.dragEnds, 1)
}

func TestPinchBy(t *testing.T) {
	c := newTestController()

	c.PinchBy(2)
	assert.InDelta(t, 17, c.Zoom(), 1e-9)

	c.PinchBy(0.5)
	assert.InDelta(t, 16, c.Zoom(), 1e-9)

	// Clamped at MaxZoom.
	c.PinchBy(1 << 10)
	assert.Equal(t, 20.0, c.Zoom())

	// Invalid scale is ignored.
	c.PinchBy(0)
	assert.Equal(t, 20.0, c.Zoom())
}

func TestTap_AtScreenCenterResolvesToMapCenter(t *testing.T) {
	c := newTestController()
	l := &recordingListener{}
	c.AddListener(l)

	point, hit := c.Tap(500, 400)

	assert.InDelta(t, testCenter.Lat, point.Lat, 1e-6)
	assert.InDelta(t, testCenter.Lon, point.Lon, 1e-6)
	assert.True(t, hit.Contains(point))

	require.Len(t, l.taps, 1)
	assert.Equal(t, point, l.taps[0])
	assert.Equal(t, hit, l.tapBounds[0])
}

func TestTap_OffCenterResolvesEastward(t *testing.T) {
	c := newTestController()

	point, _ := c.Tap(600, 400)
	assert.Greater(t, point.Lon, testCenter.Lon)
	assert.InDelta(t, testCenter.Lat, point.Lat, 1e-6)
}

func TestGestureMetrics(t *testing.T) {
	m := metrics.New()
	c := NewController(Config{
		Center:  testCenter,
		Zoom:    16,
		WidthPx: 1000, HeightPx: 800,
	}, nil, m)

	c.DragBy(1, 1)
	c.DragBy(1, 1)
	c.EndDrag()
	c.PinchBy(2)
	c.Tap(500, 400)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GesturesTotal.WithLabelValues("drag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GesturesTotal.WithLabelValues("pinch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GesturesTotal.WithLabelValues("tap")))
}
