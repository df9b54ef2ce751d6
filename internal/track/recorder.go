// Package track records the breadcrumb trail of device location fixes and
// exports it as an encoded polyline or GeoJSON. The recorder is bounded and
// purely in-memory; exports write to a caller-supplied writer.
package track

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/twpayne/go-polyline"
	"gimbal.openfield.org/internal/geo"
)

const defaultCapacity = 1000

// Fix is a single recorded location sample.
type Fix struct {
	Point geo.Point
	Time  time.Time
}

// Recorder holds a bounded trail of fixes; the oldest fix is dropped once
// capacity is reached.
type Recorder struct {
	mu       sync.Mutex
	fixes    []Fix
	capacity int
	logger   *slog.Logger
}

// NewRecorder creates a recorder with the given capacity.
// Non-positive capacity falls back to the default.
func NewRecorder(capacity int, logger *slog.Logger) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		capacity: capacity,
		logger:   logger.With(slog.String("component", "track_recorder")),
	}
}

// Add appends a fix, evicting the oldest when the recorder is full.
func (r *Recorder) Add(p geo.Point, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fixes) == r.capacity {
		copy(r.fixes, r.fixes[1:])
		r.fixes = r.fixes[:len(r.fixes)-1]
	}
	r.fixes = append(r.fixes, Fix{Point: p, Time: t})
}

// Len returns the number of recorded fixes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixes)
}

// Fixes returns a copy of the recorded trail, oldest first.
func (r *Recorder) Fixes() []Fix {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Fix, len(r.fixes))
	copy(out, r.fixes)
	return out
}

// Clear discards all recorded fixes.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = r.fixes[:0]
}

// EncodePolyline returns the trail as a Google encoded polyline.
func (r *Recorder) EncodePolyline() []byte {
	r.mu.Lock()
	coords := make([][]float64, len(r.fixes))
	for i, f := range r.fixes {
		coords[i] = []float64{f.Point.Lat, f.Point.Lon}
	}
	r.mu.Unlock()
	return polyline.EncodeCoords(coords)
}

// geoJSONFeature is the export shape: a single LineString feature carrying
// the sample count and time range as properties.
type geoJSONFeature struct {
	Type       string         `json:"type"`
	Geometry   geoJSONLine    `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoJSONLine struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// WriteGeoJSON writes the trail as a GeoJSON LineString feature to w,
// optionally gzip-compressed. Coordinates follow the GeoJSON (lon, lat)
// order.
func (r *Recorder) WriteGeoJSON(w io.Writer, compress bool) error {
	fixes := r.Fixes()

	coords := make([][]float64, len(fixes))
	for i, f := range fixes {
		coords[i] = []float64{f.Point.Lon, f.Point.Lat}
	}

	props := map[string]any{"pointCount": len(fixes)}
	if len(fixes) > 0 {
		props["startTime"] = fixes[0].Time.UTC().Format(time.RFC3339)
		props["endTime"] = fixes[len(fixes)-1].Time.UTC().Format(time.RFC3339)
	}

	feature := geoJSONFeature{
		Type: "Feature",
		Geometry: geoJSONLine{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: props,
	}

	if compress {
		gz := gzip.NewWriter(w)
		if err := json.NewEncoder(gz).Encode(feature); err != nil {
			_ = gz.Close()
			return fmt.Errorf("failed to encode track GeoJSON: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
		return nil
	}

	if err := json.NewEncoder(w).Encode(feature); err != nil {
		return fmt.Errorf("failed to encode track GeoJSON: %w", err)
	}
	return nil
}
