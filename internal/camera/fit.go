// Package camera computes zoom-to-fit adjustments for a map viewport: given
// the points that should stay visible, it picks a zoom level that covers them
// without jarring changes, keeping the current center fixed.
package camera

import (
	"math"

	"gimbal.openfield.org/internal/geo"
)

// Insets describes viewport padding in pixels.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// View is a snapshot of the viewport state the fit computation reads.
type View struct {
	Center   geo.Point
	Zoom     float64
	WidthPx  float64
	HeightPx float64
	Padding  Insets
}

// Options control the fit behavior.
type Options struct {
	// TargetZoom is the nominal zoom level the camera settles toward.
	TargetZoom float64
	// MinZoomStep suppresses zoom changes smaller than this threshold.
	MinZoomStep float64
	// OverzoomProximity is the minimum pairwise distance in meters below
	// which the zoom ceiling is raised by one level.
	OverzoomProximity float64
	// MaxFitPoints caps how many points the fit considers.
	MaxFitPoints int
	// OutlierMinPoints is the minimum point count for outlier rejection
	// to activate.
	OutlierMinPoints int
}

// DefaultOptions returns the tuning the mobile widget shipped with.
func DefaultOptions() Options {
	return Options{
		TargetZoom:        17,
		MinZoomStep:       0.2,
		OverzoomProximity: 10,
		MaxFitPoints:      9,
		OutlierMinPoints:  6,
	}
}

// Result is the outcome of a fit computation. When Changed is false, Zoom
// holds the unchanged input zoom.
type Result struct {
	Zoom    float64
	Changed bool
}

// Fit computes the zoom level that keeps the given points visible in the
// view. The center is never moved: the fit target is the symmetric box
// around the current center large enough to contain the points, which keeps
// the user's view stable at the cost of a sometimes looser fit.
//
// An empty point set is a defined no-op. The candidate zoom is capped at
// TargetZoom+1; when the candidate lands below TargetZoom-1 with at least
// OutlierMinPoints points, the two points appended last are treated as
// probable outliers and dropped from a second pass. Tightly clustered points
// (closest pair within OverzoomProximity) may raise the ceiling by one level.
// Changes smaller than MinZoomStep are suppressed.
func Fit(points []geo.Point, v View, opts Options) Result {
	if len(points) == 0 {
		return Result{Zoom: v.Zoom}
	}

	taken := points
	if len(taken) > opts.MaxFitPoints {
		taken = taken[:opts.MaxFitPoints]
	}

	candidate := fitZoom(taken, v, opts)

	// A very low candidate with many points usually means a couple of far
	// outliers are dragging the box open. Refit without the two most
	// recently appended input points, re-capped at MaxFitPoints.
	if candidate < opts.TargetZoom-1 && len(points) >= opts.OutlierMinPoints && len(points) > 2 {
		kept := points[:len(points)-2]
		if len(kept) > opts.MaxFitPoints {
			kept = kept[:opts.MaxFitPoints]
		}
		candidate = fitZoom(kept, v, opts)
	}

	ceiling := opts.TargetZoom
	if candidate > opts.TargetZoom && candidate > v.Zoom {
		if d, ok := geo.ClosestPairDistance(taken); ok && d <= opts.OverzoomProximity {
			ceiling++
		}
	}

	var final float64
	switch {
	case candidate < opts.TargetZoom-1:
		// Fitting everything would zoom out too far; stop at the floor
		// and keep the current zoom if it is already below it.
		final = math.Min(v.Zoom, opts.TargetZoom-1)
	case candidate > ceiling:
		final = math.Max(v.Zoom, ceiling)
	default:
		final = candidate
	}

	if math.Abs(final-v.Zoom) < opts.MinZoomStep {
		return Result{Zoom: v.Zoom}
	}
	return Result{Zoom: final, Changed: true}
}

// fitZoom returns the largest zoom at which the symmetric box around the
// view center containing all points fits inside the padded viewport, capped
// at TargetZoom+1. Degrees are treated as locally equirectangular; at low
// zoom levels the Mercator distortion this ignores is visible but accepted.
func fitZoom(points []geo.Point, v View, opts Options) float64 {
	var deltaLat, deltaLon float64
	for _, p := range points {
		deltaLat = math.Max(deltaLat, math.Abs(p.Lat-v.Center.Lat))
		deltaLon = math.Max(deltaLon, math.Abs(p.Lon-v.Center.Lon))
	}

	availW := math.Max(1, v.WidthPx-v.Padding.Left-v.Padding.Right)
	availH := math.Max(1, v.HeightPx-v.Padding.Top-v.Padding.Bottom)

	zoom := opts.TargetZoom + 1
	if span := 2 * deltaLon; span > 0 {
		zoom = math.Min(zoom, math.Log2(availW*360/(geo.TileSize*span)))
	}
	if span := 2 * deltaLat; span > 0 {
		cosLat := math.Cos(v.Center.Lat * math.Pi / 180)
		zoom = math.Min(zoom, math.Log2(availH*360*cosLat/(geo.TileSize*span)))
	}
	return zoom
}
