package geo

import "math"

// Bounds represents a bounding box with min/max latitude and longitude.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundsFromRadius calculates a bounding box extending the given distance in
// meters from the center point on each axis.
func BoundsFromRadius(center Point, distance float64) Bounds {
	latRadius := EarthRadiusMeters
	lonRadius := math.Cos(center.Lat*math.Pi/180) * EarthRadiusMeters

	latOffset := (distance / latRadius) * (180 / math.Pi)
	lonOffset := (distance / lonRadius) * (180 / math.Pi)

	return BoundsFromSpan(center, 2*latOffset, 2*lonOffset)
}

// BoundsFromSpan calculates a bounding box centered on the point with the
// given total latitude/longitude spans in degrees.
func BoundsFromSpan(center Point, latSpan, lonSpan float64) Bounds {
	return Bounds{
		MinLat: center.Lat - latSpan/2,
		MaxLat: center.Lat + latSpan/2,
		MinLon: center.Lon - lonSpan/2,
		MaxLon: center.Lon + lonSpan/2,
	}
}

// BoundsFromPoints returns the smallest box containing all points. The second
// return value is false for an empty slice.
func BoundsFromPoints(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: points[0].Lat,
		MaxLat: points[0].Lat,
		MinLon: points[0].Lon,
		MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}
	return b, true
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// LatSpan returns the box height in degrees.
func (b Bounds) LatSpan() float64 { return b.MaxLat - b.MinLat }

// LonSpan returns the box width in degrees.
func (b Bounds) LonSpan() float64 { return b.MaxLon - b.MinLon }

// Contains reports whether the point lies inside the box (edges inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Intersects returns false only if the two boxes have no overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return !(b.MaxLat < o.MinLat ||
		b.MinLat > o.MaxLat ||
		b.MaxLon < o.MinLon ||
		b.MinLon > o.MaxLon)
}

// Expand grows the box by a fraction of its span on every side.
// Expand(0.1) on a 20x20 degree box adds 2 degrees to each edge.
func (b Bounds) Expand(fraction float64) Bounds {
	dLat := b.LatSpan() * fraction
	dLon := b.LonSpan() * fraction
	return Bounds{
		MinLat: b.MinLat - dLat,
		MaxLat: b.MaxLat + dLat,
		MinLon: b.MinLon - dLon,
		MaxLon: b.MaxLon + dLon,
	}
}
