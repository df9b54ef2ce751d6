// Package geo provides the coordinate primitives shared by the camera,
// viewport, and POI packages: WGS84 points, bounding boxes, and distance
// calculations.
package geo

import "math"

const (
	// EarthRadiusMeters is RADIUS_OF_EARTH_IN_KM * 1000
	EarthRadiusMeters = 6371010.0

	// MetersPerDegreeLat is the length of one degree of latitude.
	MetersPerDegreeLat = 111319.9
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance calculates the distance in meters between two points on the Earth.
// For short distances (under ~22km), it uses an Equirectangular approximation
// to save CPU cycles. For longer distances, it falls back to the exact formula.
func Distance(a, b Point) float64 {
	// Fast path: coordinate differences less than 0.2 degrees (~22km).
	// Bypasses Atan2, Pow, and most of the Sin/Cos calls for nearly all
	// viewport-scale queries.
	if math.Abs(b.Lat-a.Lat) < 0.2 && math.Abs(b.Lon-a.Lon) < 0.2 {
		lat1Rad := a.Lat * (math.Pi / 180)
		lat2Rad := b.Lat * (math.Pi / 180)
		dLatRad := (b.Lat - a.Lat) * (math.Pi / 180)
		dLonRad := (b.Lon - a.Lon) * (math.Pi / 180)

		x := dLonRad * math.Cos((lat1Rad+lat2Rad)/2)
		y := dLatRad
		return EarthRadiusMeters * math.Sqrt(x*x+y*y)
	}

	lat1Rad := a.Lat * (math.Pi / 180)
	lon1Rad := a.Lon * (math.Pi / 180)
	lat2Rad := b.Lat * (math.Pi / 180)
	lon2Rad := b.Lon * (math.Pi / 180)

	deltaLon := lon2Rad - lon1Rad

	y := math.Sqrt(math.Pow(math.Cos(lat2Rad)*math.Sin(deltaLon), 2) +
		math.Pow(math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon), 2))
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	return EarthRadiusMeters * math.Atan2(y, x)
}

// ClosestPairDistance returns the minimum pairwise distance in meters among
// the given points. The second return value is false when fewer than two
// points are supplied. Brute force: the call sites never pass more than a
// handful of points, so O(n²) beats any spatial index here.
func ClosestPairDistance(points []Point) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	minDist := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		for j := i + 1; j < len(points); j++ {
			if d := Distance(points[i], points[j]); d < minDist {
				minDist = d
			}
		}
	}
	return minDist, true
}
