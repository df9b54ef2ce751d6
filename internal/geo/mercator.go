package geo

import "math"

const (
	// TileSize is the edge length in pixels of a Web Mercator tile.
	TileSize = 256

	// earthCircumference is measured at the equator, in meters.
	earthCircumference = 40075016.686
)

// WorldCoordinates converts a point to Web Mercator world pixel coordinates
// at the given (possibly fractional) zoom level.
func WorldCoordinates(p Point, zoom float64) (x, y float64) {
	n := math.Pow(2, zoom)
	latRad := p.Lat * math.Pi / 180
	x = TileSize * n * (p.Lon + 180) / 360
	y = TileSize * n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// PointFromWorld converts Web Mercator world pixel coordinates back to a
// geographic point at the given zoom level.
func PointFromWorld(x, y, zoom float64) Point {
	n := math.Pow(2, zoom)
	lon := (x/(TileSize*n))*360 - 180
	latRad := math.Pi * (1 - 2*y/(TileSize*n))
	lat := 180 / math.Pi * math.Atan(math.Sinh(latRad))
	return Point{Lat: lat, Lon: lon}
}

// MetersPerPixel returns the ground resolution at the given latitude and
// zoom level.
func MetersPerPixel(latitude, zoom float64) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / (math.Pow(2, zoom) * TileSize)
}

// PixelsPerDegreeLon returns the horizontal pixel density at the given zoom.
// Mercator x is linear in longitude, so this is latitude independent.
func PixelsPerDegreeLon(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom) / 360
}

// PixelsPerDegreeLat returns the local vertical pixel density at the given
// latitude and zoom, treating the projection as locally equirectangular.
func PixelsPerDegreeLat(latitude, zoom float64) float64 {
	return PixelsPerDegreeLon(zoom) / math.Cos(latitude*math.Pi/180)
}
