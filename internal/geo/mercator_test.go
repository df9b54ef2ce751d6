package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldCoordinates_Origin(t *testing.T) {
	// (0, 0) sits at the center of the world map.
	x, y := WorldCoordinates(Point{}, 0)
	assert.InDelta(t, TileSize/2, x, 1e-9)
	assert.InDelta(t, TileSize/2, y, 1e-9)
}

func TestWorldCoordinates_Roundtrip(t *testing.T) {
	points := []Point{
		{Lat: 47.6062, Lon: -122.3321},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 0.001, Lon: 0.001},
		{Lat: 78.2, Lon: 15.6},
	}
	for _, p := range points {
		for _, zoom := range []float64{0, 5, 12.5, 18} {
			x, y := WorldCoordinates(p, zoom)
			back := PointFromWorld(x, y, zoom)
			assert.InDelta(t, p.Lat, back.Lat, 1e-9)
			assert.InDelta(t, p.Lon, back.Lon, 1e-9)
		}
	}
}

func TestMetersPerPixel(t *testing.T) {
	// At the equator and zoom 0 one pixel covers circumference/256 meters.
	assert.InDelta(t, 156543.03, MetersPerPixel(0, 0), 0.5)

	// Each zoom level halves the resolution.
	assert.InDelta(t, MetersPerPixel(47.6, 10)/2, MetersPerPixel(47.6, 11), 1e-6)

	// Resolution shrinks with latitude.
	assert.Less(t, MetersPerPixel(60, 10), MetersPerPixel(0, 10))
}

func TestPixelsPerDegree(t *testing.T) {
	// At zoom 0 the 256px world spans 360 degrees of longitude.
	assert.InDelta(t, 256.0/360.0, PixelsPerDegreeLon(0), 1e-9)

	// The local latitude density is the longitude density stretched by
	// 1/cos(lat).
	lat := 47.6
	expected := PixelsPerDegreeLon(10) / math.Cos(lat*math.Pi/180)
	assert.InDelta(t, expected, PixelsPerDegreeLat(lat, 10), 1e-9)
}
