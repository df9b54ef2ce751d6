package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_ShortRange(t *testing.T) {
	// Two points ~111m apart along a meridian (0.001 degrees latitude).
	a := Point{Lat: 47.6062, Lon: -122.3321}
	b := Point{Lat: 47.6072, Lon: -122.3321}

	d := Distance(a, b)
	assert.InDelta(t, 111.2, d, 1.0)
}

func TestDistance_ZeroForIdenticalPoints(t *testing.T) {
	p := Point{Lat: 47.6062, Lon: -122.3321}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 47.6062, Lon: -122.3321}
	b := Point{Lat: 47.61, Lon: -122.34}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistance_LongRange(t *testing.T) {
	// Seattle to New York, roughly 3860 km. This exceeds the fast-path
	// threshold and exercises the exact formula.
	seattle := Point{Lat: 47.6062, Lon: -122.3321}
	newYork := Point{Lat: 40.7128, Lon: -74.0060}

	d := Distance(seattle, newYork)
	assert.InDelta(t, 3860000, d, 30000)
}

// haversine is an independent reference implementation for cross-checking
// both Distance code paths.
func haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func TestDistance_MatchesHaversine(t *testing.T) {
	pairs := []struct {
		name string
		a, b Point
	}{
		// Under the 0.2 degree threshold: equirectangular fast path.
		{"fast path", Point{Lat: 47.6, Lon: -122.3}, Point{Lat: 47.79, Lon: -122.3}},
		// Over the threshold: exact spherical formula.
		{"exact path", Point{Lat: 47.6, Lon: -122.3}, Point{Lat: 48.1, Lon: -121.8}},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			want := haversine(tt.a, tt.b)
			assert.InDelta(t, want, Distance(tt.a, tt.b), want*0.005)
		})
	}
}

func TestClosestPairDistance(t *testing.T) {
	tests := []struct {
		name     string
		points   []Point
		expected float64
		ok       bool
	}{
		{
			name:   "empty",
			points: nil,
			ok:     false,
		},
		{
			name:   "single point",
			points: []Point{{Lat: 47.6, Lon: -122.3}},
			ok:     false,
		},
		{
			name: "two points",
			points: []Point{
				{Lat: 47.6062, Lon: -122.3321},
				{Lat: 47.6072, Lon: -122.3321},
			},
			expected: 111.2,
			ok:       true,
		},
		{
			name: "closest pair among several",
			points: []Point{
				{Lat: 47.6062, Lon: -122.3321},
				{Lat: 47.62, Lon: -122.3321},
				{Lat: 47.60621, Lon: -122.3321}, // ~1.1m from the first
				{Lat: 47.65, Lon: -122.3321},
			},
			expected: 1.11,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ClosestPairDistance(tt.points)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, d, tt.expected*0.05)
			}
		})
	}
}

func TestClosestPairDistance_DuplicatePoints(t *testing.T) {
	p := Point{Lat: 47.6, Lon: -122.3}
	d, ok := ClosestPairDistance([]Point{p, p})
	require.True(t, ok)
	assert.Equal(t, 0.0, d)
	assert.False(t, math.IsNaN(d))
}
