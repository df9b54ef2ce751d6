package poi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gimbal.openfield.org/internal/geo"
)

var origin = geo.Point{Lat: 47.6062, Lon: -122.3321}

func entityAt(id string, dLat, dLon float64) Entity {
	return Entity{
		ID:   id,
		Name: "poi " + id,
		Point: geo.Point{
			Lat: origin.Lat + dLat,
			Lon: origin.Lon + dLon,
		},
	}
}

func TestIndex_UpsertAndLen(t *testing.T) {
	ix := NewIndex(nil)
	assert.Equal(t, 0, ix.Len())

	ix.Upsert(entityAt("a", 0, 0))
	ix.Upsert(entityAt("b", 0.001, 0))
	assert.Equal(t, 2, ix.Len())

	// Replacing an existing ID must not grow the index.
	ix.Upsert(entityAt("a", 0.002, 0))
	assert.Equal(t, 2, ix.Len())

	// Empty IDs are rejected.
	ix.Upsert(Entity{Point: origin})
	assert.Equal(t, 2, ix.Len())
}

func TestIndex_UpsertMovesEntity(t *testing.T) {
	ix := NewIndex(nil)
	ix.Upsert(entityAt("a", 0, 0))
	ix.Upsert(entityAt("a", 0.01, 0.01))

	// Only the new position is findable.
	near := ix.Nearest(origin, 5)
	require.Len(t, near, 1)
	assert.InDelta(t, origin.Lat+0.01, near[0].Point.Lat, 1e-9)
}

func TestIndex_Remove(t *testing.T) {
	ix := NewIndex(nil)
	ix.Upsert(entityAt("a", 0, 0))

	assert.True(t, ix.Remove("a"))
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Nearest(origin, 5))

	assert.False(t, ix.Remove("a"))
	assert.False(t, ix.Remove("missing"))
}

func TestIndex_NearestOrdering(t *testing.T) {
	ix := NewIndex(nil)
	ix.Upsert(entityAt("far", 0.01, 0))
	ix.Upsert(entityAt("near", 0.0001, 0))
	ix.Upsert(entityAt("mid", 0.001, 0))

	got := ix.Nearest(origin, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "far", got[2].ID)
}

func TestIndex_NearestLimitsCount(t *testing.T) {
	ix := NewIndex(nil)
	for i, d := range []float64{0.001, 0.002, 0.003, 0.004} {
		ix.Upsert(entityAt(string(rune('a'+i)), d, 0))
	}

	assert.Len(t, ix.Nearest(origin, 2), 2)
	assert.Len(t, ix.Nearest(origin, 10), 4)
	assert.Empty(t, ix.Nearest(origin, 0))
}

func TestIndex_Within(t *testing.T) {
	ix := NewIndex(nil)
	ix.Upsert(entityAt("inside", 0.001, 0.001))
	ix.Upsert(entityAt("outside", 0.5, 0.5))

	b := geo.BoundsFromSpan(origin, 0.01, 0.01)
	got := ix.Within(b)

	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].ID)
}

func TestIndex_WatchCoalesces(t *testing.T) {
	ix := NewIndex(nil)
	watch := ix.Watch()

	ix.Upsert(entityAt("a", 0, 0))
	ix.Upsert(entityAt("b", 0.001, 0))
	ix.Remove("a")

	// Three mutations, one pending signal.
	select {
	case <-watch:
	default:
		t.Fatal("expected a pending watch signal")
	}
	select {
	case <-watch:
		t.Fatal("signals must coalesce")
	default:
	}

	// Drained watchers get signaled again.
	ix.Upsert(entityAt("c", 0.002, 0))
	select {
	case <-watch:
	default:
		t.Fatal("expected a new signal after drain")
	}
}
