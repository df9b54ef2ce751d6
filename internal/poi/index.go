// Package poi maintains the in-memory spatial index of points of interest
// and feeds the short nearby list the camera keeps visible.
package poi

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/tidwall/rtree"
	"gimbal.openfield.org/internal/geo"
)

// Entity is a point of interest. The value is comparable so the R-tree can
// match it on delete.
type Entity struct {
	ID    string
	Name  string
	Point geo.Point
}

// Index is an R-tree backed spatial index of entities keyed by ID.
// Nothing is persisted; the host app re-publishes its working set on start.
type Index struct {
	mu       sync.RWMutex
	tree     rtree.RTreeG[Entity]
	byID     map[string]Entity
	watchers []chan struct{}
	logger   *slog.Logger
}

// NewIndex creates an empty index.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		byID:   make(map[string]Entity),
		logger: logger.With(slog.String("component", "poi_index")),
	}
}

// Upsert inserts the entity or replaces an existing one with the same ID.
func (ix *Index) Upsert(e Entity) {
	if e.ID == "" {
		return
	}
	ix.mu.Lock()
	if old, ok := ix.byID[e.ID]; ok {
		ix.tree.Delete(rect(old.Point), rect(old.Point), old)
	}
	ix.tree.Insert(rect(e.Point), rect(e.Point), e)
	ix.byID[e.ID] = e
	ix.notifyLocked()
	ix.mu.Unlock()
}

// Remove deletes the entity with the given ID, reporting whether it existed.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	old, ok := ix.byID[id]
	if !ok {
		return false
	}
	ix.tree.Delete(rect(old.Point), rect(old.Point), old)
	delete(ix.byID, id)
	ix.notifyLocked()
	return true
}

// Len returns the number of indexed entities.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}

// Within returns all entities inside the bounding box, in index order.
func (ix *Index) Within(b geo.Bounds) []Entity {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []Entity
	ix.tree.Search(
		[2]float64{b.MinLon, b.MinLat},
		[2]float64{b.MaxLon, b.MaxLat},
		func(_, _ [2]float64, e Entity) bool {
			out = append(out, e)
			return true
		},
	)
	return out
}

// Nearest returns up to k entities closest to the center, nearest first.
// The R-tree walk orders by box distance in degree space; the short result
// list is re-sorted by true ground distance.
func (ix *Index) Nearest(center geo.Point, k int) []Entity {
	if k <= 0 {
		return nil
	}
	ix.mu.RLock()

	target := rect(center)
	var out []Entity
	ix.tree.Nearby(
		rtree.BoxDist[float64, Entity](target, target, nil),
		func(_, _ [2]float64, e Entity, _ float64) bool {
			out = append(out, e)
			return len(out) < k
		},
	)
	ix.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return geo.Distance(center, out[i].Point) < geo.Distance(center, out[j].Point)
	})
	return out
}

// Watch returns a channel that receives a coalesced signal after every index
// mutation. The channel is never closed.
func (ix *Index) Watch() <-chan struct{} {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ch := make(chan struct{}, 1)
	ix.watchers = append(ix.watchers, ch)
	return ch
}

// notifyLocked signals all watchers without blocking; a watcher that has not
// drained its previous signal keeps the single pending one.
// Caller must hold ix.mu.
func (ix *Index) notifyLocked() {
	for _, ch := range ix.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// rect maps a point to the R-tree's (lon, lat) coordinate order.
func rect(p geo.Point) [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}
