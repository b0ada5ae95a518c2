// Package predict keeps a coarse neighbor snapshot and uses it to predict
// which pairs will touch within a short horizon.
package predict

import "github.com/opd-ai/go-physim/pkg/physics"

// DefaultNeighborRadius is the center distance within which shapes are neighbors.
const DefaultNeighborRadius = 100.0

// NeighborInfo is the snapshot of shapes near Object.
type NeighborInfo struct {
	Object          physics.Handle
	Neighbors       []physics.Handle
	LastUpdateFrame uint64
}

// NeighborTracker records, for every shape, the others within Radius.
// Rebuild is O(n^2) and meant to run on a coarse cadence.
type NeighborTracker struct {
	Radius float64

	infos []NeighborInfo
	index map[physics.Handle]int
}

// NewNeighborTracker creates a tracker using radius. A zero radius only
// pairs shapes sharing a center.
func NewNeighborTracker(radius float64) *NeighborTracker {
	return &NeighborTracker{
		Radius: radius,
		index:  make(map[physics.Handle]int),
	}
}

// Rebuild rescans every shape in store.
func (t *NeighborTracker) Rebuild(store *physics.Store, frame uint64) {
	handles := store.Handles()
	t.infos = t.infos[:0]
	clear(t.index)

	r2 := t.Radius * t.Radius
	for _, h := range handles {
		s, _ := store.Get(h)
		info := NeighborInfo{Object: h, LastUpdateFrame: frame}
		for _, o := range handles {
			if o == h {
				continue
			}
			other, _ := store.Get(o)
			if s.Position().Sub(other.Position()).LengthSquared() <= r2 {
				info.Neighbors = append(info.Neighbors, o)
			}
		}
		t.index[h] = len(t.infos)
		t.infos = append(t.infos, info)
	}
}

// Neighbors returns the snapshot for h; false when h is not tracked.
func (t *NeighborTracker) Neighbors(h physics.Handle) ([]physics.Handle, bool) {
	i, ok := t.index[h]
	if !ok {
		return nil, false
	}
	return t.infos[i].Neighbors, true
}

// Infos returns every snapshot in collection order.
func (t *NeighborTracker) Infos() []NeighborInfo { return t.infos }

// Len returns the number of tracked shapes.
func (t *NeighborTracker) Len() int { return len(t.infos) }

// Forget drops h from the snapshot, both as an object and as a neighbor.
func (t *NeighborTracker) Forget(h physics.Handle) {
	i, ok := t.index[h]
	if !ok {
		return
	}
	t.infos = append(t.infos[:i], t.infos[i+1:]...)
	clear(t.index)
	for j := range t.infos {
		info := &t.infos[j]
		t.index[info.Object] = j
		for k := 0; k < len(info.Neighbors); k++ {
			if info.Neighbors[k] == h {
				info.Neighbors = append(info.Neighbors[:k], info.Neighbors[k+1:]...)
				break
			}
		}
	}
}

// Clear drops the snapshot.
func (t *NeighborTracker) Clear() {
	t.infos = t.infos[:0]
	clear(t.index)
}
