// pkg/spatial/broadphase.go
package spatial

import (
	"math"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Broad-phase defaults.
const (
	DefaultPairThreshold = 200
	DefaultHashCellSize  = 100.0
)

// Pair is a canonical unordered pair of handles with A ordered before B.
type Pair struct {
	A, B physics.Handle
}

// MakePair orders a and b by identity.
func MakePair(a, b physics.Handle) Pair {
	if b.Less(a) {
		return Pair{A: b, B: a}
	}
	return Pair{A: a, B: b}
}

type cellKey struct {
	x, y int
}

// BroadPhase proposes candidate pairs. Up to Threshold shapes every pair is
// emitted; above it shapes are bucketed into a hashed grid and only pairs
// sharing a bucket are emitted, once each. Pairs of two static shapes are
// never proposed. Output order is deterministic for a given store.
type BroadPhase struct {
	Threshold int
	CellSize  float64

	buckets map[cellKey][]physics.Handle
	order   []cellKey
	seen    map[Pair]struct{}
}

// NewBroadPhase creates a broad phase with the given threshold and cell size.
// A threshold of zero sends every population through the hashed grid. A
// non-positive cell size falls back to the default.
func NewBroadPhase(threshold int, cellSize float64) *BroadPhase {
	if cellSize <= 0 {
		cellSize = DefaultHashCellSize
	}
	return &BroadPhase{
		Threshold: threshold,
		CellSize:  cellSize,
		buckets:   make(map[cellKey][]physics.Handle),
		seen:      make(map[Pair]struct{}),
	}
}

// UsesGrid reports whether n shapes take the hashed-grid path.
func (bp *BroadPhase) UsesGrid(n int) bool {
	return n > bp.Threshold
}

// Pairs appends candidate pairs for the shapes in store to out.
func (bp *BroadPhase) Pairs(store *physics.Store, out []Pair) []Pair {
	handles := store.Handles()
	if !bp.UsesGrid(len(handles)) {
		return bp.bruteForce(store, handles, out)
	}
	return bp.hashed(store, handles, out)
}

func (bp *BroadPhase) bruteForce(store *physics.Store, handles []physics.Handle, out []Pair) []Pair {
	for i := 0; i < len(handles); i++ {
		a, _ := store.Get(handles[i])
		for j := i + 1; j < len(handles); j++ {
			b, _ := store.Get(handles[j])
			if a.IsStatic() && b.IsStatic() {
				continue
			}
			out = append(out, Pair{A: handles[i], B: handles[j]})
		}
	}
	return out
}

func (bp *BroadPhase) hashed(store *physics.Store, handles []physics.Handle, out []Pair) []Pair {
	for _, k := range bp.order {
		bp.buckets[k] = bp.buckets[k][:0]
	}
	bp.order = bp.order[:0]
	clear(bp.seen)

	for _, h := range handles {
		s, _ := store.Get(h)
		x0, y0, x1, y1 := CellRange(s.BoundingBox(), bp.CellSize)
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				k := cellKey{x: x, y: y}
				bucket, ok := bp.buckets[k]
				if !ok || len(bucket) == 0 {
					bp.order = append(bp.order, k)
				}
				bp.buckets[k] = append(bucket, h)
			}
		}
	}

	for _, k := range bp.order {
		bucket := bp.buckets[k]
		for i := 0; i < len(bucket); i++ {
			a, _ := store.Get(bucket[i])
			for j := i + 1; j < len(bucket); j++ {
				b, _ := store.Get(bucket[j])
				if a.IsStatic() && b.IsStatic() {
					continue
				}
				p := MakePair(bucket[i], bucket[j])
				if _, dup := bp.seen[p]; dup {
					continue
				}
				bp.seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}

// Reset drops cached buckets.
func (bp *BroadPhase) Reset() {
	clear(bp.buckets)
	bp.order = bp.order[:0]
	clear(bp.seen)
}

// BucketCount returns the number of occupied buckets from the last hashed pass.
func (bp *BroadPhase) BucketCount() int { return len(bp.order) }

// CellRange returns the inclusive cell coordinates box overlaps.
func CellRange(box physics.BoundingBox, cellSize float64) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(box.Min.X / cellSize))
	y0 = int(math.Floor(box.Min.Y / cellSize))
	x1 = int(math.Floor(box.Max.X / cellSize))
	y1 = int(math.Floor(box.Max.Y / cellSize))
	return x0, y0, x1, y1
}

// SharesCell reports whether two boxes overlap a common cell.
func SharesCell(a, b physics.BoundingBox, cellSize float64) bool {
	ax0, ay0, ax1, ay1 := CellRange(a, cellSize)
	bx0, by0, bx1, by1 := CellRange(b, cellSize)
	return ax0 <= bx1 && bx0 <= ax1 && ay0 <= by1 && by0 <= ay1
}
