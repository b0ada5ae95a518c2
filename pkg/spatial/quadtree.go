// pkg/spatial/quadtree.go
package spatial

import "github.com/opd-ai/go-physim/pkg/physics"

const (
	// QuadCapacity is the number of entries a node holds before it splits.
	QuadCapacity = 10
	// QuadMaxDepth is the deepest level that may still split.
	QuadMaxDepth = 8
)

type quadEntry struct {
	handle physics.Handle
	point  physics.Vector2D
}

// QuadTree indexes shape handles by their center point. A shape whose box
// straddles a quadrant boundary is still stored under the single quadrant
// containing its center, so Retrieve results are a superset to be filtered.
type QuadTree struct {
	Boundary physics.BoundingBox
	level    int
	entries  []quadEntry
	divided  bool

	northWest *QuadTree
	northEast *QuadTree
	southWest *QuadTree
	southEast *QuadTree
}

// NewQuadTree creates an empty root covering boundary.
func NewQuadTree(boundary physics.BoundingBox) *QuadTree {
	return newQuadNode(boundary, 0)
}

func newQuadNode(boundary physics.BoundingBox, level int) *QuadTree {
	return &QuadTree{
		Boundary: boundary,
		level:    level,
		entries:  make([]quadEntry, 0, QuadCapacity),
	}
}

// Insert adds h keyed at point.
func (qt *QuadTree) Insert(h physics.Handle, point physics.Vector2D) {
	if qt.divided {
		if child := qt.quadrant(point); child != nil {
			child.Insert(h, point)
			return
		}
	}

	qt.entries = append(qt.entries, quadEntry{handle: h, point: point})

	if len(qt.entries) > QuadCapacity && qt.level < QuadMaxDepth {
		if !qt.divided {
			qt.subdivide()
		}
		held := qt.entries
		qt.entries = make([]quadEntry, 0, QuadCapacity)
		for _, e := range held {
			if child := qt.quadrant(e.point); child != nil {
				child.Insert(e.handle, e.point)
			} else {
				qt.entries = append(qt.entries, e)
			}
		}
	}
}

// subdivide splits the node into four quadrants
func (qt *QuadTree) subdivide() {
	lo, hi := qt.Boundary.Min, qt.Boundary.Max
	mid := qt.Boundary.Center()
	next := qt.level + 1

	qt.northWest = newQuadNode(physics.BoundingBox{Min: lo, Max: mid}, next)
	qt.northEast = newQuadNode(physics.BoundingBox{Min: physics.Vec(mid.X, lo.Y), Max: physics.Vec(hi.X, mid.Y)}, next)
	qt.southWest = newQuadNode(physics.BoundingBox{Min: physics.Vec(lo.X, mid.Y), Max: physics.Vec(mid.X, hi.Y)}, next)
	qt.southEast = newQuadNode(physics.BoundingBox{Min: mid, Max: hi}, next)
	qt.divided = true
}

// quadrant returns the first child containing point, or nil when the point
// lies outside this node.
func (qt *QuadTree) quadrant(point physics.Vector2D) *QuadTree {
	for _, child := range qt.children() {
		if child.Boundary.Contains(point) {
			return child
		}
	}
	return nil
}

func (qt *QuadTree) children() [4]*QuadTree {
	return [4]*QuadTree{qt.northWest, qt.northEast, qt.southWest, qt.southEast}
}

// Retrieve appends to out every handle held by this node and by each child
// whose bounds intersect area.
func (qt *QuadTree) Retrieve(area physics.BoundingBox, out []physics.Handle) []physics.Handle {
	for _, e := range qt.entries {
		out = append(out, e.handle)
	}
	if !qt.divided {
		return out
	}
	for _, child := range qt.children() {
		if child.Boundary.Intersects(area) {
			out = child.Retrieve(area, out)
		}
	}
	return out
}

// RetrieveRadius retrieves candidates around point within radius.
func (qt *QuadTree) RetrieveRadius(point physics.Vector2D, radius float64, out []physics.Handle) []physics.Handle {
	return qt.Retrieve(physics.BoxAround(point, radius*2, radius*2), out)
}

// Remove strips h from every level. It reports whether anything was removed.
func (qt *QuadTree) Remove(h physics.Handle) bool {
	removed := false
	for i := 0; i < len(qt.entries); i++ {
		if qt.entries[i].handle == h {
			qt.entries = append(qt.entries[:i], qt.entries[i+1:]...)
			removed = true
			i--
		}
	}
	if qt.divided {
		for _, child := range qt.children() {
			if child.Remove(h) {
				removed = true
			}
		}
	}
	return removed
}

// Clear drops all entries and children, keeping the boundary.
func (qt *QuadTree) Clear() {
	qt.entries = qt.entries[:0]
	qt.divided = false
	qt.northWest, qt.northEast, qt.southWest, qt.southEast = nil, nil, nil, nil
}

// Reset clears the tree and moves it to a new boundary.
func (qt *QuadTree) Reset(boundary physics.BoundingBox) {
	qt.Clear()
	qt.Boundary = boundary
}

// Len returns the number of handles stored in the whole tree.
func (qt *QuadTree) Len() int {
	n := len(qt.entries)
	if qt.divided {
		for _, child := range qt.children() {
			n += child.Len()
		}
	}
	return n
}

// Depth returns the deepest level reached below and including this node.
func (qt *QuadTree) Depth() int {
	depth := qt.level
	if qt.divided {
		for _, child := range qt.children() {
			if d := child.Depth(); d > depth {
				depth = d
			}
		}
	}
	return depth
}
