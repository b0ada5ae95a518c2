package physics

import "fmt"

// Handle refers to a shape owned by a Store. The zero Handle is never issued.
// A handle is invalidated when its shape is removed, even if the slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// Index returns the arena slot of the handle.
func (h Handle) Index() int { return int(h.index) }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

// Less orders handles by identity; used to canonicalize pairs.
func (h Handle) Less(other Handle) bool {
	if h.index != other.index {
		return h.index < other.index
	}
	return h.gen < other.gen
}

// String renders the handle as index:generation.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.gen)
}

// ID packs the handle into a single integer for logs and events.
func (h Handle) ID() uint64 {
	return uint64(h.gen)<<32 | uint64(h.index)
}

type slot struct {
	shape *Shape
	gen   uint32
}

// Store is the single owner of all shapes. Iteration follows insertion order.
type Store struct {
	slots []slot
	free  []uint32
	order []Handle
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add takes ownership of shape and returns its handle.
func (st *Store) Add(shape *Shape) Handle {
	var idx uint32
	if n := len(st.free); n > 0 {
		idx = st.free[n-1]
		st.free = st.free[:n-1]
	} else {
		idx = uint32(len(st.slots))
		st.slots = append(st.slots, slot{})
	}
	sl := &st.slots[idx]
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	sl.shape = shape
	h := Handle{index: idx, gen: sl.gen}
	st.order = append(st.order, h)
	return h
}

// Get resolves a handle. Stale or unknown handles return false.
func (st *Store) Get(h Handle) (*Shape, bool) {
	if h.gen == 0 || int(h.index) >= len(st.slots) {
		return nil, false
	}
	sl := st.slots[h.index]
	if sl.gen != h.gen || sl.shape == nil {
		return nil, false
	}
	return sl.shape, true
}

// Contains reports whether h refers to a live shape.
func (st *Store) Contains(h Handle) bool {
	_, ok := st.Get(h)
	return ok
}

// Remove drops the shape behind h. Unknown handles are ignored.
func (st *Store) Remove(h Handle) bool {
	if !st.Contains(h) {
		return false
	}
	st.slots[h.index].shape = nil
	st.free = append(st.free, h.index)
	for i, o := range st.order {
		if o == h {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops every shape. Outstanding handles become stale.
func (st *Store) Clear() {
	for i := range st.slots {
		if st.slots[i].shape != nil {
			st.slots[i].shape = nil
			st.free = append(st.free, uint32(i))
		}
	}
	st.order = st.order[:0]
}

// Len returns the number of live shapes.
func (st *Store) Len() int { return len(st.order) }

// Handles returns live handles in insertion order. The slice is owned by the
// store and must not be modified or retained across mutations.
func (st *Store) Handles() []Handle { return st.order }

// Each calls fn for every live shape in insertion order.
func (st *Store) Each(fn func(h Handle, s *Shape)) {
	for _, h := range st.order {
		fn(h, st.slots[h.index].shape)
	}
}
