package physics

// RingBuffer is a fixed-capacity FIFO that overwrites its oldest element
// once full.
type RingBuffer[T any] struct {
	data  []T
	start int
	count int
}

// NewRingBuffer allocates a buffer holding at most capacity elements.
// A capacity below one is raised to one.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// Push appends value, evicting the oldest element when the buffer is full.
func (rb *RingBuffer[T]) Push(value T) {
	if rb.count < len(rb.data) {
		rb.data[(rb.start+rb.count)%len(rb.data)] = value
		rb.count++
		return
	}
	rb.data[rb.start] = value
	rb.start = (rb.start + 1) % len(rb.data)
}

// At returns the i-th element, 0 being the oldest.
func (rb *RingBuffer[T]) At(i int) T {
	return rb.data[(rb.start+i)%len(rb.data)]
}

// Last returns the element n positions back from the newest (0 = newest).
func (rb *RingBuffer[T]) Last(n int) (T, bool) {
	var zero T
	if n < 0 || n >= rb.count {
		return zero, false
	}
	return rb.At(rb.count - 1 - n), true
}

// Len returns the number of stored elements.
func (rb *RingBuffer[T]) Len() int { return rb.count }

// Cap returns the fixed capacity.
func (rb *RingBuffer[T]) Cap() int { return len(rb.data) }

// Reset empties the buffer without releasing storage.
func (rb *RingBuffer[T]) Reset() {
	var zero T
	for i := range rb.data {
		rb.data[i] = zero
	}
	rb.start = 0
	rb.count = 0
}
