package buffer

// stackStore hands out the most recently added element first.
// head is the occupancy counter: next free slot is head, top element is head-1.
type stackStore[T any] struct {
	store []T
	head  int
}

func newStackStore[T any](size int) *stackStore[T] {
	return &stackStore[T]{
		store: make([]T, size),
	}
}

func (b *stackStore[T]) add(element T) bool {
	if b.head >= len(b.store) {
		return false
	}
	b.store[b.head] = element
	b.head++
	return true
}

func (b *stackStore[T]) get() (T, bool) {
	var zero T
	if b.head == 0 {
		return zero, false
	}
	b.head--
	val := b.store[b.head]
	b.store[b.head] = zero
	return val, true
}

func (b *stackStore[_]) len() int {
	return b.head
}
