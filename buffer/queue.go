package buffer

// queueStore is a ring: elements leave in insertion order.
type queueStore[T any] struct {
	store []T
	head  int
	tail  int
	count int
}

func newQueueStore[T any](size int) *queueStore[T] {
	return &queueStore[T]{
		store: make([]T, size),
	}
}

func (b *queueStore[T]) add(element T) bool {
	if b.count == len(b.store) {
		return false
	}
	b.store[b.tail] = element
	b.tail = (b.tail + 1) % len(b.store)
	b.count++
	return true
}

func (b *queueStore[T]) get() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	val := b.store[b.head]
	b.store[b.head] = zero
	b.head = (b.head + 1) % len(b.store)
	b.count--
	return val, true
}

func (b *queueStore[_]) len() int {
	return b.count
}
