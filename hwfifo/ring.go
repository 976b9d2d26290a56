package hwfifo

import "log"

// Ring is a fixed-size circular buffer.
type Ring[T any] struct {
	storage []T
	head    int
	count   int
}

// NewRing creates a ring with the given number of slots.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		log.Panicf("ring capacity must be at least 1, got %d", capacity)
	}

	return &Ring[T]{storage: make([]T, capacity)}
}

// Cap returns the number of slots.
func (r *Ring[T]) Cap() int {
	return len(r.storage)
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int {
	return r.count
}

// Writable returns true if there is a free slot.
func (r *Ring[T]) Writable() bool {
	return r.count < len(r.storage)
}

// Readable returns true if there is at least one element.
func (r *Ring[T]) Readable() bool {
	return r.count > 0
}

// Push appends an element after the last one.
func (r *Ring[T]) Push(v T) {
	if !r.Writable() {
		log.Panic("ring overflow")
	}

	r.storage[(r.head+r.count)%len(r.storage)] = v
	r.count++
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() T {
	if !r.Readable() {
		log.Panic("ring underflow")
	}

	v := r.storage[r.head]
	r.head = (r.head + 1) % len(r.storage)
	r.count--

	return v
}

// Peek returns the oldest element without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	if !r.Readable() {
		var zero T
		return zero, false
	}

	return r.storage[r.head], true
}

// Head returns the slot at the head even if the ring is empty, in which case
// the value is whatever the slot last held.
func (r *Ring[T]) Head() T {
	return r.storage[r.head]
}
