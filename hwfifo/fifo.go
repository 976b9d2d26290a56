// Package hwfifo models a synchronous hardware FIFO with valid/ready
// handshakes on both sides.
//
// The FIFO updates once per clock edge. A write is accepted when valid_in is
// asserted and the FIFO is not full at the start of the tick. A read is
// accepted when ready_in is asserted and the FIFO is not empty at the start
// of the tick. Both may happen in the same tick. The outputs are registered:
// they are driven from the state after the update and become visible to
// peers in the next tick.
package hwfifo

import (
	"github.com/pkg/errors"
)

// ErrInvalidCapacity is returned when a FIFO is created with less than one
// slot.
var ErrInvalidCapacity = errors.New("fifo capacity must be at least 1")

// ErrFull is returned when preloading a FIFO that has no free slot.
var ErrFull = errors.New("fifo is full")

// Inputs are the signal values that the FIFO samples at a clock edge.
type Inputs[T any] struct {
	DataIn  T
	ValidIn bool
	ReadyIn bool
}

// Outputs are the signal values that the FIFO drives after a clock edge.
type Outputs[T any] struct {
	DataOut  T
	ValidOut bool
	ReadyOut bool
}

// Transfer reports the handshakes completed at a clock edge.
type Transfer[T any] struct {
	Wrote     bool
	WroteData T
	Read      bool
	ReadData  T
}

// FIFO is the state machine of a handshake FIFO, without any signal.
type FIFO[T any] struct {
	ring *Ring[T]
}

// New creates an empty FIFO.
func New[T any](capacity int) (*FIFO[T], error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", capacity)
	}

	return &FIFO[T]{ring: NewRing[T](capacity)}, nil
}

// Cap returns the capacity.
func (f *FIFO[T]) Cap() int {
	return f.ring.Cap()
}

// Len returns the number of stored items.
func (f *FIFO[T]) Len() int {
	return f.ring.Len()
}

// Preload stores an item before the first clock edge.
func (f *FIFO[T]) Preload(v T) error {
	if !f.ring.Writable() {
		return errors.Wrapf(ErrFull, "capacity %d", f.ring.Cap())
	}

	f.ring.Push(v)

	return nil
}

// Step applies one clock edge. Whether the FIFO can be written or read is
// decided from the state before the edge, so a full FIFO rejects a write
// even when a read frees a slot in the same tick.
func (f *FIFO[T]) Step(in Inputs[T]) (Outputs[T], Transfer[T]) {
	writable := f.ring.Writable()
	readable := f.ring.Readable()

	var t Transfer[T]

	if in.ValidIn && writable {
		f.ring.Push(in.DataIn)
		t.Wrote = true
		t.WroteData = in.DataIn
	}

	if in.ReadyIn && readable {
		t.ReadData = f.ring.Pop()
		t.Read = true
	}

	return f.Outputs(), t
}

// Outputs returns the values the FIFO drives for its current state.
func (f *FIFO[T]) Outputs() Outputs[T] {
	return Outputs[T]{
		DataOut:  f.ring.Head(),
		ValidOut: f.ring.Readable(),
		ReadyOut: f.ring.Writable(),
	}
}

// Items returns a copy of the stored items, oldest first.
func (f *FIFO[T]) Items() []T {
	items := make([]T, 0, f.ring.Len())
	for i := 0; i < f.ring.Len(); i++ {
		items = append(items, f.ring.storage[(f.ring.head+i)%f.ring.Cap()])
	}

	return items
}
