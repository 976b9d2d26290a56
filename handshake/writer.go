package handshake

import (
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// A Writer is the source side of a handshake channel. It holds at most one
// item and keeps presenting it until the sink accepts it.
type Writer[T comparable] struct {
	naming.NamedBase

	Data  *signal.Out[T]
	Valid *signal.Out[bool]
	Ready *signal.In[bool]

	pending  T
	busy     bool
	accepted uint64
}

// NewWriter creates a Writer whose ports are named after the owner.
func NewWriter[T comparable](owner naming.Named, name string) *Writer[T] {
	w := &Writer[T]{
		NamedBase: naming.MakeNamedBase(naming.BuildName(owner.Name(), name)),
	}

	w.Data = signal.NewOut[T](w, "Data")
	w.Valid = signal.NewOut[bool](w, "Valid")
	w.Ready = signal.NewIn[bool](w, "Ready")

	return w
}

// Plug binds the writer to the source side of a wire.
func (w *Writer[T]) Plug(wire Wire[T]) {
	w.Data.Bind(wire.Data)
	w.Valid.Bind(wire.Valid)
	w.Ready.Bind(wire.Ready)
}

// Ports returns the ports of the writer.
func (w *Writer[T]) Ports() []signal.Binder {
	return []signal.Binder{w.Data, w.Valid, w.Ready}
}

// Reset drives valid, and data for the pending item if there is one.
func (w *Writer[T]) Reset() {
	w.Valid.Initialize(w.busy)
	if w.busy {
		w.Data.Initialize(w.pending)
	}
}

// Sample checks whether the sink has accepted the pending item in this tick.
// It must be called before Write and Drive in every tick.
func (w *Writer[T]) Sample() {
	if w.busy && w.Valid.Read() && w.Ready.Read() {
		w.busy = false
		w.accepted++
	}
}

// CanWrite returns true if the writer can take a new item.
func (w *Writer[T]) CanWrite() bool {
	return !w.busy
}

// Write hands an item to the writer. It returns false if the writer is still
// waiting for the sink to accept the previous item.
func (w *Writer[T]) Write(v T) bool {
	if w.busy {
		return false
	}

	w.pending = v
	w.busy = true

	return true
}

// Drive stages the valid and data signals for the next tick.
func (w *Writer[T]) Drive() {
	w.Valid.Write(w.busy)

	if w.busy {
		w.Data.Write(w.pending)
	}
}

// Accepted returns the number of items the sink has accepted.
func (w *Writer[T]) Accepted() uint64 {
	return w.accepted
}
