package handshake

import (
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// A Reader is the sink side of a handshake channel. It asserts ready while it
// has room for one item.
type Reader[T comparable] struct {
	naming.NamedBase

	Data  *signal.In[T]
	Valid *signal.In[bool]
	Ready *signal.Out[bool]

	held     T
	holding  bool
	received uint64
}

// NewReader creates a Reader whose ports are named after the owner.
func NewReader[T comparable](owner naming.Named, name string) *Reader[T] {
	r := &Reader[T]{
		NamedBase: naming.MakeNamedBase(naming.BuildName(owner.Name(), name)),
	}

	r.Data = signal.NewIn[T](r, "Data")
	r.Valid = signal.NewIn[bool](r, "Valid")
	r.Ready = signal.NewOut[bool](r, "Ready")

	return r
}

// Plug binds the reader to the sink side of a wire.
func (r *Reader[T]) Plug(wire Wire[T]) {
	r.Data.Bind(wire.Data)
	r.Valid.Bind(wire.Valid)
	r.Ready.Bind(wire.Ready)
}

// Ports returns the ports of the reader.
func (r *Reader[T]) Ports() []signal.Binder {
	return []signal.Binder{r.Data, r.Valid, r.Ready}
}

// Reset asserts ready if the reader has room.
func (r *Reader[T]) Reset() {
	r.Ready.Initialize(!r.holding)
}

// Sample captures the data if a transfer happens in this tick. It must be
// called before Peek, Take and Drive in every tick.
func (r *Reader[T]) Sample() {
	if !r.holding && r.Ready.Read() && r.Valid.Read() {
		r.held = r.Data.Read()
		r.holding = true
		r.received++
	}
}

// Peek returns the held item without consuming it.
func (r *Reader[T]) Peek() (T, bool) {
	return r.held, r.holding
}

// Take consumes the held item.
func (r *Reader[T]) Take() (T, bool) {
	if !r.holding {
		var zero T
		return zero, false
	}

	r.holding = false

	return r.held, true
}

// Drive stages the ready signal for the next tick.
func (r *Reader[T]) Drive() {
	r.Ready.Write(!r.holding)
}

// Received returns the number of items captured from the source.
func (r *Reader[T]) Received() uint64 {
	return r.received
}
