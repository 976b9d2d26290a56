package dataflow

import (
	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// Fork copies every item to two outputs. It does not take the next item
// until both copies of the previous one are accepted.
type Fork[T comparable] struct {
	naming.NamedBase

	In   *handshake.Reader[T]
	Out1 *handshake.Writer[T]
	Out2 *handshake.Writer[T]
}

// NewFork creates a Fork.
func NewFork[T comparable](name string) *Fork[T] {
	naming.NameMustBeValid(name)

	f := &Fork[T]{NamedBase: naming.MakeNamedBase(name)}
	f.In = handshake.NewReader[T](f, "In")
	f.Out1 = handshake.NewWriter[T](f, "Out1")
	f.Out2 = handshake.NewWriter[T](f, "Out2")

	return f
}

// Evaluate forwards the held item when both outputs are free.
func (f *Fork[T]) Evaluate() {
	f.In.Sample()
	f.Out1.Sample()
	f.Out2.Sample()

	if f.Out1.CanWrite() && f.Out2.CanWrite() {
		if v, ok := f.In.Take(); ok {
			f.Out1.Write(v)
			f.Out2.Write(v)
		}
	}

	f.In.Drive()
	f.Out1.Drive()
	f.Out2.Drive()
}

// Reset resets all the ports.
func (f *Fork[T]) Reset() {
	f.In.Reset()
	f.Out1.Reset()
	f.Out2.Reset()
}

// Ports returns the ports of the component.
func (f *Fork[T]) Ports() []signal.Binder {
	ports := append(f.In.Ports(), f.Out1.Ports()...)
	return append(ports, f.Out2.Ports()...)
}
