// Package dataflow provides handshake-driven dataflow components and the
// accumulator pipeline that connects them through hardware FIFOs.
package dataflow

import (
	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// Const offers the same value whenever its output can take one.
type Const[T comparable] struct {
	naming.NamedBase

	Out *handshake.Writer[T]

	value T
}

// NewConst creates a Const component.
func NewConst[T comparable](name string, value T) *Const[T] {
	naming.NameMustBeValid(name)

	c := &Const[T]{
		NamedBase: naming.MakeNamedBase(name),
		value:     value,
	}
	c.Out = handshake.NewWriter[T](c, "Out")

	return c
}

// Evaluate offers the constant.
func (c *Const[T]) Evaluate() {
	c.Out.Sample()
	c.Out.Write(c.value)
	c.Out.Drive()
}

// Reset resets the output.
func (c *Const[T]) Reset() {
	c.Out.Reset()
}

// Ports returns the ports of the component.
func (c *Const[T]) Ports() []signal.Binder {
	return c.Out.Ports()
}
