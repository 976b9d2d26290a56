package dataflow

import (
	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// Number is a type that supports addition.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Adder reads one operand from each input and writes their sum.
type Adder[T Number] struct {
	naming.NamedBase

	In1 *handshake.Reader[T]
	In2 *handshake.Reader[T]
	Out *handshake.Writer[T]

	numSums uint64
}

// NewAdder creates an Adder.
func NewAdder[T Number](name string) *Adder[T] {
	naming.NameMustBeValid(name)

	a := &Adder[T]{NamedBase: naming.MakeNamedBase(name)}
	a.In1 = handshake.NewReader[T](a, "In1")
	a.In2 = handshake.NewReader[T](a, "In2")
	a.Out = handshake.NewWriter[T](a, "Out")

	return a
}

// Evaluate adds the operands once both are available and the previous sum
// has been accepted.
func (a *Adder[T]) Evaluate() {
	a.In1.Sample()
	a.In2.Sample()
	a.Out.Sample()

	a.add()

	a.In1.Drive()
	a.In2.Drive()
	a.Out.Drive()
}

func (a *Adder[T]) add() {
	if !a.Out.CanWrite() {
		return
	}

	_, ok1 := a.In1.Peek()
	_, ok2 := a.In2.Peek()

	if !ok1 || !ok2 {
		return
	}

	x, _ := a.In1.Take()
	y, _ := a.In2.Take()
	a.Out.Write(x + y)
	a.numSums++
}

// NumSums returns the number of sums produced.
func (a *Adder[T]) NumSums() uint64 {
	return a.numSums
}

// Reset resets all the ports.
func (a *Adder[T]) Reset() {
	a.In1.Reset()
	a.In2.Reset()
	a.Out.Reset()
}

// Ports returns the ports of the component.
func (a *Adder[T]) Ports() []signal.Binder {
	ports := append(a.In1.Ports(), a.In2.Ports()...)
	return append(ports, a.Out.Ports()...)
}
