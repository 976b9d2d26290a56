package dataflow

import (
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// Printer prints a fixed number of items and then calls its stop function.
type Printer[T comparable] struct {
	naming.NamedBase

	In *handshake.Reader[T]

	out        io.Writer
	stop       func()
	iterations int

	lock   sync.Mutex
	values []T
}

// NewPrinter creates a Printer that prints n items to out. Stop may be nil.
func NewPrinter[T comparable](
	name string,
	n int,
	out io.Writer,
	stop func(),
) *Printer[T] {
	naming.NameMustBeValid(name)

	if out == nil {
		out = io.Discard
	}

	p := &Printer[T]{
		NamedBase:  naming.MakeNamedBase(name),
		out:        out,
		stop:       stop,
		iterations: n,
	}
	p.In = handshake.NewReader[T](p, "In")

	return p
}

// Evaluate prints the held item.
func (p *Printer[T]) Evaluate() {
	p.In.Sample()

	if !p.Done() {
		if v, ok := p.In.Take(); ok {
			p.print(v)
		}
	}

	p.In.Drive()
}

func (p *Printer[T]) print(v T) {
	fmt.Fprintf(p.out, "%s %v\n", p.Name(), v)

	p.lock.Lock()
	p.values = append(p.values, v)
	done := len(p.values) >= p.iterations
	p.lock.Unlock()

	if done && p.stop != nil {
		p.stop()
	}
}

// Done returns true once all the items are printed.
func (p *Printer[T]) Done() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return len(p.values) >= p.iterations
}

// Values returns the printed items.
func (p *Printer[T]) Values() []T {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]T(nil), p.values...)
}

// Reset resets the input.
func (p *Printer[T]) Reset() {
	p.In.Reset()
}

// Ports returns the ports of the component.
func (p *Printer[T]) Ports() []signal.Binder {
	return p.In.Ports()
}
