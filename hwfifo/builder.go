package hwfifo

import (
	"log"

	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
	"github.com/sarchlab/hsfifo/sim/simulation"
)

// Builder can build FIFO components.
type Builder[T comparable] struct {
	sim      *simulation.Simulation
	domain   *clocking.Domain
	capacity int
}

// MakeBuilder creates a builder for single-slot FIFOs.
func MakeBuilder[T comparable]() Builder[T] {
	return Builder[T]{capacity: 1}
}

// WithSimulation registers the built FIFOs in a simulation.
func (b Builder[T]) WithSimulation(sim *simulation.Simulation) Builder[T] {
	b.sim = sim
	return b
}

// WithDomain sets the clock domain that evaluates the FIFOs.
func (b Builder[T]) WithDomain(d *clocking.Domain) Builder[T] {
	b.domain = d
	return b
}

// WithCapacity sets the number of slots.
func (b Builder[T]) WithCapacity(capacity int) Builder[T] {
	b.capacity = capacity
	return b
}

// Build creates a FIFO component. It panics if the capacity is invalid.
func (b Builder[T]) Build(name string) *Comp[T] {
	naming.NameMustBeValid(name)

	fifo, err := New[T](b.capacity)
	if err != nil {
		log.Panicf("cannot build fifo %s: %v", name, err)
	}

	c := &Comp[T]{
		NamedBase: naming.MakeNamedBase(name),
		fifo:      fifo,
	}

	c.DataIn = signal.NewIn[T](c, "DataIn")
	c.ValidIn = signal.NewIn[bool](c, "ValidIn")
	c.ReadyIn = signal.NewIn[bool](c, "ReadyIn")
	c.DataOut = signal.NewOut[T](c, "DataOut")
	c.ValidOut = signal.NewOut[bool](c, "ValidOut")
	c.ReadyOut = signal.NewOut[bool](c, "ReadyOut")

	if b.domain != nil {
		c.clock = b.domain
		b.domain.Register(c)
	}

	if b.sim != nil {
		b.sim.RegisterComponent(c)
	}

	return c
}
