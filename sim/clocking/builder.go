package clocking

import (
	"log"

	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// Builder can build clock domains.
type Builder struct {
	engine      timing.Engine
	freq        timing.Freq
	parallelism int
	maxCycles   uint64
}

// MakeBuilder creates a builder with a 1 GHz serial clock.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * timing.GHz,
		parallelism: 1,
	}
}

// WithEngine sets the engine that schedules the clock edges.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithParallelism sets how many goroutines evaluate the components in each
// cycle. 1 evaluates the components serially in registration order.
func (b Builder) WithParallelism(n int) Builder {
	b.parallelism = n
	return b
}

// WithMaxCycles stops the domain after n cycles. 0 means no limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// Build creates a new clock domain.
func (b Builder) Build(name string) *Domain {
	naming.NameMustBeValid(name)

	if b.engine == nil {
		log.Panicf("domain %s requires an engine", name)
	}

	if b.parallelism < 1 {
		log.Panicf("domain %s requires a parallelism of at least 1", name)
	}

	d := &Domain{
		parallelism: b.parallelism,
		maxCycles:   b.maxCycles,
	}
	d.TickingComponent = timing.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
