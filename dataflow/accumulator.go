package dataflow

import (
	"io"

	"github.com/pkg/errors"

	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/hwfifo"
	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/simulation"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// ErrDeadlock is returned when the accumulator stops before printing all the
// values.
var ErrDeadlock = errors.New("pipeline deadlocked")

// AccumulatorBuilder can build accumulators.
type AccumulatorBuilder struct {
	engine      timing.Engine
	freq        timing.Freq
	capacity    int
	iterations  int
	constant    int
	seed        int
	noSeed      bool
	parallelism int
	maxCycles   uint64
	output      io.Writer
}

// MakeAccumulatorBuilder creates a builder with the default settings. The
// default pipeline adds 1 to a running sum that starts at 40 and prints 10
// values.
func MakeAccumulatorBuilder() AccumulatorBuilder {
	return AccumulatorBuilder{
		freq:        100 * timing.MHz,
		capacity:    1,
		iterations:  10,
		constant:    1,
		seed:        40,
		parallelism: 1,
		maxCycles:   10000,
		output:      io.Discard,
	}
}

// WithEngine sets the engine. A new serial engine is used if not set.
func (b AccumulatorBuilder) WithEngine(e timing.Engine) AccumulatorBuilder {
	b.engine = e
	return b
}

// WithFreq sets the clock frequency.
func (b AccumulatorBuilder) WithFreq(f timing.Freq) AccumulatorBuilder {
	b.freq = f
	return b
}

// WithCapacity sets the capacity of the FIFO after the adder.
func (b AccumulatorBuilder) WithCapacity(n int) AccumulatorBuilder {
	b.capacity = n
	return b
}

// WithIterations sets how many values the printer prints.
func (b AccumulatorBuilder) WithIterations(n int) AccumulatorBuilder {
	b.iterations = n
	return b
}

// WithConstant sets the value added in every round.
func (b AccumulatorBuilder) WithConstant(v int) AccumulatorBuilder {
	b.constant = v
	return b
}

// WithSeed sets the initial value in the feedback FIFO.
func (b AccumulatorBuilder) WithSeed(v int) AccumulatorBuilder {
	b.seed = v
	b.noSeed = false

	return b
}

// WithoutSeed leaves the feedback FIFO empty, which deadlocks the pipeline.
func (b AccumulatorBuilder) WithoutSeed() AccumulatorBuilder {
	b.noSeed = true
	return b
}

// WithParallelism sets the number of goroutines that evaluate components.
func (b AccumulatorBuilder) WithParallelism(n int) AccumulatorBuilder {
	b.parallelism = n
	return b
}

// WithMaxCycles sets the number of cycles after which the pipeline is
// considered deadlocked.
func (b AccumulatorBuilder) WithMaxCycles(n uint64) AccumulatorBuilder {
	b.maxCycles = n
	return b
}

// WithOutput sets where the printer writes.
func (b AccumulatorBuilder) WithOutput(w io.Writer) AccumulatorBuilder {
	b.output = w
	return b
}

// Accumulator is a feedback pipeline. A constant and the previous sum are
// added, and the sum is forked back into the adder and into a printer.
type Accumulator struct {
	naming.NamedBase

	engine timing.Engine
	domain *clocking.Domain
	sim    *simulation.Simulation

	Const    *Const[int]
	Adder    *Adder[int]
	Fork     *Fork[int]
	Printer  *Printer[int]
	ConstQ   *hwfifo.Comp[int]
	SumQ     *hwfifo.Comp[int]
	Feedback *hwfifo.Comp[int]
	PrintQ   *hwfifo.Comp[int]
}

// Build creates the accumulator. It panics on an invalid configuration.
func (b AccumulatorBuilder) Build(name string) *Accumulator {
	naming.NameMustBeValid(name)

	engine := b.engine
	if engine == nil {
		engine = timing.NewSerialEngine()
	}

	a := &Accumulator{
		NamedBase: naming.MakeNamedBase(name),
		engine:    engine,
		sim:       simulation.NewSimulation(),
	}
	a.sim.RegisterEngine(engine)

	a.domain = clocking.MakeBuilder().
		WithEngine(engine).
		WithFreq(b.freq).
		WithParallelism(b.parallelism).
		WithMaxCycles(b.maxCycles).
		Build(naming.BuildName(name, "Clock"))

	b.buildComponents(a)
	b.connect(a)

	if !b.noSeed {
		err := a.Feedback.Preload(b.seed)
		if err != nil {
			panic(err)
		}
	}

	return a
}

func (b AccumulatorBuilder) buildComponents(a *Accumulator) {
	name := a.Name()

	a.Const = NewConst(naming.BuildName(name, "Const"), b.constant)
	a.Adder = NewAdder[int](naming.BuildName(name, "Adder"))
	a.Fork = NewFork[int](naming.BuildName(name, "Fork"))
	a.Printer = NewPrinter[int](
		naming.BuildName(name, "Printer"), b.iterations, b.output, a.domain.Stop)

	fifoBuilder := hwfifo.MakeBuilder[int]().
		WithSimulation(a.sim).
		WithDomain(a.domain).
		WithCapacity(1)

	a.ConstQ = fifoBuilder.Build(naming.BuildName(name, "ConstQ"))
	a.SumQ = fifoBuilder.
		WithCapacity(b.capacity).
		Build(naming.BuildName(name, "SumQ"))
	a.Feedback = fifoBuilder.Build(naming.BuildName(name, "Feedback"))
	a.PrintQ = fifoBuilder.Build(naming.BuildName(name, "PrintQ"))

	for _, c := range []clocking.Clocked{a.Const, a.Adder, a.Fork, a.Printer} {
		a.domain.Register(c)
		a.sim.RegisterComponent(c)
	}
}

func (b AccumulatorBuilder) connect(a *Accumulator) {
	wire := func(elem string) handshake.Wire[int] {
		return handshake.NewWire[int](a.domain, naming.BuildName(a.Name(), elem))
	}

	constIn := wire("ConstIn")
	a.Const.Out.Plug(constIn)
	a.ConstQ.PlugInput(constIn)

	constOut := wire("ConstOut")
	a.ConstQ.PlugOutput(constOut)
	a.Adder.In1.Plug(constOut)

	feedbackOut := wire("FeedbackOut")
	a.Feedback.PlugOutput(feedbackOut)
	a.Adder.In2.Plug(feedbackOut)

	sumIn := wire("SumIn")
	a.Adder.Out.Plug(sumIn)
	a.SumQ.PlugInput(sumIn)

	sumOut := wire("SumOut")
	a.SumQ.PlugOutput(sumOut)
	a.Fork.In.Plug(sumOut)

	feedbackIn := wire("FeedbackIn")
	a.Fork.Out1.Plug(feedbackIn)
	a.Feedback.PlugInput(feedbackIn)

	printIn := wire("PrintIn")
	a.Fork.Out2.Plug(printIn)
	a.PrintQ.PlugInput(printIn)

	printOut := wire("PrintOut")
	a.PrintQ.PlugOutput(printOut)
	a.Printer.In.Plug(printOut)
}

// Engine returns the engine that drives the clock.
func (a *Accumulator) Engine() timing.Engine {
	return a.engine
}

// Domain returns the clock domain of the pipeline.
func (a *Accumulator) Domain() *clocking.Domain {
	return a.domain
}

// Simulation returns the simulation that holds all the components.
func (a *Accumulator) Simulation() *simulation.Simulation {
	return a.sim
}

// FIFOs returns the hardware FIFOs of the pipeline.
func (a *Accumulator) FIFOs() []*hwfifo.Comp[int] {
	return []*hwfifo.Comp[int]{a.ConstQ, a.SumQ, a.Feedback, a.PrintQ}
}

// Run simulates the pipeline until the printer is done or the cycle limit is
// reached. It returns the printed values.
func (a *Accumulator) Run() ([]int, error) {
	err := a.sim.Elaborate()
	if err != nil {
		return nil, err
	}

	a.domain.Start()

	err = a.engine.Run()
	if err != nil {
		return a.Printer.Values(), err
	}

	a.engine.Finished()

	values := a.Printer.Values()
	if !a.Printer.Done() {
		return values, errors.Wrapf(ErrDeadlock,
			"printed %d values in %d cycles", len(values), a.domain.Cycle())
	}

	return values, nil
}
