package clocking

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// stage copies its input to its output with one cycle of latency.
type stage struct {
	naming.NamedBase

	in  *signal.In[int]
	out *signal.Out[int]

	resetCalled bool
}

func newStage(name string) *stage {
	s := &stage{NamedBase: naming.MakeNamedBase(name)}
	s.in = signal.NewIn[int](s, "In")
	s.out = signal.NewOut[int](s, "Out")

	return s
}

func (s *stage) Evaluate() {
	s.out.Write(s.in.Read())
}

func (s *stage) Reset() {
	s.resetCalled = true
	s.out.Initialize(-1)
}

// source writes the cycle number it sees.
type source struct {
	naming.NamedBase

	out   *signal.Out[int]
	count int
}

func (s *source) Evaluate() {
	s.count++
	s.out.Write(s.count)
}

type shiftRegister struct {
	domain *Domain
	wires  []*signal.Signal[int]
	src    *source
	stages []*stage
}

func buildShiftRegister(numStages, parallelism int, reversed bool) *shiftRegister {
	engine := timing.NewSerialEngine()
	d := MakeBuilder().
		WithEngine(engine).
		WithParallelism(parallelism).
		Build("Domain")

	sr := &shiftRegister{domain: d}
	for i := 0; i <= numStages; i++ {
		sr.wires = append(sr.wires,
			NewSignal(d, fmt.Sprintf("Wire[%d]", i), 0))
	}

	sr.src = &source{NamedBase: naming.MakeNamedBase("Src")}
	sr.src.out = signal.NewOut[int](sr.src, "Out")
	sr.src.out.Bind(sr.wires[0])

	for i := 0; i < numStages; i++ {
		s := newStage(fmt.Sprintf("Stage[%d]", i))
		s.in.Bind(sr.wires[i])
		s.out.Bind(sr.wires[i+1])
		sr.stages = append(sr.stages, s)
	}

	comps := []Clocked{sr.src}
	for _, s := range sr.stages {
		comps = append(comps, s)
	}

	if reversed {
		for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
			comps[i], comps[j] = comps[j], comps[i]
		}
	}

	for _, c := range comps {
		d.Register(c)
	}

	return sr
}

func (sr *shiftRegister) snapshot() []int {
	values := make([]int, len(sr.wires))
	for i, w := range sr.wires {
		values[i] = w.Read()
	}

	return values
}

func (sr *shiftRegister) run(cycles int) [][]int {
	sr.domain.Reset()

	history := [][]int{sr.snapshot()}
	for i := 0; i < cycles; i++ {
		sr.domain.Tick()
		history = append(history, sr.snapshot())
	}

	return history
}

var _ = Describe("Domain", func() {
	It("should delay values by one cycle per stage", func() {
		sr := buildShiftRegister(3, 1, false)

		history := sr.run(4)

		Expect(history[0]).To(Equal([]int{0, -1, -1, -1}))
		Expect(history[1]).To(Equal([]int{1, 0, -1, -1}))
		Expect(history[2]).To(Equal([]int{2, 1, 0, -1}))
		Expect(history[3]).To(Equal([]int{3, 2, 1, 0}))
		Expect(history[4]).To(Equal([]int{4, 3, 2, 1}))
	})

	It("should not depend on the evaluation order", func() {
		forward := buildShiftRegister(8, 1, false).run(20)
		backward := buildShiftRegister(8, 1, true).run(20)

		Expect(backward).To(Equal(forward))
	})

	It("should give the same result when evaluating in parallel", func() {
		serial := buildShiftRegister(16, 1, false).run(50)
		parallel := buildShiftRegister(16, 4, true).run(50)

		Expect(parallel).To(Equal(serial))
	})

	It("should reset components on start", func() {
		sr := buildShiftRegister(2, 1, false)

		sr.domain.Start()

		Expect(sr.stages[0].resetCalled).To(BeTrue())
		Expect(func() { sr.domain.Start() }).To(Panic())
		Expect(func() { sr.domain.Register(newStage("Late")) }).To(Panic())
	})

	It("should panic if a component is registered twice", func() {
		d := MakeBuilder().WithEngine(timing.NewSerialEngine()).Build("Domain")
		s := newStage("Stage")

		d.Register(s)

		Expect(func() { d.Register(s) }).To(Panic())
	})

	It("should run on an engine until max cycles", func() {
		engine := timing.NewSerialEngine()
		d := MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * timing.GHz).
			WithMaxCycles(10).
			Build("Domain")
		src := &source{NamedBase: naming.MakeNamedBase("Src")}
		src.out = signal.NewOut[int](src, "Out")
		src.out.Bind(NewSignal(d, "Wire", 0))
		d.Register(src)

		d.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(d.Cycle()).To(Equal(uint64(10)))
		Expect(d.ReachedMaxCycles()).To(BeTrue())
		Expect(src.count).To(Equal(10))
		Expect(engine.Now()).To(BeNumerically("~", 10e-9, 1e-15))
	})

	It("should complete the current cycle when stopped", func() {
		engine := timing.NewSerialEngine()
		d := MakeBuilder().WithEngine(engine).Build("Domain")
		wire := NewSignal(d, "Wire", 0)
		stopper := &stopAt{
			NamedBase: naming.MakeNamedBase("Stopper"),
			domain:    d,
			at:        3,
		}
		stopper.out = signal.NewOut[int](stopper, "Out")
		stopper.out.Bind(wire)
		d.Register(stopper)

		d.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(d.Stopped()).To(BeTrue())
		Expect(d.ReachedMaxCycles()).To(BeFalse())
		Expect(d.Cycle()).To(Equal(uint64(3)))
		Expect(wire.Read()).To(Equal(3))
	})

	It("should invoke cycle hooks", func() {
		sr := buildShiftRegister(1, 1, false)

		var positions []string
		var items []interface{}
		sr.domain.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos.Name)
			items = append(items, ctx.Item)
		}))

		sr.run(2)

		Expect(positions).To(Equal([]string{
			"BeforeCycle", "AfterCycle", "BeforeCycle", "AfterCycle",
		}))
		Expect(items).To(Equal([]interface{}{
			uint64(0), uint64(1), uint64(1), uint64(2),
		}))
	})
})

type stopAt struct {
	naming.NamedBase

	domain *Domain
	out    *signal.Out[int]
	at     int
	count  int
}

func (s *stopAt) Evaluate() {
	s.count++
	s.out.Write(s.count)

	if s.count == s.at {
		s.domain.Stop()
	}
}
