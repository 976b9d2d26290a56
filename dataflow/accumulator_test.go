package dataflow

import (
	"bytes"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Accumulator", func() {
	It("should print the running sum", func() {
		buf := new(bytes.Buffer)
		acc := MakeAccumulatorBuilder().
			WithOutput(buf).
			Build("Accumulator")

		values, err := acc.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(values).To(Equal(
			[]int{41, 42, 43, 44, 45, 46, 47, 48, 49, 50}))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(10))
		Expect(lines[0]).To(Equal("Accumulator.Printer 41"))
		Expect(lines[9]).To(Equal("Accumulator.Printer 50"))
		Expect(acc.Domain().Stopped()).To(BeTrue())
	})

	It("should keep every FIFO within its capacity", func() {
		acc := MakeAccumulatorBuilder().
			WithCapacity(4).
			Build("Accumulator")

		_, err := acc.Run()

		Expect(err).ToNot(HaveOccurred())
		for _, f := range acc.FIFOs() {
			Expect(f.Size()).To(BeNumerically("<=", f.Capacity()))
			Expect(f.NumRead()).To(BeNumerically("<=", f.NumWritten()+1))
		}
		Expect(acc.SumQ.Capacity()).To(Equal(4))
	})

	DescribeTable("configurations",
		func(constant, seed, iterations, capacity int) {
			values, err := MakeAccumulatorBuilder().
				WithConstant(constant).
				WithSeed(seed).
				WithIterations(iterations).
				WithCapacity(capacity).
				Build("Accumulator").
				Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(values).To(HaveLen(iterations))
			for i, v := range values {
				Expect(v).To(Equal(seed + (i+1)*constant))
			}
		},
		Entry("defaults", 1, 40, 10, 1),
		Entry("larger step", 3, 0, 5, 1),
		Entry("deep sum queue", 1, 40, 20, 8),
		Entry("negative step", -2, 10, 7, 2),
	)

	It("should give the same values in parallel", func() {
		serial := MakeAccumulatorBuilder().WithIterations(25).Build("Serial")
		parallel := MakeAccumulatorBuilder().
			WithIterations(25).
			WithParallelism(4).
			Build("Parallel")

		serialValues, err := serial.Run()
		Expect(err).ToNot(HaveOccurred())

		parallelValues, err := parallel.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(parallelValues).To(Equal(serialValues))
		Expect(parallel.Domain().Cycle()).To(Equal(serial.Domain().Cycle()))
	})

	It("should deadlock without a seed", func() {
		buf := new(bytes.Buffer)
		acc := MakeAccumulatorBuilder().
			WithoutSeed().
			WithMaxCycles(200).
			WithOutput(buf).
			Build("Accumulator")

		values, err := acc.Run()

		Expect(errors.Is(err, ErrDeadlock)).To(BeTrue())
		Expect(values).To(BeEmpty())
		Expect(buf.Len()).To(BeZero())
		Expect(acc.Domain().ReachedMaxCycles()).To(BeTrue())
		Expect(acc.Domain().Cycle()).To(Equal(uint64(200)))
		Expect(acc.Adder.NumSums()).To(BeZero())
	})

	It("should panic with a capacity of 0", func() {
		Expect(func() {
			MakeAccumulatorBuilder().WithCapacity(0).Build("Accumulator")
		}).To(Panic())
	})

	It("should register every component", func() {
		acc := MakeAccumulatorBuilder().Build("Accumulator")

		names := []string{}
		for _, c := range acc.Simulation().Components() {
			names = append(names, c.Name())
		}

		Expect(names).To(ConsistOf(
			"Accumulator.ConstQ", "Accumulator.SumQ",
			"Accumulator.Feedback", "Accumulator.PrintQ",
			"Accumulator.Const", "Accumulator.Adder",
			"Accumulator.Fork", "Accumulator.Printer",
		))
		Expect(acc.Simulation().Elaborate()).To(Succeed())
		Expect(fmt.Sprint(acc.Feedback.Items())).To(Equal("[40]"))
	})
})
