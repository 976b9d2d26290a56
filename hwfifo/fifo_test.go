package hwfifo

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("FIFO", func() {
	It("should reject a capacity of 0", func() {
		for i := 0; i < 3; i++ {
			f, err := New[int](0)

			Expect(f).To(BeNil())
			Expect(errors.Is(err, ErrInvalidCapacity)).To(BeTrue())
		}
	})

	It("should reject a negative capacity", func() {
		_, err := New[int](-1)

		Expect(errors.Is(err, ErrInvalidCapacity)).To(BeTrue())
	})

	It("should start ready and not valid", func() {
		f, err := New[int](2)
		Expect(err).ToNot(HaveOccurred())

		out := f.Outputs()
		Expect(out.ReadyOut).To(BeTrue())
		Expect(out.ValidOut).To(BeFalse())
	})

	It("should write and read in the same tick", func() {
		f, _ := New[int](2)

		out, t := f.Step(Inputs[int]{DataIn: 5, ValidIn: true})
		Expect(t.Wrote).To(BeTrue())
		Expect(t.Read).To(BeFalse())
		Expect(out).To(Equal(Outputs[int]{
			DataOut: 5, ValidOut: true, ReadyOut: true,
		}))

		out, t = f.Step(Inputs[int]{DataIn: 7, ValidIn: true, ReadyIn: true})
		Expect(t).To(Equal(Transfer[int]{
			Wrote: true, WroteData: 7, Read: true, ReadData: 5,
		}))
		Expect(out).To(Equal(Outputs[int]{
			DataOut: 7, ValidOut: true, ReadyOut: true,
		}))
		Expect(f.Len()).To(Equal(1))
	})

	It("should ignore a read when empty", func() {
		f, _ := New[int](1)

		out, t := f.Step(Inputs[int]{DataIn: 3, ValidIn: true, ReadyIn: true})

		Expect(t.Wrote).To(BeTrue())
		Expect(t.Read).To(BeFalse())
		Expect(out.ValidOut).To(BeTrue())
		Expect(out.ReadyOut).To(BeFalse())
	})

	It("should ignore a write when full", func() {
		f, _ := New[int](1)
		f.Step(Inputs[int]{DataIn: 3, ValidIn: true})

		out, t := f.Step(Inputs[int]{DataIn: 4, ValidIn: true, ReadyIn: true})

		Expect(t.Wrote).To(BeFalse())
		Expect(t.Read).To(BeTrue())
		Expect(t.ReadData).To(Equal(3))
		Expect(out.ValidOut).To(BeFalse())
		Expect(out.ReadyOut).To(BeTrue())
	})

	It("should preload", func() {
		f, _ := New[int](1)

		Expect(f.Preload(40)).To(Succeed())
		Expect(errors.Is(f.Preload(41), ErrFull)).To(BeTrue())
		Expect(f.Items()).To(Equal([]int{40}))

		out := f.Outputs()
		Expect(out.DataOut).To(Equal(40))
		Expect(out.ValidOut).To(BeTrue())
		Expect(out.ReadyOut).To(BeFalse())
	})

	DescribeTable("random traffic",
		func(capacity int, seed int64) {
			f, err := New[int](capacity)
			Expect(err).ToNot(HaveOccurred())

			rng := rand.New(rand.NewSource(seed))
			out := f.Outputs()
			var written, read []int

			for tick := 0; tick < 1000; tick++ {
				Expect(out.ReadyOut).To(Equal(f.Len() < capacity))
				Expect(out.ValidOut).To(Equal(f.Len() > 0))

				in := Inputs[int]{
					DataIn:  tick,
					ValidIn: rng.Intn(3) > 0,
					ReadyIn: rng.Intn(2) > 0,
				}

				writeAccepted := in.ValidIn && out.ReadyOut
				readAccepted := in.ReadyIn && out.ValidOut
				head := out.DataOut

				var t Transfer[int]
				out, t = f.Step(in)

				Expect(t.Wrote).To(Equal(writeAccepted))
				Expect(t.Read).To(Equal(readAccepted))

				if t.Wrote {
					written = append(written, t.WroteData)
				}

				if t.Read {
					Expect(t.ReadData).To(Equal(head))
					read = append(read, t.ReadData)
				}

				Expect(f.Len()).To(BeNumerically(">=", 0))
				Expect(f.Len()).To(BeNumerically("<=", capacity))
			}

			Expect(read).To(Equal(written[:len(read)]))
			Expect(f.Items()).To(Equal(written[len(read):]))
		},
		Entry("single slot", 1, int64(1)),
		Entry("two slots", 2, int64(2)),
		Entry("eight slots", 8, int64(3)),
	)
})
