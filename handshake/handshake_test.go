package handshake

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// link evaluates a writer and a reader that share a wire.
type link struct {
	naming.NamedBase

	w   *Writer[int]
	r   *Reader[int]
	act func()
}

func (l *link) Evaluate() {
	l.w.Sample()
	l.r.Sample()

	if l.act != nil {
		l.act()
		l.act = nil
	}

	l.w.Drive()
	l.r.Drive()
}

func (l *link) Reset() {
	l.w.Reset()
	l.r.Reset()
}

var _ = Describe("Writer and Reader", func() {
	var (
		domain *clocking.Domain
		wire   Wire[int]
		l      *link
	)

	BeforeEach(func() {
		domain = clocking.MakeBuilder().
			WithEngine(timing.NewSerialEngine()).
			Build("Clock")
		wire = NewWire[int](domain, "Wire")

		l = &link{NamedBase: naming.MakeNamedBase("Link")}
		l.w = NewWriter[int](l, "Out")
		l.r = NewReader[int](l, "In")
		l.w.Plug(wire)
		l.r.Plug(wire)

		domain.Register(l)
		domain.Reset()
	})

	It("should name the ports after the owner", func() {
		Expect(l.w.Name()).To(Equal("Link.Out"))
		Expect(l.w.Data.Name()).To(Equal("Link.Out.Data"))
		Expect(l.r.Ready.Name()).To(Equal("Link.In.Ready"))

		for _, p := range append(l.w.Ports(), l.r.Ports()...) {
			Expect(p.IsBound()).To(BeTrue())
		}
	})

	It("should reset to not valid and ready", func() {
		Expect(wire.Valid.Read()).To(BeFalse())
		Expect(wire.Ready.Read()).To(BeTrue())
		Expect(l.w.CanWrite()).To(BeTrue())
	})

	It("should drive a pending item on reset", func() {
		Expect(l.w.Write(9)).To(BeTrue())

		domain.Reset()

		Expect(wire.Valid.Read()).To(BeTrue())
		Expect(wire.Data.Read()).To(Equal(9))
		Expect(l.w.CanWrite()).To(BeFalse())
	})

	It("should transfer one item", func() {
		l.act = func() { Expect(l.w.Write(1)).To(BeTrue()) }
		domain.Tick()

		Expect(wire.Valid.Read()).To(BeTrue())
		Expect(wire.Data.Read()).To(Equal(1))
		Expect(wire.Transferring()).To(BeTrue())

		domain.Tick()

		v, ok := l.r.Peek()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))
		Expect(l.w.Accepted()).To(Equal(uint64(1)))
		Expect(l.r.Received()).To(Equal(uint64(1)))
		Expect(wire.Valid.Read()).To(BeFalse())
		Expect(wire.Ready.Read()).To(BeFalse())
	})

	It("should hold the data until it is accepted", func() {
		l.act = func() { l.w.Write(1) }
		domain.Tick()

		l.act = func() { Expect(l.w.Write(2)).To(BeTrue()) }
		domain.Tick()

		Expect(wire.Ready.Read()).To(BeFalse())

		for i := 0; i < 3; i++ {
			l.act = func() { Expect(l.w.Write(3)).To(BeFalse()) }
			domain.Tick()

			Expect(wire.Valid.Read()).To(BeTrue())
			Expect(wire.Data.Read()).To(Equal(2))
			Expect(l.w.Accepted()).To(Equal(uint64(1)))
		}

		l.act = func() {
			v, ok := l.r.Take()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
		}
		domain.Tick()

		Expect(wire.Ready.Read()).To(BeTrue())

		domain.Tick()

		v, _ := l.r.Peek()
		Expect(v).To(Equal(2))
		Expect(l.w.Accepted()).To(Equal(uint64(2)))
		Expect(l.w.CanWrite()).To(BeTrue())
	})

	It("should not take from an empty reader", func() {
		_, ok := l.r.Take()

		Expect(ok).To(BeFalse())
	})
})
