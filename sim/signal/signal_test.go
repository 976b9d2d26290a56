package signal

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
)

var _ = Describe("Signal", func() {
	var s *Signal[int]

	BeforeEach(func() {
		s = New("Top.Data", 3)
	})

	It("should read the initial value", func() {
		Expect(s.Read()).To(Equal(3))
		Expect(s.Name()).To(Equal("Top.Data"))
	})

	It("should not expose a written value before commit", func() {
		s.Write(5)

		Expect(s.Read()).To(Equal(3))
		Expect(s.Commit()).To(BeTrue())
		Expect(s.Read()).To(Equal(5))
	})

	It("should keep the value if not written", func() {
		s.Write(5)
		s.Commit()

		Expect(s.Commit()).To(BeFalse())
		Expect(s.Read()).To(Equal(5))
	})

	It("should allow the same value to be written twice in a tick", func() {
		s.Write(5)
		s.Write(5)

		Expect(s.Commit()).To(BeTrue())
	})

	It("should panic if driven with different values in a tick", func() {
		s.Write(5)

		Expect(func() { s.Write(6) }).To(Panic())
	})

	It("should allow a new value after commit", func() {
		s.Write(5)
		s.Commit()
		s.Write(6)
		s.Commit()

		Expect(s.Read()).To(Equal(6))
	})

	It("should initialize both values", func() {
		s.Write(5)
		s.Initialize(9)

		Expect(s.Read()).To(Equal(9))
		Expect(s.Commit()).To(BeFalse())
	})

	It("should invoke hooks when the value changes", func() {
		var items []interface{}
		s.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosSignalChange))
			items = append(items, ctx.Item)
		}))

		s.Write(3)
		s.Commit()
		s.Write(4)
		s.Commit()

		Expect(items).To(Equal([]interface{}{4}))
	})

	It("should reject invalid names", func() {
		Expect(func() { New("bad_name", 0) }).To(Panic())
	})
})

var _ = Describe("Ports", func() {
	var (
		owner naming.NamedBase
		sig   *Signal[bool]
		in    *In[bool]
		out   *Out[bool]
	)

	BeforeEach(func() {
		owner = naming.MakeNamedBase("Comp")
		sig = New("Wire", false)
		in = NewIn[bool](&owner, "ValidIn")
		out = NewOut[bool](&owner, "ValidOut")
	})

	It("should be named after the owner", func() {
		Expect(in.Name()).To(Equal("Comp.ValidIn"))
		Expect(out.Name()).To(Equal("Comp.ValidOut"))
	})

	It("should connect an output to an input through a signal", func() {
		in.Bind(sig)
		out.Bind(sig)

		out.Write(true)
		Expect(in.Read()).To(BeFalse())

		sig.Commit()
		Expect(in.Read()).To(BeTrue())
		Expect(out.Read()).To(BeTrue())
	})

	It("should report binding", func() {
		Expect(in.IsBound()).To(BeFalse())

		in.Bind(sig)

		Expect(in.IsBound()).To(BeTrue())
		Expect(in.Signal()).To(BeIdenticalTo(sig))
	})

	It("should panic when used unbound", func() {
		Expect(func() { in.Read() }).To(Panic())
		Expect(func() { out.Write(true) }).To(Panic())
	})

	It("should panic when bound twice", func() {
		in.Bind(sig)

		Expect(func() { in.Bind(New("Other", false)) }).To(Panic())
	})

	It("should panic when bound to nil", func() {
		Expect(func() { out.Bind(nil) }).To(Panic())
	})

	It("should initialize the bound signal", func() {
		out.Bind(sig)
		out.Initialize(true)

		Expect(sig.Read()).To(BeTrue())
	})
})
