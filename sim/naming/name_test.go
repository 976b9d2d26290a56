package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse name", func() {
		name, err := ParseName("Pipeline[0].Fifo[1]")

		Expect(err).NotTo(HaveOccurred())
		Expect(name.Tokens[0].ElemName).To(Equal("Pipeline"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0}))
		Expect(name.Tokens[1].ElemName).To(Equal("Fifo"))
		Expect(name.Tokens[1].Index).To(Equal([]int{1}))
	})

	It("should parse multi-dimensional index", func() {
		name, err := ParseName("Grid[0][1].Fifo")

		Expect(err).NotTo(HaveOccurred())
		Expect(name.Tokens[0].Index).To(Equal([]int{0, 1}))
		Expect(name.Tokens[1].Index).To(BeEmpty())
	})

	It("should accept a valid name", func() {
		Expect(IsValid("Accumulator.AdderOut.DataIn")).To(Succeed())
	})

	DescribeTable("invalid names",
		func(name string) {
			Expect(IsValid(name)).NotTo(Succeed())
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("empty", ""),
		Entry("underscore", "Fifo_0"),
		Entry("dash", "Fifo-0"),
		Entry("lower case", "fifo"),
		Entry("unclosed bracket", "Fifo[0"),
		Entry("unopened bracket", "Fifo0]"),
		Entry("empty element", "Top..Fifo"),
		Entry("trailing dot", "Top.Fifo."),
		Entry("non-integer index", "Fifo[a]"),
	)

	It("should build names", func() {
		Expect(BuildName("", "Fifo")).To(Equal("Fifo"))
		Expect(BuildName("Top", "Fifo")).To(Equal("Top.Fifo"))
		Expect(BuildNameWithIndex("Top", "Fifo", 3)).To(Equal("Top.Fifo[3]"))
	})
})
