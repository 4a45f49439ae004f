package hazard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/subsystem"
)

var _ = Describe("Witness", func() {
	var (
		s   *subsystem.Subsystem
		l1  *subsystem.Buffer
		tlb *subsystem.Buffer
	)

	BeforeEach(func() {
		s = fixture.Cache()
		l1, _ = s.BufferByName("L1")
		tlb, _ = s.BufferByName("TLB")
	})

	DescribeTable("replaceable buffer",
		func(second uint64, between []uint64, expected hazard.Kind) {
			k, ok := hazard.Witness(l1, 0, second, between...)

			Expect(ok).To(BeTrue())
			Expect(k).To(Equal(expected))
		},
		Entry("other set", uint64(0x40), nil, hazard.IndexNotEqual),
		Entry("same line", uint64(0x10), nil, hazard.TagEqual),
		Entry("free way", uint64(0x1000), nil, hazard.TagNotReplaced),
		Entry("full set", uint64(0x1000),
			[]uint64{0x2000, 0x3000, 0x4000}, hazard.TagReplaced),
		Entry("first already evicted", uint64(0x1000),
			[]uint64{0x2000, 0x3000, 0x4000, 0x5000}, hazard.TagNotReplaced),
	)

	It("should find tag inequality in a buffer that is never replaced", func() {
		k, ok := hazard.Witness(tlb, 0, 0x10000)

		Expect(ok).To(BeTrue())
		Expect(k).To(Equal(hazard.TagNotEqual))
	})

	It("should find nothing for the same entry of a fixed buffer", func() {
		_, ok := hazard.Witness(tlb, 0, 0x100)

		Expect(ok).To(BeFalse())
	})

	It("should only witness hazards the buffer has", func() {
		c := hazard.NewCache()

		for _, b := range []*subsystem.Buffer{l1, tlb} {
			available := kinds(c.BufferHazards(s, b.ID))

			for _, second := range []uint64{0x10, 0x40, 0x1000, 0x10000} {
				k, ok := hazard.Witness(b, 0, second, 0x2000, 0x3000, 0x4000)
				if ok {
					Expect(available).To(ContainElement(k))
				}
			}
		}
	})
})
