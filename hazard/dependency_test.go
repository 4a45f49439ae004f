package hazard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/subsystem"
)

var _ = Describe("UnitedDependency", func() {
	var (
		s     *subsystem.Subsystem
		c     *hazard.Cache
		va    *subsystem.Address
		pa    *subsystem.Address
		tlb   *subsystem.Buffer
		l1    *subsystem.Buffer
		byKey func(hs []*hazard.Hazard, k hazard.Kind) *hazard.Hazard
	)

	BeforeEach(func() {
		s = fixture.Cache()
		c = hazard.NewCache()
		va, _ = s.AddressByName("VA")
		pa, _ = s.AddressByName("PA")
		tlb, _ = s.BufferByName("TLB")
		l1, _ = s.BufferByName("L1")

		byKey = func(hs []*hazard.Hazard, k hazard.Kind) *hazard.Hazard {
			for _, h := range hs {
				if h.Kind == k {
					return h
				}
			}

			Fail("hazard not found")

			return nil
		}
	})

	It("should unite dependencies by entity", func() {
		vaHazards := c.AddressHazards(s, va.ID)
		paHazards := c.AddressHazards(s, pa.ID)
		l1Hazards := c.BufferHazards(s, l1.ID)

		u := hazard.NewUnitedDependency(s, map[*hazard.Dependency]int{
			{Hazards: []*hazard.Hazard{byKey(vaHazards, hazard.AddrEqual)}}: 0,
			{Hazards: []*hazard.Hazard{
				byKey(paHazards, hazard.AddrNotEqual),
				byKey(l1Hazards, hazard.TagReplaced),
			}}: 1,
			{Hazards: []*hazard.Hazard{byKey(l1Hazards, hazard.TagEqual)}}: 2,
		})

		Expect(u.AddrEqualRelation(va.ID).Sorted()).To(Equal([]int{0}))
		Expect(u.AddrEqualRelation(pa.ID)).To(BeEmpty())
		Expect(u.AddressRelation(pa.ID, hazard.AddrNotEqual).Sorted()).
			To(Equal([]int{1}))

		Expect(u.TagEqualRelation(tlb.ID).Sorted()).To(Equal([]int{0}))
		Expect(u.IndexEqualRelation(tlb.ID).Sorted()).To(Equal([]int{0}))

		Expect(u.BufferRelation(l1.ID, hazard.AddrNotEqual).Sorted()).
			To(Equal([]int{1}))
		Expect(u.IndexEqualRelation(l1.ID).Sorted()).To(Equal([]int{1, 2}))
		Expect(u.TagEqualRelation(l1.ID).Sorted()).To(Equal([]int{2}))
		Expect(u.TagReplacedRelation(l1.ID).Sorted()).To(Equal([]int{1}))
		Expect(u.TagNotEqualRelation(l1.ID).Sorted()).To(Equal([]int{1}))
		Expect(u.TagNotReplacedRelation(l1.ID)).To(BeEmpty())

		Expect(u.Addresses()).To(Equal(
			[]subsystem.AddressID{va.ID, pa.ID}))
		Expect(u.String()).To(ContainSubstring("L1: "))
	})

	It("should include the entries of child buffers", func() {
		s = fixture.Walk()
		tlb, _ = s.BufferByName("TLB")
		micro, _ := s.BufferByName("uTLB")

		u := hazard.NewUnitedDependency(s, map[*hazard.Dependency]int{
			{Hazards: []*hazard.Hazard{
				byKey(c.BufferHazards(s, micro.ID), hazard.TagEqual),
			}}: 3,
		})

		Expect(u.TagEqualRelation(tlb.ID).Sorted()).To(Equal([]int{3}))
		Expect(u.TagReplacedRelation(tlb.ID)).To(BeEmpty())
	})

	It("should find the hazard of a buffer in a dependency", func() {
		h := byKey(c.BufferHazards(s, l1.ID), hazard.TagEqual)
		d := &hazard.Dependency{Hazards: []*hazard.Hazard{h}}

		found, ok := d.Hazard(l1.ID)
		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(h))

		_, ok = d.Hazard(tlb.ID)
		Expect(ok).To(BeFalse())
		Expect(d.String()).To(Equal("{L1.TAG_EQUAL}"))
	})
})

var _ = Describe("EnumerateDependencies", func() {
	var (
		s      *subsystem.Subsystem
		c      *hazard.Cache
		addrs  []subsystem.AddressID
		bufs   []subsystem.BufferID
		tlb    *subsystem.Buffer
		l1     *subsystem.Buffer
		vaName = "VA"
	)

	BeforeEach(func() {
		s = fixture.Cache()
		c = hazard.NewCache()
		va, _ := s.AddressByName(vaName)
		pa, _ := s.AddressByName("PA")
		tlb, _ = s.BufferByName("TLB")
		l1, _ = s.BufferByName("L1")
		addrs = []subsystem.AddressID{va.ID, pa.ID}
		bufs = []subsystem.BufferID{tlb.ID, l1.ID}
	})

	It("should list every consistent combination", func() {
		deps := hazard.EnumerateDependencies(s, c, addrs, bufs, 0)

		Expect(deps).To(HaveLen(15))
		Expect(deps[0].String()).To(Equal(
			"{VA.ADDR_EQUAL, PA.ADDR_EQUAL, L1.TAG_EQUAL}"))

		for _, d := range deps {
			if d.Hazards[0].Kind != hazard.AddrEqual {
				continue
			}

			_, ok := d.Hazard(tlb.ID)
			Expect(ok).To(BeFalse())
		}
	})

	It("should stop at the limit", func() {
		Expect(hazard.EnumerateDependencies(s, c, addrs, bufs, 4)).To(HaveLen(4))
	})

	It("should give one empty dependency without entities", func() {
		deps := hazard.EnumerateDependencies(s, c, nil, nil, 0)

		Expect(deps).To(HaveLen(1))
		Expect(deps[0].Hazards).To(BeEmpty())
	})
})
