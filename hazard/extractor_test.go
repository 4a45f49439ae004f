package hazard_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/subsystem"
)

func kinds(hs []*hazard.Hazard) []hazard.Kind {
	ks := make([]hazard.Kind, len(hs))
	for i, h := range hs {
		ks[i] = h.Kind
	}

	return ks
}

var _ = Describe("Coverage extractors", func() {
	var s *subsystem.Subsystem

	buffer := func(name string) subsystem.BufferID {
		b, ok := s.BufferByName(name)
		Expect(ok).To(BeTrue())

		return b.ID
	}

	BeforeEach(func() {
		s = fixture.Cache()
	})

	It("should give two hazards per address space", func() {
		va, _ := s.AddressByName("VA")
		hs := hazard.NewAddressCoverageExtractor(s, va.ID).Hazards()

		Expect(kinds(hs)).To(Equal(
			[]hazard.Kind{hazard.AddrEqual, hazard.AddrNotEqual}))
		Expect(hs[0].Name()).To(Equal("VA.ADDR_EQUAL"))
		Expect(hs[0].IsBuffer()).To(BeFalse())
		Expect(hs[0].Condition.String()).To(Equal("va[1] == va[2]"))
		Expect(hs[1].Condition.String()).To(Equal("va[1] != va[2]"))
	})

	It("should give one tag hazard for a buffer that is never replaced", func() {
		hs := hazard.NewBufferCoverageExtractor(s, buffer("TLB")).Hazards()

		Expect(kinds(hs)).To(Equal(
			[]hazard.Kind{hazard.IndexNotEqual, hazard.TagNotEqual}))
		Expect(hs[1].IsBuffer()).To(BeTrue())
		Expect(hs[1].Condition.Atoms).To(HaveLen(2))
		Expect(hs[1].Condition.Atoms[0].Field).To(Equal(hazard.FieldIndex))
		Expect(hs[1].Condition.Atoms[0].Relation).To(Equal(hazard.Equal))
	})

	It("should give three tag hazards for a replaceable buffer", func() {
		hs := hazard.NewBufferCoverageExtractor(s, buffer("L1")).Hazards()

		Expect(kinds(hs)).To(Equal([]hazard.Kind{
			hazard.IndexNotEqual, hazard.TagNotReplaced,
			hazard.TagReplaced, hazard.TagEqual,
		}))
		Expect(hs[2].Name()).To(Equal("L1.TAG_REPLACED"))
		Expect(hs[2].Condition.String()).To(Equal(
			"pa<11:6>[1] == pa<11:6>[2] && " +
				"pa<35:12>[1] != pa<35:12>[2] && " +
				"L1.tag[1] == L1.replaced[2]"))
	})

	It("should give no hazards for a plain memory", func() {
		Expect(hazard.NewBufferCoverageExtractor(s, buffer("MEM")).Hazards()).
			To(BeEmpty())
	})

	It("should skip the index hazard for a single set", func() {
		s = fixture.Walk()

		tlbHazards := hazard.NewBufferCoverageExtractor(s, buffer("TLB")).Hazards()
		Expect(kinds(tlbHazards)).
			To(Equal([]hazard.Kind{
				hazard.TagNotReplaced, hazard.TagReplaced, hazard.TagEqual,
			}))
		Expect(kinds(hazard.NewBufferCoverageExtractor(s, buffer("PT")).Hazards())).
			To(Equal([]hazard.Kind{hazard.IndexNotEqual}))

		tlb := hazard.NewBufferCoverageExtractor(s, buffer("TLB"))
		for _, h := range tlb.Hazards() {
			for _, a := range h.Condition.Atoms {
				Expect(a.Field).NotTo(Equal(hazard.FieldIndex))
			}
		}
	})

	It("should panic on an unknown buffer", func() {
		Expect(func() { hazard.NewBufferCoverageExtractor(s, 42) }).To(Panic())
	})

	It("should parse kind names", func() {
		k, err := hazard.ParseKind("tag_replaced")

		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(hazard.TagReplaced))

		_, err = hazard.ParseKind("TAG_MAYBE")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Cache", func() {
	It("should compute every entry once", func() {
		s := fixture.Cache()
		c := hazard.NewCache()
		l1, _ := s.BufferByName("L1")

		first := c.BufferHazards(s, l1.ID)

		Expect(c.BufferHazards(s, l1.ID)[0]).To(BeIdenticalTo(first[0]))
		Expect(c.Len()).To(Equal(1))
	})

	It("should hand out the same hazards to concurrent callers", func() {
		s := fixture.Cache()
		c := hazard.NewCache()
		va, _ := s.AddressByName("VA")

		results := make([][]*hazard.Hazard, 8)

		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()
				results[i] = c.AddressHazards(s, va.ID)
			}(i)
		}

		wg.Wait()

		for _, r := range results {
			Expect(r[0]).To(BeIdenticalTo(results[0][0]))
		}
	})

	It("should keep subsystems apart", func() {
		c := hazard.NewCache()
		a, b := fixture.Cache(), fixture.Cache()

		Expect(c.AddressHazards(a, 0)[0]).
			NotTo(BeIdenticalTo(c.AddressHazards(b, 0)[0]))
		Expect(c.Len()).To(Equal(2))
	})
})
