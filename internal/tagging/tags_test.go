package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags   TagArray
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		tags = NewTagArray(4, 2, 64)
		finder = NewLRUVictimFinder()
	})

	It("should split addresses into index and tag", func() {
		Expect(tags.Index(0x40)).To(Equal(1))
		Expect(tags.Tag(0x40)).To(Equal(uint64(0)))
		Expect(tags.Index(0x100)).To(Equal(0))
		Expect(tags.Tag(0x100)).To(Equal(uint64(1)))
	})

	It("should miss on an empty array", func() {
		block, ok := tags.Lookup(0x100)

		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should hit after a fill", func() {
		first := Touch(tags, finder, 0x100)
		second := Touch(tags, finder, 0x104)

		Expect(first.Hit).To(BeFalse())
		Expect(first.Evicted).To(BeFalse())
		Expect(second.Hit).To(BeTrue())
	})

	It("should evict the least recently used block", func() {
		Touch(tags, finder, 0x000)
		Touch(tags, finder, 0x100)
		Touch(tags, finder, 0x000)

		a := Touch(tags, finder, 0x200)

		Expect(a.Hit).To(BeFalse())
		Expect(a.Evicted).To(BeTrue())
		Expect(a.Victim.Tag).To(Equal(uint64(1)))

		_, ok := tags.Lookup(0x000)
		Expect(ok).To(BeTrue())
	})

	It("should visit blocks", func() {
		set, _ := tags.GetSet(0)
		tags.Visit(set.Blocks[0])

		Expect(set.LRUQueue).To(Equal([]int{1, 0}))
	})

	It("should reset", func() {
		Touch(tags, finder, 0x100)
		tags.Reset()

		_, ok := tags.Lookup(0x100)
		Expect(ok).To(BeFalse())
	})
})
