package path_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
)

var _ = Describe("Program", func() {
	var (
		chain *graph.MemoryGraph
		fork  *graph.MemoryGraph
	)

	BeforeEach(func() {
		chain = graph.Build(fixture.Chain(), nil)
		fork = graph.Build(fixture.Switch(), nil)
	})

	It("should wrap a single edge", func() {
		e := chain.Edges(0)[0]
		p := path.NewAtomic(e)

		Expect(p.IsAtomic()).To(BeTrue())
		Expect(p.Source()).To(Equal(e.Source()))
		Expect(p.Target()).To(Equal(e.Target()))
		Expect(p.Size()).To(Equal(1))

		_, labeled := p.Label()
		Expect(labeled).To(BeFalse())
	})

	It("should flatten nested sequences", func() {
		a := path.NewAtomic(chain.Edges(0)[0])
		b := path.NewAtomic(chain.Edges(1)[0])
		c := path.NewAtomic(chain.Edges(2)[0])

		p := path.NewSequence(path.NewSequence(a, b), c)

		Expect(p.IsSequence()).To(BeTrue())
		Expect(p.Items()).To(HaveLen(3))
		Expect(p.Source()).To(Equal(a.Source()))
		Expect(p.Target()).To(Equal(c.Target()))
		Expect(p.String()).To(Equal(
			a.String() + "; " + b.String() + "; " + c.String()))
	})

	It("should panic on a gap in a sequence", func() {
		a := path.NewAtomic(chain.Edges(0)[0])
		c := path.NewAtomic(chain.Edges(2)[0])

		Expect(func() { path.NewSequence(a, c) }).To(Panic())
	})

	It("should keep the single label of a sequence", func() {
		s := fixture.ReadWrite()
		g := graph.Build(s, byOperation)

		p := path.NewSequence(path.NewAtomic(g.Edges(0)[0]))

		label, labeled := p.Label()
		Expect(labeled).To(BeTrue())
		Expect(label).To(Equal(graph.Label("READ")))
	})

	It("should group alternatives with the same endpoints", func() {
		edges := fork.Edges(0)
		p := path.NewSwitch(path.NewAtomic(edges[0]), path.NewAtomic(edges[1]))

		Expect(p.IsSwitch()).To(BeTrue())
		Expect(p.Size()).To(Equal(1))
		Expect(p.Transitions()).To(HaveLen(2))
		Expect(p.String()).To(HavePrefix("{"))
	})

	It("should panic on a switch with one alternative", func() {
		Expect(func() {
			path.NewSwitch(path.NewAtomic(fork.Edges(0)[0]))
		}).To(Panic())
	})

	It("should panic on alternatives that end apart", func() {
		Expect(func() {
			path.NewSwitch(
				path.NewAtomic(chain.Edges(0)[0]),
				path.NewAtomic(chain.Edges(1)[0]))
		}).To(Panic())
	})

	It("should recognize call programs", func() {
		s := fixture.Walk()
		g := graph.Build(s, nil)

		walk, _ := s.ActionByName("walk")
		tlb, _ := s.ActionByName("tlb")

		Expect(path.NewAtomic(g.Edges(walk.ID)[0]).IsCall(s)).To(BeTrue())
		Expect(path.NewAtomic(g.Edges(tlb.ID)[0]).IsCall(s)).To(BeFalse())
	})
})
