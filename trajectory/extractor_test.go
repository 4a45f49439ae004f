package trajectory

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
)

var _ = Describe("Extractor", func() {
	It("should produce the empty trajectory for a linear subsystem", func() {
		r := NewExtractor(fixture.Linear(), nil).Extract()

		Expect(r.Trajectories).To(HaveLen(1))
		Expect(r.Trajectories[0]).To(BeEmpty())
	})

	It("should tell reads from writes", func() {
		r := NewExtractor(fixture.ReadWrite(), ByOperation).Extract()

		Expect(r.Trajectories).To(Equal([]graph.Trajectory{
			{"READ"}, {"WRITE"},
		}))
	})

	It("should follow the buffer events of the cache", func() {
		r := NewExtractor(fixture.Cache(), ByBufferEvent).Extract()

		Expect(r.Trajectories).To(Equal([]graph.Trajectory{
			{"TLB.HIT", "L1.HIT"},
			{"TLB.HIT", "L1.MISS"},
			{"TLB.MISS"},
		}))
	})

	It("should merge walks that look the same", func() {
		r := NewExtractor(fixture.Cache(), ByOperation).Extract()

		Expect(r.Trajectories).To(Equal([]graph.Trajectory{
			{"READ"}, {"WRITE"},
		}))
	})

	It("should name every edge when labeling by transition", func() {
		r := NewExtractor(fixture.Chain(), ByTransition).Extract()

		Expect(r.Trajectories).To(Equal([]graph.Trajectory{
			{"t0", "t1", "t2"},
		}))
	})

	It("should return the labeled graph", func() {
		s := fixture.ReadWrite()
		r := NewExtractor(s, ByOperation).Extract()

		Expect(r.Graph.Equal(graph.Build(s, ByOperation))).To(BeTrue())
	})

	It("should panic on a cycle", func() {
		Expect(func() {
			NewExtractor(fixture.Cyclic(), nil).Extract()
		}).To(Panic())
	})

	DescribeTable("every trajectory should be realized by a path",
		func(s *subsystem.Subsystem, abs graph.Abstraction) {
			r := NewExtractor(s, abs).Extract()
			b := path.MakeBuilder().
				WithSubsystem(s).
				WithGraph(r.Graph).
				WithRandom(rand.New(rand.NewSource(3)))

			for _, t := range r.Trajectories {
				it := b.WithTrajectory(t).Build()

				p, ok := it.Next()
				Expect(ok).To(BeTrue(), "trajectory %s", t)
				Expect(p.Validate(s)).To(Succeed())
			}
		},
		Entry("linear", fixture.Linear(), nil),
		Entry("read-write by operation", fixture.ReadWrite(), ByOperation),
		Entry("cache by event", fixture.Cache(), ByBufferEvent),
		Entry("cache by transition", fixture.Cache(), ByTransition),
		Entry("walk by event", fixture.Walk(), ByBufferEvent),
		Entry("switch by transition", fixture.Switch(), ByTransition),
	)
})
