package coverage

import (
	"bytes"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
	"github.com/sarchlab/mmucov/trajectory"
)

var _ = Describe("Explorer", func() {
	var (
		x *Explorer
		s *subsystem.Subsystem
		b path.Builder
	)

	BeforeEach(func() {
		x = NewExplorer()
		s = fixture.Cache()

		r := trajectory.NewExtractor(s, trajectory.ByBufferEvent).Extract()
		b = path.MakeBuilder().
			WithSubsystem(s).
			WithGraph(r.Graph).
			WithRandom(rand.New(rand.NewSource(9))).
			WithHook(x)
	})

	drain := func(it *path.Iterator) {
		for it.HasNext() {
			it.Next()
		}
	}

	It("should count the paths of an unrestricted search", func() {
		drain(b.Build())

		st, ok := x.Stats(Unrestricted)
		Expect(ok).To(BeTrue())
		Expect(st.Paths).To(Equal(3))
		Expect(st.Entries).To(BeNumerically(">=", 3))
		Expect(st.Backtracks).To(BeNumerically(">", 0))
	})

	It("should keep trajectories apart", func() {
		hit := graph.Trajectory{"TLB.HIT", "L1.HIT"}
		miss := graph.Trajectory{"TLB.MISS"}

		drain(b.WithTrajectory(hit).Build())
		drain(b.WithTrajectory(miss).Build())

		Expect(x.Trajectories()).To(ConsistOf(hit.String(), miss.String()))

		st, _ := x.Stats(miss.String())
		Expect(st.Paths).To(Equal(1))
		Expect(x.Total().Paths).To(Equal(2))
	})

	It("should count rejected programs", func() {
		drain(b.WithOracle(path.EventOracle{}).
			WithConstraints(path.Constraints{
				Events: map[subsystem.BufferID][]subsystem.BufferEvent{
					0: {subsystem.EventMiss},
				},
			}).
			Build())

		st, _ := x.Stats(Unrestricted)
		Expect(st.Paths).To(Equal(1))
		Expect(st.Rejected).To(Equal(1))
	})

	It("should count nested accesses", func() {
		walk := fixture.Walk()
		drain(path.MakeBuilder().
			WithSubsystem(walk).
			WithRandom(rand.New(rand.NewSource(9))).
			WithHook(x).
			Build())

		st, _ := x.Stats(Unrestricted)
		Expect(st.Paths).To(Equal(2))
		Expect(st.Calls).To(BeNumerically(">=", 1))
	})

	It("should report", func() {
		drain(b.Build())

		var buf bytes.Buffer
		x.Report(&buf)

		Expect(buf.String()).To(ContainSubstring("trajectory"))
		Expect(buf.String()).To(ContainSubstring(Unrestricted))
	})

	It("should ignore hooks from elsewhere", func() {
		x.Func(hooking.HookCtx{Pos: path.HookPosPathFound})

		Expect(x.Trajectories()).To(BeEmpty())
	})
})
