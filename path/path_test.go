package path_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
)

var _ = Describe("Path", func() {
	var (
		s *subsystem.Subsystem
		g *graph.MemoryGraph
	)

	BeforeEach(func() {
		s = fixture.Walk()
		g = graph.Build(s, nil)
	})

	edge := func(from string, i int) *path.Program {
		a, _ := s.ActionByName(from)
		return path.NewAtomic(g.Edges(a.ID)[i])
	}

	It("should list the buffers and addresses it touches", func() {
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{
				Kind:    path.Normal,
				Program: path.NewSequence(edge("tlb", 0), edge("mem", 0)),
			},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		tlb, _ := s.BufferByName("TLB")
		mem, _ := s.BufferByName("MEM")

		Expect(p.Validate(s)).To(Succeed())
		Expect(p.Buffers()).To(Equal([]subsystem.BufferID{tlb.ID, mem.ID}))
		Expect(p.Addresses(s)).To(HaveLen(2))
		Expect(p.End()).To(Equal(edge("mem", 0).Target()))
		Expect(p.Transitions()).To(HaveLen(3))
	})

	It("should accept a balanced nested access", func() {
		frame := path.Frame{ID: "PT#1"}
		call := edge("walk", 0)

		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{Kind: path.Normal, Program: edge("tlb", 1)},
			{Kind: path.Call, Program: call, Frame: frame},
			{Kind: path.Normal, Program: edge("start", 0)},
			{
				Kind:    path.Normal,
				Program: path.NewSequence(edge("tlb", 0), edge("mem", 0)),
			},
			{Kind: path.Return, Program: call, Frame: frame},
			{Kind: path.Normal, Program: edge("mem", 0)},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(Succeed())
		Expect(p.NumCalls()).To(Equal(1))
		Expect(p.String()).To(ContainSubstring("CALL PT#1"))
		Expect(p.String()).To(ContainSubstring("RETURN PT#1"))
	})

	It("should reject a gap", func() {
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{Kind: path.Normal, Program: edge("mem", 0)},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(MatchError(ContainSubstring("leaves")))
	})

	It("should reject a path that stops early", func() {
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(MatchError(ContainSubstring("not terminal")))
	})

	It("should reject an unmatched return", func() {
		call := edge("walk", 0)
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{Kind: path.Normal, Program: edge("tlb", 1)},
			{Kind: path.Return, Program: call, Frame: path.Frame{ID: "PT#1"}},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(MatchError(ContainSubstring("no matching")))
	})

	It("should reject a return that closes another frame", func() {
		call := edge("walk", 0)
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{Kind: path.Normal, Program: edge("tlb", 1)},
			{Kind: path.Call, Program: call, Frame: path.Frame{ID: "PT#1"}},
			{Kind: path.Normal, Program: edge("start", 0)},
			{
				Kind:    path.Normal,
				Program: path.NewSequence(edge("tlb", 0), edge("mem", 0)),
			},
			{Kind: path.Return, Program: call, Frame: path.Frame{ID: "PT#2"}},
			{Kind: path.Normal, Program: edge("mem", 0)},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(MatchError(ContainSubstring("closes")))
	})

	It("should reject an open call", func() {
		call := edge("walk", 0)
		p := path.NewPath(s.Start(), []path.Entry{
			{Kind: path.Normal, Program: edge("start", 0)},
			{Kind: path.Normal, Program: edge("tlb", 1)},
			{Kind: path.Call, Program: call, Frame: path.Frame{ID: "PT#1"}},
			{Kind: path.Normal, Program: edge("start", 0)},
			{
				Kind:    path.Normal,
				Program: path.NewSequence(edge("tlb", 0), edge("mem", 0)),
			},
		}, path.Context{}, path.AlwaysFeasible{}.NewResult())

		Expect(p.Validate(s)).To(MatchError(ContainSubstring("not closed")))
	})
})
