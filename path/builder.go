package path

import (
	"log"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/idgen"
	"github.com/sarchlab/mmucov/subsystem"
)

// Random is the source of randomness of the search. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

// permutation returns a random order of 0..n-1.
func permutation(r Random, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	return order
}

// A Builder can build path iterators.
type Builder struct {
	subsystem      *subsystem.Subsystem
	graph          *graph.MemoryGraph
	oracle         Oracle
	random         Random
	ids            idgen.IDGenerator
	access         AccessType
	constraints    Constraints
	trajectory     graph.Trajectory
	targeted       bool
	subgraph       *graph.Subgraph
	lookaheadDepth int
	mergeDepth     int
	maxCallDepth   int
	context        Context
	result         SymbolicResult
	hooks          []hooking.Hook
}

// MakeBuilder returns a Builder with the default search parameters.
func MakeBuilder() Builder {
	return Builder{
		oracle:         AlwaysFeasible{},
		lookaheadDepth: 4,
		mergeDepth:     10,
		maxCallDepth:   3,
	}
}

// WithSubsystem sets the subsystem to search.
func (b Builder) WithSubsystem(s *subsystem.Subsystem) Builder {
	b.subsystem = s
	return b
}

// WithGraph sets the memory graph to search. The edges of the graph decide
// which labels paths carry. If not set, an unlabeled graph of the subsystem is
// used.
func (b Builder) WithGraph(g *graph.MemoryGraph) Builder {
	b.graph = g
	return b
}

// WithOracle sets the feasibility oracle.
func (b Builder) WithOracle(o Oracle) Builder {
	b.oracle = o
	return b
}

// WithRandom sets the source that orders the edges of every search step.
func (b Builder) WithRandom(r Random) Builder {
	b.random = r
	return b
}

// WithIDGenerator sets the generator that names nested-access frames.
func (b Builder) WithIDGenerator(g idgen.IDGenerator) Builder {
	b.ids = g
	return b
}

// WithSharedIDGenerator makes every iterator built from the builder draw
// frame IDs from one generator, so that frames of sibling iterators never
// share a name. A generator that is already set is kept.
func (b Builder) WithSharedIDGenerator() Builder {
	if b.ids == nil {
		b.ids = idgen.NewSequentialIDGenerator()
	}

	return b
}

// WithAccessType sets the access the paths are searched for.
func (b Builder) WithAccessType(a AccessType) Builder {
	b.access = a
	return b
}

// WithConstraints restricts the buffer events of the paths.
func (b Builder) WithConstraints(c Constraints) Builder {
	b.constraints = c
	return b
}

// WithTrajectory restricts the search to paths whose labels form exactly the
// given trajectory.
func (b Builder) WithTrajectory(t graph.Trajectory) Builder {
	b.trajectory = t
	b.targeted = true

	return b
}

// WithoutTrajectory lifts the trajectory restriction.
func (b Builder) WithoutTrajectory() Builder {
	b.trajectory = nil
	b.targeted = false

	return b
}

// WithSubgraph restricts the search to the edges of the subgraph.
func (b Builder) WithSubgraph(g graph.Subgraph) Builder {
	b.subgraph = &g
	return b
}

// WithLookaheadDepth sets how many edges are looked at when checking that an
// edge can still realize the trajectory.
func (b Builder) WithLookaheadDepth(n int) Builder {
	b.lookaheadDepth = n
	return b
}

// WithMergeDepth sets how many edges can be merged into one program.
func (b Builder) WithMergeDepth(n int) Builder {
	b.mergeDepth = n
	return b
}

// WithMaxCallDepth sets how deep nested memory accesses can go.
func (b Builder) WithMaxCallDepth(n int) Builder {
	b.maxCallDepth = n
	return b
}

// WithContext sets the call stack the search starts with.
func (b Builder) WithContext(c Context) Builder {
	b.context = c
	return b
}

// WithResult sets the symbolic state the search starts with.
func (b Builder) WithResult(r SymbolicResult) Builder {
	b.result = r
	return b
}

// WithHook registers a hook on every iterator built.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(append([]hooking.Hook(nil), b.hooks...), h)
	return b
}

// Random returns the random source of the builder.
func (b Builder) Random() Random {
	return b.random
}

func (b Builder) parametersMustBeValid() {
	if b.subsystem == nil {
		log.Panic("path iterator requires a subsystem")
	}

	if b.random == nil {
		log.Panic("path iterator requires a random source")
	}

	if b.oracle == nil {
		log.Panic("path iterator requires an oracle")
	}

	if b.lookaheadDepth < 0 || b.mergeDepth < 1 || b.maxCallDepth < 0 {
		log.Panicf("invalid search depths: lookahead %d, merge %d, call %d",
			b.lookaheadDepth, b.mergeDepth, b.maxCallDepth)
	}

	if b.graph != nil && b.graph.NumActions() != b.subsystem.NumActions() {
		log.Panic("memory graph does not match the subsystem")
	}
}

// Build creates an iterator.
func (b Builder) Build() *Iterator {
	b.parametersMustBeValid()

	if b.graph == nil {
		b.graph = graph.Build(b.subsystem, nil)
	}

	if b.ids == nil {
		b.ids = idgen.NewSequentialIDGenerator()
	}

	if b.result == nil {
		b.result = b.oracle.NewResult()
	}

	it := &Iterator{cfg: b}
	for _, h := range b.hooks {
		it.AcceptHook(h)
	}

	it.push(b.subsystem.Start(), b.context, b.result, b.trajectory)

	return it
}
