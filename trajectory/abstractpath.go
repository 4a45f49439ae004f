package trajectory

import (
	"log"
	"sort"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
)

// DefaultMaxSubgraphs is the number of subgraphs kept per abstract path and
// action when no other limit is given.
const DefaultMaxSubgraphs = 64

// An AbstractPath is a trajectory together with the subgraphs that realize
// it. Each subgraph holds the edges of one walk.
type AbstractPath struct {
	Trajectory graph.Trajectory
	Subgraphs  []graph.Subgraph
}

// Key identifies the abstract path.
func (p *AbstractPath) Key() string {
	return p.Trajectory.Key()
}

type abstractSet map[string]*AbstractPath

// An AbstractPathExtractor maps every abstract path of a subsystem to the
// edges that can realize it, so that concrete paths can be searched within
// exactly those edges.
type AbstractPathExtractor struct {
	subsystem    *subsystem.Subsystem
	abstraction  graph.Abstraction
	maxSubgraphs int

	graph *graph.MemoryGraph
	paths abstractSet
}

// NewAbstractPathExtractor creates an extractor that keeps at most
// maxSubgraphs subgraphs per abstract path and action. A non-positive limit
// selects DefaultMaxSubgraphs.
func NewAbstractPathExtractor(
	s *subsystem.Subsystem,
	abs graph.Abstraction,
	maxSubgraphs int,
) *AbstractPathExtractor {
	if s == nil {
		log.Panic("abstract path extractor requires a subsystem")
	}

	if maxSubgraphs <= 0 {
		maxSubgraphs = DefaultMaxSubgraphs
	}

	return &AbstractPathExtractor{
		subsystem:    s,
		abstraction:  abs,
		maxSubgraphs: maxSubgraphs,
	}
}

// Graph returns the labeled graph the abstract paths refer to.
func (e *AbstractPathExtractor) Graph() *graph.MemoryGraph {
	e.Extract()
	return e.graph
}

// Extract returns the abstract paths by key. The work is done once.
func (e *AbstractPathExtractor) Extract() map[string]*AbstractPath {
	if e.paths != nil {
		return e.paths
	}

	e.graph = graph.Build(e.subsystem, e.abstraction)
	sets := make([]abstractSet, e.graph.NumActions())

	postOrder(e.subsystem, e.graph, func(a subsystem.ActionID) {
		sets[a] = e.compose(a, sets)
	})

	e.paths = sets[e.subsystem.Start()]

	return e.paths
}

// Keys returns the keys of the abstract paths in order.
func (e *AbstractPathExtractor) Keys() []string {
	paths := e.Extract()

	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (e *AbstractPathExtractor) compose(
	a subsystem.ActionID,
	sets []abstractSet,
) abstractSet {
	edges := e.graph.Edges(a)
	if len(edges) == 0 {
		return abstractSet{"": &AbstractPath{
			Trajectory: graph.Trajectory{},
			Subgraphs:  []graph.Subgraph{graph.NewSubgraph()},
		}}
	}

	result := make(abstractSet)
	seen := make(map[string]map[string]bool)

	for _, edge := range edges {
		for _, ap := range sets[edge.Target()] {
			t := ap.Trajectory
			if edge.Labeled {
				t = t.Prepend(edge.Label)
			}

			key := t.Key()
			if _, ok := result[key]; !ok {
				result[key] = &AbstractPath{Trajectory: t}
				seen[key] = make(map[string]bool)
			}

			for _, sg := range ap.Subgraphs {
				ext := sg.With(edge.Transition.ID)
				if seen[key][ext.Key()] {
					continue
				}

				seen[key][ext.Key()] = true
				result[key].Subgraphs = append(result[key].Subgraphs, ext)
			}
		}
	}

	for _, ap := range result {
		sort.Slice(ap.Subgraphs, func(i, j int) bool {
			return ap.Subgraphs[i].Key() < ap.Subgraphs[j].Key()
		})

		if len(ap.Subgraphs) > e.maxSubgraphs {
			ap.Subgraphs = ap.Subgraphs[:e.maxSubgraphs]
		}
	}

	return result
}

// Chooser creates a chooser over the concrete paths of one abstract path,
// with one iterator per subgraph. The builder supplies the search settings;
// its subsystem, graph, trajectory and subgraph are replaced. It returns false
// if no abstract path has the key.
func (e *AbstractPathExtractor) Chooser(
	key string,
	b path.Builder,
) (*path.Chooser, bool) {
	ap, ok := e.Extract()[key]
	if !ok {
		return nil, false
	}

	b = b.WithSubsystem(e.subsystem).
		WithGraph(e.graph).
		WithTrajectory(ap.Trajectory).
		WithSharedIDGenerator()

	its := make([]path.PathIterator, 0, len(ap.Subgraphs))
	for _, sg := range ap.Subgraphs {
		its = append(its, b.WithSubgraph(sg).Build())
	}

	return path.NewChooser(b.Random(), its...), true
}
