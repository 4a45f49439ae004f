// Package trajectory enumerates the abstract paths of a memory subsystem.
// An abstraction labels the observable transitions; a trajectory is the
// sequence of labels met on one walk from the start action to a terminal
// action.
package trajectory

import (
	"log"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/subsystem"
)

// A Result holds the labeled graph and every trajectory it can produce.
type Result struct {
	Graph        *graph.MemoryGraph
	Trajectories []graph.Trajectory
}

// An Extractor finds the trajectories of a subsystem under an abstraction.
type Extractor struct {
	subsystem   *subsystem.Subsystem
	abstraction graph.Abstraction
}

// NewExtractor creates an extractor. A nil abstraction labels nothing, so the
// only trajectory is the empty one.
func NewExtractor(
	s *subsystem.Subsystem,
	abs graph.Abstraction,
) *Extractor {
	if s == nil {
		log.Panic("trajectory extractor requires a subsystem")
	}

	return &Extractor{subsystem: s, abstraction: abs}
}

// Extract labels the graph and composes the trajectories bottom-up. The
// trajectories are sorted by key.
func (e *Extractor) Extract() Result {
	g := graph.Build(e.subsystem, e.abstraction)
	sets := make([][]graph.Trajectory, g.NumActions())

	postOrder(e.subsystem, g, func(a subsystem.ActionID) {
		edges := g.Edges(a)
		if len(edges) == 0 {
			sets[a] = []graph.Trajectory{{}}
			return
		}

		seen := make(map[string]bool)

		for _, edge := range edges {
			for _, t := range sets[edge.Target()] {
				if edge.Labeled {
					t = t.Prepend(edge.Label)
				}

				if seen[t.Key()] {
					continue
				}

				seen[t.Key()] = true
				sets[a] = append(sets[a], t)
			}
		}
	})

	trajectories := sets[e.subsystem.Start()]
	graph.SortTrajectories(trajectories)

	return Result{Graph: g, Trajectories: trajectories}
}
