package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// A Subgraph is a subset of the edges of a MemoryGraph, identified by the
// transitions the edges wrap. A Subgraph is never modified after creation.
type Subgraph struct {
	ids map[subsystem.TransitionID]struct{}
	key string
}

// NewSubgraph creates a subgraph with the given transitions.
func NewSubgraph(ids ...subsystem.TransitionID) Subgraph {
	g := Subgraph{ids: make(map[subsystem.TransitionID]struct{}, len(ids))}
	for _, id := range ids {
		g.ids[id] = struct{}{}
	}

	g.key = g.computeKey()

	return g
}

// With returns a new subgraph that also contains the given transition.
func (g Subgraph) With(id subsystem.TransitionID) Subgraph {
	if g.Contains(id) {
		return g
	}

	ids := make([]subsystem.TransitionID, 0, len(g.ids)+1)
	for existing := range g.ids {
		ids = append(ids, existing)
	}

	ids = append(ids, id)

	return NewSubgraph(ids...)
}

// Contains tells if the transition belongs to the subgraph.
func (g Subgraph) Contains(id subsystem.TransitionID) bool {
	_, ok := g.ids[id]
	return ok
}

// Size returns the number of edges in the subgraph.
func (g Subgraph) Size() int {
	return len(g.ids)
}

// IDs returns the transitions of the subgraph in increasing order.
func (g Subgraph) IDs() []subsystem.TransitionID {
	ids := make([]subsystem.TransitionID, 0, len(g.ids))
	for id := range g.ids {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Key returns a string that identifies the subgraph.
func (g Subgraph) Key() string {
	return g.key
}

func (g Subgraph) computeKey() string {
	ids := g.IDs()
	parts := make([]string, len(ids))

	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}

	return strings.Join(parts, ",")
}
