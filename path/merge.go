package path

import (
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/subsystem"
)

// candidates returns the programs a search step at the action can try, in a
// random order. Unlabeled plain edges that join at the same action are merged
// into switches, and single-successor runs are merged into sequences.
func (it *Iterator) candidates(
	action subsystem.ActionID,
	suffix graph.Trajectory,
) []*Program {
	edges := it.edges(action)
	if len(edges) == 0 {
		return nil
	}

	order := permutation(it.cfg.random, len(edges))

	var (
		slots  [][]*graph.Edge
		joinAt = make(map[subsystem.ActionID]int)
	)

	for _, i := range order {
		e := edges[i]

		if !it.switchable(e) {
			slots = append(slots, []*graph.Edge{e})
			continue
		}

		if slot, ok := joinAt[e.Target()]; ok {
			slots[slot] = append(slots[slot], e)
			continue
		}

		joinAt[e.Target()] = len(slots)
		slots = append(slots, []*graph.Edge{e})
	}

	programs := make([]*Program, 0, len(slots))

	for _, slot := range slots {
		p := it.extend(programOf(slot))

		if it.cfg.targeted && !it.fits(p, suffix) {
			continue
		}

		programs = append(programs, p)
	}

	return programs
}

func programOf(edges []*graph.Edge) *Program {
	if len(edges) == 1 {
		return NewAtomic(edges[0])
	}

	alternatives := make([]*Program, len(edges))
	for i, e := range edges {
		alternatives[i] = NewAtomic(e)
	}

	return NewSwitch(alternatives...)
}

// edges returns the edges of the action that the search may use.
func (it *Iterator) edges(action subsystem.ActionID) []*graph.Edge {
	all := it.cfg.graph.Edges(action)
	if it.cfg.subgraph == nil {
		return all
	}

	allowed := make([]*graph.Edge, 0, len(all))
	for _, e := range all {
		if it.allow(e) {
			allowed = append(allowed, e)
		}
	}

	return allowed
}

func (it *Iterator) allow(e *graph.Edge) bool {
	return it.cfg.subgraph == nil || it.cfg.subgraph.Contains(e.Transition.ID)
}

// switchable tells if an edge can be an alternative of a switch: it must be
// unobservable and must not touch any buffer.
func (it *Iterator) switchable(e *graph.Edge) bool {
	return !e.Labeled && !e.Transition.HasAccesses()
}

// extend appends to the program the edges that follow it without branching.
// Appended edges are unlabeled and do not perform nested accesses.
func (it *Iterator) extend(p *Program) *Program {
	s := it.cfg.subsystem
	if p.IsCall(s) {
		return p
	}

	size := p.Size()
	items := []*Program{p}

	for size < it.cfg.mergeDepth {
		next := it.edges(items[len(items)-1].Target())
		if len(next) != 1 {
			break
		}

		e := next[0]
		if e.Labeled || s.IsCall(e.Transition) {
			break
		}

		items = append(items, NewAtomic(e))
		size++
	}

	if len(items) == 1 {
		return p
	}

	return NewSequence(items...)
}

// fits tells if the program is consistent with the remaining trajectory.
func (it *Iterator) fits(p *Program, suffix graph.Trajectory) bool {
	rest := suffix

	if label, labeled := p.Label(); labeled {
		if len(rest) == 0 || rest[0] != label {
			return false
		}

		rest = rest[1:]
	}

	var allow func(*graph.Edge) bool
	if it.cfg.subgraph != nil {
		allow = it.allow
	}

	return it.cfg.graph.CanRealize(p.Target(), rest,
		it.cfg.lookaheadDepth, allow)
}
