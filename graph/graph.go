// Package graph provides the labeled control-flow graph of a memory
// subsystem.
package graph

import (
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// An Edge wraps one transition of the subsystem together with its abstract
// label and the labels that can be met right after it.
type Edge struct {
	Transition *subsystem.Transition
	Label      Label
	Labeled    bool

	nextLabels LabelSet
}

// NewEdge creates an edge. Pass labeled=false for unobservable transitions.
func NewEdge(t *subsystem.Transition, label Label, labeled bool) *Edge {
	if t == nil {
		log.Panic("edge requires a transition")
	}

	return &Edge{
		Transition: t,
		Label:      label,
		Labeled:    labeled,
	}
}

// Source returns the action the edge leaves.
func (e *Edge) Source() subsystem.ActionID {
	return e.Transition.Source
}

// Target returns the action the edge enters.
func (e *Edge) Target() subsystem.ActionID {
	return e.Transition.Target
}

// NextLabels returns the labels first met on any walk that starts at the
// target of the edge.
func (e *Edge) NextLabels() LabelSet {
	return e.nextLabels
}

func (e *Edge) String() string {
	if e.Labeled {
		return fmt.Sprintf("%s[%s]", e.Transition, e.Label)
	}

	return e.Transition.String()
}

// A MemoryGraph is the adjacency structure over the actions of a subsystem.
// It only grows; once populated it is treated as immutable.
type MemoryGraph struct {
	names      []string
	edges      [][]*Edge
	nextLabels []LabelSet
	silentEnd  []bool
}

// NewMemoryGraph creates an empty graph over the given number of actions.
func NewMemoryGraph(numActions int) *MemoryGraph {
	return &MemoryGraph{
		edges:      make([][]*Edge, numActions),
		nextLabels: make([]LabelSet, numActions),
		silentEnd:  make([]bool, numActions),
	}
}

// Build creates the graph of all the transitions of a subsystem. The
// abstraction labels the edges; a nil abstraction leaves all of them
// unlabeled.
func Build(s *subsystem.Subsystem, abs Abstraction) *MemoryGraph {
	if s == nil {
		log.Panic("cannot build a memory graph without a subsystem")
	}

	g := NewMemoryGraph(s.NumActions())

	g.names = make([]string, s.NumActions())
	for _, a := range s.Actions() {
		g.names[a.ID] = a.Name
	}

	transitions := s.AllTransitions()
	edges := make([]*Edge, 0, len(transitions))

	for _, t := range transitions {
		var (
			label   Label
			labeled bool
		)

		if abs != nil {
			label, labeled = abs(s, t)
		}

		edges = append(edges, NewEdge(t, label, labeled))
	}

	g.AddEdges(edges)

	return g
}

// NumActions returns the number of actions the graph spans.
func (g *MemoryGraph) NumActions() int {
	return len(g.edges)
}

// AddEdges adds edges to the graph. It panics if the edges close a cycle,
// since recursion is only allowed through buffer calls.
func (g *MemoryGraph) AddEdges(edges []*Edge) {
	for _, e := range edges {
		g.actionMustExist(e.Source())
		g.actionMustExist(e.Target())
		g.edges[e.Source()] = append(g.edges[e.Source()], e)
	}

	g.computeNextLabels()
}

// Edges returns the edges leaving the action. It returns nil for terminal
// actions.
func (g *MemoryGraph) Edges(a subsystem.ActionID) []*Edge {
	g.actionMustExist(a)
	return g.edges[a]
}

// IsTerminal tells if no edge leaves the action.
func (g *MemoryGraph) IsTerminal(a subsystem.ActionID) bool {
	return len(g.Edges(a)) == 0
}

// NextLabels returns the labels first met on any walk that starts at the
// action.
func (g *MemoryGraph) NextLabels(a subsystem.ActionID) LabelSet {
	g.actionMustExist(a)
	return g.nextLabels[a]
}

// CanTerminateSilently tells if a terminal action can be reached from the
// action without meeting any label.
func (g *MemoryGraph) CanTerminateSilently(a subsystem.ActionID) bool {
	g.actionMustExist(a)
	return g.silentEnd[a]
}

// Equal tells if two graphs have the same adjacency.
func (g *MemoryGraph) Equal(other *MemoryGraph) bool {
	if other == nil || len(g.edges) != len(other.edges) {
		return false
	}

	for a := range g.edges {
		if len(g.edges[a]) != len(other.edges[a]) {
			return false
		}

		for i, e := range g.edges[a] {
			o := other.edges[a][i]
			if e.Transition.ID != o.Transition.ID ||
				e.Labeled != o.Labeled ||
				e.Label != o.Label {
				return false
			}
		}
	}

	return true
}

// CanRealize tells if a walk from the action can produce exactly the given
// label sequence before reaching a terminal action. The walk only uses the
// edges accepted by allow (all edges if allow is nil). Once depth edges have
// been looked at the answer is optimistic.
func (g *MemoryGraph) CanRealize(
	from subsystem.ActionID,
	suffix Trajectory,
	depth int,
	allow func(*Edge) bool,
) bool {
	edges := g.Edges(from)
	if len(edges) == 0 {
		return len(suffix) == 0
	}

	if depth <= 0 {
		return true
	}

	if len(suffix) > 0 && !g.nextLabels[from].Contains(suffix[0]) {
		return false
	}

	if len(suffix) == 0 && !g.silentEnd[from] {
		return false
	}

	for _, e := range edges {
		if allow != nil && !allow(e) {
			continue
		}

		rest := suffix
		if e.Labeled {
			if len(rest) == 0 || rest[0] != e.Label {
				continue
			}

			rest = rest[1:]
		}

		if g.CanRealize(e.Target(), rest, depth-1, allow) {
			return true
		}
	}

	return false
}

const (
	white = iota
	gray
	black
)

type dfsFrame struct {
	action subsystem.ActionID
	cursor int
}

func (g *MemoryGraph) computeNextLabels() {
	color := make([]int, len(g.edges))

	for a := range g.edges {
		if color[a] == white {
			g.visit(subsystem.ActionID(a), color)
		}
	}
}

func (g *MemoryGraph) visit(root subsystem.ActionID, color []int) {
	stack := []dfsFrame{{action: root}}
	color[root] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.edges[top.action]

		if top.cursor < len(edges) {
			next := edges[top.cursor].Target()
			top.cursor++

			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, dfsFrame{action: next})
			case gray:
				g.panicOnCycle(stack, next)
			}

			continue
		}

		g.compose(top.action)
		color[top.action] = black
		stack = stack[:len(stack)-1]
	}
}

func (g *MemoryGraph) compose(a subsystem.ActionID) {
	labels := make(LabelSet)
	silent := len(g.edges[a]) == 0

	for _, e := range g.edges[a] {
		e.nextLabels = g.nextLabels[e.Target()]

		if e.Labeled {
			labels.Add(e.Label)
			continue
		}

		labels.AddAll(e.nextLabels)
		silent = silent || g.silentEnd[e.Target()]
	}

	g.nextLabels[a] = labels
	g.silentEnd[a] = silent
}

func (g *MemoryGraph) panicOnCycle(stack []dfsFrame, back subsystem.ActionID) {
	names := []string{}
	inCycle := false

	for _, f := range stack {
		if f.action == back {
			inCycle = true
		}

		if inCycle {
			names = append(names, g.actionName(f.action))
		}
	}

	names = append(names, g.actionName(back))

	log.Panicf("memory graph contains a cycle: %s",
		strings.Join(names, " -> "))
}

func (g *MemoryGraph) actionName(a subsystem.ActionID) string {
	if int(a) < len(g.names) && g.names[a] != "" {
		return g.names[a]
	}

	return fmt.Sprintf("action%d", a)
}

func (g *MemoryGraph) actionMustExist(a subsystem.ActionID) {
	if a < 0 || int(a) >= len(g.edges) {
		log.Panicf("action %d is not part of the memory graph", a)
	}
}
