package path

import (
	"log"
	"strings"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/subsystem"
)

type programKind int

const (
	atomicProgram programKind = iota
	sequenceProgram
	switchProgram
)

// A Program is one search step. It is either a single edge, a sequence of
// programs that follow each other, or a switch of alternatives that share
// their source and target actions. A program carries at most one label.
type Program struct {
	kind    programKind
	edge    *graph.Edge
	items   []*Program
	source  subsystem.ActionID
	target  subsystem.ActionID
	label   graph.Label
	labeled bool
}

// NewAtomic wraps one edge.
func NewAtomic(e *graph.Edge) *Program {
	if e == nil {
		log.Panic("atomic program requires an edge")
	}

	return &Program{
		kind:    atomicProgram,
		edge:    e,
		source:  e.Source(),
		target:  e.Target(),
		label:   e.Label,
		labeled: e.Labeled,
	}
}

// NewSequence chains programs. Nested sequences are flattened.
func NewSequence(items ...*Program) *Program {
	if len(items) == 0 {
		log.Panic("sequence program requires at least one item")
	}

	p := &Program{
		kind:   sequenceProgram,
		source: items[0].source,
		target: items[len(items)-1].target,
	}

	for i, item := range items {
		if i > 0 && items[i-1].target != item.source {
			log.Panicf("program %s does not continue %s", item, items[i-1])
		}

		if item.labeled {
			if p.labeled {
				log.Panicf("sequence %s would carry two labels", items)
			}

			p.label, p.labeled = item.label, true
		}

		if item.kind == sequenceProgram {
			p.items = append(p.items, item.items...)
		} else {
			p.items = append(p.items, item)
		}
	}

	return p
}

// NewSwitch merges alternatives that leave the same action and join at the
// same action. The alternatives must be unlabeled.
func NewSwitch(alternatives ...*Program) *Program {
	if len(alternatives) < 2 {
		log.Panic("switch program requires at least two alternatives")
	}

	first := alternatives[0]
	for _, a := range alternatives {
		if a.source != first.source || a.target != first.target {
			log.Panicf("alternatives %s and %s do not share endpoints",
				first, a)
		}

		if a.labeled {
			log.Panicf("alternative %s of a switch is labeled", a)
		}
	}

	return &Program{
		kind:   switchProgram,
		items:  alternatives,
		source: first.source,
		target: first.target,
	}
}

// IsAtomic tells if the program is a single edge.
func (p *Program) IsAtomic() bool {
	return p.kind == atomicProgram
}

// IsSequence tells if the program chains other programs.
func (p *Program) IsSequence() bool {
	return p.kind == sequenceProgram
}

// IsSwitch tells if the program chooses between alternatives.
func (p *Program) IsSwitch() bool {
	return p.kind == switchProgram
}

// Edge returns the edge of an atomic program, or nil.
func (p *Program) Edge() *graph.Edge {
	return p.edge
}

// Items returns the steps of a sequence or the alternatives of a switch.
func (p *Program) Items() []*Program {
	return p.items
}

// Alternatives returns the alternatives of a switch program, and nil for
// other programs.
func (p *Program) Alternatives() []*Program {
	if p.kind != switchProgram {
		return nil
	}

	return p.items
}

// Source returns the action the program starts at.
func (p *Program) Source() subsystem.ActionID {
	return p.source
}

// Target returns the action the program ends at.
func (p *Program) Target() subsystem.ActionID {
	return p.target
}

// Label returns the label of the program, if any.
func (p *Program) Label() (graph.Label, bool) {
	return p.label, p.labeled
}

// Transitions returns every transition the program covers, including all the
// alternatives of switches.
func (p *Program) Transitions() []*subsystem.Transition {
	if p.kind == atomicProgram {
		return []*subsystem.Transition{p.edge.Transition}
	}

	var ts []*subsystem.Transition
	for _, item := range p.items {
		ts = append(ts, item.Transitions()...)
	}

	return ts
}

// Size returns the number of edges on one walk through the program.
func (p *Program) Size() int {
	switch p.kind {
	case atomicProgram:
		return 1
	case switchProgram:
		return p.items[0].Size()
	default:
		n := 0
		for _, item := range p.items {
			n += item.Size()
		}

		return n
	}
}

// IsCall tells if the program is a single edge that performs a nested memory
// access.
func (p *Program) IsCall(s *subsystem.Subsystem) bool {
	return p.kind == atomicProgram && s.IsCall(p.edge.Transition)
}

func (p *Program) String() string {
	switch p.kind {
	case atomicProgram:
		return p.edge.String()
	case switchProgram:
		return "{" + joinPrograms(p.items, " | ") + "}"
	default:
		return joinPrograms(p.items, "; ")
	}
}

func joinPrograms(ps []*Program, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}

	return strings.Join(parts, sep)
}

