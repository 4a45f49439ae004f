// Package path enumerates the memory access paths of a subsystem: the
// concrete walks through its memory graph, including nested accesses that a
// transition may trigger.
package path

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// EntryKind tells what a path entry stands for.
type EntryKind int

// A Normal entry is a program. Call and Return entries bracket the entries of
// a nested memory access.
const (
	Normal EntryKind = iota
	Call
	Return
)

func (k EntryKind) String() string {
	switch k {
	case Normal:
		return "NORMAL"
	case Call:
		return "CALL"
	case Return:
		return "RETURN"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// An Entry is one step of a memory access path.
type Entry struct {
	Kind    EntryKind
	Program *Program
	Context Context
	Frame   Frame
}

// A Path is a complete memory access: a walk from the start action to a
// terminal action.
type Path struct {
	start   subsystem.ActionID
	entries []Entry
	context Context
	result  SymbolicResult
}

// NewPath creates a path from its entries. The context and the result are the
// state reached at the end of the path.
func NewPath(
	start subsystem.ActionID,
	entries []Entry,
	ctx Context,
	result SymbolicResult,
) *Path {
	return &Path{
		start:   start,
		entries: entries,
		context: ctx,
		result:  result,
	}
}

// Entries returns the entries of the path.
func (p *Path) Entries() []Entry {
	return p.entries
}

// Len returns the number of entries.
func (p *Path) Len() int {
	return len(p.entries)
}

// Start returns the action the path starts at.
func (p *Path) Start() subsystem.ActionID {
	return p.start
}

// End returns the action the path ends at.
func (p *Path) End() subsystem.ActionID {
	if len(p.entries) == 0 {
		return p.start
	}

	return p.entries[len(p.entries)-1].Program.Target()
}

// Context returns the call stack at the end of the path.
func (p *Path) Context() Context {
	return p.context
}

// Result returns the symbolic state at the end of the path.
func (p *Path) Result() SymbolicResult {
	return p.result
}

// NumCalls returns the number of nested accesses the path performs.
func (p *Path) NumCalls() int {
	n := 0

	for _, e := range p.entries {
		if e.Kind == Call {
			n++
		}
	}

	return n
}

// Transitions returns the transitions of all the entries, in order. The call
// edge of a nested access appears once, at its Call entry.
func (p *Path) Transitions() []*subsystem.Transition {
	var ts []*subsystem.Transition

	for _, e := range p.entries {
		if e.Kind == Return {
			continue
		}

		ts = append(ts, e.Program.Transitions()...)
	}

	return ts
}

// Buffers returns the buffers the path accesses, in increasing ID order.
func (p *Path) Buffers() []subsystem.BufferID {
	seen := make(map[subsystem.BufferID]bool)

	for _, t := range p.Transitions() {
		for _, a := range t.Accesses() {
			seen[a.Buffer] = true
		}
	}

	ids := make([]subsystem.BufferID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Addresses returns the address spaces of the buffers the path accesses, in
// increasing ID order.
func (p *Path) Addresses(s *subsystem.Subsystem) []subsystem.AddressID {
	seen := make(map[subsystem.AddressID]bool)

	for _, b := range p.Buffers() {
		addr := s.Buffer(b).Address
		if addr != subsystem.NoAddress {
			seen[addr] = true
		}
	}

	ids := make([]subsystem.AddressID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Key returns a string that identifies the path by its entries.
func (p *Path) Key() string {
	parts := make([]string, 0, len(p.entries))

	for _, e := range p.entries {
		ids := e.Program.Transitions()
		names := make([]string, len(ids))

		for i, t := range ids {
			names[i] = strconv.Itoa(int(t.ID))
		}

		parts = append(parts,
			e.Kind.String()[:1]+strings.Join(names, "."))
	}

	return strings.Join(parts, " ")
}

func (p *Path) String() string {
	parts := make([]string, len(p.entries))

	for i, e := range p.entries {
		switch e.Kind {
		case Call:
			parts[i] = "CALL " + e.Frame.ID
		case Return:
			parts[i] = "RETURN " + e.Frame.ID
		default:
			parts[i] = e.Program.String()
		}
	}

	return strings.Join(parts, " -> ")
}

// Validate checks that the path starts at the start action, ends at a
// terminal action, that entries continue each other, and that Call and
// Return entries are balanced and properly nested.
func (p *Path) Validate(s *subsystem.Subsystem) error {
	if p.start != s.Start() {
		return fmt.Errorf("path starts at %d instead of %d",
			p.start, s.Start())
	}

	type pending struct {
		frame  string
		resume subsystem.ActionID
	}

	var stack []pending

	current := p.start

	for i, e := range p.entries {
		switch e.Kind {
		case Normal:
			if e.Program.Source() != current {
				return fmt.Errorf("entry %d leaves %d instead of %d",
					i, e.Program.Source(), current)
			}

			current = e.Program.Target()
		case Call:
			if e.Program.Source() != current {
				return fmt.Errorf("call %d leaves %d instead of %d",
					i, e.Program.Source(), current)
			}

			stack = append(stack, pending{
				frame:  e.Frame.ID,
				resume: e.Program.Target(),
			})
			current = s.Start()
		case Return:
			if len(stack) == 0 {
				return fmt.Errorf("return %d has no matching call", i)
			}

			top := stack[len(stack)-1]
			if top.frame != e.Frame.ID {
				return fmt.Errorf("return %d closes %s instead of %s",
					i, e.Frame.ID, top.frame)
			}

			if !s.IsTerminal(current) {
				return fmt.Errorf("nested access %s ends at %d, "+
					"which is not terminal", top.frame, current)
			}

			stack = stack[:len(stack)-1]
			current = top.resume
		}
	}

	if len(stack) != 0 {
		return fmt.Errorf("%d calls are not closed", len(stack))
	}

	if !s.IsTerminal(current) {
		return fmt.Errorf("path ends at %d, which is not terminal", current)
	}

	return nil
}
