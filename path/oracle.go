package path

import (
	"github.com/sarchlab/mmucov/subsystem"
)

// AccessType describes the memory access a path is searched for.
type AccessType struct {
	Operation subsystem.Operation
}

// Constraints restrict the buffer events a path may contain. A buffer that
// has no entry is unrestricted.
type Constraints struct {
	Events map[subsystem.BufferID][]subsystem.BufferEvent
}

// Allows tells if the buffer may see the event.
func (c Constraints) Allows(
	buffer subsystem.BufferID,
	event subsystem.BufferEvent,
) bool {
	allowed, restricted := c.Events[buffer]
	if !restricted {
		return true
	}

	for _, e := range allowed {
		if e == event {
			return true
		}
	}

	return false
}

// A SymbolicResult accumulates what has to hold for a partial path to be
// feasible. Its content is only understood by the Oracle that created it.
type SymbolicResult interface {
	// Fork returns a copy that can be extended independently.
	Fork() SymbolicResult
}

// An Oracle decides if a program can extend a partial path.
type Oracle interface {
	// NewResult returns the symbolic state of an empty path.
	NewResult() SymbolicResult

	// IsFeasible tells if the program can be executed in the given context.
	// On success the result is extended with the program; on failure the
	// result is left untouched.
	IsFeasible(
		p *Program,
		access AccessType,
		ctx Context,
		constraints Constraints,
		result SymbolicResult,
	) bool
}

// AlwaysFeasible accepts every program.
type AlwaysFeasible struct{}

type emptyResult struct{}

func (emptyResult) Fork() SymbolicResult {
	return emptyResult{}
}

// NewResult returns a result that records nothing.
func (AlwaysFeasible) NewResult() SymbolicResult {
	return emptyResult{}
}

// IsFeasible returns true.
func (AlwaysFeasible) IsFeasible(
	*Program,
	AccessType,
	Context,
	Constraints,
	SymbolicResult,
) bool {
	return true
}

type eventKey struct {
	frame  string
	buffer subsystem.BufferID
}

// An EventResult records which buffers were hit or missed in which frame.
type EventResult struct {
	events map[eventKey]subsystem.BufferEvent
}

// Fork copies the result.
func (r *EventResult) Fork() SymbolicResult {
	return r.fork()
}

func (r *EventResult) fork() *EventResult {
	events := make(map[eventKey]subsystem.BufferEvent, len(r.events))
	for k, v := range r.events {
		events[k] = v
	}

	return &EventResult{events: events}
}

// Event returns the hit or miss recorded for a buffer in a frame.
func (r *EventResult) Event(
	frame string,
	buffer subsystem.BufferID,
) (subsystem.BufferEvent, bool) {
	e, ok := r.events[eventKey{frame: frame, buffer: buffer}]
	return e, ok
}

// EventOracle is a lightweight feasibility checker. Operation guards must
// agree with the access type, buffer events must be allowed by the
// constraints, and a buffer cannot be both hit and missed within one access.
// Guard conditions are not interpreted.
type EventOracle struct{}

// NewResult returns an empty EventResult.
func (EventOracle) NewResult() SymbolicResult {
	return &EventResult{events: make(map[eventKey]subsystem.BufferEvent)}
}

// IsFeasible checks the program against the recorded events.
func (o EventOracle) IsFeasible(
	p *Program,
	access AccessType,
	ctx Context,
	constraints Constraints,
	result SymbolicResult,
) bool {
	r, ok := result.(*EventResult)
	if !ok {
		panic("EventOracle requires an EventResult")
	}

	work := r.fork()
	if !o.apply(p, access, ctx.FrameID(), constraints, work) {
		return false
	}

	r.events = work.events

	return true
}

func (o EventOracle) apply(
	p *Program,
	access AccessType,
	frame string,
	constraints Constraints,
	r *EventResult,
) bool {
	switch {
	case p.IsAtomic():
		return o.applyTransition(p.Edge().Transition, access, frame,
			constraints, r)
	case p.IsSwitch():
		for _, alt := range p.Items() {
			work := r.fork()
			if o.apply(alt, access, frame, constraints, work) {
				r.events = work.events
				return true
			}
		}

		return false
	default:
		for _, item := range p.Items() {
			if !o.apply(item, access, frame, constraints, r) {
				return false
			}
		}

		return true
	}
}

func (EventOracle) applyTransition(
	t *subsystem.Transition,
	access AccessType,
	frame string,
	constraints Constraints,
	r *EventResult,
) bool {
	op := t.Operation()
	if op != subsystem.OpNone &&
		access.Operation != subsystem.OpNone &&
		op != access.Operation {
		return false
	}

	for _, a := range t.Accesses() {
		if !constraints.Allows(a.Buffer, a.Event) {
			return false
		}

		if a.Event != subsystem.EventHit && a.Event != subsystem.EventMiss {
			continue
		}

		key := eventKey{frame: frame, buffer: a.Buffer}
		if prev, seen := r.events[key]; seen && prev != a.Event {
			return false
		}

		r.events[key] = a.Event
	}

	return true
}
