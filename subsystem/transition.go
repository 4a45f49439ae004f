package subsystem

import (
	"fmt"
	"strings"
)

// Operation is the kind of a memory access.
type Operation int

// Operations a guard can require.
const (
	OpNone Operation = iota
	OpRead
	OpWrite
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "NONE"
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// ParseOperation converts the textual form of an operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToUpper(s) {
	case "", "NONE":
		return OpNone, nil
	case "READ", "LOAD":
		return OpRead, nil
	case "WRITE", "STORE":
		return OpWrite, nil
	}

	return OpNone, fmt.Errorf("unknown operation %q", s)
}

// BufferEvent is what happens to a buffer when it is accessed.
type BufferEvent int

// Buffer events.
const (
	EventNone BufferEvent = iota
	EventHit
	EventMiss
	EventRead
	EventWrite
)

func (e BufferEvent) String() string {
	switch e {
	case EventNone:
		return "NONE"
	case EventHit:
		return "HIT"
	case EventMiss:
		return "MISS"
	case EventRead:
		return "READ"
	case EventWrite:
		return "WRITE"
	default:
		return fmt.Sprintf("BufferEvent(%d)", int(e))
	}
}

// ParseBufferEvent converts the textual form of a buffer event.
func ParseBufferEvent(s string) (BufferEvent, error) {
	switch strings.ToUpper(s) {
	case "", "NONE":
		return EventNone, nil
	case "HIT":
		return EventHit, nil
	case "MISS":
		return EventMiss, nil
	case "READ":
		return EventRead, nil
	case "WRITE":
		return EventWrite, nil
	}

	return EventNone, fmt.Errorf("unknown buffer event %q", s)
}

// A BufferAccess is one access to a buffer.
type BufferAccess struct {
	Buffer BufferID
	Event  BufferEvent
}

// A Guard is the precondition of a transition.
type Guard struct {
	Operation Operation
	Access    *BufferAccess
	Condition string
}

// IsTrivial tells if the guard does not constrain anything.
func (g *Guard) IsTrivial() bool {
	return g == nil ||
		(g.Operation == OpNone && g.Access == nil && g.Condition == "")
}

// A Transition is a directed edge between two actions.
type Transition struct {
	ID       TransitionID
	Source   ActionID
	Target   ActionID
	Guard    *Guard
	Performs []BufferAccess
}

// Accesses returns the buffer accesses of the transition: the one tested by
// the guard first, followed by the ones performed when it is traversed.
func (t *Transition) Accesses() []BufferAccess {
	accesses := make([]BufferAccess, 0, len(t.Performs)+1)

	if t.Guard != nil && t.Guard.Access != nil {
		accesses = append(accesses, *t.Guard.Access)
	}

	accesses = append(accesses, t.Performs...)

	return accesses
}

// Operation returns the operation the guard requires, or OpNone.
func (t *Transition) Operation() Operation {
	if t.Guard == nil {
		return OpNone
	}

	return t.Guard.Operation
}

// HasAccesses tells if traversing the transition touches any buffer.
func (t *Transition) HasAccesses() bool {
	return len(t.Performs) > 0 || (t.Guard != nil && t.Guard.Access != nil)
}

func (t *Transition) String() string {
	return fmt.Sprintf("t%d(%d->%d)", t.ID, t.Source, t.Target)
}
