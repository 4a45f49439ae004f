// Package subsystem describes a memory subsystem: the actions an access can
// go through, the guarded transitions between them, and the buffers and
// address spaces the transitions touch.
package subsystem

import (
	"fmt"
	"log"
)

// ActionID addresses an action inside a Subsystem.
type ActionID int

// TransitionID addresses a transition inside a Subsystem.
type TransitionID int

// BufferID addresses a buffer inside a Subsystem.
type BufferID int

// AddressID addresses an address space inside a Subsystem.
type AddressID int

// NoBuffer and NoAddress mark the absence of a buffer or an address.
const (
	NoBuffer  BufferID  = -1
	NoAddress AddressID = -1
)

// An Action is a node of the memory control-flow graph, for example "look up
// the TLB" or "read the L1 cache".
type Action struct {
	ID     ActionID
	Name   string
	Buffer BufferID
}

// An Address is an address space that buffers are indexed with.
type Address struct {
	ID    AddressID
	Name  string
	Width int
	Value string
}

// A Subsystem is the declarative description of a memory subsystem. All
// entities are stored in arenas and referred to by integer IDs.
type Subsystem struct {
	name        string
	start       ActionID
	target      BufferID
	actions     []Action
	transitions []Transition
	outgoing    [][]TransitionID
	buffers     []Buffer
	addresses   []Address
}

// Name returns the name of the subsystem.
func (s *Subsystem) Name() string {
	return s.name
}

// Start returns the action every memory access starts from.
func (s *Subsystem) Start() ActionID {
	return s.start
}

// TargetBuffer returns the buffer that represents the main memory, or
// NoBuffer if the description does not name one.
func (s *Subsystem) TargetBuffer() BufferID {
	return s.target
}

// NumActions returns the number of actions.
func (s *Subsystem) NumActions() int {
	return len(s.actions)
}

// NumTransitions returns the number of transitions.
func (s *Subsystem) NumTransitions() int {
	return len(s.transitions)
}

// Action returns the action with the given ID.
func (s *Subsystem) Action(id ActionID) *Action {
	s.actionMustExist(id)
	return &s.actions[id]
}

// Actions returns all the actions in ID order.
func (s *Subsystem) Actions() []Action {
	return s.actions
}

// ActionByName finds an action by its name.
func (s *Subsystem) ActionByName(name string) (*Action, bool) {
	for i := range s.actions {
		if s.actions[i].Name == name {
			return &s.actions[i], true
		}
	}

	return nil, false
}

// Transition returns the transition with the given ID.
func (s *Subsystem) Transition(id TransitionID) *Transition {
	if id < 0 || int(id) >= len(s.transitions) {
		log.Panicf("transition %d does not exist in %s", id, s.name)
	}

	return &s.transitions[id]
}

// Transitions returns the transitions leaving the given action.
func (s *Subsystem) Transitions(id ActionID) []*Transition {
	s.actionMustExist(id)

	ids := s.outgoing[id]
	if len(ids) == 0 {
		return nil
	}

	ts := make([]*Transition, 0, len(ids))
	for _, tid := range ids {
		ts = append(ts, &s.transitions[tid])
	}

	return ts
}

// AllTransitions returns every transition in ID order.
func (s *Subsystem) AllTransitions() []*Transition {
	ts := make([]*Transition, 0, len(s.transitions))
	for i := range s.transitions {
		ts = append(ts, &s.transitions[i])
	}

	return ts
}

// IsTerminal tells if no transition leaves the action.
func (s *Subsystem) IsTerminal(id ActionID) bool {
	s.actionMustExist(id)
	return len(s.outgoing[id]) == 0
}

// Buffer returns the buffer with the given ID.
func (s *Subsystem) Buffer(id BufferID) *Buffer {
	if id < 0 || int(id) >= len(s.buffers) {
		log.Panicf("buffer %d does not exist in %s", id, s.name)
	}

	return &s.buffers[id]
}

// Buffers returns all the buffers in ID order.
func (s *Subsystem) Buffers() []Buffer {
	return s.buffers
}

// BufferByName finds a buffer by its name.
func (s *Subsystem) BufferByName(name string) (*Buffer, bool) {
	for i := range s.buffers {
		if s.buffers[i].Name == name {
			return &s.buffers[i], true
		}
	}

	return nil, false
}

// Children returns the buffers whose parent is the given buffer.
func (s *Subsystem) Children(id BufferID) []*Buffer {
	var children []*Buffer

	for i := range s.buffers {
		if s.buffers[i].Parent == id && s.buffers[i].ID != id {
			children = append(children, &s.buffers[i])
		}
	}

	return children
}

// Address returns the address space with the given ID.
func (s *Subsystem) Address(id AddressID) *Address {
	if id < 0 || int(id) >= len(s.addresses) {
		log.Panicf("address %d does not exist in %s", id, s.name)
	}

	return &s.addresses[id]
}

// Addresses returns all the address spaces in ID order.
func (s *Subsystem) Addresses() []Address {
	return s.addresses
}

// AddressByName finds an address space by its name.
func (s *Subsystem) AddressByName(name string) (*Address, bool) {
	for i := range s.addresses {
		if s.addresses[i].Name == name {
			return &s.addresses[i], true
		}
	}

	return nil, false
}

// IsCall tells if traversing the transition performs a recursive memory
// access, that is, it accesses a buffer that lives in memory.
func (s *Subsystem) IsCall(t *Transition) bool {
	_, ok := s.CallAccess(t)
	return ok
}

// CallAccess returns the access that makes the transition a recursive memory
// access.
func (s *Subsystem) CallAccess(t *Transition) (BufferAccess, bool) {
	for _, a := range t.Accesses() {
		if a.Buffer == NoBuffer || a.Buffer == s.target {
			continue
		}

		if s.Buffer(a.Buffer).Kind == KindMemory {
			return a, true
		}
	}

	return BufferAccess{}, false
}

func (s *Subsystem) actionMustExist(id ActionID) {
	if id < 0 || int(id) >= len(s.actions) {
		log.Panicf("action %d does not exist in %s", id, s.name)
	}
}

// String returns a short description of the subsystem.
func (s *Subsystem) String() string {
	return fmt.Sprintf("%s(%d actions, %d transitions, %d buffers)",
		s.name, len(s.actions), len(s.transitions), len(s.buffers))
}

// FindCycle returns the actions of a cycle, or nil if there is none. Every
// action is searched, reachable from the start action or not. Buffer calls
// are not followed.
func (s *Subsystem) FindCycle() []ActionID {
	const (
		unvisited = iota
		onStack
		done
	)

	state := make([]int, len(s.actions))
	stack := []ActionID{}

	var visit func(id ActionID) []ActionID
	visit = func(id ActionID) []ActionID {
		state[id] = onStack
		stack = append(stack, id)

		for _, tid := range s.outgoing[id] {
			next := s.transitions[tid].Target

			switch state[next] {
			case onStack:
				for i, a := range stack {
					if a == next {
						return append([]ActionID(nil), stack[i:]...)
					}
				}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done

		return nil
	}

	for id := range s.actions {
		if state[id] != unvisited {
			continue
		}

		if cycle := visit(ActionID(id)); cycle != nil {
			return cycle
		}
	}

	return nil
}
