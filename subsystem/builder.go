package subsystem

import "log"

// NewBuffer returns a single-entry buffer description with no address space
// and no parent. Callers adjust the fields before adding it to a Builder.
func NewBuffer(name string) Buffer {
	return Buffer{
		Name:    name,
		Kind:    KindUnmapped,
		Ways:    1,
		Sets:    1,
		Address: NoAddress,
		Parent:  NoBuffer,
	}
}

// A Builder assembles a Subsystem.
type Builder struct {
	s        *Subsystem
	startSet bool
	built    bool
}

// NewBuilder creates a builder for a subsystem with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		s: &Subsystem{
			name:   name,
			target: NoBuffer,
		},
	}
}

// AddAddress adds an address space.
func (b *Builder) AddAddress(name string, width int, value string) AddressID {
	b.mustNotBeBuilt()

	id := AddressID(len(b.s.addresses))
	b.s.addresses = append(b.s.addresses, Address{
		ID:    id,
		Name:  name,
		Width: width,
		Value: value,
	})

	return id
}

// AddBuffer adds a buffer. The ID field of the argument is ignored.
func (b *Builder) AddBuffer(buf Buffer) BufferID {
	b.mustNotBeBuilt()

	if buf.Ways <= 0 || buf.Sets <= 0 {
		log.Panicf("buffer %s must have at least one way and one set",
			buf.Name)
	}

	if buf.Address != NoAddress {
		b.addressMustExist(buf.Address)
	}

	buf.ID = BufferID(len(b.s.buffers))
	b.s.buffers = append(b.s.buffers, buf)

	return buf.ID
}

// SetTargetBuffer marks the buffer that stands for the main memory.
func (b *Builder) SetTargetBuffer(id BufferID) {
	b.bufferMustExist(id)
	b.s.target = id
}

// AddAction adds an action, optionally associated with a buffer.
func (b *Builder) AddAction(name string, buffer BufferID) ActionID {
	b.mustNotBeBuilt()

	if buffer != NoBuffer {
		b.bufferMustExist(buffer)
	}

	id := ActionID(len(b.s.actions))
	b.s.actions = append(b.s.actions, Action{
		ID:     id,
		Name:   name,
		Buffer: buffer,
	})
	b.s.outgoing = append(b.s.outgoing, nil)

	return id
}

// SetStart marks the action every access starts from.
func (b *Builder) SetStart(id ActionID) {
	b.actionMustExist(id)
	b.s.start = id
	b.startSet = true
}

// AddTransition adds a transition between two actions.
func (b *Builder) AddTransition(
	source, target ActionID,
	guard *Guard,
	performs ...BufferAccess,
) TransitionID {
	b.mustNotBeBuilt()
	b.actionMustExist(source)
	b.actionMustExist(target)

	if guard != nil && guard.Access != nil {
		b.bufferMustExist(guard.Access.Buffer)
	}

	for _, a := range performs {
		b.bufferMustExist(a.Buffer)
	}

	id := TransitionID(len(b.s.transitions))
	b.s.transitions = append(b.s.transitions, Transition{
		ID:       id,
		Source:   source,
		Target:   target,
		Guard:    guard,
		Performs: append([]BufferAccess(nil), performs...),
	})
	b.s.outgoing[source] = append(b.s.outgoing[source], id)

	return id
}

// Build returns the subsystem. The builder cannot be used afterwards.
func (b *Builder) Build() *Subsystem {
	b.mustNotBeBuilt()

	if !b.startSet {
		log.Panicf("subsystem %s has no start action", b.s.name)
	}

	for i := range b.s.buffers {
		parent := b.s.buffers[i].Parent
		if parent != NoBuffer {
			b.bufferMustExist(parent)
		}
	}

	b.built = true

	return b.s
}

func (b *Builder) mustNotBeBuilt() {
	if b.built {
		log.Panic("subsystem builder has already been used")
	}
}

func (b *Builder) actionMustExist(id ActionID) {
	if id < 0 || int(id) >= len(b.s.actions) {
		log.Panicf("action %d does not exist", id)
	}
}

func (b *Builder) bufferMustExist(id BufferID) {
	if id < 0 || int(id) >= len(b.s.buffers) {
		log.Panicf("buffer %d does not exist", id)
	}
}

func (b *Builder) addressMustExist(id AddressID) {
	if id < 0 || int(id) >= len(b.s.addresses) {
		log.Panicf("address %d does not exist", id)
	}
}
