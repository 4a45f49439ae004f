package hazard

import (
	"log"

	"github.com/sarchlab/mmucov/subsystem"
)

// An AddressCoverageExtractor lists the hazards of an address space.
type AddressCoverageExtractor struct {
	subsystem *subsystem.Subsystem
	address   subsystem.AddressID
}

// NewAddressCoverageExtractor creates an extractor for one address space.
func NewAddressCoverageExtractor(
	s *subsystem.Subsystem,
	id subsystem.AddressID,
) AddressCoverageExtractor {
	if s == nil {
		log.Panic("address coverage extractor requires a subsystem")
	}

	s.Address(id)

	return AddressCoverageExtractor{subsystem: s, address: id}
}

// Hazards returns ADDR_EQUAL and ADDR_NOT_EQUAL.
func (e AddressCoverageExtractor) Hazards() []*Hazard {
	addr := e.subsystem.Address(e.address)

	value := func(r Relation) Atom {
		return Atom{
			Relation: r,
			Field:    FieldValue,
			Entity:   addr.Name,
			Expr:     addr.Value,
		}
	}

	return []*Hazard{
		e.hazard(addr, AddrEqual, value(Equal)),
		e.hazard(addr, AddrNotEqual, value(NotEqual)),
	}
}

func (e AddressCoverageExtractor) hazard(
	addr *subsystem.Address,
	kind Kind,
	atoms ...Atom,
) *Hazard {
	return &Hazard{
		Kind:      kind,
		Entity:    addr.Name,
		Address:   addr.ID,
		Buffer:    subsystem.NoBuffer,
		Condition: Condition{Atoms: atoms},
	}
}

// A BufferCoverageExtractor lists the hazards of a buffer.
type BufferCoverageExtractor struct {
	subsystem *subsystem.Subsystem
	buffer    subsystem.BufferID
}

// NewBufferCoverageExtractor creates an extractor for one buffer.
func NewBufferCoverageExtractor(
	s *subsystem.Subsystem,
	id subsystem.BufferID,
) BufferCoverageExtractor {
	if s == nil {
		log.Panic("buffer coverage extractor requires a subsystem")
	}

	s.Buffer(id)

	return BufferCoverageExtractor{subsystem: s, buffer: id}
}

// Hazards returns INDEX_NOT_EQUAL for buffers with several sets. Buffers with
// a tag also get TAG_NOT_EQUAL if entries are never replaced, and
// TAG_NOT_REPLACED, TAG_REPLACED and TAG_EQUAL otherwise. Every tag hazard
// requires the indices to be equal.
func (e BufferCoverageExtractor) Hazards() []*Hazard {
	b := e.subsystem.Buffer(e.buffer)

	var (
		hazards   []*Hazard
		sameIndex []Atom
	)

	if b.IsMultiSet() {
		hazards = append(hazards,
			e.hazard(b, IndexNotEqual, e.index(b, NotEqual)))
		sameIndex = []Atom{e.index(b, Equal)}
	}

	if !b.HasTag() {
		return hazards
	}

	tag := func(r Relation) Atom {
		return Atom{Relation: r, Field: FieldTag, Entity: b.Name, Expr: b.Tag}
	}

	replaced := func(r Relation) Atom {
		return Atom{Relation: r, Field: FieldReplacedTag, Entity: b.Name,
			Expr: b.Tag}
	}

	with := func(atoms ...Atom) []Atom {
		return append(append([]Atom(nil), sameIndex...), atoms...)
	}

	if !b.Replaceable {
		return append(hazards,
			e.hazard(b, TagNotEqual, with(tag(NotEqual))...))
	}

	return append(hazards,
		e.hazard(b, TagNotReplaced,
			with(tag(NotEqual), replaced(NotEqual))...),
		e.hazard(b, TagReplaced,
			with(tag(NotEqual), replaced(Equal))...),
		e.hazard(b, TagEqual, with(tag(Equal))...),
	)
}

func (e BufferCoverageExtractor) index(b *subsystem.Buffer, r Relation) Atom {
	return Atom{Relation: r, Field: FieldIndex, Entity: b.Name, Expr: b.Index}
}

func (e BufferCoverageExtractor) hazard(
	b *subsystem.Buffer,
	kind Kind,
	atoms ...Atom,
) *Hazard {
	return &Hazard{
		Kind:      kind,
		Entity:    b.Name,
		Address:   b.Address,
		Buffer:    b.ID,
		Condition: Condition{Atoms: atoms},
	}
}
