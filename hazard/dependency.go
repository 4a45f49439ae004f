package hazard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// A Dependency is the set of hazards that relate an access to one earlier
// access.
type Dependency struct {
	Hazards []*Hazard
}

// Hazard returns the hazard of the dependency on the given buffer, if any.
func (d *Dependency) Hazard(buffer subsystem.BufferID) (*Hazard, bool) {
	for _, h := range d.Hazards {
		if h.IsBuffer() && h.Buffer == buffer {
			return h, true
		}
	}

	return nil, false
}

func (d *Dependency) String() string {
	names := make([]string, len(d.Hazards))
	for i, h := range d.Hazards {
		names[i] = h.Name()
	}

	return "{" + strings.Join(names, ", ") + "}"
}

// An IndexSet is a set of access indices.
type IndexSet map[int]struct{}

// Add puts an index into the set.
func (s IndexSet) Add(i int) {
	s[i] = struct{}{}
}

// Contains tells if the index is in the set.
func (s IndexSet) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

// Union returns a new set with the indices of both sets.
func (s IndexSet) Union(other IndexSet) IndexSet {
	u := make(IndexSet, len(s)+len(other))
	for i := range s {
		u[i] = struct{}{}
	}

	for i := range other {
		u[i] = struct{}{}
	}

	return u
}

// Sorted returns the indices in increasing order.
func (s IndexSet) Sorted() []int {
	indices := make([]int, 0, len(s))
	for i := range s {
		indices = append(indices, i)
	}

	sort.Ints(indices)

	return indices
}

type relations map[Kind]IndexSet

func (r relations) add(k Kind, i int) {
	if r[k] == nil {
		r[k] = make(IndexSet)
	}

	r[k].Add(i)
}

// A UnitedDependency merges the dependencies of one access on all the
// earlier accesses. For every address space and buffer it tells which earlier
// accesses are in which relation with the access.
type UnitedDependency struct {
	subsystem *subsystem.Subsystem
	addresses map[subsystem.AddressID]relations
	buffers   map[subsystem.BufferID]relations
}

// NewUnitedDependency merges dependencies. The map gives the index of the
// earlier access each dependency refers to. Buffers inherit the relations of
// the address space they are indexed by.
func NewUnitedDependency(
	s *subsystem.Subsystem,
	deps map[*Dependency]int,
) *UnitedDependency {
	u := &UnitedDependency{
		subsystem: s,
		addresses: make(map[subsystem.AddressID]relations),
		buffers:   make(map[subsystem.BufferID]relations),
	}

	for d, index := range deps {
		for _, h := range d.Hazards {
			if h.IsBuffer() {
				u.bufferRelations(h.Buffer).add(h.Kind, index)
			} else {
				u.addressRelations(h.Address).add(h.Kind, index)
			}
		}
	}

	u.inheritAddressRelations()

	return u
}

func (u *UnitedDependency) addressRelations(
	id subsystem.AddressID,
) relations {
	if u.addresses[id] == nil {
		u.addresses[id] = make(relations)
	}

	return u.addresses[id]
}

func (u *UnitedDependency) bufferRelations(id subsystem.BufferID) relations {
	if u.buffers[id] == nil {
		u.buffers[id] = make(relations)
	}

	return u.buffers[id]
}

func (u *UnitedDependency) inheritAddressRelations() {
	for _, b := range u.subsystem.Buffers() {
		addr, ok := u.addresses[b.Address]
		if !ok {
			continue
		}

		r := u.bufferRelations(b.ID)
		for kind, indices := range addr {
			for i := range indices {
				r.add(kind, i)
			}
		}
	}
}

// Addresses returns the address spaces that have relations.
func (u *UnitedDependency) Addresses() []subsystem.AddressID {
	ids := make([]subsystem.AddressID, 0, len(u.addresses))
	for id := range u.addresses {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Buffers returns the buffers that have relations.
func (u *UnitedDependency) Buffers() []subsystem.BufferID {
	ids := make([]subsystem.BufferID, 0, len(u.buffers))
	for id := range u.buffers {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// AddressRelation returns the accesses in the given relation on an address
// space.
func (u *UnitedDependency) AddressRelation(
	id subsystem.AddressID,
	kind Kind,
) IndexSet {
	return IndexSet{}.Union(u.addresses[id][kind])
}

// BufferRelation returns the accesses in the given relation on a buffer.
func (u *UnitedDependency) BufferRelation(
	id subsystem.BufferID,
	kind Kind,
) IndexSet {
	return IndexSet{}.Union(u.buffers[id][kind])
}

func (u *UnitedDependency) bufferUnion(
	id subsystem.BufferID,
	kinds ...Kind,
) IndexSet {
	s := IndexSet{}
	for _, k := range kinds {
		s = s.Union(u.buffers[id][k])
	}

	return s
}

// AddrEqualRelation returns the accesses to the same address.
func (u *UnitedDependency) AddrEqualRelation(id subsystem.AddressID) IndexSet {
	return u.AddressRelation(id, AddrEqual)
}

// IndexEqualRelation returns the accesses that land in the same set of the
// buffer.
func (u *UnitedDependency) IndexEqualRelation(id subsystem.BufferID) IndexSet {
	return u.bufferUnion(id,
		AddrEqual, TagEqual, TagNotEqual, TagReplaced, TagNotReplaced)
}

// TagEqualRelation returns the accesses that use the same entry of the buffer
// or of one of its child buffers.
func (u *UnitedDependency) TagEqualRelation(id subsystem.BufferID) IndexSet {
	s := u.bufferUnion(id, AddrEqual, TagEqual)

	for _, child := range u.subsystem.Children(id) {
		s = s.Union(u.buffers[child.ID][TagEqual])
	}

	return s
}

// TagNotEqualRelation returns the accesses that use another entry of the same
// set of the buffer.
func (u *UnitedDependency) TagNotEqualRelation(id subsystem.BufferID) IndexSet {
	return u.bufferUnion(id, TagNotEqual, TagReplaced, TagNotReplaced)
}

// TagReplacedRelation returns the accesses whose entry the access evicts.
func (u *UnitedDependency) TagReplacedRelation(id subsystem.BufferID) IndexSet {
	return u.BufferRelation(id, TagReplaced)
}

// TagNotReplacedRelation returns the accesses whose entry is kept even though
// the access uses another entry of the same set.
func (u *UnitedDependency) TagNotReplacedRelation(
	id subsystem.BufferID,
) IndexSet {
	return u.BufferRelation(id, TagNotReplaced)
}

func (u *UnitedDependency) String() string {
	var parts []string

	for _, id := range u.Addresses() {
		parts = append(parts, describe(u.subsystem.Address(id).Name,
			u.addresses[id]))
	}

	for _, id := range u.Buffers() {
		parts = append(parts, describe(u.subsystem.Buffer(id).Name,
			u.buffers[id]))
	}

	return strings.Join(parts, "; ")
}

func describe(entity string, r relations) string {
	kinds := make([]Kind, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%v", k, r[k].Sorted())
	}

	return entity + ": " + strings.Join(parts, " ")
}
