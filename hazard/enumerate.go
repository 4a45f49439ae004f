package hazard

import (
	"github.com/sarchlab/mmucov/subsystem"
)

// EnumerateDependencies lists the consistent ways two accesses that touch the
// given address spaces and buffers can relate. Each dependency picks one
// hazard per address space and per buffer. When the addresses of a buffer
// are equal, the only consistent buffer hazard is TAG_EQUAL; buffers that
// have none are left out of that dependency. A positive limit caps the number
// of dependencies.
func EnumerateDependencies(
	s *subsystem.Subsystem,
	c *Cache,
	addrs []subsystem.AddressID,
	bufs []subsystem.BufferID,
	limit int,
) []*Dependency {
	e := &enumerator{
		subsystem: s,
		cache:     c,
		addrs:     addrs,
		bufs:      bufs,
		limit:     limit,
		equal:     make(map[subsystem.AddressID]bool),
	}

	e.address(0, nil)

	return e.deps
}

type enumerator struct {
	subsystem *subsystem.Subsystem
	cache     *Cache
	addrs     []subsystem.AddressID
	bufs      []subsystem.BufferID
	limit     int
	equal     map[subsystem.AddressID]bool
	deps      []*Dependency
}

func (e *enumerator) full() bool {
	return e.limit > 0 && len(e.deps) >= e.limit
}

func (e *enumerator) address(i int, chosen []*Hazard) {
	if i == len(e.addrs) {
		e.buffer(0, chosen)
		return
	}

	id := e.addrs[i]
	for _, h := range e.cache.AddressHazards(e.subsystem, id) {
		if e.full() {
			return
		}

		e.equal[id] = h.Kind == AddrEqual
		e.address(i+1, append(chosen, h))
	}

	delete(e.equal, id)
}

func (e *enumerator) buffer(i int, chosen []*Hazard) {
	if e.full() {
		return
	}

	if i == len(e.bufs) {
		e.deps = append(e.deps, &Dependency{
			Hazards: append([]*Hazard(nil), chosen...),
		})

		return
	}

	options := e.options(e.bufs[i])
	if len(options) == 0 {
		e.buffer(i+1, chosen)
		return
	}

	for _, h := range options {
		e.buffer(i+1, append(chosen, h))
	}
}

func (e *enumerator) options(id subsystem.BufferID) []*Hazard {
	hazards := e.cache.BufferHazards(e.subsystem, id)
	if !e.equal[e.subsystem.Buffer(id).Address] {
		return hazards
	}

	var options []*Hazard

	for _, h := range hazards {
		if h.Kind == TagEqual {
			options = append(options, h)
		}
	}

	return options
}
