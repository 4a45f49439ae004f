package hazard

import (
	"sync"

	"github.com/sarchlab/mmucov/subsystem"
)

type entityKey struct {
	subsystem *subsystem.Subsystem
	id        int
}

// A Cache remembers the hazards of the address spaces and buffers of every
// subsystem it has seen. Each entry is computed at most once per caller and
// stored once; callers that race on the same entry all get the stored one.
type Cache struct {
	mu        sync.Mutex
	addresses map[entityKey][]*Hazard
	buffers   map[entityKey][]*Hazard
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		addresses: make(map[entityKey][]*Hazard),
		buffers:   make(map[entityKey][]*Hazard),
	}
}

// AddressHazards returns the hazards of an address space.
func (c *Cache) AddressHazards(
	s *subsystem.Subsystem,
	id subsystem.AddressID,
) []*Hazard {
	key := entityKey{subsystem: s, id: int(id)}
	if hs, ok := c.lookup(c.addresses, key); ok {
		return hs
	}

	return c.store(c.addresses, key,
		NewAddressCoverageExtractor(s, id).Hazards())
}

// BufferHazards returns the hazards of a buffer.
func (c *Cache) BufferHazards(
	s *subsystem.Subsystem,
	id subsystem.BufferID,
) []*Hazard {
	key := entityKey{subsystem: s, id: int(id)}
	if hs, ok := c.lookup(c.buffers, key); ok {
		return hs
	}

	return c.store(c.buffers, key,
		NewBufferCoverageExtractor(s, id).Hazards())
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.addresses) + len(c.buffers)
}

func (c *Cache) lookup(
	m map[entityKey][]*Hazard,
	key entityKey,
) ([]*Hazard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hs, ok := m[key]

	return hs, ok
}

func (c *Cache) store(
	m map[entityKey][]*Hazard,
	key entityKey,
	hs []*Hazard,
) []*Hazard {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := m[key]; ok {
		return existing
	}

	m[key] = hs

	return hs
}
