// Package coverage memoizes the per-subsystem artifacts of the engine and
// collects statistics about path searches.
package coverage

import (
	"fmt"
	"sync"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/subsystem"
	"github.com/sarchlab/mmucov/trajectory"
	"golang.org/x/sync/singleflight"
)

type trajectoryKey struct {
	subsystem *subsystem.Subsystem
	name      string
}

// An Extractor remembers the graphs, trajectories and hazards of the
// subsystems it is asked about. Subsystems are told apart by identity. An
// Extractor can be used from several goroutines; concurrent first requests
// for the same artifact share one computation.
type Extractor struct {
	hazards *hazard.Cache
	group   singleflight.Group

	mu           sync.Mutex
	graphs       map[*subsystem.Subsystem]*graph.MemoryGraph
	trajectories map[trajectoryKey]trajectory.Result
}

// NewExtractor creates an empty extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		hazards:      hazard.NewCache(),
		graphs:       make(map[*subsystem.Subsystem]*graph.MemoryGraph),
		trajectories: make(map[trajectoryKey]trajectory.Result),
	}
}

// Hazards returns the hazard cache of the extractor.
func (e *Extractor) Hazards() *hazard.Cache {
	return e.hazards
}

// Graph returns the unlabeled memory graph of the subsystem.
func (e *Extractor) Graph(s *subsystem.Subsystem) *graph.MemoryGraph {
	e.mu.Lock()
	g, ok := e.graphs[s]
	e.mu.Unlock()

	if ok {
		return g
	}

	v, _, _ := e.group.Do(fmt.Sprintf("graph/%p", s),
		func() (interface{}, error) {
			g := graph.Build(s, nil)

			e.mu.Lock()
			defer e.mu.Unlock()

			if existing, ok := e.graphs[s]; ok {
				return existing, nil
			}

			e.graphs[s] = g

			return g, nil
		})

	return v.(*graph.MemoryGraph)
}

// Trajectories returns the trajectories of the subsystem under the named
// abstraction. The name identifies the abstraction; asking again with the
// same name returns the first result.
func (e *Extractor) Trajectories(
	s *subsystem.Subsystem,
	name string,
	abs graph.Abstraction,
) trajectory.Result {
	key := trajectoryKey{subsystem: s, name: name}

	e.mu.Lock()
	r, ok := e.trajectories[key]
	e.mu.Unlock()

	if ok {
		return r
	}

	v, _, _ := e.group.Do(fmt.Sprintf("trajectories/%p/%s", s, name),
		func() (interface{}, error) {
			r := trajectory.NewExtractor(s, abs).Extract()

			e.mu.Lock()
			defer e.mu.Unlock()

			if existing, ok := e.trajectories[key]; ok {
				return existing, nil
			}

			e.trajectories[key] = r

			return r, nil
		})

	return v.(trajectory.Result)
}

// AddressHazards returns the hazards of an address space.
func (e *Extractor) AddressHazards(
	s *subsystem.Subsystem,
	id subsystem.AddressID,
) []*hazard.Hazard {
	return e.hazards.AddressHazards(s, id)
}

// BufferHazards returns the hazards of a buffer.
func (e *Extractor) BufferHazards(
	s *subsystem.Subsystem,
	id subsystem.BufferID,
) []*hazard.Hazard {
	return e.hazards.BufferHazards(s, id)
}

// Dependencies lists the ways the later path can depend on the earlier one,
// over the address spaces and buffers both of them touch.
func (e *Extractor) Dependencies(
	s *subsystem.Subsystem,
	earlier, later *path.Path,
	limit int,
) []*hazard.Dependency {
	addrs := commonAddresses(earlier.Addresses(s), later.Addresses(s))

	var bufs []subsystem.BufferID

	for _, b := range commonBuffers(earlier.Buffers(), later.Buffers()) {
		if len(e.BufferHazards(s, b)) > 0 {
			bufs = append(bufs, b)
		}
	}

	return hazard.EnumerateDependencies(s, e.hazards, addrs, bufs, limit)
}

func commonAddresses(a, b []subsystem.AddressID) []subsystem.AddressID {
	in := make(map[subsystem.AddressID]bool, len(b))
	for _, id := range b {
		in[id] = true
	}

	var common []subsystem.AddressID

	for _, id := range a {
		if in[id] {
			common = append(common, id)
		}
	}

	return common
}

func commonBuffers(a, b []subsystem.BufferID) []subsystem.BufferID {
	in := make(map[subsystem.BufferID]bool, len(b))
	for _, id := range b {
		in[id] = true
	}

	var common []subsystem.BufferID

	for _, id := range a {
		if in[id] {
			common = append(common, id)
		}
	}

	return common
}
