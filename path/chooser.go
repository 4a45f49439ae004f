package path

import (
	"log"

	"github.com/sarchlab/mmucov/graph"
)

// A PathIterator produces paths one at a time.
type PathIterator interface {
	Next() (*Path, bool)
}

// A Chooser supplies paths on demand. It draws from randomly picked
// iterators while any of them is alive and replays previously supplied paths
// afterwards.
type Chooser struct {
	random  Random
	live    []PathIterator
	history []*Path
}

// NewChooser creates a chooser over the given iterators.
func NewChooser(r Random, iterators ...PathIterator) *Chooser {
	if r == nil {
		log.Panic("chooser requires a random source")
	}

	return &Chooser{
		random: r,
		live:   append([]PathIterator(nil), iterators...),
	}
}

// Get returns a path, or nil if no iterator has ever produced one.
func (c *Chooser) Get() *Path {
	for len(c.live) > 0 {
		i := c.random.Intn(len(c.live))

		p, ok := c.live[i].Next()
		if ok {
			c.history = append(c.history, p)
			return p
		}

		c.live = append(c.live[:i], c.live[i+1:]...)
	}

	if len(c.history) == 0 {
		return nil
	}

	return c.history[c.random.Intn(len(c.history))]
}

// NumLive returns the number of iterators that may still produce new paths.
func (c *Chooser) NumLive() int {
	return len(c.live)
}

// History returns the paths produced so far.
func (c *Chooser) History() []*Path {
	return c.history
}

// An Extractor creates the iterators of a set of trajectories.
type Extractor struct {
	builder      Builder
	trajectories []graph.Trajectory
}

// NewExtractor creates an extractor that searches one iterator per
// trajectory. With no trajectories, a single unrestricted iterator is used.
func NewExtractor(b Builder, trajectories []graph.Trajectory) *Extractor {
	return &Extractor{
		builder:      b,
		trajectories: trajectories,
	}
}

// Iterators builds fresh iterators. The iterators of one call share their
// frame ID generator.
func (e *Extractor) Iterators() []*Iterator {
	b := e.builder.WithSharedIDGenerator()

	if len(e.trajectories) == 0 {
		return []*Iterator{b.WithoutTrajectory().Build()}
	}

	its := make([]*Iterator, 0, len(e.trajectories))
	for _, t := range e.trajectories {
		its = append(its, b.WithTrajectory(t).Build())
	}

	return its
}

// Chooser builds a chooser over fresh iterators.
func (e *Extractor) Chooser() *Chooser {
	its := e.Iterators()

	pis := make([]PathIterator, len(its))
	for i, it := range its {
		pis[i] = it
	}

	return NewChooser(e.builder.random, pis...)
}

// Distinct enumerates up to limit distinct paths, taking one path from each
// iterator in turn. A non-positive limit means no limit.
func (e *Extractor) Distinct(limit int) []*Path {
	its := e.Iterators()
	seen := make(map[string]bool)

	var paths []*Path

	for len(its) > 0 {
		live := its[:0]

		for _, it := range its {
			p, ok := it.Next()
			if !ok {
				continue
			}

			live = append(live, it)

			if seen[p.Key()] {
				continue
			}

			seen[p.Key()] = true
			paths = append(paths, p)

			if limit > 0 && len(paths) >= limit {
				return paths
			}
		}

		its = live
	}

	return paths
}
