package coverage

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/path"
)

// Unrestricted names the statistics of iterators that are not restricted to
// a trajectory.
const Unrestricted = "*"

// Stats summarizes the search for one trajectory.
type Stats struct {
	Paths      int
	Entries    int
	Calls      int
	Rejected   int
	Backtracks int
}

// An Explorer is a hook that collects search statistics per trajectory.
type Explorer struct {
	mu    sync.Mutex
	stats map[string]*Stats
}

// NewExplorer creates an explorer with no statistics.
func NewExplorer() *Explorer {
	return &Explorer{stats: make(map[string]*Stats)}
}

// Func records one event of a path iterator.
func (x *Explorer) Func(ctx hooking.HookCtx) {
	it, ok := ctx.Domain.(*path.Iterator)
	if !ok {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	st := x.statsOf(it)

	switch ctx.Pos {
	case path.HookPosPathFound:
		p := ctx.Item.(*path.Path)
		st.Paths++
		st.Entries += p.Len()
		st.Calls += p.NumCalls()
	case path.HookPosEdgeRejected:
		st.Rejected++
	case path.HookPosBacktrack:
		st.Backtracks++
	}
}

func (x *Explorer) statsOf(it *path.Iterator) *Stats {
	name := Unrestricted
	if t, targeted := it.Trajectory(); targeted {
		name = t.String()
	}

	st, ok := x.stats[name]
	if !ok {
		st = &Stats{}
		x.stats[name] = st
	}

	return st
}

// Stats returns the statistics of a trajectory, named as Trajectory.String
// does.
func (x *Explorer) Stats(name string) (Stats, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	st, ok := x.stats[name]
	if !ok {
		return Stats{}, false
	}

	return *st, true
}

// Trajectories returns the names of the trajectories seen, in order.
func (x *Explorer) Trajectories() []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	names := make([]string, 0, len(x.stats))
	for n := range x.stats {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Total sums the statistics of all the trajectories.
func (x *Explorer) Total() Stats {
	x.mu.Lock()
	defer x.mu.Unlock()

	var total Stats
	for _, st := range x.stats {
		total.Paths += st.Paths
		total.Entries += st.Entries
		total.Calls += st.Calls
		total.Rejected += st.Rejected
		total.Backtracks += st.Backtracks
	}

	return total
}

// Report writes one line per trajectory.
func (x *Explorer) Report(w io.Writer) {
	fmt.Fprintf(w, "%-40s %8s %8s %8s %8s %10s\n",
		"trajectory", "paths", "entries", "calls", "rejected", "backtracks")

	for _, name := range x.Trajectories() {
		st, _ := x.Stats(name)
		fmt.Fprintf(w, "%-40s %8d %8d %8d %8d %10d\n",
			name, st.Paths, st.Entries, st.Calls, st.Rejected, st.Backtracks)
	}
}
