package recording

import (
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/mmucov/hazard"
	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/path"
)

const (
	pathTable   = "mmucov_path"
	entryTable  = "mmucov_entry"
	hazardTable = "mmucov_hazard"
)

type pathRow struct {
	Run        string
	Seq        int
	Trajectory string
	PathKey    string
	Length     int
	Calls      int
	StartID    int
	EndID      int
}

type entryRow struct {
	Run     string
	PathSeq int
	Pos     int
	Kind    string
	Program string
	Frame   string
	Depth   int
}

type hazardRow struct {
	Run       string
	Entity    string
	Kind      string
	Buffer    bool
	Condition string
}

// A Recorder is a hook that writes every path found by a path iterator into
// a Writer. All the rows of one Recorder share a run ID.
type Recorder struct {
	mu     sync.Mutex
	writer Writer
	run    string
	seq    int
}

// NewRecorder creates the tables and returns a Recorder.
func NewRecorder(w Writer) *Recorder {
	w.CreateTable(pathTable, pathRow{})
	w.CreateTable(entryTable, entryRow{})
	w.CreateTable(hazardTable, hazardRow{})

	return &Recorder{
		writer: w,
		run:    xid.New().String(),
	}
}

// RunID returns the ID that marks the rows of the recorder.
func (r *Recorder) RunID() string {
	return r.run
}

// NumPaths returns the number of paths recorded.
func (r *Recorder) NumPaths() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.seq
}

// Func records the path of a HookPosPathFound event.
func (r *Recorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != path.HookPosPathFound {
		return
	}

	p := ctx.Item.(*path.Path)

	trajectory := ""
	if it, ok := ctx.Domain.(*path.Iterator); ok {
		if t, targeted := it.Trajectory(); targeted {
			trajectory = t.String()
		}
	}

	r.RecordPath(trajectory, p)
}

// RecordPath writes a path and its entries.
func (r *Recorder) RecordPath(trajectory string, p *path.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.seq
	r.seq++

	r.writer.InsertData(pathTable, pathRow{
		Run:        r.run,
		Seq:        seq,
		Trajectory: trajectory,
		PathKey:    p.Key(),
		Length:     p.Len(),
		Calls:      p.NumCalls(),
		StartID:    int(p.Start()),
		EndID:      int(p.End()),
	})

	for i, e := range p.Entries() {
		r.writer.InsertData(entryTable, entryRow{
			Run:     r.run,
			PathSeq: seq,
			Pos:     i,
			Kind:    e.Kind.String(),
			Program: e.Program.String(),
			Frame:   e.Frame.ID,
			Depth:   e.Context.Depth(),
		})
	}
}

// RecordHazards writes hazards.
func (r *Recorder) RecordHazards(hs []*hazard.Hazard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range hs {
		r.writer.InsertData(hazardTable, hazardRow{
			Run:       r.run,
			Entity:    h.Entity,
			Kind:      h.Kind.String(),
			Buffer:    h.IsBuffer(),
			Condition: h.Condition.String(),
		})
	}
}

// Flush writes the buffered rows.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writer.Flush()
}
