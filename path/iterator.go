package path

import (
	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/subsystem"
)

// HookPosPathFound marks when an iterator produces a path.
var HookPosPathFound = &hooking.HookPos{Name: "PathFound"}

// HookPosEdgeRejected marks when the oracle rejects a program.
var HookPosEdgeRejected = &hooking.HookPos{Name: "EdgeRejected"}

// HookPosCall marks when a nested memory access starts.
var HookPosCall = &hooking.HookPos{Name: "Call"}

// HookPosReturn marks when a nested memory access completes.
var HookPosReturn = &hooking.HookPos{Name: "Return"}

// HookPosBacktrack marks when a search step runs out of programs.
var HookPosBacktrack = &hooking.HookPos{Name: "Backtrack"}

// A searchEntry is one frame of the depth-first search.
type searchEntry struct {
	action   subsystem.ActionID
	programs []*Program
	cursor   int
	context  Context
	result   SymbolicResult
	suffix   graph.Trajectory
	base     int
}

func (e *searchEntry) isBranch() bool {
	return len(e.programs) > 1
}

type step struct {
	entries []Entry
	context Context
	result  SymbolicResult
}

// An Iterator lazily enumerates the memory access paths of a subsystem with a
// depth-first search. The search state survives between calls to Next, so
// paths are produced one at a time.
type Iterator struct {
	hooking.HookableBase

	cfg       Builder
	stack     []*searchEntry
	entries   []Entry
	pending   *Path
	exhausted bool
}

// Trajectory returns the trajectory the iterator is restricted to, and if it
// is restricted at all.
func (it *Iterator) Trajectory() (graph.Trajectory, bool) {
	return it.cfg.trajectory, it.cfg.targeted
}

// HasNext tells if another path can be produced.
func (it *Iterator) HasNext() bool {
	if it.pending != nil {
		return true
	}

	if it.exhausted {
		return false
	}

	it.pending = it.search()
	if it.pending == nil {
		it.exhausted = true
	}

	return it.pending != nil
}

// Next returns the next path. It returns false once all the paths have been
// produced.
func (it *Iterator) Next() (*Path, bool) {
	if !it.HasNext() {
		return nil, false
	}

	p := it.pending
	it.pending = nil

	return p, true
}

func (it *Iterator) search() *Path {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]

		if it.cfg.graph.IsTerminal(top.action) {
			it.pop()

			if it.cfg.targeted && len(top.suffix) > 0 {
				continue
			}

			return it.complete(top)
		}

		if top.cursor >= len(top.programs) {
			it.pop()
			it.invoke(HookPosBacktrack, top.action, nil)

			continue
		}

		p := top.programs[top.cursor]
		top.cursor++

		it.entries = it.entries[:top.base]

		ctx, result := top.context, top.result
		if top.isBranch() {
			ctx, result = ctx.Fork(), result.Fork()
		}

		s, ok := it.apply(p, ctx, result)
		if !ok {
			it.invoke(HookPosEdgeRejected, p, nil)
			continue
		}

		it.entries = append(it.entries, s.entries...)
		it.push(p.Target(), s.context, s.result, it.consume(p, top.suffix))
	}

	return nil
}

func (it *Iterator) complete(e *searchEntry) *Path {
	entries := make([]Entry, e.base)
	copy(entries, it.entries[:e.base])

	p := NewPath(it.cfg.subsystem.Start(), entries, e.context, e.result)
	it.invoke(HookPosPathFound, p, nil)

	return p
}

func (it *Iterator) push(
	action subsystem.ActionID,
	ctx Context,
	result SymbolicResult,
	suffix graph.Trajectory,
) {
	it.stack = append(it.stack, &searchEntry{
		action:   action,
		programs: it.candidates(action, suffix),
		context:  ctx,
		result:   result,
		suffix:   suffix,
		base:     len(it.entries),
	})
}

func (it *Iterator) pop() {
	top := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.entries = it.entries[:top.base]
}

func (it *Iterator) consume(
	p *Program,
	suffix graph.Trajectory,
) graph.Trajectory {
	if !it.cfg.targeted {
		return nil
	}

	if _, labeled := p.Label(); labeled {
		return suffix[1:]
	}

	return suffix
}

func (it *Iterator) apply(
	p *Program,
	ctx Context,
	result SymbolicResult,
) (step, bool) {
	cfg := it.cfg

	if !cfg.oracle.IsFeasible(p, cfg.access, ctx, cfg.constraints, result) {
		return step{}, false
	}

	if p.IsCall(cfg.subsystem) {
		return it.call(p, ctx, result)
	}

	return step{
		entries: []Entry{{Kind: Normal, Program: p, Context: ctx}},
		context: ctx,
		result:  result,
	}, true
}

// call performs the nested memory access of a call program. The frame ID is
// consumed even if no nested path exists, so IDs are never reused.
func (it *Iterator) call(
	p *Program,
	ctx Context,
	result SymbolicResult,
) (step, bool) {
	cfg := it.cfg

	if ctx.Depth() >= cfg.maxCallDepth {
		return step{}, false
	}

	access, _ := cfg.subsystem.CallAccess(p.Edge().Transition)
	buffer := cfg.subsystem.Buffer(access.Buffer)

	frame := Frame{
		ID:         buffer.Name + "#" + cfg.ids.Generate(),
		Transition: p.Edge().Transition,
		Buffer:     access.Buffer,
	}
	inner := ctx.Push(frame)

	it.invoke(HookPosCall, p, frame)

	nested := cfg.nested(inner, result, nestedAccessType(access)).Build()

	innerPath, ok := nested.Next()
	if !ok {
		return step{}, false
	}

	_, outer := innerPath.Context().Pop()

	entries := make([]Entry, 0, innerPath.Len()+2)
	entries = append(entries, Entry{
		Kind: Call, Program: p, Context: inner, Frame: frame})
	entries = append(entries, innerPath.Entries()...)
	entries = append(entries, Entry{
		Kind: Return, Program: p, Context: outer, Frame: frame})

	it.invoke(HookPosReturn, p, frame)

	return step{
		entries: entries,
		context: outer,
		result:  innerPath.Result(),
	}, true
}

func nestedAccessType(a subsystem.BufferAccess) AccessType {
	if a.Event == subsystem.EventWrite {
		return AccessType{Operation: subsystem.OpWrite}
	}

	return AccessType{Operation: subsystem.OpRead}
}

// nested returns the configuration of the search for a nested access. The
// nested search shares the graph, the oracle, the random source, and the ID
// generator, but it is not restricted to the trajectory or subgraph and it
// does not report to the hooks.
func (b Builder) nested(
	ctx Context,
	result SymbolicResult,
	access AccessType,
) Builder {
	b = b.WithoutTrajectory()
	b.subgraph = nil
	b.hooks = nil
	b.context = ctx
	b.result = result
	b.access = access

	return b
}

func (it *Iterator) invoke(pos *hooking.HookPos, item, detail interface{}) {
	if it.NumHooks() == 0 {
		return
	}

	it.InvokeHook(hooking.HookCtx{
		Domain: it,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}
