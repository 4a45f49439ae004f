// Package fixture builds small memory subsystems shared by tests and by the
// command line demo.
package fixture

import "github.com/sarchlab/mmucov/subsystem"

// Linear is start -> stop through one unguarded transition.
func Linear() *subsystem.Subsystem {
	b := subsystem.NewBuilder("linear")
	start := b.AddAction("start", subsystem.NoBuffer)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)
	b.AddTransition(start, stop, nil)

	return b.Build()
}

// ReadWrite has two sibling transitions from start to stop, one guarded by a
// read and one guarded by a write.
func ReadWrite() *subsystem.Subsystem {
	b := subsystem.NewBuilder("readwrite")
	start := b.AddAction("start", subsystem.NoBuffer)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)
	b.AddTransition(start, stop, &subsystem.Guard{Operation: subsystem.OpRead})
	b.AddTransition(start, stop, &subsystem.Guard{Operation: subsystem.OpWrite})

	return b.Build()
}

// Chain is start -> a -> b -> stop, all unguarded.
func Chain() *subsystem.Subsystem {
	b := subsystem.NewBuilder("chain")
	start := b.AddAction("start", subsystem.NoBuffer)
	a := b.AddAction("a", subsystem.NoBuffer)
	c := b.AddAction("b", subsystem.NoBuffer)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)
	b.AddTransition(start, a, nil)
	b.AddTransition(a, c, nil)
	b.AddTransition(c, stop, nil)

	return b.Build()
}

// Switch branches on a condition and joins again before stopping.
func Switch() *subsystem.Subsystem {
	b := subsystem.NewBuilder("switch")
	start := b.AddAction("start", subsystem.NoBuffer)
	join := b.AddAction("join", subsystem.NoBuffer)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)
	b.AddTransition(start, join, &subsystem.Guard{Condition: "va[0] == 0"})
	b.AddTransition(start, join, &subsystem.Guard{Condition: "va[0] == 1"})
	b.AddTransition(join, stop, nil)

	return b.Build()
}

// Cyclic has a loop between two actions, which is not a valid subsystem.
func Cyclic() *subsystem.Subsystem {
	b := subsystem.NewBuilder("cyclic")
	start := b.AddAction("start", subsystem.NoBuffer)
	retry := b.AddAction("retry", subsystem.NoBuffer)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)
	b.AddTransition(start, retry, nil)
	b.AddTransition(retry, start, nil)
	b.AddTransition(retry, stop, nil)

	return b.Build()
}

// Cache is a TLB in front of a data cache in front of memory. The TLB may
// miss, which ends the access with a fault.
func Cache() *subsystem.Subsystem {
	b := subsystem.NewBuilder("cache")
	va := b.AddAddress("VA", 48, "va")
	pa := b.AddAddress("PA", 36, "pa")

	tlb := subsystem.NewBuffer("TLB")
	tlb.Ways = 4
	tlb.Sets = 16
	tlb.LineSize = 4096
	tlb.Address = va
	tlb.Index = "va<15:12>"
	tlb.Tag = "va<47:16>"
	tlbID := b.AddBuffer(tlb)

	l1 := subsystem.NewBuffer("L1")
	l1.Kind = subsystem.KindMapped
	l1.Ways = 4
	l1.Sets = 64
	l1.LineSize = 64
	l1.Address = pa
	l1.Index = "pa<11:6>"
	l1.Tag = "pa<35:12>"
	l1.Replaceable = true
	l1ID := b.AddBuffer(l1)

	mem := subsystem.NewBuffer("MEM")
	mem.Kind = subsystem.KindMapped
	mem.Address = pa
	memID := b.AddBuffer(mem)
	b.SetTargetBuffer(memID)

	start := b.AddAction("start", subsystem.NoBuffer)
	tlbAction := b.AddAction("tlb", tlbID)
	fault := b.AddAction("fault", subsystem.NoBuffer)
	l1Action := b.AddAction("l1", l1ID)
	memAction := b.AddAction("mem", memID)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)

	b.AddTransition(start, tlbAction,
		&subsystem.Guard{Operation: subsystem.OpRead})
	b.AddTransition(start, tlbAction,
		&subsystem.Guard{Operation: subsystem.OpWrite})
	b.AddTransition(tlbAction, l1Action, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: tlbID, Event: subsystem.EventHit},
	})
	b.AddTransition(tlbAction, fault, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: tlbID, Event: subsystem.EventMiss},
	})
	b.AddTransition(l1Action, stop, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: l1ID, Event: subsystem.EventHit},
	})
	b.AddTransition(l1Action, memAction, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: l1ID, Event: subsystem.EventMiss},
	})
	b.AddTransition(memAction, stop, nil,
		subsystem.BufferAccess{Buffer: memID, Event: subsystem.EventRead})

	return b.Build()
}

// Walk is a TLB backed by a page table that lives in memory. A TLB miss walks
// the page table, which is a nested memory access.
func Walk() *subsystem.Subsystem {
	b := subsystem.NewBuilder("walk")
	va := b.AddAddress("VA", 48, "va")
	pa := b.AddAddress("PA", 36, "pa")

	tlb := subsystem.NewBuffer("TLB")
	tlb.Ways = 8
	tlb.Sets = 1
	tlb.LineSize = 4096
	tlb.Address = va
	tlb.Tag = "va<47:12>"
	tlb.Replaceable = true
	tlbID := b.AddBuffer(tlb)

	microTLB := subsystem.NewBuffer("uTLB")
	microTLB.Ways = 2
	microTLB.LineSize = 4096
	microTLB.Address = va
	microTLB.Tag = "va<47:12>"
	microTLB.Replaceable = true
	microTLB.Parent = tlbID
	b.AddBuffer(microTLB)

	pt := subsystem.NewBuffer("PT")
	pt.Kind = subsystem.KindMemory
	pt.Sets = 512
	pt.LineSize = 8
	pt.Address = va
	pt.Index = "va<20:12>"
	ptID := b.AddBuffer(pt)

	mem := subsystem.NewBuffer("MEM")
	mem.Kind = subsystem.KindMapped
	mem.Address = pa
	memID := b.AddBuffer(mem)
	b.SetTargetBuffer(memID)

	start := b.AddAction("start", subsystem.NoBuffer)
	tlbAction := b.AddAction("tlb", tlbID)
	walk := b.AddAction("walk", ptID)
	memAction := b.AddAction("mem", memID)
	stop := b.AddAction("stop", subsystem.NoBuffer)
	b.SetStart(start)

	b.AddTransition(start, tlbAction, nil)
	b.AddTransition(tlbAction, memAction, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: tlbID, Event: subsystem.EventHit},
	})
	b.AddTransition(tlbAction, walk, &subsystem.Guard{
		Access: &subsystem.BufferAccess{
			Buffer: tlbID, Event: subsystem.EventMiss},
	})
	b.AddTransition(walk, memAction, nil,
		subsystem.BufferAccess{Buffer: ptID, Event: subsystem.EventRead})
	b.AddTransition(memAction, stop, nil,
		subsystem.BufferAccess{Buffer: memID, Event: subsystem.EventRead})

	return b.Build()
}
