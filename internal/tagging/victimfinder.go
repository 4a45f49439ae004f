package tagging

// A VictimFinder decides which block should be evicted.
type VictimFinder interface {
	FindVictim(tags TagArray, addr uint64) Block
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return new(LRUVictimFinder)
}

// FindVictim returns an empty block if the set has one, and the least
// recently used block otherwise.
func (e *LRUVictimFinder) FindVictim(tags TagArray, addr uint64) Block {
	set, _ := tags.GetSet(addr)

	for _, blockIndex := range set.LRUQueue {
		block := set.Blocks[blockIndex]
		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.LRUQueue[0]]
}

// An Access is the outcome of touching one address.
type Access struct {
	Hit     bool
	Evicted bool
	Victim  Block
}

// Touch looks the address up, fills it on a miss, and marks it most recently
// used.
func Touch(tags TagArray, finder VictimFinder, addr uint64) Access {
	if block, hit := tags.Lookup(addr); hit {
		tags.Visit(block)
		return Access{Hit: true}
	}

	victim := finder.FindVictim(tags, addr)
	access := Access{Evicted: victim.IsValid, Victim: victim}

	block := victim
	block.Tag = tags.Tag(addr)
	block.IsValid = true
	tags.Update(block)
	tags.Visit(block)

	return access
}
