// Package tagging models the tag array of a buffer. It is used to find
// concrete addresses that witness buffer hazards.
package tagging

// TagArray keeps the tags stored in the sets and ways of a buffer.
type TagArray interface {
	Lookup(addr uint64) (Block, bool)
	Update(block Block)
	Visit(block Block)
	GetSet(addr uint64) (set *Set, setID int)
	Index(addr uint64) int
	Tag(addr uint64) uint64
	Reset()
}

// NewTagArray creates a tag array with all blocks invalid.
func NewTagArray(
	numSets int,
	numWays int,
	lineSize uint64,
) TagArray {
	if lineSize == 0 {
		lineSize = 1
	}

	t := &tagArrayImpl{
		NumSets:  numSets,
		NumWays:  numWays,
		LineSize: lineSize,
		Sets:     []Set{},
	}

	t.Reset()

	return t
}

// A Block is one way of a set.
type Block struct {
	Tag     uint64
	WayID   int
	SetID   int
	IsValid bool
}

// A Set is the list of blocks a line can be stored at.
type Set struct {
	Blocks   []Block
	LRUQueue []int
}

type tagArrayImpl struct {
	NumSets  int
	NumWays  int
	LineSize uint64
	Sets     []Set
}

func (d *tagArrayImpl) Index(addr uint64) int {
	return int(addr / d.LineSize % uint64(d.NumSets))
}

func (d *tagArrayImpl) Tag(addr uint64) uint64 {
	return addr / d.LineSize / uint64(d.NumSets)
}

// GetSet returns the set that an address maps to.
func (d *tagArrayImpl) GetSet(addr uint64) (set *Set, setID int) {
	setID = d.Index(addr)
	set = &d.Sets[setID]

	return
}

// Lookup finds the valid block that holds the address.
func (d *tagArrayImpl) Lookup(addr uint64) (Block, bool) {
	set, _ := d.GetSet(addr)
	tag := d.Tag(addr)

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

func (d *tagArrayImpl) Update(block Block) {
	d.Sets[block.SetID].Blocks[block.WayID] = block
}

// Visit moves the block to the end of the LRU queue.
func (d *tagArrayImpl) Visit(block Block) {
	set := &d.Sets[block.SetID]
	newLRUQueue := []int{}

	for _, b := range set.LRUQueue {
		if b != block.WayID {
			newLRUQueue = append(newLRUQueue, b)
		}
	}

	newLRUQueue = append(newLRUQueue, block.WayID)

	set.LRUQueue = newLRUQueue
}

// Reset marks all the blocks invalid.
func (d *tagArrayImpl) Reset() {
	d.Sets = make([]Set, d.NumSets)
	for i := 0; i < d.NumSets; i++ {
		for j := 0; j < d.NumWays; j++ {
			block := Block{
				IsValid: false,
				SetID:   i,
				WayID:   j,
			}

			d.Sets[i].Blocks = append(d.Sets[i].Blocks, block)
			d.Sets[i].LRUQueue = append(d.Sets[i].LRUQueue, j)
		}
	}
}
