package subsystem

// BufferKind tells how a buffer is reached.
type BufferKind int

// A KindUnmapped buffer is a standalone structure such as a TLB. A
// KindMapped buffer caches memory contents, for example a data cache. A
// KindMemory buffer is stored in memory itself, so accessing it requires a
// nested memory access (a page table walked by the hardware, for example).
const (
	KindUnmapped BufferKind = iota
	KindMapped
	KindMemory
)

func (k BufferKind) String() string {
	switch k {
	case KindUnmapped:
		return "unmapped"
	case KindMapped:
		return "mapped"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// A Buffer is a cache, TLB, or register-file-like storage with ways, sets, and
// possibly a replacement policy.
type Buffer struct {
	ID          BufferID
	Name        string
	Kind        BufferKind
	Ways        int
	Sets        int
	LineSize    uint64
	Address     AddressID
	Index       string
	Tag         string
	Replaceable bool
	Parent      BufferID
}

// HasIndex tells if the buffer has an index expression.
func (b *Buffer) HasIndex() bool {
	return b.Index != ""
}

// HasTag tells if the buffer has a tag expression.
func (b *Buffer) HasTag() bool {
	return b.Tag != ""
}

// IsMultiSet tells if entries of the buffer are spread over several sets, so
// that two accesses may land in different sets.
func (b *Buffer) IsMultiSet() bool {
	return b.Sets > 1 && b.HasIndex()
}
