package hazard

import (
	"github.com/sarchlab/mmucov/internal/tagging"
	"github.com/sarchlab/mmucov/subsystem"
)

// Witness runs two accesses through a model of the buffer with LRU
// replacement and tells which hazard of the buffer relates them. The
// addresses in between are accessed after the first access and before the
// second. It returns false if no hazard of the buffer applies, which happens
// for accesses to the same entry of a buffer that is never replaced.
func Witness(
	b *subsystem.Buffer,
	first, second uint64,
	between ...uint64,
) (Kind, bool) {
	sets := 1
	if b.IsMultiSet() {
		sets = b.Sets
	}

	tags := tagging.NewTagArray(sets, b.Ways, b.LineSize)

	if tags.Index(first) != tags.Index(second) {
		return IndexNotEqual, true
	}

	if !b.HasTag() {
		return 0, false
	}

	if tags.Tag(first) == tags.Tag(second) {
		return TagEqual, b.Replaceable
	}

	if !b.Replaceable {
		return TagNotEqual, true
	}

	finder := tagging.NewLRUVictimFinder()

	tagging.Touch(tags, finder, first)

	for _, addr := range between {
		tagging.Touch(tags, finder, addr)
	}

	a := tagging.Touch(tags, finder, second)
	if a.Evicted && a.Victim.Tag == tags.Tag(first) {
		return TagReplaced, true
	}

	return TagNotReplaced, true
}
