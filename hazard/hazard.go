// Package hazard describes how two memory accesses can interact: whether they
// use the same address, land in the same set of a buffer, hit the same entry,
// or evict each other's entries.
package hazard

import (
	"fmt"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// Kind names the relation a hazard stands for.
type Kind int

// The relations between two accesses.
const (
	AddrEqual Kind = iota
	AddrNotEqual
	IndexNotEqual
	TagEqual
	TagNotEqual
	TagReplaced
	TagNotReplaced
)

var kindNames = []string{
	"ADDR_EQUAL",
	"ADDR_NOT_EQUAL",
	"INDEX_NOT_EQUAL",
	"TAG_EQUAL",
	"TAG_NOT_EQUAL",
	"TAG_REPLACED",
	"TAG_NOT_REPLACED",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind converts a name such as "TAG_EQUAL" to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, s) {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("unknown hazard kind %q", s)
}

// Field is the part of an access an atom compares.
type Field int

// The fields of an access.
const (
	FieldValue Field = iota
	FieldIndex
	FieldTag
	FieldReplacedTag
)

func (f Field) String() string {
	switch f {
	case FieldValue:
		return "value"
	case FieldIndex:
		return "index"
	case FieldTag:
		return "tag"
	case FieldReplacedTag:
		return "replaced"
	default:
		return "unknown"
	}
}

// Relation is how an atom compares the fields of two accesses.
type Relation int

// The relations of an atom.
const (
	Equal Relation = iota
	NotEqual
)

func (r Relation) String() string {
	if r == Equal {
		return "=="
	}

	return "!="
}

// An Atom compares one field of the earlier access with a field of the later
// access. For FieldReplacedTag, the tag of the earlier access is compared
// with the tag the later access evicts.
type Atom struct {
	Relation Relation
	Field    Field
	Entity   string
	Expr     string
}

func (a Atom) String() string {
	expr := a.Expr
	if expr == "" {
		expr = a.Entity
	}

	if a.Field == FieldReplacedTag {
		return fmt.Sprintf("%s.tag[1] %s %s.replaced[2]",
			a.Entity, a.Relation, a.Entity)
	}

	return fmt.Sprintf("%s[1] %s %s[2]", expr, a.Relation, expr)
}

// A Condition is a conjunction of atoms. The empty condition always holds.
type Condition struct {
	Atoms []Atom
}

func (c Condition) String() string {
	if len(c.Atoms) == 0 {
		return "true"
	}

	parts := make([]string, len(c.Atoms))
	for i, a := range c.Atoms {
		parts[i] = a.String()
	}

	return strings.Join(parts, " && ")
}

// A Hazard is a relation between two accesses on one address space or one
// buffer, together with the condition under which it applies.
type Hazard struct {
	Kind      Kind
	Entity    string
	Address   subsystem.AddressID
	Buffer    subsystem.BufferID
	Condition Condition
}

// Name returns the entity and the kind, for example "L1.TAG_REPLACED".
func (h *Hazard) Name() string {
	return h.Entity + "." + h.Kind.String()
}

// IsBuffer tells if the hazard is about a buffer rather than an address.
func (h *Hazard) IsBuffer() bool {
	return h.Buffer != subsystem.NoBuffer
}

func (h *Hazard) String() string {
	return h.Name() + ": " + h.Condition.String()
}
