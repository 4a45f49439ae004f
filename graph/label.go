package graph

import (
	"sort"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// A Label is the abstract, observable name of a transition.
type Label string

// An Abstraction maps a transition to its label. Transitions that are not
// observable under the abstraction report false.
type Abstraction func(
	s *subsystem.Subsystem,
	t *subsystem.Transition,
) (Label, bool)

// A LabelSet is an unordered set of labels.
type LabelSet map[Label]struct{}

// Contains tells if the label is in the set.
func (s LabelSet) Contains(l Label) bool {
	_, ok := s[l]
	return ok
}

// Add puts a label into the set.
func (s LabelSet) Add(l Label) {
	s[l] = struct{}{}
}

// AddAll puts all the labels of another set into the set.
func (s LabelSet) AddAll(other LabelSet) {
	for l := range other {
		s[l] = struct{}{}
	}
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []Label {
	labels := make([]Label, 0, len(s))
	for l := range s {
		labels = append(labels, l)
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	return labels
}

// A Trajectory is a sequence of labels that names a class of concrete paths.
type Trajectory []Label

const keySeparator = "\x1f"

// Key returns a string that identifies the trajectory.
func (t Trajectory) Key() string {
	parts := make([]string, len(t))
	for i, l := range t {
		parts[i] = string(l)
	}

	return strings.Join(parts, keySeparator)
}

// Equal tells if two trajectories have the same labels in the same order.
func (t Trajectory) Equal(other Trajectory) bool {
	if len(t) != len(other) {
		return false
	}

	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}

	return true
}

// Prepend returns a new trajectory that starts with the given label.
func (t Trajectory) Prepend(l Label) Trajectory {
	nt := make(Trajectory, 0, len(t)+1)
	nt = append(nt, l)
	nt = append(nt, t...)

	return nt
}

func (t Trajectory) String() string {
	parts := make([]string, len(t))
	for i, l := range t {
		parts[i] = string(l)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// SortTrajectories orders trajectories by their keys.
func SortTrajectories(ts []Trajectory) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Key() < ts[j].Key() })
}
