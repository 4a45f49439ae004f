package trajectory

import (
	"fmt"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/subsystem"
)

// ByOperation labels the transitions whose guard requires a read or a write.
func ByOperation(
	_ *subsystem.Subsystem,
	t *subsystem.Transition,
) (graph.Label, bool) {
	op := t.Operation()
	if op == subsystem.OpNone {
		return "", false
	}

	return graph.Label(op.String()), true
}

// ByBufferEvent labels the transitions whose guard tests a buffer, for
// example "TLB.HIT".
func ByBufferEvent(
	s *subsystem.Subsystem,
	t *subsystem.Transition,
) (graph.Label, bool) {
	if t.Guard == nil || t.Guard.Access == nil {
		return "", false
	}

	a := t.Guard.Access

	return graph.Label(s.Buffer(a.Buffer).Name + "." + a.Event.String()), true
}

// ByTransition labels every transition with its ID. Each trajectory then
// names exactly one walk through the graph.
func ByTransition(
	_ *subsystem.Subsystem,
	t *subsystem.Transition,
) (graph.Label, bool) {
	return graph.Label(fmt.Sprintf("t%d", t.ID)), true
}

// Abstractions maps the names accepted by the command line to the stock
// abstractions.
var Abstractions = map[string]graph.Abstraction{
	"operation":  ByOperation,
	"event":      ByBufferEvent,
	"transition": ByTransition,
}
