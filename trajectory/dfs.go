package trajectory

import (
	"log"

	"github.com/sarchlab/mmucov/graph"
	"github.com/sarchlab/mmucov/subsystem"
)

const (
	unvisited = iota
	onStack
	done
)

type dfsFrame struct {
	action subsystem.ActionID
	cursor int
}

// postOrder visits every action reachable from start after all of its
// successors have been visited. It panics if an action is reached again while
// it is still on the stack.
func postOrder(
	s *subsystem.Subsystem,
	g *graph.MemoryGraph,
	visit func(subsystem.ActionID),
) {
	state := make([]int, g.NumActions())
	start := s.Start()

	stack := []dfsFrame{{action: start}}
	state[start] = onStack

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.Edges(top.action)

		if top.cursor < len(edges) {
			next := edges[top.cursor].Target()
			top.cursor++

			switch state[next] {
			case unvisited:
				state[next] = onStack
				stack = append(stack, dfsFrame{action: next})
			case onStack:
				log.Panicf("action %s is reached from itself",
					s.Action(next).Name)
			}

			continue
		}

		visit(top.action)
		state[top.action] = done
		stack = stack[:len(stack)-1]
	}
}
