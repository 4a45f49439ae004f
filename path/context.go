package path

import (
	"log"
	"strings"

	"github.com/sarchlab/mmucov/subsystem"
)

// A Frame identifies one in-progress nested memory access.
type Frame struct {
	ID         string
	Transition *subsystem.Transition
	Buffer     subsystem.BufferID
}

type frameNode struct {
	frame  Frame
	parent *frameNode
}

// A Context is the call stack of nested memory accesses. Contexts are
// persistent: Push and Pop return new contexts and never change the receiver,
// so sibling search branches can hold the same context safely.
type Context struct {
	top   *frameNode
	depth int
}

// Push returns a context with the frame on top.
func (c Context) Push(f Frame) Context {
	return Context{
		top:   &frameNode{frame: f, parent: c.top},
		depth: c.depth + 1,
	}
}

// Pop returns the innermost frame and the context that encloses it.
func (c Context) Pop() (Frame, Context) {
	if c.top == nil {
		log.Panic("cannot pop an empty memory access context")
	}

	return c.top.frame, Context{top: c.top.parent, depth: c.depth - 1}
}

// Top returns the innermost frame.
func (c Context) Top() (Frame, bool) {
	if c.top == nil {
		return Frame{}, false
	}

	return c.top.frame, true
}

// Depth returns the number of nested accesses in progress.
func (c Context) Depth() int {
	return c.depth
}

// FrameID names the innermost frame. The top-level access is named "".
func (c Context) FrameID() string {
	if c.top == nil {
		return ""
	}

	return c.top.frame.ID
}

// Frames returns the frames from the outermost to the innermost.
func (c Context) Frames() []Frame {
	frames := make([]Frame, c.depth)

	i := c.depth - 1
	for n := c.top; n != nil; n = n.parent {
		frames[i] = n.frame
		i--
	}

	return frames
}

// Fork returns a context that can evolve independently of the receiver.
// Contexts are persistent, so this costs nothing.
func (c Context) Fork() Context {
	return c
}

func (c Context) String() string {
	frames := c.Frames()
	names := make([]string, len(frames))

	for i, f := range frames {
		names[i] = f.ID
	}

	return "[" + strings.Join(names, "/") + "]"
}
