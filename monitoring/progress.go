package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/mmucov/hooking"
	"github.com/sarchlab/mmucov/path"
)

// A ProgressBar tracks how many trajectories have been searched and how many
// paths have been found so far. It is also a hook that counts the paths of
// the iterators it is attached to.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	Paths      uint64    `json:"paths"`
}

// IncrementInProgress adds to the number of trajectories being searched.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// MoveInProgressToFinished marks trajectories being searched as done.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// Func counts a path whenever an iterator finds one.
func (b *ProgressBar) Func(ctx hooking.HookCtx) {
	if ctx.Pos != path.HookPosPathFound {
		return
	}

	b.Lock()
	defer b.Unlock()

	b.Paths++
}
