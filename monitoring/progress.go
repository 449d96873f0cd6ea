package monitoring

import (
	"sync"
	"time"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/hooking"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
)

// ProgressBar counts the work items of a simulation, such as its steps, as
// reported on /api/progress. Total is zero when the amount of work is not
// known in advance.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress records that amount items have started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished records amount items that were done without being
// tracked as in progress.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished records that amount started items are done.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// A StepProgressHook counts the steps of a root coordinator on a progress
// bar. Both scheduled steps and injections count.
type StepProgressHook struct {
	bar *ProgressBar
}

// NewStepProgressHook creates a hook that updates bar.
func NewStepProgressHook(bar *ProgressBar) *StepProgressHook {
	return &StepProgressHook{bar: bar}
}

// Func implements hooking.Hook.
func (h *StepProgressHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case simulation.HookPosBeforeStep:
		h.bar.IncrementInProgress(1)
	case simulation.HookPosAfterStep:
		h.bar.MoveInProgressToFinished(1)
	case simulation.HookPosInject:
		h.bar.IncrementFinished(1)
	}
}
