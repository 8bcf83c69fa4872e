package agent

import (
	"fmt"
	"sync"
)

// TaskGroup supervises detached units of work: session processing loops
// and fire-and-forget terminating-tool executions. The host process owns
// one group, drains it at shutdown, and receives task-level failures
// through its failure callback instead of losing them with the goroutine.
type TaskGroup struct {
	wg        sync.WaitGroup
	onFailure func(error)
}

// NewTaskGroup creates a TaskGroup. onFailure receives every non-nil
// error (and recovered panic) from a supervised task; nil means failures
// are discarded.
func NewTaskGroup(onFailure func(error)) *TaskGroup {
	return &TaskGroup{onFailure: onFailure}
}

// Go runs fn in its own goroutine tracked by the group. A panic inside fn
// is recovered and reported as a failure rather than crashing the process.
func (g *TaskGroup) Go(fn func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.fail(fmt.Errorf("task panic: %v", r))
			}
		}()
		if err := fn(); err != nil {
			g.fail(err)
		}
	}()
}

func (g *TaskGroup) fail(err error) {
	if g.onFailure != nil {
		g.onFailure(err)
	}
}

// Wait blocks until every tracked task has completed. Called by the host
// at shutdown so unobserved work is not silently dropped.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}
