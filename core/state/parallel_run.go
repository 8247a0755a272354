package state

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ethforge/corevm/types"
)

// ErrConflict describes two independent executions that wrote to the same
// account. RunIndependent performs no conflict detection and never returns it.
type ErrConflict struct {
	Address types.Address
}

func (e *ErrConflict) Error() string {
	return "state: conflicting writes to " + e.Address.Hex() + " across independent executions"
}

// Task is one unit of independent work handed to RunIndependent: it receives
// its own private world view, forked from the shared one, and returns
// whatever result the caller needs alongside any execution error.
type Task func(ctx context.Context, world *MemoryStateDB) (any, error)

// RunIndependent executes each task against its own Copy of base concurrently
// via errgroup, then merges every task's resulting view back into base in
// task order. This is the host-side mechanism named for executing
// independent transactions on parallel threads: the caller is responsible
// for knowing ahead of time (e.g. from a static read/write-set analysis)
// that the given tasks do not touch overlapping accounts, since this helper
// performs no conflict detection of its own; the merges run one at a time in
// the calling goroutine after every task has finished.
func RunIndependent(ctx context.Context, base *MemoryStateDB, tasks []Task) ([]any, error) {
	results := make([]any, len(tasks))
	views := make([]*MemoryStateDB, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		i, task := i, task
		views[i] = base.Copy()
		g.Go(func() error {
			res, err := task(gctx, views[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, view := range views {
		base.Merge(view)
	}
	return results, nil
}
