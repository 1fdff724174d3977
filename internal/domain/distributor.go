package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fission-dev/fission/internal/adapter"
	m "github.com/fission-dev/fission/internal/model"
)

// DefaultMaxRequeues bounds how often a work item bounces off lost remote
// workers before it is recorded as errored.
const DefaultMaxRequeues = 5

// CompleteFunc receives each work item's terminal execution. It is the
// only notification contract the scheduler offers: invoked exactly once
// per job id, in completion order, never before the item is terminal.
type CompleteFunc func(jobID string, exec m.Execution)

// RunArgs configure one scheduler run.
type RunArgs struct {
	Backend     Backend
	OnComplete  CompleteFunc
	MaxRequeues int
}

// Distributor is the orchestration core: it drains pending work items from
// the work database and drives each through execution exactly once,
// subject to the backend's concurrency budget.
type Distributor interface {
	Run(ctx context.Context, args RunArgs) (m.Summary, error)
}

type distributor struct {
	db adapter.WorkDB
}

// NewDistributor constructs a Distributor over the given work database.
func NewDistributor(db adapter.WorkDB) Distributor {
	return &distributor{db: db}
}

// Run drains the database until no pending item remains or the context is
// cancelled. Cancellation leaves unfinished items RUNNING; the next run
// requeues them via the database's RequeueRunning, so nothing is silently
// lost. Re-running over a fully terminal database performs zero
// executions.
func (d *distributor) Run(ctx context.Context, args RunArgs) (m.Summary, error) {
	if args.Backend == nil {
		return m.Summary{}, m.NewConfigError("no execution backend configured")
	}

	if args.MaxRequeues <= 0 {
		args.MaxRequeues = DefaultMaxRequeues
	}

	requeues := newRequeueTracker()

	for ctx.Err() == nil {
		pending, err := d.db.Pending(ctx)
		if err != nil {
			return m.Summary{}, err
		}

		if len(pending) == 0 {
			break
		}

		slog.Debug("dispatching pending work", "items", len(pending), "concurrency", args.Backend.Concurrency())

		if err := d.dispatch(ctx, args, pending, requeues); err != nil {
			return m.Summary{}, err
		}
	}

	return d.db.Summary(context.WithoutCancel(ctx))
}

// dispatch runs one drain pass over the pending items. Requeued items are
// picked up by the next pass.
func (d *distributor) dispatch(ctx context.Context, args RunArgs, pending []m.WorkItem, requeues *requeueTracker) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(args.Backend.Concurrency())

	for _, item := range pending {
		currentItem := item

		group.Go(func() error {
			return d.process(groupCtx, args, currentItem, requeues)
		})
	}

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

// process drives a single work item through the execution protocol:
// mark-running, submit, record-result, notify. Every per-item failure is
// contained here; only database failures propagate.
func (d *distributor) process(ctx context.Context, args RunArgs, item m.WorkItem, requeues *requeueTracker) error {
	if ctx.Err() != nil {
		return nil
	}

	if err := d.db.MarkRunning(ctx, item.JobID); err != nil {
		if errors.Is(err, m.ErrStateConflict) {
			// Another dispatcher won the race for this item.
			slog.Debug("skipping already-dispatched item", "jobID", item.JobID)
			return nil
		}

		return err
	}

	exec, err := args.Backend.Submit(ctx, item)

	switch {
	case err == nil:
		return d.finish(ctx, args, item.JobID, exec)

	case errors.Is(err, m.ErrWorkerLost):
		return d.requeueOrFail(ctx, args, item.JobID, err, requeues)

	case ctx.Err() != nil:
		// Cancelled mid-flight. The item stays RUNNING and is requeued
		// when the session is resumed.
		slog.Debug("leaving cancelled item for resumption", "jobID", item.JobID)
		return nil

	default:
		return d.finish(ctx, args, item.JobID, erroredExecution(err))
	}
}

// finish records the terminal execution and fires the completion callback.
// The database's compare-and-swap guarantees the callback fires at most
// once per job id even under racing dispatchers.
func (d *distributor) finish(ctx context.Context, args RunArgs, jobID string, exec m.Execution) error {
	if err := d.db.RecordResult(ctx, jobID, exec); err != nil {
		if errors.Is(err, m.ErrStateConflict) {
			slog.Error("dropping duplicate completion", "jobID", jobID, "status", exec.Status)
			return nil
		}

		return err
	}

	if args.OnComplete != nil {
		args.OnComplete(jobID, exec)
	}

	return nil
}

// requeueOrFail reverts the item to pending after a worker loss, unless it
// has already bounced too often.
func (d *distributor) requeueOrFail(ctx context.Context, args RunArgs, jobID string, cause error, requeues *requeueTracker) error {
	attempts := requeues.bump(jobID)

	if attempts > args.MaxRequeues {
		slog.Warn("giving up on work item after repeated worker losses", "jobID", jobID, "attempts", attempts)
		return d.finish(ctx, args, jobID, erroredExecution(cause))
	}

	slog.Info("requeueing work item after worker loss", "jobID", jobID, "attempt", attempts)

	if err := d.db.Requeue(ctx, jobID); err != nil {
		if errors.Is(err, m.ErrStateConflict) {
			return nil
		}

		return err
	}

	return nil
}

// requeueTracker counts worker-loss requeues per job id.
type requeueTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRequeueTracker() *requeueTracker {
	return &requeueTracker{counts: make(map[string]int)}
}

func (t *requeueTracker) bump(jobID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[jobID]++

	return t.counts[jobID]
}
