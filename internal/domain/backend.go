package domain

import (
	"context"

	m "github.com/fission-dev/fission/internal/model"
)

// Backend is the execution capability the scheduler is written against.
// The scheduler never branches on backend identity: sequential, pooled,
// and remote execution all hide behind Submit.
type Backend interface {
	// Submit drives one work item through apply-and-test and returns its
	// terminal execution. Per-item failures (site drift, executor crash,
	// timeout) are folded into the returned Execution, not the error.
	// The error is reserved for infrastructure conditions: the context's
	// error on cancellation, or model.ErrWorkerLost when a remote worker
	// disconnected and the item should be requeued.
	Submit(ctx context.Context, item m.WorkItem) (m.Execution, error)

	// Concurrency returns the number of work items the backend can
	// execute at once. The scheduler uses it as its dispatch budget.
	Concurrency() int
}
