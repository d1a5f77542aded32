package workers

import "context"

// Job is any unit of work the pool can run.
type Job interface {
	JobID() string
}

// Processor supplies jobs and receives their outcomes. Checkout must be
// safe for concurrent workers; returning ErrNoWorkAvailable moves the
// calling worker to idle polling.
type Processor[J Job] interface {
	Checkout(ctx context.Context, workerID string) (J, error)
	Process(ctx context.Context, job J) (J, error)
	Complete(ctx context.Context, job J, elapsedMS int) error
	Fail(ctx context.Context, job J, err error) error
}

// WorkFunc runs one checkout-process-settle cycle for a worker.
type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps a WorkFunc with additional behavior.
type Middleware func(WorkFunc) WorkFunc
