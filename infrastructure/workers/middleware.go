package workers

import (
	"context"
	"errors"
	"sync"
)

// buildChain wraps the base work function with the configured
// middlewares; first added runs outermost.
func (p *Pool[J]) buildChain() {
	p.workFunc = p.work
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		p.workFunc = p.middlewares[i](p.workFunc)
	}
}

// ConsecutiveErrorShutdown stops a worker after it fails count times in a
// row. Idle polls do not count; a successful cycle resets the streak.
func ConsecutiveErrorShutdown(count int) Middleware {
	streaks := make(map[string]int)
	var mu sync.Mutex

	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			err := next(ctx, workerID)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil, errors.Is(err, ErrNoWorkAvailable):
				streaks[workerID] = 0
			default:
				streaks[workerID]++
				if streaks[workerID] >= count {
					return ErrWorkerShutdown
				}
			}
			return err
		}
	}
}
