package workers

import (
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time view of pool counters.
type Snapshot struct {
	WorkersActive   int64         `json:"workers_active"`
	WorkerPanics    int64         `json:"worker_panics"`
	JobsCheckedOut  int64         `json:"jobs_checked_out"`
	JobsCompleted   int64         `json:"jobs_completed"`
	JobsFailed      int64         `json:"jobs_failed"`
	CheckoutErrors  int64         `json:"checkout_errors"`
	RetryAttempts   int64         `json:"retry_attempts"`
	TotalDuration   time.Duration `json:"total_duration_ms"`
	AverageDuration time.Duration `json:"average_duration_ms"`
	CollectedAt     time.Time     `json:"collected_at"`
}

// counters tracks pool activity with atomics so workers never contend.
type counters struct {
	workersActive  atomic.Int64
	workerPanics   atomic.Int64
	jobsCheckedOut atomic.Int64
	jobsCompleted  atomic.Int64
	jobsFailed     atomic.Int64
	checkoutErrors atomic.Int64
	retryAttempts  atomic.Int64
	totalDurationN atomic.Int64
}

func (c *counters) recordDuration(d time.Duration) {
	c.totalDurationN.Add(int64(d))
}

func (c *counters) snapshot() Snapshot {
	s := Snapshot{
		WorkersActive:  c.workersActive.Load(),
		WorkerPanics:   c.workerPanics.Load(),
		JobsCheckedOut: c.jobsCheckedOut.Load(),
		JobsCompleted:  c.jobsCompleted.Load(),
		JobsFailed:     c.jobsFailed.Load(),
		CheckoutErrors: c.checkoutErrors.Load(),
		RetryAttempts:  c.retryAttempts.Load(),
		TotalDuration:  time.Duration(c.totalDurationN.Load()),
		CollectedAt:    time.Now().UTC(),
	}
	if settled := s.JobsCompleted + s.JobsFailed; settled > 0 {
		s.AverageDuration = s.TotalDuration / time.Duration(settled)
	}
	return s
}
