// Package overduescan implements the overdue reminder sweep. Workers
// check out open tasks that slipped past their due date and have not been
// flagged yet, emit a reminder, and record the notification so one task
// never produces two reminders. Editing the due date clears the record,
// which re-arms the task for the next sweep.
package overduescan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/infrastructure/workers"
	"github.com/jrazmi/taskhub/sdk/logger"
)

// Job is one overdue task to remind about.
type Job struct {
	Task taskrepo.Task
}

func (j Job) JobID() string {
	return j.Task.TaskID
}

// Notifier delivers an overdue reminder. The default implementation just
// logs; a mail or chat integration satisfies the same interface.
type Notifier interface {
	NotifyOverdue(ctx context.Context, task taskrepo.Task) error
}

// TaskSource is the slice of the task repository the sweep needs.
type TaskSource interface {
	OverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]taskrepo.Task, error)
	MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) error
}

// Processor feeds overdue tasks to a worker pool. It batches checkouts so
// each sweep costs one query, and tracks in-flight task IDs so concurrent
// workers never pick up the same task twice.
type Processor struct {
	log      *logger.Logger
	source   TaskSource
	notifier Notifier
	batch    int
	now      func() time.Time

	mu       sync.Mutex
	queue    []taskrepo.Task
	inFlight map[string]struct{}
}

func NewProcessor(log *logger.Logger, source TaskSource, notifier Notifier) *Processor {
	return &Processor{
		log:      log,
		source:   source,
		notifier: notifier,
		batch:    50,
		now:      time.Now,
		inFlight: map[string]struct{}{},
	}
}

func (p *Processor) Checkout(ctx context.Context, workerID string) (Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		tasks, err := p.source.OverdueUnnotified(ctx, p.now().UTC(), p.batch)
		if err != nil {
			return Job{}, fmt.Errorf("fetching overdue tasks: %w", err)
		}
		for _, task := range tasks {
			if _, busy := p.inFlight[task.TaskID]; !busy {
				p.queue = append(p.queue, task)
			}
		}
	}

	if len(p.queue) == 0 {
		return Job{}, workers.ErrNoWorkAvailable
	}

	task := p.queue[0]
	p.queue = p.queue[1:]
	p.inFlight[task.TaskID] = struct{}{}

	return Job{Task: task}, nil
}

func (p *Processor) Process(ctx context.Context, job Job) (Job, error) {
	if err := p.notifier.NotifyOverdue(ctx, job.Task); err != nil {
		return job, fmt.Errorf("notifying overdue task: %w", err)
	}
	return job, nil
}

func (p *Processor) Complete(ctx context.Context, job Job, elapsedMS int) error {
	defer p.release(job.Task.TaskID)

	if err := p.source.MarkOverdueNotified(ctx, job.Task.TaskID, p.now().UTC()); err != nil {
		return fmt.Errorf("marking task notified: %w", err)
	}
	return nil
}

func (p *Processor) Fail(ctx context.Context, job Job, err error) error {
	p.release(job.Task.TaskID)

	// Leave the notification record untouched so the next sweep retries.
	p.log.ErrorContext(ctx, "overdue reminder failed",
		"task_id", job.Task.TaskID,
		"error", err,
	)
	return nil
}

func (p *Processor) release(taskID string) {
	p.mu.Lock()
	delete(p.inFlight, taskID)
	p.mu.Unlock()
}

// LogNotifier reports overdue tasks through the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOverdue(ctx context.Context, task taskrepo.Task) error {
	n.log.InfoContext(ctx, "task overdue",
		"task_id", task.TaskID,
		"title", task.Title,
		"due_date", task.DueDate,
		"assigned_to", task.AssignedTo,
	)
	return nil
}
