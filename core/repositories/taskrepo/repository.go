package taskrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/sdk/logger"
)

// Set of error values for CRUD operations on the task resource.
var (
	ErrNotFound      = errors.New("task not found")
	ErrConflict      = errors.New("task was modified concurrently")
	ErrTitleRequired = errors.New("task title is required")
	ErrNoAssignees   = errors.New("task requires at least one assignee")
)

type Storer interface {
	Create(ctx context.Context, task Task) (Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetByID(ctx context.Context, taskID string) (Task, error)
	Update(ctx context.Context, task Task, expectedUpdatedAt time.Time) (Task, error)
	Delete(ctx context.Context, taskID string) error
	Summaries(ctx context.Context, filter TaskFilter) ([]taskengine.TaskSummary, error)
	Recent(ctx context.Context, filter TaskFilter, limit int) ([]Task, error)
	OverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]Task, error)
	MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) error
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

// Create inserts a new task. Status always starts at Pending; a fully
// checked checklist on creation does not promote the task.
func (r *Repository) Create(ctx context.Context, nt NewTask) (Task, error) {
	if nt.Title == "" {
		return Task{}, ErrTitleRequired
	}
	if len(nt.AssignedTo) == 0 {
		return Task{}, ErrNoAssignees
	}

	priority := nt.Priority
	if priority == "" {
		priority = taskengine.PriorityMedium
	}
	if _, err := taskengine.ParsePriority(string(priority)); err != nil {
		return Task{}, err
	}

	checklist, _, err := taskengine.ApplyChecklist(nil, nt.Checklist)
	if err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	task := Task{
		TaskID:      uuid.NewString(),
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    priority,
		Status:      taskengine.StatusPending,
		DueDate:     nt.DueDate,
		AssignedTo:  nt.AssignedTo,
		Checklist:   checklist,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := r.storer.Create(ctx, task)
	if err != nil {
		return Task{}, fmt.Errorf("task repository create: %w", err)
	}

	r.log.InfoContext(ctx, "task created", "task_id", created.TaskID)
	return created, nil
}

func (r *Repository) List(ctx context.Context, filter TaskFilter) ([]Task, error) {
	records, err := r.storer.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("task repository list: %w", err)
	}
	return records, nil
}

func (r *Repository) GetByID(ctx context.Context, taskID string) (Task, error) {
	record, err := r.storer.GetByID(ctx, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository get by id: %w", err)
	}
	return record, nil
}

// Update applies a partial update. A checklist in the update is applied
// wholesale and may demote the status, never promote it. Changing the due
// date resets the overdue notification marker so the sweep can fire again.
func (r *Repository) Update(ctx context.Context, taskID string, ut UpdateTask) (Task, error) {
	current, err := r.storer.GetByID(ctx, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository update: %w", err)
	}
	if staleToken(current.UpdatedAt, ut.ExpectedUpdatedAt) {
		return Task{}, ErrConflict
	}

	updated := current

	if ut.Title != nil {
		if *ut.Title == "" {
			return Task{}, ErrTitleRequired
		}
		updated.Title = *ut.Title
	}
	if ut.Description != nil {
		updated.Description = *ut.Description
	}
	if ut.Priority != nil {
		if _, err := taskengine.ParsePriority(string(*ut.Priority)); err != nil {
			return Task{}, err
		}
		updated.Priority = *ut.Priority
	}
	if ut.DueDate != nil || ut.ClearDue {
		updated.DueDate = ut.DueDate
		updated.OverdueNotifiedAt = nil
	}
	if ut.AssignedTo != nil {
		if len(ut.AssignedTo) == 0 {
			return Task{}, ErrNoAssignees
		}
		updated.AssignedTo = ut.AssignedTo
	}
	if ut.Checklist != nil {
		checklist, progress, err := taskengine.ApplyChecklist(current.Checklist, ut.Checklist)
		if err != nil {
			return Task{}, err
		}
		updated.Checklist = checklist
		updated.Status = taskengine.ReconcileStatus(current.Status, progress)
	}

	return r.save(ctx, updated, current.UpdatedAt)
}

// UpdateStatus moves a task through its status lifecycle. Entering
// Completed requires every checklist item to be checked.
func (r *Repository) UpdateStatus(ctx context.Context, taskID string, status taskengine.Status, expectedUpdatedAt *time.Time) (Task, error) {
	current, err := r.storer.GetByID(ctx, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository update status: %w", err)
	}
	if staleToken(current.UpdatedAt, expectedUpdatedAt) {
		return Task{}, ErrConflict
	}

	progress := taskengine.ComputeProgress(current.Checklist)
	if err := taskengine.CheckTransition(status, progress); err != nil {
		return Task{}, err
	}

	updated := current
	updated.Status = status
	if status == taskengine.StatusCompleted {
		updated.OverdueNotifiedAt = nil
	}

	return r.save(ctx, updated, current.UpdatedAt)
}

// UpdateChecklist replaces the checklist wholesale and reconciles the
// status against the new completion ratio.
func (r *Repository) UpdateChecklist(ctx context.Context, taskID string, incoming []taskengine.ChecklistItem, expectedUpdatedAt *time.Time) (Task, error) {
	current, err := r.storer.GetByID(ctx, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository update checklist: %w", err)
	}
	if staleToken(current.UpdatedAt, expectedUpdatedAt) {
		return Task{}, ErrConflict
	}

	checklist, progress, err := taskengine.ApplyChecklist(current.Checklist, incoming)
	if err != nil {
		return Task{}, err
	}

	updated := current
	updated.Checklist = checklist
	updated.Status = taskengine.ReconcileStatus(current.Status, progress)

	return r.save(ctx, updated, current.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, taskID string) error {
	if err := r.storer.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("task repository delete: %w", err)
	}
	r.log.InfoContext(ctx, "task deleted", "task_id", taskID)
	return nil
}

// Dashboard aggregates the tasks matching the filter into statistics and
// chart buckets, plus the most recently created tasks. Callers scope the
// result by passing an assignee in the filter; an empty filter covers the
// whole board.
func (r *Repository) Dashboard(ctx context.Context, filter TaskFilter, now time.Time, recentLimit int) (DashboardData, error) {
	summaries, err := r.storer.Summaries(ctx, filter)
	if err != nil {
		return DashboardData{}, fmt.Errorf("task repository dashboard summaries: %w", err)
	}

	recent, err := r.storer.Recent(ctx, filter, recentLimit)
	if err != nil {
		return DashboardData{}, fmt.Errorf("task repository dashboard recent: %w", err)
	}

	return DashboardData{
		DashboardReport: taskengine.Aggregate(summaries, now),
		RecentTasks:     recent,
	}, nil
}

// OverdueUnnotified returns open tasks past their due date that have not
// had an overdue reminder recorded yet.
func (r *Repository) OverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	records, err := r.storer.OverdueUnnotified(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("task repository overdue unnotified: %w", err)
	}
	return records, nil
}

func (r *Repository) MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) error {
	if err := r.storer.MarkOverdueNotified(ctx, taskID, at); err != nil {
		return fmt.Errorf("task repository mark overdue notified: %w", err)
	}
	return nil
}

// staleToken reports whether an optimistic-concurrency token no longer
// matches the stored row. Tokens round-trip through RFC3339 on the wire,
// so the comparison drops sub-second precision.
func staleToken(current time.Time, expected *time.Time) bool {
	if expected == nil {
		return false
	}
	return !current.Truncate(time.Second).Equal(expected.Truncate(time.Second))
}

// save persists a modified task conditionally on the row still carrying
// the updated_at value we read. A miss is reported as a conflict when the
// row still exists and as not found when it does not.
func (r *Repository) save(ctx context.Context, task Task, expectedUpdatedAt time.Time) (Task, error) {
	task.UpdatedAt = time.Now().UTC()

	saved, err := r.storer.Update(ctx, task, expectedUpdatedAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.storer.GetByID(ctx, task.TaskID); getErr == nil {
				return Task{}, ErrConflict
			}
			return Task{}, fmt.Errorf("task repository save: %w", err)
		}
		return Task{}, fmt.Errorf("task repository save: %w", err)
	}
	return saved, nil
}
