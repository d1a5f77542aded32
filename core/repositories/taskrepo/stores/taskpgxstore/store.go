// Package taskpgxstore implements the task Storer against PostgreSQL.
package taskpgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/infrastructure/postgresdb"
	"github.com/jrazmi/taskhub/sdk/logger"
)

const taskColumns = `task_id, title, description, priority, status, due_date,
	assigned_to, checklist, overdue_notified_at, created_at, updated_at`

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, task taskrepo.Task) (taskrepo.Task, error) {
	query := `INSERT INTO tasks
			(task_id, title, description, priority, status, due_date,
			assigned_to, checklist, created_at, updated_at)
		VALUES
			(@task_id, @title, @description, @priority, @status, @due_date,
			@assigned_to, @checklist, @created_at, @updated_at)
		RETURNING ` + taskColumns

	args := pgx.NamedArgs{
		"task_id":     task.TaskID,
		"title":       task.Title,
		"description": task.Description,
		"priority":    task.Priority,
		"status":      task.Status,
		"due_date":    task.DueDate,
		"assigned_to": task.AssignedTo,
		"checklist":   task.Checklist,
		"created_at":  task.CreatedAt,
		"updated_at":  task.UpdatedAt,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}

	return created, nil
}

func (s *Store) List(ctx context.Context, filter taskrepo.TaskFilter) ([]taskrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE (@assigned_to::text IS NULL OR @assigned_to = ANY(assigned_to))
		  AND (@status::text IS NULL OR status = @status)
		ORDER BY created_at DESC, task_id ASC`

	rows, err := s.pool.Query(ctx, query, filterArgs(filter))
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) GetByID(ctx context.Context, taskID string) (taskrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE task_id = @task_id`

	args := pgx.NamedArgs{"task_id": taskID}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	task, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taskrepo.Task{}, fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
		}
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}

	return task, nil
}

// Update rewrites the row only when updated_at still matches the value the
// caller read, which is how concurrent writers are detected.
func (s *Store) Update(ctx context.Context, task taskrepo.Task, expectedUpdatedAt time.Time) (taskrepo.Task, error) {
	query := `UPDATE tasks SET
			title = @title,
			description = @description,
			priority = @priority,
			status = @status,
			due_date = @due_date,
			assigned_to = @assigned_to,
			checklist = @checklist,
			overdue_notified_at = @overdue_notified_at,
			updated_at = @updated_at
		WHERE task_id = @task_id
		  AND updated_at = @expected_updated_at
		RETURNING ` + taskColumns

	args := pgx.NamedArgs{
		"task_id":             task.TaskID,
		"title":               task.Title,
		"description":         task.Description,
		"priority":            task.Priority,
		"status":              task.Status,
		"due_date":            task.DueDate,
		"assigned_to":         task.AssignedTo,
		"checklist":           task.Checklist,
		"overdue_notified_at": task.OverdueNotifiedAt,
		"updated_at":          task.UpdatedAt,
		"expected_updated_at": expectedUpdatedAt,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taskrepo.Task{}, fmt.Errorf("task %s: %w", task.TaskID, taskrepo.ErrNotFound)
		}
		return taskrepo.Task{}, postgresdb.HandlePgError(err)
	}

	return updated, nil
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	query := `DELETE FROM tasks WHERE task_id = @task_id`

	args := pgx.NamedArgs{"task_id": taskID}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return postgresdb.HandlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
	}

	return nil
}

// Summaries fetches only the columns aggregation needs, keeping dashboard
// queries cheap on wide rows.
func (s *Store) Summaries(ctx context.Context, filter taskrepo.TaskFilter) ([]taskengine.TaskSummary, error) {
	query := `SELECT status, priority, due_date
		FROM tasks
		WHERE (@assigned_to::text IS NULL OR @assigned_to = ANY(assigned_to))
		  AND (@status::text IS NULL OR status = @status)`

	rows, err := s.pool.Query(ctx, query, filterArgs(filter))
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskengine.TaskSummary])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) Recent(ctx context.Context, filter taskrepo.TaskFilter, limit int) ([]taskrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE (@assigned_to::text IS NULL OR @assigned_to = ANY(assigned_to))
		  AND (@status::text IS NULL OR status = @status)
		ORDER BY created_at DESC, task_id ASC
		LIMIT @row_limit`

	args := filterArgs(filter)
	args["row_limit"] = limit

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) OverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]taskrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date < @now
		  AND status <> @completed
		  AND overdue_notified_at IS NULL
		ORDER BY due_date ASC
		LIMIT @row_limit`

	args := pgx.NamedArgs{
		"now":       now,
		"completed": taskengine.StatusCompleted,
		"row_limit": limit,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskrepo.Task])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) error {
	query := `UPDATE tasks
		SET overdue_notified_at = @at
		WHERE task_id = @task_id`

	args := pgx.NamedArgs{
		"task_id": taskID,
		"at":      at,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return postgresdb.HandlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
	}

	return nil
}

func filterArgs(filter taskrepo.TaskFilter) pgx.NamedArgs {
	return pgx.NamedArgs{
		"assigned_to": filter.AssignedTo,
		"status":      filter.Status,
	}
}
