// app/tooling/commands/seed.go
package commands

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/taskengine"
)

// Seed loads a small set of development users and tasks into the database.
// It is idempotent: existing rows with the same ids are left untouched.
func Seed(ctx context.Context, log *slog.Logger, args []string, pool *pgxpool.Pool) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	reset := fs.Bool("reset", false, "Delete existing users and tasks before seeding")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	log.InfoContext(ctx, "seed started", "reset", *reset)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if *reset {
		if _, err := tx.Exec(ctx, "DELETE FROM tasks"); err != nil {
			return fmt.Errorf("reset tasks: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM users"); err != nil {
			return fmt.Errorf("reset users: %w", err)
		}
	}

	if err := seedUsers(ctx, tx); err != nil {
		return err
	}

	if err := seedTasks(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.InfoContext(ctx, "seed completed", "users", len(seedUserRows), "tasks", len(seedTaskRows))
	return nil
}

type seedUser struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

var seedUserRows = []seedUser{
	{UserID: "admin-1", Name: "Avery Admin", Email: "avery@taskhub.local", Role: "admin"},
	{UserID: "member-1", Name: "Mia Member", Email: "mia@taskhub.local", Role: "member"},
	{UserID: "member-2", Name: "Noah Member", Email: "noah@taskhub.local", Role: "member"},
}

func seedUsers(ctx context.Context, tx pgx.Tx) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role)
	VALUES
		(@user_id, @name, @email, @role)
	ON CONFLICT (user_id) DO NOTHING`

	for _, u := range seedUserRows {
		args := pgx.NamedArgs{
			"user_id": u.UserID,
			"name":    u.Name,
			"email":   u.Email,
			"role":    u.Role,
		}
		if _, err := tx.Exec(ctx, q, args); err != nil {
			return fmt.Errorf("seed user %s: %w", u.UserID, err)
		}
	}
	return nil
}

type seedTask struct {
	Task       taskrepo.Task
	DueInDays  int
	HasDueDate bool
}

var seedTaskRows = []seedTask{
	{
		Task: taskrepo.Task{
			TaskID:      "seed-task-1",
			Title:       "Prepare onboarding checklist",
			Description: "Collect the documents every new teammate needs.",
			Priority:    taskengine.PriorityHigh,
			Status:      taskengine.StatusInProgress,
			AssignedTo:  []string{"member-1"},
			Checklist: []taskengine.ChecklistItem{
				{Text: "Draft document list", Completed: true},
				{Text: "Review with the team", Completed: false},
			},
		},
		DueInDays:  3,
		HasDueDate: true,
	},
	{
		Task: taskrepo.Task{
			TaskID:      "seed-task-2",
			Title:       "Rotate API credentials",
			Description: "Quarterly credential rotation for the staging stack.",
			Priority:    taskengine.PriorityMedium,
			Status:      taskengine.StatusPending,
			AssignedTo:  []string{"member-1", "member-2"},
			Checklist:   []taskengine.ChecklistItem{},
		},
		DueInDays:  -2,
		HasDueDate: true,
	},
	{
		Task: taskrepo.Task{
			TaskID:      "seed-task-3",
			Title:       "Archive retired dashboards",
			Description: "",
			Priority:    taskengine.PriorityLow,
			Status:      taskengine.StatusCompleted,
			AssignedTo:  []string{"member-2"},
			Checklist: []taskengine.ChecklistItem{
				{Text: "Export final snapshots", Completed: true},
			},
		},
		HasDueDate: false,
	},
}

func seedTasks(ctx context.Context, tx pgx.Tx) error {
	const q = `
	INSERT INTO tasks
		(task_id, title, description, priority, status, due_date, assigned_to, checklist)
	VALUES
		(@task_id, @title, @description, @priority, @status, @due_date, @assigned_to, @checklist)
	ON CONFLICT (task_id) DO NOTHING`

	now := time.Now().UTC()
	for _, s := range seedTaskRows {
		var due *time.Time
		if s.HasDueDate {
			d := now.AddDate(0, 0, s.DueInDays)
			due = &d
		}
		args := pgx.NamedArgs{
			"task_id":     s.Task.TaskID,
			"title":       s.Task.Title,
			"description": s.Task.Description,
			"priority":    s.Task.Priority,
			"status":      s.Task.Status,
			"due_date":    due,
			"assigned_to": s.Task.AssignedTo,
			"checklist":   s.Task.Checklist,
		}
		if _, err := tx.Exec(ctx, q, args); err != nil {
			return fmt.Errorf("seed task %s: %w", s.Task.TaskID, err)
		}
	}
	return nil
}
