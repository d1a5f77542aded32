package taskrepo_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/sdk/logger"
)

// ============================================================================
// Stubbed Storer Implementation
// ============================================================================

type StubStorer struct {
	tasks map[string]taskrepo.Task

	// Override functions - these can be set by tests
	updateFunc    func(ctx context.Context, task taskrepo.Task, expectedUpdatedAt time.Time) (taskrepo.Task, error)
	summariesFunc func(ctx context.Context, filter taskrepo.TaskFilter) ([]taskengine.TaskSummary, error)

	notified map[string]time.Time
}

func NewStubStorer() *StubStorer {
	return &StubStorer{
		tasks:    map[string]taskrepo.Task{},
		notified: map[string]time.Time{},
	}
}

func (s *StubStorer) Create(ctx context.Context, task taskrepo.Task) (taskrepo.Task, error) {
	s.tasks[task.TaskID] = task
	return task, nil
}

func (s *StubStorer) List(ctx context.Context, filter taskrepo.TaskFilter) ([]taskrepo.Task, error) {
	var sl []taskrepo.Task
	for _, task := range s.tasks {
		if matches(task, filter) {
			sl = append(sl, task)
		}
	}
	return sl, nil
}

func (s *StubStorer) GetByID(ctx context.Context, taskID string) (taskrepo.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return taskrepo.Task{}, fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
	}
	return task, nil
}

func (s *StubStorer) Update(ctx context.Context, task taskrepo.Task, expectedUpdatedAt time.Time) (taskrepo.Task, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, task, expectedUpdatedAt)
	}

	current, ok := s.tasks[task.TaskID]
	if !ok || !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return taskrepo.Task{}, fmt.Errorf("task %s: %w", task.TaskID, taskrepo.ErrNotFound)
	}
	s.tasks[task.TaskID] = task
	return task, nil
}

func (s *StubStorer) Delete(ctx context.Context, taskID string) error {
	if _, ok := s.tasks[taskID]; !ok {
		return fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *StubStorer) Summaries(ctx context.Context, filter taskrepo.TaskFilter) ([]taskengine.TaskSummary, error) {
	if s.summariesFunc != nil {
		return s.summariesFunc(ctx, filter)
	}

	var sl []taskengine.TaskSummary
	for _, task := range s.tasks {
		if matches(task, filter) {
			sl = append(sl, taskengine.TaskSummary{
				Status:   task.Status,
				Priority: task.Priority,
				DueDate:  task.DueDate,
			})
		}
	}
	return sl, nil
}

func (s *StubStorer) Recent(ctx context.Context, filter taskrepo.TaskFilter, limit int) ([]taskrepo.Task, error) {
	sl, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(sl) > limit {
		sl = sl[:limit]
	}
	return sl, nil
}

func (s *StubStorer) OverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]taskrepo.Task, error) {
	var sl []taskrepo.Task
	for _, task := range s.tasks {
		if _, seen := s.notified[task.TaskID]; seen {
			continue
		}
		if taskengine.IsOverdue(task.DueDate, task.Status, now) {
			sl = append(sl, task)
		}
		if len(sl) == limit {
			break
		}
	}
	return sl, nil
}

func (s *StubStorer) MarkOverdueNotified(ctx context.Context, taskID string, at time.Time) error {
	if _, ok := s.tasks[taskID]; !ok {
		return fmt.Errorf("task %s: %w", taskID, taskrepo.ErrNotFound)
	}
	s.notified[taskID] = at
	return nil
}

func matches(task taskrepo.Task, filter taskrepo.TaskFilter) bool {
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.AssignedTo != nil {
		found := false
		for _, id := range task.AssignedTo {
			if id == *filter.AssignedTo {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ============================================================================
// Helpers
// ============================================================================

func newTestRepository(storer taskrepo.Storer) *taskrepo.Repository {
	log := logger.NewDefault(logger.WithOutput(io.Discard))
	return taskrepo.NewRepository(log, storer)
}

func seedTask(t *testing.T, repo *taskrepo.Repository, nt taskrepo.NewTask) taskrepo.Task {
	t.Helper()
	task, err := repo.Create(context.Background(), nt)
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}

func strPtr(s string) *string { return &s }

func statusPtr(s taskengine.Status) *taskengine.Status { return &s }

// ============================================================================
// Tests
// ============================================================================

func TestRepository_Create(t *testing.T) {
	repo := newTestRepository(NewStubStorer())
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		task, err := repo.Create(ctx, taskrepo.NewTask{
			Title:      "Ship release notes",
			AssignedTo: []string{"user-1"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if task.TaskID == "" {
			t.Error("expected a generated task ID")
		}
		if task.Status != taskengine.StatusPending {
			t.Errorf("status = %q, want Pending", task.Status)
		}
		if task.Priority != taskengine.PriorityMedium {
			t.Errorf("priority = %q, want Medium", task.Priority)
		}
		if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}
	})

	t.Run("title required", func(t *testing.T) {
		_, err := repo.Create(ctx, taskrepo.NewTask{AssignedTo: []string{"user-1"}})
		if !errors.Is(err, taskrepo.ErrTitleRequired) {
			t.Errorf("err = %v, want ErrTitleRequired", err)
		}
	})

	t.Run("assignees required", func(t *testing.T) {
		_, err := repo.Create(ctx, taskrepo.NewTask{Title: "Orphan"})
		if !errors.Is(err, taskrepo.ErrNoAssignees) {
			t.Errorf("err = %v, want ErrNoAssignees", err)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		_, err := repo.Create(ctx, taskrepo.NewTask{
			Title:      "Bad priority",
			Priority:   taskengine.Priority("Urgent"),
			AssignedTo: []string{"user-1"},
		})
		if !errors.Is(err, taskengine.ErrInvalidPriority) {
			t.Errorf("err = %v, want ErrInvalidPriority", err)
		}
	})

	t.Run("empty checklist item rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, taskrepo.NewTask{
			Title:      "Bad checklist",
			AssignedTo: []string{"user-1"},
			Checklist:  []taskengine.ChecklistItem{{Text: ""}},
		})
		if !errors.Is(err, taskengine.ErrEmptyText) {
			t.Errorf("err = %v, want ErrEmptyText", err)
		}
	})

	t.Run("checked checklist does not promote", func(t *testing.T) {
		task, err := repo.Create(ctx, taskrepo.NewTask{
			Title:      "Already done on paper",
			AssignedTo: []string{"user-1"},
			Checklist:  []taskengine.ChecklistItem{{Text: "only step", Completed: true}},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if task.Status != taskengine.StatusPending {
			t.Errorf("status = %q, want Pending", task.Status)
		}
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial fields", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:       "Draft proposal",
			Description: "first pass",
			AssignedTo:  []string{"user-1"},
		})

		updated, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Title: strPtr("Draft proposal v2"),
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Title != "Draft proposal v2" {
			t.Errorf("title = %q, want updated value", updated.Title)
		}
		if updated.Description != "first pass" {
			t.Errorf("description = %q, want unchanged", updated.Description)
		}
	})

	t.Run("checklist demotes completed task", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Release checklist",
			AssignedTo: []string{"user-1"},
			Checklist:  []taskengine.ChecklistItem{{Text: "tag", Completed: true}, {Text: "announce", Completed: true}},
		})
		task, err := repo.UpdateStatus(ctx, task.TaskID, taskengine.StatusCompleted, nil)
		if err != nil {
			t.Fatalf("promote: %v", err)
		}

		updated, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Checklist: []taskengine.ChecklistItem{{Text: "tag", Completed: true}, {Text: "announce", Completed: false}},
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != taskengine.StatusInProgress {
			t.Errorf("status = %q, want InProgress after unchecking an item", updated.Status)
		}
	})

	t.Run("stale token conflicts", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Contended",
			AssignedTo: []string{"user-1"},
		})

		stale := task.UpdatedAt.Add(-time.Minute)
		_, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Title:             strPtr("second writer"),
			ExpectedUpdatedAt: &stale,
		})
		if !errors.Is(err, taskrepo.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("round-tripped token matches", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Tokened",
			AssignedTo: []string{"user-1"},
		})

		// Clients echo updatedAt as RFC3339, which drops sub-second
		// precision.
		echoed, err := time.Parse(time.RFC3339, task.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			t.Fatalf("parse echoed token: %v", err)
		}
		if _, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Title:             strPtr("first writer"),
			ExpectedUpdatedAt: &echoed,
		}); err != nil {
			t.Errorf("update with echoed token: %v", err)
		}
	})

	t.Run("token granularity is whole seconds", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Skewed",
			AssignedTo: []string{"user-1"},
		})

		// Tokens differing only below one second match; one that is a
		// full second behind does not.
		within := task.UpdatedAt.Truncate(time.Second).Add(400 * time.Millisecond)
		if _, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Title:             strPtr("same second"),
			ExpectedUpdatedAt: &within,
		}); err != nil {
			t.Errorf("update with sub-second skew: %v", err)
		}

		current, err := repo.GetByID(ctx, task.TaskID)
		if err != nil {
			t.Fatalf("reloading task: %v", err)
		}
		behind := current.UpdatedAt.Truncate(time.Second).Add(-time.Second)
		if _, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{
			Title:             strPtr("previous second"),
			ExpectedUpdatedAt: &behind,
		}); !errors.Is(err, taskrepo.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict for a one-second-old token", err)
		}
	})

	t.Run("lost race reported as conflict", func(t *testing.T) {
		storer := NewStubStorer()
		repo := newTestRepository(storer)
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Racy",
			AssignedTo: []string{"user-1"},
		})

		// The conditional write misses but the row still exists, which is
		// what a concurrent writer between read and write looks like.
		storer.updateFunc = func(ctx context.Context, tk taskrepo.Task, expected time.Time) (taskrepo.Task, error) {
			return taskrepo.Task{}, fmt.Errorf("task %s: %w", tk.TaskID, taskrepo.ErrNotFound)
		}
		_, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{Title: strPtr("late")})
		if !errors.Is(err, taskrepo.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("due date change clears overdue marker", func(t *testing.T) {
		storer := NewStubStorer()
		repo := newTestRepository(storer)
		yesterday := time.Now().Add(-24 * time.Hour).UTC()
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Slipped",
			AssignedTo: []string{"user-1"},
			DueDate:    &yesterday,
		})

		// Simulate the reminder sweep having already fired.
		notified := task
		notifiedAt := time.Now().UTC()
		notified.OverdueNotifiedAt = &notifiedAt
		storer.tasks[task.TaskID] = notified

		nextWeek := time.Now().Add(7 * 24 * time.Hour).UTC()
		updated, err := repo.Update(ctx, task.TaskID, taskrepo.UpdateTask{DueDate: &nextWeek})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.OverdueNotifiedAt != nil {
			t.Error("expected overdue marker to be cleared on due date change")
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		_, err := repo.Update(ctx, "missing", taskrepo.UpdateTask{Title: strPtr("x")})
		if !errors.Is(err, taskrepo.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete checklist blocks completion", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Two step",
			AssignedTo: []string{"user-1"},
			Checklist:  []taskengine.ChecklistItem{{Text: "one", Completed: true}, {Text: "two"}},
		})

		_, err := repo.UpdateStatus(ctx, task.TaskID, taskengine.StatusCompleted, nil)
		if !errors.Is(err, taskengine.ErrChecklistIncomplete) {
			t.Fatalf("err = %v, want ErrChecklistIncomplete", err)
		}

		// Checking the remaining item makes the same request succeed.
		if _, err := repo.UpdateChecklist(ctx, task.TaskID, []taskengine.ChecklistItem{
			{Text: "one", Completed: true}, {Text: "two", Completed: true},
		}, nil); err != nil {
			t.Fatalf("update checklist: %v", err)
		}
		updated, err := repo.UpdateStatus(ctx, task.TaskID, taskengine.StatusCompleted, nil)
		if err != nil {
			t.Fatalf("update status: %v", err)
		}
		if updated.Status != taskengine.StatusCompleted {
			t.Errorf("status = %q, want Completed", updated.Status)
		}
	})

	t.Run("empty checklist completes directly", func(t *testing.T) {
		repo := newTestRepository(NewStubStorer())
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "No checklist",
			AssignedTo: []string{"user-1"},
		})

		updated, err := repo.UpdateStatus(ctx, task.TaskID, taskengine.StatusCompleted, nil)
		if err != nil {
			t.Fatalf("update status: %v", err)
		}
		if updated.Status != taskengine.StatusCompleted {
			t.Errorf("status = %q, want Completed", updated.Status)
		}
	})

	t.Run("completion clears overdue marker", func(t *testing.T) {
		storer := NewStubStorer()
		repo := newTestRepository(storer)
		yesterday := time.Now().Add(-24 * time.Hour).UTC()
		task := seedTask(t, repo, taskrepo.NewTask{
			Title:      "Late finish",
			AssignedTo: []string{"user-1"},
			DueDate:    &yesterday,
		})

		notified := task
		notifiedAt := time.Now().UTC()
		notified.OverdueNotifiedAt = &notifiedAt
		storer.tasks[task.TaskID] = notified

		updated, err := repo.UpdateStatus(ctx, task.TaskID, taskengine.StatusCompleted, nil)
		if err != nil {
			t.Fatalf("update status: %v", err)
		}
		if updated.OverdueNotifiedAt != nil {
			t.Error("expected overdue marker to be cleared on completion")
		}
	})
}

func TestRepository_UpdateChecklist(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(NewStubStorer())

	task := seedTask(t, repo, taskrepo.NewTask{
		Title:      "Wholesale",
		AssignedTo: []string{"user-1"},
		Checklist:  []taskengine.ChecklistItem{{Text: "keep"}, {Text: "drop"}},
	})

	// Toggling by position keeps the stored text even when the request
	// sends an empty one.
	updated, err := repo.UpdateChecklist(ctx, task.TaskID, []taskengine.ChecklistItem{
		{Text: "", Completed: true},
	}, nil)
	if err != nil {
		t.Fatalf("update checklist: %v", err)
	}
	if len(updated.Checklist) != 1 {
		t.Fatalf("checklist length = %d, want 1", len(updated.Checklist))
	}
	if updated.Checklist[0].Text != "keep" || !updated.Checklist[0].Completed {
		t.Errorf("checklist[0] = %+v, want kept text and completed", updated.Checklist[0])
	}
	if updated.Status != taskengine.StatusInProgress {
		t.Errorf("status = %q, want InProgress", updated.Status)
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(NewStubStorer())

	task := seedTask(t, repo, taskrepo.NewTask{
		Title:      "Short lived",
		AssignedTo: []string{"user-1"},
	})

	if err := repo.Delete(ctx, task.TaskID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, task.TaskID); !errors.Is(err, taskrepo.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRepository_Dashboard(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(NewStubStorer())
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	seedTask(t, repo, taskrepo.NewTask{
		Title: "For alice", AssignedTo: []string{"alice"}, Priority: taskengine.PriorityLow,
	})
	seedTask(t, repo, taskrepo.NewTask{
		Title: "Shared and late", AssignedTo: []string{"alice", "bob"},
		Priority: taskengine.PriorityHigh, DueDate: &yesterday,
	})
	seedTask(t, repo, taskrepo.NewTask{
		Title: "For bob", AssignedTo: []string{"bob"}, Priority: taskengine.PriorityHigh,
	})

	t.Run("whole board", func(t *testing.T) {
		data, err := repo.Dashboard(ctx, taskrepo.TaskFilter{}, now, 10)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if data.Statistics.TotalTasks != 3 {
			t.Errorf("totalTasks = %d, want 3", data.Statistics.TotalTasks)
		}
		if data.Statistics.OverdueTasks != 1 {
			t.Errorf("overdueTasks = %d, want 1", data.Statistics.OverdueTasks)
		}
		if len(data.RecentTasks) != 3 {
			t.Errorf("recentTasks = %d, want 3", len(data.RecentTasks))
		}
	})

	t.Run("scoped to assignee", func(t *testing.T) {
		data, err := repo.Dashboard(ctx, taskrepo.TaskFilter{AssignedTo: strPtr("alice")}, now, 10)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if data.Statistics.TotalTasks != 2 {
			t.Errorf("totalTasks = %d, want 2", data.Statistics.TotalTasks)
		}
		if data.Charts.TaskPriorityLevels.High != 1 {
			t.Errorf("high priority = %d, want 1", data.Charts.TaskPriorityLevels.High)
		}
	})
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(NewStubStorer())

	first := seedTask(t, repo, taskrepo.NewTask{Title: "A", AssignedTo: []string{"alice"}})
	seedTask(t, repo, taskrepo.NewTask{Title: "B", AssignedTo: []string{"bob"}})
	if _, err := repo.UpdateStatus(ctx, first.TaskID, taskengine.StatusInProgress, nil); err != nil {
		t.Fatalf("update status: %v", err)
	}

	sl, err := repo.List(ctx, taskrepo.TaskFilter{Status: statusPtr(taskengine.StatusInProgress)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sl) != 1 || sl[0].TaskID != first.TaskID {
		t.Errorf("list = %d tasks, want only the in-progress one", len(sl))
	}
}

func TestRepository_OverdueSweepSupport(t *testing.T) {
	ctx := context.Background()
	storer := NewStubStorer()
	repo := newTestRepository(storer)
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	late := seedTask(t, repo, taskrepo.NewTask{
		Title: "Late", AssignedTo: []string{"alice"}, DueDate: &yesterday,
	})
	seedTask(t, repo, taskrepo.NewTask{Title: "On time", AssignedTo: []string{"alice"}})

	sl, err := repo.OverdueUnnotified(ctx, now, 10)
	if err != nil {
		t.Fatalf("overdue unnotified: %v", err)
	}
	if len(sl) != 1 || sl[0].TaskID != late.TaskID {
		t.Fatalf("overdue = %d tasks, want only the late one", len(sl))
	}

	if err := repo.MarkOverdueNotified(ctx, late.TaskID, now); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	sl, err = repo.OverdueUnnotified(ctx, now, 10)
	if err != nil {
		t.Fatalf("overdue unnotified: %v", err)
	}
	if len(sl) != 0 {
		t.Errorf("overdue after notify = %d tasks, want 0", len(sl))
	}
}
