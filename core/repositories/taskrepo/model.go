package taskrepo

import (
	"time"

	"github.com/jrazmi/taskhub/core/taskengine"
)

// Task is the storage representation of a task. Progress is not stored;
// it is derived from the checklist wherever it is needed.
type Task struct {
	TaskID            string                     `db:"task_id"`
	Title             string                     `db:"title"`
	Description       string                     `db:"description"`
	Priority          taskengine.Priority        `db:"priority"`
	Status            taskengine.Status          `db:"status"`
	DueDate           *time.Time                 `db:"due_date"`
	AssignedTo        []string                   `db:"assigned_to"`
	Checklist         []taskengine.ChecklistItem `db:"checklist"`
	OverdueNotifiedAt *time.Time                 `db:"overdue_notified_at"`
	CreatedAt         time.Time                  `db:"created_at"`
	UpdatedAt         time.Time                  `db:"updated_at"`
}

// NewTask carries the caller-supplied fields for task creation.
type NewTask struct {
	Title       string
	Description string
	Priority    taskengine.Priority
	DueDate     *time.Time
	AssignedTo  []string
	Checklist   []taskengine.ChecklistItem
}

// UpdateTask carries a partial update. Nil fields are left unchanged.
// Status is deliberately absent; it only moves through UpdateStatus or
// checklist reconciliation.
type UpdateTask struct {
	Title       *string
	Description *string
	Priority    *taskengine.Priority
	DueDate     *time.Time
	ClearDue    bool
	AssignedTo  []string
	Checklist   []taskengine.ChecklistItem

	// ExpectedUpdatedAt, when set, makes the update conditional on the
	// row not having changed since that timestamp.
	ExpectedUpdatedAt *time.Time
}

// TaskFilter narrows List, Summaries and Recent. Scoping by assignee is
// the caller's choice; a nil filter field means no restriction.
type TaskFilter struct {
	AssignedTo *string
	Status     *taskengine.Status
}

// DashboardData is the aggregation payload served to dashboards.
type DashboardData struct {
	taskengine.DashboardReport
	RecentTasks []Task `json:"recentTasks"`
}
