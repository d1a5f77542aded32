package taskrepobridge

import (
	"fmt"

	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/sdk/validation"
)

// AppChecklistItem is the wire form of one checklist entry.
type AppChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// AppTask is the wire form of a task. Progress fields are derived from
// the checklist on the way out and never accepted on the way in.
type AppTask struct {
	TaskID             string             `json:"taskId"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Priority           string             `json:"priority"`
	Status             string             `json:"status"`
	DueDate            *string            `json:"dueDate"`
	AssignedTo         []string           `json:"assignedTo"`
	TodoChecklist      []AppChecklistItem `json:"todoChecklist"`
	Progress           float64            `json:"progress"`
	CompletedTodoCount int                `json:"completedTodoCount"`
	IsOverdue          bool               `json:"isOverdue"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

// AppTaskList is the envelope for the task list endpoint.
type AppTaskList struct {
	Tasks []AppTask `json:"tasks"`
}

// CreateTaskInput is the request body for task creation.
type CreateTaskInput struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Priority      string             `json:"priority"`
	DueDate       *string            `json:"dueDate"`
	AssignedTo    []string           `json:"assignedTo"`
	TodoChecklist []AppChecklistItem `json:"todoChecklist"`
}

func (i CreateTaskInput) Validate() error {
	if i.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(i.AssignedTo) == 0 {
		return fmt.Errorf("assignedTo must contain at least one user id")
	}
	if i.DueDate != nil {
		if _, err := validation.ParseFlexibleDate(*i.DueDate); err != nil {
			return fmt.Errorf("dueDate: %w", err)
		}
	}
	if i.Priority != "" {
		if _, err := taskengine.ParsePriority(i.Priority); err != nil {
			return fmt.Errorf("priority: %w", err)
		}
	}
	return nil
}

// UpdateTaskInput is the request body for partial task updates. An absent
// or null dueDate leaves the deadline alone; clearing it takes the
// explicit clearDueDate flag, since a pointer field cannot tell JSON null
// and an absent key apart after decoding.
type UpdateTaskInput struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Priority      *string            `json:"priority"`
	DueDate       *string            `json:"dueDate"`
	ClearDueDate  bool               `json:"clearDueDate"`
	AssignedTo    []string           `json:"assignedTo"`
	TodoChecklist []AppChecklistItem `json:"todoChecklist"`
	UpdatedAt     *string            `json:"updatedAt"`
}

func (i UpdateTaskInput) Validate() error {
	if i.Title != nil && *i.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if i.Priority != nil {
		if _, err := taskengine.ParsePriority(*i.Priority); err != nil {
			return fmt.Errorf("priority: %w", err)
		}
	}
	if i.DueDate != nil {
		if _, err := validation.ParseFlexibleDate(*i.DueDate); err != nil {
			return fmt.Errorf("dueDate: %w", err)
		}
	}
	if i.UpdatedAt != nil {
		if _, err := validation.ParseFlexibleDate(*i.UpdatedAt); err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
	}
	return nil
}

// UpdateStatusInput is the request body for status transitions.
type UpdateStatusInput struct {
	Status    string  `json:"status"`
	UpdatedAt *string `json:"updatedAt"`
}

func (i UpdateStatusInput) Validate() error {
	if _, err := taskengine.ParseStatus(i.Status); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if i.UpdatedAt != nil {
		if _, err := validation.ParseFlexibleDate(*i.UpdatedAt); err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
	}
	return nil
}

// UpdateChecklistInput is the request body for checklist replacement.
type UpdateChecklistInput struct {
	TodoChecklist []AppChecklistItem `json:"todoChecklist"`
	UpdatedAt     *string            `json:"updatedAt"`
}

func (i UpdateChecklistInput) Validate() error {
	if i.TodoChecklist == nil {
		return fmt.Errorf("todoChecklist is required")
	}
	if i.UpdatedAt != nil {
		if _, err := validation.ParseFlexibleDate(*i.UpdatedAt); err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
	}
	return nil
}
