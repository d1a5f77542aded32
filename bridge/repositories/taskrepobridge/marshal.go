package taskrepobridge

import (
	"time"

	"github.com/jrazmi/taskhub/core/repositories/taskrepo"
	"github.com/jrazmi/taskhub/core/taskengine"
	"github.com/jrazmi/taskhub/sdk/validation"
)

// MarshalToBridge converts a repository task to its wire form, deriving
// progress and overdue state as of now.
func MarshalToBridge(task taskrepo.Task, now time.Time) AppTask {
	progress := taskengine.ComputeProgress(task.Checklist)

	checklist := make([]AppChecklistItem, len(task.Checklist))
	for i, item := range task.Checklist {
		checklist[i] = AppChecklistItem{
			Text:      item.Text,
			Completed: item.Completed,
		}
	}

	var dueDate *string
	if task.DueDate != nil {
		dueDate = validation.StringPtr(task.DueDate.UTC().Format(time.RFC3339))
	}

	return AppTask{
		TaskID:             task.TaskID,
		Title:              task.Title,
		Description:        task.Description,
		Priority:           string(task.Priority),
		Status:             string(task.Status),
		DueDate:            dueDate,
		AssignedTo:         task.AssignedTo,
		TodoChecklist:      checklist,
		Progress:           progress.Ratio,
		CompletedTodoCount: progress.CompletedCount,
		IsOverdue:          taskengine.IsOverdue(task.DueDate, task.Status, now),
		CreatedAt:          task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// MarshalListToBridge converts a list of repository tasks to wire form.
func MarshalListToBridge(tasks []taskrepo.Task, now time.Time) []AppTask {
	bridgeTasks := make([]AppTask, len(tasks))
	for i, task := range tasks {
		bridgeTasks[i] = MarshalToBridge(task, now)
	}
	return bridgeTasks
}

// MarshalCreateToRepository converts a create body to repository input.
// Validate has already checked the date and priority formats.
func MarshalCreateToRepository(input CreateTaskInput) taskrepo.NewTask {
	var dueDate *time.Time
	if input.DueDate != nil {
		if t, err := validation.ParseFlexibleDate(*input.DueDate); err == nil {
			dueDate = validation.TimePtr(t.UTC())
		}
	}

	return taskrepo.NewTask{
		Title:       input.Title,
		Description: input.Description,
		Priority:    taskengine.Priority(input.Priority),
		DueDate:     dueDate,
		AssignedTo:  input.AssignedTo,
		Checklist:   marshalChecklistToCore(input.TodoChecklist),
	}
}

// MarshalUpdateToRepository converts an update body to repository input.
func MarshalUpdateToRepository(input UpdateTaskInput) taskrepo.UpdateTask {
	ut := taskrepo.UpdateTask{
		Title:             input.Title,
		Description:       input.Description,
		AssignedTo:        input.AssignedTo,
		ClearDue:          input.ClearDueDate,
		ExpectedUpdatedAt: parseToken(input.UpdatedAt),
	}

	if input.Priority != nil {
		p := taskengine.Priority(*input.Priority)
		ut.Priority = &p
	}
	if input.DueDate != nil {
		if t, err := validation.ParseFlexibleDate(*input.DueDate); err == nil {
			ut.DueDate = validation.TimePtr(t.UTC())
		}
	}
	if input.TodoChecklist != nil {
		ut.Checklist = marshalChecklistToCore(input.TodoChecklist)
	}

	return ut
}

func marshalChecklistToCore(items []AppChecklistItem) []taskengine.ChecklistItem {
	if items == nil {
		return nil
	}
	checklist := make([]taskengine.ChecklistItem, len(items))
	for i, item := range items {
		checklist[i] = taskengine.ChecklistItem{
			Text:      item.Text,
			Completed: item.Completed,
		}
	}
	return checklist
}

func parseToken(updatedAt *string) *time.Time {
	if updatedAt == nil {
		return nil
	}
	t, err := validation.ParseFlexibleDate(*updatedAt)
	if err != nil {
		return nil
	}
	return validation.TimePtr(t.UTC())
}
