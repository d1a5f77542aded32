// Package taskengine holds the task lifecycle rules: checklist progress,
// the status transition guard, the overdue predicate, and the dashboard
// aggregation. Everything here is pure computation over task state; storage
// and transport live elsewhere.
package taskengine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrChecklistIncomplete = errors.New("checklist incomplete")
	ErrEmptyText           = errors.New("checklist item text is empty")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// ParseStatus validates a wire value against the known statuses.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) String() string {
	return string(s)
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority validates a wire value against the known priorities.
func ParsePriority(p string) (Priority, error) {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(p), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, p)
}

func (p Priority) String() string {
	return string(p)
}
