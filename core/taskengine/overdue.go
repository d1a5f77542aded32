package taskengine

import "time"

// IsOverdue derives the overdue predicate at evaluation time; it is never
// stored. A task with no due date is never overdue. A Completed task is never
// overdue regardless of date, even if it was completed after its due date.
func IsOverdue(dueDate *time.Time, status Status, now time.Time) bool {
	if dueDate == nil {
		return false
	}
	if status == StatusCompleted {
		return false
	}
	return dueDate.Before(now)
}
