package taskengine

import "fmt"

// CheckTransition reports whether a task may move to the given status. Any
// transition between the three states is permitted except entering Completed
// while the checklist is incomplete. Leaving Completed is always permitted
// and never touches checklist flags.
func CheckTransition(to Status, p Progress) error {
	if to == StatusCompleted && !p.Complete() {
		return fmt.Errorf("cannot complete task: %w", ErrChecklistIncomplete)
	}
	return nil
}

// ReconcileStatus demotes a Completed task whose checklist has dropped below
// full: to InProgress when some items remain complete, to Pending when none
// do. The rule is deliberately asymmetric; raising progress to full never
// auto-promotes, because checklist completion and status marking are separate
// user actions.
func ReconcileStatus(current Status, p Progress) Status {
	if current != StatusCompleted || p.Complete() {
		return current
	}
	if p.CompletedCount > 0 {
		return StatusInProgress
	}
	return StatusPending
}
