package taskengine

import (
	"fmt"
	"strings"
)

// ChecklistItem is a single entry of a task checklist. Order is meaningful
// and preserved across saves; items are never deduplicated.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Progress is the completion state of a checklist.
type Progress struct {
	CompletedCount int
	TotalCount     int
	Ratio          float64
}

// Complete reports whether the checklist is satisfied for the purpose of the
// status guard. An empty checklist counts as satisfied: a task with no
// checklist can be marked Completed directly.
func (p Progress) Complete() bool {
	return p.TotalCount == 0 || p.CompletedCount == p.TotalCount
}

// ComputeProgress computes the completion ratio of a checklist. The ratio is
// 0 when the checklist is empty.
func ComputeProgress(items []ChecklistItem) Progress {
	p := Progress{TotalCount: len(items)}
	for _, item := range items {
		if item.Completed {
			p.CompletedCount++
		}
	}
	if p.TotalCount > 0 {
		p.Ratio = float64(p.CompletedCount) / float64(p.TotalCount)
	}
	return p
}

// ValidateChecklist rejects newly added items with empty text. An item is
// considered newly added when it has no stored counterpart at its position.
// Existing items are guaranteed non-empty by the same check at their own add
// time, so any empty text beyond the stored prefix is a client error.
func ValidateChecklist(stored, incoming []ChecklistItem) error {
	for i, item := range incoming {
		if strings.TrimSpace(item.Text) != "" {
			continue
		}
		if i < len(stored) {
			// Toggle of an existing item: the text never changes, so an
			// empty text here inherits the stored one. See ApplyChecklist.
			continue
		}
		return fmt.Errorf("checklist item %d: %w", i, ErrEmptyText)
	}
	return nil
}

// ApplyChecklist produces the checklist that replaces the stored one
// (last-write-wins at whole-list granularity, no per-item merge) and the
// recomputed progress. It does not touch status; reconciliation is the
// transition guard's job so the two operations stay independently callable.
func ApplyChecklist(stored, incoming []ChecklistItem) ([]ChecklistItem, Progress, error) {
	if err := ValidateChecklist(stored, incoming); err != nil {
		return nil, Progress{}, err
	}

	applied := make([]ChecklistItem, len(incoming))
	for i, item := range incoming {
		applied[i] = item
		if strings.TrimSpace(item.Text) == "" && i < len(stored) {
			applied[i].Text = stored[i].Text
		}
	}

	return applied, ComputeProgress(applied), nil
}
