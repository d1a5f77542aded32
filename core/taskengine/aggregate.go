package taskengine

import "time"

// TaskSummary carries the fields of a task that aggregation reads. The
// caller decides the scope; the engine is scope-agnostic so one algorithm
// serves both the admin and the per-user dashboard.
type TaskSummary struct {
	Status   Status     `db:"status"`
	Priority Priority   `db:"priority"`
	DueDate  *time.Time `db:"due_date"`
}

// Statistics are the dashboard counters.
type Statistics struct {
	TotalTasks      int `json:"totalTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
	OverdueTasks    int `json:"overdueTasks"`
}

// StatusDistribution is the by-status chart bucket. Fixed fields rather than
// a map so every key is always present, zero-valued when empty; the chart
// renderer relies on that.
type StatusDistribution struct {
	Pending    int `json:"Pending"`
	InProgress int `json:"InProgress"`
	Completed  int `json:"Completed"`
}

// PriorityLevels is the by-priority chart bucket.
type PriorityLevels struct {
	Low    int `json:"Low"`
	Medium int `json:"Medium"`
	High   int `json:"High"`
}

// Charts groups the two chart buckets.
type Charts struct {
	TaskDistribution   StatusDistribution `json:"taskDistribution"`
	TaskPriorityLevels PriorityLevels     `json:"taskPriorityLevels"`
}

// DashboardReport is the statistics-plus-charts structure returned to either
// dashboard view.
type DashboardReport struct {
	Statistics Statistics `json:"statistics"`
	Charts     Charts     `json:"charts"`
}

// Aggregate produces the dashboard report for a scoped set of tasks in a
// single pass. The result depends only on the multiset of task states and
// now; input ordering is irrelevant.
func Aggregate(tasks []TaskSummary, now time.Time) DashboardReport {
	var report DashboardReport
	report.Statistics.TotalTasks = len(tasks)

	for _, t := range tasks {
		switch t.Status {
		case StatusPending:
			report.Statistics.PendingTasks++
			report.Charts.TaskDistribution.Pending++
		case StatusInProgress:
			report.Statistics.InProgressTasks++
			report.Charts.TaskDistribution.InProgress++
		case StatusCompleted:
			report.Statistics.CompletedTasks++
			report.Charts.TaskDistribution.Completed++
		}

		switch t.Priority {
		case PriorityLow:
			report.Charts.TaskPriorityLevels.Low++
		case PriorityMedium:
			report.Charts.TaskPriorityLevels.Medium++
		case PriorityHigh:
			report.Charts.TaskPriorityLevels.High++
		}

		if IsOverdue(t.DueDate, t.Status, now) {
			report.Statistics.OverdueTasks++
		}
	}

	return report
}
