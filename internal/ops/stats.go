package ops

import (
	"context"
	"time"

	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// RecentWindow is how far back a record counts as recent activity.
const RecentWindow = 7 * 24 * time.Hour

// StatsOutput contains dashboard counters.
type StatsOutput struct {
	Totals         map[record.Kind]int   `json:"totals"`
	Total          int                   `json:"total"`
	Pinned         int                   `json:"pinned"`
	Categories     map[string]int        `json:"categories"`
	Statuses       map[record.Status]int `json:"statuses"`
	RecentActivity int                   `json:"recentActivity"` // created within RecentWindow
	OverdueTasks   int                   `json:"overdueTasks"`
}

// Stats computes the dashboard's overview counters. Like List it degrades
// unreadable collections to empty.
func Stats(ctx context.Context, backend store.Backend) (*StatsOutput, error) {
	ts := now()
	cutoff := ts.Add(-RecentWindow)
	today := ts.Format(time.DateOnly)

	output := &StatsOutput{
		Totals:     make(map[record.Kind]int),
		Categories: make(map[string]int),
		Statuses:   make(map[record.Status]int),
	}

	for _, spec := range record.Specs() {
		records := loadSoft(ctx, backend, spec)
		output.Totals[spec.Kind] = len(records)
		output.Total += len(records)

		for _, r := range records {
			if r.IsPinned {
				output.Pinned++
			}
			output.Categories[r.Category]++
			output.Statuses[r.Status]++
			if r.CreatedAt.After(cutoff) {
				output.RecentActivity++
			}
			if spec.Scheduled && r.Status != record.StatusCompleted && r.DueDate != nil && isBeforeDay(*r.DueDate, today) {
				output.OverdueTasks++
			}
		}
	}
	return output, nil
}

// isBeforeDay compares a due date against today. Due dates may be plain
// dates or full timestamps; only the date part counts.
func isBeforeDay(due, today string) bool {
	if len(due) < len(time.DateOnly) {
		return false
	}
	day := due[:len(time.DateOnly)]
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return false
	}
	return day < today
}
