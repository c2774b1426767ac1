package record

import "time"

// Backfill repairs a stored record that predates the current envelope:
// missing id, timestamps, category, status or priority. It reports whether
// anything changed so callers can persist the repair once.
func Backfill(spec Spec, r *Record, now time.Time) bool {
	r.Kind = spec.Kind
	changed := false

	if r.ID == "" {
		r.ID = NewID()
		changed = true
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
		changed = true
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
		changed = true
	}
	if r.Category == "" {
		r.Category = DefaultCategory
		changed = true
	}
	if r.Status == "" {
		r.Status = DefaultStatus
		changed = true
	}
	if spec.Scheduled && r.Priority == "" {
		r.Priority = DefaultPriority
		changed = true
	}
	return changed
}
