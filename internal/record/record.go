package record

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusInactive  Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusInactive:
		return true
	}
	return false
}

// Priority ranks tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Record is a stored sheet, link or task.
// Kind is not serialized; it selects the wire shape and is set on every
// record that leaves the store.
type Record struct {
	Kind Kind

	ID          string
	Name        string
	Description string
	URL         string // sheets and links only
	Category    string
	Status      Status
	IsPinned    bool
	Priority    Priority // tasks only
	DueDate     *string  // tasks only; nil encodes as null
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.DueDate != nil {
		d := *r.DueDate
		out.DueDate = &d
	}
	return out
}

// linkJSON is the wire shape of sheets and links.
type linkJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	IsPinned    bool      `json:"isPinned"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// taskJSON is the wire shape of tasks.
type taskJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     *string   `json:"dueDate"`
	IsPinned    bool      `json:"isPinned"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// wireJSON accepts either shape, plus legacy rows with missing or malformed
// timestamps (left zero for Backfill to repair).
type wireJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	IsPinned    bool     `json:"isPinned"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func (r Record) isTask() bool {
	if r.Kind != "" {
		return r.Kind == KindTasks
	}
	return r.Priority != ""
}

// MarshalJSON encodes r in the shape of its kind.
func (r Record) MarshalJSON() ([]byte, error) {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	if r.isTask() {
		return json.Marshal(taskJSON{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			Status:      r.Status,
			Priority:    r.Priority,
			DueDate:     r.DueDate,
			IsPinned:    r.IsPinned,
			Tags:        tags,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return json.Marshal(linkJSON{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
		Status:      r.Status,
		IsPinned:    r.IsPinned,
		Tags:        tags,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

// UnmarshalJSON decodes either wire shape. Kind is left unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind := r.Kind
	*r = Record{
		Kind:        kind,
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		URL:         w.URL,
		Category:    w.Category,
		Status:      w.Status,
		IsPinned:    w.IsPinned,
		Priority:    w.Priority,
		DueDate:     w.DueDate,
		Tags:        w.Tags,
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
	return nil
}

// parseTime parses RFC 3339 timestamps, with or without zone.
// Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
