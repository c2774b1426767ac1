package record

import (
	"encoding/json"
	"strings"
	"time"
)

// Draft is the body of a create request. Fields the kind does not use are ignored.
type Draft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	Status      Status   `json:"status"`
	IsPinned    bool     `json:"isPinned"`
	Priority    Priority `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags"`
}

// Patch is the body of an update request. Nil fields are left unchanged.
type Patch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	URL         *string          `json:"url"`
	Category    *string          `json:"category"`
	Status      *Status          `json:"status"`
	IsPinned    *bool            `json:"isPinned"`
	Priority    *Priority        `json:"priority"`
	DueDate     Nullable[string] `json:"dueDate"`
	Tags        *[]string        `json:"tags"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.URL == nil &&
		p.Category == nil && p.Status == nil && p.IsPinned == nil &&
		p.Priority == nil && !p.DueDate.Set && p.Tags == nil
}

// Nullable distinguishes an absent JSON field (Set false) from an explicit
// null (Set true, Value nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a set Nullable holding null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON is only called for fields present in the input.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// New builds a record of the given kind from a validated draft.
// Unset envelope fields take the kind's defaults.
func New(spec Spec, d Draft, id string, now time.Time) Record {
	r := Record{
		Kind:        spec.Kind,
		ID:          id,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Category:    strings.TrimSpace(d.Category),
		Status:      d.Status,
		IsPinned:    d.IsPinned,
		Tags:        CleanTags(d.Tags),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	if spec.RequiresURL {
		r.URL = strings.TrimSpace(d.URL)
	}
	if spec.Scheduled {
		r.Priority = d.Priority
		if r.Priority == "" {
			r.Priority = DefaultPriority
		}
		r.DueDate = cleanDueDate(d.DueDate)
	}
	return r
}

// Apply merges p into r. id and createdAt never change; updatedAt is set to
// now, or kept when the clock has gone backwards.
func (r *Record) Apply(spec Spec, p Patch, now time.Time) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.URL != nil && spec.RequiresURL {
		r.URL = strings.TrimSpace(*p.URL)
	}
	if p.Category != nil {
		r.Category = strings.TrimSpace(*p.Category)
		if r.Category == "" {
			r.Category = DefaultCategory
		}
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.IsPinned != nil {
		r.IsPinned = *p.IsPinned
	}
	if spec.Scheduled {
		if p.Priority != nil {
			r.Priority = *p.Priority
		}
		if p.DueDate.Set {
			r.DueDate = cleanDueDate(p.DueDate.Value)
		}
	}
	if p.Tags != nil {
		r.Tags = CleanTags(*p.Tags)
		if r.Tags == nil {
			r.Tags = []string{}
		}
	}
	now = now.UTC()
	if now.After(r.UpdatedAt) {
		r.UpdatedAt = now
	}
}

// cleanDueDate maps an empty or blank due date to null.
func cleanDueDate(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}
