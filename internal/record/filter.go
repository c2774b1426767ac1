package record

import (
	"slices"
	"strings"
)

// CategoryAll disables the category filter, as the dashboard's "all" tab does.
const CategoryAll = "all"

// Filter narrows a collection. Zero fields match everything.
type Filter struct {
	Query    string // case-insensitive substring of name or description
	Category string
	Status   Status
	Pinned   *bool
	Tag      string
}

// IsZero reports whether f matches every record.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.category() == "" &&
		f.Status == "" && f.Pinned == nil && strings.TrimSpace(f.Tag) == ""
}

func (f Filter) category() string {
	c := Normalize(f.Category)
	if c == CategoryAll {
		return ""
	}
	return c
}

// Match reports whether r passes every set criterion.
func (f Filter) Match(r Record) bool {
	if q := Normalize(f.Query); q != "" {
		if !strings.Contains(Normalize(r.Name), q) && !strings.Contains(Normalize(r.Description), q) {
			return false
		}
	}
	if c := f.category(); c != "" && Normalize(r.Category) != c {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Pinned != nil && r.IsPinned != *f.Pinned {
		return false
	}
	if tag := Normalize(f.Tag); tag != "" {
		if !slices.ContainsFunc(r.Tags, func(t string) bool { return Normalize(t) == tag }) {
			return false
		}
	}
	return true
}

// Apply returns the records of rs that match f, preserving order.
func (f Filter) Apply(rs []Record) []Record {
	if f.IsZero() {
		return rs
	}
	out := make([]Record, 0, len(rs))
	for _, r := range rs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
