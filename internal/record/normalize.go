package record

import (
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace.
// Search and category comparisons run on normalized strings.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// NewID returns a fresh ULID. ULIDs sort by creation time, so ids minted in
// the same process are unique and ordered.
func NewID() string {
	return ulid.Make().String()
}

// CleanTags trims tags, drops empties and removes case-insensitive duplicates,
// keeping the first spelling.
func CleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := Normalize(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
