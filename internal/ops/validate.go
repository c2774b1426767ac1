package ops

import (
	"strings"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
)

const (
	statusChoices   = "status must be one of: pending, completed, inactive"
	priorityChoices = "priority must be one of: low, medium, high"
)

// validateDraft checks a create request against the kind's required fields
// and enumerations.
func validateDraft(spec record.Spec, d record.Draft) error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if spec.RequiresURL && strings.TrimSpace(d.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return errors.NewValidation(spec.RequiredMessage(), missing...)
	}

	if d.Status != "" && !d.Status.Valid() {
		return errors.NewValidation(statusChoices, "status")
	}
	if spec.Scheduled && d.Priority != "" && !d.Priority.Valid() {
		return errors.NewValidation(priorityChoices, "priority")
	}
	return nil
}

// validatePatch checks that a partial update keeps required fields non-empty
// and enumerations in range.
func validatePatch(spec record.Spec, p record.Patch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errors.NewValidation("Name is required", "name")
	}
	if spec.RequiresURL && p.URL != nil && strings.TrimSpace(*p.URL) == "" {
		return errors.NewValidation("URL is required", "url")
	}
	if p.Status != nil && !p.Status.Valid() {
		return errors.NewValidation(statusChoices, "status")
	}
	if spec.Scheduled && p.Priority != nil && !p.Priority.Valid() {
		return errors.NewValidation(priorityChoices, "priority")
	}
	return nil
}
