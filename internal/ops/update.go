package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	Kind  record.Kind
	ID    string
	Patch record.Patch // nil fields are left unchanged
}

// Update merges a partial record into an existing one. The record keeps its
// id, createdAt and position; updatedAt is refreshed.
func Update(ctx context.Context, backend store.Backend, input UpdateInput) (*record.Record, error) {
	spec, err := resolveSpec(input.Kind)
	if err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := validatePatch(spec, input.Patch); err != nil {
		return nil, err
	}

	records, err := loadForWrite(ctx, backend, spec, "updating")
	if err != nil {
		return nil, err
	}

	i := indexOf(records, input.ID)
	if i < 0 {
		return nil, errors.NewNotFound(spec.Label, input.ID)
	}

	records[i].Apply(spec, input.Patch, now())

	if err := backend.Write(ctx, spec.Kind, records); err != nil {
		return nil, storageError(spec, "updating", err)
	}
	updated := records[i]
	return &updated, nil
}
