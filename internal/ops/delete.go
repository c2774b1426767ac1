package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Kind record.Kind
	ID   string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Delete removes a record by id.
func Delete(ctx context.Context, backend store.Backend, input DeleteInput) (*DeleteOutput, error) {
	spec, err := resolveSpec(input.Kind)
	if err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	records, err := loadForWrite(ctx, backend, spec, "deleting")
	if err != nil {
		return nil, err
	}

	i := indexOf(records, input.ID)
	if i < 0 {
		return nil, errors.NewNotFound(spec.Label, input.ID)
	}

	next := make([]record.Record, 0, len(records)-1)
	next = append(next, records[:i]...)
	next = append(next, records[i+1:]...)

	if err := backend.Write(ctx, spec.Kind, next); err != nil {
		return nil, storageError(spec, "deleting", err)
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      input.ID,
		Message: spec.Label + " deleted successfully",
	}, nil
}
