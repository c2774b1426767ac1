package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Kind  record.Kind
	Draft record.Draft
}

// Create validates a draft, assigns id and timestamps, fills defaults and
// inserts the record at the head of its collection.
func Create(ctx context.Context, backend store.Backend, input CreateInput) (*record.Record, error) {
	spec, err := resolveSpec(input.Kind)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(spec, input.Draft); err != nil {
		return nil, err
	}

	records, err := loadForWrite(ctx, backend, spec, "saving")
	if err != nil {
		return nil, err
	}

	r := record.New(spec, input.Draft, record.NewID(), now())

	next := make([]record.Record, 0, len(records)+1)
	next = append(next, r)
	next = append(next, records...)

	if err := backend.Write(ctx, spec.Kind, next); err != nil {
		return nil, storageError(spec, "saving", err)
	}
	return &r, nil
}
