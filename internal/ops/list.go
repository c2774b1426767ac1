package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Kind   record.Kind
	Filter record.Filter // zero value matches everything
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []record.Record `json:"items"`
	Total int             `json:"total"` // collection size before filtering
}

// List returns a collection in stored order (newest first).
// It never fails on storage: an unreadable collection lists as empty.
func List(ctx context.Context, backend store.Backend, input ListInput) (*ListOutput, error) {
	spec, err := resolveSpec(input.Kind)
	if err != nil {
		return nil, err
	}

	records := loadSoft(ctx, backend, spec)
	items := input.Filter.Apply(records)
	if items == nil {
		items = []record.Record{}
	}

	return &ListOutput{
		Items: items,
		Total: len(records),
	}, nil
}
