package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Filter record.Filter
	Kinds  []record.Kind // empty means every collection
}

// SearchOutput groups matches by collection.
type SearchOutput struct {
	Results map[record.Kind][]record.Record `json:"results"`
	Total   int                             `json:"total"`
}

// Search runs one filter over several collections, the way the dashboard's
// header search and pinned panel do.
func Search(ctx context.Context, backend store.Backend, input SearchInput) (*SearchOutput, error) {
	if input.Filter.IsZero() {
		return nil, errors.NewInvalidRequest("at least one search criterion is required")
	}

	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = record.Kinds()
	}

	output := &SearchOutput{Results: make(map[record.Kind][]record.Record, len(kinds))}
	for _, k := range kinds {
		list, err := List(ctx, backend, ListInput{Kind: k, Filter: input.Filter})
		if err != nil {
			return nil, err
		}
		output.Results[k] = list.Items
		output.Total += len(list.Items)
	}
	return output, nil
}
