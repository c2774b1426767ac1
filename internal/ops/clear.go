package ops

import (
	"context"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// ClearAllOutput contains the result of the ClearAll operation.
type ClearAllOutput struct {
	Message string        `json:"message"`
	Cleared []record.Kind `json:"cleared"`
}

// ClearAll empties every collection.
func ClearAll(ctx context.Context, backend store.Backend) (*ClearAllOutput, error) {
	kinds := record.Kinds()
	if err := backend.Clear(ctx, kinds); err != nil {
		return nil, errors.NewStorage("Error clearing data", err)
	}
	return &ClearAllOutput{
		Message: "All data cleared successfully",
		Cleared: kinds,
	}, nil
}
