package ops

import (
	"context"
	"time"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// CollectionHealth summarizes one collection.
type CollectionHealth struct {
	Count       int        `json:"count"`
	LastUpdated *time.Time `json:"lastUpdated"` // null for an empty collection
}

// HealthOutput contains the result of the Health operation.
type HealthOutput struct {
	Status    string                           `json:"status"`
	Storage   string                           `json:"storage"`
	Data      map[record.Kind]CollectionHealth `json:"data"`
	Timestamp time.Time                        `json:"timestamp"`
}

// Health reports the size and most recent update of every collection.
// Unlike List, a storage failure here is an error.
func Health(ctx context.Context, backend store.Backend) (*HealthOutput, error) {
	data := make(map[record.Kind]CollectionHealth)
	for _, spec := range record.Specs() {
		records, err := load(ctx, backend, spec, false)
		if err != nil {
			return nil, errors.NewStorage("Health check failed", err)
		}

		h := CollectionHealth{Count: len(records)}
		for _, r := range records {
			if h.LastUpdated == nil || r.UpdatedAt.After(*h.LastUpdated) {
				t := r.UpdatedAt
				h.LastUpdated = &t
			}
		}
		data[spec.Kind] = h
	}

	return &HealthOutput{
		Status:    "healthy",
		Storage:   backend.Name(),
		Data:      data,
		Timestamp: now(),
	}, nil
}
