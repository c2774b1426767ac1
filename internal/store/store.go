// Package store persists record collections.
package store

import (
	"context"

	"github.com/anytrip/dashboard/internal/record"
)

// Backend is the interface that all storage backends implement.
// It moves whole collections: callers read a collection, change it in
// memory and write it back. Implementations are safe for concurrent use,
// but two overlapping read-modify-write cycles resolve as last write wins.
type Backend interface {
	// Name identifies the backend in health reports ("memory", "json", "sqlite").
	Name() string

	// Read returns a collection in stored order. A collection that was never
	// written is empty, not an error. Records come back with Kind set.
	Read(ctx context.Context, kind record.Kind) ([]record.Record, error)

	// Write replaces a collection.
	Write(ctx context.Context, kind record.Kind, records []record.Record) error

	// Clear empties the given collections. Readers never observe a state
	// where only some of them are empty.
	Clear(ctx context.Context, kinds []record.Kind) error

	// Close releases resources held by the backend.
	Close() error
}

func cloneAll(kind record.Kind, in []record.Record) []record.Record {
	out := make([]record.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
		out[i].Kind = kind
	}
	return out
}
