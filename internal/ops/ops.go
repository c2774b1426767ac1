package ops

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// now is the clock used for timestamps. Tests replace it.
var now = func() time.Time { return time.Now().UTC() }

// resolveSpec returns the spec for kind or an invalid-request error.
func resolveSpec(kind record.Kind) (record.Spec, error) {
	spec, ok := record.SpecFor(kind)
	if !ok {
		return record.Spec{}, errors.NewInvalidRequest(fmt.Sprintf("unknown collection %q", kind))
	}
	return spec, nil
}

// load reads a collection and backfills missing envelope fields.
// With persist set, repaired records are written back once so that ids
// assigned here stay stable across reads.
func load(ctx context.Context, backend store.Backend, spec record.Spec, persist bool) ([]record.Record, error) {
	records, err := backend.Read(ctx, spec.Kind)
	if err != nil {
		return nil, err
	}

	ts := now()
	repaired := false
	for i := range records {
		if record.Backfill(spec, &records[i], ts) {
			repaired = true
		}
	}

	if repaired && persist {
		if err := backend.Write(ctx, spec.Kind, records); err != nil {
			log.Printf("backfill %s: write-back failed: %v", spec.Kind, err)
		} else {
			log.Printf("backfill %s: repaired legacy records", spec.Kind)
		}
	}
	return records, nil
}

// loadSoft is load for read paths: an unreadable collection is logged and
// treated as empty.
func loadSoft(ctx context.Context, backend store.Backend, spec record.Spec) []record.Record {
	records, err := load(ctx, backend, spec, true)
	if err != nil {
		log.Printf("read %s: %v (serving empty collection)", spec.Kind, err)
		return []record.Record{}
	}
	return records
}

// loadForWrite is load for mutations. A read failure aborts the mutation
// rather than overwriting the stored collection.
func loadForWrite(ctx context.Context, backend store.Backend, spec record.Spec, verb string) ([]record.Record, error) {
	records, err := load(ctx, backend, spec, false)
	if err != nil {
		return nil, storageError(spec, verb, err)
	}
	return records, nil
}

// storageError builds the 500 reported when a collection cannot be saved,
// e.g. "Error saving excel sheet".
func storageError(spec record.Spec, verb string, err error) error {
	return errors.NewStorage(fmt.Sprintf("Error %s %s", verb, strings.ToLower(spec.Label)), err)
}

// indexOf returns the position of id in records, or -1.
func indexOf(records []record.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
