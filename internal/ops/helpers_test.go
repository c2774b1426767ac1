package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

var baseTime = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

// setNow pins the package clock for one test.
func setNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	return cfg
}

func stringPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func mustCreate(t *testing.T, b store.Backend, kind record.Kind, d record.Draft) *record.Record {
	t.Helper()
	r, err := Create(context.Background(), b, CreateInput{Kind: kind, Draft: d})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", kind, err)
	}
	return r
}

// faultyBackend wraps a backend and fails reads or writes on demand.
type faultyBackend struct {
	store.Backend
	readErr  error
	writeErr error
	writes   int
}

func (f *faultyBackend) Read(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Backend.Read(ctx, kind)
}

func (f *faultyBackend) Write(ctx context.Context, kind record.Kind, records []record.Record) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Backend.Write(ctx, kind, records)
}

func (f *faultyBackend) Clear(ctx context.Context, kinds []record.Kind) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Backend.Clear(ctx, kinds)
}

var errDisk = fmt.Errorf("disk unavailable")
