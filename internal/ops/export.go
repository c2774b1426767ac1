package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path  string        // optional, default: <data>/exports/dashboard-<timestamp>.jsonl
	Kinds []record.Kind // optional, default: every collection
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string              `json:"path"`
	Count      int                 `json:"count"`
	Counts     map[record.Kind]int `json:"counts"`
	ExportedAt int64               `json:"exported_at"`
}

// Export writes collections to a JSONL file: a header line, then one line
// per record, collections in dashboard order and records in stored order.
func Export(ctx context.Context, backend store.Backend, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	ts := now()
	exportedAt := ts.Unix()

	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = record.Kinds()
	}
	specs := make([]record.Spec, 0, len(kinds))
	for _, k := range kinds {
		spec, err := resolveSpec(k)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	exportPath := input.Path
	if exportPath == "" {
		name := fmt.Sprintf("dashboard-%s.jsonl", ts.Format("2006-01-02T150405"))
		exportPath = filepath.Join(DefaultExportsDir(cfg), name)
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	// Read everything before touching the filesystem so a storage failure
	// leaves no partial file behind.
	collections := make([][]record.Record, len(specs))
	for i, spec := range specs {
		records, err := load(ctx, backend, spec, false)
		if err != nil {
			return nil, errors.NewStorage(fmt.Sprintf("Error fetching %s", spec.Plural), err)
		}
		collections[i] = records
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	header := record.ExportLine{
		DashboardExport: true,
		SchemaVersion:   record.ExportSchemaVersion,
		ExportedAt:      exportedAt,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	count := 0
	counts := make(map[record.Kind]int, len(specs))
	for i, spec := range specs {
		for _, r := range collections[i] {
			if err := ctx.Err(); err != nil {
				return nil, errors.NewInternal(err)
			}
			line, err := record.RecordToExportLine(r)
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			if err := enc.Encode(line); err != nil {
				return nil, errors.NewInternal(err)
			}
			count++
			counts[spec.Kind]++
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails if the destination exists; the existing file
	// is kept rather than risking a delete-then-rename.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		Counts:     counts,
		ExportedAt: exportedAt,
	}, nil
}
