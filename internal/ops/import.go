package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on any collision; nothing is written
	ImportModeReplace ImportMode = "replace" // overwrite existing records in place
	ImportModeSkip    ImportMode = "skip"    // keep existing records
)

// maxImportLine bounds a single JSONL line.
const maxImportLine = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Replaced int           `json:"replaced"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes a line that could not be imported.
type ImportError struct {
	Line       int         `json:"line"`
	Collection record.Kind `json:"collection,omitempty"`
	ID         string      `json:"id,omitempty"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
}

type importLine struct {
	line   int
	record record.Record
}

// Import loads records from a JSONL export file. New records are placed at
// the head of their collection, in file order.
func Import(ctx context.Context, backend store.Backend, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	byKind, parseErrors := parseExportFile(file)

	output := &ImportOutput{Errors: []ImportError{}}
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		output.Errors = parseErrors
		return output, nil
	}
	output.Errors = append(output.Errors, parseErrors...)
	output.Skipped += len(parseErrors)

	// Plan every collection before writing any, so mode error can abort cleanly.
	type plan struct {
		spec    record.Spec
		records []record.Record
	}
	var plans []plan

	for _, spec := range record.Specs() {
		lines := byKind[spec.Kind]
		if len(lines) == 0 {
			continue
		}

		existing, err := loadForWrite(ctx, backend, spec, "saving")
		if err != nil {
			return nil, err
		}

		pos := make(map[string]int, len(existing))
		for i, r := range existing {
			pos[r.ID] = i
		}

		var fresh []record.Record
		freshPos := make(map[string]int)
		for _, l := range lines {
			r := l.record
			record.Backfill(spec, &r, now())

			if i, ok := pos[r.ID]; ok {
				switch input.Mode {
				case ImportModeError:
					output.Errors = append(output.Errors, collisionError(l.line, spec.Kind, r.ID))
					return &ImportOutput{Errors: output.Errors}, nil
				case ImportModeReplace:
					existing[i] = r
					output.Replaced++
				case ImportModeSkip:
					output.Skipped++
				}
				continue
			}
			if i, ok := freshPos[r.ID]; ok {
				switch input.Mode {
				case ImportModeError:
					output.Errors = append(output.Errors, collisionError(l.line, spec.Kind, r.ID))
					return &ImportOutput{Errors: output.Errors}, nil
				case ImportModeReplace:
					fresh[i] = r
					output.Replaced++
				case ImportModeSkip:
					output.Skipped++
				}
				continue
			}

			freshPos[r.ID] = len(fresh)
			fresh = append(fresh, r)
			output.Imported++
		}

		merged := make([]record.Record, 0, len(fresh)+len(existing))
		merged = append(merged, fresh...)
		merged = append(merged, existing...)
		plans = append(plans, plan{spec: spec, records: merged})
	}

	for _, p := range plans {
		if err := backend.Write(ctx, p.spec.Kind, p.records); err != nil {
			return nil, storageError(p.spec, "saving", err)
		}
	}

	return output, nil
}

func collisionError(line int, kind record.Kind, id string) ImportError {
	return ImportError{
		Line:       line,
		Collection: kind,
		ID:         id,
		Code:       "ID_COLLISION",
		Message:    fmt.Sprintf("record with id %q already exists", id),
	}
}

// parseExportFile parses a JSONL export file into records grouped by collection.
func parseExportFile(r io.Reader) (map[record.Kind][]importLine, []ImportError) {
	byKind := make(map[record.Kind][]importLine)
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		var line record.ExportLine
		if err := json.Unmarshal(raw, &line); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if line.DashboardExport {
			continue
		}

		spec, ok := record.SpecFor(line.Collection)
		if !ok {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: fmt.Sprintf("unknown collection %q", line.Collection),
			})
			continue
		}

		rec, err := line.ToRecord()
		if err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:       lineNum,
				Collection: spec.Kind,
				Code:       "PARSE_ERROR",
				Message:    fmt.Sprintf("invalid record: %v", err),
			})
			continue
		}

		if msg := invalidImport(spec, rec); msg != "" {
			parseErrors = append(parseErrors, ImportError{
				Line:       lineNum,
				Collection: spec.Kind,
				ID:         rec.ID,
				Code:       "INVALID_RECORD",
				Message:    msg,
			})
			continue
		}

		byKind[spec.Kind] = append(byKind[spec.Kind], importLine{line: lineNum, record: rec})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return byKind, parseErrors
}

// invalidImport reports why an imported record cannot be stored, or "".
func invalidImport(spec record.Spec, r record.Record) string {
	switch {
	case r.ID == "":
		return "missing id field"
	case strings.TrimSpace(r.Name) == "":
		return "missing name field"
	case spec.RequiresURL && strings.TrimSpace(r.URL) == "":
		return "missing url field"
	case r.Status != "" && !r.Status.Valid():
		return statusChoices
	case spec.Scheduled && r.Priority != "" && !r.Priority.Valid():
		return priorityChoices
	}
	return ""
}
