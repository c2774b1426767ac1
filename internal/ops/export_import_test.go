package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

func seedAll(t *testing.T, b store.Backend) {
	t.Helper()
	mustCreate(t, b, record.KindSheets, record.Draft{Name: "Budget", URL: "https://b", Tags: []string{"q3"}})
	mustCreate(t, b, record.KindLinks, record.Draft{Name: "Portal", URL: "https://p"})
	mustCreate(t, b, record.KindTasks, record.Draft{Name: "Older"})
	mustCreate(t, b, record.KindTasks, record.Draft{Name: "Newer", DueDate: stringPtr("2026-06-01"), Priority: record.PriorityHigh})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestExport_DefaultPath(t *testing.T) {
	setNow(t, baseTime)
	cfg := testConfig(t)
	b := store.NewMemoryStore()
	seedAll(t, b)

	out, err := Export(context.Background(), b, cfg, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Dir(out.Path) != cfg.ExportsDir() {
		t.Errorf("Path = %q, want inside %q", out.Path, cfg.ExportsDir())
	}
	if !strings.HasPrefix(filepath.Base(out.Path), "dashboard-2026-05-10T") {
		t.Errorf("Path = %q, want timestamped name", out.Path)
	}
	if out.Count != 4 || out.Counts[record.KindTasks] != 2 {
		t.Errorf("Count = %d, Counts = %v", out.Count, out.Counts)
	}

	lines := readLines(t, out.Path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4", len(lines))
	}

	var header record.ExportLine
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatal(err)
	}
	if !header.DashboardExport || header.SchemaVersion != record.ExportSchemaVersion || header.ExportedAt != baseTime.Unix() {
		t.Errorf("header = %+v", header)
	}

	// Collections in dashboard order, records in stored order.
	var kinds []record.Kind
	var names []string
	for _, l := range lines[1:] {
		var line record.ExportLine
		if err := json.Unmarshal([]byte(l), &line); err != nil {
			t.Fatal(err)
		}
		r, err := line.ToRecord()
		if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, line.Collection)
		names = append(names, r.Name)
	}
	wantKinds := []record.Kind{record.KindSheets, record.KindLinks, record.KindTasks, record.KindTasks}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("line %d collection = %s, want %s", i+1, kinds[i], wantKinds[i])
		}
	}
	if names[2] != "Newer" || names[3] != "Older" {
		t.Errorf("task order = %v", names[2:])
	}
}

func TestExport_SelectedKinds(t *testing.T) {
	cfg := testConfig(t)
	b := store.NewMemoryStore()
	seedAll(t, b)

	out, err := Export(context.Background(), b, cfg, ExportInput{
		Path:  filepath.Join(cfg.ExportsDir(), "tasks.jsonl"),
		Kinds: []record.Kind{record.KindTasks},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 || len(out.Counts) != 1 {
		t.Errorf("Count = %d, Counts = %v", out.Count, out.Counts)
	}
}

func TestExport_Errors(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	_, err := Export(ctx, store.NewMemoryStore(), cfg, ExportInput{Path: "/tmp/outside.jsonl"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("outside path: expected ErrInvalidRequest, got %v", err)
	}

	_, err = Export(ctx, store.NewMemoryStore(), cfg, ExportInput{Kinds: []record.Kind{"notes"}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unknown kind: expected ErrInvalidRequest, got %v", err)
	}

	path := filepath.Join(cfg.ExportsDir(), "broken.jsonl")
	b := &faultyBackend{Backend: store.NewMemoryStore(), readErr: errDisk}
	_, err = Export(ctx, b, cfg, ExportInput{Path: path})
	if !errors.Is(err, errors.ErrStorage) {
		t.Errorf("read failure: expected ErrStorage, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be left behind after a storage failure")
	}
}

func TestImport_RoundTrip(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	src := store.NewMemoryStore()
	seedAll(t, src)

	exp, err := Export(ctx, src, cfg, ExportInput{Path: filepath.Join(cfg.ExportsDir(), "all.jsonl")})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := store.NewMemoryStore()
	out, err := Import(ctx, dst, cfg, ImportInput{Path: exp.Path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 4 || len(out.Errors) != 0 {
		t.Fatalf("Imported = %d, Errors = %v", out.Imported, out.Errors)
	}

	want, _ := src.Read(ctx, record.KindTasks)
	got, _ := dst.Read(ctx, record.KindTasks)
	if len(got) != len(want) {
		t.Fatalf("tasks = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].Priority != want[i].Priority {
			t.Errorf("task %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if *got[0].DueDate != "2026-06-01" {
		t.Errorf("dueDate = %v", got[0].DueDate)
	}
}

func TestImport_Modes(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	b := store.NewMemoryStore()
	seedAll(t, b)

	exp, err := Export(ctx, b, cfg, ExportInput{Path: filepath.Join(cfg.ExportsDir(), "all.jsonl")})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Rename a sheet so replace has something to restore.
	sheets, _ := b.Read(ctx, record.KindSheets)
	if _, err := Update(ctx, b, UpdateInput{Kind: record.KindSheets, ID: sheets[0].ID, Patch: record.Patch{Name: stringPtr("Renamed")}}); err != nil {
		t.Fatal(err)
	}

	t.Run("error mode aborts on collision", func(t *testing.T) {
		out, err := Import(ctx, b, cfg, ImportInput{Path: exp.Path, Mode: ImportModeError})
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(out.Errors) != 1 || out.Errors[0].Code != "ID_COLLISION" || out.Imported != 0 {
			t.Errorf("out = %+v", out)
		}
		got, _ := b.Read(ctx, record.KindSheets)
		if got[0].Name != "Renamed" {
			t.Error("error mode must not write")
		}
	})

	t.Run("skip keeps existing", func(t *testing.T) {
		out, err := Import(ctx, b, cfg, ImportInput{Path: exp.Path, Mode: ImportModeSkip})
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if out.Skipped != 4 || out.Imported != 0 {
			t.Errorf("out = %+v", out)
		}
		got, _ := b.Read(ctx, record.KindSheets)
		if got[0].Name != "Renamed" {
			t.Errorf("name = %q, want Renamed", got[0].Name)
		}
	})

	t.Run("replace overwrites in place", func(t *testing.T) {
		out, err := Import(ctx, b, cfg, ImportInput{Path: exp.Path, Mode: ImportModeReplace})
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if out.Replaced != 4 {
			t.Errorf("out = %+v", out)
		}
		got, _ := b.Read(ctx, record.KindSheets)
		if len(got) != 1 || got[0].Name != "Budget" {
			t.Errorf("sheets = %+v", got)
		}
	})
}

func TestImport_InvalidLines(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	if err := os.MkdirAll(cfg.ExportsDir(), 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.ExportsDir(), "mixed.jsonl")
	content := strings.Join([]string{
		`{"_dashboard_export":true,"schema_version":"1","exported_at":1}`,
		`{"collection":"tasks","record":{"id":"t1","name":"Good task"}}`,
		`not json`,
		`{"collection":"excelSheets","record":{"id":"s1","name":"No url"}}`,
		`{"collection":"notes","record":{"id":"n1","name":"x"}}`,
		``,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	b := store.NewMemoryStore()
	out, err := Import(ctx, b, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(out.Errors) != 3 || out.Imported != 0 {
		t.Errorf("error mode: out = %+v", out)
	}
	if tasks, _ := b.Read(ctx, record.KindTasks); len(tasks) != 0 {
		t.Error("error mode must not write when lines are invalid")
	}

	out, err = Import(ctx, b, cfg, ImportInput{Path: path, Mode: ImportModeSkip})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 || out.Skipped != 3 {
		t.Errorf("skip mode: out = %+v", out)
	}
	tasks, _ := b.Read(ctx, record.KindTasks)
	if len(tasks) != 1 || tasks[0].Status != record.StatusPending || tasks[0].Priority != record.PriorityMedium {
		t.Errorf("imported task not backfilled: %+v", tasks)
	}
}

func TestImport_Errors(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	_, err := Import(ctx, store.NewMemoryStore(), cfg, ImportInput{Path: filepath.Join(cfg.ExportsDir(), "x.jsonl"), Mode: "merge"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad mode: expected ErrInvalidRequest, got %v", err)
	}

	_, err = Import(ctx, store.NewMemoryStore(), cfg, ImportInput{Path: filepath.Join(cfg.ExportsDir(), "missing.jsonl")})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing file: expected ErrFileNotFound, got %v", err)
	}
}
