package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/record"
)

// JSONFileStore stores each collection as a JSON array in its own file.
//
// Layout:
//
//	data_dir/
//	  excelSheets.json
//	  websiteLinks.json
//	  tasks.json
type JSONFileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewJSONFileStore creates dir if needed and seeds an empty array file for
// every collection that has none yet.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &JSONFileStore{dir: dir}
	for _, k := range record.Kinds() {
		path := s.collectionPath(k)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return nil, err
		}
		if err := writeFileAtomicDurable(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *JSONFileStore) Name() string { return config.StorageJSON }

func (s *JSONFileStore) collectionPath(kind record.Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

func (s *JSONFileStore) Read(_ context.Context, kind record.Kind) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.collectionPath(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return []record.Record{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []record.Record{}, nil
	}

	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	for i := range records {
		records[i].Kind = kind
	}
	return records, nil
}

func (s *JSONFileStore) Write(_ context.Context, kind record.Kind, records []record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(kind, records)
}

func (s *JSONFileStore) Clear(_ context.Context, kinds []record.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kinds {
		if err := s.save(k, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONFileStore) Close() error { return nil }

// save must be called with mu held.
func (s *JSONFileStore) save(kind record.Kind, records []record.Record) error {
	b, err := json.MarshalIndent(cloneAll(kind, records), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return writeFileAtomicDurable(s.collectionPath(kind), b, 0o644)
}

// writeFileAtomicDurable writes data to a temp file in the target directory,
// syncs it and renames it over path, so a crash leaves either the old or the
// new content.
func writeFileAtomicDurable(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}
