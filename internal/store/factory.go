package store

import (
	"fmt"

	"github.com/anytrip/dashboard/internal/config"
)

// New creates a Backend for the configured storage.
//
// Supported backends:
//
//	"json"   - one JSON file per collection in cfg.BaseDir
//	"sqlite" - SQLite database at cfg.BaseDir/dashboard.db
//	"memory" - in-memory (ephemeral)
func New(cfg *config.Config) (Backend, error) {
	switch backend := cfg.StorageBackend(); backend {
	case config.StorageJSON:
		return NewJSONFileStore(cfg.BaseDir)
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.BaseDir, cfg)
	case config.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, sqlite, memory)", backend)
	}
}
