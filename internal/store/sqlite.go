package store

import (
	"context"
	"database/sql"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/db"
	"github.com/anytrip/dashboard/internal/record"
)

// SQLiteStore keeps collections in the records table of dashboard.db.
// Writes and clears run in transactions, so readers see whole collections.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database under dir.
func NewSQLiteStore(dir string, cfg *config.Config) (*SQLiteStore, error) {
	conn, err := db.Init(dir)
	if err != nil {
		return nil, err
	}
	db.ConfigurePool(conn, cfg)
	return &SQLiteStore{db: conn}, nil
}

func (s *SQLiteStore) Name() string { return config.StorageSQLite }

func (s *SQLiteStore) Read(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	records, err := db.LoadCollection(ctx, s.db, kind)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

func (s *SQLiteStore) Write(ctx context.Context, kind record.Kind, records []record.Record) error {
	return db.ReplaceCollection(ctx, s.db, kind, records)
}

func (s *SQLiteStore) Clear(ctx context.Context, kinds []record.Kind) error {
	return db.DeleteCollections(ctx, s.db, kinds)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
