package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/anytrip/dashboard/internal/record"
)

// LoadCollection returns the records of one collection in stored order.
// Each record comes back with Kind set to the collection.
func LoadCollection(ctx context.Context, db *sql.DB, kind record.Kind) ([]record.Record, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT data FROM records WHERE collection = ? ORDER BY position ASC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		r := record.Record{Kind: kind}
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", kind, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

// ReplaceCollection overwrites a collection with records, in one transaction.
func ReplaceCollection(ctx context.Context, db *sql.DB, kind record.Kind, records []record.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(kind)); err != nil {
		return fmt.Errorf("clear %s: %w", kind, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (collection, position, id, data, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		r.Kind = kind
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", kind, r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(kind), i, r.ID, string(data), r.UpdatedAt.Unix()); err != nil {
			return fmt.Errorf("insert %s/%s: %w", kind, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteCollections empties the given collections in one transaction.
func DeleteCollections(ctx context.Context, db *sql.DB, kinds []record.Kind) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, k := range kinds {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(k)); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
