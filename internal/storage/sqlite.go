package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Compile-time interface check.
var _ KV = (*SQLiteKV)(nil)

// SQLiteKV implements KV on the kv table created by db.Migrate.
type SQLiteKV struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteKV creates a store over an opened, migrated database.
func NewSQLiteKV(db *sql.DB, log *logger.Logger) *SQLiteKV {
	return &SQLiteKV{db: db, log: log}
}

func (s *SQLiteKV) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`, namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", namespace, key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

func (s *SQLiteKV) Put(ctx context.Context, namespace, key string, value []byte) error {
	query := `INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, namespace, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	s.log.Debug("put %s/%s (%d bytes)", namespace, key, len(value))
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, namespace, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", namespace, key, domain.ErrNotFound)
	}
	s.log.Debug("deleted %s/%s", namespace, key)
	return nil
}

func (s *SQLiteKV) List(ctx context.Context, namespace string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", namespace, err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Key, &it.Value); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", namespace, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", namespace, err)
	}
	return out, nil
}
