package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores values in the kv_entries table. It works with any
// driver sqlx can rebind for (PostgreSQL and SQLite are the ones used).
type SQLBackend struct {
	db *sqlx.DB
}

// NewSQLBackend creates a backend over an already migrated database
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{
		db: db,
	}
}

func (b *SQLBackend) Load(ctx context.Context, key string) ([]byte, error) {
	query := b.db.Rebind(`SELECT payload FROM kv_entries WHERE store_key = ?`)

	var payload string
	err := b.db.GetContext(ctx, &payload, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return []byte(payload), nil
}

func (b *SQLBackend) Save(ctx context.Context, entries ...Entry) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := b.db.Rebind(`
		INSERT INTO kv_entries (store_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (store_key) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`)

	now := time.Now().UTC()
	for _, e := range entries {
		_, err = tx.ExecContext(ctx, query, e.Key, string(e.Data), now)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

func (b *SQLBackend) Remove(ctx context.Context, key string) error {
	query := b.db.Rebind(`DELETE FROM kv_entries WHERE store_key = ?`)
	_, err := b.db.ExecContext(ctx, query, key)
	return err
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
