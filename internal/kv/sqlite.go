// Package kv stores small string settings in named SQLite buckets.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Bucket names and keys used by gsilight.
const (
	BucketHue = "hue"

	KeyBridge = "bridge"
	KeyToken  = "token"
)

// SQLiteBucket is a persistent bucket backed by SQLite.
type SQLiteBucket struct {
	db   *sql.DB
	name string
}

// NewSQLiteBucket creates a new SQLite-backed bucket.
func NewSQLiteBucket(db *sql.DB, name string) *SQLiteBucket {
	return &SQLiteBucket{
		db:   db,
		name: name,
	}
}

// Name returns the bucket name.
func (b *SQLiteBucket) Name() string {
	return b.name
}

// Store saves value under key, replacing any previous value.
func (b *SQLiteBucket) Store(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_store (bucket, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, b.name, key, value, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", b.name, key, err)
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (b *SQLiteBucket) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `
		SELECT value FROM kv_store
		WHERE bucket = ? AND key = ?
	`, b.name, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s/%s: %w", b.name, key, err)
	}
	return value, true, nil
}

// Delete removes key from the bucket and reports whether it existed.
func (b *SQLiteBucket) Delete(ctx context.Context, key string) (bool, error) {
	result, err := b.db.ExecContext(ctx, `
		DELETE FROM kv_store WHERE bucket = ? AND key = ?
	`, b.name, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", b.name, key, err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Keys returns all keys in the bucket, sorted.
func (b *SQLiteBucket) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT key FROM kv_store WHERE bucket = ? ORDER BY key
	`, b.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
