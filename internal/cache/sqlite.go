package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDurable is a Durable tier backed by a single-file SQLite
// database. It survives process restarts, which is what the durable
// tier exists for; everything hot lives in the volatile tier anyway.
type SQLiteDurable struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
`

// OpenSQLite opens (creating if needed) the durable tier at path and
// bootstraps the schema.
func OpenSQLite(path string) (*SQLiteDurable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open durable cache at %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent write-through.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize durable cache schema: %w", err)
	}
	return &SQLiteDurable{db: db}, nil
}

// Get implements Durable.
func (d *SQLiteDurable) Get(key string) ([]byte, time.Time, error) {
	var value []byte
	var expiresUnixMilli int64
	err := d.db.QueryRow(
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresUnixMilli)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("durable get %q: %w", key, err)
	}
	return value, time.UnixMilli(expiresUnixMilli), nil
}

// Set implements Durable.
func (d *SQLiteDurable) Set(key string, value []byte, expiresAt time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("durable set %q: %w", key, err)
	}
	return nil
}

// Delete implements Durable.
func (d *SQLiteDurable) Delete(key string) error {
	if _, err := d.db.Exec("DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("durable delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Durable.
func (d *SQLiteDurable) Keys() ([]string, error) {
	rows, err := d.db.Query("SELECT key FROM cache_entries")
	if err != nil {
		return nil, fmt.Errorf("durable keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("durable keys scan: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("durable keys iteration: %w", err)
	}
	return keys, nil
}

// Clear implements Durable.
func (d *SQLiteDurable) Clear() error {
	if _, err := d.db.Exec("DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("durable clear: %w", err)
	}
	return nil
}

// PurgeExpired implements Durable.
func (d *SQLiteDurable) PurgeExpired(now time.Time) error {
	if _, err := d.db.Exec("DELETE FROM cache_entries WHERE expires_at <= ?", now.UnixMilli()); err != nil {
		return fmt.Errorf("durable purge: %w", err)
	}
	return nil
}

// Close implements Durable.
func (d *SQLiteDurable) Close() error {
	return d.db.Close()
}
