// Package storage persists bounded per (fuel type, region) price history in
// a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/timnew/Fuel-price/pkg/fuel"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS price_history (
  id          INTEGER PRIMARY KEY,
  key         TEXT NOT NULL,
  position    INTEGER NOT NULL,
  observed_at INTEGER NOT NULL,
  state       TEXT NOT NULL DEFAULT '',
  suburb      TEXT NOT NULL DEFAULT '',
  price       REAL NOT NULL,
  UNIQUE(key, position)
);
CREATE INDEX IF NOT EXISTS idx_history_key ON price_history(key);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Get returns the stored history for key, oldest first. A key that was never
// written yields an empty list, not an error.
func (d *DB) Get(ctx context.Context, key fuel.Key) ([]fuel.PricePoint, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT observed_at, state, suburb, price FROM price_history WHERE key = ? ORDER BY position",
		key.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []fuel.PricePoint
	for rows.Next() {
		var observedAt int64
		var p fuel.PricePoint
		if err := rows.Scan(&observedAt, &p.State, &p.Suburb, &p.Price); err != nil {
			return nil, err
		}
		p.Timestamp = time.Unix(observedAt, 0).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// Put overwrites the stored history for key with points, in order. The write
// is transactional: the old list is never left partially replaced.
func (d *DB) Put(ctx context.Context, key fuel.Key, points []fuel.PricePoint) error {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM price_history WHERE key = ?", key.String()); err != nil {
		return err
	}
	for position, p := range points {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO price_history(key, position, observed_at, state, suburb, price) VALUES(?,?,?,?,?,?)",
			key.String(), position, p.Timestamp.Unix(), p.State, p.Suburb, p.Price)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Keys lists every key that has stored history, in key order. Rows written by
// older builds whose key no longer parses are skipped.
func (d *DB) Keys(ctx context.Context) ([]fuel.Key, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT DISTINCT key FROM price_history ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []fuel.Key
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if key, ok := fuel.ParseKey(raw); ok {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
