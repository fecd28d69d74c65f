// Package sqlite is the SQLite-backed store implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/julien-lin/UniversalPWA-sub002/internal/store"
)

// Compile-time check that DB satisfies store.Store.
var _ store.Store = (*DB)(nil)

// DB is the SQLite-backed store implementation.
type DB struct {
	db *sql.DB
}

// New opens a SQLite database at the given path and ensures the schema.
func New(ctx context.Context, path string) (*DB, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}
