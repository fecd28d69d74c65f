package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the complete store layout. Statements are idempotent so the
// bootstrap can run on every open; a schema change gets a new statement
// here rather than a migration ladder, which a single-table store does
// not need.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS generations (
		id           TEXT PRIMARY KEY,
		project_root TEXT NOT NULL,
		version      TEXT NOT NULL,
		timestamp    INTEGER NOT NULL,
		file_hashes  TEXT NOT NULL DEFAULT '{}',
		sw_path      TEXT NOT NULL DEFAULT '',
		count        INTEGER NOT NULL DEFAULT 0,
		size         INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generations_project
		ON generations (project_root, created_at DESC)`,
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
