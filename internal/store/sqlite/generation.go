package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julien-lin/UniversalPWA-sub002/internal/store"
)

const timeFormat = time.RFC3339

// SaveGeneration inserts a generation record, assigning an ID when the
// caller did not set one.
func (d *DB) SaveGeneration(ctx context.Context, g *store.Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	hashes, err := json.Marshal(g.FileHashes)
	if err != nil {
		return fmt.Errorf("encode file hashes: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO generations
			(id, project_root, version, timestamp, file_hashes,
			 sw_path, count, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ProjectRoot, g.Version, g.Timestamp, string(hashes),
		g.SWPath, g.Count, g.Size, g.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// LatestGeneration returns the most recent run for a project root, or
// store.ErrNotFound when the project has never been generated.
func (d *DB) LatestGeneration(ctx context.Context, projectRoot string) (*store.Generation, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, project_root, version, timestamp, file_hashes,
		       sw_path, count, size, created_at
		FROM generations
		WHERE project_root = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, projectRoot)

	g, err := scanGeneration(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return g, err
}

// ListGenerations returns up to limit runs for a project root, newest
// first. A non-positive limit defaults to 20.
func (d *DB) ListGenerations(ctx context.Context, projectRoot string, limit int) ([]store.Generation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, project_root, version, timestamp, file_hashes,
		       sw_path, count, size, created_at
		FROM generations
		WHERE project_root = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, projectRoot, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []store.Generation
	for rows.Next() {
		g, err := scanGeneration(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func scanGeneration(scan func(...any) error) (*store.Generation, error) {
	var g store.Generation
	var hashes, createdAt string
	if err := scan(
		&g.ID, &g.ProjectRoot, &g.Version, &g.Timestamp, &hashes,
		&g.SWPath, &g.Count, &g.Size, &createdAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(hashes), &g.FileHashes); err != nil {
		return nil, fmt.Errorf("decode file hashes: %w", err)
	}
	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	g.CreatedAt = t
	return &g, nil
}
