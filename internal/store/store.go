package store

import "context"

// Store is the data-access interface for generation history.
type Store interface {
	SaveGeneration(ctx context.Context, g *Generation) error
	LatestGeneration(ctx context.Context, projectRoot string) (*Generation, error)
	ListGenerations(ctx context.Context, projectRoot string, limit int) ([]Generation, error)
	Ping(ctx context.Context) error
	Close() error
}
