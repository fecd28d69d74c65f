// Package store defines persistence for generation history: one record
// per generation run, carrying the cache version and file-hash map that
// the next run compares against to decide invalidation.
package store

import "time"

// Generation is one completed generation run for a project.
type Generation struct {
	ID          string
	ProjectRoot string

	// Version and FileHashes reproduce the run's CacheVersion.
	Version    string
	Timestamp  int64
	FileHashes map[string]string

	SWPath string
	Count  int
	Size   int64

	CreatedAt time.Time
}
