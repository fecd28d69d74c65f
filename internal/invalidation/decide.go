package invalidation

import (
	"fmt"
	"sort"
	"time"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

// Invalidation reasons reported in Decision.Reason.
const (
	ReasonManualVersion     = "Manual version changed"
	ReasonContentChanged    = "Tracked file contents changed"
	ReasonNoPreviousVersion = "No previous version"
)

// Decision is the outcome of comparing a stored version against the
// current project state.
type Decision struct {
	ShouldInvalidate bool
	Reason           string
	NewVersion       string
	ChangedFiles     []string
}

// ShouldInvalidateCache decides whether artifacts generated under current
// are stale. A configured manual version short-circuits: it wins over
// content hashing, and over a simultaneously enabled auto version.
// Otherwise, with auto versioning and dependency tracking enabled, the
// tracked set is re-hashed and any added, removed or changed file
// triggers invalidation. With neither configured nothing invalidates.
func ShouldInvalidateCache(rootDir string, current *CacheVersion, cfg caching.AdvancedConfig) (Decision, error) {
	if manual := cfg.Versioning.ManualVersion; manual != "" {
		if current == nil || current.Version != manual {
			return Decision{
				ShouldInvalidate: true,
				Reason:           ReasonManualVersion,
				NewVersion:       manual,
			}, nil
		}
		return Decision{}, nil
	}

	if !cfg.Versioning.AutoVersion || !cfg.Dependencies.Enabled {
		return Decision{}, nil
	}

	next, err := GenerateCacheVersion(rootDir, cfg.Dependencies.TrackedFiles, cfg.Invalidation.IgnorePatterns)
	if err != nil {
		return Decision{}, fmt.Errorf("recompute cache version: %w", err)
	}
	if current == nil {
		return Decision{
			ShouldInvalidate: true,
			Reason:           ReasonNoPreviousVersion,
			NewVersion:       next.Version,
		}, nil
	}

	changed := diffHashes(current.FileHashes, next.FileHashes)
	if len(changed) == 0 {
		return Decision{}, nil
	}
	return Decision{
		ShouldInvalidate: true,
		Reason:           ReasonContentChanged,
		NewVersion:       next.Version,
		ChangedFiles:     changed,
	}, nil
}

// diffHashes returns the sorted union of added, removed and
// changed-content paths between two file-hash maps.
func diffHashes(prev, next map[string]string) []string {
	var changed []string
	for path, hash := range next {
		if old, ok := prev[path]; !ok || old != hash {
			changed = append(changed, path)
		}
	}
	for path := range prev {
		if _, ok := next[path]; !ok {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}

// GetOrGenerateCacheVersion resolves the version for the current run. A
// manual version is returned literally with no hashing. Auto versioning
// with dependency tracking delegates to GenerateCacheVersion. Otherwise
// the fallback is a wall-clock "v<ms>" string: monotonic with time but
// not content-derived, so it cannot detect "no real change", a weak
// guarantee kept for configurations without tracked files.
func GetOrGenerateCacheVersion(rootDir string, cfg caching.AdvancedConfig) (*CacheVersion, error) {
	if manual := cfg.Versioning.ManualVersion; manual != "" {
		return &CacheVersion{
			Version:   manual,
			Timestamp: time.Now().UnixMilli(),
		}, nil
	}
	if cfg.Versioning.AutoVersion && cfg.Dependencies.Enabled {
		return GenerateCacheVersion(rootDir, cfg.Dependencies.TrackedFiles, cfg.Invalidation.IgnorePatterns)
	}
	now := time.Now().UnixMilli()
	return &CacheVersion{
		Version:   fmt.Sprintf("v%d", now),
		Timestamp: now,
	}, nil
}
