// Package invalidation decides when previously generated caching
// artifacts are stale. It computes content-derived version fingerprints
// over a tracked file set, builds dependency graphs from route
// declarations, and performs cascade invalidation over them.
package invalidation

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"github.com/julien-lin/UniversalPWA-sub002/internal/cache"
	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
	"github.com/julien-lin/UniversalPWA-sub002/internal/routing"
)

// CacheVersion is a content-derived fingerprint of a tracked file set.
// Timestamp records when the version was computed; it never participates
// in the Version derivation, so two runs over unchanged content agree.
type CacheVersion struct {
	Version    string            `json:"version"`
	Timestamp  int64             `json:"timestamp"`
	FileHashes map[string]string `json:"fileHashes"`
}

// hashKey identifies file content by path, mtime and size. A touched or
// rewritten file gets a new key, so the memo never serves stale hashes.
type hashKey struct {
	path  string
	mtime int64
	size  int64
}

// fileHashes memoizes content hashes across the invalidation engine and
// the precache builder, which typically track overlapping file sets
// within one generation run.
var fileHashes = cache.New[hashKey, string](4096, 0)

// HashFile returns the lowercase hex BLAKE3 hash of the file contents.
func HashFile(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := hashKey{path: path, mtime: fi.ModTime().UnixNano(), size: fi.Size()}
	return fileHashes.GetOrLoad(key, func() (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		h := blake3.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	})
}

// ShouldIgnoreFile reports whether a root-relative, slash-separated path
// matches any of the ignore globs.
func ShouldIgnoreFile(relPath string, ignoreGlobs []string) bool {
	for _, g := range ignoreGlobs {
		if ok, err := routing.Matches(relPath, caching.Glob(g)); err == nil && ok {
			return true
		}
	}
	return false
}

// GetTrackedFiles resolves the tracked globs against rootDir and returns
// the matching regular files as sorted absolute paths, minus anything
// matching the ignore globs. Unreadable subtrees are skipped rather than
// failing the enumeration.
func GetTrackedFiles(rootDir string, globs, ignoreGlobs []string) ([]string, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", rootDir, err)
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(rel, globs) || ShouldIgnoreFile(rel, ignoreGlobs) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("enumerate %q: %w", root, walkErr)
	}
	sort.Strings(files)
	return files, nil
}

func matchesAny(relPath string, globs []string) bool {
	for _, g := range globs {
		if ok, err := routing.Matches(relPath, caching.Glob(g)); err == nil && ok {
			return true
		}
	}
	return false
}

// GenerateCacheVersion hashes every tracked file under rootDir and folds
// the per-file hashes into a single version string. The fold runs over
// sorted relative paths, so enumeration order cannot influence the
// result. A file that disappears or turns unreadable between enumeration
// and hashing is treated as absent, which changes the version and forces
// invalidation instead of crashing or silently producing a wrong hash.
func GenerateCacheVersion(rootDir string, trackedGlobs, ignoreGlobs []string) (*CacheVersion, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", rootDir, err)
	}
	files, err := GetTrackedFiles(root, trackedGlobs, ignoreGlobs)
	if err != nil {
		return nil, err
	}

	hashes := make(map[string]string, len(files))
	type relHash struct{ rel, hash string }
	fold := make([]relHash, 0, len(files))
	for _, abs := range files {
		hash, err := HashFile(abs)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		hashes[abs] = hash
		fold = append(fold, relHash{rel: filepath.ToSlash(rel), hash: hash})
	}

	// files is sorted by absolute path; the fold keys are relative paths
	// so sort again on those for a platform-independent order.
	sort.Slice(fold, func(i, j int) bool { return fold[i].rel < fold[j].rel })
	h := blake3.New()
	for _, fh := range fold {
		fmt.Fprintf(h, "%s\x00%s\n", fh.rel, fh.hash)
	}

	return &CacheVersion{
		Version:    hex.EncodeToString(h.Sum(nil))[:16],
		Timestamp:  time.Now().UnixMilli(),
		FileHashes: hashes,
	}, nil
}
