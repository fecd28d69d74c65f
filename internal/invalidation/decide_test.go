package invalidation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

func autoCfg(globs ...string) caching.AdvancedConfig {
	return caching.AdvancedConfig{
		Versioning:   caching.VersioningConfig{AutoVersion: true},
		Dependencies: caching.DependencyConfig{Enabled: true, TrackedFiles: globs},
	}
}

func TestShouldInvalidateCacheManualVersion(t *testing.T) {
	cfg := caching.AdvancedConfig{
		Versioning: caching.VersioningConfig{
			ManualVersion: "v2",
			// Manual wins even with auto versioning configured.
			AutoVersion: true,
		},
		Dependencies: caching.DependencyConfig{Enabled: true, TrackedFiles: []string{"**/*.js"}},
	}

	t.Run("differs from stored", func(t *testing.T) {
		d, err := ShouldInvalidateCache(t.TempDir(), &CacheVersion{Version: "v1"}, cfg)
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if !d.ShouldInvalidate || d.Reason != ReasonManualVersion || d.NewVersion != "v2" {
			t.Errorf("decision = %+v", d)
		}
	})

	t.Run("matches stored", func(t *testing.T) {
		d, err := ShouldInvalidateCache(t.TempDir(), &CacheVersion{Version: "v2"}, cfg)
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if d.ShouldInvalidate {
			t.Errorf("invalidated with matching manual version: %+v", d)
		}
	})
}

func TestShouldInvalidateCacheAuto(t *testing.T) {
	globs := []string{"**/*.js"}

	t.Run("no previous version", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		d, err := ShouldInvalidateCache(dir, nil, autoCfg(globs...))
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if !d.ShouldInvalidate || d.Reason != ReasonNoPreviousVersion {
			t.Errorf("decision = %+v", d)
		}
		if d.NewVersion == "" {
			t.Error("no new version computed")
		}
	})

	t.Run("content changed", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "app.js", "one")

		current, err := GenerateCacheVersion(dir, globs, nil)
		if err != nil {
			t.Fatalf("GenerateCacheVersion: %v", err)
		}
		writeFile(t, dir, "app.js", "one, edited")

		d, err := ShouldInvalidateCache(dir, current, autoCfg(globs...))
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if !d.ShouldInvalidate || d.Reason != ReasonContentChanged {
			t.Errorf("decision = %+v", d)
		}
		if len(d.ChangedFiles) != 1 || d.ChangedFiles[0] != path {
			t.Errorf("changed files = %v, want [%s]", d.ChangedFiles, path)
		}
	})

	t.Run("nothing changed", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		current, _ := GenerateCacheVersion(dir, globs, nil)
		d, err := ShouldInvalidateCache(dir, current, autoCfg(globs...))
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if d.ShouldInvalidate {
			t.Errorf("invalidated with no change: %+v", d)
		}
	})

	t.Run("versioning disabled", func(t *testing.T) {
		d, err := ShouldInvalidateCache(t.TempDir(), nil, caching.AdvancedConfig{})
		if err != nil {
			t.Fatalf("ShouldInvalidateCache: %v", err)
		}
		if d.ShouldInvalidate {
			t.Errorf("invalidated with versioning disabled: %+v", d)
		}
	})
}

func TestDiffHashes(t *testing.T) {
	prev := map[string]string{"a": "1", "b": "2", "c": "3"}
	next := map[string]string{"a": "1", "b": "9", "d": "4"}

	got := diffHashes(prev, next)
	want := []string{"b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diffHashes = %v, want %v", got, want)
	}
}

func TestGetOrGenerateCacheVersion(t *testing.T) {
	t.Run("manual wins without hashing", func(t *testing.T) {
		cfg := caching.AdvancedConfig{
			Versioning: caching.VersioningConfig{ManualVersion: "release-7", AutoVersion: true},
		}
		v, err := GetOrGenerateCacheVersion(t.TempDir(), cfg)
		if err != nil {
			t.Fatalf("GetOrGenerateCacheVersion: %v", err)
		}
		if v.Version != "release-7" {
			t.Errorf("version = %q, want the manual literal", v.Version)
		}
		if len(v.FileHashes) != 0 {
			t.Error("manual version hashed files")
		}
	})

	t.Run("auto derives from content", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		v, err := GetOrGenerateCacheVersion(dir, autoCfg("**/*.js"))
		if err != nil {
			t.Fatalf("GetOrGenerateCacheVersion: %v", err)
		}
		if len(v.Version) != 16 || len(v.FileHashes) != 1 {
			t.Errorf("version = %+v", v)
		}
	})

	t.Run("fallback is timestamp derived", func(t *testing.T) {
		v, err := GetOrGenerateCacheVersion(t.TempDir(), caching.AdvancedConfig{})
		if err != nil {
			t.Fatalf("GetOrGenerateCacheVersion: %v", err)
		}
		if !strings.HasPrefix(v.Version, "v") || len(v.Version) < 2 {
			t.Errorf("fallback version = %q, want v<ms>", v.Version)
		}
	})
}
