package invalidation

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.js", "console.log(1)")
	b := writeFile(t, dir, "b.js", "console.log(1)")
	c := writeFile(t, dir, "c.js", "console.log(2)")

	ha, err := HashFile(a)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	hb, _ := HashFile(b)
	hc, _ := HashFile(c)

	if ha != hb {
		t.Error("identical content hashed differently")
	}
	if ha == hc {
		t.Error("different content hashed identically")
	}
	if _, err := HashFile(filepath.Join(dir, "missing.js")); err == nil {
		t.Error("HashFile on a missing file returned no error")
	}
}

func TestShouldIgnoreFile(t *testing.T) {
	ignores := []string{"**/*.map", "node_modules/**"}
	tests := []struct {
		rel  string
		want bool
	}{
		{"app.js.map", true},
		{"dist/app.js.map", true},
		{"node_modules/react/index.js", true},
		{"dist/app.js", false},
		{"index.html", false},
	}
	for _, tt := range tests {
		if got := ShouldIgnoreFile(tt.rel, ignores); got != tt.want {
			t.Errorf("ShouldIgnoreFile(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestGetTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "a")
	writeFile(t, dir, "style.css", "b")
	writeFile(t, dir, "app.js.map", "m")
	writeFile(t, dir, "sub/deep.js", "c")
	writeFile(t, dir, "readme.txt", "d")

	files, err := GetTrackedFiles(dir, []string{"**/*.js", "**/*.css"}, []string{"**/*.map"})
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)
	want := []string{"app.js", "style.css", "sub/deep.js"}
	if !reflect.DeepEqual(rels, want) {
		t.Errorf("tracked %v, want %v", rels, want)
	}
}

func TestGenerateCacheVersion(t *testing.T) {
	globs := []string{"**/*.js"}

	t.Run("stable over unchanged content", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")
		writeFile(t, dir, "sub/lib.js", "two")

		v1, err := GenerateCacheVersion(dir, globs, nil)
		if err != nil {
			t.Fatalf("GenerateCacheVersion: %v", err)
		}
		v2, err := GenerateCacheVersion(dir, globs, nil)
		if err != nil {
			t.Fatalf("GenerateCacheVersion: %v", err)
		}
		if v1.Version != v2.Version {
			t.Errorf("version drifted over identical content: %q then %q", v1.Version, v2.Version)
		}
		if len(v1.Version) != 16 {
			t.Errorf("version length = %d, want 16", len(v1.Version))
		}
		if len(v1.FileHashes) != 2 {
			t.Errorf("tracked %d files, want 2", len(v1.FileHashes))
		}
	})

	t.Run("changes when content changes", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		v1, _ := GenerateCacheVersion(dir, globs, nil)
		writeFile(t, dir, "app.js", "one, edited")
		v2, _ := GenerateCacheVersion(dir, globs, nil)
		if v1.Version == v2.Version {
			t.Error("version unchanged after content edit")
		}
	})

	t.Run("changes when a file is added", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		v1, _ := GenerateCacheVersion(dir, globs, nil)
		writeFile(t, dir, "extra.js", "x")
		v2, _ := GenerateCacheVersion(dir, globs, nil)
		if v1.Version == v2.Version {
			t.Error("version unchanged after adding a tracked file")
		}
	})

	t.Run("ignored files do not contribute", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "app.js", "one")

		all := []string{"**/*"}
		v1, _ := GenerateCacheVersion(dir, all, []string{"**/*.map"})
		writeFile(t, dir, "app.js.map", "sourcemap")
		v2, _ := GenerateCacheVersion(dir, all, []string{"**/*.map"})
		if v1.Version != v2.Version {
			t.Error("ignored file changed the version")
		}
	})
}
