package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

func TestParse(t *testing.T) {
	data := []byte(`
app:
  name: Example Shop
  short_name: Shop
  theme_color: "#112233"
output:
  directory: dist
  service_worker: service-worker.js
  manifest: site.webmanifest
precache:
  patterns:
    - "**/*.{js,css,html}"
  ignore:
    - "**/*.map"
routes:
  - pattern: "/api/**"
    strategy: NetworkFirst
    priority: 20
    network_timeout_seconds: 5
  - pattern: "/images/**"
    preset: images
advanced:
  global:
    cache_name_prefix: shop
  versioning:
    auto_version: true
    auto_invalidate: true
  dependencies:
    enabled: true
    tracked_files:
      - "**/*.js"
  invalidation:
    ignore_patterns:
      - "**/*.map"
  routes:
    - pattern: "/api/profile"
      strategy: NetworkFirst
      dependencies:
        - src/profile.ts
      ttl:
        max_age_seconds: 120
offline:
  fallback_page: /offline.html
features:
  skip_waiting: true
  clients_claim: true
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.App.Name != "Example Shop" || cfg.App.ThemeColor != "#112233" {
		t.Errorf("app block = %+v", cfg.App)
	}
	if len(cfg.Routes) != 2 {
		t.Fatalf("parsed %d routes, want 2", len(cfg.Routes))
	}
	if cfg.Routes[0].Priority == nil || *cfg.Routes[0].Priority != 20 {
		t.Errorf("route priority = %v, want 20", cfg.Routes[0].Priority)
	}
	if cfg.Advanced == nil || !cfg.Advanced.Versioning.AutoInvalidate {
		t.Error("advanced versioning block not parsed")
	}
	if !cfg.Features.SkipWaiting || !cfg.Features.ClientsClaim {
		t.Errorf("features = %+v", cfg.Features)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "route without pattern or regex",
			yaml: "routes:\n  - strategy: CacheFirst\n",
			want: "pattern or regex is required",
		},
		{
			name: "pattern and regex together",
			yaml: "routes:\n  - pattern: '/a'\n    regex: '^/a$'\n",
			want: "mutually exclusive",
		},
		{
			name: "strategy and preset together",
			yaml: "routes:\n  - pattern: '/a'\n    strategy: CacheFirst\n    preset: images\n",
			want: "mutually exclusive",
		},
		{
			name: "malformed yaml",
			yaml: "routes: [",
			want: "parse yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("app:\n  name: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.App.Name != "X" {
		t.Errorf("app name = %q", cfg.App.Name)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile on a missing file succeeded")
	}
}

func TestServiceWorkerConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
output:
  directory: build
routes:
  - pattern: "/api/**"
    strategy: NetworkFirst
  - regex: '^/v\d+/.*$'
    preset: api-endpoints
advanced:
  routes:
    - pattern: "/app.js"
      dependencies: ["src/app.ts"]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	sw, err := cfg.ServiceWorkerConfig("/proj")
	if err != nil {
		t.Fatalf("ServiceWorkerConfig: %v", err)
	}

	if want := filepath.Join("/proj", "build", "sw.js"); sw.Destination != want {
		t.Errorf("destination = %q, want %q", sw.Destination, want)
	}
	if sw.GlobDirectory != "/proj" {
		t.Errorf("glob directory = %q", sw.GlobDirectory)
	}
	if len(sw.CustomRoutes) != 2 {
		t.Fatalf("custom routes = %d, want 2", len(sw.CustomRoutes))
	}
	if !sw.CustomRoutes[1].Pattern.IsRegex() {
		t.Error("regex route lost its regex pattern")
	}
	if sw.CustomRoutes[1].Strategy.Kind != caching.KindNetworkFirst {
		t.Errorf("preset strategy kind = %v", sw.CustomRoutes[1].Strategy.Kind)
	}
	if sw.Advanced == nil || len(sw.Advanced.Routes) != 1 {
		t.Fatal("advanced routes not carried over")
	}
	if got := sw.Advanced.Routes[0].Dependencies; len(got) != 1 || got[0] != "src/app.ts" {
		t.Errorf("advanced route dependencies = %v", got)
	}
}

func TestServiceWorkerConfigErrors(t *testing.T) {
	t.Run("bad regex", func(t *testing.T) {
		cfg := &FileConfig{Routes: []routeConfig{{Regex: "([unclosed"}}}
		if _, err := cfg.ServiceWorkerConfig("/proj"); err == nil {
			t.Error("uncompilable regex accepted")
		}
	})

	t.Run("unknown preset", func(t *testing.T) {
		cfg := &FileConfig{Routes: []routeConfig{{Pattern: "/a", Preset: "nope"}}}
		if _, err := cfg.ServiceWorkerConfig("/proj"); err == nil {
			t.Error("unknown preset accepted")
		}
	})
}

func TestManifestPath(t *testing.T) {
	cfg := &FileConfig{}
	if got, want := cfg.ManifestPath("/proj"), filepath.Join("/proj", "manifest.json"); got != want {
		t.Errorf("default manifest path = %q, want %q", got, want)
	}

	cfg.Output.Directory = "dist"
	cfg.Output.Manifest = "site.webmanifest"
	if got, want := cfg.ManifestPath("/proj"), filepath.Join("/proj", "dist", "site.webmanifest"); got != want {
		t.Errorf("manifest path = %q, want %q", got, want)
	}
}

func TestDefaultStrategyIsStaticAssets(t *testing.T) {
	cfg, err := Parse([]byte("routes:\n  - pattern: '/x'\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sw, err := cfg.ServiceWorkerConfig("/proj")
	if err != nil {
		t.Fatalf("ServiceWorkerConfig: %v", err)
	}
	if sw.CustomRoutes[0].Strategy.Kind != caching.KindCacheFirst {
		t.Errorf("default strategy kind = %v, want CacheFirst", sw.CustomRoutes[0].Strategy.Kind)
	}
}
