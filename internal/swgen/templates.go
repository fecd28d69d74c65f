package swgen

import (
	"path/filepath"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

// TemplateFor returns the preset ServiceWorkerConfig for a detected
// architecture. The presets only differ in route emphasis: an SPA
// precaches aggressively and caches navigations, an SSR app leans on
// network-first navigations, and a static site is almost all
// cache-first. Backend integrations replace these wholesale.
func TemplateFor(architecture, root, destDir string) ServiceWorkerConfig {
	cfg := ServiceWorkerConfig{
		Destination:   filepath.Join(destDir, "sw.js"),
		GlobDirectory: root,
		GlobPatterns:  DefaultGlobPatterns,
		GlobIgnores:   []string{"**/*.map", "**/node_modules/**"},
		StaticRoutes: []caching.Route{
			{Pattern: caching.Glob("/assets/**"), Strategy: caching.StaticAssets(), Priority: caching.Prio(10)},
			{Pattern: caching.Glob("**/*.{js,css}"), Strategy: caching.StaticAssets(), Priority: caching.Prio(10)},
		},
		APIRoutes: []caching.Route{
			{Pattern: caching.Glob("/api/**"), Strategy: caching.APIEndpoints(), Priority: caching.Prio(20)},
		},
		ImageRoutes: []caching.Route{
			{Pattern: caching.Glob("**/*.{png,jpg,jpeg,gif,svg,webp,ico}"), Strategy: caching.Images(), Priority: caching.Prio(5)},
		},
		Features: Features{SkipWaiting: true, ClientsClaim: true},
	}

	switch architecture {
	case "spa":
		// Navigations resolve from the app shell.
		cfg.CustomRoutes = []caching.Route{
			{Pattern: caching.Glob("/"), Strategy: caching.Strategy{
				Kind:      caching.KindStaleWhileRevalidate,
				CacheName: "app-shell",
			}, Priority: caching.Prio(1)},
		}
	case "ssr":
		// Rendered pages go network-first so fresh markup wins.
		cfg.CustomRoutes = []caching.Route{
			{Pattern: caching.Glob("/**"), Strategy: caching.Strategy{
				Kind:                  caching.KindNetworkFirst,
				CacheName:             "pages",
				NetworkTimeoutSeconds: 5,
				Expiration:            &caching.Expiration{MaxEntries: 50, MaxAgeSeconds: 24 * 60 * 60},
			}, Priority: caching.Prio(1)},
		}
	default: // static
		cfg.CustomRoutes = []caching.Route{
			{Pattern: caching.Glob("/**"), Strategy: caching.Strategy{
				Kind:       caching.KindCacheFirst,
				CacheName:  "pages",
				Expiration: &caching.Expiration{MaxEntries: 100, MaxAgeSeconds: 7 * 24 * 60 * 60},
			}, Priority: caching.Prio(1)},
		}
	}
	return cfg
}
