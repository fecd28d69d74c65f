// Package swgen assembles a final service-worker route table from a
// ServiceWorkerConfig and drives the precache build step: it merges the
// static/api/image/custom route classes with the advanced caching block,
// resolves ordering and deduplication through the routing resolver, and
// stamps the resolved cache version into every cache partition name.
package swgen

import (
	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

// Features toggles worker lifecycle behaviors.
type Features struct {
	SkipWaiting       bool `yaml:"skip_waiting"`
	ClientsClaim      bool `yaml:"clients_claim"`
	NavigationPreload bool `yaml:"navigation_preload"`
}

// OfflineConfig names the fallbacks served when cache and network both
// fail. The paths must be part of the precache set.
type OfflineConfig struct {
	FallbackPage  string `yaml:"fallback_page"`
	FallbackImage string `yaml:"fallback_image"`
}

// ServiceWorkerConfig is the fully-formed input to Generate, typically
// produced by a backend integration or the detection presets. The
// assembler treats it as opaque configuration.
type ServiceWorkerConfig struct {
	// Destination is the output path of the generated worker script.
	Destination string

	// GlobDirectory and GlobPatterns select the precache file set.
	GlobDirectory string
	GlobPatterns  []string
	GlobIgnores   []string

	StaticRoutes []caching.Route
	APIRoutes    []caching.Route
	ImageRoutes  []caching.Route
	CustomRoutes []caching.Route

	Advanced *caching.AdvancedConfig
	Offline  *OfflineConfig
	Features Features
}
