// Package config loads the universalpwa.yaml project file and turns it
// into the app metadata and ServiceWorkerConfig the generator runs on.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
	"github.com/julien-lin/UniversalPWA-sub002/internal/swgen"
)

// DefaultFileName is looked up in the project root when no config file
// is named explicitly.
const DefaultFileName = "universalpwa.yaml"

// FileConfig represents the top-level universalpwa.yaml structure.
type FileConfig struct {
	App      appConfig      `yaml:"app"`
	Output   outputConfig   `yaml:"output"`
	Precache precacheConfig `yaml:"precache"`
	Routes   []routeConfig  `yaml:"routes"`
	Advanced *advancedBlock `yaml:"advanced"`
	Offline  *offlineConfig `yaml:"offline"`
	Features swgen.Features `yaml:"features"`
}

type appConfig struct {
	Name            string `yaml:"name"`
	ShortName       string `yaml:"short_name"`
	Description     string `yaml:"description"`
	ThemeColor      string `yaml:"theme_color"`
	BackgroundColor string `yaml:"background_color"`
}

type outputConfig struct {
	Directory     string `yaml:"directory"`
	ServiceWorker string `yaml:"service_worker"`
	Manifest      string `yaml:"manifest"`
}

type precacheConfig struct {
	Patterns []string `yaml:"patterns"`
	Ignore   []string `yaml:"ignore"`
}

type routeConfig struct {
	Pattern               string              `yaml:"pattern"`
	Regex                 string              `yaml:"regex"`
	Strategy              string              `yaml:"strategy"`
	Preset                string              `yaml:"preset"`
	Priority              *int                `yaml:"priority"`
	CacheName             string              `yaml:"cache_name"`
	NetworkTimeoutSeconds int                 `yaml:"network_timeout_seconds"`
	Expiration            *caching.Expiration `yaml:"expiration"`
	Headers               map[string]string   `yaml:"headers"`
	Dependencies          []string            `yaml:"dependencies"`
	TTL                   *caching.Expiration `yaml:"ttl"`
	Conditions            *caching.Conditions `yaml:"conditions"`
}

type advancedBlock struct {
	Routes       []routeConfig              `yaml:"routes"`
	Global       caching.GlobalConfig       `yaml:"global"`
	Versioning   caching.VersioningConfig   `yaml:"versioning"`
	Dependencies caching.DependencyConfig   `yaml:"dependencies"`
	Invalidation caching.InvalidationConfig `yaml:"invalidation"`
}

type offlineConfig struct {
	FallbackPage  string `yaml:"fallback_page"`
	FallbackImage string `yaml:"fallback_image"`
}

// LoadFile reads, parses, and validates a YAML config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML config data.
func Parse(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks structural requirements. Per-route strategy and
// pattern problems are not rejected here: the resolver flags those and
// the assembler degrades them to warnings.
func validate(cfg *FileConfig) error {
	for i, r := range cfg.Routes {
		if err := validateRoute(i, r); err != nil {
			return err
		}
	}
	if cfg.Advanced != nil {
		for i, r := range cfg.Advanced.Routes {
			if err := validateRoute(i, r); err != nil {
				return fmt.Errorf("advanced: %w", err)
			}
		}
	}
	return nil
}

func validateRoute(i int, r routeConfig) error {
	if r.Pattern == "" && r.Regex == "" {
		return fmt.Errorf("route %d: one of pattern or regex is required", i)
	}
	if r.Pattern != "" && r.Regex != "" {
		return fmt.Errorf("route %d: pattern and regex are mutually exclusive", i)
	}
	if r.Strategy != "" && r.Preset != "" {
		return fmt.Errorf("route %d: strategy and preset are mutually exclusive", i)
	}
	return nil
}

// outputDir resolves the output directory against the project root.
func (cfg *FileConfig) outputDir(root string) string {
	dir := cfg.Output.Directory
	if dir == "" {
		return root
	}
	if !filepath.IsAbs(dir) {
		return filepath.Join(root, dir)
	}
	return dir
}

// ManifestPath resolves the manifest destination for a project root.
func (cfg *FileConfig) ManifestPath(root string) string {
	name := cfg.Output.Manifest
	if name == "" {
		name = "manifest.json"
	}
	return filepath.Join(cfg.outputDir(root), name)
}

// ServiceWorkerConfig builds the assembler input from the file config.
// File-declared routes go into CustomRoutes; the advanced block carries
// its own routes, versioning policy and invalidation settings.
func (cfg *FileConfig) ServiceWorkerConfig(root string) (swgen.ServiceWorkerConfig, error) {
	outDir := cfg.outputDir(root)
	swName := cfg.Output.ServiceWorker
	if swName == "" {
		swName = "sw.js"
	}

	sw := swgen.ServiceWorkerConfig{
		Destination:   filepath.Join(outDir, swName),
		GlobDirectory: root,
		GlobPatterns:  cfg.Precache.Patterns,
		GlobIgnores:   cfg.Precache.Ignore,
		Features:      cfg.Features,
	}
	if cfg.Offline != nil {
		sw.Offline = &swgen.OfflineConfig{
			FallbackPage:  cfg.Offline.FallbackPage,
			FallbackImage: cfg.Offline.FallbackImage,
		}
	}

	for i, rc := range cfg.Routes {
		route, err := buildRoute(rc)
		if err != nil {
			return swgen.ServiceWorkerConfig{}, fmt.Errorf("route %d: %w", i, err)
		}
		sw.CustomRoutes = append(sw.CustomRoutes, route)
	}

	if cfg.Advanced != nil {
		adv := &caching.AdvancedConfig{
			Global:       cfg.Advanced.Global,
			Versioning:   cfg.Advanced.Versioning,
			Dependencies: cfg.Advanced.Dependencies,
			Invalidation: cfg.Advanced.Invalidation,
		}
		for i, rc := range cfg.Advanced.Routes {
			route, err := buildRoute(rc)
			if err != nil {
				return swgen.ServiceWorkerConfig{}, fmt.Errorf("advanced route %d: %w", i, err)
			}
			adv.Routes = append(adv.Routes, route)
		}
		sw.Advanced = adv
	}
	return sw, nil
}

func buildRoute(rc routeConfig) (caching.Route, error) {
	route := caching.Route{
		Priority:              rc.Priority,
		CacheName:             rc.CacheName,
		NetworkTimeoutSeconds: rc.NetworkTimeoutSeconds,
		Expiration:            rc.Expiration,
		Headers:               rc.Headers,
		Dependencies:          rc.Dependencies,
		TTL:                   rc.TTL,
		Conditions:            rc.Conditions,
	}

	if rc.Regex != "" {
		re, err := regexp.Compile(rc.Regex)
		if err != nil {
			return caching.Route{}, fmt.Errorf("regex %q: %w", rc.Regex, err)
		}
		route.Pattern = caching.Regex(re)
	} else {
		route.Pattern = caching.Glob(rc.Pattern)
	}

	switch {
	case rc.Preset != "":
		strategy, err := presetStrategy(rc.Preset)
		if err != nil {
			return caching.Route{}, err
		}
		route.Strategy = strategy
	case rc.Strategy != "":
		// An unknown name maps to the zero kind; the resolver reports
		// it and the assembler drops the route with a warning.
		kind, _ := caching.ParseStrategyKind(rc.Strategy)
		route.Strategy = caching.Strategy{
			Kind:                  kind,
			CacheName:             rc.CacheName,
			NetworkTimeoutSeconds: rc.NetworkTimeoutSeconds,
			Expiration:            rc.Expiration,
		}
	default:
		route.Strategy = caching.StaticAssets()
	}
	return route, nil
}

func presetStrategy(name string) (caching.Strategy, error) {
	switch name {
	case "static-assets":
		return caching.StaticAssets(), nil
	case "api-endpoints":
		return caching.APIEndpoints(), nil
	case "images":
		return caching.Images(), nil
	default:
		return caching.Strategy{}, fmt.Errorf("unknown preset %q", name)
	}
}
