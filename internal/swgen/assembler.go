package swgen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
	"github.com/julien-lin/UniversalPWA-sub002/internal/invalidation"
	"github.com/julien-lin/UniversalPWA-sub002/internal/precache"
	"github.com/julien-lin/UniversalPWA-sub002/internal/routing"
)

// Builder is the external precache build boundary. Tests substitute it
// to capture the resolved route table without touching the filesystem.
type Builder func(ctx context.Context, req precache.Request) (*precache.Result, error)

// Options tunes a Generate run.
type Options struct {
	Logger  *slog.Logger
	Builder Builder
}

// Output is the result of one generation run: the builder's report
// surfaced verbatim, plus the resolved version and the warnings
// accumulated while assembling the route table.
type Output struct {
	SWPath    string
	Count     int
	Size      int64
	FilePaths []string
	Warnings  []string
	Version   *invalidation.CacheVersion
}

// DefaultGlobPatterns selects the usual precache candidates when the
// config does not name its own.
var DefaultGlobPatterns = []string{"**/*.{js,css,html}", "**/*.{png,svg,webp,ico}"}

// Generate performs the single-pass assembly: collect route classes,
// apply advanced overrides, drop malformed routes with a warning,
// deduplicate, sort, convert to the wire format, resolve the cache
// version and invoke the build step. Re-running over unchanged inputs
// and an unchanged tree produces identical output.
func Generate(ctx context.Context, cfg ServiceWorkerConfig, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	build := opts.Builder
	if build == nil {
		build = precache.Build
	}

	routes := collectRoutes(cfg)

	routes, warnings := dropInvalid(routes, logger)
	if cfg.Advanced != nil {
		routes = applyCachePrefix(routes, cfg.Advanced.Global.CacheNamePrefix)
	}
	routes = routing.Deduplicate(routes)
	routes = routing.SortByPriority(routes)

	version, err := resolveVersion(cfg)
	if err != nil {
		return nil, err
	}

	entries, err := routing.ToWorkboxFormat(routes)
	if err != nil {
		return nil, fmt.Errorf("assemble routes: %w", err)
	}

	req := precache.Request{
		GlobDirectory:     cfg.GlobDirectory,
		GlobPatterns:      cfg.GlobPatterns,
		GlobIgnores:       cfg.GlobIgnores,
		SWDest:            cfg.Destination,
		RuntimeCaching:    entries,
		Version:           version.Version,
		SkipWaiting:       cfg.Features.SkipWaiting,
		ClientsClaim:      cfg.Features.ClientsClaim,
		NavigationPreload: cfg.Features.NavigationPreload,
	}
	if len(req.GlobPatterns) == 0 {
		req.GlobPatterns = DefaultGlobPatterns
	}
	if cfg.Offline != nil {
		req.Offline = &precache.Offline{
			FallbackPage:  cfg.Offline.FallbackPage,
			FallbackImage: cfg.Offline.FallbackImage,
		}
	}

	logger.Info("building service worker",
		"dest", cfg.Destination,
		"routes", len(entries),
		"version", version.Version,
	)
	result, err := build(ctx, req)
	if err != nil {
		// Build failures surface verbatim; retries belong to the caller.
		return nil, err
	}

	return &Output{
		SWPath:    cfg.Destination,
		Count:     result.Count,
		Size:      result.Size,
		FilePaths: result.FilePaths,
		Warnings:  append(warnings, result.Warnings...),
		Version:   version,
	}, nil
}

// collectRoutes concatenates the route classes and folds the advanced
// routes in, applying each TTL override onto a copy of its route.
// Declared route values are never mutated.
func collectRoutes(cfg ServiceWorkerConfig) []caching.Route {
	n := len(cfg.StaticRoutes) + len(cfg.APIRoutes) + len(cfg.ImageRoutes) + len(cfg.CustomRoutes)
	routes := make([]caching.Route, 0, n)
	routes = append(routes, cfg.StaticRoutes...)
	routes = append(routes, cfg.APIRoutes...)
	routes = append(routes, cfg.ImageRoutes...)
	routes = append(routes, cfg.CustomRoutes...)
	if cfg.Advanced == nil {
		return routes
	}
	for _, r := range cfg.Advanced.Routes {
		if r.TTL != nil {
			// The override wins over both the route's own expiration
			// and the strategy preset default.
			r.Expiration = r.TTL
		}
		routes = append(routes, r)
	}
	return routes
}

// dropInvalid filters out routes flagged by ValidateRoute. A malformed
// route degrades to a warning so the rest of the worker still ships; it
// never aborts the run.
func dropInvalid(routes []caching.Route, logger *slog.Logger) ([]caching.Route, []string) {
	var warnings []string
	kept := make([]caching.Route, 0, len(routes))
	for i, r := range routes {
		problems := routing.ValidateRoute(r)
		if len(problems) == 0 {
			kept = append(kept, r)
			continue
		}
		for _, msg := range problems {
			warning := fmt.Sprintf("route %d (%s) dropped: %s", i, r.Pattern.String(), msg)
			warnings = append(warnings, warning)
			logger.Warn("dropping malformed route", "route", r.Pattern.String(), "problem", msg)
		}
	}
	return kept, warnings
}

// applyCachePrefix rewrites every route's resolved cache name with the
// configured prefix. The prefix is applied unconditionally, even when a
// name already happens to start with it.
func applyCachePrefix(routes []caching.Route, prefix string) []caching.Route {
	if prefix == "" {
		return routes
	}
	out := make([]caching.Route, len(routes))
	for i, r := range routes {
		name := r.CacheName
		if name == "" {
			name = r.Strategy.CacheName
		}
		r.CacheName = prefix + "-" + name
		out[i] = r
	}
	return out
}

// resolveVersion picks the cache version stamped into partition names.
// The versioning policy wins when configured (manual before auto); a
// bare Global.Version is used as-is; the default is the static "v1".
func resolveVersion(cfg ServiceWorkerConfig) (*invalidation.CacheVersion, error) {
	adv := cfg.Advanced
	if adv == nil {
		return &invalidation.CacheVersion{Version: "v1"}, nil
	}
	if adv.Versioning.ManualVersion != "" || (adv.Versioning.AutoVersion && adv.Dependencies.Enabled) {
		v, err := invalidation.GetOrGenerateCacheVersion(cfg.GlobDirectory, *adv)
		if err != nil {
			return nil, fmt.Errorf("resolve cache version: %w", err)
		}
		return v, nil
	}
	if adv.Global.Version != "" {
		return &invalidation.CacheVersion{Version: adv.Global.Version}, nil
	}
	return &invalidation.CacheVersion{Version: "v1"}, nil
}
