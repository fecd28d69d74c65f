package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
	"github.com/julien-lin/UniversalPWA-sub002/internal/config"
	"github.com/julien-lin/UniversalPWA-sub002/internal/detect"
	"github.com/julien-lin/UniversalPWA-sub002/internal/invalidation"
	"github.com/julien-lin/UniversalPWA-sub002/internal/manifest"
	"github.com/julien-lin/UniversalPWA-sub002/internal/precache"
	"github.com/julien-lin/UniversalPWA-sub002/internal/store"
	"github.com/julien-lin/UniversalPWA-sub002/internal/store/sqlite"
	"github.com/julien-lin/UniversalPWA-sub002/internal/swgen"
)

func cmdGenerate(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := "."
	dryRun := false
	versionFile := ""
	for _, arg := range args {
		switch {
		case arg == "--dry-run":
			dryRun = true
		case strings.HasPrefix(arg, "--config="):
			cfg.ConfigFile = arg[len("--config="):]
		case strings.HasPrefix(arg, "--version-file="):
			versionFile = arg[len("--version-file="):]
		case !strings.HasPrefix(arg, "-"):
			root = arg
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}

	swCfg, defaults, manifestPath, err := resolveProject(ctx, cfg, rootAbs, logger)
	if err != nil {
		return err
	}

	if dryRun {
		return generateDryRun(ctx, swCfg, logger)
	}

	db, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Compare the stored version against the current tree before
	// building; the decision is informational here since a rebuild is
	// cheap, but it surfaces what changed and why caches will roll.
	if swCfg.Advanced != nil && swCfg.Advanced.Versioning.AutoInvalidate {
		if prev := previousVersion(ctx, db, rootAbs); prev != nil {
			decision, err := invalidation.ShouldInvalidateCache(rootAbs, prev, *swCfg.Advanced)
			if err != nil {
				return err
			}
			if decision.ShouldInvalidate {
				logger.Info("cache invalidation required",
					"reason", decision.Reason,
					"new_version", decision.NewVersion,
					"changed_files", len(decision.ChangedFiles),
				)
				if affected := cascadedRoutes(rootAbs, decision.ChangedFiles, swCfg.Advanced.Routes); len(affected) > 0 {
					logger.Info("cascade invalidation", "routes", affected)
				}
			} else {
				logger.Info("caches are current", "version", prev.Version)
			}
		}
	}

	merged, err := manifest.Merge(manifestPath, defaults)
	if err != nil {
		return err
	}
	if err := manifest.Write(manifestPath, merged); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	out, err := swgen.Generate(ctx, swCfg, swgen.Options{Logger: logger})
	if err != nil {
		return err
	}

	gen := &store.Generation{
		ProjectRoot: rootAbs,
		Version:     out.Version.Version,
		Timestamp:   out.Version.Timestamp,
		FileHashes:  out.Version.FileHashes,
		SWPath:      out.SWPath,
		Count:       out.Count,
		Size:        out.Size,
	}
	if err := db.SaveGeneration(ctx, gen); err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	if versionFile != "" {
		if err := writeVersionFile(versionFile, out.Version); err != nil {
			return err
		}
	}

	fmt.Printf("Generated PWA artifacts for %s\n", rootAbs)
	fmt.Printf("  manifest:       %s\n", manifestPath)
	fmt.Printf("  service worker: %s\n", out.SWPath)
	fmt.Printf("  cache version:  %s\n", out.Version.Version)
	fmt.Printf("  precached:      %d files (%d bytes)\n", out.Count, out.Size)
	for _, w := range out.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

// resolveProject loads universalpwa.yaml when present, and otherwise
// falls back to framework detection and the matching preset template.
// Returns the assembler input, the manifest defaults and the manifest
// destination.
func resolveProject(ctx context.Context, cfg *Config, rootAbs string, logger *slog.Logger) (swgen.ServiceWorkerConfig, *manifest.Manifest, string, error) {
	path := cfg.ConfigFile
	if path == "" {
		path = filepath.Join(rootAbs, config.DefaultFileName)
	}
	if _, err := os.Stat(path); err == nil {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return swgen.ServiceWorkerConfig{}, nil, "", err
		}
		swCfg, err := fileCfg.ServiceWorkerConfig(rootAbs)
		if err != nil {
			return swgen.ServiceWorkerConfig{}, nil, "", err
		}
		logger.Info("loaded config", "file", path)

		name := fileCfg.App.Name
		if name == "" {
			name = filepath.Base(rootAbs)
		}
		defaults := manifest.Default(name, fileCfg.App.ShortName)
		defaults.Description = fileCfg.App.Description
		if fileCfg.App.ThemeColor != "" {
			defaults.ThemeColor = fileCfg.App.ThemeColor
		}
		if fileCfg.App.BackgroundColor != "" {
			defaults.BackgroundColor = fileCfg.App.BackgroundColor
		}
		return swCfg, defaults, fileCfg.ManifestPath(rootAbs), nil
	}

	detection, err := detect.Detect(ctx, rootAbs)
	if err != nil {
		return swgen.ServiceWorkerConfig{}, nil, "", fmt.Errorf("detect framework: %w", err)
	}
	logger.Info("detected project",
		"framework", detection.Framework,
		"architecture", detection.Architecture,
		"confidence", detection.Confidence,
	)
	swCfg := swgen.TemplateFor(detection.Architecture, rootAbs, rootAbs)
	defaults := manifest.Default(filepath.Base(rootAbs), "")
	return swCfg, defaults, filepath.Join(rootAbs, "manifest.json"), nil
}

// generateDryRun builds the worker into a scratch location and prints a
// unified diff against the current artifact instead of writing anything.
func generateDryRun(ctx context.Context, swCfg swgen.ServiceWorkerConfig, logger *slog.Logger) error {
	dest := swCfg.Destination
	scratch := filepath.Join(os.TempDir(), fmt.Sprintf("universalpwa-dryrun-%d.js", os.Getpid()))
	defer os.Remove(scratch)

	// Rendering into the scratch path would otherwise sweep the real
	// worker into the precache set; keep it excluded like a live build.
	var extraIgnore string
	if root, err := filepath.Abs(swCfg.GlobDirectory); err == nil {
		if destAbs, err := filepath.Abs(dest); err == nil {
			if rel, err := filepath.Rel(root, destAbs); err == nil && !strings.HasPrefix(rel, "..") {
				extraIgnore = filepath.ToSlash(rel)
			}
		}
	}
	capture := func(ctx context.Context, req precache.Request) (*precache.Result, error) {
		if extraIgnore != "" {
			req.GlobIgnores = append(req.GlobIgnores, extraIgnore)
		}
		req.SWDest = scratch
		return precache.Build(ctx, req)
	}
	out, err := swgen.Generate(ctx, swCfg, swgen.Options{Logger: logger, Builder: capture})
	if err != nil {
		return err
	}

	generated, err := os.ReadFile(scratch)
	if err != nil {
		return fmt.Errorf("read generated worker: %w", err)
	}
	current, err := os.ReadFile(dest)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read current worker: %w", err)
	}

	fmt.Printf("Dry-run: %s (version %s, %d precached files)\n\n", dest, out.Version.Version, out.Count)
	if string(current) == string(generated) {
		fmt.Println("No changes.")
		return nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: dest + " (current)",
		ToFile:   dest + " (generated)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("compute diff: %w", err)
	}
	fmt.Print(text)
	return nil
}

// cascadedRoutes walks the declared route dependencies and returns the
// sorted set of route patterns whose caches roll because of the changed
// files. Changed paths arrive absolute; dependencies are declared
// root-relative, so paths are rebased before the graph walk.
func cascadedRoutes(rootAbs string, changedFiles []string, routes []caching.Route) []string {
	graph := invalidation.BuildDependencyGraph(routes)
	affected := make(map[string]bool)
	for _, abs := range changedFiles {
		rel := abs
		if r, err := filepath.Rel(rootAbs, abs); err == nil {
			rel = filepath.ToSlash(r)
		}
		for _, node := range invalidation.GetCascadeInvalidation(rel, graph) {
			if node != rel {
				affected[node] = true
			}
		}
	}
	out := make([]string, 0, len(affected))
	for pattern := range affected {
		out = append(out, pattern)
	}
	sort.Strings(out)
	return out
}

func previousVersion(ctx context.Context, db *sqlite.DB, rootAbs string) *invalidation.CacheVersion {
	gen, err := db.LatestGeneration(ctx, rootAbs)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("loading previous generation failed", "error", err)
		}
		return nil
	}
	return &invalidation.CacheVersion{
		Version:    gen.Version,
		Timestamp:  gen.Timestamp,
		FileHashes: gen.FileHashes,
	}
}

// writeVersionFile exports the run's CacheVersion as a JSON sidecar in
// the {version, timestamp, fileHashes} wire format.
func writeVersionFile(path string, v *invalidation.CacheVersion) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode version file: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	return nil
}
