// Package precache is the build step that turns a resolved routing table
// into a deployable service worker: it enumerates the precache file set,
// computes content revisions, renders the worker script, syntax-checks it
// and writes it to the destination.
package precache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/julien-lin/UniversalPWA-sub002/internal/invalidation"
	"github.com/julien-lin/UniversalPWA-sub002/internal/routing"
)

// Offline configures navigation and image fallbacks served when both the
// cache and the network fail.
type Offline struct {
	FallbackPage  string
	FallbackImage string
}

// Request is the input to a build: which files to precache, where to
// write the worker, and the resolved runtime-caching table.
type Request struct {
	GlobDirectory  string
	GlobPatterns   []string
	GlobIgnores    []string
	SWDest         string
	RuntimeCaching []routing.WorkboxEntry
	Offline        *Offline
	Version        string

	SkipWaiting       bool
	ClientsClaim      bool
	NavigationPreload bool
}

// Result reports what the build produced.
type Result struct {
	Count     int
	Size      int64
	Warnings  []string
	FilePaths []string
}

type manifestEntry struct {
	URL      string `json:"url"`
	Revision string `json:"revision"`
}

// Build enumerates the precache set, renders sw.js and writes it
// atomically. Unreadable files degrade to warnings; a script that fails
// the syntax check or a destination that cannot be written is an error.
func Build(ctx context.Context, req Request) (*Result, error) {
	if req.SWDest == "" {
		return nil, fmt.Errorf("precache: no destination configured")
	}

	root, err := filepath.Abs(req.GlobDirectory)
	if err != nil {
		return nil, fmt.Errorf("precache: resolve directory %q: %w", req.GlobDirectory, err)
	}
	files, err := invalidation.GetTrackedFiles(root, req.GlobPatterns, excludeDest(root, req.SWDest, req.GlobIgnores))
	if err != nil {
		return nil, fmt.Errorf("precache: %w", err)
	}

	result := &Result{}
	manifest := make([]manifestEntry, 0, len(files))
	for _, abs := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		hash, err := invalidation.HashFile(abs)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping unreadable file %s: %v", rel, err))
			continue
		}
		if fi, err := os.Stat(abs); err == nil {
			result.Size += fi.Size()
		}
		manifest = append(manifest, manifestEntry{
			URL:      "/" + filepath.ToSlash(rel),
			Revision: hash[:8],
		})
	}
	result.Count = len(manifest)

	script, err := renderWorker(req, manifest)
	if err != nil {
		return nil, err
	}
	if _, err := goja.Compile(filepath.Base(req.SWDest), script, false); err != nil {
		return nil, fmt.Errorf("precache: generated worker does not parse: %w", err)
	}

	if err := writeAtomic(req.SWDest, []byte(script)); err != nil {
		return nil, fmt.Errorf("precache: write %s: %w", req.SWDest, err)
	}
	result.FilePaths = append(result.FilePaths, req.SWDest)
	return result, nil
}

// excludeDest appends the worker's own root-relative path to the ignore
// globs when the destination lies inside the glob directory. Without
// this a rebuild would precache the previous worker, embedding its hash
// and changing the output on every run over an unchanged tree.
func excludeDest(root, swDest string, ignores []string) []string {
	dest, err := filepath.Abs(swDest)
	if err != nil {
		return ignores
	}
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ignores
	}
	out := make([]string, 0, len(ignores)+1)
	out = append(out, ignores...)
	return append(out, filepath.ToSlash(rel))
}

// writeAtomic writes into a temp file in the destination directory and
// renames it into place so readers never observe a partial script.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// swRoute is the JSON shape of one runtime-caching rule inside the
// generated script. The pattern is a regular-expression source string
// compiled by the worker at startup.
type swRoute struct {
	Pattern               string   `json:"pattern"`
	Handler               string   `json:"handler"`
	CacheName             string   `json:"cacheName"`
	NetworkTimeoutSeconds int      `json:"networkTimeoutSeconds,omitempty"`
	MaxEntries            int      `json:"maxEntries,omitempty"`
	MaxAgeSeconds         int      `json:"maxAgeSeconds,omitempty"`
	Methods               []string `json:"methods,omitempty"`
	Origins               []string `json:"origins,omitempty"`
}

type swConfig struct {
	Version           string          `json:"version"`
	Precache          []manifestEntry `json:"precache"`
	Routes            []swRoute       `json:"routes"`
	FallbackPage      string          `json:"fallbackPage,omitempty"`
	FallbackImage     string          `json:"fallbackImage,omitempty"`
	SkipWaiting       bool            `json:"skipWaiting"`
	ClientsClaim      bool            `json:"clientsClaim"`
	NavigationPreload bool            `json:"navigationPreload"`
}

func renderWorker(req Request, manifest []manifestEntry) (string, error) {
	cfg := swConfig{
		Version:           req.Version,
		Precache:          manifest,
		SkipWaiting:       req.SkipWaiting,
		ClientsClaim:      req.ClientsClaim,
		NavigationPreload: req.NavigationPreload,
	}
	if req.Offline != nil {
		cfg.FallbackPage = req.Offline.FallbackPage
		cfg.FallbackImage = req.Offline.FallbackImage
	}
	for _, e := range req.RuntimeCaching {
		r := swRoute{
			Pattern:               e.URLPattern.String(),
			Handler:               e.Handler,
			CacheName:             e.Options.CacheName,
			NetworkTimeoutSeconds: e.Options.NetworkTimeoutSeconds,
			Methods:               e.Options.Methods,
			Origins:               e.Options.Origins,
		}
		if exp := e.Options.Expiration; exp != nil {
			r.MaxEntries = exp.MaxEntries
			r.MaxAgeSeconds = exp.MaxAgeSeconds
		}
		cfg.Routes = append(cfg.Routes, r)
	}

	blob, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("precache: encode worker config: %w", err)
	}
	return "const SW_CONFIG = " + string(blob) + ";\n\n" + workerRuntime, nil
}
