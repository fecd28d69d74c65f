// Package detect identifies a web project's framework and architecture
// by sniffing well-known files. The result only selects which preset
// service-worker template generation starts from; nothing in the caching
// core depends on it.
package detect

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Confidence grades how strong the detection indicators were.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Detection is the outcome of a project scan.
type Detection struct {
	Architecture string // "static", "spa" or "ssr"
	Framework    string
	Confidence   Confidence
	Indicators   []string
}

// probe checks one framework's markers. Probes see a pre-read snapshot
// of the project's manifest files and do their own existence checks.
type probe struct {
	framework    string
	architecture string
	check        func(p *project) (Confidence, []string)
}

// project is the read-once view probes run against.
type project struct {
	root         string
	npmDeps      map[string]string
	composerDeps map[string]string
	requirements string
}

func (p *project) fileExists(rel string) bool {
	fi, err := os.Stat(filepath.Join(p.root, rel))
	return err == nil && !fi.IsDir()
}

func (p *project) anyFile(rels ...string) (string, bool) {
	for _, rel := range rels {
		if p.fileExists(rel) {
			return rel, true
		}
	}
	return "", false
}

func (p *project) hasNpmDep(name string) bool {
	_, ok := p.npmDeps[name]
	return ok
}

func (p *project) hasComposerDep(prefix string) bool {
	for name := range p.composerDeps {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (p *project) hasRequirement(name string) bool {
	for _, line := range strings.Split(p.requirements, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == name || strings.HasPrefix(line, name+"=") ||
			strings.HasPrefix(line, name+">") || strings.HasPrefix(line, name+"[") {
			return true
		}
	}
	return false
}

// probes are ordered most specific first; the first hit above low
// confidence wins and metaframeworks are checked before their base
// libraries.
var probes = []probe{
	{"next", "ssr", func(p *project) (Confidence, []string) {
		if rel, ok := p.anyFile("next.config.js", "next.config.mjs", "next.config.ts"); ok {
			return ConfidenceHigh, []string{rel}
		}
		if p.hasNpmDep("next") {
			return ConfidenceMedium, []string{"package.json: next"}
		}
		return "", nil
	}},
	{"nuxt", "ssr", func(p *project) (Confidence, []string) {
		if rel, ok := p.anyFile("nuxt.config.js", "nuxt.config.ts"); ok {
			return ConfidenceHigh, []string{rel}
		}
		if p.hasNpmDep("nuxt") {
			return ConfidenceMedium, []string{"package.json: nuxt"}
		}
		return "", nil
	}},
	{"angular", "spa", func(p *project) (Confidence, []string) {
		if p.fileExists("angular.json") {
			return ConfidenceHigh, []string{"angular.json"}
		}
		return "", nil
	}},
	{"vue", "spa", func(p *project) (Confidence, []string) {
		if p.hasNpmDep("vue") {
			return ConfidenceMedium, []string{"package.json: vue"}
		}
		return "", nil
	}},
	{"react", "spa", func(p *project) (Confidence, []string) {
		if p.hasNpmDep("react") {
			return ConfidenceMedium, []string{"package.json: react"}
		}
		return "", nil
	}},
	{"django", "ssr", func(p *project) (Confidence, []string) {
		if p.fileExists("manage.py") {
			return ConfidenceHigh, []string{"manage.py"}
		}
		if p.hasRequirement("django") {
			return ConfidenceMedium, []string{"requirements.txt: django"}
		}
		return "", nil
	}},
	{"fastapi", "ssr", func(p *project) (Confidence, []string) {
		if p.hasRequirement("fastapi") {
			return ConfidenceMedium, []string{"requirements.txt: fastapi"}
		}
		return "", nil
	}},
	{"flask", "ssr", func(p *project) (Confidence, []string) {
		if p.hasRequirement("flask") {
			return ConfidenceMedium, []string{"requirements.txt: flask"}
		}
		return "", nil
	}},
	{"laravel", "ssr", func(p *project) (Confidence, []string) {
		if p.fileExists("artisan") {
			return ConfidenceHigh, []string{"artisan"}
		}
		if p.hasComposerDep("laravel/") {
			return ConfidenceMedium, []string{"composer.json: laravel"}
		}
		return "", nil
	}},
	{"symfony", "ssr", func(p *project) (Confidence, []string) {
		if p.hasComposerDep("symfony/framework") {
			return ConfidenceMedium, []string{"composer.json: symfony"}
		}
		return "", nil
	}},
}

// Detect scans the project root and returns the best-matching framework
// and architecture. Probes run concurrently; tie-breaks follow probe
// order, so metaframeworks beat the libraries they build on. A project
// with none of the markers falls back to a static site.
func Detect(ctx context.Context, root string) (*Detection, error) {
	proj, err := loadProject(root)
	if err != nil {
		return nil, err
	}

	type hit struct {
		confidence Confidence
		indicators []string
	}
	hits := make([]hit, len(probes))

	g, _ := errgroup.WithContext(ctx)
	for i := range probes {
		g.Go(func() error {
			conf, ind := probes[i].check(proj)
			hits[i] = hit{confidence: conf, indicators: ind}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := -1
	for i, h := range hits {
		if h.confidence == "" {
			continue
		}
		if best == -1 || rank(h.confidence) > rank(hits[best].confidence) {
			best = i
		}
	}
	if best >= 0 {
		return &Detection{
			Architecture: probes[best].architecture,
			Framework:    probes[best].framework,
			Confidence:   hits[best].confidence,
			Indicators:   hits[best].indicators,
		}, nil
	}

	d := &Detection{Architecture: "static", Framework: "static", Confidence: ConfidenceLow}
	if proj.fileExists("index.html") {
		d.Confidence = ConfidenceMedium
		d.Indicators = []string{"index.html"}
	}
	return d, nil
}

func rank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

func loadProject(root string) (*project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	p := &project{root: abs}

	if data, err := os.ReadFile(filepath.Join(abs, "package.json")); err == nil {
		var pkg struct {
			Dependencies    map[string]string `json:"dependencies"`
			DevDependencies map[string]string `json:"devDependencies"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			p.npmDeps = make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
			for k, v := range pkg.Dependencies {
				p.npmDeps[k] = v
			}
			for k, v := range pkg.DevDependencies {
				p.npmDeps[k] = v
			}
		}
	}
	if data, err := os.ReadFile(filepath.Join(abs, "composer.json")); err == nil {
		var pkg struct {
			Require map[string]string `json:"require"`
		}
		if json.Unmarshal(data, &pkg) == nil {
			p.composerDeps = pkg.Require
		}
	}
	if data, err := os.ReadFile(filepath.Join(abs, "requirements.txt")); err == nil {
		p.requirements = string(data)
	}
	return p, nil
}
