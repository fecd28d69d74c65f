package caching

import "regexp"

// Pattern is either a glob string or a compiled regular expression.
// The zero value is an empty glob.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// Glob wraps a glob string as a Pattern.
func Glob(s string) Pattern {
	return Pattern{glob: s}
}

// Regex wraps a compiled regular expression as a Pattern.
func Regex(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// IsRegex reports whether the pattern is a compiled regular expression.
func (p Pattern) IsRegex() bool { return p.re != nil }

// Regexp returns the compiled expression, or nil for a glob pattern.
func (p Pattern) Regexp() *regexp.Regexp { return p.re }

// String returns the glob source, or the regex source for a regex pattern.
func (p Pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}
	return p.glob
}

// Key returns the structural identity used for deduplication: two patterns
// are duplicates iff their keys are equal (string equality for globs,
// source equality for regular expressions).
func (p Pattern) Key() string {
	if p.re != nil {
		return "re:" + p.re.String()
	}
	return "glob:" + p.glob
}

// Conditions narrows a route to specific request methods and origins.
// An empty slice means "no restriction".
type Conditions struct {
	Methods []string `yaml:"methods"`
	Origins []string `yaml:"origins"`
}

// Route binds a URL pattern to a caching strategy. A route is pure
// configuration and must not be mutated after it is handed to the resolver.
//
// Priority is optional: nil sorts after any explicit value, including
// negative ones. Dependencies, TTL and Conditions are only meaningful in
// advanced mode.
type Route struct {
	Pattern  Pattern
	Strategy Strategy

	Priority              *int
	CacheName             string // overrides Strategy.CacheName when set
	NetworkTimeoutSeconds int
	Expiration            *Expiration
	Headers               map[string]string

	Dependencies []string
	TTL          *Expiration
	Conditions   *Conditions
}

// Prio is a convenience for building routes with an explicit priority.
func Prio(n int) *int { return &n }

// GlobalConfig carries settings applied across every route.
type GlobalConfig struct {
	Version         string `yaml:"version"`
	CacheNamePrefix string `yaml:"cache_name_prefix"`
}

// VersioningConfig selects how cache versions are derived. A manual
// version always wins over auto versioning; this precedence is a
// documented resolution rule, not an error.
type VersioningConfig struct {
	ManualVersion  string `yaml:"manual_version"`
	AutoVersion    bool   `yaml:"auto_version"`
	AutoInvalidate bool   `yaml:"auto_invalidate"`
}

// DependencyConfig enables file tracking for content-derived versions.
type DependencyConfig struct {
	Enabled      bool     `yaml:"enabled"`
	TrackedFiles []string `yaml:"tracked_files"`
}

// InvalidationConfig excludes files from version computation.
type InvalidationConfig struct {
	IgnorePatterns []string `yaml:"ignore_patterns"`
}

// AdvancedConfig is the advanced caching block: extra routes with
// dependency/TTL/condition annotations plus versioning policy.
type AdvancedConfig struct {
	Routes       []Route
	Global       GlobalConfig
	Versioning   VersioningConfig
	Dependencies DependencyConfig
	Invalidation InvalidationConfig
}
