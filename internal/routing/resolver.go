// Package routing resolves declarative route-to-strategy mappings into a
// deterministic, priority-ordered, deduplicated routing table. All
// operations are pure over their inputs; compiled glob patterns are
// memoized behind a small shared cache.
package routing

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/julien-lin/UniversalPWA-sub002/internal/cache"
	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

// compiled memoizes glob-to-regex compilation. Routes repeat the same
// handful of patterns across classes, so the hit rate is high.
var compiled = cache.New[string, *regexp.Regexp](256, 0)

// compileGlob returns the anchored expression for a glob, memoized.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	return compiled.GetOrLoad(pattern, func() (*regexp.Regexp, error) {
		return GlobToRegex(pattern)
	})
}

// Matches tests url against a pattern. A regex pattern is tested
// directly; a glob pattern is compiled first.
func Matches(url string, p caching.Pattern) (bool, error) {
	if p.IsRegex() {
		return p.Regexp().MatchString(url), nil
	}
	re, err := compileGlob(p.String())
	if err != nil {
		return false, fmt.Errorf("compile pattern %q: %w", p.String(), err)
	}
	return re.MatchString(url), nil
}

// priorityLess orders two optional priorities descending. An unset
// priority sorts after any explicit value, including negative ones.
func priorityLess(a, b *int) (less, equal bool) {
	switch {
	case a != nil && b != nil:
		return *a > *b, *a == *b
	case a != nil:
		return true, false
	case b != nil:
		return false, false
	default:
		return false, true
	}
}

// specific reports whether a pattern is a wildcard-free glob string.
// Regex patterns count as non-specific.
func specific(p caching.Pattern) bool {
	return !p.IsRegex() && globSpecific(p.String())
}

// SortByPriority returns the routes in descending priority order. The
// sort is stable; among equal priorities a wildcard-free glob sorts
// before a pattern containing "*" (most specific wins when priority does
// not disambiguate).
func SortByPriority(routes []caching.Route) []caching.Route {
	out := make([]caching.Route, len(routes))
	copy(out, routes)
	sort.SliceStable(out, func(i, j int) bool {
		less, equal := priorityLess(out[i].Priority, out[j].Priority)
		if !equal {
			return less
		}
		si, sj := specific(out[i].Pattern), specific(out[j].Pattern)
		return si && !sj
	})
	return out
}

// Deduplicate removes routes whose patterns are structurally equal,
// keeping the entry with the highest priority at the position of the
// first occurrence.
func Deduplicate(routes []caching.Route) []caching.Route {
	index := make(map[string]int, len(routes))
	out := make([]caching.Route, 0, len(routes))
	for _, r := range routes {
		key := r.Pattern.Key()
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		if less, _ := priorityLess(r.Priority, out[at].Priority); less {
			out[at] = r
		}
	}
	return out
}

// FindBestMatch normalizes url, evaluates every route against it and
// returns the matching route with the highest priority. Ties resolve to
// the earliest route in input order. The second result is false when
// nothing matches.
func FindBestMatch(url string, routes []caching.Route) (caching.Route, bool) {
	url = NormalizeURL(url)
	var best caching.Route
	found := false
	for _, r := range routes {
		ok, err := Matches(url, r.Pattern)
		if err != nil || !ok {
			continue
		}
		if !found {
			best, found = r, true
			continue
		}
		if less, _ := priorityLess(r.Priority, best.Priority); less {
			best = r
		}
	}
	return best, found
}

// FindMatches returns every route matching url, sorted by priority.
func FindMatches(url string, routes []caching.Route) []caching.Route {
	url = NormalizeURL(url)
	var out []caching.Route
	for _, r := range routes {
		if ok, err := Matches(url, r.Pattern); err == nil && ok {
			out = append(out, r)
		}
	}
	return SortByPriority(out)
}

// WorkboxOptions is the options bag attached to a wire route entry.
type WorkboxOptions struct {
	CacheName             string
	Expiration            *caching.Expiration
	NetworkTimeoutSeconds int
	Headers               map[string]string
	Methods               []string
	Origins               []string
}

// WorkboxEntry is a resolved route in the shape consumed by the precache
// build step: a compiled expression, a strategy handler name, and options.
type WorkboxEntry struct {
	URLPattern *regexp.Regexp
	Handler    string
	Options    WorkboxOptions
}

// ToWorkboxFormat converts routes to wire entries. The cache name is the
// route override when set, the strategy's name otherwise; the network
// timeout is carried only for NetworkFirst. Callers are expected to have
// run ValidatePatterns first; an uncompilable glob here is an error.
func ToWorkboxFormat(routes []caching.Route) ([]WorkboxEntry, error) {
	out := make([]WorkboxEntry, 0, len(routes))
	for _, r := range routes {
		re := r.Pattern.Regexp()
		if re == nil {
			var err error
			re, err = compileGlob(r.Pattern.String())
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q: %w", r.Pattern.String(), err)
			}
		}
		entry := WorkboxEntry{
			URLPattern: re,
			Handler:    r.Strategy.Kind.String(),
			Options: WorkboxOptions{
				CacheName:  resolveCacheName(r),
				Expiration: resolveExpiration(r),
				Headers:    r.Headers,
			},
		}
		if r.Strategy.Kind == caching.KindNetworkFirst {
			entry.Options.NetworkTimeoutSeconds = resolveNetworkTimeout(r)
		}
		if r.Conditions != nil {
			entry.Options.Methods = r.Conditions.Methods
			entry.Options.Origins = r.Conditions.Origins
		}
		out = append(out, entry)
	}
	return out, nil
}

func resolveCacheName(r caching.Route) string {
	if r.CacheName != "" {
		return r.CacheName
	}
	return r.Strategy.CacheName
}

func resolveExpiration(r caching.Route) *caching.Expiration {
	if r.Expiration != nil {
		return r.Expiration
	}
	return r.Strategy.Expiration
}

func resolveNetworkTimeout(r caching.Route) int {
	if r.NetworkTimeoutSeconds > 0 {
		return r.NetworkTimeoutSeconds
	}
	return r.Strategy.NetworkTimeoutSeconds
}

// ValidateRoute checks a single route and returns one message per
// problem: an empty pattern, a glob that does not compile, or a strategy
// outside the five recognized kinds.
func ValidateRoute(r caching.Route) []string {
	var errs []string
	if !r.Pattern.IsRegex() {
		if r.Pattern.String() == "" {
			errs = append(errs, "empty pattern")
		} else if _, err := compileGlob(r.Pattern.String()); err != nil {
			errs = append(errs, fmt.Sprintf("pattern %q does not compile: %v", r.Pattern.String(), err))
		}
	}
	switch r.Strategy.Kind {
	case caching.KindCacheFirst, caching.KindNetworkFirst,
		caching.KindStaleWhileRevalidate, caching.KindNetworkOnly,
		caching.KindCacheOnly:
	default:
		errs = append(errs, fmt.Sprintf("unknown caching strategy %q", r.Strategy.Kind.String()))
	}
	return errs
}

// ValidatePatterns checks every route and returns the problems found,
// each prefixed with the route's index and pattern. An empty result
// means all routes are usable.
func ValidatePatterns(routes []caching.Route) []string {
	var errs []string
	for i, r := range routes {
		for _, msg := range ValidateRoute(r) {
			errs = append(errs, fmt.Sprintf("route %d (%s): %s", i, r.Pattern.String(), msg))
		}
	}
	return errs
}

// TestPattern runs one pattern against many sample URLs, reporting which
// of them match. Diagnostic helper for the routes subcommand and tests.
func TestPattern(pattern caching.Pattern, urls []string) (map[string]bool, error) {
	out := make(map[string]bool, len(urls))
	for _, u := range urls {
		ok, err := Matches(NormalizeURL(u), pattern)
		if err != nil {
			return nil, err
		}
		out[u] = ok
	}
	return out, nil
}
