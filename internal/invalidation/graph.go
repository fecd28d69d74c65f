package invalidation

import (
	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
)

// DependencyGraph holds forward edges (route pattern → paths it depends
// on) and auto-derived reverse edges (path → route patterns depending on
// it). A graph is built fresh from a route list on every invocation;
// there is no long-lived graph state to go stale between runs.
type DependencyGraph struct {
	Dependencies map[string][]string
	Dependents   map[string][]string
}

// BuildDependencyGraph records an edge pair for every declared route
// dependency. Routes without dependencies contribute no edges.
func BuildDependencyGraph(routes []caching.Route) *DependencyGraph {
	g := &DependencyGraph{
		Dependencies: make(map[string][]string),
		Dependents:   make(map[string][]string),
	}
	for _, r := range routes {
		if len(r.Dependencies) == 0 {
			continue
		}
		pattern := r.Pattern.String()
		for _, dep := range r.Dependencies {
			g.Dependencies[pattern] = append(g.Dependencies[pattern], dep)
			g.Dependents[dep] = append(g.Dependents[dep], pattern)
		}
	}
	return g
}

// GetCascadeInvalidation walks the reverse edges from changedPath and
// returns every node whose output is affected, the start node included.
// Each node is visited at most once, so a dependency cycle terminates
// and yields each member exactly once.
func GetCascadeInvalidation(changedPath string, g *DependencyGraph) []string {
	visited := map[string]bool{changedPath: true}
	out := []string{changedPath}
	queue := []string{changedPath}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, dep := range g.Dependents[node] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}
	return out
}
