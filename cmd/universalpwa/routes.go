package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julien-lin/UniversalPWA-sub002/internal/caching"
	"github.com/julien-lin/UniversalPWA-sub002/internal/routing"
)

// cmdRoutes resolves URLs against the project's route table, or tests a
// single pattern against sample URLs with --pattern.
func cmdRoutes(args []string) error {
	pattern := ""
	var urls []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--pattern=") {
			pattern = arg[len("--pattern="):]
		} else if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("unknown flag: %s", arg)
		} else {
			urls = append(urls, arg)
		}
	}

	if pattern != "" {
		if len(urls) == 0 {
			return fmt.Errorf("usage: universalpwa routes --pattern=<glob> <url> [url...]")
		}
		results, err := routing.TestPattern(caching.Glob(pattern), urls)
		if err != nil {
			return err
		}
		fmt.Printf("Pattern: %s\n", pattern)
		for _, u := range urls {
			verdict := "no match"
			if results[u] {
				verdict = "MATCH"
			}
			fmt.Printf("  %-40s %s\n", u, verdict)
		}
		return nil
	}

	if len(urls) == 0 {
		return fmt.Errorf("usage: universalpwa routes <url> [url...] | --pattern=<glob> <url>...")
	}

	routes, err := projectRoutes()
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Printf("URL: %s\n", routing.NormalizeURL(u))
		best, ok := routing.FindBestMatch(u, routes)
		if !ok {
			fmt.Println("  NO ROUTE: request falls through to the network")
			continue
		}
		fmt.Printf("  BEST: %s -> %s (cache %q)\n",
			best.Pattern.String(), best.Strategy.Kind, cacheNameOf(best))
		for _, m := range routing.FindMatches(u, routes) {
			fmt.Printf("    match: %-30s priority=%s strategy=%s\n",
				m.Pattern.String(), priorityString(m.Priority), m.Strategy.Kind)
		}
	}
	return nil
}

// projectRoutes assembles the merged route list for the current project
// the same way generation does, without invoking the builder.
func projectRoutes() ([]caching.Route, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rootAbs, err := filepath.Abs(".")
	if err != nil {
		return nil, err
	}
	swCfg, _, _, err := resolveProject(context.Background(), cfg, rootAbs, discardLogger())
	if err != nil {
		return nil, err
	}

	routes := make([]caching.Route, 0,
		len(swCfg.StaticRoutes)+len(swCfg.APIRoutes)+len(swCfg.ImageRoutes)+len(swCfg.CustomRoutes))
	routes = append(routes, swCfg.StaticRoutes...)
	routes = append(routes, swCfg.APIRoutes...)
	routes = append(routes, swCfg.ImageRoutes...)
	routes = append(routes, swCfg.CustomRoutes...)
	if swCfg.Advanced != nil {
		routes = append(routes, swCfg.Advanced.Routes...)
	}
	routes = routing.Deduplicate(routes)
	return routing.SortByPriority(routes), nil
}

func cacheNameOf(r caching.Route) string {
	if r.CacheName != "" {
		return r.CacheName
	}
	return r.Strategy.CacheName
}

func priorityString(p *int) string {
	if p == nil {
		return "unset"
	}
	return fmt.Sprintf("%d", *p)
}
