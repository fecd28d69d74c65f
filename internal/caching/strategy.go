// Package caching defines the data model for runtime-caching strategies and
// route declarations: the five strategy kinds, expiration policy, preset
// strategies for common asset classes, and the Route/AdvancedConfig types
// consumed by the routing resolver and the service-worker assembler.
package caching

import "fmt"

// StrategyKind identifies one of the five recognized caching strategies.
type StrategyKind int

const (
	// KindUnknown is the zero value; it never passes validation.
	KindUnknown StrategyKind = iota
	KindCacheFirst
	KindNetworkFirst
	KindStaleWhileRevalidate
	KindNetworkOnly
	KindCacheOnly
)

// String returns the strategy name in the wire spelling understood by the
// precache builder ("CacheFirst", "NetworkFirst", ...).
func (k StrategyKind) String() string {
	switch k {
	case KindCacheFirst:
		return "CacheFirst"
	case KindNetworkFirst:
		return "NetworkFirst"
	case KindStaleWhileRevalidate:
		return "StaleWhileRevalidate"
	case KindNetworkOnly:
		return "NetworkOnly"
	case KindCacheOnly:
		return "CacheOnly"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// ParseStrategyKind maps a strategy name to its kind. Returns KindUnknown
// and false for anything outside the five recognized variants.
func ParseStrategyKind(name string) (StrategyKind, bool) {
	switch name {
	case "CacheFirst":
		return KindCacheFirst, true
	case "NetworkFirst":
		return KindNetworkFirst, true
	case "StaleWhileRevalidate":
		return KindStaleWhileRevalidate, true
	case "NetworkOnly":
		return KindNetworkOnly, true
	case "CacheOnly":
		return KindCacheOnly, true
	default:
		return KindUnknown, false
	}
}

// Expiration limits the number and age of entries in a cache partition.
type Expiration struct {
	MaxEntries    int `yaml:"max_entries" json:"maxEntries,omitempty"`
	MaxAgeSeconds int `yaml:"max_age_seconds" json:"maxAgeSeconds,omitempty"`
}

// Strategy is a fully-formed caching strategy: the kind, the cache
// partition it writes into, and its tuning knobs.
// NetworkTimeoutSeconds is meaningful only for NetworkFirst.
type Strategy struct {
	Kind                  StrategyKind
	CacheName             string
	NetworkTimeoutSeconds int
	Expiration            *Expiration
}

const (
	secondsPerDay = 24 * 60 * 60

	thirtyDays  = 30 * secondsPerDay
	fiveMinutes = 5 * 60
)

// StaticAssets is the preset for fingerprinted static assets: cache-first
// with a 30-day expiration.
func StaticAssets() Strategy {
	return Strategy{
		Kind:      KindCacheFirst,
		CacheName: "static-assets",
		Expiration: &Expiration{
			MaxEntries:    100,
			MaxAgeSeconds: thirtyDays,
		},
	}
}

// APIEndpoints is the preset for API calls: network-first with a 3-second
// network timeout and a 5-minute expiration.
func APIEndpoints() Strategy {
	return Strategy{
		Kind:                  KindNetworkFirst,
		CacheName:             "api-cache",
		NetworkTimeoutSeconds: 3,
		Expiration: &Expiration{
			MaxEntries:    50,
			MaxAgeSeconds: fiveMinutes,
		},
	}
}

// Images is the preset for images: stale-while-revalidate with a 30-day
// expiration.
func Images() Strategy {
	return Strategy{
		Kind:      KindStaleWhileRevalidate,
		CacheName: "images",
		Expiration: &Expiration{
			MaxEntries:    60,
			MaxAgeSeconds: thirtyDays,
		},
	}
}
