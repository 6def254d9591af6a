package config

import (
	"strings"
	"time"
)

// CacheConfig defines the staleness windows of the entity caches.  A
// collection older than its window is served once more and refetched in
// the background.  Windows are set per resource with CACHE_TTL_<RESOURCE>
// (e.g. CACHE_TTL_MENU_ITEMS=2m); CACHE_TTL is the fallback.
type CacheConfig struct {
	Default time.Duration
	TTL     map[string]time.Duration
}

// cacheResources lists the resources with their default windows.  Call
// history changes with every phone call so it goes stale fastest.
var cacheResources = map[string]time.Duration{
	"categories": 5 * time.Minute,
	"menu-items": 5 * time.Minute,
	"modifiers":  5 * time.Minute,
	"zones":      5 * time.Minute,
	"hours":      5 * time.Minute,
	"calls":      1 * time.Minute,
}

// LoadCacheConfig reads CACHE_TTL and the per-resource overrides.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Default: envDur("CACHE_TTL", 5*time.Minute),
		TTL:     make(map[string]time.Duration, len(cacheResources)),
	}
	for res, def := range cacheResources {
		key := "CACHE_TTL_" + strings.ToUpper(strings.ReplaceAll(res, "-", "_"))
		cfg.TTL[res] = envDur(key, def)
	}
	return cfg
}

// For returns the staleness window of resource, falling back to Default.
func (c CacheConfig) For(resource string) time.Duration {
	if d, ok := c.TTL[resource]; ok && d > 0 {
		return d
	}
	if c.Default > 0 {
		return c.Default
	}
	return 5 * time.Minute
}
