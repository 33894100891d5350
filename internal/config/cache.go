package config

import "time"

// CacheConfig controls the Redis cache-aside layer in front of
// reservation reads.  Caching is skipped when Enabled is false or no
// Redis client could be created.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_ENABLED, CACHE_TTL and CACHE_PREFIX.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "cache"),
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	return c
}
