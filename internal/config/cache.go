package config

import "time"

// CacheConfig tunes the public-note response cache. The TTL bounds how
// stale an anonymous read can be after a link is revoked.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int // responses larger than this are never cached
}

// LoadCache reads CACHE_* environment variables.
func LoadCache() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", false),
		TTL:          envDuration("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "notes:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256*1024),
	}
}
