package config

import "time"

// SessionConfig controls how the last-known identity is persisted.
type SessionConfig struct {
	Prefix     string        // redis key prefix
	DefaultTTL time.Duration // lifetime when the access token carries no expiry
}

func LoadSessionConfig() SessionConfig {
	return SessionConfig{
		Prefix:     envStr("SESSION_PREFIX", "dashboard:session"),
		DefaultTTL: envDur("SESSION_TTL", 12*time.Hour),
	}
}
