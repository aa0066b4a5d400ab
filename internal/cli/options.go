// Package cli carries the shared plumbing behind the sahayak commands:
// environment resolution, store selection, and the interactive chat loop.
package cli

import (
	"fmt"
	"os"
	"time"
)

// Environment variables recognized by every command. Flags win over env.
const (
	EnvCatalog    = "SAHAYAK_CATALOG"
	EnvAddr       = "SAHAYAK_ADDR"
	EnvRedisURL   = "SAHAYAK_REDIS_URL"
	EnvSessionTTL = "SAHAYAK_SESSION_TTL"
)

// RunOptions configures a command invocation.
type RunOptions struct {
	CatalogPath string
	SessionID   string
	Store       string // memory, file, redis
	FilePath    string // base path for the file store
	RedisURL    string
	SessionTTL  time.Duration
	Debug       bool
}

// Resolve fills unset fields from the environment and validates the result.
func (o *RunOptions) Resolve() error {
	if o.CatalogPath == "" {
		o.CatalogPath = os.Getenv(EnvCatalog)
	}
	if o.CatalogPath == "" {
		return fmt.Errorf("no scheme catalog: pass --catalog or set %s", EnvCatalog)
	}

	if o.RedisURL == "" {
		o.RedisURL = os.Getenv(EnvRedisURL)
	}
	if o.Store == "" {
		if o.RedisURL != "" {
			o.Store = "redis"
		} else {
			o.Store = "memory"
		}
	}
	if o.Store == "redis" && o.RedisURL == "" {
		return fmt.Errorf("--store redis requires --redis-url or %s", EnvRedisURL)
	}

	if o.SessionTTL == 0 {
		if raw := os.Getenv(EnvSessionTTL); raw != "" {
			ttl, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", EnvSessionTTL, raw, err)
			}
			o.SessionTTL = ttl
		}
	}

	switch o.Store {
	case "memory", "file", "redis":
		return nil
	default:
		return fmt.Errorf("unknown store %q (expected memory, file or redis)", o.Store)
	}
}
