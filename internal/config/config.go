// Package config loads the server configuration from environment
// variables and validates it before anything is wired up.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

// Config is the full server configuration. Every field has a working
// default so a bare `pokedex-server` starts against a local Redis and
// the public PokeAPI.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"8080"`

	// RedisURL is the cache backend, in redis URL form
	// (redis://[user:pass@]host:port/db).
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// PokeAPIBaseURL is the upstream API root.
	PokeAPIBaseURL string `env:"POKEAPI_BASE_URL" envDefault:"https://pokeapi.co/api/v2"`

	// UserAgent identifies this service to the upstream API.
	UserAgent string `env:"USER_AGENT" envDefault:"pokedexapi/1.0"`

	// CacheTTL is the lifetime of cached records in Redis.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	// MemoryCacheTTL caps how long the in-process tier may serve an
	// entry before falling through to Redis.
	MemoryCacheTTL time.Duration `env:"MEMORY_CACHE_TTL" envDefault:"60s"`

	// MemoryCacheSize is the entry capacity of the in-process tier.
	MemoryCacheSize int `env:"MEMORY_CACHE_SIZE" envDefault:"2048"`

	// MaxPokemonID is the highest ID included in summary builds.
	MaxPokemonID int `env:"MAX_POKEMON_ID" envDefault:"1025"`

	// RefreshBatchSize is the number of IDs aggregated per build batch.
	RefreshBatchSize int `env:"REFRESH_BATCH_SIZE" envDefault:"50"`

	// RefreshBatchPause is the pause between build batches.
	RefreshBatchPause time.Duration `env:"REFRESH_BATCH_PAUSE" envDefault:"500ms"`

	// RefreshConcurrency is the worker count within a build batch.
	RefreshConcurrency int `env:"REFRESH_CONCURRENCY" envDefault:"8"`

	// RefreshOnStartup populates the cache at boot when it is cold.
	RefreshOnStartup bool `env:"REFRESH_ON_STARTUP" envDefault:"true"`

	// SpriteSource selects "remote" (PokeAPI-hosted sprite URLs) or
	// "local" (rewritten under LocalSpriteBase).
	SpriteSource string `env:"SPRITE_SOURCE" envDefault:"remote"`

	// LocalSpriteBase is the URL prefix for locally served sprites.
	LocalSpriteBase string `env:"LOCAL_SPRITE_BASE" envDefault:"/sprites"`

	// LogLevel is the minimum level emitted (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogPretty switches to human-readable console output.
	LogPretty bool `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields a misconfigured deployment gets wrong.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := redis.ParseURL(c.RedisURL); err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	if c.PokeAPIBaseURL == "" {
		return errors.New("pokeapi base url is required")
	}
	if c.UserAgent == "" {
		return errors.New("user agent is required")
	}
	if c.MaxPokemonID < 1 {
		return fmt.Errorf("invalid max pokemon id %d", c.MaxPokemonID)
	}
	switch c.SpriteSource {
	case "remote", "local":
	default:
		return fmt.Errorf("invalid sprite source %q, want remote or local", c.SpriteSource)
	}
	if c.SpriteSource == "local" && c.LocalSpriteBase == "" {
		return errors.New("local sprite base is required in local sprite mode")
	}
	return nil
}

// RedisOptions parses RedisURL into client options. Validate has already
// established the URL parses.
func (c *Config) RedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
