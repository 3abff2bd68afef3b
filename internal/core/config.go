// Package core holds the shared configuration for the locres commands and
// lookup service.
package core

import (
	"fmt"
	"time"

	"locres/pkg/locfile"
)

const (
	DefaultServerPort   = 8080
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultMaxStores    = 32
)

type Config struct {
	Resources ResourcesConfig
	Server    ServerConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ResourcesConfig locates the resource file family to serve.
type ResourcesConfig struct {
	Dir      string
	BaseName string
	Language string
	Preload  []string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimitPerMinute caps lookup requests per client per minute.
	// Zero disables rate limiting.
	RateLimitPerMinute int
}

// CacheConfig bounds how many per-language stores stay resident.
type CacheConfig struct {
	MaxStores int
}

type LogConfig struct {
	Level string
}

func DefaultConfig() *Config {
	return &Config{
		Resources: ResourcesConfig{
			Language: locfile.DefaultLanguage,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Cache: CacheConfig{
			MaxStores: DefaultMaxStores,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.Resources.Dir == "" {
		return fmt.Errorf("resources directory is required")
	}
	if c.Resources.BaseName == "" {
		return fmt.Errorf("resource base name is required")
	}
	if c.Resources.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	if c.Cache.MaxStores <= 0 {
		return fmt.Errorf("cache max stores must be positive, got %d", c.Cache.MaxStores)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}
