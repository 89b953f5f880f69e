// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

// Package config loads and validates application configuration using koanf
// with layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest precedence).
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Dataset DatasetConfig `koanf:"dataset"`
	Engine  EngineConfig  `koanf:"engine"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatasetConfig locates the rating dataset files and the trained model artifact.
type DatasetConfig struct {
	// Dir is the directory holding the MovieLens-format files.
	Dir string `koanf:"dir"`

	// RatingsFile, MoviesFile and UsersFile are resolved relative to Dir
	// unless absolute.
	RatingsFile string `koanf:"ratings_file"`
	MoviesFile  string `koanf:"movies_file"`
	UsersFile   string `koanf:"users_file"`

	// ModelPath is the trained factorization model artifact written by the
	// trainer command.
	ModelPath string `koanf:"model_path"`

	// MaxMemory and Threads are passed to the embedded DuckDB instance.
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// EngineConfig holds recommendation engine settings.
type EngineConfig struct {
	// DefaultN is the recommendation count when the request omits n.
	DefaultN int `koanf:"default_n"`

	// MaxN caps the per-request recommendation count.
	MaxN int `koanf:"max_n"`

	// Neighbors is the cold-start neighborhood size.
	Neighbors int `koanf:"neighbors"`

	// CacheCapacity bounds the recommendation result cache; oldest entries
	// are evicted once it is reached.
	CacheCapacity int `koanf:"cache_capacity"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Dataset: DatasetConfig{
			Dir:         "/data/ml-100k",
			RatingsFile: "u.data",
			MoviesFile:  "u.item",
			UsersFile:   "u.user",
			ModelPath:   "/data/models/svd.gob.gz",
			MaxMemory:   "1GB",
			Threads:     0, // 0 = use runtime.NumCPU()
		},
		Engine: EngineConfig{
			DefaultN:      10,
			MaxN:          100,
			Neighbors:     50,
			CacheCapacity: 128,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values that would break startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Dataset.Dir == "" {
		return fmt.Errorf("dataset.dir must not be empty")
	}
	if c.Dataset.RatingsFile == "" || c.Dataset.MoviesFile == "" || c.Dataset.UsersFile == "" {
		return fmt.Errorf("dataset file names must not be empty")
	}
	if c.Engine.DefaultN < 1 {
		return fmt.Errorf("engine.default_n must be positive, got %d", c.Engine.DefaultN)
	}
	if c.Engine.MaxN < c.Engine.DefaultN {
		return fmt.Errorf("engine.max_n (%d) must be >= engine.default_n (%d)", c.Engine.MaxN, c.Engine.DefaultN)
	}
	if c.Engine.Neighbors < 1 {
		return fmt.Errorf("engine.neighbors must be positive, got %d", c.Engine.Neighbors)
	}
	if c.Engine.CacheCapacity < 0 {
		return fmt.Errorf("engine.cache_capacity must not be negative, got %d", c.Engine.CacheCapacity)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs)
	}
	return nil
}
