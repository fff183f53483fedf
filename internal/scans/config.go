package scans

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const maxPageSize = 500

// Config holds ingestion settings.
type Config struct {
	PageSize         int    `toml:"page_size"`
	DefaultWindow    string `toml:"default_window"`
	MaxWindow        string `toml:"max_window"`
	FetchConcurrency int    `toml:"fetch_concurrency"`
	Archive          bool   `toml:"archive"`
}

// Env maps environment variable names for ingestion configuration.
type Env struct {
	PageSize         string
	DefaultWindow    string
	MaxWindow        string
	FetchConcurrency string
	Archive          string
}

// DefaultWindowDuration returns DefaultWindow as a time.Duration.
func (c *Config) DefaultWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.DefaultWindow)
	return d
}

// MaxWindowDuration returns MaxWindow as a time.Duration.
func (c *Config) MaxWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxWindow)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.PageSize != 0 {
		c.PageSize = overlay.PageSize
	}
	if overlay.DefaultWindow != "" {
		c.DefaultWindow = overlay.DefaultWindow
	}
	if overlay.MaxWindow != "" {
		c.MaxWindow = overlay.MaxWindow
	}
	if overlay.FetchConcurrency != 0 {
		c.FetchConcurrency = overlay.FetchConcurrency
	}
	if overlay.Archive {
		c.Archive = true
	}
}

func (c *Config) loadDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.DefaultWindow == "" {
		c.DefaultWindow = "168h"
	}
	if c.MaxWindow == "" {
		c.MaxWindow = "2160h"
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.PageSize != "" {
		if v := os.Getenv(env.PageSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.PageSize = n
			}
		}
	}
	if env.DefaultWindow != "" {
		if v := os.Getenv(env.DefaultWindow); v != "" {
			c.DefaultWindow = v
		}
	}
	if env.MaxWindow != "" {
		if v := os.Getenv(env.MaxWindow); v != "" {
			c.MaxWindow = v
		}
	}
	if env.FetchConcurrency != "" {
		if v := os.Getenv(env.FetchConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.FetchConcurrency = n
			}
		}
	}
	if env.Archive != "" {
		if v := os.Getenv(env.Archive); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Archive = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", maxPageSize)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be positive")
	}

	def, err := time.ParseDuration(c.DefaultWindow)
	if err != nil {
		return fmt.Errorf("invalid default_window: %w", err)
	}
	limit, err := time.ParseDuration(c.MaxWindow)
	if err != nil {
		return fmt.Errorf("invalid max_window: %w", err)
	}
	if def <= 0 || limit <= 0 {
		return fmt.Errorf("default_window and max_window must be positive")
	}
	if def > limit {
		return fmt.Errorf("default_window cannot exceed max_window")
	}
	return nil
}
