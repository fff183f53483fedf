package identity

import (
	"fmt"
	"os"
	"time"
)

// Config holds session and state token settings.
type Config struct {
	Secret     string `toml:"secret"`
	Issuer     string `toml:"issuer"`
	CookieName string `toml:"cookie_name"`
	SessionTTL string `toml:"session_ttl"`
	StateTTL   string `toml:"state_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secret     string
	Issuer     string
	CookieName string
	SessionTTL string
	StateTTL   string
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// StateTTLDuration returns StateTTL as a time.Duration.
func (c *Config) StateTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.StateTTL)
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

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.StateTTL != "" {
		c.StateTTL = overlay.StateTTL
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "applymonitor"
	}
	if c.CookieName == "" {
		c.CookieName = "session"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "24h"
	}
	if c.StateTTL == "" {
		c.StateTTL = "10m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
	if env.SessionTTL != "" {
		if v := os.Getenv(env.SessionTTL); v != "" {
			c.SessionTTL = v
		}
	}
	if env.StateTTL != "" {
		if v := os.Getenv(env.StateTTL); v != "" {
			c.StateTTL = v
		}
	}
}

func (c *Config) validate() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("secret must be at least 16 characters")
	}
	if _, err := time.ParseDuration(c.SessionTTL); err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.StateTTL); err != nil {
		return fmt.Errorf("invalid state_ttl: %w", err)
	}
	return nil
}
