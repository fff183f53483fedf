package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "APPLYMONITOR_SERVER_HOST"
	EnvServerPort              = "APPLYMONITOR_SERVER_PORT"
	EnvServerReadTimeout       = "APPLYMONITOR_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "APPLYMONITOR_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "APPLYMONITOR_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "APPLYMONITOR_SERVER_IDLE_TIMEOUT"
)

// ServerConfig configures the HTTP listener. Timeouts are Go duration
// strings. The write timeout bounds batch enrichment calls, so it defaults
// well above typical request latency.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeouts returns the parsed read, read-header, write and idle timeouts.
func (c *ServerConfig) Timeouts() (read, header, write, idle time.Duration) {
	return duration(c.ReadTimeout), duration(c.ReadHeaderTimeout),
		duration(c.WriteTimeout), duration(c.IdleTimeout)
}

func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *ServerConfig) Merge(o *ServerConfig) {
	if o.Host != "" {
		c.Host = o.Host
	}
	if o.Port != 0 {
		c.Port = o.Port
	}
	for dst, v := range c.timeoutFields(o) {
		if v != "" {
			*dst = v
		}
	}
}

// timeoutFields pairs each timeout field of c with the same field of o.
func (c *ServerConfig) timeoutFields(o *ServerConfig) map[*string]string {
	return map[*string]string{
		&c.ReadTimeout:       o.ReadTimeout,
		&c.ReadHeaderTimeout: o.ReadHeaderTimeout,
		&c.WriteTimeout:      o.WriteTimeout,
		&c.IdleTimeout:       o.IdleTimeout,
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := ServerConfig{
		ReadTimeout:       "1m",
		ReadHeaderTimeout: "10s",
		WriteTimeout:      "15m",
		IdleTimeout:       "2m",
	}
	for dst, v := range c.timeoutFields(&defaults) {
		if *dst == "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
	c.Merge(&ServerConfig{
		ReadTimeout:       os.Getenv(EnvServerReadTimeout),
		ReadHeaderTimeout: os.Getenv(EnvServerReadHeaderTimeout),
		WriteTimeout:      os.Getenv(EnvServerWriteTimeout),
		IdleTimeout:       os.Getenv(EnvServerIdleTimeout),
	})
}

func (c *ServerConfig) validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	for name, v := range map[string]string{
		"read_timeout":        c.ReadTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
