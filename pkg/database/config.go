package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config describes the PostgreSQL connection and pool. Durations are Go
// duration strings.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override Config fields. Empty
// names are ignored.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// URL renders the connection as a postgres:// URL, accepted both by pgx
// and by the migration driver.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge copies every non-zero overlay field onto c.
func (c *Config) Merge(o *Config) {
	mergeString(&c.Host, o.Host)
	mergeInt(&c.Port, o.Port)
	mergeString(&c.Name, o.Name)
	mergeString(&c.User, o.User)
	mergeString(&c.Password, o.Password)
	mergeString(&c.SSLMode, o.SSLMode)
	mergeInt(&c.MaxOpenConns, o.MaxOpenConns)
	mergeInt(&c.MaxIdleConns, o.MaxIdleConns)
	mergeString(&c.ConnMaxLifetime, o.ConnMaxLifetime)
	mergeString(&c.ConnTimeout, o.ConnTimeout)
}

func (c *Config) loadDefaults() {
	c.Host = or(c.Host, "localhost")
	c.Port = orInt(c.Port, 5432)
	c.SSLMode = or(c.SSLMode, "disable")
	c.MaxOpenConns = orInt(c.MaxOpenConns, 25)
	c.MaxIdleConns = orInt(c.MaxIdleConns, 5)
	c.ConnMaxLifetime = or(c.ConnMaxLifetime, "15m")
	c.ConnTimeout = or(c.ConnTimeout, "5s")
}

func (c *Config) loadEnv(env *Env) {
	mergeString(&c.Host, lookup(env.Host))
	mergeString(&c.Name, lookup(env.Name))
	mergeString(&c.User, lookup(env.User))
	mergeString(&c.Password, lookup(env.Password))
	mergeString(&c.SSLMode, lookup(env.SSLMode))
	mergeString(&c.ConnMaxLifetime, lookup(env.ConnMaxLifetime))
	mergeString(&c.ConnTimeout, lookup(env.ConnTimeout))

	for name, dst := range map[string]*int{
		env.Port:         &c.Port,
		env.MaxOpenConns: &c.MaxOpenConns,
		env.MaxIdleConns: &c.MaxIdleConns,
	} {
		if n, err := strconv.Atoi(lookup(name)); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name required"))
	}
	if c.User == "" {
		errs = append(errs, errors.New("user required"))
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errs = append(errs, fmt.Errorf("max_idle_conns %d exceeds max_open_conns %d", c.MaxIdleConns, c.MaxOpenConns))
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		errs = append(errs, fmt.Errorf("invalid conn_max_lifetime: %w", err))
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		errs = append(errs, fmt.Errorf("invalid conn_timeout: %w", err))
	}
	return errors.Join(errs...)
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
