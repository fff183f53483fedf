// Package config loads and finalizes the service configuration from TOML files,
// environment overlays, and APPLYMONITOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/garunski/applymonitor/internal/backend"
	"github.com/garunski/applymonitor/internal/scans"
	"github.com/garunski/applymonitor/pkg/database"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvAppEnv             = "APPLYMONITOR_ENV"
	EnvAppShutdownTimeout = "APPLYMONITOR_SHUTDOWN_TIMEOUT"
	EnvAppVersion         = "APPLYMONITOR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "APPLYMONITOR_DB_HOST",
	Port:            "APPLYMONITOR_DB_PORT",
	Name:            "APPLYMONITOR_DB_NAME",
	User:            "APPLYMONITOR_DB_USER",
	Password:        "APPLYMONITOR_DB_PASSWORD",
	SSLMode:         "APPLYMONITOR_DB_SSL_MODE",
	MaxOpenConns:    "APPLYMONITOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "APPLYMONITOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "APPLYMONITOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "APPLYMONITOR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "APPLYMONITOR_STORAGE_CONTAINER_NAME",
	ConnectionString: "APPLYMONITOR_STORAGE_CONNECTION_STRING",
	AccountURL:       "APPLYMONITOR_STORAGE_ACCOUNT_URL",
}

var identityEnv = &identity.Env{
	Secret:     "APPLYMONITOR_IDENTITY_SECRET",
	Issuer:     "APPLYMONITOR_IDENTITY_ISSUER",
	CookieName: "APPLYMONITOR_IDENTITY_COOKIE_NAME",
	SessionTTL: "APPLYMONITOR_IDENTITY_SESSION_TTL",
	StateTTL:   "APPLYMONITOR_IDENTITY_STATE_TTL",
}

var backendEnv = &backend.Env{
	URL:       "APPLYMONITOR_BACKEND_URL",
	Token:     "APPLYMONITOR_BACKEND_TOKEN",
	Model:     "APPLYMONITOR_BACKEND_MODEL",
	MaxTokens: "APPLYMONITOR_BACKEND_MAX_TOKENS",
	Timeout:   "APPLYMONITOR_BACKEND_TIMEOUT",
}

var ingestEnv = &scans.Env{
	PageSize:         "APPLYMONITOR_INGEST_PAGE_SIZE",
	DefaultWindow:    "APPLYMONITOR_INGEST_DEFAULT_WINDOW",
	MaxWindow:        "APPLYMONITOR_INGEST_MAX_WINDOW",
	FetchConcurrency: "APPLYMONITOR_INGEST_FETCH_CONCURRENCY",
	Archive:          "APPLYMONITOR_INGEST_ARCHIVE",
}

// Config is the root configuration for the applymonitor service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Identity        identity.Config `toml:"identity"`
	Google          GoogleConfig    `toml:"google"`
	Backend         backend.Config  `toml:"backend"`
	Ingest          scans.Config    `toml:"ingest"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the APPLYMONITOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration bounds how long shutdown hooks may run.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads .env (if present), the base config (if present), applies any
// environment overlay, and finalizes all values. Variables already set in the
// process environment win over .env entries.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section from the same sources as
// Load. Tools that never serve HTTP use it to skip unrelated validation.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return &cfg.Database, nil
}

// LoadIdentity resolves only the identity section from the same sources as
// Load.
func LoadIdentity() (*identity.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Identity.Finalize(identityEnv); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	return &cfg.Identity, nil
}

func read() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Identity.Merge(&overlay.Identity)
	c.Google.Merge(&overlay.Google)
	c.Backend.Merge(&overlay.Backend)
	c.Ingest.Merge(&overlay.Ingest)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Identity.Finalize(identityEnv); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := c.Google.Finalize(); err != nil {
		return fmt.Errorf("google: %w", err)
	}
	if err := c.Backend.Finalize(backendEnv); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if err := c.Ingest.Finalize(ingestEnv); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if c.Ingest.Archive && !c.Storage.Enabled() {
		return fmt.Errorf("ingest: archive requires storage connection_string or account_url")
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAppShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAppVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
