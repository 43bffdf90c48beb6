package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zmb3/spotify"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the process configuration. It is read once at start.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig holds connection settings. For sqlite, Name is the file path
// (or ":memory:") and the remaining fields are ignored.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// CatalogConfig holds the Spotify client credentials. RateLimit is requests
// per second towards the catalog; 0 disables limiting.
type CatalogConfig struct {
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	TokenURL     string  `toml:"token_url"`
	RateLimit    float64 `toml:"rate_limit"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 3000},
		Database: DatabaseConfig{
			Driver: DriverMySQL,
			Host:   "localhost",
		},
		Catalog: CatalogConfig{
			TokenURL:  spotify.TokenURL,
			RateLimit: 10,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the optional TOML file at path
// and then the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
		return nil
	}

	setString("DB_DRIVER", &c.Database.Driver)
	setString("DB_NAME", &c.Database.Name)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASS", &c.Database.Password)
	setString("DB_HOST", &c.Database.Host)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("SPOTIFY_CLIENT_ID", &c.Catalog.ClientID)
	setString("SPOTIFY_CLIENT_SECRET", &c.Catalog.ClientSecret)
	setString("SPOTIFY_TOKEN_URL", &c.Catalog.TokenURL)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if err := setInt("DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	if err := setInt("PORT", &c.Server.Port); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("CATALOG_RATE_LIMIT"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_RATE_LIMIT %q: %w", v, err)
		}
		c.Catalog.RateLimit = r
	}

	return nil
}

// Validate reports every missing required option at once.
func (c *Config) Validate() error {
	var missing []string
	require := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
		require("DB_NAME", c.Database.Name)
		require("DB_USER", c.Database.User)
		require("DB_PASS", c.Database.Password)
		require("DB_HOST", c.Database.Host)
	case DriverSQLite:
		require("DB_NAME", c.Database.Name)
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	require("JWT_SECRET", c.Auth.JWTSecret)
	require("SPOTIFY_CLIENT_ID", c.Catalog.ClientID)
	require("SPOTIFY_CLIENT_SECRET", c.Catalog.ClientSecret)

	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
