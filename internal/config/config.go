// Package config loads the TOML configuration of the scenegraph server and
// CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds scenegraph configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
	Graph   GraphConfig   `toml:"graph"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// StorageConfig selects the scene persister.
type StorageConfig struct {
	Driver string `toml:"driver"` // "", "postgres", "sqlite"
	DSN    string `toml:"dsn"`
}

// GraphConfig sets graph-level defaults.
type GraphConfig struct {
	Environment string `toml:"environment"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":3000"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Graph:  GraphConfig{Environment: "command_line"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults. DATABASE_URL, when set, selects postgres with that DSN.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.Driver = "postgres"
		cfg.Storage.DSN = dsn
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage driver %q needs a dsn", c.Storage.Driver)
	}
	return nil
}
