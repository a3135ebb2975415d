// Package config loads potwager settings.
//
// Sources, later ones winning: built-in defaults, an optional YAML file,
// POTWAGER_* environment variables. The merged result is validated against
// the embedded CUE schema before use.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds runtime settings for the CLI and HTTP server.
type Config struct {
	Database  string     `yaml:"database"   json:"database"   env:"POTWAGER_DATABASE"`
	Listen    string     `yaml:"listen"     json:"listen"     env:"POTWAGER_LISTEN"`
	LogLevel  string     `yaml:"log_level"  json:"log_level"  env:"POTWAGER_LOG_LEVEL"`
	LogFormat string     `yaml:"log_format" json:"log_format" env:"POTWAGER_LOG_FORMAT"`
	Seed      SeedConfig `yaml:"seed"       json:"seed"       envPrefix:"POTWAGER_SEED_"`
	APIKeys   []string   `yaml:"api_keys"   json:"api_keys"   env:"POTWAGER_API_KEYS" envSeparator:","`
}

// SeedConfig selects the random source.
type SeedConfig struct {
	// Hex is a fixed seed. Empty selects a rotating random seed.
	Hex string `yaml:"hex" json:"hex" env:"HEX"`

	// Rotate is the rotation interval of the random seed, e.g. "24h".
	// Empty never rotates.
	Rotate string `yaml:"rotate" json:"rotate" env:"ROTATE"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Database:  "potwager.db",
		Listen:    ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Seed:      SeedConfig{Rotate: "24h"},
		APIKeys:   []string{},
	}
}

// Load merges defaults, the YAML file at path (skipped when path is empty)
// and the environment, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.APIKeys == nil {
		cfg.APIKeys = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against the CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// RotateInterval parses Seed.Rotate. Empty means never.
func (c *Config) RotateInterval() (time.Duration, error) {
	if c.Seed.Rotate == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Seed.Rotate)
	if err != nil {
		return 0, fmt.Errorf("seed.rotate: %w", err)
	}
	return d, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the configured format.
// verbose forces debug level.
func (c *Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := c.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
