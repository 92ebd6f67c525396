// Package config loads planner settings from a YAML file, the environment
// and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g.
	// FACTORY_PLANNER_SOLVER_TOLERANCE.
	EnvPrefix = "FACTORY_PLANNER"
	// FileName is the config file searched for in $HOME and the working
	// directory.
	FileName = ".factory-planner"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds every setting the CLI and MCP server read.
type Config struct {
	DB          string   `mapstructure:"db"`
	LogLevel    string   `mapstructure:"log-level"`
	MetricsAddr string   `mapstructure:"metrics-addr"`
	Solver      Solver   `mapstructure:"solver"`
	Resolver    Resolver `mapstructure:"resolver"`
	Batch       Batch    `mapstructure:"batch"`
	Output      Output   `mapstructure:"output"`
}

// Solver tunes the simplex solver.
type Solver struct {
	Tolerance float64 `mapstructure:"tolerance"`
}

// Resolver tunes entity name resolution.
type Resolver struct {
	CacheSize int `mapstructure:"cache-size"`
}

// Batch tunes the batch command.
type Batch struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Output controls how results are printed.
type Output struct {
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"db":                  "data/factory/catalog.db",
	"log-level":           "info",
	"metrics-addr":        "",
	"solver.tolerance":    1e-9,
	"resolver.cache-size": 1024,
	"batch.concurrency":   4,
	"output.format":       FormatText,
}

// Load reads settings. An explicit path must exist; otherwise the file is
// optional and looked up in $HOME and the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "file", v.ConfigFileUsed())
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("db path must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Solver.Tolerance < 0 {
		return fmt.Errorf("solver.tolerance must not be negative, got %g", c.Solver.Tolerance)
	}
	if c.Resolver.CacheSize < 0 {
		return fmt.Errorf("resolver.cache-size must not be negative, got %d", c.Resolver.CacheSize)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
