package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data/factory/catalog.db", cfg.DB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1e-9, cfg.Solver.Tolerance)
	assert.Equal(t, 1024, cfg.Resolver.CacheSize)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "planner.yaml", `
db: /var/lib/planner.db
log-level: debug
solver:
  tolerance: 0.000001
batch:
  concurrency: 2
output:
  format: yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/planner.db", cfg.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1e-6, cfg.Solver.Tolerance)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
	assert.Equal(t, 1024, cfg.Resolver.CacheSize)
}

func TestLoadDiscoversFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, FileName+".yaml", "metrics-addr: \":9090\"\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "planner.yaml", "batch:\n  concurrency: 2\n")
	t.Setenv("FACTORY_PLANNER_BATCH_CONCURRENCY", "8")
	t.Setenv("FACTORY_PLANNER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DB:       "catalog.db",
			LogLevel: "info",
			Batch:    Batch{Concurrency: 1},
			Output:   Output{Format: FormatJSON},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db", func(c *Config) { c.DB = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative tolerance", func(c *Config) { c.Solver.Tolerance = -1 }},
		{"negative cache", func(c *Config) { c.Resolver.CacheSize = -1 }},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
