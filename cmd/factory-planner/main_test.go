package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/internal/factory/catalog/catalogtest"
	"github.com/rsned/factory-planner/internal/factory/engine"
	"github.com/rsned/factory-planner/internal/factory/result"
)

// harness runs the root command in an isolated home directory against a fresh
// database loaded with the fixture catalog.
type harness struct {
	t       *testing.T
	db      string
	fixture string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fixture, err := filepath.Abs("../../internal/factory/catalog/catalogtest/testdata/catalog.json")
	require.NoError(t, err)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	color.NoColor = true

	c := &harness{t: t, db: filepath.Join(dir, "catalog.db"), fixture: fixture}
	_, err = c.run("", "import", fixture)
	require.NoError(t, err)
	return c
}

func (c *harness) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	cmd := (&app{}).command()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	cmd.Reader = strings.NewReader(stdin)

	argv := append([]string{name, "--db", c.db, "--log-level", "error"}, args...)
	err := cmd.Run(context.Background(), argv)
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	c := newHarness(t)

	out, err := c.run("", "query", "produce", "60", "iron", "rods")
	require.NoError(t, err)
	assert.Contains(t, out, "=== OPTIMAL SOLUTION FOUND ===")
	assert.Contains(t, out, "Iron Rod: 60/m")

	out, err = c.run("", "query", "produce 10 uranium")
	require.NoError(t, err)
	assert.Equal(t, "Could not parse item expression 'uranium'.\n", out)

	_, err = c.run("", "query")
	assert.Error(t, err)
}

func TestQueryCommandJSONAndDOT(t *testing.T) {
	c := newHarness(t)
	dot := filepath.Join(t.TempDir(), "rods.gv")

	out, err := c.run("", "query", "--format", "json", "--dot", dot, "produce 60 iron rods")
	require.NoError(t, err)

	var m result.Message
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	require.NotNil(t, m.Embed)
	assert.Equal(t, "Optimization Query", m.Embed.Title)

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph"))

	_, err = c.run("", "query", "--dot", dot, "produce ? iron rods")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	c := newHarness(t)
	stdin := "# rods\nproduce 60 iron rods\n\nuranium\nhelp\n"

	out, err := c.run(stdin, "batch", "--concurrency", "2", "--format", "yaml")
	require.NoError(t, err)
	first := strings.Index(out, "query: produce 60 iron rods")
	second := strings.Index(out, "query: uranium")
	third := strings.Index(out, "query: help")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)

	out, err = c.run(stdin, "batch")
	require.NoError(t, err)
	assert.Contains(t, out, "> produce 60 iron rods\n")
	assert.Contains(t, out, "> uranium\nCould not parse entity expression 'uranium'.")

	_, err = c.run("# nothing\n", "batch")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	c := newHarness(t)

	out, err := c.run("", "import", c.fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 13 items, 4 crafters, 1 generators, 11 recipes, 1 power recipes.\n")
	assert.Contains(t, out, "Replaced the catalog imported ")

	_, err = c.run("", "import")
	assert.Error(t, err)
}

func TestReplCommand(t *testing.T) {
	c := newHarness(t)

	out, err := c.run("recipes for iron ingot\n:info\n:1\n:prev\n:bogus\n:quit\n", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "recipes for iron ingot")
	assert.Contains(t, out, "unknown reaction :bogus")
}

func TestBadFormat(t *testing.T) {
	c := newHarness(t)

	_, err := c.run("", "query", "--format", "xml", "produce 60 iron rods")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = c.run("", "batch", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestFormatFlagNotShared(t *testing.T) {
	c := newHarness(t)

	out, err := c.run("", "query", "--format", "json", "produce 60 iron rods")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))

	out, err = c.run("", "query", "produce 60 iron rods")
	require.NoError(t, err)
	assert.Contains(t, out, "=== OPTIMAL SOLUTION FOUND ===")

	out, err = c.run("produce 60 iron rods\n", "batch")
	require.NoError(t, err)
	assert.Contains(t, out, "> produce 60 iron rods\n")
}

func TestSessionPaging(t *testing.T) {
	eng, err := engine.New(catalogtest.Catalog(t))
	require.NoError(t, err)
	s := newSession(eng)
	ctx := context.Background()

	_, err = s.Submit(ctx, ":next")
	assert.Error(t, err)

	m, err := s.Submit(ctx, ".*")
	require.NoError(t, err)
	assert.Equal(t, "Page 1 of 2", m.Embed.Footer)

	m, err = s.Submit(ctx, ":next")
	require.NoError(t, err)
	assert.Equal(t, "Page 2 of 2", m.Embed.Footer)

	_, err = s.Submit(ctx, ":info")
	require.NoError(t, err)
	m, err = s.Submit(ctx, ":1")
	require.NoError(t, err)
	require.NotNil(t, m.Embed)
	assert.Contains(t, m.Content, ".* [page 2] > ")

	m, err = s.Submit(ctx, ":prev")
	require.NoError(t, err)
	assert.Equal(t, "Page 2 of 2", m.Embed.Footer)
}

func TestReadQueries(t *testing.T) {
	qs, err := readQueries(strings.NewReader("  help \n# skip\n\nproduce 60 iron rods\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"help", "produce 60 iron rods"}, qs)
}
