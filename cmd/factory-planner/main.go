// Factory Planner: production chain optimizer CLI and MCP server
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/config"
	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/internal/factory/engine"
)

const name = "factory-planner"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

// app carries state shared by every subcommand once the root Before hook
// has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	a := &app{}
	if err := a.command().Run(ctx, os.Args); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Plan production chains with linear programming",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file (default is $HOME/" + config.FileName + ".yaml)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to the SQLite catalog database",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.queryCmd(),
			a.replCmd(),
			a.batchCmd(),
			a.importCmd(),
			a.serveCmd(),
		},
	}
}

// setup loads config, applies flag overrides and installs the logger.
func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("db") {
		cfg.DB = cmd.String("db")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("no-color") {
		color.NoColor = true
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(a.logger)
	return ctx, nil
}

// openEngine opens the catalog database and builds an engine over it. The
// returned func closes the database.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	database, err := db.OpenAndInit(ctx, a.cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	closeDB := func() { _ = database.Close() }

	eng, err := engine.Open(ctx, database,
		engine.WithLogger(a.logger),
		engine.WithTolerance(a.cfg.Solver.Tolerance),
		engine.WithCacheSize(a.cfg.Resolver.CacheSize),
	)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	a.logger.Debug("catalog loaded", "db", a.cfg.DB, "entities", eng.Catalog().Len())
	return eng, closeDB, nil
}

// format returns the --format flag when set, else the configured format.
func (a *app) format(cmd *cli.Command) (string, error) {
	format := a.cfg.Output.Format
	if cmd.IsSet("format") {
		format = cmd.String("format")
	}
	switch format {
	case config.FormatText, config.FormatJSON, config.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", format)
	}
}

// formatFlag returns a fresh flag; cli keeps parsed values on the flag, so
// commands must not share one.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Usage:   "output format (text, json, yaml)",
	}
}
