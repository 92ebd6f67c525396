package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/mcp"
)

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve queries as MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "address for the Prometheus /metrics endpoint (disabled when empty)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addr := a.cfg.MetricsAddr
			if cmd.IsSet("metrics-addr") {
				addr = cmd.String("metrics-addr")
			}

			eng, closeDB, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if addr != "" {
				stop := a.serveMetrics(addr)
				defer stop()
			}

			a.logger.Info("starting MCP server", "db", a.cfg.DB, "version", version)
			err = mcp.NewServer(eng, version, a.logger).Serve(ctx, os.Stdin, os.Stdout)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

// serveMetrics exposes the default registry and returns a func that shuts
// the listener down.
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}
}
