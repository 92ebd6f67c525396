package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/config"
	"github.com/rsned/factory-planner/internal/factory/engine"
	"github.com/rsned/factory-planner/internal/factory/result"
)

// batchEntry is one query and its outcome in structured batch output.
type batchEntry struct {
	Query   string          `json:"query" yaml:"query"`
	Message *result.Message `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *app) batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Run many independent queries concurrently",
		ArgsUsage: "[file]",
		Description: `Read one query per line from file, or from standard input when no file is
given. Blank lines and lines starting with '#' are skipped. Results are
printed in input order.`,
		Flags: []cli.Flag{
			formatFlag(),
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "queries in flight at once (default from config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := a.format(cmd)
			if err != nil {
				return err
			}
			concurrency := a.cfg.Batch.Concurrency
			if cmd.IsSet("concurrency") {
				concurrency = cmd.Int("concurrency")
			}
			if concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
			}

			in := cmd.Root().Reader
			if path := cmd.Args().First(); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening batch file: %w", err)
				}
				defer f.Close()
				in = f
			}
			queries, err := readQueries(in)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				return errors.New("no queries to run")
			}

			eng, closeDB, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			out, err := eng.QueryAll(ctx, queries, concurrency)
			if err != nil {
				return err
			}
			a.logger.Info("batch complete", "queries", len(queries), "concurrency", concurrency)
			return writeBatch(cmd.Root().Writer, format, out)
		},
	}
}

func readQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return queries, nil
}

func writeBatch(w io.Writer, format string, outcomes []engine.Outcome) error {
	if format == config.FormatText {
		for i, o := range outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			titleColor.Fprintf(w, "> %s\n", o.Query)
			if o.Err != nil {
				errorColor.Fprintln(w, o.Err)
				continue
			}
			if err := writeResult(w, format, o.Result, nil); err != nil {
				return err
			}
		}
		return nil
	}

	entries := make([]batchEntry, 0, len(outcomes))
	for _, o := range outcomes {
		e := batchEntry{Query: o.Query}
		if o.Err != nil {
			e.Error = o.Err.Error()
		} else {
			e.Message = o.Result.Message(result.NewBreadcrumbs(o.Query))
		}
		entries = append(entries, e)
	}
	if format == config.FormatJSON {
		return writeJSON(w, entries)
	}
	return writeYAML(w, entries)
}
