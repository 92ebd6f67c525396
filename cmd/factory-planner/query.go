package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/result"
)

func (a *app) queryCmd() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a single query",
		ArgsUsage: "<query text>",
		Description: `Run one planner query and print the result, for example:

  factory-planner query produce 60 iron rods from ? iron ore
  factory-planner query --dot rods.gv produce 60 iron rods
  factory-planner query compare recipes for screws`,
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:  "dot",
				Usage: "write the flow graph of an optimization to this file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			raw := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(raw) == "" {
				return errors.New("query text is required")
			}
			format, err := a.format(cmd)
			if err != nil {
				return err
			}

			eng, closeDB, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.Query(ctx, raw)
			if err != nil {
				return err
			}
			if err := writeResult(cmd.Root().Writer, format, res, result.NewBreadcrumbs(raw)); err != nil {
				return err
			}

			if path := cmd.String("dot"); path != "" {
				return writeDOT(path, res)
			}
			return nil
		},
	}
}

func writeDOT(path string, res result.Result) error {
	opt, ok := res.(*result.Optimization)
	if !ok || !opt.HasSolution() {
		return errors.New("no flow graph: the query did not produce an optimal solution")
	}
	if err := os.WriteFile(path, []byte(opt.Graph().DOT()), 0o644); err != nil {
		return fmt.Errorf("writing flow graph: %w", err)
	}
	return nil
}
