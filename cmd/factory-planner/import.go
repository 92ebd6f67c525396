package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/internal/factory/sync"
)

func (a *app) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the catalog with a JSON or YAML document",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("catalog file is required")
			}

			database, err := db.OpenAndInit(ctx, a.cfg.DB)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			syncer := sync.NewSyncer(database)
			previous, replacing, err := syncer.LastSync(ctx)
			if err != nil {
				a.logger.Warn("reading last sync", "error", err)
			}

			a.logger.Info("importing catalog", "file", path, "db", a.cfg.DB)
			stats, err := syncer.ImportCatalogFromFile(ctx, path)
			if err != nil {
				return err
			}
			a.logger.Info("catalog imported successfully",
				"items", stats.Items,
				"crafters", stats.Crafters,
				"generators", stats.Generators,
				"recipes", stats.Recipes,
				"power_recipes", stats.PowerRecipes)

			w := cmd.Root().Writer
			fmt.Fprintf(w, "Imported %d items, %d crafters, %d generators, %d recipes, %d power recipes.\n",
				stats.Items, stats.Crafters, stats.Generators, stats.Recipes, stats.PowerRecipes)
			if replacing {
				fmt.Fprintf(w, "Replaced the catalog imported %s (%s).\n",
					humanize.Time(previous), previous.Format(time.RFC3339))
			}
			return nil
		},
	}
}
