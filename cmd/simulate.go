package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli"

	"github.com/achilleasa/radiance/scenario"
	"github.com/achilleasa/radiance/telemetry"
)

// Run a single scenario and print the epoch and summary tables.
func Simulate(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadScenario(ctx)
	if err != nil {
		return err
	}

	var opts scenario.Options
	if dbPath := ctx.String("db"); dbPath != "" {
		store, err := openStore(context.Background(), dbPath)
		if err != nil {
			return err
		}
		defer telemetry.CloseIfSupported(store)
		opts.Store = store
	}

	var metrics *telemetry.Metrics
	if ctx.Bool("metrics") {
		metrics = telemetry.NewMetrics()
		opts.Recorders = append(opts.Recorders, metrics)
	}

	summary, err := scenario.Run(context.Background(), cfg, opts)
	if err != nil {
		return err
	}

	logger.Noticef("epochs (%d total, %d resized)\n%s", summary.EpochCount, summary.Resizes, epochTable(summary))
	logger.Noticef("summary (run %s)\n%s", summary.RunID, summaryTable(summary))

	if metrics != nil {
		return metrics.WriteText(os.Stdout)
	}
	return nil
}

func openStore(ctx context.Context, dbPath string) (telemetry.Store, error) {
	store, err := telemetry.NewStore("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
