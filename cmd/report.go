package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/achilleasa/radiance/telemetry"
)

// List the runs in a telemetry database or print the frames of one run.
func Report(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	dbPath := ctx.String("db")
	if dbPath == "" {
		return errors.New("missing --db argument")
	}

	bg := context.Background()
	store, err := openStore(bg, dbPath)
	if err != nil {
		return err
	}
	defer telemetry.CloseIfSupported(store)

	if ctx.NArg() == 0 {
		runs, err := store.Runs(bg)
		if err != nil {
			return err
		}
		logger.Noticef("%d stored run(s)\n%s", len(runs), runTable(runs))
		return nil
	}

	runID := ctx.Args().First()
	records, found, err := store.Frames(bg, runID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", telemetry.ErrUnknownRun, runID)
	}
	logger.Noticef("run %s: %d frame(s)\n%s", runID, len(records), frameTable(records, ctx.Bool("all")))
	return nil
}
