package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/achilleasa/radiance/scenario"
)

// Run under- and over-provisioned variants of a scenario concurrently and
// compare how fast each one converges.
func Compare(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadScenario(ctx)
	if err != nil {
		return err
	}

	at := ctx.Uint64("at")
	if at >= cfg.Frames {
		return fmt.Errorf("change frame %d is past the end of the scenario (%d frames)", at, cfg.Frames)
	}

	var factors []float64
	for _, value := range ctx.StringSlice("factor") {
		factor, err := strconv.ParseFloat(value, 64)
		if err != nil || factor <= 0 {
			return fmt.Errorf("invalid path length factor %q", value)
		}
		factors = append(factors, factor)
	}
	if len(factors) == 0 {
		factors = []float64{0.5, 2}
	}

	variants := scenario.ProvisioningVariants(cfg, at, factors...)
	summaries := make([]*scenario.Summary, len(variants))

	g, gctx := errgroup.WithContext(context.Background())
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			summary, err := scenario.Run(gctx, variant.Config, scenario.Options{})
			if err != nil {
				return fmt.Errorf("%s: %w", variant.Name, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Noticef("path length change at frame %d\n%s", at, summaryTable(summaries...))
	return nil
}
