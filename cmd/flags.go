package cmd

import (
	"github.com/urfave/cli"

	"github.com/achilleasa/radiance/config"
)

// ScenarioFlags returns the flags shared by the commands that run scenarios.
// Unset flags keep the value from the scenario file.
func ScenarioFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "frames",
			Usage: "number of frames to simulate",
		},
		cli.UintFlag{
			Name:  "width",
			Usage: "frame width",
		},
		cli.UintFlag{
			Name:  "height",
			Usage: "frame height",
		},
		cli.UintFlag{
			Name:  "target-iterations",
			Usage: "per-frame training budget in iterations",
		},
		cli.UintFlag{
			Name:  "max-iterations",
			Usage: "cap for requested training iterations",
		},
		cli.UintFlag{
			Name:  "window",
			Usage: "smoothing window length in frames",
		},
		cli.UintFlag{
			Name:  "depth",
			Usage: "pipeline depth (frames in flight + 1)",
		},
		cli.Float64Flag{
			Name:  "path-length",
			Usage: "mean training records per training pixel",
		},
		cli.Float64Flag{
			Name:  "noise",
			Usage: "relative per-frame sample noise",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "noise seed",
		},
		cli.BoolFlag{
			Name:  "no-adaptive",
			Usage: "disable adaptive training workload sizing",
		},
	}
}

// Load the scenario named by the first argument or the default scenario and
// apply flag overrides.
func loadScenario(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if ctx.NArg() > 0 {
		var err error
		if cfg, err = config.Load(ctx.Args().First()); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("frames") {
		cfg.Frames = ctx.Uint64("frames")
	}
	if ctx.IsSet("width") {
		cfg.Resolution.Width = uint32(ctx.Uint("width"))
	}
	if ctx.IsSet("height") {
		cfg.Resolution.Height = uint32(ctx.Uint("height"))
	}
	if ctx.IsSet("target-iterations") {
		cfg.Controller.TargetIterations = uint32(ctx.Uint("target-iterations"))
	}
	if ctx.IsSet("max-iterations") {
		cfg.Controller.MaxIterations = uint32(ctx.Uint("max-iterations"))
	}
	if ctx.IsSet("window") {
		cfg.Controller.SmoothingWindowFrames = uint32(ctx.Uint("window"))
	}
	if ctx.IsSet("depth") {
		cfg.Controller.PipelineDepth = uint32(ctx.Uint("depth"))
	}
	if ctx.IsSet("path-length") {
		cfg.Workload.PathLength = ctx.Float64("path-length")
	}
	if ctx.IsSet("noise") {
		cfg.Workload.Noise = ctx.Float64("noise")
	}
	if ctx.IsSet("seed") {
		cfg.Workload.Seed = ctx.Int64("seed")
	}
	if ctx.Bool("no-adaptive") {
		cfg.Controller.Adaptive = false
	}

	return cfg, cfg.Validate()
}
