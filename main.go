package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/achilleasa/radiance/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "radiance"
	app.Usage = "simulate adaptive training workload sizing for a radiance cache"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "simulate",
			Usage: "run a scenario against the simulated cache engine",
			Description: `
Drive the training workload controller over a simulated cache engine for the
number of frames in the scenario, applying the scenario events (camera cuts,
resizes, workload changes) along the way.

Without a scenario file the default scenario is used. Flags override the
values from the scenario file.`,
			ArgsUsage: "[scenario.yaml]",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "db",
					Usage: "store per-frame telemetry in this sqlite database",
				},
				cli.BoolFlag{
					Name:  "metrics",
					Usage: "print the run metrics in prometheus text format",
				},
			}, cmd.ScenarioFlags()...),
			Action: cmd.Simulate,
		},
		{
			Name:  "compare",
			Usage: "compare convergence after under- and over-provisioning workload changes",
			Description: `
Run one variant of the scenario per path length factor. Each variant scales the
workload path length by its factor at the given frame. The variants run
concurrently and the number of frames each one needs to converge is reported.`,
			ArgsUsage: "[scenario.yaml]",
			Flags: append([]cli.Flag{
				cli.Uint64Flag{
					Name:  "at",
					Value: 120,
					Usage: "frame at which the path length changes",
				},
				cli.StringSliceFlag{
					Name:  "factor, f",
					Value: &cli.StringSlice{},
					Usage: "path length factor; may be repeated (default 0.5 and 2)",
				},
			}, cmd.ScenarioFlags()...),
			Action: cmd.Compare,
		},
		{
			Name:  "bounds",
			Usage: "print the training workload bound for a resolution",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "width",
					Value: 1920,
					Usage: "frame width",
				},
				cli.UintFlag{
					Name:  "height",
					Value: 1080,
					Usage: "frame height",
				},
				cli.UintFlag{
					Name:  "target-iterations",
					Value: 4,
					Usage: "per-frame training budget in iterations",
				},
				cli.Float64Flag{
					Name:  "headroom",
					Value: 2,
					Usage: "bound headroom over the target budget",
				},
				cli.StringSliceFlag{
					Name:  "path-length, p",
					Value: &cli.StringSlice{},
					Usage: "mean path length; may be repeated",
				},
			},
			Action: cmd.Bounds,
		},
		{
			Name:      "report",
			Usage:     "list stored runs or print the frames of a run",
			ArgsUsage: "[run-id]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "db",
					Usage: "sqlite telemetry database",
				},
				cli.BoolFlag{
					Name:  "all",
					Usage: "list every frame instead of resets and resizes only",
				},
			},
			Action: cmd.Report,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
