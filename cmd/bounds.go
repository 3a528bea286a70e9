package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/achilleasa/radiance/cache/bounds"
	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/types"
)

// Print the training bound derived for a resolution and a set of path
// lengths.
func Bounds(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	resolution := types.Dims(uint32(ctx.Uint("width")), uint32(ctx.Uint("height")))
	target := uint32(ctx.Uint("target-iterations"))
	headroom := ctx.Float64("headroom")
	if resolution.Area() == 0 || target == 0 {
		return fmt.Errorf("resolution and target iterations must be non-zero")
	}

	pathLengths := ctx.StringSlice("path-length")
	if len(pathLengths) == 0 {
		pathLengths = []string{"1", "2", "4", "8"}
	}

	var buf bytes.Buffer
	table := newTable(&buf, "Path length", "Bound", "Area", "Records at bound", "Target records")
	for _, value := range pathLengths {
		pathLength, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid path length %q", value)
		}

		bound := bounds.MaxDimensions(resolution, target, pathLength, headroom)
		table.Append([]string{
			value,
			bound.String(),
			humanize.Comma(int64(bound.Area())),
			humanize.Comma(int64(float64(bound.Area()) * pathLength)),
			humanize.Comma(int64(target) * sizing.RecordsPerIteration),
		})
	}
	table.Render()

	logger.Noticef("training bounds for %s\n%s", resolution, buf.String())
	return nil
}
