package renderer

import (
	"fmt"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/types"
)

type Options struct {
	// Initial frame dims.
	Resolution types.Extent

	// Training workload controller tunables.
	Controller sizing.Config

	// Headroom used when deriving the training bound. Zero selects the
	// default.
	BoundHeadroom float64

	// Path length assumed for the bound until the engine reports one.
	InitialPathLength float64
}

func (opts Options) validate() error {
	if opts.Resolution.Area() == 0 {
		return fmt.Errorf("%w: empty resolution %s", ErrInvalidOptions, opts.Resolution)
	}
	if err := opts.Controller.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
