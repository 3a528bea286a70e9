package renderer

import (
	"time"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/types"
)

type FrameStats struct {
	Frame uint64

	// The update law branch taken for this frame.
	Phase       sizing.Phase
	ResetReason sizing.ResetReason

	// Dimensions of the primary work, the training bound, the selected
	// training work and the combined dispatch.
	Resolution types.Extent
	Bound      types.Extent
	Training   types.Extent
	Combined   types.Extent

	// Per-axis fraction of the bound used by the training work.
	BoundCoverage types.Vec2

	// The requested training budget.
	Iterations uint32

	// The sample count drained this frame and the epoch estimate.
	RawSamples      uint32
	SmoothedSamples float64

	// Set when a smoothing epoch completed on this frame.
	EpochEnd bool
	Resized  bool
	Scale    float64

	// Engine execution time of the last retired frame.
	FrameTime time.Duration

	// Time spent in the frame hook.
	RenderTime time.Duration
}
