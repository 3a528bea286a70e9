package sizing

import (
	"github.com/achilleasa/radiance/types"
)

// State is the numeric state the controller carries from one frame to the
// next. The zero value is a valid, uninitialized state; the first step after
// creating or zeroing it always resets.
type State struct {
	// The training dimensions currently requested from the engine.
	ActiveDimensions types.Extent

	// Running mean of the settled samples observed in the current epoch.
	SmoothedSampleCount float64

	// The frame that started the current epoch.
	WindowStartFrame uint64

	// The value drained from the feedback channel on the last step.
	LastRawSample uint32

	// The branch taken on the last step.
	Phase Phase
}

// FrameContext carries the per-frame inputs supplied by the frame driver.
type FrameContext struct {
	// Monotonic frame counter.
	FrameIndex uint64

	// Frame time in nanoseconds. Informational only.
	FrameTime int64

	// Set on camera cuts and any other change that invalidates history.
	ResetRequested bool

	// The target resolution the bound was derived from.
	Resolution types.Extent

	// The current upper bound for the training dimensions.
	MaxDimensions types.Extent
}

// Decision describes the outcome of a single step.
type Decision struct {
	Frame       uint64
	Phase       Phase
	ResetReason ResetReason

	// The dimensions and iteration budget for this frame.
	Dimensions types.Extent
	Iterations uint32

	// The bound the dimensions were clamped against.
	Bound types.Extent

	RawSample       uint32
	SmoothedSamples float64
	WindowStart     uint64

	// The number of settled samples in the epoch, counting this frame.
	// Zero unless the frame was smoothed.
	EpochSample uint64

	// Set when an epoch completed on this frame. Scale holds the damped
	// area scale evaluated at the boundary and Resized reports whether
	// new dimensions were committed.
	EpochEnd bool
	Scale    float64
	Resized  bool
}
