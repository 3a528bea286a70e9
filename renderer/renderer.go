package renderer

import (
	"github.com/achilleasa/radiance/types"
)

type Renderer interface {
	// Render the next frame.
	Render() error

	// Shutdown renderer and the attached tracer.
	Close()

	// Get stats for the last rendered frame.
	Stats() FrameStats

	// Request a history reset on the next frame (camera cut).
	CameraCut()

	// Change the target resolution. The cache engine is re-initialized on
	// the next frame.
	Resize(resolution types.Extent)

	// Toggle adaptive training workload sizing.
	SetAdaptive(enabled bool)

	// Change the target training budget.
	SetTargetIterations(iterations uint32) error
}

// FrameObserver is notified after every rendered frame.
type FrameObserver interface {
	ObserveFrame(FrameStats) error
}

// FrameObserverFunc adapts a function to a FrameObserver.
type FrameObserverFunc func(FrameStats) error

func (fn FrameObserverFunc) ObserveFrame(stats FrameStats) error {
	return fn(stats)
}
