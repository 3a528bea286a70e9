package tracer

import (
	"time"

	"github.com/achilleasa/radiance/types"
)

type ChangeType uint8

const (
	// Re-create engine resources for a new resolution (types.Extent).
	SetFrameDimensions ChangeType = iota

	// Attach the feedback channel (*feedback.Channel) sample counts are
	// written to. Work submitted before the change never writes into the
	// new channel.
	SetFeedbackChannel

	// Change the mean path length of the simulated scene (float64).
	SetPathLength
)

// Engine statistics, updated whenever a frame retires.
type Stats struct {
	// The last retired frame and the training samples it produced.
	Frame           uint64
	TrainingSamples uint32

	// Smoothed number of training records produced per training pixel.
	// Zero until the first frame retires.
	AvgPathLength float64

	// The time spent executing the last retired frame.
	ExecTime time.Duration
}

// A Tracer is the cache engine that executes the combined per-frame dispatch
// and reports the number of training samples each frame produced through
// the attached feedback channel.
type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Setup the tracer for the given resolution.
	Init(resolution types.Extent) error

	// Append a change to the tracer's update buffer.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Submit the work for one frame. This call does not wait for the work
	// to complete.
	Dispatch(DispatchRequest) error

	// Wait until all frames up to and including frameIndex have completed
	// and written their sample counts.
	Retire(frameIndex uint64) error

	// Get the number of submitted frames that have not retired yet.
	InFlight() int

	// Retrieve engine statistics.
	Stats() *Stats
}
