package telemetry

import (
	"context"
	"time"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/renderer"
)

// Record captures the controller decision for a single frame.
type Record struct {
	RunID           string        `json:"runId"`
	Frame           uint64        `json:"frame"`
	Phase           string        `json:"phase"`
	ResetReason     string        `json:"resetReason,omitempty"`
	Width           uint32        `json:"width"`
	Height          uint32        `json:"height"`
	BoundWidth      uint32        `json:"boundWidth"`
	BoundHeight     uint32        `json:"boundHeight"`
	Iterations      uint32        `json:"iterations"`
	RawSamples      uint32        `json:"rawSamples"`
	SmoothedSamples float64       `json:"smoothedSamples"`
	Resized         bool          `json:"resized"`
	FrameTime       time.Duration `json:"frameTime"`
}

// Run describes a recorded simulation run.
type Run struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
	Frames    int       `json:"frames"`
}

// Recorder receives per-frame records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// NewRecord converts renderer frame stats into a record for the given run.
func NewRecord(runID string, stats renderer.FrameStats) Record {
	rec := Record{
		RunID:           runID,
		Frame:           stats.Frame,
		Phase:           stats.Phase.String(),
		Width:           stats.Training.W(),
		Height:          stats.Training.H(),
		BoundWidth:      stats.Bound.W(),
		BoundHeight:     stats.Bound.H(),
		Iterations:      stats.Iterations,
		RawSamples:      stats.RawSamples,
		SmoothedSamples: stats.SmoothedSamples,
		Resized:         stats.Resized,
		FrameTime:       stats.FrameTime,
	}
	if stats.ResetReason != sizing.NoReset {
		rec.ResetReason = stats.ResetReason.String()
	}
	return rec
}

// Observer returns a frame observer that forwards the stats of every rendered
// frame to rec.
func Observer(ctx context.Context, runID string, rec Recorder) renderer.FrameObserver {
	return renderer.FrameObserverFunc(func(stats renderer.FrameStats) error {
		return rec.Record(ctx, NewRecord(runID, stats))
	})
}

type tee []Recorder

// Tee returns a recorder that forwards each record to all recorders in
// order. The first error aborts the fan-out.
func Tee(recorders ...Recorder) Recorder {
	return tee(recorders)
}

func (t tee) Record(ctx context.Context, rec Record) error {
	for _, r := range t {
		if err := r.Record(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
