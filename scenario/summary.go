package scenario

import (
	"math"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/renderer"
)

// The relative distance from the target sample count within which a frame
// counts as converged.
const DefaultTolerance = 0.1

// Summary aggregates the per-frame stats of a scenario run.
type Summary struct {
	RunID  string
	Name   string
	Frames uint64

	// Stats of the last rendered frame.
	Final renderer.FrameStats

	// Stats of the first epoch and of every epoch that committed new
	// dimensions. A converged controller closes an epoch on every frame, so
	// the remaining ones are only counted.
	Epochs     []renderer.FrameStats
	EpochCount int

	// Stats of the most recent epoch.
	LastEpoch renderer.FrameStats

	Resets  map[sizing.ResetReason]int
	Resizes int

	// The frame of the last scenario event; convergence is measured from it.
	LastEventFrame uint64

	// Converged reports whether the drained sample count stayed within the
	// tolerance band around the target from ConvergedFrame onwards.
	Converged      bool
	ConvergedFrame uint64

	target        float64
	tolerance     float64
	lastOutOfBand int64
}

func newSummary(runID, name string, target float64) *Summary {
	return &Summary{
		RunID:         runID,
		Name:          name,
		Resets:        make(map[sizing.ResetReason]int),
		target:        target,
		tolerance:     DefaultTolerance,
		lastOutOfBand: -1,
	}
}

// FramesToConverge returns the number of frames between the last event and
// convergence or -1 if the run did not converge.
func (s *Summary) FramesToConverge() int64 {
	if !s.Converged {
		return -1
	}
	return int64(s.ConvergedFrame - s.LastEventFrame)
}

// EpochRows returns the recorded epochs followed by the most recent one if it
// was not recorded.
func (s *Summary) EpochRows() []renderer.FrameStats {
	rows := append([]renderer.FrameStats(nil), s.Epochs...)
	if s.EpochCount != 0 && (len(rows) == 0 || rows[len(rows)-1].Frame != s.LastEpoch.Frame) {
		rows = append(rows, s.LastEpoch)
	}
	return rows
}

// Mark the frame at which a scenario event was applied.
func (s *Summary) markEvent(frame uint64) {
	s.LastEventFrame = frame
	s.lastOutOfBand = int64(frame) - 1
}

func (s *Summary) ObserveFrame(stats renderer.FrameStats) error {
	s.Frames++
	s.Final = stats
	if stats.ResetReason != sizing.NoReset {
		s.Resets[stats.ResetReason]++
	}
	if stats.EpochEnd {
		s.EpochCount++
		s.LastEpoch = stats
		if stats.Resized || s.EpochCount == 1 {
			s.Epochs = append(s.Epochs, stats)
		}
	}
	if stats.Resized {
		s.Resizes++
	}

	if math.Abs(float64(stats.RawSamples)-s.target) > s.tolerance*s.target {
		s.lastOutOfBand = int64(stats.Frame)
	}
	s.Converged = s.lastOutOfBand < int64(stats.Frame)
	s.ConvergedFrame = uint64(s.lastOutOfBand + 1)
	return nil
}

// updateTarget re-bases convergence on a new target sample count.
func (s *Summary) updateTarget(target float64) {
	s.target = target
}
