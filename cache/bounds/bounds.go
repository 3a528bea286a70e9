// Package bounds derives the upper bound for the training workload
// dimensions from the target resolution, the iteration target and the mean
// path length reported by the cache engine.
package bounds

import (
	"math"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/types"
)

// DefaultHeadroom lets the controller grow the workload up to twice the size
// that would produce the target sample count at the current path length.
const DefaultHeadroom = 2.0

// Path lengths are compared at this granularity to decide whether the bound
// needs to be recomputed.
const pathLengthSteps = 8

// Get the largest training dimensions worth dispatching. The result keeps
// the aspect ratio of the resolution and never exceeds it.
func MaxDimensions(resolution types.Extent, targetIterations uint32, avgPathLength, headroom float64) types.Extent {
	res := resolution.AtLeast(1)
	if math.IsNaN(avgPathLength) || avgPathLength < 1 {
		avgPathLength = 1
	}
	headroom = headroomOrDefault(headroom)

	records := float64(targetIterations) * sizing.RecordsPerIteration * headroom
	pixels := math.Max(1, math.Ceil(records/avgPathLength))
	aspect := float64(res.W()) / float64(res.H())

	w := math.Min(math.Ceil(math.Sqrt(pixels*aspect)), float64(res.W()))
	w = math.Max(w, 1)
	h := math.Min(math.Ceil(pixels/w), float64(res.H()))

	return types.Dims(uint32(w), uint32(h)).AtLeast(1)
}

// Tracker caches the bound and recomputes it when one of its inputs changes.
type Tracker struct {
	headroom float64

	resolution       types.Extent
	targetIterations uint32
	pathLengthStep   int64

	bound types.Extent
	valid bool
}

// Create a tracker. A non-positive or NaN headroom selects DefaultHeadroom.
func NewTracker(headroom float64) *Tracker {
	return &Tracker{headroom: headroomOrDefault(headroom)}
}

// Get the last computed bound.
func (t *Tracker) Bound() types.Extent {
	return t.bound
}

// Refresh the bound for the given inputs and report whether it changed.
func (t *Tracker) Update(resolution types.Extent, targetIterations uint32, avgPathLength float64) (types.Extent, bool) {
	var step int64
	if !math.IsNaN(avgPathLength) && avgPathLength > 0 {
		step = int64(math.Round(math.Min(avgPathLength, math.MaxInt32) * pathLengthSteps))
	}
	if t.valid && resolution == t.resolution && targetIterations == t.targetIterations && step == t.pathLengthStep {
		return t.bound, false
	}

	t.resolution = resolution
	t.targetIterations = targetIterations
	t.pathLengthStep = step
	t.valid = true

	bound := MaxDimensions(resolution, targetIterations, float64(step)/pathLengthSteps, t.headroom)
	changed := bound != t.bound
	t.bound = bound
	return bound, changed
}

// Forget the cached inputs so the next update recomputes the bound.
func (t *Tracker) Invalidate() {
	t.valid = false
}

func headroomOrDefault(headroom float64) float64 {
	if math.IsNaN(headroom) || headroom <= 0 {
		return DefaultHeadroom
	}
	return headroom
}
