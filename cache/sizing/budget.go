package sizing

import "math"

// Convert a smoothed per-frame sample estimate into an iteration budget.
//
// Without data the budget is padded to maxIterations. Otherwise the estimate
// is rounded to whole batches after subtracting half a batch: the engine pads
// a partially filled iteration internally, so asking for one that would be
// mostly empty only costs time.
func RequestedIterations(smoothed float64, maxIterations uint32) uint32 {
	if smoothed == 0 {
		return maxIterations
	}

	const halfBatch = 0.5 * RecordsPerIteration
	excess := math.Max(smoothed, halfBatch) - halfBatch
	iterations := math.Ceil(excess / RecordsPerIteration)
	if math.IsNaN(iterations) || iterations >= float64(maxIterations) {
		return maxIterations
	}
	return uint32(iterations)
}

// Get the damped ratio between the observed and the target sample count.
func DampedScale(smoothed, target float64) float64 {
	if target <= 0 {
		return 1
	}

	scale := smoothed / target
	if scale < 1 {
		return scale * underProvisionedDamping
	}
	return math.Max(1, scale*overProvisionedDamping)
}
