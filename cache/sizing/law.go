package sizing

import (
	"math"

	"github.com/achilleasa/radiance/cache/feedback"
	"github.com/achilleasa/radiance/types"
)

var minDimensions = types.Dims(1, 1)

// Step advances the controller state by one frame.
//
// The value drained from the channel was produced using the dimensions
// selected one full ring cycle ago, so every decision is made on information
// that is stale by the pipeline depth. After a reset the controller waits for
// PipelineDepth frames until samples produced with the new dimensions start
// draining and then averages them over SmoothingWindowFrames settled frames.
// At the end of each epoch the dimensions are rescaled so that the expected
// sample count matches the target. If the rescale is a no-op the epoch slides
// forward by one frame so a converged controller re-evaluates every frame.
//
// The bound in fctx is applied on every call, not only at epoch boundaries.
func Step(state *State, ch *feedback.Channel, cfg Config, fctx FrameContext) Decision {
	bound := fctx.MaxDimensions.AtLeast(1)
	depth := uint64(cfg.PipelineDepth)

	raw := ch.Drain(fctx.FrameIndex)
	state.LastRawSample = raw

	decision := Decision{
		Frame:     fctx.FrameIndex,
		Bound:     bound,
		RawSample: raw,
	}

	reason := resetReason(state, cfg, fctx, raw)
	switch {
	case reason != NoReset:
		state.Phase = Reset
		state.ActiveDimensions = bound
		state.SmoothedSampleCount = 0
		state.WindowStartFrame = fctx.FrameIndex
	case fctx.FrameIndex-state.WindowStartFrame < depth:
		state.Phase = Waiting
		state.ActiveDimensions = state.ActiveDimensions.Clamp(minDimensions, bound)
	default:
		state.Phase = Smoothing
		state.ActiveDimensions = state.ActiveDimensions.Clamp(minDimensions, bound)

		n := fctx.FrameIndex - state.WindowStartFrame - depth + 1
		state.SmoothedSampleCount = lerp(state.SmoothedSampleCount, float64(raw), 1/float64(n))
		decision.EpochSample = n

		if n == uint64(cfg.SmoothingWindowFrames) {
			decision.EpochEnd = true
			decision.Scale = DampedScale(state.SmoothedSampleCount, cfg.TargetSamples())

			perAxisScale := 1 / math.Sqrt(decision.Scale)
			candidate := state.ActiveDimensions.ScaleCeil(perAxisScale).Clamp(minDimensions, bound)
			if candidate != state.ActiveDimensions {
				state.ActiveDimensions = candidate
				state.WindowStartFrame = fctx.FrameIndex
				decision.Resized = true
			} else {
				state.WindowStartFrame++
			}
		}
	}

	decision.Phase = state.Phase
	decision.ResetReason = reason
	decision.Dimensions = state.ActiveDimensions
	decision.SmoothedSamples = state.SmoothedSampleCount
	decision.WindowStart = state.WindowStartFrame
	decision.Iterations = RequestedIterations(state.SmoothedSampleCount, cfg.MaxIterations)
	return decision
}

func resetReason(state *State, cfg Config, fctx FrameContext, raw uint32) ResetReason {
	switch {
	case !cfg.AdaptiveEnabled:
		return ResetAdaptiveDisabled
	case fctx.ResetRequested:
		return ResetRequested
	case state.ActiveDimensions.Area() == 0:
		return ResetUninitialized
	case cfg.SmoothingWindowFrames <= 1:
		return ResetSmoothingDisabled
	case raw == 0:
		return ResetNoFeedback
	case fctx.FrameIndex < state.WindowStartFrame:
		// Frame counter went backwards without a re-init.
		return ResetFrameGap
	case fctx.FrameIndex-state.WindowStartFrame+1 > uint64(cfg.SmoothingWindowFrames)+uint64(cfg.PipelineDepth):
		return ResetFrameGap
	}
	return NoReset
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
