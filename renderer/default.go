package renderer

import (
	"fmt"
	"time"

	"github.com/achilleasa/radiance/cache/bounds"
	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/log"
	"github.com/achilleasa/radiance/tracer"
	"github.com/achilleasa/radiance/types"
)

// The default renderer drives a single cache engine one frame at a time.
//
// Before stepping the controller for frame f it retires all engine work up to
// frame f+1-depth, the frame whose feedback slot is drained on that step.
// This keeps at most depth-1 frames in flight and is the pacing guarantee
// the feedback channel relies on.
type defaultRenderer struct {
	logger log.Logger

	tracer     tracer.Tracer
	controller *sizing.Controller
	bounds     *bounds.Tracker
	observers  []FrameObserver

	opts       Options
	resolution types.Extent
	frameIndex uint64

	// Changes applied at the start of the next frame.
	pendingReset  bool
	pendingReinit bool

	closed bool
	stats  FrameStats
}

// Create a new renderer that drives the given tracer.
func NewDefault(tr tracer.Tracer, opts Options, observers ...FrameObserver) (Renderer, error) {
	if tr == nil {
		return nil, ErrNoTracer
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.InitialPathLength <= 0 {
		opts.InitialPathLength = 1
	}

	r := &defaultRenderer{
		logger:        log.New("renderer"),
		tracer:        tr,
		controller:    sizing.NewController(opts.Controller.PipelineDepth),
		bounds:        bounds.NewTracker(opts.BoundHeadroom),
		observers:     observers,
		opts:          opts,
		resolution:    opts.Resolution,
		pendingReinit: true,
	}

	if err := tr.Init(opts.Resolution); err != nil {
		return nil, err
	}

	return r, nil
}

// Render the next frame.
func (r *defaultRenderer) Render() error {
	if r.closed {
		return ErrClosed
	}

	start := time.Now()
	frame := r.frameIndex
	cfg := r.opts.Controller
	depth := uint64(cfg.PipelineDepth)

	if r.pendingReinit {
		r.reinit()
	}
	if err := r.tracer.ApplyPendingChanges(); err != nil {
		return err
	}

	// Settle the frame whose feedback slot is drained by this step.
	if frame+1 >= depth {
		if err := r.tracer.Retire(frame + 1 - depth); err != nil {
			return err
		}
	}
	if inFlight := r.tracer.InFlight(); uint64(inFlight) >= depth {
		return fmt.Errorf("%w: %d frame(s) in flight with pipeline depth %d", ErrPipelineOverrun, inFlight, depth)
	}

	engineStats := r.tracer.Stats()
	pathLength := engineStats.AvgPathLength
	if pathLength == 0 {
		pathLength = r.opts.InitialPathLength
	}
	bound, changed := r.bounds.Update(r.resolution, cfg.TargetIterations, pathLength)
	if changed {
		r.logger.Infof("frame %d: training bound set to %s (path length %.2f)", frame, bound, pathLength)
	}

	decision := r.controller.Step(cfg, sizing.FrameContext{
		FrameIndex:     frame,
		FrameTime:      int64(engineStats.ExecTime),
		ResetRequested: r.pendingReset,
		Resolution:     r.resolution,
		MaxDimensions:  bound,
	})
	r.pendingReset = false

	// The step drained this frame's feedback slot, so the frame is consumed
	// even if the dispatch below fails.
	r.frameIndex++

	req := tracer.DispatchRequest{
		FrameIndex: frame,
		Primary:    r.resolution,
		Training:   decision.Dimensions,
		Iterations: decision.Iterations,
	}
	if err := r.tracer.Dispatch(req); err != nil {
		return err
	}

	r.stats = FrameStats{
		Frame:           frame,
		Phase:           decision.Phase,
		ResetReason:     decision.ResetReason,
		Resolution:      r.resolution,
		Bound:           decision.Bound,
		Training:        decision.Dimensions,
		Combined:        req.Combined(),
		BoundCoverage:   decision.Dimensions.Coverage(decision.Bound),
		Iterations:      decision.Iterations,
		RawSamples:      decision.RawSample,
		SmoothedSamples: decision.SmoothedSamples,
		EpochEnd:        decision.EpochEnd,
		Resized:         decision.Resized,
		Scale:           decision.Scale,
		FrameTime:       engineStats.ExecTime,
		RenderTime:      time.Since(start),
	}

	for _, observer := range r.observers {
		if err := observer.ObserveFrame(r.stats); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown renderer and the attached tracer.
func (r *defaultRenderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.tracer.Close()
}

// Get stats for the last rendered frame.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Request a history reset on the next frame.
func (r *defaultRenderer) CameraCut() {
	r.pendingReset = true
}

// Change the target resolution.
func (r *defaultRenderer) Resize(resolution types.Extent) {
	if resolution == r.resolution || resolution.Area() == 0 {
		return
	}
	r.resolution = resolution
	r.pendingReinit = true
}

// Toggle adaptive training workload sizing. The controller state is
// re-created as for any other feature toggle.
func (r *defaultRenderer) SetAdaptive(enabled bool) {
	if enabled == r.opts.Controller.AdaptiveEnabled {
		return
	}
	r.opts.Controller.AdaptiveEnabled = enabled
	r.pendingReinit = true
}

// Change the target training budget. The bound is re-derived on the next
// frame.
func (r *defaultRenderer) SetTargetIterations(iterations uint32) error {
	cfg := r.opts.Controller
	cfg.TargetIterations = iterations
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.opts.Controller = cfg
	return nil
}

// Re-create the controller state and hand a fresh feedback channel to the
// engine. Work still in flight is discarded by the engine.
func (r *defaultRenderer) reinit() {
	r.logger.Noticef("frame %d: initializing cache engine for %s (adaptive %t)", r.frameIndex, r.resolution, r.opts.Controller.AdaptiveEnabled)

	r.controller.Reinit(r.opts.Controller.PipelineDepth)
	r.bounds.Invalidate()
	r.tracer.AppendChange(tracer.SetFrameDimensions, r.resolution)
	r.tracer.AppendChange(tracer.SetFeedbackChannel, r.controller.Channel())
	r.pendingReinit = false
}
