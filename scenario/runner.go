// Package scenario drives the frame renderer over a simulated cache engine
// and applies the scripted events of a scenario.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/config"
	"github.com/achilleasa/radiance/log"
	"github.com/achilleasa/radiance/renderer"
	"github.com/achilleasa/radiance/telemetry"
	"github.com/achilleasa/radiance/tracer"
	"github.com/achilleasa/radiance/tracer/sim"
)

type Options struct {
	// Optional store for per-frame records. The run is registered with the
	// store before the first frame.
	Store telemetry.Store

	// Additional recorders such as metrics.
	Recorders []telemetry.Recorder
}

// Run a scenario to completion.
func Run(ctx context.Context, cfg config.Config, opts Options) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(fmt.Sprintf("scenario (%s)", cfg.Name))
	runID := uuid.NewString()
	summary := newSummary(runID, cfg.Name, cfg.Sizing().TargetSamples())

	recorders := append([]telemetry.Recorder(nil), opts.Recorders...)
	if opts.Store != nil {
		err := opts.Store.BeginRun(ctx, telemetry.Run{ID: runID, Name: cfg.Name, StartedAt: time.Now().UTC()})
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, opts.Store)
	}

	observers := []renderer.FrameObserver{summary}
	if len(recorders) != 0 {
		observers = append(observers, telemetry.Observer(ctx, runID, telemetry.Tee(recorders...)))
	}

	tr := sim.New(cfg.Name, cfg.SimOptions())
	r, err := renderer.NewDefault(tr, cfg.RendererOptions(), observers...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	logger.Infof("running %d frames (run %s)", cfg.Frames, runID)
	schedule := cfg.Schedule()
	controllerCfg := cfg.Sizing()
	for frame := uint64(0); frame < cfg.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, ev := range schedule[frame] {
			logger.Infof("frame %d: %s", frame, ev)
			if err := apply(r, tr, &controllerCfg, ev); err != nil {
				return nil, fmt.Errorf("frame %d: %w", frame, err)
			}
			summary.markEvent(frame)
			summary.updateTarget(controllerCfg.TargetSamples())
		}

		if err := r.Render(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame, err)
		}
	}

	logger.Noticef("completed %d frames; final training workload %s", summary.Frames, summary.Final.Training)
	return summary, nil
}

func apply(r renderer.Renderer, tr tracer.Tracer, cfg *sizing.Config, ev config.Event) error {
	switch ev.Kind {
	case config.CameraCut:
		r.CameraCut()
	case config.Resize:
		r.Resize(config.Resolution{Width: ev.Width, Height: ev.Height}.Extent())
	case config.PathLength:
		tr.AppendChange(tracer.SetPathLength, ev.PathLength)
	case config.Adaptive:
		r.SetAdaptive(*ev.Enabled)
	case config.TargetIterations:
		if err := r.SetTargetIterations(ev.Iterations); err != nil {
			return err
		}
		cfg.TargetIterations = ev.Iterations
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Kind)
	}
	return nil
}
