// Package config loads simulation scenarios from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/renderer"
	"github.com/achilleasa/radiance/tracer/sim"
	"github.com/achilleasa/radiance/types"
)

type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Extent returns the resolution as frame dimensions.
func (r Resolution) Extent() types.Extent {
	return types.Dims(r.Width, r.Height)
}

// Controller tunables.
type Controller struct {
	Adaptive              bool    `json:"adaptive"`
	TargetIterations      uint32  `json:"targetIterations"`
	MaxIterations         uint32  `json:"maxIterations"`
	SmoothingWindowFrames uint32  `json:"smoothingWindowFrames"`
	PipelineDepth         uint32  `json:"pipelineDepth"`
	BoundHeadroom         float64 `json:"boundHeadroom,omitempty"`
}

// Workload parameters of the simulated cache engine.
type Workload struct {
	PathLength      float64  `json:"pathLength"`
	Noise           float64  `json:"noise"`
	Seed            int64    `json:"seed"`
	CapByIterations bool     `json:"capByIterations,omitempty"`
	Passes          uint32   `json:"passes,omitempty"`
	CellTime        Duration `json:"cellTime,omitempty"`
}

type Config struct {
	Name       string     `json:"name"`
	Frames     uint64     `json:"frames"`
	Resolution Resolution `json:"resolution"`
	Controller Controller `json:"controller"`
	Workload   Workload   `json:"workload"`
	Events     []Event    `json:"events,omitempty"`
}

// Default returns the baseline scenario.
func Default() Config {
	return Config{
		Name:       "default",
		Frames:     600,
		Resolution: Resolution{Width: 1920, Height: 1080},
		Controller: Controller{
			Adaptive:              true,
			TargetIterations:      4,
			MaxIterations:         8,
			SmoothingWindowFrames: 8,
			PipelineDepth:         3,
		},
		Workload: Workload{
			PathLength: 4,
			Noise:      0.05,
			Seed:       1,
			Passes:     1,
			CellTime:   Duration{time.Nanosecond},
		},
	}
}

// Load a scenario from a YAML file. Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse a YAML scenario.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns the first violated rule.
func (cfg Config) Validate() error {
	if cfg.Resolution.Width == 0 || cfg.Resolution.Height == 0 {
		return fmt.Errorf("%w: frame dimensions must be at least 1x1; got %s", ErrInvalid, cfg.Resolution.Extent())
	}
	if err := cfg.Sizing().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if cfg.Workload.PathLength <= 0 {
		return fmt.Errorf("%w: workload path length must be positive; got %g", ErrInvalid, cfg.Workload.PathLength)
	}
	if cfg.Workload.Noise < 0 || cfg.Workload.Noise >= 1 {
		return fmt.Errorf("%w: workload noise must be in [0, 1); got %g", ErrInvalid, cfg.Workload.Noise)
	}
	if cfg.Workload.CellTime.Duration < 0 {
		return fmt.Errorf("%w: cell time must not be negative; got %s", ErrInvalid, cfg.Workload.CellTime)
	}
	if cfg.Controller.BoundHeadroom < 0 {
		return fmt.Errorf("%w: bound headroom must not be negative; got %g", ErrInvalid, cfg.Controller.BoundHeadroom)
	}
	for i, ev := range cfg.Events {
		if err := ev.validate(cfg.Controller.MaxIterations); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrInvalid, i, err)
		}
	}
	return nil
}

// Sizing returns the controller config.
func (cfg Config) Sizing() sizing.Config {
	return sizing.Config{
		AdaptiveEnabled:       cfg.Controller.Adaptive,
		TargetIterations:      cfg.Controller.TargetIterations,
		MaxIterations:         cfg.Controller.MaxIterations,
		SmoothingWindowFrames: cfg.Controller.SmoothingWindowFrames,
		PipelineDepth:         cfg.Controller.PipelineDepth,
	}
}

// RendererOptions returns the frame driver options.
func (cfg Config) RendererOptions() renderer.Options {
	return renderer.Options{
		Resolution:        cfg.Resolution.Extent(),
		Controller:        cfg.Sizing(),
		BoundHeadroom:     cfg.Controller.BoundHeadroom,
		InitialPathLength: cfg.Workload.PathLength,
	}
}

// SimOptions returns the simulated engine options.
func (cfg Config) SimOptions() sim.Options {
	return sim.Options{
		PathLength:      cfg.Workload.PathLength,
		Noise:           cfg.Workload.Noise,
		Seed:            cfg.Workload.Seed,
		CapByIterations: cfg.Workload.CapByIterations,
		Passes:          cfg.Workload.Passes,
		CellTime:        cfg.Workload.CellTime.Duration,
	}
}
