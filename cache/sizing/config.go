package sizing

import "fmt"

// The number of training records in one iteration batch.
const RecordsPerIteration = 16384

// Damping factors applied to the area scale at each epoch boundary. An
// under-provisioned workload exaggerates its deficit so the next estimate
// overshoots upwards; an over-provisioned one decays slowly towards 1 and
// never below it.
const (
	underProvisionedDamping = 0.9
	overProvisionedDamping  = 0.98
)

// Config holds the tunables read by the controller on every step. Fields may
// be changed between frames.
type Config struct {
	// When false the controller always selects the maximum dimensions.
	AdaptiveEnabled bool

	// The per-frame training budget, in iterations, the controller tries to
	// converge to and the hard cap for requested iterations.
	TargetIterations uint32
	MaxIterations    uint32

	// Length of one convergence epoch in settled frames. Values <= 1
	// disable smoothing and keep the controller in RESET.
	SmoothingWindowFrames uint32

	// Number of frames the GPU may execute concurrently with the CPU.
	PipelineDepth uint32
}

// Get the per-frame sample count the controller converges to.
func (cfg Config) TargetSamples() float64 {
	return float64(cfg.TargetIterations) * RecordsPerIteration
}

// Check the config for values the controller cannot operate with.
func (cfg Config) Validate() error {
	if cfg.PipelineDepth < 2 {
		return fmt.Errorf("%w: pipeline depth must be at least 2; got %d", ErrInvalidConfig, cfg.PipelineDepth)
	}
	if cfg.TargetIterations == 0 {
		return fmt.Errorf("%w: target iterations must be at least 1", ErrInvalidConfig)
	}
	if cfg.MaxIterations < cfg.TargetIterations {
		return fmt.Errorf("%w: max iterations (%d) must not be less than target iterations (%d)", ErrInvalidConfig, cfg.MaxIterations, cfg.TargetIterations)
	}
	return nil
}
