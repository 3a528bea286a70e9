package sizing

import (
	"github.com/achilleasa/radiance/cache/feedback"
	"github.com/achilleasa/radiance/log"
)

// Controller owns the feedback channel and the state of one cache engine
// instance and logs the decisions taken by the update law.
type Controller struct {
	logger log.Logger

	channel *feedback.Channel
	state   State

	lastDecision Decision
}

// Create a new controller with a feedback channel of the given depth.
func NewController(pipelineDepth uint32) *Controller {
	return &Controller{
		logger:  log.New("sizing"),
		channel: feedback.NewChannel(pipelineDepth),
	}
}

// Get the feedback channel the cache engine must write its sample counts to.
// The returned channel is replaced when Reinit changes the pipeline depth.
func (c *Controller) Channel() *feedback.Channel {
	return c.channel
}

// Get a copy of the controller state.
func (c *Controller) State() State {
	return c.state
}

// Get the decision taken by the last call to Step.
func (c *Controller) LastDecision() Decision {
	return c.lastDecision
}

// Zero the controller state and clear the feedback channel. This must be
// called whenever the cache engine is re-created. Work that is still in
// flight must not write into the new channel.
func (c *Controller) Reinit(pipelineDepth uint32) {
	if pipelineDepth != c.channel.Depth() {
		c.channel = feedback.NewChannel(pipelineDepth)
	} else {
		c.channel.Reset()
	}
	c.state = State{}
	c.lastDecision = Decision{}
	c.logger.Debugf("state reset; pipeline depth %d", c.channel.Depth())
}

// Run the update law for a single frame and return the dimensions and
// iteration budget the engine should use for it.
func (c *Controller) Step(cfg Config, fctx FrameContext) Decision {
	if cfg.PipelineDepth != c.channel.Depth() {
		c.logger.Warningf("configured pipeline depth %d does not match feedback channel depth %d; using channel depth", cfg.PipelineDepth, c.channel.Depth())
		cfg.PipelineDepth = c.channel.Depth()
	}

	prevPhase := c.state.Phase
	prev := c.lastDecision
	decision := Step(&c.state, c.channel, cfg, fctx)
	c.lastDecision = decision

	switch {
	case decision.Phase == Reset && decision.ResetReason.persistent() && prev.ResetReason == decision.ResetReason:
		// Logged when the controller entered this mode.
	case decision.Phase == Reset && decision.ResetReason != ResetNoFeedback:
		c.logger.Infof("frame %d: reset (%s); dimensions %s", decision.Frame, decision.ResetReason, decision.Dimensions)
	case decision.Phase == Reset:
		c.logger.Debugf("frame %d: no feedback drained; reset to bound %s", decision.Frame, decision.Dimensions)
	case decision.Resized:
		c.logger.Infof("frame %d: resized training workload to %s (scale %.3f, smoothed %.0f samples)", decision.Frame, decision.Dimensions, decision.Scale, decision.SmoothedSamples)
	case prevPhase != decision.Phase:
		c.logger.Debugf("frame %d: %s -> %s", decision.Frame, prevPhase, decision.Phase)
	}

	return decision
}
