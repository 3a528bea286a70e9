package sizing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/achilleasa/radiance/cache/feedback"
	"github.com/achilleasa/radiance/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const baseFrame = 100

func testConfig() Config {
	return Config{
		AdaptiveEnabled:       true,
		TargetIterations:      4,
		MaxIterations:         8,
		SmoothingWindowFrames: 4,
		PipelineDepth:         3,
	}
}

// Make the channel yield v when frame is drained by placing the value in the
// slot written a full ring cycle earlier.
func feed(ch *feedback.Channel, frame uint64, v uint32) {
	ch.Write(frame+1-uint64(ch.Depth()), v)
}

type harness struct {
	t     *testing.T
	cfg   Config
	state State
	ch    *feedback.Channel
	frame uint64
	bound types.Extent
}

func newHarness(t *testing.T, cfg Config, bound types.Extent) *harness {
	return &harness{
		t:     t,
		cfg:   cfg,
		ch:    feedback.NewChannel(cfg.PipelineDepth),
		frame: baseFrame,
		bound: bound,
	}
}

func (h *harness) step(raw uint32, reset bool) Decision {
	feed(h.ch, h.frame, raw)
	d := Step(&h.state, h.ch, h.cfg, FrameContext{
		FrameIndex:     h.frame,
		ResetRequested: reset,
		MaxDimensions:  h.bound,
	})
	h.frame++
	return d
}

func TestStepWorkedExample(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(500, 500))

	d := h.step(5000, true)
	if d.Phase != Reset || d.ResetReason != ResetRequested || d.Dimensions != types.Dims(500, 500) {
		t.Fatalf("expected reset to bound; got %+v", d)
	}
	if d.Iterations != 8 {
		t.Fatalf("expected max iterations while no data is available; got %d", d.Iterations)
	}

	// Raise the bound so the controller has room to grow.
	h.bound = types.Dims(1000, 1000)
	for i := 0; i < 2; i++ {
		d = h.step(1000, false)
		if d.Phase != Waiting || d.Dimensions != types.Dims(500, 500) {
			t.Fatalf("[frame %d] expected waiting with unchanged dimensions; got %+v", d.Frame, d)
		}
	}

	samples := []uint32{60000, 61000, 59000, 60000}
	expSmoothed := []float64{60000, 60500, 60000, 60000}
	for i, raw := range samples {
		d = h.step(raw, false)
		if d.Phase != Smoothing || d.EpochSample != uint64(i+1) {
			t.Fatalf("[frame %d] expected smoothing sample %d; got %+v", d.Frame, i+1, d)
		}
		if math.Abs(d.SmoothedSamples-expSmoothed[i]) > 1e-9 {
			t.Fatalf("[frame %d] expected smoothed %f; got %f", d.Frame, expSmoothed[i], d.SmoothedSamples)
		}
	}

	exp := Decision{
		Frame:           baseFrame + 6,
		Phase:           Smoothing,
		Dimensions:      types.Dims(551, 551),
		Iterations:      4,
		Bound:           types.Dims(1000, 1000),
		RawSample:       60000,
		SmoothedSamples: 60000,
		WindowStart:     baseFrame + 6,
		EpochSample:     4,
		EpochEnd:        true,
		Scale:           60000.0 / 65536.0 * 0.9,
		Resized:         true,
	}
	if diff := cmp.Diff(exp, d, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("unexpected epoch boundary decision (-want +got):\n%s", diff)
	}

	// A new epoch starts; the next frames wait for the resized work to drain.
	for i := 0; i < 2; i++ {
		if d = h.step(60000, false); d.Phase != Waiting {
			t.Fatalf("[frame %d] expected waiting after resize; got %s", d.Frame, d.Phase)
		}
	}
	if d = h.step(60000, false); d.Phase != Smoothing || d.EpochSample != 1 {
		t.Fatalf("[frame %d] expected first smoothed sample of new epoch; got %+v", d.Frame, d)
	}
}

func TestStepResetConditions(t *testing.T) {
	type spec struct {
		descr     string
		mutateCfg func(*Config)
		raw       uint32
		reset     bool
		skip      uint64
		expReason ResetReason
	}
	specs := []spec{
		{"reset requested", nil, 1000, true, 0, ResetRequested},
		{"empty feedback", nil, 0, false, 0, ResetNoFeedback},
		{"smoothing disabled", func(c *Config) { c.SmoothingWindowFrames = 1 }, 1000, false, 0, ResetSmoothingDisabled},
		{"zero smoothing window", func(c *Config) { c.SmoothingWindowFrames = 0 }, 1000, false, 0, ResetSmoothingDisabled},
		{"adaptive disabled", func(c *Config) { c.AdaptiveEnabled = false }, 1000, false, 0, ResetAdaptiveDisabled},
		{"stalled frame sequence", nil, 1000, false, 50, ResetFrameGap},
	}

	for index, s := range specs {
		h := newHarness(t, testConfig(), types.Dims(400, 300))

		// Bring the controller into smoothing with shrunk dimensions.
		h.step(1000, true)
		for i := 0; i < 6; i++ {
			h.step(2*65536, false)
		}
		if h.state.ActiveDimensions == h.bound {
			t.Fatalf("[spec %d] expected dimensions to shrink before the reset", index)
		}

		if s.mutateCfg != nil {
			s.mutateCfg(&h.cfg)
		}
		h.frame += s.skip
		d := h.step(s.raw, s.reset)

		if d.Phase != Reset || d.ResetReason != s.expReason {
			t.Fatalf("[spec %d: %s] expected reset with reason %s; got %s (%s)", index, s.descr, s.expReason, d.Phase, d.ResetReason)
		}
		if d.Dimensions != h.bound {
			t.Fatalf("[spec %d: %s] expected dimensions %v; got %v", index, s.descr, h.bound, d.Dimensions)
		}
		if d.SmoothedSamples != 0 || d.WindowStart != d.Frame {
			t.Fatalf("[spec %d: %s] expected smoothing state to be cleared; got %+v", index, s.descr, d)
		}
	}
}

func TestStepUninitializedStateResets(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(64, 32))

	d := h.step(1000, false)
	if d.Phase != Reset || d.ResetReason != ResetUninitialized || d.Dimensions != types.Dims(64, 32) {
		t.Fatalf("expected first step to reset; got %+v", d)
	}
}

func TestStepFrameIndexGoingBackwardsResets(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(64, 32))
	h.step(1000, true)
	h.step(1000, false)

	// Frame index baseFrame-1 would make the distance wrap to zero.
	h.frame = h.state.WindowStartFrame - 1
	d := h.step(1000, false)
	if d.ResetReason != ResetFrameGap {
		t.Fatalf("expected frame gap reset; got %s", d.ResetReason)
	}
}

func TestStepWaitsForPipelineDepthAfterReset(t *testing.T) {
	for _, depth := range []uint32{2, 3, 4} {
		cfg := testConfig()
		cfg.PipelineDepth = depth
		cfg.SmoothingWindowFrames = 6
		h := newHarness(t, cfg, types.Dims(128, 128))

		reset := h.step(3*65536, true)
		for i := uint32(1); i < depth; i++ {
			d := h.step(3*65536, false)
			if d.Phase != Waiting || d.Dimensions != reset.Dimensions {
				t.Fatalf("[depth %d, frame %d] expected waiting with dimensions %v; got %s with %v", depth, d.Frame, reset.Dimensions, d.Phase, d.Dimensions)
			}
			if d.SmoothedSamples != 0 {
				t.Fatalf("[depth %d, frame %d] expected no numeric update while waiting", depth, d.Frame)
			}
		}

		d := h.step(3*65536, false)
		if d.Phase != Smoothing || d.EpochSample != 1 {
			t.Fatalf("[depth %d] expected smoothing to start %d frames after reset; got %+v", depth, depth, d)
		}
	}
}

func TestStepSteadyStateSlidesWindow(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(256, 256))
	target := uint32(h.cfg.TargetSamples())

	h.step(target, true)
	for i := 0; i < 5; i++ {
		h.step(target, false)
	}

	// Every subsequent frame completes an epoch with scale 1.
	for i := 0; i < 20; i++ {
		prevStart := h.state.WindowStartFrame
		d := h.step(target, false)
		if !d.EpochEnd || d.Scale != 1 || d.Resized {
			t.Fatalf("[frame %d] expected stable epoch evaluation; got %+v", d.Frame, d)
		}
		if d.Dimensions != types.Dims(256, 256) {
			t.Fatalf("[frame %d] expected dimensions to stay at 256x256; got %v", d.Frame, d.Dimensions)
		}
		if d.WindowStart != prevStart+1 {
			t.Fatalf("[frame %d] expected window to slide from %d to %d; got %d", d.Frame, prevStart, prevStart+1, d.WindowStart)
		}
	}
}

func TestStepSlightOverProvisioningIsTolerated(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(256, 256))
	raw := uint32(h.cfg.TargetSamples() * 1.01)

	h.step(raw, true)
	var d Decision
	for i := 0; i < 6; i++ {
		d = h.step(raw, false)
	}
	if !d.EpochEnd || d.Scale != 1 || d.Resized {
		t.Fatalf("expected over-provisioning within damping to keep dimensions; got %+v", d)
	}
}

// Run a reset followed by one full epoch at the given constant sample count
// and return the dimensions committed at the epoch boundary.
func runEpoch(t *testing.T, start types.Extent, raw uint32) Decision {
	h := newHarness(t, testConfig(), start)
	h.step(raw, true)
	h.bound = types.Dims(4096, 4096)

	var d Decision
	for i := 0; i < 6; i++ {
		d = h.step(raw, false)
	}
	if !d.EpochEnd {
		t.Fatalf("expected epoch to end at frame %d", d.Frame)
	}
	return d
}

func TestStepReactsToUnderProvisioning(t *testing.T) {
	start := types.Dims(500, 400)
	d := runEpoch(t, start, 65536/2)

	if !d.Resized || d.Dimensions[0] <= start[0] && d.Dimensions[1] <= start[1] {
		t.Fatalf("expected dimensions to grow from %v; got %v", start, d.Dimensions)
	}
	if exp := types.Dims(746, 597); d.Dimensions != exp {
		t.Fatalf("expected dimensions %v; got %v", exp, d.Dimensions)
	}
}

func TestStepGrowsFasterThanItShrinks(t *testing.T) {
	start := types.Dims(500, 500)
	under := runEpoch(t, start, 65536/2)
	over := runEpoch(t, start, 65536*2)

	if over.Dimensions.Area() >= start.Area() {
		t.Fatalf("expected over-provisioned area to shrink; got %v", over.Dimensions)
	}
	if exp := types.Dims(358, 358); over.Dimensions != exp {
		t.Fatalf("expected dimensions %v; got %v", exp, over.Dimensions)
	}

	growth := float64(under.Dimensions.Area()) / float64(start.Area())
	shrink := float64(start.Area()) / float64(over.Dimensions.Area())
	if growth <= 2 || shrink >= 2 {
		t.Fatalf("expected growth factor above 2 and shrink factor below 2; got %.3f and %.3f", growth, shrink)
	}
	if growth <= shrink {
		t.Fatalf("expected growth factor %.3f to exceed shrink factor %.3f", growth, shrink)
	}

	// The shrunk workload still yields at least the target.
	expected := 2 * 65536 * float64(over.Dimensions.Area()) / float64(start.Area())
	if expected < 65536 {
		t.Fatalf("expected shrunk workload to stay at or above target; got %.0f samples", expected)
	}
}

func TestStepClampsToShrinkingBoundImmediately(t *testing.T) {
	h := newHarness(t, testConfig(), types.Dims(500, 500))
	h.step(1000, true)
	for i := 0; i < 3; i++ {
		h.step(1000, false)
	}

	h.bound = types.Dims(300, 800)
	d := h.step(1000, false)
	if d.Phase != Smoothing || d.Dimensions != types.Dims(300, 500) {
		t.Fatalf("expected dimensions to be clamped to 300x500; got %s %v", d.Phase, d.Dimensions)
	}
	if d.WindowStart != baseFrame {
		t.Fatalf("expected the epoch to keep its start frame; got %d", d.WindowStart)
	}

	h.bound = types.Dims(0, 0)
	if d = h.step(1000, false); d.Dimensions != types.Dims(1, 1) {
		t.Fatalf("expected a zero bound to be treated as 1x1; got %v", d.Dimensions)
	}
}

func TestStepDimensionsStayWithinBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := testConfig()
	cfg.SmoothingWindowFrames = 3
	h := newHarness(t, cfg, types.Dims(640, 360))

	for i := 0; i < 5000; i++ {
		if rng.Intn(50) == 0 {
			h.bound = types.Dims(uint32(rng.Intn(2048)), uint32(rng.Intn(2048)))
		}
		raw := uint32(rng.Intn(4 * 65536))
		if rng.Intn(40) == 0 {
			raw = 0
		}
		if rng.Intn(200) == 0 {
			h.frame += uint64(rng.Intn(10))
		}

		d := h.step(raw, rng.Intn(300) == 0)
		bound := h.bound.AtLeast(1)
		if d.Dimensions[0] < 1 || d.Dimensions[1] < 1 || d.Dimensions[0] > bound[0] || d.Dimensions[1] > bound[1] {
			t.Fatalf("[frame %d] dimensions %v outside [1x1, %v]", d.Frame, d.Dimensions, bound)
		}
		if d.Iterations > cfg.MaxIterations {
			t.Fatalf("[frame %d] requested %d iterations; max is %d", d.Frame, d.Iterations, cfg.MaxIterations)
		}
		if d.SmoothedSamples == 0 && d.Iterations != cfg.MaxIterations {
			t.Fatalf("[frame %d] expected max iterations without data; got %d", d.Frame, d.Iterations)
		}
	}
}

func TestStepDrainsFrameOneRingCycleBack(t *testing.T) {
	cfg := testConfig()
	ch := feedback.NewChannel(cfg.PipelineDepth)
	var state State

	// Each frame yields one sample per training cell, and the bound keeps
	// changing so the dimensions differ from frame to frame.
	chosen := make(map[uint64]types.Extent)
	for frame := uint64(0); frame < 64; frame++ {
		bound := types.Dims(uint32(64+frame%7), uint32(32+frame%5))
		d := Step(&state, ch, cfg, FrameContext{
			FrameIndex:     frame,
			ResetRequested: frame%3 == 0,
			MaxDimensions:  bound,
		})

		if frame+1 >= uint64(cfg.PipelineDepth) {
			producer := frame + 1 - uint64(cfg.PipelineDepth)
			if exp := uint32(chosen[producer].Area()); d.RawSample != exp {
				t.Fatalf("[frame %d] expected sample produced by frame %d (%d); got %d", frame, producer, exp, d.RawSample)
			}
		}

		chosen[frame] = d.Dimensions
		ch.Write(frame, uint32(d.Dimensions.Area()))
	}
}
