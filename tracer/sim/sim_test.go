package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/achilleasa/radiance/cache/feedback"
	"github.com/achilleasa/radiance/tracer"
	"github.com/achilleasa/radiance/types"
)

var _ tracer.Tracer = (*Tracer)(nil)

func setupTracer(t *testing.T, opts Options, depth uint32) (*Tracer, *feedback.Channel) {
	tr := New("sim-0", opts)
	ch := feedback.NewChannel(depth)
	tr.AppendChange(tracer.SetFrameDimensions, types.Dims(64, 32))
	tr.AppendChange(tracer.SetFeedbackChannel, ch)
	if err := tr.ApplyPendingChanges(); err != nil {
		t.Fatal(err)
	}
	return tr, ch
}

func dispatch(t *testing.T, tr *Tracer, frame uint64, training types.Extent) {
	err := tr.Dispatch(tracer.DispatchRequest{
		FrameIndex: frame,
		Primary:    types.Dims(64, 32),
		Training:   training,
		Iterations: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSamplesArriveWhenRetired(t *testing.T) {
	tr, ch := setupTracer(t, Options{PathLength: 3, Passes: 3, CellTime: time.Nanosecond}, 3)

	dispatch(t, tr, 0, types.Dims(10, 10))
	dispatch(t, tr, 1, types.Dims(20, 10))
	if tr.InFlight() != 2 {
		t.Fatalf("expected 2 frames in flight; got %d", tr.InFlight())
	}

	// Nothing retired yet
	if got := ch.Drain(2); got != 0 {
		t.Fatalf("expected no samples before retiring; got %d", got)
	}

	if err := tr.Retire(0); err != nil {
		t.Fatal(err)
	}
	if tr.InFlight() != 1 {
		t.Fatalf("expected 1 frame in flight; got %d", tr.InFlight())
	}
	if got := ch.Drain(2); got != 300 {
		t.Fatalf("expected 300 samples from frame 0; got %d", got)
	}

	stats := tr.Stats()
	if stats.Frame != 0 || stats.TrainingSamples != 300 || stats.AvgPathLength != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if exp := time.Duration(64 * 42); stats.ExecTime != exp {
		t.Fatalf("expected exec time %s; got %s", exp, stats.ExecTime)
	}
}

func TestNoiseIsBoundedAndReproducible(t *testing.T) {
	opts := Options{PathLength: 4, Noise: 0.1, Seed: 7}
	tr1, ch1 := setupTracer(t, opts, 2)
	tr2, ch2 := setupTracer(t, opts, 2)

	for frame := uint64(0); frame < 50; frame++ {
		dispatch(t, tr1, frame, types.Dims(100, 100))
		dispatch(t, tr2, frame, types.Dims(100, 100))
		if err := tr1.Retire(frame); err != nil {
			t.Fatal(err)
		}
		if err := tr2.Retire(frame); err != nil {
			t.Fatal(err)
		}

		got1 := ch1.Drain(frame + 1)
		got2 := ch2.Drain(frame + 1)
		if got1 != got2 {
			t.Fatalf("[frame %d] expected identical samples for identical seeds; got %d and %d", frame, got1, got2)
		}
		if got1 < 36000 || got1 > 44000 {
			t.Fatalf("[frame %d] expected samples within 10%% of 40000; got %d", frame, got1)
		}
	}
}

func TestCapByIterations(t *testing.T) {
	tr, ch := setupTracer(t, Options{PathLength: 100, CapByIterations: true}, 2)

	dispatch(t, tr, 0, types.Dims(100, 100))
	if err := tr.Retire(0); err != nil {
		t.Fatal(err)
	}
	if got := ch.Drain(1); got != 4*16384 {
		t.Fatalf("expected samples capped at 4 iterations; got %d", got)
	}
}

func TestChannelSwitchDropsInFlightWork(t *testing.T) {
	tr, old := setupTracer(t, Options{PathLength: 1}, 3)
	dispatch(t, tr, 0, types.Dims(10, 10))

	ch := feedback.NewChannel(3)
	tr.AppendChange(tracer.SetFeedbackChannel, ch)
	if err := tr.ApplyPendingChanges(); err != nil {
		t.Fatal(err)
	}
	if tr.InFlight() != 0 {
		t.Fatalf("expected in-flight work to be dropped; got %d frames", tr.InFlight())
	}

	dispatch(t, tr, 1, types.Dims(5, 5))
	if err := tr.Retire(1); err != nil {
		t.Fatal(err)
	}
	if got := old.Drain(2); got != 0 {
		t.Fatalf("expected no writes into the old channel; got %d", got)
	}
	if got := ch.Drain(3); got != 25 {
		t.Fatalf("expected 25 samples in the new channel; got %d", got)
	}
}

func TestPathLengthChange(t *testing.T) {
	tr, ch := setupTracer(t, Options{PathLength: 1}, 2)
	tr.AppendChange(tracer.SetPathLength, 2.5)
	if err := tr.ApplyPendingChanges(); err != nil {
		t.Fatal(err)
	}

	dispatch(t, tr, 0, types.Dims(10, 10))
	if err := tr.Retire(0); err != nil {
		t.Fatal(err)
	}
	if got := ch.Drain(1); got != 250 {
		t.Fatalf("expected 250 samples; got %d", got)
	}
}

func TestDispatchErrors(t *testing.T) {
	tr := New("sim-0", Options{PathLength: 1})
	err := tr.Dispatch(tracer.DispatchRequest{Primary: types.Dims(64, 32), Training: types.Dims(1, 1)})
	if !errors.Is(err, tracer.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized; got %v", err)
	}

	tr, _ = setupTracer(t, Options{PathLength: 1}, 2)
	type spec struct {
		req tracer.DispatchRequest
	}
	specs := []spec{
		{tracer.DispatchRequest{FrameIndex: 5, Primary: types.Dims(32, 32), Training: types.Dims(1, 1)}},
		{tracer.DispatchRequest{FrameIndex: 5, Primary: types.Dims(64, 32), Training: types.Dims(0, 1)}},
	}
	for index, s := range specs {
		if err := tr.Dispatch(s.req); !errors.Is(err, tracer.ErrInvalidDispatch) {
			t.Fatalf("[spec %d] expected ErrInvalidDispatch; got %v", index, err)
		}
	}

	dispatch(t, tr, 5, types.Dims(1, 1))
	if err := tr.Dispatch(tracer.DispatchRequest{FrameIndex: 5, Primary: types.Dims(64, 32), Training: types.Dims(1, 1)}); !errors.Is(err, tracer.ErrInvalidDispatch) {
		t.Fatalf("expected out of order dispatch to fail; got %v", err)
	}

	tr.AppendChange(tracer.ChangeType(99), nil)
	if err := tr.ApplyPendingChanges(); !errors.Is(err, tracer.ErrUnknownChange) {
		t.Fatalf("expected ErrUnknownChange; got %v", err)
	}
}
