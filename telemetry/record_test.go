package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/renderer"
	"github.com/achilleasa/radiance/types"
)

type recorderFunc func(context.Context, Record) error

func (fn recorderFunc) Record(ctx context.Context, rec Record) error {
	return fn(ctx, rec)
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("run", renderer.FrameStats{
		Frame:       7,
		Phase:       sizing.Reset,
		ResetReason: sizing.ResetRequested,
		Training:    types.Dims(242, 136),
		Bound:       types.Dims(242, 136),
		Iterations:  8,
	})
	assert.Equal(t, "reset", rec.Phase)
	assert.Equal(t, "requested", rec.ResetReason)
	assert.Equal(t, uint32(242), rec.Width)
	assert.Equal(t, uint32(136), rec.BoundHeight)

	rec = NewRecord("run", renderer.FrameStats{Phase: sizing.Smoothing})
	assert.Empty(t, rec.ResetReason)
}

func TestTee(t *testing.T) {
	var seen []string
	ok := func(name string) Recorder {
		return recorderFunc(func(context.Context, Record) error {
			seen = append(seen, name)
			return nil
		})
	}
	errStop := errors.New("stop")
	failing := recorderFunc(func(context.Context, Record) error {
		seen = append(seen, "failing")
		return errStop
	})

	require.NoError(t, Tee(ok("a"), ok("b")).Record(context.Background(), Record{}))
	assert.Equal(t, []string{"a", "b"}, seen)

	seen = nil
	assert.ErrorIs(t, Tee(ok("a"), failing, ok("c")).Record(context.Background(), Record{}), errStop)
	assert.Equal(t, []string{"a", "failing"}, seen)
}

func TestObserverForwardsStats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.BeginRun(ctx, Run{ID: "run"}))

	observer := Observer(ctx, "run", store)
	require.NoError(t, observer.ObserveFrame(renderer.FrameStats{Frame: 3, Phase: sizing.Waiting}))

	frames, ok, err := store.Frames(ctx, "run")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, frames, 1)
	assert.Equal(t, uint64(3), frames[0].Frame)
	assert.Equal(t, "waiting", frames[0].Phase)
}
