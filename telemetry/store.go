package telemetry

import (
	"context"
	"fmt"
)

// Store persists runs and their per-frame records.
type Store interface {
	Recorder

	Init(ctx context.Context) error
	BeginRun(ctx context.Context, run Run) error
	Runs(ctx context.Context) ([]Run, error)
	Frames(ctx context.Context, runID string) ([]Record, bool, error)
}

// NewStore creates a store for the given backend kind.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
