package telemetry

import "errors"

var (
	ErrNotInitialized = errors.New("telemetry: store is not initialized")
	ErrUnknownRun     = errors.New("telemetry: unknown run")
	ErrUnsupported    = errors.New("telemetry: unsupported store backend")
)
