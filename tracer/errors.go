package tracer

import "errors"

var (
	ErrInvalidDispatch = errors.New("tracer: invalid dispatch request")
	ErrNotInitialized  = errors.New("tracer: not initialized")
	ErrUnknownChange   = errors.New("tracer: unknown change type")
)
