package renderer

import "errors"

var (
	ErrNoTracer        = errors.New("renderer: no tracer attached")
	ErrInvalidOptions  = errors.New("renderer: invalid options")
	ErrClosed          = errors.New("renderer: closed")
	ErrPipelineOverrun = errors.New("renderer: too many frames in flight")
)
