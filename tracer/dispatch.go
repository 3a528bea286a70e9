package tracer

import (
	"fmt"

	"github.com/achilleasa/radiance/types"
)

// A unit of work that is processed by a tracer. The primary (query) work
// and the training work share a single dispatch: the training rows are
// appended below the primary rows.
type DispatchRequest struct {
	FrameIndex uint64

	// The primary work dimensions (the frame resolution).
	Primary types.Extent

	// The training work dimensions selected by the sizing controller.
	Training types.Extent

	// The training budget for this frame, in iterations.
	Iterations uint32
}

// Get the dimensions of the combined dispatch.
func (r DispatchRequest) Combined() types.Extent {
	return types.Dims(
		max(r.Primary.W(), r.Training.W()),
		r.Primary.H()+r.Training.H(),
	)
}

// Get the first row of the combined dispatch that belongs to the training
// work.
func (r DispatchRequest) TrainingRowOffset() uint32 {
	return r.Primary.H()
}

// Check that the request describes a dispatch the engine can execute.
func (r DispatchRequest) Validate() error {
	if r.Primary.Area() == 0 {
		return fmt.Errorf("%w: empty primary extent %s", ErrInvalidDispatch, r.Primary)
	}
	if r.Training.Area() == 0 {
		return fmt.Errorf("%w: empty training extent %s", ErrInvalidDispatch, r.Training)
	}
	if uint64(r.Primary.H())+uint64(r.Training.H()) > 1<<32-1 {
		return fmt.Errorf("%w: combined height overflows", ErrInvalidDispatch)
	}
	return nil
}
