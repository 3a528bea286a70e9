package config

import (
	"errors"
	"fmt"
)

type EventKind string

const (
	CameraCut        EventKind = "camera-cut"
	Resize           EventKind = "resize"
	PathLength       EventKind = "path-length"
	Adaptive         EventKind = "adaptive"
	TargetIterations EventKind = "target-iterations"
)

// Event is a scenario change applied before rendering a frame.
type Event struct {
	Frame uint64    `json:"frame"`
	Kind  EventKind `json:"kind"`

	// resize
	Width  uint32 `json:"width,omitempty"`
	Height uint32 `json:"height,omitempty"`

	// path-length
	PathLength float64 `json:"pathLength,omitempty"`

	// adaptive
	Enabled *bool `json:"enabled,omitempty"`

	// target-iterations
	Iterations uint32 `json:"iterations,omitempty"`
}

func (ev Event) String() string {
	switch ev.Kind {
	case Resize:
		return fmt.Sprintf("%s %dx%d", ev.Kind, ev.Width, ev.Height)
	case PathLength:
		return fmt.Sprintf("%s %g", ev.Kind, ev.PathLength)
	case Adaptive:
		return fmt.Sprintf("%s %t", ev.Kind, ev.Enabled != nil && *ev.Enabled)
	case TargetIterations:
		return fmt.Sprintf("%s %d", ev.Kind, ev.Iterations)
	}
	return string(ev.Kind)
}

func (ev Event) validate(maxIterations uint32) error {
	switch ev.Kind {
	case CameraCut:
	case Resize:
		if ev.Width == 0 || ev.Height == 0 {
			return fmt.Errorf("resize requires non-zero width and height; got %dx%d", ev.Width, ev.Height)
		}
	case PathLength:
		if ev.PathLength <= 0 {
			return fmt.Errorf("path-length requires a positive path length; got %g", ev.PathLength)
		}
	case Adaptive:
		if ev.Enabled == nil {
			return errors.New("adaptive requires the enabled field")
		}
	case TargetIterations:
		if ev.Iterations == 0 || ev.Iterations > maxIterations {
			return fmt.Errorf("target-iterations must be in [1, %d]; got %d", maxIterations, ev.Iterations)
		}
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}

// Schedule returns the events grouped by frame. Events for the same frame
// keep their file order.
func (cfg Config) Schedule() map[uint64][]Event {
	schedule := make(map[uint64][]Event)
	for _, ev := range cfg.Events {
		schedule[ev.Frame] = append(schedule[ev.Frame], ev)
	}
	return schedule
}
