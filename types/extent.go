package types

import (
	"fmt"
	"math"
)

// Extent describes a 2D integer size (width, height) such as a frame
// resolution or the dimensions of a compute dispatch.
type Extent [2]uint32

// Define an extent.
func Dims(w, h uint32) Extent {
	return Extent{w, h}
}

// Get extent width.
func (e Extent) W() uint32 {
	return e[0]
}

// Get extent height.
func (e Extent) H() uint32 {
	return e[1]
}

// Get the number of cells covered by this extent.
func (e Extent) Area() uint64 {
	return uint64(e[0]) * uint64(e[1])
}

// Raise every component to at least v.
func (e Extent) AtLeast(v uint32) Extent {
	out := e
	if out[0] < v {
		out[0] = v
	}
	if out[1] < v {
		out[1] = v
	}
	return out
}

// Clamp each component to the [lo, hi] range. If lo exceeds hi for an
// axis, hi wins.
func (e Extent) Clamp(lo, hi Extent) Extent {
	return MinExtent(MaxExtent(e, lo), hi)
}

// Multiply each component by s and round up. Results that do not fit
// in an uint32 saturate.
func (e Extent) ScaleCeil(s float64) Extent {
	return Extent{scaleCeil(e[0], s), scaleCeil(e[1], s)}
}

// Get the fraction of the other extent covered by this one, per axis. An
// axis where other is zero reports zero coverage.
func (e Extent) Coverage(other Extent) Vec2 {
	var out Vec2
	for i := 0; i < 2; i++ {
		if other[i] != 0 {
			out[i] = float32(e[i]) / float32(other[i])
		}
	}
	return out
}

// Format extent as WxH.
func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e[0], e[1])
}

// Calc min component from two extents.
func MinExtent(e1, e2 Extent) Extent {
	out := e1
	if e2[0] < out[0] {
		out[0] = e2[0]
	}
	if e2[1] < out[1] {
		out[1] = e2[1]
	}
	return out
}

// Calc max component from two extents.
func MaxExtent(e1, e2 Extent) Extent {
	out := e1
	if e2[0] > out[0] {
		out[0] = e2[0]
	}
	if e2[1] > out[1] {
		out[1] = e2[1]
	}
	return out
}

func scaleCeil(v uint32, s float64) uint32 {
	scaled := math.Ceil(float64(v) * s)
	switch {
	case math.IsNaN(scaled) || scaled <= 0:
		return 0
	case scaled >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(scaled)
}
