package types

import (
	"golang.org/x/image/math/f32"
)

type Vec2 f32.Vec2

// Define a 2 component vector.
func XY(x, y float32) Vec2 {
	return Vec2{x, y}
}

// Get the smallest of the two components.
func (v Vec2) MinComponent() float32 {
	if v[1] < v[0] {
		return v[1]
	}
	return v[0]
}
