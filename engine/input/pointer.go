// Package input maps raw host events into the normalized values the scene reads each frame.
package input

import "github.com/Carmen-Shannon/oxy-hero/common"

// PointerVector is a pointer position normalized to [-1, 1] on both axes.
// X grows to the right and Y grows upward, matching clip space.
type PointerVector struct {
	X float32
	Y float32
}

// NormalizePointer converts a pointer position in viewport pixels into a PointerVector.
// The top-left corner maps to (-1, 1) and the bottom-right corner to (1, -1).
// Positions outside the viewport are clamped; a degenerate viewport yields the zero vector.
//
// Parameters:
//   - px, py: pointer position in pixels relative to the viewport origin (top-left)
//   - width, height: viewport size in pixels
//
// Returns:
//   - PointerVector: the normalized pointer
func NormalizePointer(px, py, width, height float64) PointerVector {
	if width <= 0 || height <= 0 {
		return PointerVector{}
	}
	x := px/width*2 - 1
	y := -(py/height)*2 + 1
	return PointerVector{
		X: float32(common.Clamp(x, -1, 1)),
		Y: float32(common.Clamp(y, -1, 1)),
	}
}
