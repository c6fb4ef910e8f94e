package tween

import "github.com/tanema/gween/ease"

// Ease is a gween easing function of elapsed time t, begin value b, change c and duration d.
type Ease = ease.TweenFunc

var (
	// Linear is the identity ease.
	Linear Ease = ease.Linear

	// Power2InOut is a cubic ease-in-out.
	Power2InOut Ease = ease.InOutCubic

	// Power3Out is a quartic decelerating ease.
	Power3Out Ease = ease.OutQuart
)

// BackOut returns a decelerating ease that overshoots the target before settling.
// gween's OutBack fixes the overshoot; this one takes it as a parameter.
//
// Parameters:
//   - overshoot: overshoot strength (1.70158 is the conventional default)
//
// Returns:
//   - Ease: the easing function
func BackOut(overshoot float32) Ease {
	return func(t, b, c, d float32) float32 {
		p := t/d - 1
		return c*(p*p*((overshoot+1)*p+overshoot)+1) + b
	}
}
