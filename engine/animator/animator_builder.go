package animator

// EntranceOption is a functional option for configuring an Entrance.
type EntranceOption func(*Entrance)

// WithDelay sets the delay before the entrance timeline starts.
//
// Parameters:
//   - seconds: the delay
//
// Returns:
//   - EntranceOption: option function to apply
func WithDelay(seconds float64) EntranceOption {
	return func(e *Entrance) {
		if seconds >= 0 {
			e.delay = seconds
		}
	}
}

// WithLength sets the total entrance length. Each step scales proportionally.
//
// Parameters:
//   - seconds: the entrance length (must be > 0)
//
// Returns:
//   - EntranceOption: option function to apply
func WithLength(seconds float64) EntranceOption {
	return func(e *Entrance) {
		if seconds > 0 {
			e.duration = seconds
		}
	}
}

// WithSettleHook registers the function run at completion while the phase is still Settling.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - EntranceOption: option function to apply
func WithSettleHook(fn func()) EntranceOption {
	return func(e *Entrance) {
		e.onSettle = fn
	}
}

// OrientationOption is a functional option for configuring an Orientation controller.
type OrientationOption func(*Orientation)

// WithThresholds sets the scroll-progress boundaries.
//
// Parameters:
//   - t: the thresholds
//
// Returns:
//   - OrientationOption: option function to apply
func WithThresholds(t Thresholds) OrientationOption {
	return func(o *Orientation) {
		o.thresholds = t
	}
}

// WithFlipDuration sets the yaw tween length.
//
// Parameters:
//   - seconds: the tween length
//
// Returns:
//   - OrientationOption: option function to apply
func WithFlipDuration(seconds float64) OrientationOption {
	return func(o *Orientation) {
		if seconds >= 0 {
			o.duration = seconds
		}
	}
}

// WithRotationSpeed sets the idle yaw drift in radians per second (0 disables it).
//
// Parameters:
//   - radPerSec: drift speed
//
// Returns:
//   - OrientationOption: option function to apply
func WithRotationSpeed(radPerSec float64) OrientationOption {
	return func(o *Orientation) {
		o.rotationSpeed = radPerSec
	}
}
