package supervisor

import "time"

// SupervisorBuilderOption is a function that configures a Supervisor during construction.
type SupervisorBuilderOption func(*supervisorImpl)

// WithClock sets the clock used for the restore and settle timers.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - SupervisorBuilderOption: a function that applies the clock option to a supervisorImpl
func WithClock(c Clock) SupervisorBuilderOption {
	return func(s *supervisorImpl) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRestoreTimeout sets how long to wait for restoration before reloading anyway.
// Zero waits for restoration indefinitely; negative values are ignored.
//
// Parameters:
//   - d: the restore window
//
// Returns:
//   - SupervisorBuilderOption: a function that applies the timeout option to a supervisorImpl
func WithRestoreTimeout(d time.Duration) SupervisorBuilderOption {
	return func(s *supervisorImpl) {
		if d >= 0 {
			s.restoreTimeout = d
		}
	}
}

// WithReloadDelay sets the settle delay between restoration and reload.
//
// Parameters:
//   - d: the settle delay
//
// Returns:
//   - SupervisorBuilderOption: a function that applies the delay option to a supervisorImpl
func WithReloadDelay(d time.Duration) SupervisorBuilderOption {
	return func(s *supervisorImpl) {
		if d >= 0 {
			s.reloadDelay = d
		}
	}
}
