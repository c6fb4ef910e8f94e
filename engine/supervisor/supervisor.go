package supervisor

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-hero/common"
)

// State is the render surface lifecycle state.
type State int

const (
	// Active means the surface is healthy and frames may be drawn.
	Active State = iota
	// Lost means the device was lost; nothing may be drawn.
	Lost
	// Restoring means the device came back and a reload is pending.
	Restoring
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Lost:
		return "lost"
	case Restoring:
		return "restoring"
	}
	return "unknown"
}

// LossEvent describes a device loss reported by the render surface.
// Handlers call PreventDefault to keep the platform from abandoning the surface.
type LossEvent struct {
	Reason    string
	prevented bool
}

// PreventDefault marks the loss as handled so the platform may restore the device.
func (e *LossEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *LossEvent) DefaultPrevented() bool { return e.prevented }

// Supervisor tracks device loss and restoration for the render surface and runs
// the reload action once recovery is due.
type Supervisor interface {
	// State returns the current lifecycle state.
	State() State

	// CanDraw reports whether frames may be submitted.
	//
	// Returns:
	//   - bool: true only while Active and not closed
	CanDraw() bool

	// DeviceLost handles a loss notification. It is ignored unless the
	// supervisor is Active.
	//
	// Parameters:
	//   - ev: the loss event; PreventDefault is called on it
	DeviceLost(ev *LossEvent)

	// DeviceRestored handles a restoration notification. It is ignored unless
	// the supervisor is Lost.
	DeviceRestored()

	// Reloaded reports whether the reload action has run.
	Reloaded() bool

	// Close stops pending timers. A closed supervisor never reloads.
	Close()
}

// supervisorImpl is the implementation of the Supervisor interface.
type supervisorImpl struct {
	mu sync.Mutex

	clock          Clock
	restoreTimeout time.Duration
	reloadDelay    time.Duration
	reload         func()

	state    State
	timer    Timer
	terminal bool
	closed   bool
	once     sync.Once
}

var _ Supervisor = &supervisorImpl{}

// NewSupervisor creates a Supervisor in the Active state.
//
// Parameters:
//   - reload: the action run at most once when recovery is due
//   - opts: functional options
//
// Returns:
//   - Supervisor: the supervisor
func NewSupervisor(reload func(), opts ...SupervisorBuilderOption) Supervisor {
	s := &supervisorImpl{
		clock:          RealClock(),
		restoreTimeout: 3 * time.Second,
		reloadDelay:    100 * time.Millisecond,
		reload:         reload,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *supervisorImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *supervisorImpl) CanDraw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Active && !s.terminal && !s.closed
}

func (s *supervisorImpl) DeviceLost(ev *LossEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.terminal || s.state != Active {
		return
	}
	if ev != nil {
		ev.PreventDefault()
	}
	s.state = Lost
	if s.restoreTimeout > 0 {
		s.timer = s.clock.AfterFunc(s.restoreTimeout, s.fire)
	}

	reason := ""
	if ev != nil {
		reason = ev.Reason
	}
	common.Logger().Warn("render device lost", "reason", reason, "restore_timeout", s.restoreTimeout)
}

func (s *supervisorImpl) DeviceRestored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.terminal || s.state != Lost {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = Restoring
	s.timer = s.clock.AfterFunc(s.reloadDelay, s.fire)
	common.Logger().Info("render device restored, reloading", "delay", s.reloadDelay)
}

func (s *supervisorImpl) Reloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

func (s *supervisorImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs the reload action once, from whichever timer expires first.
func (s *supervisorImpl) fire() {
	s.mu.Lock()
	if s.closed || s.terminal {
		s.mu.Unlock()
		return
	}
	s.terminal = true
	s.timer = nil
	state := s.state
	s.mu.Unlock()

	s.once.Do(func() {
		common.Logger().Info("reloading scene", "from", state.String())
		if s.reload != nil {
			s.reload()
		}
	})
}
