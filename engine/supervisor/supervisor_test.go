package supervisor

import (
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func newTestSupervisor() (Supervisor, *fakeClock, *int) {
	clock := &fakeClock{}
	reloads := new(int)
	s := NewSupervisor(func() { *reloads++ },
		WithClock(clock),
		WithRestoreTimeout(3*time.Second),
		WithReloadDelay(100*time.Millisecond))
	return s, clock, reloads
}

func TestLossPreventsDefaultAndStopsDrawing(t *testing.T) {
	s, _, _ := newTestSupervisor()
	if !s.CanDraw() {
		t.Fatal("fresh supervisor cannot draw")
	}
	ev := &LossEvent{Reason: "test"}
	s.DeviceLost(ev)
	if !ev.DefaultPrevented() {
		t.Fatal("loss event was not prevented")
	}
	if s.State() != Lost || s.CanDraw() {
		t.Fatalf("state %v, canDraw %v", s.State(), s.CanDraw())
	}
}

func TestRestoreReloadsAfterSettleDelay(t *testing.T) {
	s, clock, reloads := newTestSupervisor()
	s.DeviceLost(&LossEvent{})
	clock.Advance(time.Second)
	s.DeviceRestored()
	if s.State() != Restoring || s.CanDraw() {
		t.Fatalf("state %v, canDraw %v", s.State(), s.CanDraw())
	}
	clock.Advance(50 * time.Millisecond)
	if *reloads != 0 {
		t.Fatal("reloaded before the settle delay")
	}
	clock.Advance(50 * time.Millisecond)
	if *reloads != 1 || !s.Reloaded() {
		t.Fatalf("reloads = %d", *reloads)
	}
	clock.Advance(10 * time.Second)
	if *reloads != 1 {
		t.Fatalf("restore window also fired: reloads = %d", *reloads)
	}
}

func TestLossWithoutRestoreReloadsExactlyOnce(t *testing.T) {
	s, clock, reloads := newTestSupervisor()
	s.DeviceLost(&LossEvent{})
	clock.Advance(2 * time.Second)
	if *reloads != 0 {
		t.Fatal("reloaded inside the restore window")
	}
	clock.Advance(2 * time.Second)
	if *reloads != 1 {
		t.Fatalf("reloads = %d", *reloads)
	}

	s.DeviceLost(&LossEvent{})
	s.DeviceRestored()
	clock.Advance(time.Minute)
	if *reloads != 1 {
		t.Fatalf("terminal supervisor reloaded again: %d", *reloads)
	}
}

func TestRepeatedLossIsIgnored(t *testing.T) {
	s, clock, reloads := newTestSupervisor()
	s.DeviceLost(&LossEvent{})
	second := &LossEvent{}
	s.DeviceLost(second)
	if second.DefaultPrevented() {
		t.Fatal("duplicate loss was handled")
	}
	clock.Advance(time.Minute)
	if *reloads != 1 {
		t.Fatalf("reloads = %d", *reloads)
	}
}

func TestRestoreWithoutLossIsIgnored(t *testing.T) {
	s, clock, reloads := newTestSupervisor()
	s.DeviceRestored()
	clock.Advance(time.Minute)
	if s.State() != Active || *reloads != 0 {
		t.Fatalf("state %v, reloads %d", s.State(), *reloads)
	}
}

func TestCloseCancelsPendingReload(t *testing.T) {
	s, clock, reloads := newTestSupervisor()
	s.DeviceLost(&LossEvent{})
	s.Close()
	clock.Advance(time.Minute)
	if *reloads != 0 {
		t.Fatalf("closed supervisor reloaded %d times", *reloads)
	}
	if s.CanDraw() {
		t.Fatal("closed supervisor can draw")
	}
}

func TestRealClockReload(t *testing.T) {
	done := make(chan struct{})
	s := NewSupervisor(func() { close(done) },
		WithRestoreTimeout(10*time.Millisecond))
	s.DeviceLost(&LossEvent{})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reload never ran")
	}
}

func TestZeroRestoreTimeoutWaitsForRestore(t *testing.T) {
	clock := &fakeClock{}
	reloads := 0
	s := NewSupervisor(func() { reloads++ }, WithClock(clock), WithRestoreTimeout(0))
	s.DeviceLost(&LossEvent{})
	clock.Advance(time.Hour)
	if reloads != 0 || s.State() != Lost {
		t.Fatalf("state %v, reloads %d", s.State(), reloads)
	}
	s.DeviceRestored()
	clock.Advance(100 * time.Millisecond)
	if reloads != 1 {
		t.Fatalf("reloads = %d", reloads)
	}
}
