package profiler

import (
	"math"
	"testing"
	"time"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewProfiler(WithNow(func() time.Time { return clock }))

	reports := 0
	for range 100 {
		clock = clock.Add(20 * time.Millisecond)
		if p.Tick() {
			reports++
		}
	}
	if reports != 2 {
		t.Fatalf("expected 2 reports over two seconds, got %d", reports)
	}
	if fps := p.Last().FPS; math.Abs(fps-50) > 0.01 {
		t.Errorf("expected 50 fps, got %.2f", fps)
	}
	if p.Last().SysMB <= 0 {
		t.Error("expected a non-zero process footprint")
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	if p.updateInterval != time.Second {
		t.Errorf("expected default interval, got %v", p.updateInterval)
	}
	p = NewProfiler(WithInterval(250 * time.Millisecond))
	if p.updateInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", p.updateInterval)
	}
}
