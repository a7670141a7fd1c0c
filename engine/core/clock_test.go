package core

import (
	"testing"
	"time"
)

type fakeSource struct {
	t time.Duration
}

func (f *fakeSource) now() time.Duration { return f.t }

func TestClockDeltaTime(t *testing.T) {
	src := &fakeSource{t: time.Second}
	c := newClockWithSource(src.now)

	src.t += 16 * time.Millisecond
	c.Tick()
	if got := c.DeltaTime(); got < 0.0159 || got > 0.0161 {
		t.Fatalf("delta = %v, want ~0.016", got)
	}

	src.t += 500 * time.Millisecond
	c.Tick()
	if got := c.DeltaTime(); got != 0.5 {
		t.Fatalf("delta = %v, want 0.5", got)
	}

	c.Tick()
	if got := c.DeltaTime(); got != 0 {
		t.Fatalf("delta = %v, want 0", got)
	}
}

func TestClockElapsed(t *testing.T) {
	src := &fakeSource{}
	c := newClockWithSource(src.now)

	src.t = time.Second
	c.Tick()
	if c.Elapsed() != 0 {
		t.Fatalf("stopped clock should not accumulate, got %v", c.Elapsed())
	}

	c.Start()
	src.t += 2 * time.Second
	c.Tick()
	if c.Elapsed() != 2*time.Second {
		t.Fatalf("elapsed = %v", c.Elapsed())
	}

	c.Stop()
	src.t += time.Second
	c.Tick()
	if c.Elapsed() != 2*time.Second {
		t.Fatalf("stop must keep elapsed, got %v", c.Elapsed())
	}
}

func TestNewClockUsesHighResolutionTimer(t *testing.T) {
	c := NewClock()
	time.Sleep(time.Millisecond)
	c.Tick()
	if c.DeltaTime() <= 0 {
		t.Fatalf("expected a positive delta, got %v", c.DeltaTime())
	}
}
