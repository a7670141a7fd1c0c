package core

import (
	"time"

	"github.com/loov/hrtime"
)

// Clock measures frame deltas with the high resolution timer.
type Clock struct {
	now       func() time.Duration
	lastTime  time.Duration
	deltaTime float32

	startTime time.Duration
	elapsed   time.Duration
	running   bool
}

func NewClock() *Clock {
	return newClockWithSource(hrtime.Now)
}

func newClockWithSource(now func() time.Duration) *Clock {
	return &Clock{
		now:      now,
		lastTime: now(),
	}
}

// Tick records the time since the previous Tick as the current delta.
func (c *Clock) Tick() {
	current := c.now()
	c.deltaTime = float32((current - c.lastTime).Seconds())
	c.lastTime = current
	if c.running {
		c.elapsed = current - c.startTime
	}
}

// DeltaTime returns the seconds between the last two ticks.
func (c *Clock) DeltaTime() float32 {
	return c.deltaTime
}

func (c *Clock) Now() time.Duration {
	return c.now()
}

// Starts the clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.elapsed = 0
	c.running = true
}

// Stops the clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
