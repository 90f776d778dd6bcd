package simulation

import "time"

// TimeSource supplies wall-clock readings to the Clock
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// ManualTime only moves when told to. Headless runs use it to step the
// clock by a fixed frame interval.
type ManualTime struct {
	now time.Time
}

// NewManualTime starts at t
func NewManualTime(t time.Time) *ManualTime {
	return &ManualTime{now: t}
}

func (m *ManualTime) Now() time.Time { return m.now }

// Advance moves the time forward by d
func (m *ManualTime) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}

// ClockState is Running or Paused
type ClockState int

const (
	Running ClockState = iota
	Paused
)

func (cs ClockState) String() string {
	if cs == Paused {
		return "paused"
	}
	return "running"
}

// Clock turns wall-clock frames into simulation delta times.
//
// The reference timestamp is reset on Resume, so the time spent paused is
// never handed to the simulation as one large step.
type Clock struct {
	// MaxDelta caps a single frame's delta in seconds; 0 disables the cap
	MaxDelta float64

	src     TimeSource
	state   ClockState
	last    time.Time
	elapsed time.Duration
}

// NewClock returns a running clock
func NewClock(src TimeSource) *Clock {
	return &Clock{src: src, state: Running}
}

// Delta returns the seconds since the previous call and moves the reference
// forward. It returns 0 while paused and on the first call.
func (c *Clock) Delta() float64 {
	if c.state == Paused {
		return 0
	}

	now := c.src.Now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}

	d := now.Sub(c.last)
	c.last = now
	if d < 0 {
		d = 0
	}
	if c.MaxDelta > 0 && d.Seconds() > c.MaxDelta {
		d = time.Duration(c.MaxDelta * float64(time.Second))
	}
	c.elapsed += d
	return d.Seconds()
}

// Pause stops the simulation; it is a no-op when already paused
func (c *Clock) Pause() {
	c.state = Paused
}

// Resume restarts the simulation from now
func (c *Clock) Resume() {
	if c.state == Running {
		return
	}
	c.state = Running
	c.last = c.src.Now()
}

// Toggle flips between Running and Paused and returns the new state
func (c *Clock) Toggle() ClockState {
	if c.state == Paused {
		c.Resume()
	} else {
		c.Pause()
	}
	return c.state
}

// State returns the current clock state
func (c *Clock) State() ClockState {
	return c.state
}

// Paused reports whether the clock is paused
func (c *Clock) Paused() bool {
	return c.state == Paused
}

// Elapsed is the total simulated running time. Light and orbit-line pulses
// are driven by it, so they freeze while paused.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// ElapsedMillis is Elapsed in milliseconds
func (c *Clock) ElapsedMillis() float64 {
	return float64(c.elapsed) / float64(time.Millisecond)
}
