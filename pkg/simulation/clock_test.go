package simulation

import (
	"math"
	"testing"
	"time"
)

func TestClockFirstDeltaIsZero(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(ft)

	if d := c.Delta(); d != 0 {
		t.Errorf("expected 0 on first call, got %v", d)
	}
	ft.Advance(16 * time.Millisecond)
	if d := c.Delta(); math.Abs(d-0.016) > 1e-12 {
		t.Errorf("expected 0.016, got %v", d)
	}
}

func TestClockPauseResumeDoesNotJump(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(ft)
	c.Delta()

	ft.Advance(10 * time.Millisecond)
	c.Delta()

	if state := c.Toggle(); state != Paused {
		t.Fatalf("expected paused, got %s", state)
	}
	ft.Advance(10 * time.Second)
	if d := c.Delta(); d != 0 {
		t.Errorf("expected 0 while paused, got %v", d)
	}

	if state := c.Toggle(); state != Running {
		t.Fatalf("expected running, got %s", state)
	}
	ft.Advance(20 * time.Millisecond)
	d := c.Delta()
	if math.Abs(d-0.020) > 1e-12 {
		t.Errorf("expected 0.020 after resume, got %v", d)
	}
	if c.Elapsed() != 30*time.Millisecond {
		t.Errorf("expected 30ms elapsed, got %v", c.Elapsed())
	}
}

func TestClockResumeWhenRunningKeepsReference(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(ft)
	c.Delta()

	ft.Advance(50 * time.Millisecond)
	c.Resume()
	if d := c.Delta(); math.Abs(d-0.050) > 1e-12 {
		t.Errorf("expected 0.050, got %v", d)
	}
}

func TestClockMaxDelta(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(ft)
	c.MaxDelta = 0.25
	c.Delta()

	ft.Advance(3 * time.Second)
	if d := c.Delta(); d != 0.25 {
		t.Errorf("expected clamp to 0.25, got %v", d)
	}
	if c.ElapsedMillis() != 250 {
		t.Errorf("expected 250ms elapsed, got %v", c.ElapsedMillis())
	}
}

func TestStateResetResumes(t *testing.T) {
	s := newTestState(nil, newFakeTime())
	s.Sun.Rotation.Y = 1
	s.Clock.Pause()

	s.Reset()

	if s.Clock.Paused() {
		t.Error("expected the clock to run after reset")
	}
	if s.Sun.Rotation.Y != 0 {
		t.Errorf("expected sun rotation reset, got %v", s.Sun.Rotation.Y)
	}
	for _, p := range s.Planets {
		if p.Position != p.Orbit.Position() {
			t.Errorf("%s: position not derived from its new angle", p.Name)
		}
	}
}
