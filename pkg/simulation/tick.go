package simulation

import (
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// Frame reads the clock and advances the system by the elapsed time.
// It returns the delta that was applied.
func (s *State) Frame() float64 {
	dt := s.Clock.Delta()
	s.Tick(dt)
	return dt
}

// Tick advances every moving entity by dt seconds. It does nothing while the
// clock is paused.
//
// Orbital angles advance by speed × global speed × dt converted from degrees;
// self rotations advance by a fixed amount per tick and ignore the global
// speed. Moons orbit their parent's position from this same tick, so all
// planets move first.
func (s *State) Tick(dt float64) {
	if s.Clock.Paused() {
		return
	}

	for _, p := range s.Planets {
		p.advance(s.Speed, dt)
	}

	for _, p := range s.Planets {
		for _, m := range p.Moons {
			parent, ok := s.planetByID(m.Parent)
			if !ok {
				continue
			}
			m.advance(parent.Position, s.Speed, dt)
		}
	}

	for _, c := range s.Comets {
		c.Orbit.Advance(orbital.AngularStep(c.OrbitSpeed, s.Speed, dt))
		c.Position = orbital.Circular(c.Orbit.SemiMajorAxis, c.Orbit.Angle)
	}

	for _, m := range s.Models {
		m.advance()
	}

	s.Sun.Rotation.Y = orbital.WrapAngle(s.Sun.Rotation.Y + SunSpin)
}
