package simulation

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// Bounds on client supplied values. With both speeds at their limit a frame
// step stays far below float64 overflow.
const (
	MaxSpeed       = 10000.0 // global speed multiplier
	MaxBodySpeed   = 100.0   // per-body orbit speed, either direction
	MaxOrbitRadius = 10000.0
	MaxBodyScale   = 100.0
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func outOfRange(field string, v float64) error {
	return errorsmod.Wrapf(ErrOutOfRange, "%s %v", field, v)
}

func checkOrbitRadius(field string, v float64) error {
	if !finite(v) || v <= 0 || v > MaxOrbitRadius {
		return outOfRange(field, v)
	}
	return nil
}

func checkBodySpeed(field string, v float64) error {
	if !finite(v) || math.Abs(v) > MaxBodySpeed {
		return outOfRange(field, v)
	}
	return nil
}

func checkVector(field string, v astromath.Vector3) error {
	if !v.IsFinite() {
		return errorsmod.Wrapf(ErrOutOfRange, "%s %+v", field, v)
	}
	return nil
}

// Validate rejects parameters that cannot describe a bound orbit
func (p PlanetParams) Validate() error {
	if err := checkOrbitRadius("semi-major axis", p.SemiMajorAxis); err != nil {
		return err
	}
	if !finite(p.Eccentricity) || p.Eccentricity < 0 || p.Eccentricity >= 1 {
		return outOfRange("eccentricity", p.Eccentricity)
	}
	if !finite(p.Radius) || p.Radius <= 0 || p.Radius > MaxOrbitRadius {
		return outOfRange("radius", p.Radius)
	}
	if !finite(p.InclinationDeg) || math.Abs(p.InclinationDeg) > 180 {
		return outOfRange("inclination", p.InclinationDeg)
	}
	return checkBodySpeed("speed", p.Speed)
}

// Validate rejects comet parameters outside the drawable range
func (p CometParams) Validate() error {
	if err := checkOrbitRadius("orbit radius", p.OrbitRadius); err != nil {
		return err
	}
	if err := checkBodySpeed("speed", p.Speed); err != nil {
		return err
	}
	if !finite(p.Intensity) || p.Intensity < 0 {
		return outOfRange("intensity", p.Intensity)
	}
	if !finite(p.LightDistance) || p.LightDistance < 0 {
		return outOfRange("light distance", p.LightDistance)
	}
	return nil
}

// Validate checks every field before any of them is written
func (e PlanetEdits) Validate() error {
	if err := checkBodySpeed("orbit speed", e.OrbitSpeed); err != nil {
		return err
	}
	if !finite(e.Scale) || e.Scale <= 0 || e.Scale > MaxBodyScale {
		return outOfRange("scale", e.Scale)
	}
	if err := checkVector("rotation", e.Rotation); err != nil {
		return err
	}
	if e.Position != nil {
		if err := checkVector("position", *e.Position); err != nil {
			return err
		}
		if d := e.Position.PlanarDistance(); d > MaxOrbitRadius {
			return outOfRange("position distance", d)
		}
	}
	return nil
}

// Validate rejects a negative or non-finite light intensity
func (e SunEdits) Validate() error {
	if !finite(e.Intensity) || e.Intensity < 0 {
		return outOfRange("intensity", e.Intensity)
	}
	return nil
}

// SetSpeed changes the global speed multiplier
func (s *State) SetSpeed(v float64) error {
	if !finite(v) || v < 0 || v > MaxSpeed {
		return outOfRange("speed", v)
	}
	s.Speed = v
	return nil
}
