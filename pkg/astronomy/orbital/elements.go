package orbital

import (
    "math"

    astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// TwoPi is one full revolution in radians
const TwoPi = 2 * math.Pi

// DefaultSegments is the number of chords used for an orbit line
const DefaultSegments = 100

// Elements describes a display orbit around the scene origin.
//
// This is not a Keplerian element set: the body moves at constant angular
// rate along an ellipse centred on the origin, and inclination is applied
// with the simplified tilt used by the renderer (see Position).
type Elements struct {
    SemiMajorAxis float64 `json:"semi_major_axis" yaml:"semi_major_axis"` // a - orbit radius (scene units)
    Eccentricity  float64 `json:"eccentricity" yaml:"eccentricity"`       // e - [0, 1)
    Inclination   float64 `json:"inclination" yaml:"inclination"`         // i - radians
    Angle         float64 `json:"angle" yaml:"angle"`                     // θ - radians
}

// SemiMinorAxis returns b = a·√(1−e²)
func (oe Elements) SemiMinorAxis() float64 {
    return oe.SemiMajorAxis * math.Sqrt(1-oe.Eccentricity*oe.Eccentricity)
}

// Position returns the body offset from the origin at the current angle.
func (oe Elements) Position() astromath.Vector3 {
    return oe.PositionAt(oe.Angle)
}

// PositionAt returns the offset at angle theta.
//
// The point (a·cos θ, 0, b·sin θ) is tilted by rotating only its x
// component into y: x' = x·cos i, y' = x·sin i, z' = z. Renderers and saved
// scenes depend on this exact convention.
func (oe Elements) PositionAt(theta float64) astromath.Vector3 {
    x := oe.SemiMajorAxis * math.Cos(theta)
    z := oe.SemiMinorAxis() * math.Sin(theta)

    cosI := math.Cos(oe.Inclination)
    sinI := math.Sin(oe.Inclination)

    return astromath.Vector3{
        X: x * cosI,
        Y: x * sinI,
        Z: z,
    }
}

// Circular returns the untilted circular-orbit offset (r·cos θ, 0, r·sin θ).
// Moons add it to their parent's position; comets use it from the origin.
func Circular(radius, theta float64) astromath.Vector3 {
    return astromath.Vector3{
        X: radius * math.Cos(theta),
        Y: 0,
        Z: radius * math.Sin(theta),
    }
}

// Sample returns segments+1 points along the orbit, closing the loop.
// The result depends only on a, e and i, never on the current angle.
func (oe Elements) Sample(segments int) []astromath.Vector3 {
    if segments < 3 {
        segments = DefaultSegments
    }

    points := make([]astromath.Vector3, 0, segments+1)
    for i := 0; i <= segments; i++ {
        theta := float64(i) / float64(segments) * TwoPi
        points = append(points, oe.PositionAt(theta))
    }
    return points
}

// GetPerihelion returns the closest distance of the untilted ellipse
// to the origin, min(a, b).
func (oe Elements) GetPerihelion() float64 {
    return math.Min(oe.SemiMajorAxis, oe.SemiMinorAxis())
}

// GetAphelion returns the furthest distance from the origin, a.
func (oe Elements) GetAphelion() float64 {
    return oe.SemiMajorAxis
}

// Advance moves the angle forward by delta radians and wraps it.
func (oe *Elements) Advance(delta float64) {
    oe.Angle = WrapAngle(oe.Angle + delta)
}

// WrapAngle reduces theta into [0, 2π).
func WrapAngle(theta float64) float64 {
    theta = math.Mod(theta, TwoPi)
    if theta < 0 {
        theta += TwoPi
    }
    // math.Mod of a value just below a negative multiple can round up
    if theta >= TwoPi {
        theta = 0
    }
    return theta
}

// AngularStep converts a speed coefficient in degrees per second into the
// radians covered during dt seconds at the given global speed multiplier.
func AngularStep(speed, globalSpeed, dt float64) float64 {
    return speed * globalSpeed * dt * (math.Pi / 180)
}

// FromPosition collapses an orbit onto the circle through p: a = √(x²+z²),
// θ = atan2(z, x). Eccentricity and inclination are set by the caller.
func FromPosition(p astromath.Vector3) (radius, angle float64) {
    radius = p.PlanarDistance()
    angle = WrapAngle(math.Atan2(p.Z, p.X))
    return radius, angle
}
