package math

import "math"

// Vector3 is a point or direction in scene units.
// The orrery uses a Y-up, right-handed frame: orbits lie in the XZ plane.
type Vector3 struct {
    X float64 `json:"x"`
    Y float64 `json:"y"`
    Z float64 `json:"z"`
}

// Up is the scene up axis
var Up = Vector3{X: 0, Y: 1, Z: 0}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
    return Vector3{
        X: v.X + other.X,
        Y: v.Y + other.Y,
        Z: v.Z + other.Z,
    }
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
    return Vector3{
        X: v.X - other.X,
        Y: v.Y - other.Y,
        Z: v.Z - other.Z,
    }
}

// Scale returns the vector scaled by a scalar
func (v Vector3) Scale(s float64) Vector3 {
    return Vector3{
        X: v.X * s,
        Y: v.Y * s,
        Z: v.Z * s,
    }
}

// Magnitude returns the length of the vector
func (v Vector3) Magnitude() float64 {
    return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// PlanarDistance returns the distance from the Y axis, i.e. the radius
// of the circle through v in the orbital plane.
func (v Vector3) PlanarDistance() float64 {
    return math.Hypot(v.X, v.Z)
}

// Distance returns the distance between two vectors
func (v Vector3) Distance(other Vector3) float64 {
    return v.Sub(other).Magnitude()
}

// IsZero checks if the vector is zero
func (v Vector3) IsZero() bool {
    return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite
func (v Vector3) IsFinite() bool {
    for _, c := range [3]float64{v.X, v.Y, v.Z} {
        if math.IsNaN(c) || math.IsInf(c, 0) {
            return false
        }
    }
    return true
}

// Euler is a rotation in radians applied about X, Y and Z.
type Euler = Vector3

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
    return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
    return rad * 180 / math.Pi
}
