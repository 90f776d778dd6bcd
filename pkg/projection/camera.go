package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// Camera defaults
const (
	DefaultFOV         = 75.0 // vertical, degrees
	DefaultNear        = 0.1
	DefaultFar         = 1000.0
	DefaultSpeed       = 5.0   // units per second
	DefaultSensitivity = 0.002 // radians per pixel of mouse movement
)

// DefaultPosition is where the camera starts and returns to on Reset
var DefaultPosition = astromath.Vector3{X: 0, Y: 5, Z: 10}

// Camera is a free-flying perspective camera.
//
// Orientation is stored as yaw about world Y followed by pitch about the
// camera's X axis, so mouse-look never rolls the horizon. With zero yaw
// and pitch the camera looks down -Z.
type Camera struct {
	Position    astromath.Vector3 `json:"position"`
	Pitch       float64           `json:"pitch"`
	Yaw         float64           `json:"yaw"`
	FOV         float64           `json:"fov"`
	Near        float64           `json:"near"`
	Far         float64           `json:"far"`
	Speed       float64           `json:"speed"`
	Sensitivity float64           `json:"sensitivity"`
}

// NewCamera returns a camera at DefaultPosition looking at the origin
func NewCamera() *Camera {
	c := &Camera{
		FOV:         DefaultFOV,
		Near:        DefaultNear,
		Far:         DefaultFar,
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
	}
	c.Reset()
	return c
}

// Reset moves the camera back to DefaultPosition looking at the origin
func (c *Camera) Reset() {
	c.Position = DefaultPosition
	c.LookAt(astromath.Vector3{})
}

// LookAt turns the camera towards target. Looking straight up or down
// keeps the current yaw.
func (c *Camera) LookAt(target astromath.Vector3) {
	dir := target.Sub(c.Position)
	length := dir.Magnitude()
	if length == 0 {
		return
	}
	dir = dir.Scale(1 / length)

	c.Pitch = math.Asin(clamp(dir.Y, -1, 1))
	if math.Abs(dir.X) > 1e-12 || math.Abs(dir.Z) > 1e-12 {
		c.Yaw = math.Atan2(-dir.X, -dir.Z)
	}
}

// Look applies a mouse movement in pixels. Pitch is clamped to ±π/2.
func (c *Camera) Look(dx, dy float64) {
	c.Yaw -= dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.Pitch = clamp(c.Pitch, -math.Pi/2, math.Pi/2)
}

// Translate moves the camera along its own axes. forward, right and up are
// direction weights, usually -1, 0 or 1, scaled by Speed·dt.
func (c *Camera) Translate(forward, right, up, dt float64) {
	step := c.Speed * dt
	move := c.Forward().Scale(forward * step).
		Add(c.Right().Scale(right * step)).
		Add(c.Up().Scale(up * step))
	c.Position = c.Position.Add(move)
}

// Forward is the unit viewing direction
func (c *Camera) Forward() astromath.Vector3 {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)
	return astromath.Vector3{X: -sy * cp, Y: sp, Z: -cy * cp}
}

// Right is the camera's unit X axis in world space
func (c *Camera) Right() astromath.Vector3 {
	sy, cy := math.Sincos(c.Yaw)
	return astromath.Vector3{X: cy, Y: 0, Z: -sy}
}

// Up is the camera's unit Y axis in world space
func (c *Camera) Up() astromath.Vector3 {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)
	return astromath.Vector3{X: sy * sp, Y: cp, Z: cy * sp}
}

// rotation returns the camera-to-world rotation, columns right, up, back
func (c *Camera) rotation() *mat.Dense {
	r, u, f := c.Right(), c.Up(), c.Forward()
	return mat.NewDense(3, 3, []float64{
		r.X, u.X, -f.X,
		r.Y, u.Y, -f.Y,
		r.Z, u.Z, -f.Z,
	})
}

// ViewMatrix returns the 4×4 world-to-camera transform
func (c *Camera) ViewMatrix() *mat.Dense {
	rt := mat.DenseCopyOf(c.rotation().T())

	var t mat.VecDense
	t.MulVec(rt, mat.NewVecDense(3, []float64{c.Position.X, c.Position.Y, c.Position.Z}))

	view := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			view.Set(i, j, rt.At(i, j))
		}
		view.Set(i, 3, -t.AtVec(i))
	}
	view.Set(3, 3, 1)
	return view
}

// ProjectionMatrix returns the OpenGL-style perspective matrix for the
// given aspect ratio. Points between Near and Far map to NDC depth -1..1.
func (c *Camera) ProjectionMatrix(aspect float64) *mat.Dense {
	f := 1 / math.Tan(astromath.DegToRad(c.FOV)/2)
	depth := c.Far - c.Near

	return mat.NewDense(4, 4, []float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, -(c.Far + c.Near) / depth, -2 * c.Far * c.Near / depth,
		0, 0, -1, 0,
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
