package projection

import (
	"gonum.org/v1/gonum/mat"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// LabelMargin is the gap between a body's surface and its label anchor
const LabelMargin = 0.5

// Viewport is the drawing surface size in pixels
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width/height, or 1 for a degenerate viewport
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return v.Width / v.Height
}

// Label is the screen placement of one overlay label. Depth is the NDC
// depth; Visible is false when the point is outside the depth range or
// off screen.
type Label struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Depth   float64 `json:"depth"`
	Visible bool    `json:"visible"`
}

// Anchor returns the label anchor above a body of the given radius
func Anchor(position astromath.Vector3, radius float64) astromath.Vector3 {
	return position.Add(astromath.Up.Scale(radius + LabelMargin))
}

// Projector maps world points to screen space. It keeps scratch matrices
// between calls and must not be shared between goroutines.
type Projector struct {
	viewProj mat.Dense
	clip     mat.VecDense
}

// NewProjector returns a ready Projector
func NewProjector() *Projector {
	return &Projector{}
}

// Prepare caches the combined view-projection matrix for a frame. Call it
// once per frame before ProjectPrepared.
func (p *Projector) Prepare(cam *Camera, vp Viewport) {
	p.viewProj.Mul(cam.ProjectionMatrix(vp.Aspect()), cam.ViewMatrix())
}

// Project maps world into screen space for the given camera and viewport
func (p *Projector) Project(world astromath.Vector3, cam *Camera, vp Viewport) Label {
	p.Prepare(cam, vp)
	return p.ProjectPrepared(world, vp)
}

// ProjectPrepared maps world using the matrix from the last Prepare call
func (p *Projector) ProjectPrepared(world astromath.Vector3, vp Viewport) Label {
	p.clip.MulVec(&p.viewProj, mat.NewVecDense(4, []float64{world.X, world.Y, world.Z, 1}))

	w := p.clip.AtVec(3)
	if w == 0 {
		return Label{}
	}
	ndc := astromath.Vector3{
		X: p.clip.AtVec(0) / w,
		Y: p.clip.AtVec(1) / w,
		Z: p.clip.AtVec(2) / w,
	}
	return FromNDC(ndc, vp)
}

// FromNDC converts normalized device coordinates into a Label:
// x = (ndcX+1)·width/2, y = (−ndcY+1)·height/2. A point is visible when
// -1 < depth < 1 and it lands inside the viewport, edges included.
func FromNDC(ndc astromath.Vector3, vp Viewport) Label {
	if !ndc.IsFinite() {
		return Label{}
	}

	l := Label{
		X:     (ndc.X + 1) * vp.Width / 2,
		Y:     (-ndc.Y + 1) * vp.Height / 2,
		Depth: ndc.Z,
	}
	inFront := l.Depth > -1 && l.Depth < 1
	onScreen := l.X >= 0 && l.X <= vp.Width && l.Y >= 0 && l.Y <= vp.Height
	l.Visible = inFront && onScreen
	return l
}
