package orbital

import (
	"math"
	"testing"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestPositionStaysWithinEllipseBounds(t *testing.T) {
	for _, a := range []float64{1, 4, 14, 120} {
		for _, e := range []float64{0, 0.017, 0.2, 0.29, 0.9} {
			for _, inc := range []float64{0, astromath.DegToRad(3.4), astromath.DegToRad(10), 1.2} {
				for step := 0; step < 64; step++ {
					oe := Elements{SemiMajorAxis: a, Eccentricity: e, Inclination: inc, Angle: float64(step) * 0.37}
					d := oe.Position().Magnitude()
					if d < a*(1-e)-eps || d > a*(1+e)+eps {
						t.Fatalf("a=%v e=%v i=%v θ=%v: distance %v outside [%v, %v]",
							a, e, inc, oe.Angle, d, a*(1-e), a*(1+e))
					}
				}
			}
		}
	}
}

func TestPositionIsPure(t *testing.T) {
	oe := Elements{SemiMajorAxis: 8, Eccentricity: 0.017, Inclination: 0.05, Angle: 2.2}
	p1 := oe.Position()
	p2 := oe.Position()
	if p1 != p2 {
		t.Errorf("expected identical positions, got %v and %v", p1, p2)
	}
}

func TestPositionTiltConvention(t *testing.T) {
	inc := math.Pi / 6
	oe := Elements{SemiMajorAxis: 10, Eccentricity: 0, Inclination: inc, Angle: 0}
	p := oe.Position()
	if !near(p.X, 10*math.Cos(inc)) || !near(p.Y, 10*math.Sin(inc)) || !near(p.Z, 0) {
		t.Errorf("unexpected tilt at θ=0: %+v", p)
	}

	// At θ=π/2 the x component vanishes, so the tilt contributes nothing to y
	oe.Angle = math.Pi / 2
	p = oe.Position()
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, 10) {
		t.Errorf("unexpected tilt at θ=π/2: %+v", p)
	}
}

func TestSemiMinorAxis(t *testing.T) {
	oe := Elements{SemiMajorAxis: 10, Eccentricity: 0.6}
	if !near(oe.SemiMinorAxis(), 8) {
		t.Errorf("expected b=8, got %v", oe.SemiMinorAxis())
	}
	if !near(oe.GetPerihelion(), 8) || !near(oe.GetAphelion(), 10) {
		t.Errorf("unexpected apsides %v %v", oe.GetPerihelion(), oe.GetAphelion())
	}
}

func TestCircular(t *testing.T) {
	p := Circular(3, math.Pi)
	if !near(p.X, -3) || p.Y != 0 || !near(p.Z, 0) {
		t.Errorf("unexpected circular position %+v", p)
	}
}

func TestSampleClosesLoopAndIgnoresAngle(t *testing.T) {
	a := Elements{SemiMajorAxis: 6, Eccentricity: 0.01, Inclination: 0.06, Angle: 0}
	b := a
	b.Angle = 4

	pa := a.Sample(DefaultSegments)
	pb := b.Sample(DefaultSegments)
	if len(pa) != DefaultSegments+1 {
		t.Fatalf("expected %d points, got %d", DefaultSegments+1, len(pa))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("orbit line depends on current angle at point %d", i)
		}
	}
	if pa[0].Distance(pa[len(pa)-1]) > 1e-9 {
		t.Errorf("orbit line is not closed: %v vs %v", pa[0], pa[len(pa)-1])
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{TwoPi, 0},
		{TwoPi + 1, 1},
		{-1, TwoPi - 1},
		{100 * TwoPi, 0},
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= TwoPi {
			t.Errorf("WrapAngle(%v) = %v outside [0, 2π)", tt.in, got)
		}
	}
}

func TestAdvanceMatchesClosedForm(t *testing.T) {
	const (
		speed  = 1.5
		global = 30.0
		dt     = 1.0 / 60
		n      = 100000
	)
	oe := Elements{SemiMajorAxis: 6, Angle: 0.3}
	for i := 0; i < n; i++ {
		oe.Advance(AngularStep(speed, global, dt))
	}
	want := WrapAngle(0.3 + n*speed*global*dt*math.Pi/180)
	diff := math.Abs(oe.Angle - want)
	if diff > 1e-6 && math.Abs(diff-TwoPi) > 1e-6 {
		t.Errorf("angle after %d steps = %v, want %v", n, oe.Angle, want)
	}
}

func TestFromPosition(t *testing.T) {
	r, theta := FromPosition(astromath.Vector3{X: 5, Y: 3, Z: 0})
	if !near(r, 5) || !near(theta, 0) {
		t.Errorf("expected r=5 θ=0, got r=%v θ=%v", r, theta)
	}
	r, theta = FromPosition(astromath.Vector3{X: 0, Z: -2})
	if !near(r, 2) || !near(theta, 3*math.Pi/2) {
		t.Errorf("expected r=2 θ=3π/2, got r=%v θ=%v", r, theta)
	}
}
