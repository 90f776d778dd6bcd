package analysis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/oxygene76/orrery/internal/types"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/simulation"
)

func TestAnalyzeOrbitsSeedSystem(t *testing.T) {
	s := simulation.NewState(simulation.Options{RandSeed: 1})
	m := NewManager(30, false)

	report, err := m.AnalyzeOrbits(FromState(s))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Bodies) != 5 {
		t.Fatalf("expected 5 bodies, got %d", len(report.Bodies))
	}
	if report.SemiMajorAxis.Min != 4 || report.SemiMajorAxis.Max != 14 {
		t.Errorf("unexpected axis range %+v", report.SemiMajorAxis)
	}
	if math.Abs(report.SemiMajorAxis.Mean-8.4) > 1e-12 {
		t.Errorf("expected mean axis 8.4, got %v", report.SemiMajorAxis.Mean)
	}

	earth := report.Bodies[2]
	if earth.Name != "Earth" {
		t.Fatalf("expected bodies sorted by axis, got %s at index 2", earth.Name)
	}
	// 1 deg/s at speed 30 is 12 s per revolution
	if math.Abs(earth.PeriodSec-12) > 1e-12 {
		t.Errorf("expected a 12s period, got %v", earth.PeriodSec)
	}
	if earth.SpacingTo != 2 || earth.Ratio != 10.0/8.0 {
		t.Errorf("unexpected spacing %+v", earth)
	}
	if earth.Aphelion != 8 || earth.Perihelion >= 8 {
		t.Errorf("unexpected apsides %+v", earth)
	}
	if len(report.Crossings) != 0 {
		t.Errorf("seed orbits should not overlap, got %+v", report.Crossings)
	}
}

func TestAnalyzeOrbitsCrossings(t *testing.T) {
	m := NewManager(0, false)
	report, err := m.AnalyzeOrbits([]types.BodyElements{
		{Name: "Outer", SemiMajorAxis: 10.5, Eccentricity: 0.5, Speed: 1},
		{Name: "Inner", SemiMajorAxis: 10, Speed: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Crossings) != 1 {
		t.Fatalf("expected one overlap, got %+v", report.Crossings)
	}
	c := report.Crossings[0]
	if c.Inner != "Inner" || c.Outer != "Outer" || c.Depth <= 0 {
		t.Errorf("unexpected overlap %+v", c)
	}
	if report.Bodies[0].PeriodSec != 0 {
		t.Errorf("a body at rest has no period, got %v", report.Bodies[0].PeriodSec)
	}
	if report.Period.StdDev != 0 || report.Period.Mean != 360/simulation.DefaultSpeed {
		t.Errorf("unexpected period distribution %+v", report.Period)
	}
}

func TestAnalyzeOrbitsEmpty(t *testing.T) {
	if _, err := NewManager(1, false).AnalyzeOrbits(nil); err == nil {
		t.Error("expected an error for an empty input")
	}
}

func TestLoadElementsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodies.csv")
	data := "name,a,e,i,speed,radius\n" +
		"Vulcan, 3, 0.1, 2, 2.5, 0.2\n" +
		"Broken,abc,0,0,1\n" +
		"Short,1,2\n" +
		"Hyperbolic,5,1.2,0,1\n" +
		"Nibiru,40,0.25,12,0.1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	bodies, err := LoadElementsCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected 2 valid rows, got %d: %+v", len(bodies), bodies)
	}
	want := types.BodyElements{Name: "Vulcan", SemiMajorAxis: 3, Eccentricity: 0.1, InclinationDeg: 2, Speed: 2.5, Radius: 0.2}
	if bodies[0] != want {
		t.Errorf("expected %+v, got %+v", want, bodies[0])
	}
	if bodies[1].Name != "Nibiru" || bodies[1].Radius != 0 {
		t.Errorf("unexpected second row %+v", bodies[1])
	}
}

func TestLoadElementsCSVHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	os.WriteFile(path, []byte("name,a,e,i,speed\n"), 0644)

	if _, err := LoadElementsCSV(path); err == nil {
		t.Error("expected an error for a file without rows")
	}
}

func TestAnalyzeTrack(t *testing.T) {
	frames := []types.Frame{
		{ElapsedMS: 0, Entities: []types.EntityView{
			{UUID: "a", Kind: "planet", Name: "A", Position: astromath.Vector3{X: 3, Z: 4}},
			{UUID: "s", Kind: "sun", Name: "Sun"},
			{UUID: "c", Kind: "comet", Name: "C", Position: astromath.Vector3{X: 20}},
		}},
		{ElapsedMS: 500, Entities: []types.EntityView{
			{UUID: "a", Kind: "planet", Name: "A", Position: astromath.Vector3{X: -5, Y: 1}},
		}},
		{ElapsedMS: 1500, Entities: []types.EntityView{
			{UUID: "a", Kind: "planet", Name: "A", Position: astromath.Vector3{Z: 7}},
		}},
	}

	report := NewManager(30, false).AnalyzeTrack(frames)
	if report.Frames != 3 || report.Duration != 1.5 {
		t.Errorf("unexpected header %+v", report)
	}
	if len(report.Tracks) != 2 {
		t.Fatalf("expected planet and comet tracks, got %+v", report.Tracks)
	}

	a := report.Tracks[0]
	if a.Name != "A" || a.Samples != 3 {
		t.Fatalf("unexpected track %+v", a)
	}
	if a.Distance.Min != 5 || a.Distance.Max != 7 {
		t.Errorf("unexpected distance range %+v", a.Distance)
	}
	if a.Height.Max != 1 {
		t.Errorf("unexpected height range %+v", a.Height)
	}
	if c := report.Tracks[1]; c.Samples != 1 || c.Distance.StdDev != 0 || c.Distance.Mean != 20 {
		t.Errorf("unexpected comet track %+v", c)
	}
}
