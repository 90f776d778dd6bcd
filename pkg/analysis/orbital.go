package analysis

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/orrery/internal/types"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
	"github.com/oxygene76/orrery/pkg/simulation"
)

// Manager runs descriptive analyses over orbits and recorded frames
type Manager struct {
	globalSpeed float64
	verbose     bool
}

// NewManager creates a manager that reports periods at the given global
// speed, DefaultSpeed when zero.
func NewManager(globalSpeed float64, verbose bool) *Manager {
	if globalSpeed == 0 {
		globalSpeed = simulation.DefaultSpeed
	}
	return &Manager{globalSpeed: globalSpeed, verbose: verbose}
}

// FromState extracts the planets of a running system
func FromState(s *simulation.State) []types.BodyElements {
	bodies := make([]types.BodyElements, 0, len(s.Planets))
	for _, p := range s.Planets {
		bodies = append(bodies, types.BodyElements{
			Name:           p.Name,
			SemiMajorAxis:  p.Orbit.SemiMajorAxis,
			Eccentricity:   p.Orbit.Eccentricity,
			InclinationDeg: astromath.RadToDeg(p.Orbit.Inclination),
			Speed:          p.OrbitSpeed,
			Radius:         p.Radius,
		})
	}
	return bodies
}

// LoadElementsCSV reads rows of name,a,e,inclination_deg,speed[,radius].
// The first row is a header. Malformed rows are logged and skipped.
func LoadElementsCSV(filename string) ([]types.BodyElements, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in %s", filename)
	}

	var bodies []types.BodyElements
	for i, record := range records[1:] {
		if len(record) < 5 {
			log.Printf("Warning: skipping incomplete record %d", i+1)
			continue
		}

		body, err := parseRecord(record)
		if err != nil {
			log.Printf("Warning: failed to parse record %d: %v", i+1, err)
			continue
		}
		bodies = append(bodies, body)
	}

	return bodies, nil
}

func parseRecord(record []string) (types.BodyElements, error) {
	parseFloat := func(s string) (float64, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}

	body := types.BodyElements{Name: strings.TrimSpace(record[0])}
	if body.Name == "" {
		return body, fmt.Errorf("missing name")
	}

	var err error
	if body.SemiMajorAxis, err = parseFloat(record[1]); err != nil {
		return body, fmt.Errorf("invalid semi-major axis: %w", err)
	}
	if body.Eccentricity, err = parseFloat(record[2]); err != nil {
		return body, fmt.Errorf("invalid eccentricity: %w", err)
	}
	if body.InclinationDeg, err = parseFloat(record[3]); err != nil {
		return body, fmt.Errorf("invalid inclination: %w", err)
	}
	if body.Speed, err = parseFloat(record[4]); err != nil {
		return body, fmt.Errorf("invalid speed: %w", err)
	}
	if len(record) > 5 {
		body.Radius, _ = parseFloat(record[5])
	}

	if body.SemiMajorAxis <= 0 {
		return body, fmt.Errorf("semi-major axis must be positive, got %v", body.SemiMajorAxis)
	}
	if body.Eccentricity < 0 || body.Eccentricity >= 1 {
		return body, fmt.Errorf("eccentricity must be in [0,1), got %v", body.Eccentricity)
	}
	return body, nil
}

// AnalyzeOrbits summarises a set of orbits: per-body perihelion, aphelion
// and period, distributions of the elements, spacing between neighbours and
// overlapping radial bands.
func (m *Manager) AnalyzeOrbits(bodies []types.BodyElements) (*types.OrbitReport, error) {
	if len(bodies) == 0 {
		return nil, fmt.Errorf("no orbits to analyse")
	}
	start := time.Now()

	sorted := make([]types.BodyElements, len(bodies))
	copy(sorted, bodies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SemiMajorAxis < sorted[j].SemiMajorAxis
	})

	report := &types.OrbitReport{
		GlobalSpeed: m.globalSpeed,
		Bodies:      make([]types.BodySummary, 0, len(sorted)),
		Timestamp:   time.Now(),
	}

	var axes, eccs, incls, periods, ratios []float64
	for i, b := range sorted {
		oe := orbital.Elements{
			SemiMajorAxis: b.SemiMajorAxis,
			Eccentricity:  b.Eccentricity,
			Inclination:   astromath.DegToRad(b.InclinationDeg),
		}
		summary := types.BodySummary{
			Name:       b.Name,
			Perihelion: oe.GetPerihelion(),
			Aphelion:   oe.GetAphelion(),
			PeriodSec:  m.period(b.Speed),
		}

		if i+1 < len(sorted) {
			next := sorted[i+1]
			summary.SpacingTo = next.SemiMajorAxis - b.SemiMajorAxis
			summary.Ratio = next.SemiMajorAxis / b.SemiMajorAxis
			ratios = append(ratios, summary.Ratio)

			nextOE := orbital.Elements{SemiMajorAxis: next.SemiMajorAxis, Eccentricity: next.Eccentricity}
			if depth := summary.Aphelion - nextOE.GetPerihelion(); depth > 0 {
				report.Crossings = append(report.Crossings, types.OrbitOverlap{
					Inner: b.Name,
					Outer: next.Name,
					Depth: depth,
				})
			}
		}

		axes = append(axes, b.SemiMajorAxis)
		eccs = append(eccs, b.Eccentricity)
		incls = append(incls, b.InclinationDeg)
		if summary.PeriodSec > 0 {
			periods = append(periods, summary.PeriodSec)
		}
		report.Bodies = append(report.Bodies, summary)
	}

	report.SemiMajorAxis = distribution(axes)
	report.Eccentricity = distribution(eccs)
	report.Inclination = distribution(incls)
	report.Period = distribution(periods)
	report.SpacingRatio = distribution(ratios)

	if m.verbose {
		log.Printf("Orbit analysis: %d bodies, a=%.2f±%.2f, e=%.3f±%.3f, %d overlaps (%v)",
			len(sorted), report.SemiMajorAxis.Mean, report.SemiMajorAxis.StdDev,
			report.Eccentricity.Mean, report.Eccentricity.StdDev, len(report.Crossings), time.Since(start))
	}
	return report, nil
}

// period returns the seconds one revolution takes, or 0 for a body that
// does not move.
func (m *Manager) period(speed float64) float64 {
	degPerSec := speed * m.globalSpeed
	if degPerSec <= 0 {
		return 0
	}
	return 360 / degPerSec
}

// AnalyzeTrack summarises the distance from the origin of every planet and
// comet across recorded frames.
func (m *Manager) AnalyzeTrack(frames []types.Frame) *types.TrackReport {
	report := &types.TrackReport{Frames: len(frames)}
	if len(frames) == 0 {
		return report
	}
	report.Duration = (frames[len(frames)-1].ElapsedMS - frames[0].ElapsedMS) / 1000

	type track struct {
		id, name          string
		distances, height []float64
	}
	var order []string
	tracks := make(map[string]*track)

	for _, f := range frames {
		for _, e := range f.Entities {
			if e.Kind != simulation.KindPlanet.String() && e.Kind != simulation.KindComet.String() {
				continue
			}
			t, ok := tracks[e.UUID]
			if !ok {
				t = &track{id: e.UUID, name: e.Name}
				tracks[e.UUID] = t
				order = append(order, e.UUID)
			}
			t.distances = append(t.distances, e.Position.Magnitude())
			t.height = append(t.height, e.Position.Y)
		}
	}

	for _, id := range order {
		t := tracks[id]
		report.Tracks = append(report.Tracks, types.TrackStats{
			ID:       t.id,
			Name:     t.name,
			Samples:  len(t.distances),
			Distance: distribution(t.distances),
			Height:   distribution(t.height),
		})
	}

	if m.verbose {
		log.Printf("Track analysis: %d frames over %.1fs, %d tracks", report.Frames, report.Duration, len(report.Tracks))
	}
	return report
}

func distribution(values []float64) types.Distribution {
	if len(values) == 0 {
		return types.Distribution{}
	}
	d := types.Distribution{
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
	if len(values) > 1 {
		d.StdDev = stat.StdDev(values, nil)
	}
	return d
}
