package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/oxygene76/orrery/pkg/assets"
)

// PlanetParams are the creation parameters of a planet
type PlanetParams struct {
	Radius         float64      `json:"radius" yaml:"radius"`
	SemiMajorAxis  float64      `json:"semi_major_axis" yaml:"semi_major_axis"`
	Eccentricity   float64      `json:"eccentricity" yaml:"eccentricity"`
	InclinationDeg float64      `json:"inclination_deg" yaml:"inclination_deg"`
	Speed          float64      `json:"speed" yaml:"speed"`
	Color          assets.Color `json:"color" yaml:"color"`
	Texture        string       `json:"texture,omitempty" yaml:"texture,omitempty"`
}

// SeedPlanet is one row of the initial system
type SeedPlanet struct {
	Name string
	PlanetParams
}

// SeedPlanets is the system every session starts from. Resetting a planet
// restores its speed from this table.
var SeedPlanets = []SeedPlanet{
	{Name: "Mercury", PlanetParams: PlanetParams{Radius: 0.3, SemiMajorAxis: 4, Eccentricity: 0.2, InclinationDeg: 0, Speed: 2.0, Color: 0x8C7853, Texture: "mercury"}},
	{Name: "Venus", PlanetParams: PlanetParams{Radius: 0.4, SemiMajorAxis: 6, Eccentricity: 0.01, InclinationDeg: 3.4, Speed: 1.5, Color: 0xFFA500, Texture: "venus"}},
	{Name: "Earth", PlanetParams: PlanetParams{Radius: 0.5, SemiMajorAxis: 8, Eccentricity: 0.017, InclinationDeg: 0, Speed: 1.0, Color: 0x4169E1, Texture: "earth"}},
	{Name: "Mars", PlanetParams: PlanetParams{Radius: 0.4, SemiMajorAxis: 10, Eccentricity: 0.09, InclinationDeg: 1.85, Speed: 0.8, Color: 0xFF4500, Texture: "mars"}},
	{Name: "Jupiter", PlanetParams: PlanetParams{Radius: 1.2, SemiMajorAxis: 14, Eccentricity: 0.05, InclinationDeg: 1.3, Speed: 0.5, Color: 0xD2691E, Texture: "jupiter"}},
}

// DefaultOrbitSpeed is used when resetting a planet that has no seed row
const DefaultOrbitSpeed = 1.0

// SeedSpeed returns the seed orbit speed for name, or DefaultOrbitSpeed.
// Names match exactly, like the seed texture lookup.
func SeedSpeed(name string) float64 {
	for _, sp := range SeedPlanets {
		if sp.Name == name {
			return sp.Speed
		}
	}
	return DefaultOrbitSpeed
}

var planetCatalog = []string{
	"Kepler-442b", "HD 40307g", "Gliese 667Cc", "Kepler-438b",
	"Wolf 1061c", "Proxima Centauri b", "Trappist-1e", "LHS 1140b",
	"K2-18b", "TOI-715b",
}

var planetPalette = []assets.Color{
	0x4169E1, 0xFF4500, 0x32CD32, 0xFFD700, 0x9370DB,
	0xFF6347, 0x20B2AA, 0xDDA0DD, 0xF0E68C, 0x87CEEB,
}

var cometCatalog = []string{
	"Halley", "Hale-Bopp", "Encke", "Biela", "Swift-Tuttle",
	"Tempel-Tuttle", "Hyakutake", "McNaught", "Lovejoy", "NEOWISE",
}

var cometPalette = []assets.Color{
	0x00FFFF, 0xFF6B6B, 0x4ECDC4, 0x45B7D1, 0xF9CA24,
	0x6C5CE7, 0xA29BFE, 0xFD79A8, 0x00B894, 0xFDCB6E,
}

// Orbit spacing for generated bodies
const (
	FirstPlanetOrbit = 4.0
	PlanetSpacing    = 3.0
	MinCometOrbit    = 20.0
	CometSpacing     = 8.0
)

// NextPlanetOrbit returns max(existing semi-major axes) + 3, or 4 for an
// empty system.
func (s *State) NextPlanetOrbit() float64 {
	if len(s.Planets) == 0 {
		return FirstPlanetOrbit
	}
	return s.maxPlanetOrbit() + PlanetSpacing
}

// NextCometOrbit returns max(existing comet radii) + 8, never below 20.
func (s *State) NextCometOrbit() float64 {
	if len(s.Comets) == 0 {
		return MinCometOrbit
	}
	widest := 0.0
	for _, c := range s.Comets {
		widest = math.Max(widest, c.Orbit.SemiMajorAxis)
	}
	return math.Max(MinCometOrbit, widest+CometSpacing)
}

// RandomPlanetParams draws a planet for the next free orbit:
// eccentricity [0,0.3), speed [0.3,1.8), inclination [0°,10°).
func (s *State) RandomPlanetParams() PlanetParams {
	return PlanetParams{
		Radius:         0.3 + s.rng.Float64()*0.8,
		SemiMajorAxis:  s.NextPlanetOrbit(),
		Eccentricity:   s.rng.Float64() * 0.3,
		InclinationDeg: s.rng.Float64() * 10,
		Speed:          0.3 + s.rng.Float64()*1.5,
		Color:          planetPalette[s.rng.Intn(len(planetPalette))],
		Texture:        assets.PlanetTextures[s.rng.Intn(len(assets.PlanetTextures))],
	}
}

// CometParams are the creation parameters of a comet
type CometParams struct {
	OrbitRadius   float64      `json:"orbit_radius" yaml:"orbit_radius"`
	Speed         float64      `json:"speed" yaml:"speed"`
	Color         assets.Color `json:"color" yaml:"color"`
	Intensity     float64      `json:"intensity" yaml:"intensity"`
	LightDistance float64      `json:"light_distance" yaml:"light_distance"`
}

// RandomCometParams draws a comet for the next free orbit:
// speed [0.2,1.0), intensity [0.5,2.0), light distance [15,30).
func (s *State) RandomCometParams() CometParams {
	return CometParams{
		OrbitRadius:   s.NextCometOrbit(),
		Speed:         0.2 + s.rng.Float64()*0.8,
		Color:         cometPalette[s.rng.Intn(len(cometPalette))],
		Intensity:     0.5 + s.rng.Float64()*1.5,
		LightDistance: 15 + s.rng.Float64()*15,
	}
}

// pickName returns an unused catalog name, or "<fallback>-<n>".
func pickName(rng *rand.Rand, catalog []string, taken func(string) bool, fallback string, n int) string {
	free := make([]string, 0, len(catalog))
	for _, name := range catalog {
		if !taken(name) {
			free = append(free, name)
		}
	}
	if len(free) == 0 {
		return fmt.Sprintf("%s-%d", fallback, n)
	}
	return free[rng.Intn(len(free))]
}

func randomAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}

// randomSpin returns a self-rotation speed in [0.01, 0.03) radians per frame
func randomSpin(rng *rand.Rand) float64 {
	return 0.01 + rng.Float64()*0.02
}
