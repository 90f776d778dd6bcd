package simulation

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// DefaultSpeed is the global simulation speed in degrees per second
const DefaultSpeed = 30.0

// Scene is the rendering collaborator. The kernel tells it which entities
// exist; it reads their positions and rotations when it draws.
type Scene interface {
	Add(e Entity)
	Remove(e Entity)
}

// NopScene ignores every call
type NopScene struct{}

func (NopScene) Add(Entity)    {}
func (NopScene) Remove(Entity) {}

// Options configure a new State
type Options struct {
	Speed    float64    // global speed multiplier, DefaultSpeed when zero
	RandSeed int64      // 0 seeds from the wall clock
	Scene    Scene      // NopScene when nil
	Time     TimeSource // SystemTime when nil
	MaxDelta float64    // clamp for a single frame delta in seconds, 0 = none
	Empty    bool       // skip the seed planets
}

// State is the whole simulated system. It is owned by one controller and is
// not safe for concurrent use.
type State struct {
	Sun     *Sun
	Planets []*Planet
	Comets  []*Comet
	Models  []*Model
	Speed   float64
	Clock   *Clock

	scene       Scene
	rng         *rand.Rand
	selected    *Selector
	addressable []Entry
	serials     map[string]int
}

// NewState creates the sun and, unless opts.Empty, the seed planets.
func NewState(opts Options) *State {
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.Scene == nil {
		opts.Scene = NopScene{}
	}
	if opts.Time == nil {
		opts.Time = SystemTime{}
	}
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}

	s := &State{
		Sun:   newSun(),
		Speed: opts.Speed,
		Clock: NewClock(opts.Time),
		scene: opts.Scene,
		rng:   rand.New(rand.NewSource(opts.RandSeed)),
	}
	s.Clock.MaxDelta = opts.MaxDelta
	s.scene.Add(s.Sun)

	if !opts.Empty {
		for _, sp := range SeedPlanets {
			params := sp.PlanetParams
			// seed rows are unique and within capacity
			_, _ = s.AddPlanet(sp.Name, &params)
		}
	}
	s.rebuild()
	return s
}

// Rand exposes the state's random source to collaborators that must draw
// from the same deterministic sequence.
func (s *State) Rand() *rand.Rand {
	return s.rng
}

// Addressable returns the flattened selection list: sun, each planet
// followed by its moons, comets, models.
func (s *State) Addressable() []Entry {
	out := make([]Entry, len(s.addressable))
	copy(out, s.addressable)
	return out
}

// rebuild recomputes the addressable list from scratch. It runs after every
// successful mutation; the list is never patched in place.
func (s *State) rebuild() {
	list := make([]Entry, 0, 1+len(s.Planets)*(1+MaxMoonsPerPlanet)+len(s.Comets)+len(s.Models))
	list = append(list, Entry{Selector: SunSelector(), Label: s.Sun.Name})

	for i, p := range s.Planets {
		label := p.Name
		if p.Texture != nil {
			label += " (" + p.Texture.Name + ")"
		}
		list = append(list, Entry{Selector: PlanetSelector(i), Label: label})
		for j, m := range p.Moons {
			list = append(list, Entry{Selector: MoonSelector(i, j), Label: m.Name + " (" + p.Name + ")"})
		}
	}
	for i, c := range s.Comets {
		list = append(list, Entry{Selector: CometSelector(i), Label: c.Name})
	}
	for i, m := range s.Models {
		list = append(list, Entry{Selector: ModelSelector(i), Label: m.Name})
	}
	s.addressable = list
}

// Counters summarise the registry for the UI
type Counters struct {
	Planets        int     `json:"planets"`
	Moons          int     `json:"moons"`
	Comets         int     `json:"comets"`
	Models         int     `json:"models"`
	MaxOrbitRadius float64 `json:"max_orbit_radius"`
}

// Counters returns the current registry counts
func (s *State) Counters() Counters {
	c := Counters{
		Planets:        len(s.Planets),
		Comets:         len(s.Comets),
		Models:         len(s.Models),
		MaxOrbitRadius: s.maxPlanetOrbit(),
	}
	for _, p := range s.Planets {
		c.Moons += len(p.Moons)
	}
	return c
}

func (s *State) maxPlanetOrbit() float64 {
	widest := 0.0
	for _, p := range s.Planets {
		widest = math.Max(widest, p.Orbit.SemiMajorAxis)
	}
	return widest
}

// planetByID resolves a moon's parent handle
func (s *State) planetByID(id uuid.UUID) (*Planet, bool) {
	for _, p := range s.Planets {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Reset scatters the planets to new random angles, stops the sun spin and
// resumes the clock.
func (s *State) Reset() {
	for _, p := range s.Planets {
		p.Orbit.Angle = randomAngle(s.rng)
		p.Position = p.Orbit.Position()
	}
	s.Sun.Rotation = astromath.Euler{}
	s.Clock.Resume()
}
