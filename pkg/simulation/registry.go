package simulation

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"

	"github.com/oxygene76/orrery/pkg/assets"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// Moon defaults
const (
	DefaultMoonSize  = 0.3
	DefaultMoonColor = assets.Color(0xCCCCCC)
	moonOrbitFactor  = 2.5
)

// AddPlanet inserts a planet. An empty name draws an unused catalog name and
// nil params draw random parameters for the next free orbit.
func (s *State) AddPlanet(name string, params *PlanetParams) (*Planet, error) {
	if len(s.Planets) >= MaxPlanets {
		return nil, errorsmod.Wrapf(ErrCapacityExceeded, "at most %d planets", MaxPlanets)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = pickName(s.rng, planetCatalog, s.planetNameTaken, "Planet", s.serial("planet"))
	}
	if s.planetNameTaken(name) {
		return nil, errorsmod.Wrapf(ErrDuplicateName, "planet %q", name)
	}

	if params == nil {
		p := s.RandomPlanetParams()
		params = &p
	}
	if err := params.Validate(); err != nil {
		return nil, errorsmod.Wrapf(err, "planet %q", name)
	}

	planet := &Planet{
		Body: Body{
			Name: name,
			Orbit: orbital.Elements{
				SemiMajorAxis: params.SemiMajorAxis,
				Eccentricity:  params.Eccentricity,
				Inclination:   astromath.DegToRad(params.InclinationDeg),
				Angle:         randomAngle(s.rng),
			},
			OrbitSpeed:    params.Speed,
			RotationSpeed: randomSpin(s.rng),
			Scale:         1,
		},
		ID:         uuid.New(),
		Radius:     params.Radius,
		BaseColor:  params.Color,
		Color:      params.Color,
		OrbitPulse: 1 + s.rng.Float64()*2,
		Moons:      []*Moon{},
	}
	planet.Position = planet.Orbit.Position()

	s.Planets = append(s.Planets, planet)
	s.scene.Add(planet)
	s.scene.Add(planet.OrbitPath())
	s.rebuild()

	return planet, nil
}

func (s *State) planetNameTaken(name string) bool {
	for _, p := range s.Planets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Planet returns the planet at index i
func (s *State) Planet(i int) (*Planet, error) {
	if i < 0 || i >= len(s.Planets) {
		return nil, errorsmod.Wrapf(ErrNotFound, "planet %d", i)
	}
	return s.Planets[i], nil
}

// RemovePlanet removes the planet at index i together with its moons and
// its orbit line.
func (s *State) RemovePlanet(i int) error {
	planet, err := s.Planet(i)
	if err != nil {
		return err
	}

	for _, m := range planet.Moons {
		s.scene.Remove(m)
	}
	planet.Moons = nil
	s.scene.Remove(planet.OrbitPath())
	s.scene.Remove(planet)

	s.Planets = append(s.Planets[:i], s.Planets[i+1:]...)
	s.afterRemoval()
	return nil
}

// AddMoon attaches a moon to the planet at planetIndex. The orbit radius
// grows with the number of moons already present: 2.5·r + n·r, where r is the
// planet's scaled radius.
func (s *State) AddMoon(planetIndex int, name string, size float64, texture *assets.Texture) (*Moon, error) {
	planet, err := s.Planet(planetIndex)
	if err != nil {
		return nil, err
	}
	if len(planet.Moons) >= MaxMoonsPerPlanet {
		return nil, errorsmod.Wrapf(ErrCapacityExceeded, "planet %q already has %d moons", planet.Name, MaxMoonsPerPlanet)
	}

	if !finite(size) || size > MaxBodyScale {
		return nil, outOfRange("moon size", size)
	}
	if size <= 0 {
		size = DefaultMoonSize
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s-moon-%d", planet.Name, s.serial("moon/"+planet.ID.String()))
	}

	r := planet.SurfaceRadius()
	moon := &Moon{
		ID:            uuid.New(),
		Name:          name,
		Parent:        planet.ID,
		Size:          size,
		OrbitRadius:   r*moonOrbitFactor + float64(len(planet.Moons))*r,
		OrbitSpeed:    1 + s.rng.Float64()*2,
		Angle:         randomAngle(s.rng),
		RotationSpeed: randomSpin(s.rng),
		Color:         DefaultMoonColor,
		Texture:       texture,
	}
	moon.Position = planet.Position.Add(orbital.Circular(moon.OrbitRadius, moon.Angle))

	planet.Moons = append(planet.Moons, moon)
	s.scene.Add(moon)
	s.rebuild()

	return moon, nil
}

// RemoveMoon detaches and removes one moon
func (s *State) RemoveMoon(planetIndex, moonIndex int) error {
	planet, err := s.Planet(planetIndex)
	if err != nil {
		return err
	}
	if moonIndex < 0 || moonIndex >= len(planet.Moons) {
		return errorsmod.Wrapf(ErrNotFound, "moon %d of planet %q", moonIndex, planet.Name)
	}

	s.scene.Remove(planet.Moons[moonIndex])
	planet.Moons = append(planet.Moons[:moonIndex], planet.Moons[moonIndex+1:]...)
	s.afterRemoval()
	return nil
}

// AddComet inserts a comet. An empty name draws an unused catalog name and
// nil params draw random parameters for the next free orbit.
func (s *State) AddComet(name string, params *CometParams) (*Comet, error) {
	if len(s.Comets) >= MaxComets {
		return nil, errorsmod.Wrapf(ErrCapacityExceeded, "at most %d comets", MaxComets)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = pickName(s.rng, cometCatalog, s.cometNameTaken, "Comet", s.serial("comet"))
	}
	if s.cometNameTaken(name) {
		return nil, errorsmod.Wrapf(ErrDuplicateName, "comet %q", name)
	}

	if params == nil {
		p := s.RandomCometParams()
		params = &p
	}
	if err := params.Validate(); err != nil {
		return nil, errorsmod.Wrapf(err, "comet %q", name)
	}

	comet := &Comet{
		Body: Body{
			Name: name,
			Orbit: orbital.Elements{
				SemiMajorAxis: params.OrbitRadius,
				Angle:         randomAngle(s.rng),
			},
			OrbitSpeed: params.Speed,
			Scale:      1,
		},
		ID: uuid.New(),
		Light: Light{
			Color:     params.Color,
			Intensity: params.Intensity,
			Distance:  params.LightDistance,
		},
	}
	comet.Position = orbital.Circular(comet.Orbit.SemiMajorAxis, comet.Orbit.Angle)

	s.Comets = append(s.Comets, comet)
	s.scene.Add(comet)
	s.rebuild()

	return comet, nil
}

func (s *State) cometNameTaken(name string) bool {
	for _, c := range s.Comets {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// RemoveComet removes the comet at index i
func (s *State) RemoveComet(i int) error {
	if i < 0 || i >= len(s.Comets) {
		return errorsmod.Wrapf(ErrNotFound, "comet %d", i)
	}

	s.scene.Remove(s.Comets[i])
	s.Comets = append(s.Comets[:i], s.Comets[i+1:]...)
	s.afterRemoval()
	return nil
}

// AddModel places a decorative model of the given catalog kind at a random
// spot. asset may be nil when the mesh is still loading or failed to load.
func (s *State) AddModel(kind string, asset *assets.Model) (*Model, error) {
	if len(s.Models) >= MaxModels {
		return nil, errorsmod.Wrapf(ErrCapacityExceeded, "at most %d models", MaxModels)
	}
	mk, err := assets.LookupModelKind(kind)
	if err != nil {
		return nil, err
	}

	scale := mk.Scale
	if asset != nil && asset.Scale > 0 {
		scale = asset.Scale
	}

	model := &Model{
		ID:   uuid.New(),
		Name: fmt.Sprintf("%s-%d", mk.Name, s.serial("model/"+mk.Name)),
		Kind: mk.Name,
		Position: astromath.Vector3{
			X: (s.rng.Float64() - 0.5) * 40,
			Y: (s.rng.Float64() - 0.5) * 10,
			Z: (s.rng.Float64() - 0.5) * 40,
		},
		RotationSpeed: astromath.Euler{
			X: (s.rng.Float64() - 0.5) * 0.01,
			Y: (s.rng.Float64() - 0.5) * 0.01,
			Z: (s.rng.Float64() - 0.5) * 0.01,
		},
		Scale: scale,
		Asset: asset,
	}

	s.Models = append(s.Models, model)
	s.scene.Add(model)
	s.rebuild()

	return model, nil
}

// RemoveModel removes the model at index i
func (s *State) RemoveModel(i int) error {
	if i < 0 || i >= len(s.Models) {
		return errorsmod.Wrapf(ErrNotFound, "model %d", i)
	}

	s.scene.Remove(s.Models[i])
	s.Models = append(s.Models[:i], s.Models[i+1:]...)
	s.afterRemoval()
	return nil
}

// Remove dispatches on the selector kind. The sun cannot be removed.
func (s *State) Remove(sel Selector) error {
	switch sel.Kind {
	case KindPlanet:
		return s.RemovePlanet(sel.Index)
	case KindMoon:
		return s.RemoveMoon(sel.Index, sel.Moon)
	case KindComet:
		return s.RemoveComet(sel.Index)
	case KindModel:
		return s.RemoveModel(sel.Index)
	}
	return errorsmod.Wrapf(ErrInvalidSelector, "cannot remove %s", sel)
}

// afterRemoval drops the selection, since positional selectors may now
// point at a different entity, and rebuilds the addressable list.
func (s *State) afterRemoval() {
	s.selected = nil
	s.rebuild()
}

// ApplyTexture dresses the planet at index i
func (s *State) ApplyTexture(i int, tex *assets.Texture) error {
	planet, err := s.Planet(i)
	if err != nil {
		return err
	}
	planet.Texture = tex
	if tex != nil && tex.Fallback {
		planet.Color = tex.Color
	}
	s.rebuild()
	return nil
}

// RemoveTexture strips the planet's texture and restores its base color
func (s *State) RemoveTexture(i int) error {
	planet, err := s.Planet(i)
	if err != nil {
		return err
	}
	planet.Texture = nil
	planet.Color = planet.BaseColor
	s.rebuild()
	return nil
}

// ApplyTextureByID dresses the sun, planet or moon with the given id. Asset
// loads finish after the request was made, so they address entities by id
// rather than by index.
func (s *State) ApplyTextureByID(id uuid.UUID, tex *assets.Texture) error {
	if s.Sun.ID == id {
		s.Sun.Texture = tex
		return nil
	}
	for i, p := range s.Planets {
		if p.ID == id {
			return s.ApplyTexture(i, tex)
		}
		for _, m := range p.Moons {
			if m.ID == id {
				m.Texture = tex
				if tex != nil && tex.Fallback {
					m.Color = tex.Color
				}
				return nil
			}
		}
	}
	return errorsmod.Wrapf(ErrNotFound, "entity %s", id)
}

// AttachModel stores a finished mesh load on the model with the given id
func (s *State) AttachModel(id uuid.UUID, asset *assets.Model) error {
	for _, m := range s.Models {
		if m.ID == id {
			m.Asset = asset
			if asset != nil && asset.Scale > 0 {
				m.Scale = asset.Scale
			}
			return nil
		}
	}
	return errorsmod.Wrapf(ErrNotFound, "model %s", id)
}

// serial returns the next number for generated names in category. Numbers
// are never reused, so a removal cannot make two names collide.
func (s *State) serial(category string) int {
	if s.serials == nil {
		s.serials = make(map[string]int)
	}
	s.serials[category]++
	return s.serials[category]
}
