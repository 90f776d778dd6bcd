package simulation

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/orrery/pkg/assets"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// MinEditRadius is the smallest planar distance a planet may be moved to
const MinEditRadius = 2.0

// CollapsedEccentricity is the eccentricity a planet gets after its position
// was edited
const CollapsedEccentricity = 0.1

// PlanetEdits overwrite a planet's editable fields
type PlanetEdits struct {
	OrbitSpeed float64            `json:"orbit_speed"`
	Scale      float64            `json:"scale"`
	Rotation   astromath.Euler    `json:"rotation"` // radians
	Position   *astromath.Vector3 `json:"position,omitempty"`
}

// SunEdits overwrite the sun's light
type SunEdits struct {
	Intensity float64      `json:"intensity"`
	Color     assets.Color `json:"color"`
}

// Edits is the editor form. Only the part matching the selected entity is
// used.
type Edits struct {
	Planet *PlanetEdits `json:"planet,omitempty"`
	Sun    *SunEdits    `json:"sun,omitempty"`
}

// Select makes sel the only selected entity
func (s *State) Select(sel Selector) error {
	if err := s.resolve(sel); err != nil {
		return err
	}
	s.selected = &sel
	return nil
}

// Deselect clears the selection
func (s *State) Deselect() {
	s.selected = nil
}

// Selected returns the current selection
func (s *State) Selected() (Selector, bool) {
	if s.selected == nil {
		return Selector{}, false
	}
	return *s.selected, true
}

func (s *State) resolve(sel Selector) error {
	switch sel.Kind {
	case KindSun:
		return nil
	case KindPlanet:
		_, err := s.Planet(sel.Index)
		return err
	case KindMoon:
		p, err := s.Planet(sel.Index)
		if err != nil {
			return err
		}
		if sel.Moon < 0 || sel.Moon >= len(p.Moons) {
			return errorsmod.Wrapf(ErrNotFound, "moon %d of planet %q", sel.Moon, p.Name)
		}
		return nil
	case KindComet:
		if sel.Index < 0 || sel.Index >= len(s.Comets) {
			return errorsmod.Wrapf(ErrNotFound, "comet %d", sel.Index)
		}
		return nil
	case KindModel:
		if sel.Index < 0 || sel.Index >= len(s.Models) {
			return errorsmod.Wrapf(ErrNotFound, "model %d", sel.Index)
		}
		return nil
	}
	return errorsmod.Wrapf(ErrInvalidSelector, "kind %d", sel.Kind)
}

// ApplyChanges writes the edits to the selected entity. With nothing
// selected, or with a moon, comet or model selected, it does nothing.
//
// A position edit is destructive: the orbit collapses to a near-circular,
// uninclined orbit through the new point (a = √(x²+z²), θ = atan2(z, x),
// e = 0.1, i = 0) and the previous ellipse is not kept. Positions closer
// than MinEditRadius to the sun, and values outside the Validate bounds, are
// rejected before any field is written.
func (s *State) ApplyChanges(e Edits) error {
	sel, ok := s.Selected()
	if !ok {
		return nil
	}

	switch sel.Kind {
	case KindPlanet:
		if e.Planet == nil {
			return nil
		}
		planet, err := s.Planet(sel.Index)
		if err != nil {
			return err
		}
		return s.editPlanet(planet, *e.Planet)

	case KindSun:
		if e.Sun == nil {
			return nil
		}
		if err := e.Sun.Validate(); err != nil {
			return err
		}
		s.Sun.Light.Intensity = e.Sun.Intensity
		s.Sun.Light.Color = e.Sun.Color
	}
	return nil
}

func (s *State) editPlanet(planet *Planet, e PlanetEdits) error {
	if err := e.Validate(); err != nil {
		return errorsmod.Wrapf(err, "planet %q", planet.Name)
	}
	if e.Position != nil {
		if d := e.Position.PlanarDistance(); d < MinEditRadius {
			return errorsmod.Wrapf(ErrTooCloseToCenter, "distance %.2f below %.1f", d, MinEditRadius)
		}
	}

	planet.OrbitSpeed = e.OrbitSpeed
	planet.Scale = e.Scale
	planet.Rotation = e.Rotation

	if e.Position != nil {
		radius, angle := orbital.FromPosition(*e.Position)
		s.scene.Remove(planet.OrbitPath())
		planet.Orbit = orbital.Elements{
			SemiMajorAxis: radius,
			Eccentricity:  CollapsedEccentricity,
			Inclination:   0,
			Angle:         angle,
		}
		planet.Position = planet.Orbit.Position()
		s.scene.Add(planet.OrbitPath())
	}
	return nil
}

// ResetSelected restores the selected planet's speed from the seed table
// (DefaultOrbitSpeed for planets created later), its scale to 1 and its
// rotation to zero, or the sun's light to its defaults.
func (s *State) ResetSelected() {
	sel, ok := s.Selected()
	if !ok {
		return
	}

	switch sel.Kind {
	case KindPlanet:
		planet, err := s.Planet(sel.Index)
		if err != nil {
			return
		}
		planet.OrbitSpeed = SeedSpeed(planet.Name)
		planet.Scale = 1
		planet.Rotation = astromath.Euler{}

	case KindSun:
		s.Sun.Light.Intensity = DefaultSunIntense
		s.Sun.Light.Color = DefaultSunColor
	}
}
