package simulation

import (
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Kind tags a Selector
type Kind int

const (
	KindSun Kind = iota
	KindPlanet
	KindMoon
	KindComet
	KindModel
)

var kindNames = map[Kind]string{
	KindSun:    "sun",
	KindPlanet: "planet",
	KindMoon:   "moon",
	KindComet:  "comet",
	KindModel:  "model",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Selector addresses one selectable entity. Index is the planet, comet or
// model index; Moon is the moon index and only meaningful for KindMoon.
//
// Selectors are positional: they are valid until the next removal.
type Selector struct {
	Kind  Kind
	Index int
	Moon  int
}

func SunSelector() Selector              { return Selector{Kind: KindSun} }
func PlanetSelector(i int) Selector      { return Selector{Kind: KindPlanet, Index: i} }
func MoonSelector(planet, m int) Selector { return Selector{Kind: KindMoon, Index: planet, Moon: m} }
func CometSelector(i int) Selector       { return Selector{Kind: KindComet, Index: i} }
func ModelSelector(i int) Selector       { return Selector{Kind: KindModel, Index: i} }

// String renders the UI identifier: "sun", "planet-0", "moon-0-1", ...
func (s Selector) String() string {
	switch s.Kind {
	case KindSun:
		return "sun"
	case KindMoon:
		return fmt.Sprintf("moon-%d-%d", s.Index, s.Moon)
	default:
		return fmt.Sprintf("%s-%d", s.Kind, s.Index)
	}
}

// MarshalText lets selectors travel as their UI identifier
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a UI identifier
func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSelector resolves a UI identifier into a typed Selector once, at
// the boundary. It does not check that the entity exists.
func ParseSelector(id string) (Selector, error) {
	if id == "sun" {
		return SunSelector(), nil
	}

	parts := strings.Split(id, "-")
	indices := make([]int, 0, 2)
	for _, part := range parts[1:] {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Selector{}, errorsmod.Wrapf(ErrInvalidSelector, "%q", id)
		}
		indices = append(indices, n)
	}

	switch {
	case parts[0] == "planet" && len(indices) == 1:
		return PlanetSelector(indices[0]), nil
	case parts[0] == "moon" && len(indices) == 2:
		return MoonSelector(indices[0], indices[1]), nil
	case parts[0] == "comet" && len(indices) == 1:
		return CometSelector(indices[0]), nil
	case parts[0] == "model" && len(indices) == 1:
		return ModelSelector(indices[0]), nil
	}
	return Selector{}, errorsmod.Wrapf(ErrInvalidSelector, "%q", id)
}

// Entry is one line of the addressable list
type Entry struct {
	Selector Selector `json:"id"`
	Label    string   `json:"label"`
}
