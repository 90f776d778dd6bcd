package assets

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
)

const codespace = "orrery"

var (
	// ErrLoadFailed marks an asset that was replaced by its fallback
	ErrLoadFailed = errorsmod.Register(codespace, 6, "asset load failed")
	// ErrUnknownKind is returned for a model kind missing from the catalog
	ErrUnknownKind = errorsmod.Register(codespace, 7, "unknown model kind")
)

// ModelKind describes one loadable decorative model
type ModelKind struct {
	Name  string  `json:"name"`
	File  string  `json:"file"`
	Scale float64 `json:"scale"`
	Shape string  `json:"shape"` // fallback primitive
}

// ModelKinds is the catalog of decorative models.
var ModelKinds = map[string]ModelKind{
	"satellite": {Name: "satellite", File: "Satellite.obj", Scale: 0.5, Shape: "box"},
	"rocket":    {Name: "rocket", File: "rocket.obj", Scale: 0.5, Shape: "cone"},
	"spaceman":  {Name: "spaceman", File: "spaceman.obj", Scale: 0.5, Shape: "cylinder"},
	"asteroid":  {Name: "asteroid", File: "asteroid.obj", Scale: 0.4, Shape: "icosahedron"},
	"probe":     {Name: "probe", File: "probe.obj", Scale: 0.2, Shape: "icosahedron"},
}

// LookupModelKind returns the catalog entry for kind
func LookupModelKind(kind string) (ModelKind, error) {
	mk, ok := ModelKinds[kind]
	if !ok {
		return ModelKind{}, errorsmod.Wrapf(ErrUnknownKind, "%q", kind)
	}
	return mk, nil
}

// ModelKindNames returns the catalog keys in sorted order
func ModelKindNames() []string {
	names := make([]string, 0, len(ModelKinds))
	for name := range ModelKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlanetTextures are the textures a new planet may be dressed with
var PlanetTextures = []string{"earth", "mars", "jupiter", "mercury", "moon", "neptune", "venus"}

// SunTexture is applied to the sun
const SunTexture = "sun"

// MoonTexture is the default moon surface
const MoonTexture = "moon"

// fallbackColors fill the procedural texture used when an image is missing
var fallbackColors = map[string]Color{
	"earth":   0x4169E1,
	"mars":    0xCD5C5C,
	"jupiter": 0xD2691E,
	"moon":    0xC0C0C0,
	"sun":     0xFFD700,
	"mercury": 0xBFC7C1,
	"neptune": 0x5E99DB,
	"venus":   0xED802D,
}

const defaultFallbackColor Color = 0x808080
