package simulation

import (
	"math"

	"github.com/google/uuid"

	"github.com/oxygene76/orrery/pkg/assets"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// Registry limits
const (
	MaxPlanets        = 10
	MaxMoonsPerPlanet = 3
	MaxComets         = 5
	MaxModels         = 5
)

// Entity is anything the scene collaborator can add or remove.
type Entity interface {
	EntityID() uuid.UUID
	EntityName() string
}

// Body is the state shared by planets and comets.
type Body struct {
	Name          string            `json:"name"`
	Orbit         orbital.Elements  `json:"orbit"`
	OrbitSpeed    float64           `json:"orbit_speed"`    // degrees per second at global speed 1
	Rotation      astromath.Euler   `json:"rotation"`       // radians
	RotationSpeed float64           `json:"rotation_speed"` // radians per frame, not scaled by global speed
	Scale         float64           `json:"scale"`
	Position      astromath.Vector3 `json:"position"` // derived every tick
}

// advance moves the body along its orbit and spins it about Y.
func (b *Body) advance(globalSpeed, dt float64) {
	b.Orbit.Advance(orbital.AngularStep(b.OrbitSpeed, globalSpeed, dt))
	b.Position = b.Orbit.Position()
	b.Rotation.Y = orbital.WrapAngle(b.Rotation.Y + b.RotationSpeed)
}

// Planet orbits the sun on a tilted ellipse and owns up to three moons.
type Planet struct {
	Body
	ID         uuid.UUID       `json:"id"`
	Radius     float64         `json:"radius"`
	BaseColor  assets.Color    `json:"base_color"`
	Color      assets.Color    `json:"color"`
	Texture    *assets.Texture `json:"texture,omitempty"`
	OrbitPulse float64         `json:"orbit_pulse"` // orbit line opacity pulse rate
	Moons      []*Moon         `json:"moons"`
}

func (p *Planet) EntityID() uuid.UUID { return p.ID }
func (p *Planet) EntityName() string  { return p.Name }

// SurfaceRadius is the rendered radius including scale
func (p *Planet) SurfaceRadius() float64 {
	return p.Radius * p.Scale
}

// OrbitPath returns the derived orbit line of the planet
func (p *Planet) OrbitPath() *OrbitPath {
	return &OrbitPath{
		Planet: p.ID,
		Name:   "orbit-" + p.Name,
		Points: p.Orbit.Sample(orbital.DefaultSegments),
		Pulse:  p.OrbitPulse,
	}
}

// Moon circles its parent planet's current position.
type Moon struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Parent        uuid.UUID         `json:"parent"` // handle into the planet collection
	Size          float64           `json:"size"`
	OrbitRadius   float64           `json:"orbit_radius"`
	OrbitSpeed    float64           `json:"orbit_speed"`
	Angle         float64           `json:"angle"`
	RotationSpeed float64           `json:"rotation_speed"`
	Rotation      astromath.Euler   `json:"rotation"`
	Position      astromath.Vector3 `json:"position"`
	Color         assets.Color      `json:"color"`
	Texture       *assets.Texture   `json:"texture,omitempty"`
}

func (m *Moon) EntityID() uuid.UUID { return m.ID }
func (m *Moon) EntityName() string  { return m.Name }

// advance must run after the parent's position was updated this tick.
func (m *Moon) advance(center astromath.Vector3, globalSpeed, dt float64) {
	m.Angle = orbital.WrapAngle(m.Angle + orbital.AngularStep(m.OrbitSpeed, globalSpeed, dt))
	m.Position = center.Add(orbital.Circular(m.OrbitRadius, m.Angle))
	m.Rotation.Y = orbital.WrapAngle(m.Rotation.Y + m.RotationSpeed)
}

// Light is a point light descriptor
type Light struct {
	Color     assets.Color `json:"color"`
	Intensity float64      `json:"intensity"`
	Distance  float64      `json:"distance"`
}

// CometRadius is the size of a comet's nucleus
const CometRadius = 0.1

// Comet travels a flat circular orbit and carries a pulsing light.
type Comet struct {
	Body
	ID    uuid.UUID `json:"id"`
	Light Light     `json:"light"`
}

func (c *Comet) EntityID() uuid.UUID { return c.ID }
func (c *Comet) EntityName() string  { return c.Name }

// PulsedIntensity is the light intensity at the given clock time in
// milliseconds. It is derived on demand and never stored.
func (c *Comet) PulsedIntensity(ms float64) float64 {
	return c.Light.Intensity * (0.8 + 0.4*math.Sin(ms*0.005))
}

// Model is a static decorative mesh spinning in place.
type Model struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Kind          string            `json:"kind"`
	Position      astromath.Vector3 `json:"position"`
	Rotation      astromath.Euler   `json:"rotation"`
	RotationSpeed astromath.Euler   `json:"rotation_speed"` // radians per frame per axis
	Scale         float64           `json:"scale"`
	Asset         *assets.Model     `json:"asset,omitempty"`
}

func (m *Model) EntityID() uuid.UUID { return m.ID }
func (m *Model) EntityName() string  { return m.Name }

func (m *Model) advance() {
	m.Rotation = astromath.Euler{
		X: orbital.WrapAngle(m.Rotation.X + m.RotationSpeed.X),
		Y: orbital.WrapAngle(m.Rotation.Y + m.RotationSpeed.Y),
		Z: orbital.WrapAngle(m.Rotation.Z + m.RotationSpeed.Z),
	}
}

// Sun defaults
const (
	SunRadius         = 2.0
	SunSpin           = 0.02 // radians per frame
	DefaultSunColor   = assets.Color(0xFFFFAA)
	DefaultSunIntense = 2.0
	DefaultSunReach   = 100.0
)

// Sun sits at the origin and lights the scene.
type Sun struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Radius   float64         `json:"radius"`
	Light    Light           `json:"light"`
	Rotation astromath.Euler `json:"rotation"`
	Texture  *assets.Texture `json:"texture,omitempty"`
}

func (s *Sun) EntityID() uuid.UUID { return s.ID }
func (s *Sun) EntityName() string  { return s.Name }

func newSun() *Sun {
	return &Sun{
		ID:     uuid.New(),
		Name:   "Sun",
		Radius: SunRadius,
		Light:  Light{Color: DefaultSunColor, Intensity: DefaultSunIntense, Distance: DefaultSunReach},
	}
}

// OrbitPath is the derived orbit line of a planet. It is recomputed from the
// planet's elements and never edited on its own.
type OrbitPath struct {
	Planet uuid.UUID           `json:"planet"`
	Name   string              `json:"name"`
	Points []astromath.Vector3 `json:"points"`
	Pulse  float64             `json:"pulse"`
}

// EntityID is derived from the planet id, so the same planet always
// yields the same orbit line id.
func (o *OrbitPath) EntityID() uuid.UUID { return uuid.NewSHA1(o.Planet, []byte("orbit")) }
func (o *OrbitPath) EntityName() string  { return o.Name }

// Opacity is the pulsing line opacity at the given clock time in milliseconds
func (o *OrbitPath) Opacity(ms float64) float64 {
	return 0.6 * (math.Sin(ms*o.Pulse*0.001)*0.3 + 0.7)
}
