package controller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/assets"
	"github.com/oxygene76/orrery/pkg/projection"
	"github.com/oxygene76/orrery/pkg/simulation"
	"github.com/oxygene76/orrery/pkg/utils"
)

// Observer is notified about frames, commands and finished asset loads
type Observer interface {
	ObserveFrame(d time.Duration, f *types.Frame)
	ObserveCommand(kind string, err error)
	ObserveAsset(kind string, fallback bool)
}

type nopObserver struct{}

func (nopObserver) ObserveFrame(time.Duration, *types.Frame) {}
func (nopObserver) ObserveCommand(string, error)             {}
func (nopObserver) ObserveAsset(string, bool)                {}

// Options configure a Controller
type Options struct {
	Config   *utils.Config
	Loader   assets.Loader         // no textures or models are loaded when nil
	Scene    simulation.Scene      // optional external renderer
	Time     simulation.TimeSource // SystemTime when nil
	Observer Observer
}

// Controller owns the simulation state, the camera and the projector. All
// of them are only touched from the goroutine that calls Step, Apply or
// Run; other goroutines go through Do.
type Controller struct {
	state    *simulation.State
	camera   *projection.Camera
	proj     *projection.Projector
	viewport projection.Viewport
	scene    *tracker
	move     movement

	loader      assets.Loader
	loadTimeout time.Duration
	results     chan assetResult
	loads       sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	requests chan request
	observer Observer
	interval time.Duration
	verbose  bool

	seq         uint64
	addressable []simulation.Entry
}

type movement struct {
	forward, right, up float64
}

// New builds the initial system and starts loading its textures
func New(opts Options) *Controller {
	cfg := opts.Config
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	scene := newTracker(opts.Scene)
	state := simulation.NewState(simulation.Options{
		Speed:    cfg.Simulation.Speed,
		RandSeed: cfg.Simulation.RandSeed,
		Scene:    scene,
		Time:     opts.Time,
		MaxDelta: cfg.Simulation.MaxDelta,
		Empty:    !cfg.Simulation.SeedPlanets,
	})

	camera := projection.NewCamera()
	camera.FOV = cfg.Camera.FOV
	camera.Near = cfg.Camera.Near
	camera.Far = cfg.Camera.Far
	camera.Speed = cfg.Camera.Speed
	camera.Sensitivity = cfg.Camera.Sensitivity

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		state:       state,
		camera:      camera,
		proj:        projection.NewProjector(),
		viewport:    projection.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		scene:       scene,
		loader:      opts.Loader,
		loadTimeout: cfg.Assets.LoadTimeout,
		results:     make(chan assetResult, 64),
		ctx:         ctx,
		cancel:      cancel,
		requests:    make(chan request),
		observer:    opts.Observer,
		interval:    cfg.FrameInterval(),
		verbose:     cfg.Verbose(),
	}

	c.loadTexture(state.Sun.ID, assets.SunTexture)
	for _, p := range state.Planets {
		c.loadTexture(p.ID, textureFor(p.Name))
	}

	if c.verbose {
		log.Printf("Controller ready: %d planets, speed %.1f, %v per frame", len(state.Planets), state.Speed, c.interval)
	}
	return c
}

// textureFor returns the seed texture of a planet, if any
func textureFor(name string) string {
	for _, sp := range simulation.SeedPlanets {
		if sp.Name == name {
			return sp.Texture
		}
	}
	return ""
}

// State exposes the simulation state to the owning goroutine
func (c *Controller) State() *simulation.State {
	return c.state
}

// Camera exposes the camera to the owning goroutine
func (c *Controller) Camera() *projection.Camera {
	return c.camera
}

// Step applies finished asset loads, advances the simulation by one clock
// frame and returns the resulting Frame.
func (c *Controller) Step() *types.Frame {
	start := time.Now()
	c.applyResults()

	dt := c.state.Frame()
	if dt > 0 {
		c.camera.Translate(c.move.forward, c.move.right, c.move.up, dt)
	}

	f := c.buildFrame(dt, false)
	c.observer.ObserveFrame(time.Since(start), f)
	return f
}

// Snapshot returns a complete frame for a renderer that joins late. It
// leaves the incremental state of the regular frames untouched.
func (c *Controller) Snapshot() *types.Frame {
	return c.buildFrame(0, true)
}

// Run steps the simulation at the configured frame rate and serves Do
// requests between frames until ctx is cancelled.
func (c *Controller) Run(ctx context.Context, publish func(*types.Frame)) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			f := c.Step()
			if publish != nil {
				publish(f)
			}

		case req := <-c.requests:
			payload, err := c.Apply(req.msg)
			req.reply <- response{payload: payload, err: err}
		}
	}
}

// Close cancels outstanding asset loads and waits for them
func (c *Controller) Close() {
	c.cancel()
	c.loads.Wait()
}

func (c *Controller) buildFrame(dt float64, full bool) *types.Frame {
	s := c.state
	ms := s.Clock.ElapsedMillis()
	if !full {
		c.seq++
	}

	f := &types.Frame{
		Seq:       c.seq,
		ElapsedMS: ms,
		Delta:     dt,
		Speed:     s.Speed,
		Paused:    s.Clock.Paused(),
		Camera: types.CameraView{
			Position: c.camera.Position,
			Pitch:    c.camera.Pitch,
			Yaw:      c.camera.Yaw,
		},
	}
	if sel, ok := s.Selected(); ok {
		f.Selected = sel.String()
	}

	counters := s.Counters()
	f.Counters = types.CountersView{
		Planets:        counters.Planets,
		Moons:          counters.Moons,
		Comets:         counters.Comets,
		Models:         counters.Models,
		MaxOrbitRadius: counters.MaxOrbitRadius,
	}

	f.Entities = append(f.Entities, types.EntityView{
		ID:        simulation.SunSelector().String(),
		UUID:      s.Sun.ID.String(),
		Kind:      simulation.KindSun.String(),
		Name:      s.Sun.Name,
		Rotation:  s.Sun.Rotation,
		Scale:     1,
		Radius:    s.Sun.Radius,
		Color:     s.Sun.Light.Color.Hex(),
		Texture:   textureName(s.Sun.Texture),
		Fallback:  s.Sun.Texture != nil && s.Sun.Texture.Fallback,
		Intensity: s.Sun.Light.Intensity,
		Reach:     s.Sun.Light.Distance,
	})

	var dirty map[uuid.UUID]bool
	if !full {
		dirty = c.scene.takeDirty()
	}
	c.proj.Prepare(c.camera, c.viewport)

	for i, p := range s.Planets {
		id := simulation.PlanetSelector(i).String()
		f.Entities = append(f.Entities, types.EntityView{
			ID:       id,
			UUID:     p.ID.String(),
			Kind:     simulation.KindPlanet.String(),
			Name:     p.Name,
			Position: p.Position,
			Rotation: p.Rotation,
			Scale:    p.Scale,
			Radius:   p.Radius,
			Color:    p.Color.Hex(),
			Texture:  textureName(p.Texture),
			Fallback: p.Texture != nil && p.Texture.Fallback,
		})

		path := p.OrbitPath()
		orbit := types.OrbitView{Planet: p.ID.String(), Opacity: path.Opacity(ms)}
		if full || dirty[p.ID] {
			orbit.Points = path.Points
		}
		f.Orbits = append(f.Orbits, orbit)

		// labels sit above the unscaled sphere
		label := c.proj.ProjectPrepared(projection.Anchor(p.Position, p.Radius), c.viewport)
		f.Labels = append(f.Labels, types.LabelView{
			ID:      id,
			Name:    p.Name,
			X:       label.X,
			Y:       label.Y,
			Depth:   label.Depth,
			Visible: label.Visible,
		})

		for j, m := range p.Moons {
			f.Entities = append(f.Entities, types.EntityView{
				ID:       simulation.MoonSelector(i, j).String(),
				UUID:     m.ID.String(),
				Kind:     simulation.KindMoon.String(),
				Name:     m.Name,
				Parent:   p.ID.String(),
				Position: m.Position,
				Rotation: m.Rotation,
				Scale:    1,
				Radius:   m.Size,
				Color:    m.Color.Hex(),
				Texture:  textureName(m.Texture),
				Fallback: m.Texture != nil && m.Texture.Fallback,
			})
		}
	}

	for i, cm := range s.Comets {
		f.Entities = append(f.Entities, types.EntityView{
			ID:        simulation.CometSelector(i).String(),
			UUID:      cm.ID.String(),
			Kind:      simulation.KindComet.String(),
			Name:      cm.Name,
			Position:  cm.Position,
			Rotation:  cm.Rotation,
			Scale:     cm.Scale,
			Radius:    simulation.CometRadius,
			Color:     cm.Light.Color.Hex(),
			Intensity: cm.PulsedIntensity(ms),
			Reach:     cm.Light.Distance,
		})
	}

	for i, m := range s.Models {
		view := types.EntityView{
			ID:       simulation.ModelSelector(i).String(),
			UUID:     m.ID.String(),
			Kind:     simulation.KindModel.String(),
			Name:     m.Name,
			Position: m.Position,
			Rotation: m.Rotation,
			Scale:    m.Scale,
		}
		if m.Asset != nil {
			view.Texture = m.Asset.Path
			view.Fallback = m.Asset.Fallback
		}
		f.Entities = append(f.Entities, view)
	}

	list := s.Addressable()
	if full || !sameEntries(list, c.addressable) {
		for _, e := range list {
			f.Addressable = append(f.Addressable, types.EntryView{ID: e.Selector.String(), Label: e.Label})
		}
		if !full {
			c.addressable = list
		}
	}

	return f
}

func textureName(t *assets.Texture) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func sameEntries(a, b []simulation.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// tracker is the Scene handed to the state. It remembers which orbit lines
// were (re)created since the last frame and forwards to an external scene.
type tracker struct {
	next  simulation.Scene
	dirty map[uuid.UUID]bool
}

func newTracker(next simulation.Scene) *tracker {
	if next == nil {
		next = simulation.NopScene{}
	}
	return &tracker{next: next, dirty: make(map[uuid.UUID]bool)}
}

func (t *tracker) Add(e simulation.Entity) {
	if path, ok := e.(*simulation.OrbitPath); ok {
		t.dirty[path.Planet] = true
	}
	t.next.Add(e)
}

func (t *tracker) Remove(e simulation.Entity) {
	if path, ok := e.(*simulation.OrbitPath); ok {
		delete(t.dirty, path.Planet)
	}
	t.next.Remove(e)
}

func (t *tracker) takeDirty() map[uuid.UUID]bool {
	d := t.dirty
	t.dirty = make(map[uuid.UUID]bool)
	return d
}
