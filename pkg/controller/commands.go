package controller

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/assets"
	"github.com/oxygene76/orrery/pkg/simulation"
)

var (
	// ErrUnknownCommand is returned for a message type with no handler
	ErrUnknownCommand = errorsmod.Register(simulation.Codespace, 9, "unknown command")
	// ErrInvalidPayload is returned when a command payload cannot be decoded
	// or holds an out-of-range value
	ErrInvalidPayload = errorsmod.Register(simulation.Codespace, 10, "invalid payload")
)

// Command names
const (
	CmdSnapshot      = "snapshot"
	CmdAddPlanet     = "add_planet"
	CmdAddMoon       = "add_moon"
	CmdAddComet      = "add_comet"
	CmdAddModel      = "add_model"
	CmdRemove        = "remove"
	CmdSelect        = "select"
	CmdDeselect      = "deselect"
	CmdApplyChanges  = "apply_changes"
	CmdResetSelected = "reset_selected"
	CmdApplyTexture  = "apply_texture"
	CmdRemoveTexture = "remove_texture"
	CmdPause         = "pause"
	CmdResume        = "resume"
	CmdToggle        = "toggle"
	CmdReset         = "reset"
	CmdSpeed         = "speed"
	CmdCameraMove    = "camera_move"
	CmdCameraLook    = "camera_look"
	CmdCameraReset   = "camera_reset"
)

// AddPlanet creates a planet; nil Params draws random ones
type AddPlanet struct {
	Name   string                   `json:"name"`
	Params *simulation.PlanetParams `json:"params,omitempty"`
}

// AddMoon attaches a moon to Planet, a planet id such as "planet-2"
type AddMoon struct {
	Planet string  `json:"planet"`
	Name   string  `json:"name"`
	Size   float64 `json:"size"`
}

// AddComet creates a comet; nil Params draws random ones
type AddComet struct {
	Name   string                  `json:"name"`
	Params *simulation.CometParams `json:"params,omitempty"`
}

// AddModel spawns a decorative model of a catalog kind
type AddModel struct {
	Kind string `json:"kind"`
}

// Target names one addressable entity
type Target struct {
	ID string `json:"id"`
}

// ApplyTexture dresses a planet with a named texture
type ApplyTexture struct {
	Planet  string `json:"planet"`
	Texture string `json:"texture"`
}

// Speed sets the global speed multiplier
type Speed struct {
	Speed float64 `json:"speed"`
}

// CameraMove sets the held movement keys as direction weights in [-1, 1].
// The camera keeps moving until the weights are set back to zero.
type CameraMove struct {
	Forward float64 `json:"forward"`
	Right   float64 `json:"right"`
	Up      float64 `json:"up"`
}

// CameraLook is a mouse movement in pixels
type CameraLook struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Created is the reply to a successful add
type Created struct {
	ID   string `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type request struct {
	msg   types.Message
	reply chan response
}

type response struct {
	payload any
	err     error
}

// Do hands msg to the goroutine running Run and waits for the result
func (c *Controller) Do(ctx context.Context, msg types.Message) (any, error) {
	req := request{msg: msg, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Apply executes one command on the calling goroutine, which must own the
// controller. Rejections are the registered simulation errors; values out
// of range are reported as ErrInvalidPayload.
func (c *Controller) Apply(msg types.Message) (any, error) {
	payload, err := c.apply(msg)
	if errors.Is(err, simulation.ErrOutOfRange) {
		err = errorsmod.Wrap(ErrInvalidPayload, err.Error())
	}
	c.observer.ObserveCommand(msg.Type, err)
	return payload, err
}

func (c *Controller) apply(msg types.Message) (any, error) {
	s := c.state

	switch msg.Type {
	case CmdSnapshot:
		return c.Snapshot(), nil

	case CmdAddPlanet:
		var cmd AddPlanet
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		if cmd.Params == nil {
			p := s.RandomPlanetParams()
			cmd.Params = &p
		}
		planet, err := s.AddPlanet(cmd.Name, cmd.Params)
		if err != nil {
			return nil, err
		}
		c.loadTexture(planet.ID, cmd.Params.Texture)
		return created(simulation.PlanetSelector(len(s.Planets)-1), planet), nil

	case CmdAddMoon:
		var cmd AddMoon
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		idx, err := planetIndex(cmd.Planet)
		if err != nil {
			return nil, err
		}
		moon, err := s.AddMoon(idx, cmd.Name, cmd.Size, nil)
		if err != nil {
			return nil, err
		}
		c.loadTexture(moon.ID, assets.MoonTexture)
		return created(simulation.MoonSelector(idx, len(s.Planets[idx].Moons)-1), moon), nil

	case CmdAddComet:
		var cmd AddComet
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		comet, err := s.AddComet(cmd.Name, cmd.Params)
		if err != nil {
			return nil, err
		}
		return created(simulation.CometSelector(len(s.Comets)-1), comet), nil

	case CmdAddModel:
		var cmd AddModel
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		model, err := s.AddModel(cmd.Kind, nil)
		if err != nil {
			return nil, err
		}
		c.loadModel(model.ID, model.Kind)
		return created(simulation.ModelSelector(len(s.Models)-1), model), nil

	case CmdRemove:
		sel, err := decodeTarget(msg)
		if err != nil {
			return nil, err
		}
		return nil, s.Remove(sel)

	case CmdSelect:
		sel, err := decodeTarget(msg)
		if err != nil {
			return nil, err
		}
		return nil, s.Select(sel)

	case CmdDeselect:
		s.Deselect()
		return nil, nil

	case CmdApplyChanges:
		var edits simulation.Edits
		if err := decode(msg, &edits); err != nil {
			return nil, err
		}
		return nil, s.ApplyChanges(edits)

	case CmdResetSelected:
		s.ResetSelected()
		return nil, nil

	case CmdApplyTexture:
		var cmd ApplyTexture
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		idx, err := planetIndex(cmd.Planet)
		if err != nil {
			return nil, err
		}
		planet, err := s.Planet(idx)
		if err != nil {
			return nil, err
		}
		if cmd.Texture == "" {
			return nil, errorsmod.Wrap(ErrInvalidPayload, "texture name required")
		}
		c.loadTexture(planet.ID, cmd.Texture)
		return nil, nil

	case CmdRemoveTexture:
		var cmd Target
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		idx, err := planetIndex(cmd.ID)
		if err != nil {
			return nil, err
		}
		return nil, s.RemoveTexture(idx)

	case CmdPause:
		s.Clock.Pause()
		return nil, nil

	case CmdResume:
		s.Clock.Resume()
		return nil, nil

	case CmdToggle:
		return s.Clock.Toggle().String(), nil

	case CmdReset:
		s.Reset()
		c.camera.Reset()
		c.move = movement{}
		return nil, nil

	case CmdSpeed:
		var cmd Speed
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		return nil, s.SetSpeed(cmd.Speed)

	case CmdCameraMove:
		var cmd CameraMove
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		c.move = movement{
			forward: clampUnit(cmd.Forward),
			right:   clampUnit(cmd.Right),
			up:      clampUnit(cmd.Up),
		}
		return nil, nil

	case CmdCameraLook:
		var cmd CameraLook
		if err := decode(msg, &cmd); err != nil {
			return nil, err
		}
		c.camera.Look(cmd.DX, cmd.DY)
		return nil, nil

	case CmdCameraReset:
		c.camera.Reset()
		return nil, nil
	}

	return nil, errorsmod.Wrapf(ErrUnknownCommand, "%q", msg.Type)
}

func decode(msg types.Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return errorsmod.Wrapf(ErrInvalidPayload, "%s: %v", msg.Type, err)
	}
	return nil
}

func decodeTarget(msg types.Message) (simulation.Selector, error) {
	var t Target
	if err := decode(msg, &t); err != nil {
		return simulation.Selector{}, err
	}
	return simulation.ParseSelector(t.ID)
}

func planetIndex(id string) (int, error) {
	sel, err := simulation.ParseSelector(id)
	if err != nil {
		return 0, err
	}
	if sel.Kind != simulation.KindPlanet {
		return 0, errorsmod.Wrapf(simulation.ErrInvalidSelector, "%q is not a planet", id)
	}
	return sel.Index, nil
}

func created(sel simulation.Selector, e simulation.Entity) Created {
	return Created{ID: sel.String(), UUID: e.EntityID().String(), Name: e.EntityName()}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
