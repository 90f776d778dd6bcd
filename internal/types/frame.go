package types

import (
	"encoding/json"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// Message types on the websocket
const (
	MessageFrame = "frame"
	MessageError = "error"
	MessageAck   = "ack"
)

// Message is the envelope of every websocket message in both directions
type Message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"` // echoed in the reply
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload reports a rejected command
type ErrorPayload struct {
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
	Message   string `json:"message"`
}

// EntityView is the renderable state of one entity
type EntityView struct {
	ID        string            `json:"id"`   // addressable id, e.g. planet-0
	UUID      string            `json:"uuid"` // stable across removals
	Kind      string            `json:"kind"`
	Name      string            `json:"name"`
	Parent    string            `json:"parent,omitempty"`
	Position  astromath.Vector3 `json:"position"`
	Rotation  astromath.Vector3 `json:"rotation"`
	Scale     float64           `json:"scale"`
	Radius    float64           `json:"radius"`
	Color     string            `json:"color"`
	Texture   string            `json:"texture,omitempty"`
	Fallback  bool              `json:"fallback,omitempty"`
	Intensity float64           `json:"intensity,omitempty"` // effective light intensity
	Reach     float64           `json:"reach,omitempty"`     // light distance
}

// OrbitView is a planet's orbit line. Points are only sent when the line
// changed since the previous frame.
type OrbitView struct {
	Planet  string              `json:"planet"`
	Opacity float64             `json:"opacity"`
	Points  []astromath.Vector3 `json:"points,omitempty"`
}

// LabelView places one planet label on screen
type LabelView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Depth   float64 `json:"depth"`
	Visible bool    `json:"visible"`
}

// CameraView is the camera pose for display
type CameraView struct {
	Position astromath.Vector3 `json:"position"`
	Pitch    float64           `json:"pitch"`
	Yaw      float64           `json:"yaw"`
}

// CountersView mirrors the registry counters
type CountersView struct {
	Planets        int     `json:"planets"`
	Moons          int     `json:"moons"`
	Comets         int     `json:"comets"`
	Models         int     `json:"models"`
	MaxOrbitRadius float64 `json:"max_orbit_radius"`
}

// EntryView is one line of the selection list
type EntryView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Frame is everything a renderer and overlay need for one frame
type Frame struct {
	Seq         uint64       `json:"seq"`
	ElapsedMS   float64      `json:"elapsed_ms"`
	Delta       float64      `json:"delta"`
	Speed       float64      `json:"speed"`
	Paused      bool         `json:"paused"`
	Selected    string       `json:"selected,omitempty"`
	Entities    []EntityView `json:"entities"`
	Orbits      []OrbitView  `json:"orbits"`
	Labels      []LabelView  `json:"labels"`
	Camera      CameraView   `json:"camera"`
	Counters    CountersView `json:"counters"`
	Addressable []EntryView  `json:"addressable,omitempty"` // only when it changed
}
