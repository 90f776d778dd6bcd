package types

import (
	"time"
)

// BodyElements is the input row of an orbit analysis
type BodyElements struct {
	Name           string  `json:"name"`
	SemiMajorAxis  float64 `json:"semi_major_axis"`
	Eccentricity   float64 `json:"eccentricity"`
	InclinationDeg float64 `json:"inclination_deg"`
	Speed          float64 `json:"speed"`  // degrees per second at global speed 1
	Radius         float64 `json:"radius"` // body radius
}

// BodySummary holds the derived quantities of one orbit
type BodySummary struct {
	Name       string  `json:"name"`
	Perihelion float64 `json:"perihelion"`
	Aphelion   float64 `json:"aphelion"`
	PeriodSec  float64 `json:"period_sec"` // one revolution at the report's global speed
	SpacingTo  float64 `json:"spacing_to_next,omitempty"`
	Ratio      float64 `json:"ratio_to_next,omitempty"`
}

// Distribution is a descriptive summary of one quantity
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// OrbitReport is the result of analysing a set of orbits
type OrbitReport struct {
	GlobalSpeed   float64        `json:"global_speed"`
	Bodies        []BodySummary  `json:"bodies"`
	SemiMajorAxis Distribution   `json:"semi_major_axis"`
	Eccentricity  Distribution   `json:"eccentricity"`
	Inclination   Distribution   `json:"inclination_deg"`
	Period        Distribution   `json:"period_sec"`
	SpacingRatio  Distribution   `json:"spacing_ratio"`
	Crossings     []OrbitOverlap `json:"crossings,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// OrbitOverlap flags two orbits whose radial bands intersect
type OrbitOverlap struct {
	Inner string  `json:"inner"`
	Outer string  `json:"outer"`
	Depth float64 `json:"depth"` // inner aphelion minus outer perihelion
}

// TrackReport summarises recorded motion per entity
type TrackReport struct {
	Frames   int          `json:"frames"`
	Duration float64      `json:"duration_sec"`
	Tracks   []TrackStats `json:"tracks"`
}

// TrackStats is the distance-from-origin summary of one recorded entity
type TrackStats struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Samples  int          `json:"samples"`
	Distance Distribution `json:"distance"`
	Height   Distribution `json:"height"`
}
