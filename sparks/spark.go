// Package sparks manages the pooled particle field: short-lived visual
// events emitted along golden-angle sub-spirals, their decaying trails and
// the flat per-frame buffers handed to the rendering host.
package sparks

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// TrailPoint is a decaying historical sample of a spark's past position,
// rendered as a fading afterimage.
type TrailPoint struct {
	Position rl.Vector3
	Color    rl.Color
	Opacity  float32
	Size     float32
	Life     float32

	born uint64 // frame stamp, oldest-first eviction under the global cap
}

// Spark is a single pooled, time-limited particle. Sparks live in a
// fixed-capacity pool owned by the Field; external code never mutates one
// directly.
type Spark struct {
	Origin   rl.Vector3
	Position rl.Vector3
	Velocity rl.Vector3
	Color    rl.Color
	Size     float32

	Life    float32 // elapsed seconds, <= MaxLife while active
	MaxLife float32

	SpiralAngle  float32 // phase of the per-spark mini spiral
	SpiralRadius float32

	// Importance scales size and opacity, in [0,1].
	Importance float32

	Active bool

	trail []TrailPoint
	label Label
	seq   uint64 // emission order, drives FIFO forced recycling
}

// LifeRatio returns elapsed life normalized to [0,1].
func (s *Spark) LifeRatio() float32 {
	if s.MaxLife <= 0 {
		return 1
	}
	r := s.Life / s.MaxLife
	if r > 1 {
		return 1
	}
	return r
}

// Trail returns the spark's trail buffer, oldest point first.
func (s *Spark) Trail() []TrailPoint {
	return s.trail
}

// defaultPalette is drawn from when an emission supplies no color.
var defaultPalette = []rl.Color{
	{R: 255, G: 196, B: 64, A: 255},  // amber
	{R: 255, G: 120, B: 48, A: 255},  // ember
	{R: 120, G: 200, B: 255, A: 255}, // ice blue
	{R: 190, G: 120, B: 255, A: 255}, // violet
	{R: 255, G: 240, B: 200, A: 255}, // warm white
}
