// Package shader holds the named, time-varying parameter bundles that
// drive the visual appearance of the cable, node halos, sparks, fog and
// selection aura. Bundles are plain data consumed opaquely by the
// rendering host; this package issues no rendering calls.
package shader

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
)

// Bundle is one named shader parameter set. The Set pushes the shared time
// value into Time each tick; everything else changes rarely.
type Bundle struct {
	Name string

	Time      float32
	Intensity float32

	PulseSpeed float32
	PulseWidth float32
	BloomPower float32

	// Up to three gradient color stops
	Gradient [3]rl.Color

	FogDensity float32
	FogRange   float32
}

// Clock is the single shared time base. The render-loop driver owns one
// clock and advances it exactly once per tick; every registered bundle
// reads the same value, keeping pulse and glow animations in phase.
type Clock struct {
	time float64
}

// NewClock creates a clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Advance moves the clock forward by dt seconds.
func (c *Clock) Advance(dt float64) {
	c.time += dt
}

// Time returns the accumulated time in seconds.
func (c *Clock) Time() float64 {
	return c.time
}

// Set distributes the shared clock into every registered bundle.
type Set struct {
	clock   *Clock
	bundles []*Bundle
}

// NewSet creates a parameter set bound to the given clock.
func NewSet(clock *Clock) *Set {
	return &Set{clock: clock}
}

// Register adds a bundle. Registering the same bundle twice is a no-op.
func (s *Set) Register(b *Bundle) {
	for _, existing := range s.bundles {
		if existing == b {
			return
		}
	}
	s.bundles = append(s.bundles, b)
	b.Time = float32(s.clock.Time())
}

// Unregister removes a bundle; its fields are left untouched.
func (s *Set) Unregister(b *Bundle) {
	for i, existing := range s.bundles {
		if existing == b {
			s.bundles = append(s.bundles[:i], s.bundles[i+1:]...)
			return
		}
	}
}

// Tick advances the shared clock by dt and pushes the new time value into
// every registered bundle. No other computation happens here.
func (s *Set) Tick(dt float64) {
	s.clock.Advance(dt)
	t := float32(s.clock.Time())
	for _, b := range s.bundles {
		b.Time = t
	}
}

// Dispose clears all registrations without side effects on the bundles.
func (s *Set) Dispose() {
	s.bundles = nil
}

// Len returns the number of registered bundles.
func (s *Set) Len() int {
	return len(s.bundles)
}

// Stock bundle constructors. Gradients follow the default spark palette
// temperature ordering: hot core, mid, cool edge.

// NewCablePulse parameterizes the backbone cable's traveling pulse.
func NewCablePulse(cfg config.ShaderConfig) *Bundle {
	return &Bundle{
		Name:       "cable_pulse",
		Intensity:  1,
		PulseSpeed: float32(cfg.PulseSpeed),
		PulseWidth: float32(cfg.PulseWidth),
		BloomPower: float32(cfg.BloomPower),
		Gradient: [3]rl.Color{
			{R: 255, G: 240, B: 200, A: 255},
			{R: 255, G: 170, B: 64, A: 255},
			{R: 140, G: 60, B: 20, A: 255},
		},
	}
}

// NewNodeHalo parameterizes the glow around placed content nodes.
func NewNodeHalo(cfg config.ShaderConfig) *Bundle {
	return &Bundle{
		Name:       "node_halo",
		Intensity:  1,
		PulseSpeed: float32(cfg.PulseSpeed * 0.5),
		PulseWidth: float32(cfg.PulseWidth * 2),
		BloomPower: float32(cfg.BloomPower),
		Gradient: [3]rl.Color{
			{R: 120, G: 200, B: 255, A: 255},
			{R: 60, G: 120, B: 220, A: 255},
			{R: 20, G: 40, B: 90, A: 255},
		},
	}
}

// NewSparkGlow parameterizes spark point sprites.
func NewSparkGlow(cfg config.ShaderConfig) *Bundle {
	return &Bundle{
		Name:       "spark_glow",
		Intensity:  1,
		PulseSpeed: float32(cfg.PulseSpeed * 2),
		PulseWidth: float32(cfg.PulseWidth),
		BloomPower: float32(cfg.BloomPower * 1.5),
		Gradient: [3]rl.Color{
			{R: 255, G: 255, B: 240, A: 255},
			{R: 255, G: 196, B: 64, A: 255},
			{R: 255, G: 120, B: 48, A: 255},
		},
	}
}

// NewFogVolume parameterizes the depth fog.
func NewFogVolume(cfg config.ShaderConfig) *Bundle {
	return &Bundle{
		Name:       "fog_volume",
		Intensity:  1,
		FogDensity: float32(cfg.FogDensity),
		FogRange:   float32(cfg.FogRange),
		Gradient: [3]rl.Color{
			{R: 8, G: 10, B: 18, A: 255},
			{R: 14, G: 18, B: 32, A: 255},
			{R: 24, G: 28, B: 48, A: 255},
		},
	}
}

// NewSelectionAura parameterizes the aura around the selected node.
func NewSelectionAura(cfg config.ShaderConfig) *Bundle {
	return &Bundle{
		Name:       "selection_aura",
		Intensity:  1,
		PulseSpeed: float32(cfg.PulseSpeed * 1.25),
		PulseWidth: float32(cfg.PulseWidth * 0.5),
		BloomPower: float32(cfg.BloomPower * 2),
		Gradient: [3]rl.Color{
			{R: 190, G: 120, B: 255, A: 255},
			{R: 120, G: 60, B: 220, A: 255},
			{R: 50, G: 20, B: 110, A: 255},
		},
	}
}
