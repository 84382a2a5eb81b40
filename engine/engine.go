// Package engine drives the spiral scene: it owns the curve field, the
// spark field, the shader parameter set and the telemetry collectors,
// and advances them in a fixed order every tick. Rendering and input
// live here too, behind a headless switch, so the simulation core stays
// free of raylib calls beyond vector math.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/helix/camera"
	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/curve"
	"github.com/pthm-cable/helix/scene"
	"github.com/pthm-cable/helix/shader"
	"github.com/pthm-cable/helix/sparks"
	"github.com/pthm-cable/helix/telemetry"
)

// Options holds engine startup settings.
type Options struct {
	Seed      int64
	Headless  bool
	LogStats  bool
	OutputDir string
	SeedNodes int // nodes placed along the spiral at startup
}

// Engine holds the complete runtime state.
type Engine struct {
	cfg  *config.Config
	opts Options
	rng  *rand.Rand

	curve  *curve.Field
	sparks *sparks.Field
	clock  *shader.Clock
	params *shader.Set
	scene  *scene.Scene
	cam    *camera.Camera

	// Stock shader bundles, registered on the shared clock
	cablePulse *shader.Bundle
	nodeHalo   *shader.Bundle
	sparkGlow  *shader.Bundle
	fogVolume  *shader.Bundle
	aura       *shader.Bundle

	// GPU-facing instance data, backing arrays reused across ticks
	buffers sparks.InstanceBuffers

	// Backbone geometry, rebuilt when the LOD level or node count changes
	backboneNodes []curve.PathNode
	backboneTube  curve.TubeMesh
	backboneLevel config.LODLevel
	backboneCount int

	labels *TextureLabelFactory

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	// Demo node bookkeeping for selection cycling
	nodes  []ecs.Entity
	cursor int

	// Selection accent points, cached per selected entity
	burst    []rl.Vector3
	burstFor ecs.Entity

	intensity float32

	tick   int
	paused bool
	dt     float64
}

// NewEngine wires the full subsystem stack from config. In graphical
// mode the raylib window must already be open, since the label factory
// uploads textures.
func NewEngine(cfg *config.Config, opts Options) (*Engine, error) {
	e := &Engine{
		cfg:  cfg,
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		dt:   1.0 / float64(cfg.Screen.TargetFPS),

		intensity: 1,
	}

	cf, err := curve.NewField(curve.ParamsFromConfig(cfg), cfg.LOD.Levels, cfg.Path.CacheCapacity, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("curve field: %w", err)
	}
	e.curve = cf

	var factory sparks.LabelFactory
	if !opts.Headless {
		e.labels = NewTextureLabelFactory(cfg.Labels)
		factory = e.labels
	}

	sf, err := sparks.NewField(cfg.Sparks, cfg.Trail, factory, opts.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("spark field: %w", err)
	}
	e.sparks = sf

	e.clock = shader.NewClock()
	e.params = shader.NewSet(e.clock)
	e.cablePulse = shader.NewCablePulse(cfg.Shader)
	e.nodeHalo = shader.NewNodeHalo(cfg.Shader)
	e.sparkGlow = shader.NewSparkGlow(cfg.Shader)
	e.fogVolume = shader.NewFogVolume(cfg.Shader)
	e.aura = shader.NewSelectionAura(cfg.Shader)
	for _, b := range []*shader.Bundle{e.cablePulse, e.nodeHalo, e.sparkGlow, e.fogVolume, e.aura} {
		e.params.Register(b)
	}

	e.scene = scene.New(cf, sf, e.params, e.aura)
	e.cam = camera.New(float32(cfg.Spiral.BaseRadius) * 6)

	e.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	e.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	e.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output manager: %w", err)
	}
	if err := e.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	e.seedNodes(opts.SeedNodes)
	return e, nil
}

// seedNodes places an initial run of nodes along the spiral.
func (e *Engine) seedNodes(count int) {
	kinds := []scene.NodeKind{scene.NodePost, scene.NodePost, scene.NodeComment, scene.NodeMedia}
	for i := 0; i < count; i++ {
		kind := kinds[e.rng.Intn(len(kinds))]
		entity := e.scene.AddNode(kind, int64(i), 0.3+e.rng.Float32()*0.7)
		e.nodes = append(e.nodes, entity)
	}
}

// Step advances the simulation by dt seconds in fixed subsystem order:
// curve LOD, sparks, shader clock, instance buffers, telemetry.
func (e *Engine) Step(dt float64) {
	e.perf.StartTick()

	e.perf.StartPhase(telemetry.PhaseCurve)
	level := e.curve.UpdateLOD(float64(e.cam.Distance))
	if level != e.backboneLevel || e.scene.NodeCount() != e.backboneCount {
		e.rebuildBackbone(level)
	}

	e.perf.StartPhase(telemetry.PhaseSparks)
	e.sparks.Update(float32(dt))

	e.perf.StartPhase(telemetry.PhaseShader)
	e.params.Tick(dt)

	e.perf.StartPhase(telemetry.PhaseBuffers)
	e.sparks.WriteInstanceBuffers(&e.buffers)

	e.perf.EndTick()
	e.tick++

	e.collector.RecordTick(dt, e.sparks.ActiveCount(), e.sparks.TrailPointCount())
	if e.collector.WindowReady() {
		e.flushTelemetry()
	}
}

// rebuildBackbone regenerates the path samples and tube mesh for the
// current LOD level.
func (e *Engine) rebuildBackbone(level config.LODLevel) {
	e.backboneNodes, e.backboneTube = e.scene.Backbone(e.cfg.Path.TubeRadius, e.cfg.Path.RadialSegments)
	e.backboneLevel = level
	e.backboneCount = e.scene.NodeCount()
}

// flushTelemetry closes the stats window, logs and writes it.
func (e *Engine) flushTelemetry() {
	hits, misses := e.curve.CacheStats()
	stats := e.collector.Flush(e.sparks.Counters(), hits, misses)

	if e.opts.LogStats {
		slog.Info("window stats", "stats", stats)
		e.perf.Stats().LogStats()
	}
	if err := e.output.WriteWindow(stats); err != nil {
		slog.Error("failed to write stats window", "error", err)
	}
}

// UpdateHeadless runs one fixed-timestep tick with no input or drawing.
func (e *Engine) UpdateHeadless() {
	e.Step(e.dt)
}

// Update handles input and, unless paused, runs one tick. Graphical
// mode only.
func (e *Engine) Update() {
	e.handleInput()

	if e.cam.Following {
		e.cam.Advance(float32(e.dt) * 0.05)
		pos, _ := e.scene.CameraPose(float64(e.cam.FollowProgress))
		e.cam.LookAt(pos.X, pos.Y, pos.Z)
	}

	if e.paused {
		return
	}
	e.Step(e.dt)
}

// Tick returns the current simulation tick.
func (e *Engine) Tick() int {
	return e.tick
}

// Scene exposes the scene graph, mainly for drivers and tests.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Buffers exposes the instance buffers written by the latest Step.
func (e *Engine) Buffers() *sparks.InstanceBuffers {
	return &e.buffers
}

// Unload releases GPU resources and closes telemetry outputs.
func (e *Engine) Unload() {
	if e.labels != nil {
		e.labels.Unload()
	}
	e.params.Dispose()
	if err := e.output.Close(); err != nil {
		slog.Error("failed to close output manager", "error", err)
	}
}
