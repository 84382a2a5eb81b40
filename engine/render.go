package engine

import (
	"fmt"
	"math"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/helix/scene"
	"github.com/pthm-cable/helix/telemetry"
)

var backgroundColor = rl.NewColor(8, 8, 18, 255)

// clearColor tints the background toward the fog gradient, scaled by
// fog density.
func (e *Engine) clearColor() rl.Color {
	fog := e.fogVolume.Gradient[0]
	t := e.fogVolume.FogDensity
	return rl.NewColor(
		lerpByte(backgroundColor.R, fog.R, t),
		lerpByte(backgroundColor.G, fog.G, t),
		lerpByte(backgroundColor.B, fog.B, t),
		255,
	)
}

// Draw renders the scene and HUD. Graphical mode only.
func (e *Engine) Draw() {
	renderStart := time.Now()

	camX, camY, camZ := e.cam.Position()
	cam3d := rl.NewCamera3D(
		rl.NewVector3(camX, camY, camZ),
		rl.NewVector3(e.cam.TargetX, e.cam.TargetY, e.cam.TargetZ),
		rl.NewVector3(0, 1, 0),
		45.0,
		rl.CameraPerspective,
	)

	rl.BeginDrawing()
	rl.ClearBackground(e.clearColor())

	rl.BeginMode3D(cam3d)
	e.drawBackbone()
	e.drawNodes()
	e.drawSparks()
	rl.EndMode3D()

	if e.labels != nil {
		e.labels.Draw(cam3d)
	}

	e.drawHUD()

	rl.EndDrawing()

	e.perf.RecordPhase(telemetry.PhaseRender, time.Since(renderStart))
}

// drawBackbone renders the tube mesh as longitudinal and ring wires,
// brightness modulated by the cable pulse bundle.
func (e *Engine) drawBackbone() {
	tube := e.backboneTube
	if tube.Rings < 2 {
		return
	}

	phase := float64(e.cablePulse.Time) * float64(e.cablePulse.PulseSpeed)
	segs := tube.RadialSegments

	for ring := 0; ring < tube.Rings; ring++ {
		progress := float64(ring) / float64(tube.Rings-1)
		wave := 0.5 + 0.5*math.Sin(phase-progress*8*float64(e.cablePulse.PulseWidth))
		col := rl.Fade(e.cablePulse.Gradient[0], float32(0.15+0.45*wave))

		base := ring * segs
		for s := 0; s < segs; s++ {
			v := tube.Vertices[base+s]
			// Ring loop
			rl.DrawLine3D(v, tube.Vertices[base+(s+1)%segs], col)
			// Longitudinal edge to the next ring
			if ring+1 < tube.Rings {
				rl.DrawLine3D(v, tube.Vertices[base+segs+s], col)
			}
		}
	}
}

// drawNodes renders node halos, the selection aura and the selection
// accent points.
func (e *Engine) drawNodes() {
	haloPulse := 0.5 + 0.5*float32(math.Sin(float64(e.nodeHalo.Time)*float64(e.nodeHalo.PulseSpeed)))
	auraPulse := 0.5 + 0.5*float32(math.Sin(float64(e.aura.Time)*float64(e.aura.PulseSpeed)))

	e.scene.Each(func(entity ecs.Entity, pos *scene.Position, meta *scene.NodeMeta, halo *scene.Halo) {
		center := rl.NewVector3(pos.X, pos.Y, pos.Z)
		radius := 1.5 + 2.5*halo.Importance

		col := nodeColor(meta.Kind)
		col = rl.Fade(col, (0.55+0.45*halo.Importance)*(0.7+0.3*haloPulse))
		rl.DrawSphere(center, radius, col)

		if !halo.Selected {
			return
		}

		auraCol := rl.Fade(e.aura.Gradient[0], e.aura.Intensity*(0.4+0.6*auraPulse))
		rl.DrawSphereWires(center, radius*1.8, 8, 8, auraCol)

		if e.burstFor != entity {
			count := e.cfg.Sparks.SubSpiralArms * 12
			maxRadius := e.cfg.Sparks.SubRadius * 3
			e.burst = e.curve.GenerateSubSpiral(center, count, maxRadius, e.cfg.Sparks.SubSpiralArms)
			e.burstFor = entity
		}
		for _, p := range e.burst {
			rl.DrawPoint3D(p, auraCol)
		}
	})
}

// drawSparks renders active sparks and their trails from the instance
// buffers written by the latest tick.
func (e *Engine) drawSparks() {
	buf := &e.buffers

	for i := 0; i < buf.Count; i++ {
		pos := rl.NewVector3(buf.Positions[i*3], buf.Positions[i*3+1], buf.Positions[i*3+2])
		col := colorFromFloats(buf.Colors[i*4:])
		rl.DrawSphere(pos, buf.Sizes[i]*0.25, col)
	}

	trail := &buf.Trail
	for i := 0; i < trail.Count; i++ {
		pos := rl.NewVector3(trail.Positions[i*3], trail.Positions[i*3+1], trail.Positions[i*3+2])
		rl.DrawPoint3D(pos, colorFromFloats(trail.Colors[i*4:]))
	}
}

// drawHUD renders stats text and the glow intensity slider.
func (e *Engine) drawHUD() {
	level := e.curve.Level()

	rl.DrawText(fmt.Sprintf("Tick: %d", e.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Nodes: %d  Sparks: %d/%d  Trail: %d",
		e.scene.NodeCount(), e.sparks.ActiveCount(), e.sparks.Capacity(), e.sparks.TrailPointCount()),
		10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("LOD: %d seg @ dist %.0f", level.CurveSegments, e.cam.Distance), 10, 60, 20, rl.Gray)
	rl.DrawText("[N]ode [Tab]select [R]eact [C]omment [F]ollow [Space]pause", 10, 85, 16, rl.DarkGray)
	if e.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}

	sliderX := float32(e.cfg.Screen.Width - 230)
	newIntensity := gui.SliderBar(
		rl.Rectangle{X: sliderX, Y: 15, Width: 180, Height: 20},
		"Glow",
		fmt.Sprintf("%.2f", e.intensity),
		e.intensity, 0, 1,
	)
	if newIntensity != e.intensity {
		e.intensity = newIntensity
		e.sparks.SetIntensity(newIntensity)
		e.sparkGlow.Intensity = newIntensity
		e.cablePulse.Intensity = newIntensity
	}
}

func nodeColor(kind scene.NodeKind) rl.Color {
	switch kind {
	case scene.NodeComment:
		return rl.SkyBlue
	case scene.NodeMedia:
		return rl.Purple
	default:
		return rl.Orange
	}
}

func lerpByte(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}

func colorFromFloats(c []float32) rl.Color {
	return rl.NewColor(
		uint8(c[0]*255),
		uint8(c[1]*255),
		uint8(c[2]*255),
		uint8(c[3]*255),
	)
}
