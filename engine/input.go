package engine

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/scene"
)

// handleInput processes keyboard and mouse input.
func (e *Engine) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		e.paused = !e.paused
	}

	// Demo interactions on the spiral
	if rl.IsKeyPressed(rl.KeyN) {
		e.addDemoNode()
	}
	if rl.IsKeyPressed(rl.KeyTab) && len(e.nodes) > 0 {
		e.cursor = (e.cursor + 1) % len(e.nodes)
		e.scene.Select(e.nodes[e.cursor])
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		e.scene.Deselect()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if entity, ok := e.scene.Selected(); ok {
			e.scene.React(entity, 12, nil)
		}
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if entity, ok := e.scene.Selected(); ok {
			text := fmt.Sprintf("reply #%d", e.tick)
			e.scene.Comment(entity, text, rl.SkyBlue)
		}
	}

	// Camera
	if rl.IsKeyPressed(rl.KeyF) {
		e.cam.Following = !e.cam.Following
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		e.cam.Reset()
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		e.cam.Orbit(delta.X*0.005, delta.Y*0.005)
	}
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		delta := rl.GetMouseDelta()
		panScale := e.cam.Distance * 0.002
		e.cam.Pan(-delta.X*panScale, delta.Y*panScale)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		e.cam.Dolly(1 - wheel*0.1)
	}
}

// addDemoNode appends a node with a generated kind and importance.
func (e *Engine) addDemoNode() {
	kinds := []scene.NodeKind{scene.NodePost, scene.NodeComment, scene.NodeMedia}
	kind := kinds[e.rng.Intn(len(kinds))]
	entity := e.scene.AddNode(kind, int64(len(e.nodes)), 0.3+e.rng.Float32()*0.7)
	e.nodes = append(e.nodes, entity)
}
