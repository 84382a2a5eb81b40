package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/helix/curve"
	"github.com/pthm-cable/helix/shader"
	"github.com/pthm-cable/helix/sparks"
)

// Scene owns the ECS world of timeline nodes and drives the per-tick
// update of the layout, particle and shader components in their required
// order: LOD before particles, both before buffer serialization.
type Scene struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, NodeMeta, Halo]
	filter *ecs.Filter3[Position, NodeMeta, Halo]

	posMap  *ecs.Map1[Position]
	haloMap *ecs.Map1[Halo]

	curve  *curve.Field
	sparks *sparks.Field
	params *shader.Set
	aura   *shader.Bundle

	selectedEntity ecs.Entity
	hasSelection   bool
	nodeCount      int
}

// New wires a scene over the given components. aura may be nil when no
// selection aura bundle is in use.
func New(cf *curve.Field, sf *sparks.Field, params *shader.Set, aura *shader.Bundle) *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:   world,
		mapper:  ecs.NewMap3[Position, NodeMeta, Halo](world),
		filter:  ecs.NewFilter3[Position, NodeMeta, Halo](world),
		posMap:  ecs.NewMap1[Position](world),
		haloMap: ecs.NewMap1[Halo](world),
		curve:   cf,
		sparks:  sf,
		params:  params,
		aura:    aura,
	}
}

// AddNode places the next content node on the spiral and greets it with a
// small spark burst. Node indices are assigned sequentially.
func (s *Scene) AddNode(kind NodeKind, timestamp int64, importance float32) ecs.Entity {
	idx := s.nodeCount
	s.nodeCount++

	p := s.curve.PositionAt(idx)
	pos := Position{X: p.X, Y: p.Y, Z: p.Z}
	meta := NodeMeta{Index: idx, Timestamp: timestamp, Kind: kind}
	halo := Halo{Importance: importance}

	entity := s.mapper.NewEntity(&pos, &meta, &halo)
	s.sparks.Emit(p, 8, nil)
	return entity
}

// React emits a burst of count sparks at the node. Returns the number of
// sparks actually emitted (the pool may satisfy the request partially).
func (s *Scene) React(e ecs.Entity, count int, color *rl.Color) int {
	if !s.world.Alive(e) {
		return 0
	}
	pos := s.posMap.Get(e)
	if pos == nil {
		return 0
	}
	return s.sparks.Emit(rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, count, color)
}

// Comment attaches a single labeled spark to the node.
func (s *Scene) Comment(e ecs.Entity, text string, color rl.Color) bool {
	if !s.world.Alive(e) {
		return false
	}
	pos := s.posMap.Get(e)
	if pos == nil {
		return false
	}
	return s.sparks.EmitLabeled(rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, text, color)
}

// Select marks the node as selected and raises the selection aura. Any
// previous selection is cleared.
func (s *Scene) Select(e ecs.Entity) {
	s.Deselect()
	if !s.world.Alive(e) {
		return
	}
	halo := s.haloMap.Get(e)
	if halo == nil {
		return
	}
	halo.Selected = true
	s.selectedEntity = e
	s.hasSelection = true
	if s.aura != nil {
		s.aura.Intensity = 1
	}
}

// Deselect clears the current selection.
func (s *Scene) Deselect() {
	if s.hasSelection && s.world.Alive(s.selectedEntity) {
		if halo := s.haloMap.Get(s.selectedEntity); halo != nil {
			halo.Selected = false
		}
	}
	s.hasSelection = false
	if s.aura != nil {
		s.aura.Intensity = 0
	}
}

// Selected returns the selected entity and whether a selection exists.
func (s *Scene) Selected() (ecs.Entity, bool) {
	return s.selectedEntity, s.hasSelection
}

// NodeCount returns the number of placed nodes.
func (s *Scene) NodeCount() int {
	return s.nodeCount
}

// Each visits every node in the scene.
func (s *Scene) Each(fn func(e ecs.Entity, pos *Position, meta *NodeMeta, halo *Halo)) {
	query := s.filter.Query()
	for query.Next() {
		pos, meta, halo := query.Get()
		fn(query.Entity(), pos, meta, halo)
	}
}

// Update advances one tick in the mandated order: LOD resolution first
// (particles may consult the current tessellation), then the spark field,
// then the shared shader clock.
func (s *Scene) Update(dt float64, cameraDistance float64) {
	s.curve.UpdateLOD(cameraDistance)
	s.sparks.Update(float32(dt))
	s.params.Tick(dt)
}

// CameraPose samples the backbone for a camera path position and facing
// direction at normalized progress t.
func (s *Scene) CameraPose(t float64) (pos, tangent rl.Vector3) {
	n := s.nodeCount
	if n < 2 {
		n = 2
	}
	return s.curve.PositionAtTime(t, n), s.curve.TangentAtTime(t, n)
}

// Backbone regenerates the path and tube mesh for the current node count
// at the tessellation of the current LOD level.
func (s *Scene) Backbone(tubeRadius float64, radialSegments int) ([]curve.PathNode, curve.TubeMesh) {
	if s.nodeCount == 0 {
		return nil, curve.TubeMesh{}
	}
	nodes := s.curve.GeneratePath(s.nodeCount, 0)
	return nodes, s.curve.TubeMesh(nodes, tubeRadius, radialSegments)
}
