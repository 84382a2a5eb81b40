package curve

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TubeMesh is the backbone geometry handed to the rendering host: one ring
// of vertices per path node, ordered ring by ring, plus the per-ring radius.
type TubeMesh struct {
	Vertices       []rl.Vector3
	Radii          []float32
	Rings          int
	RadialSegments int
}

// TubeMesh builds a tube around the given path. radialSegments vertices are
// placed per ring; the ring plane is perpendicular to the local tangent.
// An empty or single-node path yields an empty mesh.
func (f *Field) TubeMesh(nodes []PathNode, radius float64, radialSegments int) TubeMesh {
	if len(nodes) < 2 || radialSegments < 3 {
		return TubeMesh{RadialSegments: radialSegments}
	}

	mesh := TubeMesh{
		Vertices:       make([]rl.Vector3, 0, len(nodes)*radialSegments),
		Radii:          make([]float32, 0, len(nodes)),
		Rings:          len(nodes),
		RadialSegments: radialSegments,
	}

	for i := range nodes {
		tangent := pathTangent(nodes, i)
		normal, binormal := frameFor(tangent)

		mesh.Radii = append(mesh.Radii, float32(radius))
		center := nodes[i].Position
		for s := 0; s < radialSegments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(radialSegments)
			c := float32(radius * math.Cos(phi))
			b := float32(radius * math.Sin(phi))
			mesh.Vertices = append(mesh.Vertices, rl.Vector3{
				X: center.X + normal.X*c + binormal.X*b,
				Y: center.Y + normal.Y*c + binormal.Y*b,
				Z: center.Z + normal.Z*c + binormal.Z*b,
			})
		}
	}
	return mesh
}

// pathTangent estimates the tangent at node i from its neighbors, one-sided
// at the path ends.
func pathTangent(nodes []PathNode, i int) rl.Vector3 {
	var d rl.Vector3
	switch {
	case i == 0:
		d = rl.Vector3Subtract(nodes[1].Position, nodes[0].Position)
	case i == len(nodes)-1:
		d = rl.Vector3Subtract(nodes[i].Position, nodes[i-1].Position)
	default:
		d = rl.Vector3Subtract(nodes[i+1].Position, nodes[i-1].Position)
	}
	if rl.Vector3Length(d) == 0 {
		return rl.Vector3{X: 0, Y: 1, Z: 0}
	}
	return rl.Vector3Normalize(d)
}

// frameFor picks a stable normal/binormal pair perpendicular to the tangent.
func frameFor(tangent rl.Vector3) (normal, binormal rl.Vector3) {
	up := rl.Vector3{X: 0, Y: 1, Z: 0}
	// Degenerate when the tangent is near vertical
	if math.Abs(float64(tangent.Y)) > 0.99 {
		up = rl.Vector3{X: 1, Y: 0, Z: 0}
	}
	normal = rl.Vector3Normalize(rl.Vector3CrossProduct(up, tangent))
	binormal = rl.Vector3CrossProduct(tangent, normal)
	return normal, binormal
}
