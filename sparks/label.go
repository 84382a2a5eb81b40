package sparks

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Label is a text billboard attached to a single spark. Its lifetime is
// owned by the spark: the Field releases it exactly once, at the moment
// the spark deactivates.
type Label interface {
	// Move places the billboard at the spark's current position.
	Move(pos rl.Vector3)
	// SetOpacity fades the billboard; the Field drives it as 1 - lifeRatio^2.
	SetOpacity(opacity float32)
	// Release frees the underlying resource (texture, bitmap).
	Release()
}

// LabelFactory constructs billboard resources for labeled sparks. The
// construction is synchronous; a returned error degrades the emission to a
// plain unlabeled spark rather than failing it.
type LabelFactory interface {
	Create(text string, color rl.Color) (Label, error)
}
