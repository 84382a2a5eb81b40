package sparks

// InstanceBuffers holds the flat per-frame attribute arrays for GPU
// instance upload. This is the sole boundary toward the rendering host; no
// drawing happens in this package.
//
// Positions and Velocities are xyz-interleaved (3 floats per spark),
// Colors are rgba-interleaved (4 floats, normalized, intensity and
// importance premultiplied into alpha).
type InstanceBuffers struct {
	Positions    []float32
	Velocities   []float32
	Colors       []float32
	Sizes        []float32
	Lives        []float32 // life ratio in [0,1]
	MaxLives     []float32
	SpiralAngles []float32
	SpiralRadii  []float32
	Count        int

	Trail TrailBuffers
}

// TrailBuffers holds the flat arrays for the trail point set.
type TrailBuffers struct {
	Positions []float32 // xyz-interleaved
	Colors    []float32 // rgba-interleaved, opacity premultiplied into alpha
	Sizes     []float32
	Lives     []float32
	Count     int
}

// WriteInstanceBuffers serializes every active spark and every live trail
// point into buf, reusing its backing arrays across frames. Array order is
// pool order; indices are dense 0..Count-1.
func (f *Field) WriteInstanceBuffers(buf *InstanceBuffers) {
	buf.Positions = buf.Positions[:0]
	buf.Velocities = buf.Velocities[:0]
	buf.Colors = buf.Colors[:0]
	buf.Sizes = buf.Sizes[:0]
	buf.Lives = buf.Lives[:0]
	buf.MaxLives = buf.MaxLives[:0]
	buf.SpiralAngles = buf.SpiralAngles[:0]
	buf.SpiralRadii = buf.SpiralRadii[:0]
	buf.Count = 0

	buf.Trail.Positions = buf.Trail.Positions[:0]
	buf.Trail.Colors = buf.Trail.Colors[:0]
	buf.Trail.Sizes = buf.Trail.Sizes[:0]
	buf.Trail.Lives = buf.Trail.Lives[:0]
	buf.Trail.Count = 0

	const inv255 = 1.0 / 255.0
	for i := range f.pool {
		s := &f.pool[i]
		if !s.Active {
			continue
		}

		buf.Positions = append(buf.Positions, s.Position.X, s.Position.Y, s.Position.Z)
		buf.Velocities = append(buf.Velocities, s.Velocity.X, s.Velocity.Y, s.Velocity.Z)
		alpha := float32(s.Color.A) * inv255 * s.Importance * f.intensity
		buf.Colors = append(buf.Colors,
			float32(s.Color.R)*inv255,
			float32(s.Color.G)*inv255,
			float32(s.Color.B)*inv255,
			alpha,
		)
		buf.Sizes = append(buf.Sizes, s.Size*(0.5+0.5*s.Importance))
		buf.Lives = append(buf.Lives, s.LifeRatio())
		buf.MaxLives = append(buf.MaxLives, s.MaxLife)
		buf.SpiralAngles = append(buf.SpiralAngles, s.SpiralAngle)
		buf.SpiralRadii = append(buf.SpiralRadii, s.SpiralRadius)
		buf.Count++

		for j := range s.trail {
			p := &s.trail[j]
			buf.Trail.Positions = append(buf.Trail.Positions, p.Position.X, p.Position.Y, p.Position.Z)
			buf.Trail.Colors = append(buf.Trail.Colors,
				float32(p.Color.R)*inv255,
				float32(p.Color.G)*inv255,
				float32(p.Color.B)*inv255,
				p.Opacity*f.intensity,
			)
			buf.Trail.Sizes = append(buf.Trail.Sizes, p.Size)
			buf.Trail.Lives = append(buf.Trail.Lives, p.Life)
			buf.Trail.Count++
		}
	}
}
