package sparks

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestWriteInstanceBuffers(t *testing.T) {
	f := newTestFieldWith(t, 16, trailCfg(), nil)

	f.Emit(rl.Vector3{X: 1}, 6, nil)
	f.Update(0.1)
	f.Update(0.1)

	var buf InstanceBuffers
	f.WriteInstanceBuffers(&buf)

	if buf.Count != f.ActiveCount() {
		t.Fatalf("buffer count %d != active count %d", buf.Count, f.ActiveCount())
	}
	if len(buf.Positions) != buf.Count*3 {
		t.Errorf("expected %d position floats, got %d", buf.Count*3, len(buf.Positions))
	}
	if len(buf.Velocities) != buf.Count*3 {
		t.Errorf("expected %d velocity floats, got %d", buf.Count*3, len(buf.Velocities))
	}
	if len(buf.Colors) != buf.Count*4 {
		t.Errorf("expected %d color floats, got %d", buf.Count*4, len(buf.Colors))
	}
	for _, arr := range [][]float32{buf.Sizes, buf.Lives, buf.MaxLives, buf.SpiralAngles, buf.SpiralRadii} {
		if len(arr) != buf.Count {
			t.Errorf("scalar attribute length %d != count %d", len(arr), buf.Count)
		}
	}

	if buf.Trail.Count != f.TrailPointCount() {
		t.Errorf("trail buffer count %d != resident points %d", buf.Trail.Count, f.TrailPointCount())
	}
	if len(buf.Trail.Positions) != buf.Trail.Count*3 {
		t.Errorf("expected %d trail position floats, got %d", buf.Trail.Count*3, len(buf.Trail.Positions))
	}

	// Colors are normalized
	for i, c := range buf.Colors {
		if c < 0 || c > 1 {
			t.Fatalf("color component %d out of [0,1]: %f", i, c)
		}
	}
	// Life ratios are normalized
	for i, l := range buf.Lives {
		if l < 0 || l > 1 {
			t.Fatalf("life ratio %d out of [0,1]: %f", i, l)
		}
	}
}

func TestWriteInstanceBuffersReusesBacking(t *testing.T) {
	f := newTestFieldWith(t, 16, trailCfg(), nil)
	f.Emit(rl.Vector3{}, 8, nil)
	f.Update(0.1)

	var buf InstanceBuffers
	f.WriteInstanceBuffers(&buf)
	first := cap(buf.Positions)

	// Subsequent frames with the same population must not grow the arrays
	for i := 0; i < 5; i++ {
		f.Update(0.01)
		f.WriteInstanceBuffers(&buf)
	}
	if cap(buf.Positions) < first {
		t.Error("buffer backing array shrank")
	}

	// Intensity scales spark alpha
	f.SetIntensity(0)
	f.WriteInstanceBuffers(&buf)
	for i := 3; i < len(buf.Colors); i += 4 {
		if buf.Colors[i] != 0 {
			t.Fatalf("expected zero alpha at zero intensity, got %f", buf.Colors[i])
		}
	}
}

func TestWriteInstanceBuffersEmptyField(t *testing.T) {
	f := newTestFieldWith(t, 8, trailCfg(), nil)

	var buf InstanceBuffers
	f.WriteInstanceBuffers(&buf)
	if buf.Count != 0 || buf.Trail.Count != 0 {
		t.Errorf("expected empty buffers, got %d sparks %d trail points", buf.Count, buf.Trail.Count)
	}
}
