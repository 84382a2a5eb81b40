package sparks

import (
	"errors"
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/curve"
)

func sparksCfg(capacity int) config.SparksConfig {
	return config.SparksConfig{
		PoolCapacity: capacity,
		LifetimeMin:  3.0,
		LifetimeMax:  3.0,
		Speed:        12,
		SizeMin:      0.4,
		SizeMax:      1.6,
		SubRadius:    2.5,
		SpiralTurns:  1.0,
		SpiralGrowth: 0.15,
	}
}

func trailCfg() config.TrailConfig {
	return config.TrailConfig{
		Length:         24,
		DecayRate:      0.92,
		MaxTotalPoints: 8192,
		OpacityEpsilon: 0.02,
	}
}

func newTestFieldWith(t *testing.T, capacity int, tc config.TrailConfig, labels LabelFactory) *Field {
	t.Helper()
	f, err := NewField(sparksCfg(capacity), tc, labels, 7)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

// fakeLabel records lifecycle calls so tests can assert exactly-once release.
type fakeLabel struct {
	released int
	moves    int
	opacity  float32
}

func (l *fakeLabel) Move(rl.Vector3)      { l.moves++ }
func (l *fakeLabel) SetOpacity(o float32) { l.opacity = o }
func (l *fakeLabel) Release()             { l.released++ }

type fakeFactory struct {
	fail   bool
	labels []*fakeLabel
}

func (f *fakeFactory) Create(text string, color rl.Color) (Label, error) {
	if f.fail {
		return nil, errors.New("text backend unavailable")
	}
	l := &fakeLabel{}
	f.labels = append(f.labels, l)
	return l, nil
}

func TestNewFieldRejectsBadConfig(t *testing.T) {
	if _, err := NewField(sparksCfg(0), trailCfg(), nil, 1); err == nil {
		t.Error("expected error for zero pool capacity")
	}

	bad := sparksCfg(16)
	bad.LifetimeMin = 0
	if _, err := NewField(bad, trailCfg(), nil, 1); err == nil {
		t.Error("expected error for zero lifetime")
	}

	tc := trailCfg()
	tc.Length = -1
	if _, err := NewField(sparksCfg(16), tc, nil, 1); err == nil {
		t.Error("expected error for negative trail length")
	}
}

func TestEmitActivatesSparks(t *testing.T) {
	f := newTestFieldWith(t, 64, trailCfg(), nil)

	n := f.Emit(rl.Vector3{X: 1, Y: 2, Z: 3}, 5, nil)
	if n != 5 {
		t.Fatalf("expected 5 emitted, got %d", n)
	}
	if f.ActiveCount() != 5 {
		t.Errorf("expected 5 active, got %d", f.ActiveCount())
	}
	if c := f.Counters(); c.Requested != 5 || c.Emitted != 5 {
		t.Errorf("expected requested=5 emitted=5, got requested=%d emitted=%d",
			c.Requested, c.Emitted)
	}

	for i := range f.Sparks() {
		s := &f.Sparks()[i]
		if !s.Active {
			continue
		}
		if s.Origin != (rl.Vector3{X: 1, Y: 2, Z: 3}) {
			t.Errorf("spark origin not set: %+v", s.Origin)
		}
		if s.MaxLife != 3.0 {
			t.Errorf("expected MaxLife 3.0, got %f", s.MaxLife)
		}
		if s.Color.A == 0 {
			t.Error("palette draw produced a transparent color")
		}
		if s.Importance < 0 || s.Importance > 1 {
			t.Errorf("importance out of range: %f", s.Importance)
		}
	}
}

func TestEmissionPhasesContinueAcrossCalls(t *testing.T) {
	f := newTestFieldWith(t, 64, trailCfg(), nil)

	// Two bursts must continue the same golden-angle sequence, not restart it
	f.Emit(rl.Vector3{}, 3, nil)
	f.Emit(rl.Vector3{}, 2, nil)

	want := make(map[int]float64)
	for i := 0; i < 5; i++ {
		want[i] = math.Mod(float64(i)*curve.GoldenAngle, 2*math.Pi)
	}

	var got []float64
	for i := range f.Sparks() {
		if f.Sparks()[i].Active {
			got = append(got, float64(f.Sparks()[i].SpiralAngle))
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 active sparks, got %d", len(got))
	}
	for _, phase := range got {
		matched := false
		for i, w := range want {
			if math.Abs(phase-w) < 1e-5 {
				delete(want, i)
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("phase %f does not continue the golden-angle sequence", phase)
		}
	}
}

// Scenario: 50 sparks of maxLife 3s are all inactive after 4s of ticks.
func TestAllSparksExpire(t *testing.T) {
	f := newTestFieldWith(t, 64, trailCfg(), nil)

	if n := f.Emit(rl.Vector3{}, 50, nil); n != 50 {
		t.Fatalf("expected 50 emitted, got %d", n)
	}
	for i := 0; i < 40; i++ {
		f.Update(0.1)
	}
	if f.ActiveCount() != 0 {
		t.Errorf("expected 0 active after 4s, got %d", f.ActiveCount())
	}
	if c := f.Counters(); c.Expired != 50 {
		t.Errorf("expected 50 expired, got %d", c.Expired)
	}
	if f.TrailPointCount() != 0 {
		t.Errorf("expected no resident trail points, got %d", f.TrailPointCount())
	}
}

// Scenario: emitting 15 into a 10-slot pool keeps exactly the 10 most
// recently requested sparks, recycling the first 5 as oldest.
func TestPoolExhaustionRecyclesOldest(t *testing.T) {
	f := newTestFieldWith(t, 10, trailCfg(), nil)

	n := f.Emit(rl.Vector3{}, 15, nil)
	if n != 15 {
		t.Fatalf("expected all 15 satisfied via recycling, got %d", n)
	}
	if f.ActiveCount() != 10 {
		t.Fatalf("expected active count pinned at capacity 10, got %d", f.ActiveCount())
	}

	c := f.Counters()
	if c.Requested != 15 || c.Recycled != 5 {
		t.Errorf("expected requested=15 recycled=5, got requested=%d recycled=%d",
			c.Requested, c.Recycled)
	}
	// Recycled-slot emissions still count as emitted
	if c.Emitted != 15 {
		t.Errorf("expected emitted=15, got %d", c.Emitted)
	}

	// Survivors carry the phases of emission indices 5..14
	want := make(map[int]float64)
	for i := 5; i < 15; i++ {
		want[i] = math.Mod(float64(i)*curve.GoldenAngle, 2*math.Pi)
	}
	for i := range f.Sparks() {
		s := &f.Sparks()[i]
		if !s.Active {
			continue
		}
		matched := false
		for k, w := range want {
			if math.Abs(float64(s.SpiralAngle)-w) < 1e-5 {
				delete(want, k)
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("active spark phase %f is not among the 10 most recent", s.SpiralAngle)
		}
	}
	if len(want) != 0 {
		t.Errorf("%d recent phases missing from the pool", len(want))
	}
}

func TestForcedRecycleEvictsOldestFirst(t *testing.T) {
	f := newTestFieldWith(t, 4, trailCfg(), nil)

	f.Emit(rl.Vector3{}, 4, nil)
	firstPhase := float32(0) // emission index 0 => phase 0
	// Pool full; one more emission must evict the index-0 spark
	f.Emit(rl.Vector3{}, 1, nil)

	for i := range f.Sparks() {
		s := &f.Sparks()[i]
		if s.Active && math.Abs(float64(s.SpiralAngle-firstPhase)) < 1e-6 {
			t.Error("oldest spark survived a forced recycle")
		}
	}
}

func TestSparkTracesOutwardSpiral(t *testing.T) {
	f := newTestFieldWith(t, 4, trailCfg(), nil)
	origin := rl.Vector3{X: 100, Y: 0, Z: -50}
	f.Emit(origin, 1, nil)

	var prevDist float64
	for i := 0; i < 20; i++ {
		f.Update(0.1)
		for j := range f.Sparks() {
			s := &f.Sparks()[j]
			if !s.Active {
				continue
			}
			dx := float64(s.Position.X - origin.X)
			dz := float64(s.Position.Z - origin.Z)
			dist := math.Hypot(dx, dz)
			if i > 2 && dist <= prevDist*0.5 {
				t.Errorf("tick %d: spark collapsed back toward origin (%f -> %f)", i, prevDist, dist)
			}
			prevDist = dist
		}
	}
}

func TestTrailCapHolds(t *testing.T) {
	tc := trailCfg()
	tc.MaxTotalPoints = 30
	f := newTestFieldWith(t, 16, tc, nil)

	f.Emit(rl.Vector3{}, 10, nil)
	for i := 0; i < 60; i++ {
		f.Update(0.02)
		if f.TrailPointCount() > 30 {
			t.Fatalf("tick %d: %d resident trail points exceed cap 30", i, f.TrailPointCount())
		}
	}
}

func TestTrailDecayDropsFadedPoints(t *testing.T) {
	tc := trailCfg()
	tc.DecayRate = 0.5 // aggressive fade
	f := newTestFieldWith(t, 4, tc, nil)

	f.Emit(rl.Vector3{}, 1, nil)
	for i := 0; i < 10; i++ {
		f.Update(0.05)
	}
	// With opacity halving each frame, resident points stay well under the
	// per-spark length even though the spark keeps appending.
	if f.TrailPointCount() >= tc.Length {
		t.Errorf("expected decay to bound trail length, got %d points", f.TrailPointCount())
	}
	if f.TrailPointCount() == 0 {
		t.Error("expected some live trail points while the spark is active")
	}
}

func TestLabeledSparkLifecycle(t *testing.T) {
	factory := &fakeFactory{}
	f := newTestFieldWith(t, 8, trailCfg(), factory)

	if !f.EmitLabeled(rl.Vector3{X: 5}, "first comment", rl.Color{R: 255, A: 255}) {
		t.Fatal("EmitLabeled failed")
	}
	if len(factory.labels) != 1 {
		t.Fatalf("expected 1 label created, got %d", len(factory.labels))
	}
	label := factory.labels[0]

	// Label follows the spark and fades as 1 - lifeRatio^2
	f.Update(1.5) // lifeRatio 0.5
	if label.moves < 2 {
		t.Error("label did not follow the spark")
	}
	wantOpacity := float32(1 - 0.25)
	if math.Abs(float64(label.opacity-wantOpacity)) > 0.01 {
		t.Errorf("expected opacity ~%f at half life, got %f", wantOpacity, label.opacity)
	}

	// Expiry releases the label exactly once
	for i := 0; i < 30; i++ {
		f.Update(0.1)
	}
	if f.ActiveCount() != 0 {
		t.Fatalf("expected spark expired, %d still active", f.ActiveCount())
	}
	if label.released != 1 {
		t.Errorf("expected exactly one release, got %d", label.released)
	}

	c := f.Counters()
	if c.LabelsCreated != 1 || c.LabelsReleased != 1 {
		t.Errorf("expected created=1 released=1, got created=%d released=%d",
			c.LabelsCreated, c.LabelsReleased)
	}
}

func TestLabelReleasedOnForcedRecycle(t *testing.T) {
	factory := &fakeFactory{}
	f := newTestFieldWith(t, 2, trailCfg(), factory)

	f.EmitLabeled(rl.Vector3{}, "evict me", rl.Color{A: 255})
	f.Emit(rl.Vector3{}, 1, nil)
	// Pool full: next emission recycles the labeled spark
	f.Emit(rl.Vector3{}, 1, nil)

	if factory.labels[0].released != 1 {
		t.Errorf("expected label released on forced recycle, got %d releases",
			factory.labels[0].released)
	}
}

func TestLabelFailureDegradesToPlainSpark(t *testing.T) {
	factory := &fakeFactory{fail: true}
	f := newTestFieldWith(t, 8, trailCfg(), factory)

	if !f.EmitLabeled(rl.Vector3{}, "doomed text", rl.Color{A: 255}) {
		t.Fatal("emission itself must not fail when the label backend does")
	}
	if f.ActiveCount() != 1 {
		t.Errorf("expected 1 active plain spark, got %d", f.ActiveCount())
	}
	if c := f.Counters(); c.LabelsFailed != 1 || c.LabelsCreated != 0 {
		t.Errorf("expected failed=1 created=0, got failed=%d created=%d",
			c.LabelsFailed, c.LabelsCreated)
	}
}

func TestSetIntensityClamps(t *testing.T) {
	f := newTestFieldWith(t, 4, trailCfg(), nil)

	f.SetIntensity(2.5)
	if f.Intensity() != 1 {
		t.Errorf("expected clamp to 1, got %f", f.Intensity())
	}
	f.SetIntensity(-0.5)
	if f.Intensity() != 0 {
		t.Errorf("expected clamp to 0, got %f", f.Intensity())
	}
	f.SetIntensity(0.7)
	if f.Intensity() != 0.7 {
		t.Errorf("expected 0.7, got %f", f.Intensity())
	}
}
