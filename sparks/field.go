package sparks

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/curve"
)

// Counters exposes the degradation paths as plain counts; resource
// exhaustion is never an error here. An emission into a recycled slot
// counts as both Recycled and Emitted, so Requested == Emitted whenever
// the pool has any capacity.
type Counters struct {
	Requested      uint64 // sparks asked for across all Emit calls
	Emitted        uint64 // sparks actually activated
	Recycled       uint64 // active sparks force-expired to satisfy emission
	Expired        uint64 // sparks that reached MaxLife
	LabelsCreated  uint64
	LabelsReleased uint64
	LabelsFailed   uint64 // factory errors degraded to plain sparks
}

// Field owns the fixed-capacity spark pool. Emission never allocates: a
// spark is drawn from the free list, or the oldest active spark is
// forcibly recycled when the pool is exhausted.
type Field struct {
	cfg      config.SparksConfig
	trailCfg config.TrailConfig

	pool []Spark
	free []int // indices of inactive sparks

	emissionIndex uint64 // global golden-angle counter, never reset
	seq           uint64
	frame         uint64

	totalTrailPoints int
	activeCount      int
	intensity        float32

	labels LabelFactory // nil disables labels
	rng    *rand.Rand

	counters Counters
}

// NewField creates a spark field. Pool capacity must be positive and the
// lifetime range well-formed; a malformed configuration is fatal.
func NewField(cfg config.SparksConfig, trailCfg config.TrailConfig, labels LabelFactory, seed int64) (*Field, error) {
	if cfg.PoolCapacity <= 0 {
		return nil, fmt.Errorf("sparks: pool capacity must be > 0, got %d", cfg.PoolCapacity)
	}
	if cfg.LifetimeMin <= 0 || cfg.LifetimeMax < cfg.LifetimeMin {
		return nil, fmt.Errorf("sparks: lifetime range [%g, %g] is invalid", cfg.LifetimeMin, cfg.LifetimeMax)
	}
	if trailCfg.Length < 0 || trailCfg.MaxTotalPoints < 0 {
		return nil, fmt.Errorf("sparks: trail capacities must be >= 0")
	}

	f := &Field{
		cfg:       cfg,
		trailCfg:  trailCfg,
		pool:      make([]Spark, cfg.PoolCapacity),
		free:      make([]int, 0, cfg.PoolCapacity),
		labels:    labels,
		rng:       rand.New(rand.NewSource(seed)),
		intensity: 1,
	}
	for i := cfg.PoolCapacity - 1; i >= 0; i-- {
		f.free = append(f.free, i)
	}
	return f, nil
}

// Emit activates up to count sparks at origin. The spiral phase of each is
// emissionIndex * goldenAngle with a counter that survives across calls, so
// successive bursts continue the same non-repeating angular sequence.
// Returns the number of sparks actually emitted; a nil color draws from the
// default palette per spark.
func (f *Field) Emit(origin rl.Vector3, count int, color *rl.Color) int {
	emitted := 0
	for i := 0; i < count; i++ {
		f.counters.Requested++
		idx := f.acquire()
		if idx < 0 {
			break
		}
		f.initSpark(&f.pool[idx], origin, color)
		emitted++
	}
	return emitted
}

// EmitLabeled activates a single spark at origin with a text billboard
// attached. If label construction fails the spark is still emitted as a
// plain spark; the failure is logged, not fatal.
func (f *Field) EmitLabeled(origin rl.Vector3, text string, color rl.Color) bool {
	f.counters.Requested++
	idx := f.acquire()
	if idx < 0 {
		return false
	}
	s := &f.pool[idx]
	f.initSpark(s, origin, &color)
	s.MaxLife = float32(f.cfg.LifetimeMax)
	s.Importance = 1

	if f.labels != nil && text != "" {
		label, err := f.labels.Create(text, color)
		if err != nil {
			f.counters.LabelsFailed++
			slog.Warn("sparks: label construction failed, emitting plain spark",
				"error", err, "text", text)
		} else {
			s.label = label
			f.counters.LabelsCreated++
			label.Move(s.Position)
			label.SetOpacity(1)
		}
	}
	return true
}

// acquire returns a spark slot index: the free list if possible, else the
// oldest active spark is deactivated and reused. Returns -1 only for an
// empty pool.
func (f *Field) acquire() int {
	if n := len(f.free); n > 0 {
		idx := f.free[n-1]
		f.free = f.free[:n-1]
		return idx
	}

	// Pool exhausted: forcibly recycle the oldest active spark (FIFO)
	oldest := -1
	for i := range f.pool {
		if !f.pool[i].Active {
			continue
		}
		if oldest < 0 || f.pool[i].seq < f.pool[oldest].seq {
			oldest = i
		}
	}
	if oldest < 0 {
		return -1
	}
	f.deactivate(oldest)
	f.counters.Recycled++
	n := len(f.free)
	f.free = f.free[:n-1]
	return oldest
}

// initSpark assigns fresh kinematic and visual fields to a pooled slot.
func (f *Field) initSpark(s *Spark, origin rl.Vector3, color *rl.Color) {
	phase := float64(f.emissionIndex) * curve.GoldenAngle
	f.emissionIndex++
	f.counters.Emitted++

	// Velocity tangent to the phase angle, randomized magnitude
	speed := f.cfg.Speed * (0.5 + f.rng.Float64())
	tangent := phase + math.Pi/2
	vel := rl.Vector3{
		X: float32(math.Cos(tangent) * speed),
		Y: float32((f.rng.Float64() - 0.5) * 0.6 * f.cfg.Speed),
		Z: float32(math.Sin(tangent) * speed),
	}

	c := defaultPalette[f.rng.Intn(len(defaultPalette))]
	if color != nil {
		c = *color
	}

	f.seq++
	*s = Spark{
		Origin:       origin,
		Position:     origin,
		Velocity:     vel,
		Color:        c,
		Size:         float32(f.cfg.SizeMin + f.rng.Float64()*(f.cfg.SizeMax-f.cfg.SizeMin)),
		MaxLife:      float32(f.cfg.LifetimeMin + f.rng.Float64()*(f.cfg.LifetimeMax-f.cfg.LifetimeMin)),
		SpiralAngle:  float32(math.Mod(phase, 2*math.Pi)),
		SpiralRadius: float32(f.cfg.SubRadius * (0.5 + f.rng.Float64())),
		Importance:   float32(0.3 + 0.7*f.rng.Float64()),
		Active:       true,
		trail:        s.trail[:0], // reuse the slot's trail backing array
		seq:          f.seq,
	}
	f.activeCount++
}

// Update ages every active spark by dt, recycles expired ones and decays
// all trails. Sparks are mutually independent within a tick: no spark's
// update reads another spark's state.
func (f *Field) Update(dt float32) {
	f.frame++

	for i := range f.pool {
		s := &f.pool[i]
		if !s.Active {
			continue
		}

		s.Life += dt
		if s.Life >= s.MaxLife {
			f.deactivate(i)
			f.counters.Expired++
			continue
		}

		lifeRatio := s.LifeRatio()
		s.Position = f.sparkPosition(s, lifeRatio)

		if s.label != nil {
			s.label.Move(s.Position)
			s.label.SetOpacity(1 - lifeRatio*lifeRatio)
		}

		f.decayTrail(s)
		f.appendTrailPoint(s, lifeRatio)
	}
}

// sparkPosition traces the spark's own miniature logarithmic spiral out
// from its origin: theta = spiralAngle + lifeRatio*2pi*k and
// r = spiralRadius * e^(growth*theta*k), plus the linear velocity term.
func (f *Field) sparkPosition(s *Spark, lifeRatio float32) rl.Vector3 {
	k := f.cfg.SpiralTurns
	theta := float64(s.SpiralAngle) + float64(lifeRatio)*2*math.Pi*k
	r := float64(s.SpiralRadius) * math.Exp(f.cfg.SpiralGrowth*theta*k)

	elapsed := lifeRatio * s.MaxLife
	return rl.Vector3{
		X: s.Origin.X + float32(r*math.Cos(theta)) + s.Velocity.X*elapsed,
		Y: s.Origin.Y + s.Velocity.Y*elapsed,
		Z: s.Origin.Z + float32(r*math.Sin(theta)) + s.Velocity.Z*elapsed,
	}
}

// decayTrail multiplies every point's life and opacity by the decay factor
// and drops points that fell below the opacity epsilon.
func (f *Field) decayTrail(s *Spark) {
	decay := float32(f.trailCfg.DecayRate)
	eps := float32(f.trailCfg.OpacityEpsilon)

	kept := 0
	for j := range s.trail {
		p := &s.trail[j]
		p.Life *= decay
		p.Opacity *= decay
		if p.Opacity < eps {
			continue
		}
		s.trail[kept] = s.trail[j]
		kept++
	}
	f.totalTrailPoints -= len(s.trail) - kept
	s.trail = s.trail[:kept]
}

// appendTrailPoint records the spark's current position, respecting the
// per-spark length and the global resident point cap (oldest-first drop).
func (f *Field) appendTrailPoint(s *Spark, lifeRatio float32) {
	if f.trailCfg.Length == 0 || len(s.trail) >= f.trailCfg.Length {
		return
	}
	if f.trailCfg.MaxTotalPoints > 0 && f.totalTrailPoints >= f.trailCfg.MaxTotalPoints {
		f.dropOldestTrailPoint()
	}
	s.trail = append(s.trail, TrailPoint{
		Position: s.Position,
		Color:    s.Color,
		Opacity:  (1 - lifeRatio) * s.Importance,
		Size:     s.Size * 0.6,
		Life:     1,
		born:     f.frame,
	})
	f.totalTrailPoints++
}

// dropOldestTrailPoint removes the globally oldest resident trail point.
// Within a spark the front of the buffer is the oldest point.
func (f *Field) dropOldestTrailPoint() {
	oldest := -1
	var oldestBorn uint64
	for i := range f.pool {
		s := &f.pool[i]
		if len(s.trail) == 0 {
			continue
		}
		if oldest < 0 || s.trail[0].born < oldestBorn {
			oldest = i
			oldestBorn = s.trail[0].born
		}
	}
	if oldest < 0 {
		return
	}
	s := &f.pool[oldest]
	s.trail = s.trail[:copy(s.trail, s.trail[1:])]
	f.totalTrailPoints--
}

// deactivate returns the spark at idx to the pool, releasing its trail and
// any attached label exactly once.
func (f *Field) deactivate(idx int) {
	s := &f.pool[idx]
	if s.label != nil {
		s.label.Release()
		s.label = nil
		f.counters.LabelsReleased++
	}
	f.totalTrailPoints -= len(s.trail)
	s.trail = s.trail[:0]
	s.Active = false
	f.activeCount--
	f.free = append(f.free, idx)
}

// SetIntensity clamps and stores the global brightness multiplier.
func (f *Field) SetIntensity(level float32) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	f.intensity = level
}

// Intensity returns the stored brightness multiplier in [0,1].
func (f *Field) Intensity() float32 {
	return f.intensity
}

// ActiveCount returns the number of currently active sparks.
func (f *Field) ActiveCount() int {
	return f.activeCount
}

// TrailPointCount returns the resident trail points across all sparks.
func (f *Field) TrailPointCount() int {
	return f.totalTrailPoints
}

// Capacity returns the fixed pool capacity.
func (f *Field) Capacity() int {
	return len(f.pool)
}

// Counters returns the cumulative emission and lifecycle counters.
func (f *Field) Counters() Counters {
	return f.counters
}

// Sparks exposes the pool for read-only iteration by the host renderer.
func (f *Field) Sparks() []Spark {
	return f.pool
}
