// Package curve provides the logarithmic spiral layout mathematics: node
// placement, path interpolation, sub-spiral point distributions and the
// level-of-detail ladder for the backbone tessellation.
package curve

import (
	"fmt"
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
)

// GoldenAngle is 2*pi*(2 - phi) radians, about 137.5077 degrees. Used as a
// constant angular increment it produces maximally non-repeating radial
// distributions (phyllotaxis).
const GoldenAngle = 2.3999632297286533

// Params holds the immutable spiral parameters for a Field.
type Params struct {
	BaseRadius          float64 // a in r = a*e^(b*theta)
	GrowthRate          float64 // b
	AngularIncrement    float64 // radians per node index
	VerticalSpacing     float64
	VerticalDirection   float64 // +1 or -1
	VerticalCompression float64
	Tightness           float64 // radial scale
}

// ParamsFromConfig builds spiral parameters from the loaded configuration,
// with golden mode already resolved into the effective growth rate.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		BaseRadius:          cfg.Spiral.BaseRadius,
		GrowthRate:          cfg.Derived.GrowthRate,
		AngularIncrement:    cfg.Spiral.AngularIncrement,
		VerticalSpacing:     cfg.Spiral.VerticalSpacing,
		VerticalDirection:   cfg.Spiral.VerticalDirection,
		VerticalCompression: cfg.Spiral.VerticalCompression,
		Tightness:           cfg.Spiral.Tightness,
	}
}

// PathNode is one placed position along the backbone, with the curve
// metadata callers need to attach content or build geometry.
type PathNode struct {
	Index    int
	Theta    float64
	Radius   float64
	Progress float64 // normalized [0,1] along the generated stretch
	Position rl.Vector3
}

// Field computes positions on a logarithmic spiral. Position lookups are
// memoized in a bounded cache; the cache is purely an optimization and a
// miss always recomputes the exact same value.
type Field struct {
	params Params

	cache    map[int]rl.Vector3
	cacheCap int

	levels   []config.LODLevel
	lodIndex int

	rng *rand.Rand

	cacheHits   uint64
	cacheMisses uint64
}

// NewField creates a spiral field. The base radius must be positive and the
// LOD table monotonically increasing; a malformed configuration is fatal to
// construction.
func NewField(params Params, levels []config.LODLevel, cacheCapacity int, seed int64) (*Field, error) {
	if params.BaseRadius <= 0 {
		return nil, fmt.Errorf("curve: base radius must be > 0, got %g", params.BaseRadius)
	}
	if cacheCapacity < 0 {
		return nil, fmt.Errorf("curve: cache capacity must be >= 0, got %d", cacheCapacity)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Distance <= levels[i-1].Distance {
			return nil, fmt.Errorf("curve: lod distances must be strictly increasing (level %d)", i)
		}
	}
	if params.VerticalDirection == 0 {
		params.VerticalDirection = 1
	}
	if params.VerticalCompression == 0 {
		params.VerticalCompression = 1
	}
	if params.Tightness == 0 {
		params.Tightness = 1
	}
	return &Field{
		params:   params,
		cache:    make(map[int]rl.Vector3, cacheCapacity),
		cacheCap: cacheCapacity,
		levels:   levels,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Params returns the spiral parameters.
func (f *Field) Params() Params {
	return f.params
}

// RadiusAt returns the spiral radius at the given angle: r = a*e^(b*theta).
// Total over all finite theta; negative angles spiral inward.
func (f *Field) RadiusAt(theta float64) float64 {
	return f.params.BaseRadius * math.Exp(f.params.GrowthRate*theta)
}

// PositionAt returns the position of the node at the given index. Results
// are cached up to the configured capacity; the mapping index -> position
// is a pure function of the spiral parameters.
func (f *Field) PositionAt(index int) rl.Vector3 {
	if pos, ok := f.cache[index]; ok {
		f.cacheHits++
		return pos
	}
	f.cacheMisses++
	pos := f.computePosition(index)
	f.cacheStore(index, pos)
	return pos
}

func (f *Field) computePosition(index int) rl.Vector3 {
	theta := float64(index) * f.params.AngularIncrement
	r := f.RadiusAt(theta) * f.params.Tightness
	y := float64(index) * f.params.VerticalSpacing * f.params.VerticalDirection * f.params.VerticalCompression
	return rl.Vector3{
		X: float32(r * math.Cos(theta)),
		Y: float32(y),
		Z: float32(r * math.Sin(theta)),
	}
}

// cacheStore inserts a computed position, evicting one arbitrary entry when
// the cache is full. Eviction order does not matter for correctness.
func (f *Field) cacheStore(index int, pos rl.Vector3) {
	if f.cacheCap == 0 {
		return
	}
	if len(f.cache) >= f.cacheCap {
		for k := range f.cache {
			delete(f.cache, k)
			break
		}
	}
	f.cache[index] = pos
}

// ClearCache drops all memoized positions. Never changes returned values,
// only recomputation cost.
func (f *Field) ClearCache() {
	clear(f.cache)
}

// CacheStats returns cumulative cache hit and miss counts.
func (f *Field) CacheStats() (hits, misses uint64) {
	return f.cacheHits, f.cacheMisses
}

// GeneratePath places count consecutive nodes starting at startIndex.
// Idempotent for identical inputs; spiral parameters are never mutated.
func (f *Field) GeneratePath(count, startIndex int) []PathNode {
	if count <= 0 {
		return nil
	}
	nodes := make([]PathNode, count)
	for i := 0; i < count; i++ {
		idx := startIndex + i
		theta := float64(idx) * f.params.AngularIncrement
		progress := 0.0
		if count > 1 {
			progress = float64(i) / float64(count-1)
		}
		nodes[i] = PathNode{
			Index:    idx,
			Theta:    theta,
			Radius:   f.RadiusAt(theta) * f.params.Tightness,
			Progress: progress,
			Position: f.PositionAt(idx),
		}
	}
	return nodes
}

// PositionAtTime maps t in [0,1] onto the backbone through the first
// totalNodes node positions using Catmull-Rom interpolation between the two
// neighboring nodes on each side, clamped at the path ends. This lets a
// camera move continuously along the discretely sampled path.
func (f *Field) PositionAtTime(t float64, totalNodes int) rl.Vector3 {
	if totalNodes <= 0 {
		return rl.Vector3{}
	}
	if totalNodes == 1 {
		return f.PositionAt(0)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	ft := t * float64(totalNodes-1)
	seg := int(ft)
	if seg > totalNodes-2 {
		seg = totalNodes - 2
	}
	u := ft - float64(seg)

	p0 := f.PositionAt(clampIndex(seg-1, totalNodes))
	p1 := f.PositionAt(seg)
	p2 := f.PositionAt(clampIndex(seg+1, totalNodes))
	p3 := f.PositionAt(clampIndex(seg+2, totalNodes))

	return catmullRom(p0, p1, p2, p3, u)
}

// TangentAtTime estimates the unit tangent along the backbone at t by
// symmetric finite difference.
func (f *Field) TangentAtTime(t float64, totalNodes int) rl.Vector3 {
	const eps = 1e-3
	ahead := f.PositionAtTime(t+eps, totalNodes)
	behind := f.PositionAtTime(t-eps, totalNodes)
	d := rl.Vector3Subtract(ahead, behind)
	if rl.Vector3Length(d) == 0 {
		return rl.Vector3{X: 0, Y: 0, Z: 1}
	}
	return rl.Vector3Normalize(d)
}

// GenerateSubSpiral places pointCount points per arm around center using
// the golden angle and a Fermat-spiral radius r = maxRadius*sqrt(i/n), with
// a small vertical jitter scaled by the normalized index. Within an arm no
// two points share a (radius, angle) pair for reasonable point counts.
func (f *Field) GenerateSubSpiral(center rl.Vector3, pointCount int, maxRadius float64, armCount int) []rl.Vector3 {
	if pointCount <= 0 || armCount <= 0 {
		return nil
	}
	points := make([]rl.Vector3, 0, pointCount*armCount)
	for arm := 0; arm < armCount; arm++ {
		armOffset := float64(arm) * 2 * math.Pi / float64(armCount)
		for i := 0; i < pointCount; i++ {
			frac := float64(i) / float64(pointCount)
			theta := float64(i)*GoldenAngle + armOffset
			r := maxRadius * math.Sqrt(frac)
			jitter := (f.rng.Float64() - 0.5) * maxRadius * 0.2 * frac
			points = append(points, rl.Vector3{
				X: center.X + float32(r*math.Cos(theta)),
				Y: center.Y + float32(jitter),
				Z: center.Z + float32(r*math.Sin(theta)),
			})
		}
	}
	return points
}

// UpdateLOD resolves the level for the given camera distance: the smallest
// threshold >= the distance, or the coarsest level if none qualifies. A
// level change clears the position cache so derived tessellation density is
// rebuilt from fresh lookups.
func (f *Field) UpdateLOD(cameraDistance float64) config.LODLevel {
	if len(f.levels) == 0 {
		return config.LODLevel{}
	}
	idx := len(f.levels) - 1
	for i, lv := range f.levels {
		if cameraDistance <= lv.Distance {
			idx = i
			break
		}
	}
	if idx != f.lodIndex {
		f.lodIndex = idx
		f.ClearCache()
	}
	return f.levels[idx]
}

// Level returns the current LOD level.
func (f *Field) Level() config.LODLevel {
	if len(f.levels) == 0 {
		return config.LODLevel{}
	}
	return f.levels[f.lodIndex]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// catmullRom evaluates the centripetal-free (uniform) Catmull-Rom spline
// through p1..p2 at local parameter u in [0,1].
func catmullRom(p0, p1, p2, p3 rl.Vector3, u float64) rl.Vector3 {
	u2 := u * u
	u3 := u2 * u
	w0 := -0.5*u3 + u2 - 0.5*u
	w1 := 1.5*u3 - 2.5*u2 + 1
	w2 := -1.5*u3 + 2*u2 + 0.5*u
	w3 := 0.5*u3 - 0.5*u2
	return rl.Vector3{
		X: float32(w0*float64(p0.X) + w1*float64(p1.X) + w2*float64(p2.X) + w3*float64(p3.X)),
		Y: float32(w0*float64(p0.Y) + w1*float64(p1.Y) + w2*float64(p2.Y) + w3*float64(p3.Y)),
		Z: float32(w0*float64(p0.Z) + w1*float64(p1.Z) + w2*float64(p2.Z) + w3*float64(p3.Z)),
	}
}
