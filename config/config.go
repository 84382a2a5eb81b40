// Package config provides configuration loading and access for the visualization core.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all visualization configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Spiral    SpiralConfig    `yaml:"spiral"`
	Path      PathConfig      `yaml:"path"`
	LOD       LODConfig       `yaml:"lod"`
	Sparks    SparksConfig    `yaml:"sparks"`
	Trail     TrailConfig     `yaml:"trail"`
	Labels    LabelsConfig    `yaml:"labels"`
	Shader    ShaderConfig    `yaml:"shader"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SpiralConfig holds the logarithmic spiral parameters.
// When GoldenMode is set, GrowthRate is ignored and derived from the
// golden ratio instead: b = ln(phi) / (pi/2).
type SpiralConfig struct {
	BaseRadius          float64 `yaml:"base_radius"`          // a in r = a*e^(b*theta); must be > 0
	GrowthRate          float64 `yaml:"growth_rate"`          // b; overridden by golden_mode
	GoldenMode          bool    `yaml:"golden_mode"`          // derive b from the golden ratio
	AngularIncrement    float64 `yaml:"angular_increment"`    // radians advanced per node index
	VerticalSpacing     float64 `yaml:"vertical_spacing"`     // y units per node index
	VerticalDirection   float64 `yaml:"vertical_direction"`   // +1 up, -1 down
	VerticalCompression float64 `yaml:"vertical_compression"` // scales vertical spacing
	Tightness           float64 `yaml:"tightness"`            // scales radial growth
}

// PathConfig holds backbone path and tube mesh parameters.
type PathConfig struct {
	TubeRadius     float64 `yaml:"tube_radius"`
	RadialSegments int     `yaml:"radial_segments"` // ring vertices per path sample
	CacheCapacity  int     `yaml:"cache_capacity"`  // position memo cache bound
}

// LODLevel pairs a camera distance threshold with tessellation detail.
type LODLevel struct {
	Distance      float64 `yaml:"distance"`       // applies when camera distance <= this
	CurveSegments int     `yaml:"curve_segments"` // samples per node span along the backbone
	PointDetail   int     `yaml:"point_detail"`   // point primitive detail tier
}

// LODConfig holds the distance-ordered level-of-detail table.
type LODConfig struct {
	Levels []LODLevel `yaml:"levels"`
}

// SparksConfig holds spark pool and trajectory parameters.
type SparksConfig struct {
	PoolCapacity  int     `yaml:"pool_capacity"`
	LifetimeMin   float64 `yaml:"lifetime_min"` // seconds
	LifetimeMax   float64 `yaml:"lifetime_max"` // seconds
	Speed         float64 `yaml:"speed"`        // velocity magnitude scale
	SizeMin       float64 `yaml:"size_min"`
	SizeMax       float64 `yaml:"size_max"`
	SubRadius     float64 `yaml:"sub_radius"`     // per-spark spiral base radius
	SpiralTurns   float64 `yaml:"spiral_turns"`   // full turns traced over a lifetime
	SpiralGrowth  float64 `yaml:"spiral_growth"`  // per-spark exponential growth rate
	SubSpiralArms int     `yaml:"subspiral_arms"` // arms for burst point sets
}

// TrailConfig holds trail buffer parameters.
type TrailConfig struct {
	Length         int     `yaml:"length"`           // max points per spark
	DecayRate      float64 `yaml:"decay_rate"`       // per-frame multiplier on life/opacity, < 1
	MaxTotalPoints int     `yaml:"max_total_points"` // resident points across all sparks
	OpacityEpsilon float64 `yaml:"opacity_epsilon"`  // drop threshold
}

// LabelsConfig holds text label billboard parameters.
type LabelsConfig struct {
	FontSize  int     `yaml:"font_size"`
	MaxChars  int     `yaml:"max_chars"`
	BaseScale float64 `yaml:"base_scale"`
}

// ShaderConfig holds default values for the stock shader parameter bundles.
type ShaderConfig struct {
	PulseSpeed float64 `yaml:"pulse_speed"`
	PulseWidth float64 `yaml:"pulse_width"`
	BloomPower float64 `yaml:"bloom_power"`
	FogDensity float64 `yaml:"fog_density"`
	FogRange   float64 `yaml:"fog_range"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per aggregation window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GrowthRate  float64 // effective b, after golden mode resolution
	GoldenAngle float64 // radians, ~2.39996
	ScreenW32   float32
	ScreenH32   float32
}

// GoldenRatio is phi = (1+sqrt(5))/2.
const GoldenRatio = 1.618033988749895

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects malformed configurations at load time. The host must not
// proceed with a non-positive base radius or negative capacities.
func (c *Config) validate() error {
	if c.Spiral.BaseRadius <= 0 {
		return fmt.Errorf("config: spiral.base_radius must be > 0, got %g", c.Spiral.BaseRadius)
	}
	if c.Path.CacheCapacity < 0 {
		return fmt.Errorf("config: path.cache_capacity must be >= 0, got %d", c.Path.CacheCapacity)
	}
	if c.Sparks.PoolCapacity <= 0 {
		return fmt.Errorf("config: sparks.pool_capacity must be > 0, got %d", c.Sparks.PoolCapacity)
	}
	if c.Sparks.LifetimeMin <= 0 || c.Sparks.LifetimeMax < c.Sparks.LifetimeMin {
		return fmt.Errorf("config: sparks lifetime range [%g, %g] is invalid",
			c.Sparks.LifetimeMin, c.Sparks.LifetimeMax)
	}
	if c.Trail.Length < 0 || c.Trail.MaxTotalPoints < 0 {
		return fmt.Errorf("config: trail capacities must be >= 0")
	}
	if c.Trail.DecayRate <= 0 || c.Trail.DecayRate >= 1 {
		return fmt.Errorf("config: trail.decay_rate must be in (0, 1), got %g", c.Trail.DecayRate)
	}
	for i := 1; i < len(c.LOD.Levels); i++ {
		if c.LOD.Levels[i].Distance <= c.LOD.Levels[i-1].Distance {
			return fmt.Errorf("config: lod.levels distances must be strictly increasing (level %d)", i)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GrowthRate = c.Spiral.GrowthRate
	if c.Spiral.GoldenMode {
		c.Derived.GrowthRate = math.Log(GoldenRatio) / (math.Pi / 2)
	}
	// Golden angle: 2*pi*(2 - phi), about 137.5077 degrees.
	c.Derived.GoldenAngle = 2 * math.Pi * (2 - GoldenRatio)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Scalars that default to the identity when unspecified
	if c.Spiral.VerticalDirection == 0 {
		c.Spiral.VerticalDirection = 1
	}
	if c.Spiral.VerticalCompression == 0 {
		c.Spiral.VerticalCompression = 1
	}
	if c.Spiral.Tightness == 0 {
		c.Spiral.Tightness = 1
	}

	// Synthesize a default LOD ladder if none specified
	if len(c.LOD.Levels) == 0 {
		c.LOD.Levels = []LODLevel{
			{Distance: 200, CurveSegments: 16, PointDetail: 3},
			{Distance: 600, CurveSegments: 8, PointDetail: 2},
			{Distance: 1500, CurveSegments: 4, PointDetail: 1},
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
