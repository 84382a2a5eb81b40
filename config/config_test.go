package config

import (
	"math"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Spiral.BaseRadius <= 0 {
		t.Errorf("expected positive base radius, got %f", cfg.Spiral.BaseRadius)
	}
	if cfg.Sparks.PoolCapacity <= 0 {
		t.Errorf("expected positive pool capacity, got %d", cfg.Sparks.PoolCapacity)
	}
	if len(cfg.LOD.Levels) == 0 {
		t.Error("expected default LOD levels")
	}
}

func TestGoldenModeDerivation(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if !cfg.Spiral.GoldenMode {
		t.Fatal("expected golden mode in defaults")
	}

	want := math.Log(GoldenRatio) / (math.Pi / 2)
	if math.Abs(cfg.Derived.GrowthRate-want) > 1e-12 {
		t.Errorf("expected derived growth rate %.12f, got %.12f", want, cfg.Derived.GrowthRate)
	}

	wantAngle := 2 * math.Pi * (2 - GoldenRatio)
	if math.Abs(cfg.Derived.GoldenAngle-wantAngle) > 1e-12 {
		t.Errorf("expected golden angle %.12f, got %.12f", wantAngle, cfg.Derived.GoldenAngle)
	}
}

func TestExplicitGrowthRate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	cfg.Spiral.GoldenMode = false
	cfg.Spiral.GrowthRate = 0.2
	cfg.computeDerived()

	if cfg.Derived.GrowthRate != 0.2 {
		t.Errorf("expected growth rate 0.2, got %f", cfg.Derived.GrowthRate)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero base radius", func(c *Config) { c.Spiral.BaseRadius = 0 }},
		{"negative pool", func(c *Config) { c.Sparks.PoolCapacity = -1 }},
		{"inverted lifetime", func(c *Config) { c.Sparks.LifetimeMin = 5; c.Sparks.LifetimeMax = 1 }},
		{"decay rate one", func(c *Config) { c.Trail.DecayRate = 1.0 }},
		{"decay rate zero", func(c *Config) { c.Trail.DecayRate = 0 }},
		{"non-monotonic lod", func(c *Config) {
			c.LOD.Levels = []LODLevel{
				{Distance: 500, CurveSegments: 8, PointDetail: 2},
				{Distance: 100, CurveSegments: 16, PointDetail: 3},
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load defaults: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Spiral.BaseRadius = 77.5

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Spiral.BaseRadius != 77.5 {
		t.Errorf("expected base radius 77.5, got %f", loaded.Spiral.BaseRadius)
	}
}
