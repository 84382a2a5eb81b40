package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/helix/config"
)

func TestEvaluatorClampsSampleCount(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	ev, err := NewEvaluator(cfg, 16, 1)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	if len(ev.distances) < 2 {
		t.Fatalf("expected at least 2 distance samples, got %d", len(ev.distances))
	}
	for i, d := range ev.distances {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			t.Errorf("distance sample %d is not a positive finite value: %f", i, d)
		}
	}

	cost := ev.Evaluate([]float64{200, 600, 1500})
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		t.Errorf("expected finite cost, got %f", cost)
	}
}

func TestLevelForThresholds(t *testing.T) {
	thresholds := []float64{200, 600, 1500}

	cases := []struct {
		distance float64
		expected int
	}{
		{50, 0},
		{200, 0},
		{201, 1},
		{600, 1},
		{1500, 2},
		{9000, 2},
	}
	for _, tc := range cases {
		if got := levelFor(thresholds, tc.distance); got != tc.expected {
			t.Errorf("levelFor(%f): expected level %d, got %d", tc.distance, tc.expected, got)
		}
	}
}
