// Package main tunes the LOD distance thresholds: it searches for the
// ladder that minimizes draw cost while keeping the on-screen chord
// error of the tessellated backbone below perception.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/curve"
)

// ParamSpec defines a single tunable threshold.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the tunable LOD thresholds.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector builds one threshold parameter per LOD level.
func NewParamVector(levels []config.LODLevel) *ParamVector {
	pv := &ParamVector{}
	for i, level := range levels {
		pv.Specs = append(pv.Specs, ParamSpec{
			Name:    fmt.Sprintf("lod%d_distance", i),
			Min:     20,
			Max:     4000,
			Default: level.Distance,
		})
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw distances.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds all values to their spec range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Evaluator scores a threshold ladder against sampled camera distances.
type Evaluator struct {
	cfg       *config.Config
	field     *curve.Field
	nodes     int
	distances []float64
	chordErr  []float64 // per level, precomputed
}

// NewEvaluator precomputes per-level chord errors for the base config.
func NewEvaluator(cfg *config.Config, nodes, samples int) (*Evaluator, error) {
	field, err := curve.NewField(curve.ParamsFromConfig(cfg), cfg.LOD.Levels, cfg.Path.CacheCapacity, 1)
	if err != nil {
		return nil, err
	}

	// Two samples minimum; one would divide by zero in the log spacing
	if samples < 2 {
		samples = 2
	}

	ev := &Evaluator{cfg: cfg, field: field, nodes: nodes}

	// Log-spaced camera distances across the tunable range
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		ev.distances = append(ev.distances, 20*math.Pow(4000/20.0, t))
	}
	for _, level := range cfg.LOD.Levels {
		ev.chordErr = append(ev.chordErr, ev.chordError(level.CurveSegments))
	}
	return ev, nil
}

// chordError measures the worst deviation between the smooth path and a
// piecewise-linear sampling with the given segments per node span.
func (ev *Evaluator) chordError(segments int) float64 {
	if segments < 1 {
		segments = 1
	}
	total := float64(ev.nodes-1) * float64(segments)
	var worst float64
	for i := 0; i < int(total); i++ {
		t0 := float64(i) / total
		t1 := float64(i+1) / total
		a := ev.field.PositionAtTime(t0, ev.nodes)
		b := ev.field.PositionAtTime(t1, ev.nodes)
		mid := ev.field.PositionAtTime((t0+t1)/2, ev.nodes)

		dx := float64(mid.X) - float64(a.X+b.X)/2
		dy := float64(mid.Y) - float64(a.Y+b.Y)/2
		dz := float64(mid.Z) - float64(a.Z+b.Z)/2
		dev := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dev > worst {
			worst = dev
		}
	}
	return worst
}

// levelFor mirrors the runtime threshold rule: smallest threshold that
// still covers the distance, else the coarsest level.
func levelFor(thresholds []float64, distance float64) int {
	for i, th := range thresholds {
		if distance <= th {
			return i
		}
	}
	return len(thresholds) - 1
}

// Evaluate returns the cost of a threshold ladder (lower = better).
func (ev *Evaluator) Evaluate(thresholds []float64) float64 {
	// Non-monotonic ladders are invalid
	var penalty float64
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			penalty += 1000 + (thresholds[i-1] - thresholds[i])
		}
	}

	var cost float64
	for _, dist := range ev.distances {
		li := levelFor(thresholds, dist)
		level := ev.cfg.LOD.Levels[li]

		// Draw cost grows with tessellation; perceived error shrinks
		// with distance.
		drawCost := float64(level.CurveSegments * ev.cfg.Path.RadialSegments)
		perceived := ev.chordErr[li] / dist * 1000

		cost += 0.05*drawCost + perceived
	}
	return cost/float64(len(ev.distances)) + penalty
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	nodes := flag.Int("nodes", 48, "Backbone nodes used for error measurement")
	samples := flag.Int("samples", 32, "Camera distance samples per evaluation")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg.LOD.Levels)
	evaluator, err := NewEvaluator(baseCfg, *nodes, *samples)
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	logPath := filepath.Join(*outputDir, "lodtune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "cost"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestCost := math.Inf(1)
	var bestThresholds []float64

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			cost := evaluator.Evaluate(raw)
			evalCount++

			if cost < bestCost {
				bestCost = cost
				bestThresholds = append([]float64(nil), raw...)
			}

			row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", cost)}
			for _, v := range raw {
				row = append(row, fmt.Sprintf("%.1f", v))
			}
			logWriter.Write(row)
			return cost
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}
	method := &optimize.NelderMead{}

	initX := params.Normalize(params.DefaultVector())

	fmt.Printf("Tuning %d LOD thresholds, max_evals=%d\n", params.Dim(), *maxEvals)
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestThresholds == nil {
		bestThresholds = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("Done after %d evaluations, best cost %.4f\n", evalCount, bestCost)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.1f\n", spec.Name, bestThresholds[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	for i := range bestCfg.LOD.Levels {
		bestCfg.LOD.Levels[i].Distance = bestThresholds[i]
	}

	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(outPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("Best config saved to: %s\n", outPath)
	}
}
