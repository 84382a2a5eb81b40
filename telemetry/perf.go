package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one visualization tick, in execution order.
const (
	PhaseCurve   = "curve"   // LOD update, path/tube regeneration
	PhaseSparks  = "sparks"  // particle field update
	PhaseShader  = "shader"  // parameter set tick
	PhaseBuffers = "buffers" // instance buffer serialization
	PhaseRender  = "render"  // host draw (graphics mode only)
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks tick and phase timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordPhase folds an externally timed phase into the most recent
// sample. Used for work that runs outside the StartTick/EndTick span,
// such as the host draw.
func (p *PerfCollector) RecordPhase(phase string, d time.Duration) {
	if p.sampleCount == 0 {
		return
	}
	idx := (p.writeIndex - 1 + p.windowSize) % p.windowSize
	s := &p.samples[idx]
	if s.Phases == nil {
		s.Phases = make(map[string]time.Duration)
	}
	s.Phases[phase] += d
	s.TickDuration += d
}

// PerfStats holds aggregated timings over the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MaxTickDuration time.Duration
	PhaseAvg        map[string]time.Duration
	TicksPerSecond  float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{PhaseAvg: make(map[string]time.Duration)}
	}

	var totalTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration, len(phaseSum))
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		TicksPerSecond:  ticksPerSec,
	}
}

// LogStats logs the aggregated timings via slog.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range []string{PhaseCurve, PhaseSparks, PhaseShader, PhaseBuffers, PhaseRender} {
		if dur, ok := s.PhaseAvg[phase]; ok {
			attrs = append(attrs, phase+"_us", dur.Microseconds())
		}
	}
	slog.Info("perf", attrs...)
}
