package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one telemetry window.
type WindowStats struct {
	SimTimeSec float64 `csv:"sim_time"`
	Ticks      int     `csv:"ticks"`

	// Emission lifecycle (deltas within the window)
	SparksRequested uint64  `csv:"sparks_requested"`
	SparksEmitted   uint64  `csv:"sparks_emitted"`
	SparksRecycled  uint64  `csv:"sparks_recycled"`
	SparksExpired   uint64  `csv:"sparks_expired"`
	EmissionRate    float64 `csv:"emission_rate"` // emitted / requested

	// Label resources
	LabelsCreated  uint64 `csv:"labels_created"`
	LabelsReleased uint64 `csv:"labels_released"`
	LabelsFailed   uint64 `csv:"labels_failed"`

	// Population distribution (sampled every tick)
	ActiveMean float64 `csv:"active_mean"`
	ActiveP50  float64 `csv:"active_p50"`
	ActiveP90  float64 `csv:"active_p90"`
	TrailMean  float64 `csv:"trail_mean"`
	TrailP50   float64 `csv:"trail_p50"`
	TrailP90   float64 `csv:"trail_p90"`

	// Position cache
	CacheHits    uint64  `csv:"cache_hits"`
	CacheMisses  uint64  `csv:"cache_misses"`
	CacheHitRate float64 `csv:"cache_hit_rate"`
}

// distribution computes mean, median and 90th percentile of the samples.
func distribution(samples []float64) (mean, p50, p90 float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ticks", s.Ticks),
		slog.Uint64("sparks_requested", s.SparksRequested),
		slog.Uint64("sparks_emitted", s.SparksEmitted),
		slog.Uint64("sparks_recycled", s.SparksRecycled),
		slog.Uint64("sparks_expired", s.SparksExpired),
		slog.Uint64("labels_created", s.LabelsCreated),
		slog.Uint64("labels_released", s.LabelsReleased),
		slog.Uint64("labels_failed", s.LabelsFailed),
		slog.Float64("active_mean", s.ActiveMean),
		slog.Float64("active_p90", s.ActiveP90),
		slog.Float64("trail_mean", s.TrailMean),
		slog.Float64("trail_p90", s.TrailP90),
		slog.Float64("cache_hit_rate", s.CacheHitRate),
	)
}
