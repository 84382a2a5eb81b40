// Package telemetry aggregates per-frame visualization statistics into
// fixed windows, times the tick phases, and writes CSV logs for offline
// analysis.
package telemetry

import (
	"github.com/pthm-cable/helix/sparks"
)

// Collector accumulates per-tick samples and produces WindowStats when a
// window's worth of simulation time has elapsed.
type Collector struct {
	windowDurationSec float64

	windowStart float64
	simTime     float64
	ticks       int

	// Per-tick samples for the current window
	activeSamples []float64
	trailSamples  []float64

	// Counter snapshots at window start, for deltas
	baseSparks      sparks.Counters
	baseCacheHits   uint64
	baseCacheMisses uint64
}

// NewCollector creates a collector with the given window duration in
// simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 5
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordTick samples the per-frame state. Call once per tick, after the
// spark field update.
func (c *Collector) RecordTick(dt float64, activeSparks, trailPoints int) {
	c.simTime += dt
	c.ticks++
	c.activeSamples = append(c.activeSamples, float64(activeSparks))
	c.trailSamples = append(c.trailSamples, float64(trailPoints))
}

// WindowReady reports whether a full window has elapsed.
func (c *Collector) WindowReady() bool {
	return c.simTime-c.windowStart >= c.windowDurationSec
}

// Flush closes the current window and returns its stats. Cumulative
// counters are turned into per-window deltas against the previous flush.
func (c *Collector) Flush(sc sparks.Counters, cacheHits, cacheMisses uint64) WindowStats {
	ws := WindowStats{
		SimTimeSec: c.simTime,
		Ticks:      c.ticks,

		SparksRequested: sc.Requested - c.baseSparks.Requested,
		SparksEmitted:   sc.Emitted - c.baseSparks.Emitted,
		SparksRecycled:  sc.Recycled - c.baseSparks.Recycled,
		SparksExpired:   sc.Expired - c.baseSparks.Expired,
		LabelsCreated:   sc.LabelsCreated - c.baseSparks.LabelsCreated,
		LabelsReleased:  sc.LabelsReleased - c.baseSparks.LabelsReleased,
		LabelsFailed:    sc.LabelsFailed - c.baseSparks.LabelsFailed,

		CacheHits:   cacheHits - c.baseCacheHits,
		CacheMisses: cacheMisses - c.baseCacheMisses,
	}

	ws.ActiveMean, ws.ActiveP50, ws.ActiveP90 = distribution(c.activeSamples)
	ws.TrailMean, ws.TrailP50, ws.TrailP90 = distribution(c.trailSamples)

	if lookups := ws.CacheHits + ws.CacheMisses; lookups > 0 {
		ws.CacheHitRate = float64(ws.CacheHits) / float64(lookups)
	}
	if ws.SparksRequested > 0 {
		ws.EmissionRate = float64(ws.SparksEmitted) / float64(ws.SparksRequested)
	}

	// Reset for the next window
	c.windowStart = c.simTime
	c.ticks = 0
	c.activeSamples = c.activeSamples[:0]
	c.trailSamples = c.trailSamples[:0]
	c.baseSparks = sc
	c.baseCacheHits = cacheHits
	c.baseCacheMisses = cacheMisses

	return ws
}
