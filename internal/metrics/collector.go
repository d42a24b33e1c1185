// Package metrics provides Prometheus metrics for cluck.
//
// All metrics are aggregate: a recording session runs a handful of tracks,
// so there is no cardinality concern in labelling counters by track label.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// --- Session overview ---
var (
	cluckInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluck_info",
			Help: "Information about the recording session (value always 1)",
		},
		[]string{"version"},
	)

	cluckTracksConfigured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cluck_tracks_configured",
			Help: "Number of tracks requested in configuration",
		},
	)

	cluckTracksActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cluck_tracks_active",
			Help: "Tracks currently recording",
		},
	)

	cluckSessionDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cluck_session_duration_seconds",
			Help: "Configured recording duration (0 = until signalled)",
		},
	)
)

// --- Track lifecycle ---
var (
	cluckTrackStartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cluck_track_starts_total",
			Help: "Total capture subprocesses launched",
		},
	)

	cluckTrackSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cluck_track_skips_total",
			Help: "Tracks skipped because no device matched their pattern",
		},
	)

	cluckTrackExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluck_track_exits_total",
			Help: "Track settlements by outcome",
		},
		[]string{"outcome"},
	)

	cluckTrackUptimeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "cluck_track_uptime_seconds",
			Help: "Recording duration per settled track",
			Buckets: []float64{
				1, 5, 15, 60, 300,
				900, 1800, 3600, 7200, 14400,
			},
		},
	)
)

// --- Shutdown ladder ---
var (
	cluckShutdownStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluck_shutdown_steps_total",
			Help: "Shutdown ladder steps attempted (quit, interrupt, terminate, kill)",
		},
		[]string{"step"},
	)
)

// Collector aggregates track lifecycle events into Prometheus metrics and
// keeps session totals for the exit summary.
type Collector struct {
	mu sync.Mutex

	totalStarts  int64
	totalSkips   int64
	totalStopped int64
	totalFailed  int64
	activeCount  int
	peakActive   int
}

// CollectorConfig holds session-level settings published as gauges.
type CollectorConfig struct {
	Version  string
	Tracks   int
	Duration time.Duration
}

// NewCollector creates a collector using the default Prometheus registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Used in tests to avoid duplicate registration panics.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	registry.MustRegister(
		cluckInfo,
		cluckTracksConfigured,
		cluckTracksActive,
		cluckSessionDurationSeconds,
		cluckTrackStartsTotal,
		cluckTrackSkipsTotal,
		cluckTrackExitsTotal,
		cluckTrackUptimeSeconds,
		cluckShutdownStepsTotal,
	)

	cluckInfo.WithLabelValues(cfg.Version).Set(1)
	cluckTracksConfigured.Set(float64(cfg.Tracks))
	cluckSessionDurationSeconds.Set(cfg.Duration.Seconds())

	return &Collector{}
}

// TrackStarted records a successful subprocess launch.
func (c *Collector) TrackStarted() {
	cluckTrackStartsTotal.Inc()

	c.mu.Lock()
	c.totalStarts++
	c.activeCount++
	if c.activeCount > c.peakActive {
		c.peakActive = c.activeCount
	}
	cluckTracksActive.Set(float64(c.activeCount))
	c.mu.Unlock()
}

// TrackSkipped records a track whose pattern matched no device.
func (c *Collector) TrackSkipped() {
	cluckTrackSkipsTotal.Inc()

	c.mu.Lock()
	c.totalSkips++
	c.mu.Unlock()
}

// TrackSettled records a track reaching a terminal state.
func (c *Collector) TrackSettled(outcome string, uptime time.Duration) {
	cluckTrackExitsTotal.WithLabelValues(outcome).Inc()
	cluckTrackUptimeSeconds.Observe(uptime.Seconds())

	c.mu.Lock()
	if c.activeCount > 0 {
		c.activeCount--
	}
	cluckTracksActive.Set(float64(c.activeCount))
	switch outcome {
	case "stopped":
		c.totalStopped++
	default:
		c.totalFailed++
	}
	c.mu.Unlock()
}

// ShutdownStep records one attempted ladder step.
func (c *Collector) ShutdownStep(step string) {
	cluckShutdownStepsTotal.WithLabelValues(step).Inc()
}

// PeakActive returns the highest concurrent track count seen.
func (c *Collector) PeakActive() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peakActive
}

// TotalStarts returns the total subprocess launches.
func (c *Collector) TotalStarts() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalStarts
}

// TotalSkips returns the tracks skipped at resolution.
func (c *Collector) TotalSkips() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSkips
}

// Totals returns the stopped and failed settlement counts.
func (c *Collector) Totals() (stopped, failed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalStopped, c.totalFailed
}
