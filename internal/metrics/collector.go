// Package metrics provides Prometheus metrics and health endpoints for
// go-fluxgui.
//
// All metrics are low cardinality: one supervised daemon, a fixed set of
// lifecycle states and exit categories.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/influxdata/tdigest"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// allStates lists every state exported by fluxgui_daemon_state.
var allStates = []supervisor.State{
	supervisor.StateUninitialized,
	supervisor.StateRunning,
	supervisor.StatePaused,
	supervisor.StateTerminated,
}

// Collector owns the Prometheus metrics for one supervisor.
type Collector struct {
	info               *prometheus.GaugeVec
	state              *prometheus.GaugeVec
	spawnsTotal        prometheus.Counter
	spawnSeconds       prometheus.Histogram
	spawnQuantiles     *prometheus.GaugeVec
	straysKilledTotal  prometheus.Counter
	colorChangesTotal  prometheus.Counter
	displayColorKelvin prometheus.Gauge
	previewsTotal      prometheus.Counter
	shutdownsTotal     *prometheus.CounterVec
	exitsTotal         *prometheus.CounterVec
	uptimeSeconds      prometheus.Histogram

	// For summary generation
	mu               sync.Mutex
	startTime        time.Time
	spawnDigest      *tdigest.TDigest
	spawns           int64
	straysKilled     int64
	colorChanges     int64
	previews         int64
	shutdownFailures int64
	exitCodes        map[int]int64
	currentState     supervisor.State
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Daemon  string
	Version string
}

// NewCollector creates a collector registered with the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fluxgui_info",
				Help: "Information about the supervised daemon (value always 1)",
			},
			[]string{"daemon", "version"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fluxgui_daemon_state",
				Help: "Current lifecycle state (1 for the active state, 0 otherwise)",
			},
			[]string{"state"},
		),
		spawnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fluxgui_daemon_spawns_total",
				Help: "Total daemon processes launched, including restarts for color changes",
			},
		),
		spawnSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fluxgui_daemon_spawn_seconds",
				Help:    "Time taken to launch the daemon process",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		spawnQuantiles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fluxgui_daemon_spawn_quantile_seconds",
				Help: "Spawn latency quantiles since start (t-digest estimate)",
			},
			[]string{"quantile"},
		),
		straysKilledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fluxgui_strays_killed_total",
				Help: "Stray daemon instances killed before a spawn",
			},
		),
		colorChangesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fluxgui_color_changes_total",
				Help: "Color changes commanded to the daemon",
			},
		),
		displayColorKelvin: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fluxgui_display_color_kelvin",
				Help: "Color the daemon was last commanded to show (0 when stopped)",
			},
		),
		previewsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fluxgui_previews_total",
				Help: "Preview sequences started",
			},
		),
		shutdownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxgui_shutdowns_total",
				Help: "Shutdown attempts by result",
			},
			[]string{"result"}, // ok, failed
		),
		exitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxgui_daemon_exits_total",
				Help: "Daemon process exits by category",
			},
			[]string{"category"}, // success, error, signal
		),
		uptimeSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fluxgui_daemon_uptime_seconds",
				Help:    "Lifetime of each daemon process",
				Buckets: []float64{1, 5, 30, 60, 300, 1800, 3600, 14400, 43200},
			},
		),
		startTime:   time.Now(),
		spawnDigest: tdigest.NewWithCompression(100),
		exitCodes:   make(map[int]int64),
	}

	registry.MustRegister(
		c.info,
		c.state,
		c.spawnsTotal,
		c.spawnSeconds,
		c.spawnQuantiles,
		c.straysKilledTotal,
		c.colorChangesTotal,
		c.displayColorKelvin,
		c.previewsTotal,
		c.shutdownsTotal,
		c.exitsTotal,
		c.uptimeSeconds,
	)

	c.info.WithLabelValues(cfg.Daemon, cfg.Version).Set(1)
	c.SetState(supervisor.StateUninitialized)
	return c
}

// =============================================================================
// Event Recording Methods
// =============================================================================

// SetState marks state as the active lifecycle state.
func (c *Collector) SetState(state supervisor.State) {
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.state.WithLabelValues(s.String()).Set(v)
	}
	if !state.IsAlive() {
		c.displayColorKelvin.Set(0)
	}

	c.mu.Lock()
	c.currentState = state
	c.mu.Unlock()
}

// RecordSpawn records a daemon launch.
func (c *Collector) RecordSpawn(took time.Duration) {
	c.spawnsTotal.Inc()
	c.spawnSeconds.Observe(took.Seconds())

	c.mu.Lock()
	c.spawns++
	c.spawnDigest.Add(took.Seconds(), 1)
	p50 := c.spawnDigest.Quantile(0.50)
	p99 := c.spawnDigest.Quantile(0.99)
	c.mu.Unlock()

	c.spawnQuantiles.WithLabelValues("0.5").Set(p50)
	c.spawnQuantiles.WithLabelValues("0.99").Set(p99)
}

// RecordStraysKilled records stray instances killed before a spawn.
func (c *Collector) RecordStraysKilled(count int) {
	c.straysKilledTotal.Add(float64(count))

	c.mu.Lock()
	c.straysKilled += int64(count)
	c.mu.Unlock()
}

// RecordColor records a commanded color change.
func (c *Collector) RecordColor(color string) {
	c.colorChangesTotal.Inc()
	if k, err := strconv.ParseFloat(color, 64); err == nil {
		c.displayColorKelvin.Set(k)
	}

	c.mu.Lock()
	c.colorChanges++
	c.mu.Unlock()
}

// RecordPreview records the start of a preview sequence.
func (c *Collector) RecordPreview() {
	c.previewsTotal.Inc()

	c.mu.Lock()
	c.previews++
	c.mu.Unlock()
}

// RecordShutdown records a shutdown attempt.
func (c *Collector) RecordShutdown(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.shutdownsTotal.WithLabelValues(result).Inc()

	if !ok {
		c.mu.Lock()
		c.shutdownFailures++
		c.mu.Unlock()
	}
}

// RecordExit records a daemon process exit.
func (c *Collector) RecordExit(exitCode int, uptime time.Duration) {
	c.exitsTotal.WithLabelValues(exitCategory(exitCode)).Inc()
	c.uptimeSeconds.Observe(uptime.Seconds())

	c.mu.Lock()
	c.exitCodes[exitCode]++
	c.mu.Unlock()
}

// exitCategory groups exit codes: 0 success, >128 killed by signal.
func exitCategory(exitCode int) string {
	switch {
	case exitCode == 0:
		return "success"
	case exitCode > 128:
		return "signal"
	default:
		return "error"
	}
}

// =============================================================================
// Summary
// =============================================================================

// Summary is a snapshot of the session counters.
type Summary struct {
	Duration         time.Duration
	State            supervisor.State
	Spawns           int64
	StraysKilled     int64
	ColorChanges     int64
	Previews         int64
	ShutdownFailures int64
	ExitCodes        map[int]int64
	SpawnP50         time.Duration
	SpawnP99         time.Duration
}

// Summary returns the session counters.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	codes := make(map[int]int64, len(c.exitCodes))
	for k, v := range c.exitCodes {
		codes[k] = v
	}

	s := Summary{
		Duration:         time.Since(c.startTime),
		State:            c.currentState,
		Spawns:           c.spawns,
		StraysKilled:     c.straysKilled,
		ColorChanges:     c.colorChanges,
		Previews:         c.previews,
		ShutdownFailures: c.shutdownFailures,
		ExitCodes:        codes,
	}
	if c.spawns > 0 {
		s.SpawnP50 = secondsToDuration(c.spawnDigest.Quantile(0.50))
		s.SpawnP99 = secondsToDuration(c.spawnDigest.Quantile(0.99))
	}
	return s
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
