// Package telemetry exposes a simulation run as Prometheus metrics.
//
// Metrics (all prefixed disksched_, constant label policy):
//   - completions_total{kind}: requests served by the drive controller
//   - service_time_ms: histogram of dispatch-to-completion ticks
//   - track_jump_tracks: histogram of the track distance between consecutive completions
//   - rate_budget_requests: request budget of the current simulated second (-1 = unlimited)
//   - submissions_total{process}: requests accepted from each process, counted per finished second
//   - simulated_seconds_total: second boundaries crossed
//   - clock_ms: tick of the latest completion
//
// The Collector owns a private registry so several runs can coexist in one
// process (the compare command builds one Collector per policy).
package telemetry

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/disksched-sim/disksched-sim/sim/trace"
)

const namespace = "disksched"

// Collector implements sim.Observer and keeps Prometheus metrics for one run.
// It is fed synchronously from Simulator.Step and is not safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	completions      *prometheus.CounterVec
	serviceTime      prometheus.Histogram
	trackJump        prometheus.Histogram
	rateBudget       prometheus.Gauge
	submissions      *prometheus.CounterVec
	simulatedSeconds prometheus.Counter
	clock            prometheus.Gauge

	lastTrack int
	hasLast   bool
}

// NewCollector creates a collector whose metrics carry policy as a constant label.
func NewCollector(policy string) *Collector {
	labels := prometheus.Labels{"policy": policy}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "completions_total",
			Help:        "Requests completed by the drive controller",
			ConstLabels: labels,
		}, []string{"kind"}),
		serviceTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "service_time_ms",
			Help:        "Ticks from dispatch to completion",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(5, 2, 12),
		}),
		trackJump: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "track_jump_tracks",
			Help:        "Track distance between consecutive completions",
			ConstLabels: labels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		rateBudget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "rate_budget_requests",
			Help:        "Request budget of the current simulated second (-1 = unlimited)",
			ConstLabels: labels,
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "submissions_total",
			Help:        "Requests accepted from each process in finished simulated seconds",
			ConstLabels: labels,
		}, []string{"process"}),
		simulatedSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "simulated_seconds_total",
			Help:        "Simulated second boundaries crossed",
			ConstLabels: labels,
		}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "clock_ms",
			Help:        "Simulation clock at the latest completion",
			ConstLabels: labels,
		}),
	}
	c.registry.MustRegister(
		c.completions,
		c.serviceTime,
		c.trackJump,
		c.rateBudget,
		c.submissions,
		c.simulatedSeconds,
		c.clock,
	)
	return c
}

// RecordCompletion updates completion metrics.
func (c *Collector) RecordCompletion(rec trace.CompletionRecord) {
	c.completions.WithLabelValues(rec.Kind).Inc()
	c.serviceTime.Observe(float64(rec.ElapsedMs))
	if c.hasLast {
		jump := rec.Track - c.lastTrack
		if jump < 0 {
			jump = -jump
		}
		c.trackJump.Observe(float64(jump))
	}
	c.lastTrack, c.hasLast = rec.Track, true
	c.clock.Set(float64(rec.Clock))
}

// RecordSecond updates the budget gauge and folds the finished second's
// submissions into the per-process counters.
func (c *Collector) RecordSecond(rec trace.SecondRecord) {
	c.simulatedSeconds.Inc()
	c.rateBudget.Set(float64(rec.Budget))
	for p, n := range rec.PrevSubmitted {
		c.submissions.WithLabelValues(strconv.Itoa(p)).Add(float64(n))
	}
}

// Registry returns the collector's private registry, e.g. for promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// suitable for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
