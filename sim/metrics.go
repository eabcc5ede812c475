// Tracks simulation-wide performance metrics: completions, service times,
// scheduler behaviour under the rate cap, and queue pressure.

package sim

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	CompletedRequests   int       // Number of requests completed
	CompletedReads      int       // Completed read requests
	CompletedWrites     int       // Completed write requests
	SubmittedRequests   int       // Requests accepted by the controller
	QueueFullRejections int       // Submissions rejected with ErrQueueFull
	ThrottledTicks      int64     // Ticks a process held a request because of the rate cap
	IdleCPUTicks        int64     // Ticks on which every process was blocked
	ServiceTimes        []float64 // ElapsedMs of every completion, in completion order
	Budgets             []int     // Request budget of every simulated second
	SimEndedTime        int64     // Clock when the run stopped (ticks)
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceTimes: make([]float64, 0),
		Budgets:      make([]int, 0),
	}
}

func (m *Metrics) observeScheduler(t SchedulerTick) {
	if t.Rollover != nil {
		m.Budgets = append(m.Budgets, t.Rollover.Budget)
	}
	if t.Idle() {
		m.IdleCPUTicks++
		return
	}
	switch t.Outcome {
	case OutcomeSubmitted:
		m.SubmittedRequests++
	case OutcomeQueueFull:
		m.QueueFullRejections++
	case OutcomeThrottled:
		m.ThrottledTicks++
	}
}

func (m *Metrics) observeCompletion(c Completion) {
	m.CompletedRequests++
	if c.Query.IsRead() {
		m.CompletedReads++
	} else {
		m.CompletedWrites++
	}
	m.ServiceTimes = append(m.ServiceTimes, float64(c.ElapsedMs))
}

// MetricsSummary holds the derived figures printed at the end of a run.
type MetricsSummary struct {
	CompletedRequests   int
	SimTimeMs           int64
	AverageRPS          float64
	MeanServiceMs       float64
	P50ServiceMs        float64
	P90ServiceMs        float64
	P99ServiceMs        float64
	MaxServiceMs        float64
	QueueFullRejections int
	IdleCPUFraction     float64
}

// Summary computes derived statistics. Percentiles use the empirical
// quantile of the service-time distribution.
func (m *Metrics) Summary() MetricsSummary {
	s := MetricsSummary{
		CompletedRequests:   m.CompletedRequests,
		SimTimeMs:           m.SimEndedTime,
		QueueFullRejections: m.QueueFullRejections,
	}
	if m.SimEndedTime > 0 {
		s.AverageRPS = float64(m.CompletedRequests) / (float64(m.SimEndedTime) / MillisPerSecond)
		s.IdleCPUFraction = float64(m.IdleCPUTicks) / float64(m.SimEndedTime)
	}
	if len(m.ServiceTimes) == 0 {
		return s
	}
	sorted := append([]float64(nil), m.ServiceTimes...)
	sort.Float64s(sorted)
	s.MeanServiceMs = stat.Mean(sorted, nil)
	s.P50ServiceMs = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90ServiceMs = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	s.P99ServiceMs = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	s.MaxServiceMs = sorted[len(sorted)-1]
	return s
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(policy string) {
	m.Fprint(os.Stdout, policy)
}

// Fprint writes the metrics report to w.
func (m *Metrics) Fprint(w io.Writer, policy string) {
	s := m.Summary()
	fmt.Fprintf(w, "=== Simulation Metrics (%s) ===\n", policy)
	fmt.Fprintf(w, "Completed Requests   : %d (%d reads, %d writes)\n", m.CompletedRequests, m.CompletedReads, m.CompletedWrites)
	fmt.Fprintf(w, "Simulation Time      : %d ms\n", s.SimTimeMs)
	fmt.Fprintf(w, "Average RPS          : %.2f\n", s.AverageRPS)
	if m.CompletedRequests > 0 {
		fmt.Fprintf(w, "Mean Service Time    : %.2f ms\n", s.MeanServiceMs)
		fmt.Fprintf(w, "Service Time p50/p90/p99 : %.0f / %.0f / %.0f ms\n", s.P50ServiceMs, s.P90ServiceMs, s.P99ServiceMs)
		fmt.Fprintf(w, "Max Service Time     : %.0f ms\n", s.MaxServiceMs)
	}
	fmt.Fprintf(w, "Queue-full Rejections: %d\n", m.QueueFullRejections)
	fmt.Fprintf(w, "Throttled Ticks      : %d\n", m.ThrottledTicks)
	fmt.Fprintf(w, "Idle CPU             : %.2f%%\n", s.IdleCPUFraction*100)
}
