package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/disksched-sim/disksched-sim/sim"
	"github.com/disksched-sim/disksched-sim/sim/workload"
)

// comparisonRow is one policy's result in the compare table.
type comparisonRow struct {
	Policy         string
	Summary        sim.MetricsSummary
	ThrottledTicks int64
}

// compareCmd runs every selection policy over the same workload
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run every selection policy on the same workload and compare them",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := opts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rows, err := comparePolicies(cfg, sim.PolicyNames())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seed %d, %d processes, %d tracks, queue %d, target %d completions\n",
			cfg.Run.Seed, cfg.Process.Count, cfg.Drive.Tracks, cfg.Policy.QueueCapacity, cfg.Run.TargetCompletions)
		renderComparison(cmd.OutOrStdout(), rows)
	},
}

// comparePolicies runs cfg once per policy. The layout is generated once so
// every policy serves the same files; the rest of the randomness comes from
// the shared seed.
func comparePolicies(cfg sim.SimConfig, policies []string) ([]comparisonRow, error) {
	layout, err := workload.GenerateLayout(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating workload: %w", err)
	}
	rows := make([]comparisonRow, 0, len(policies))
	for _, name := range policies {
		c := cfg
		c.Policy.Name = name
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("policy %s: %w", name, err)
		}
		s := sim.NewSimulator(c, layout)
		s.RunUntilCompletions(c.Run.TargetCompletions)
		rows = append(rows, comparisonRow{
			Policy:         name,
			Summary:        s.Metrics.Summary(),
			ThrottledTicks: s.Metrics.ThrottledTicks,
		})
	}
	return rows, nil
}

func renderComparison(w io.Writer, rows []comparisonRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Policy", "Completed", "Sim ms", "RPS", "Mean ms", "p50", "p90", "p99", "Max", "Queue full", "Throttled"})
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		s := r.Summary
		data = append(data, []string{
			r.Policy,
			strconv.Itoa(s.CompletedRequests),
			strconv.FormatInt(s.SimTimeMs, 10),
			fmt.Sprintf("%.2f", s.AverageRPS),
			fmt.Sprintf("%.2f", s.MeanServiceMs),
			fmt.Sprintf("%.0f", s.P50ServiceMs),
			fmt.Sprintf("%.0f", s.P90ServiceMs),
			fmt.Sprintf("%.0f", s.P99ServiceMs),
			fmt.Sprintf("%.0f", s.MaxServiceMs),
			strconv.Itoa(s.QueueFullRejections),
			strconv.FormatInt(r.ThrottledTicks, 10),
		})
	}
	table.AppendBulk(data)
	table.Render()
}
