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

var showGrid bool // print the occupancy map below the process table

// layoutCmd prints the generated workload without running it
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the generated workload: processes, files and drive occupancy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := opts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := printLayout(cmd.OutOrStdout(), cfg, showGrid); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// printLayout writes one row per process and, when grid is set, the occupancy
// map cropped to the last used track.
func printLayout(w io.Writer, cfg sim.SimConfig, grid bool) error {
	layout, err := workload.GenerateLayout(cfg)
	if err != nil {
		return fmt.Errorf("generating workload: %w", err)
	}
	// The request style is drawn when processes are built.
	s := sim.NewSimulator(cfg, layout)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Process", "Class", "Size", "Read-only", "Style", "First track", "Last track"})
	for _, p := range s.Processes {
		f := p.File()
		first, last := workload.FileTracks(f)
		table.Append([]string{
			strconv.Itoa(int(p.ID())),
			string(f.Class),
			strconv.Itoa(f.Size),
			strconv.FormatBool(p.ReadOnly()),
			string(p.Style()),
			strconv.Itoa(first),
			strconv.Itoa(last),
		})
	}
	table.Render()

	used := workload.UsedSectors(layout.Grid)
	fmt.Fprintf(w, "%d of %d sectors used\n", used, cfg.Drive.Tracks*sim.SectorsPerTrack)
	if grid {
		last := workload.LastUsedTrack(layout.Grid)
		fmt.Fprint(w, workload.RenderGrid(layout.Grid[:last+1]))
	}
	return nil
}

func init() {
	layoutCmd.Flags().BoolVar(&showGrid, "grid", true, "Print the drive occupancy map")
}
