package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/disksched-sim/disksched-sim/sim"
	"github.com/disksched-sim/disksched-sim/sim/recording"
	"github.com/disksched-sim/disksched-sim/sim/telemetry"
	"github.com/disksched-sim/disksched-sim/sim/trace"
	"github.com/disksched-sim/disksched-sim/sim/workload"
)

// autoRecordPath makes --record-db pick a fresh disksched_<xid>.sqlite3 name.
const autoRecordPath = "auto"

// configFlags holds the CLI flags that shape a sim.SimConfig.
type configFlags struct {
	configPath    string // YAML config layered over the preset
	defaultsFile  string // file holding named presets
	preset        string // preset name, empty for built-in defaults
	policy        string
	queueCapacity int
	quantum       int
	maxRPS        int
	processes     int
	tracks        int
	seed          int64
	completions   int
	horizon       int64
	traceLevel    string
}

var (
	opts        configFlags
	logLevel    string // Log verbosity level
	recordDB    string // SQLite output, empty disables recording
	metricsFile string // Prometheus textfile output, empty disables metrics
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "disksched-sim",
	Short: "Tick-driven simulator for disk scheduling policies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
	SilenceUsage: true,
}

// runCmd executes one simulation using parameters from the config layers and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the disk scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := opts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if _, err := runSimulation(cfg, cmd.OutOrStdout(), outputOptions{recordDB: recordDB, metricsFile: metricsFile}); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// register adds the config flags to fs. Flag defaults mirror sim.DefaultConfig();
// only flags set explicitly override the preset and config file.
func (f *configFlags) register(fs *pflag.FlagSet) {
	def := sim.DefaultConfig()
	fs.StringVar(&f.configPath, "config", "", "YAML simulation config (unknown keys are rejected)")
	fs.StringVar(&f.defaultsFile, "defaults-file", "defaults.yaml", "File holding named presets")
	fs.StringVar(&f.preset, "preset", "", "Preset from the defaults file to start from")
	fs.StringVar(&f.policy, "policy", def.Policy.Name, "Selection policy (fcfs, sstf, flook)")
	fs.IntVar(&f.queueCapacity, "queue-capacity", def.Policy.QueueCapacity, "Pending request capacity of the drive controller")
	fs.IntVar(&f.quantum, "quantum", def.Scheduler.TimeQuantumMs, "Round-robin time quantum (ms)")
	fs.IntVar(&f.maxRPS, "max-rps", def.Scheduler.MaxRequestsPerSecond, "Maximum requests per simulated second (0 = no cap)")
	fs.IntVar(&f.processes, "processes", def.Process.Count, "Number of workload processes")
	fs.IntVar(&f.tracks, "tracks", def.Drive.Tracks, "Number of drive tracks")
	fs.Int64Var(&f.seed, "seed", def.Run.Seed, "Seed for workload generation and all random draws")
	fs.IntVar(&f.completions, "completions", def.Run.TargetCompletions, "Stop after this many completed requests")
	fs.Int64Var(&f.horizon, "horizon", def.Run.HorizonMs, "Stop after this many ticks (0 = no horizon)")
	fs.StringVar(&f.traceLevel, "trace-level", def.Run.TraceLevel, "Trace level (none, completions, full)")
}

// resolve builds the effective config: built-in defaults, then the preset,
// then the config file, then explicitly changed flags.
func (f *configFlags) resolve(fs *pflag.FlagSet) (sim.SimConfig, error) {
	cfg := sim.DefaultConfig()
	if f.preset != "" {
		presets, err := loadPresets(f.defaultsFile)
		if err != nil {
			return cfg, err
		}
		if cfg, err = presets.Apply(f.preset, cfg); err != nil {
			return cfg, err
		}
	}
	if f.configPath != "" {
		data, err := os.ReadFile(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = sim.DecodeConfig(data, cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", f.configPath, err)
		}
	}

	if fs.Changed("policy") {
		cfg.Policy.Name = f.policy
	}
	if fs.Changed("queue-capacity") {
		cfg.Policy.QueueCapacity = f.queueCapacity
	}
	if fs.Changed("quantum") {
		cfg.Scheduler.TimeQuantumMs = f.quantum
	}
	if fs.Changed("max-rps") {
		cfg.Scheduler.MaxRequestsPerSecond = f.maxRPS
	}
	if fs.Changed("processes") {
		cfg.Process.Count = f.processes
	}
	if fs.Changed("tracks") {
		cfg.Drive.Tracks = f.tracks
	}
	if fs.Changed("seed") {
		cfg.Run.Seed = f.seed
	}
	if fs.Changed("completions") {
		cfg.Run.TargetCompletions = f.completions
	}
	if fs.Changed("horizon") {
		cfg.Run.HorizonMs = f.horizon
	}
	if fs.Changed("trace-level") {
		cfg.Run.TraceLevel = f.traceLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// outputOptions selects the optional run outputs.
type outputOptions struct {
	recordDB    string // "" disables recording, autoRecordPath picks a fresh name
	metricsFile string // "" disables the Prometheus textfile
}

// runSimulation generates the workload, runs it to the target and writes the
// metrics report to out.
func runSimulation(cfg sim.SimConfig, out io.Writer, o outputOptions) (*sim.Simulator, error) {
	layout, err := workload.GenerateLayout(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating workload: %w", err)
	}
	s := sim.NewSimulator(cfg, layout)

	var collector *telemetry.Collector
	if o.metricsFile != "" {
		collector = telemetry.NewCollector(cfg.Policy.Name)
		s.AddObserver(collector)
	}

	var rec *recording.Recorder
	if o.recordDB != "" {
		path := o.recordDB
		if path == autoRecordPath {
			path = ""
		}
		if rec, err = recording.New(path); err != nil {
			return nil, err
		}
		if err := rec.RecordRun(cfg); err != nil {
			_ = rec.Close()
			return nil, err
		}
		if err := rec.RecordProcesses(s.Processes); err != nil {
			_ = rec.Close()
			return nil, err
		}
		s.AddObserver(rec)
	}

	logrus.Infof("Starting simulation: policy=%s queue=%d processes=%d tracks=%d max-rps=%d seed=%d target=%d",
		cfg.Policy.Name, cfg.Policy.QueueCapacity, cfg.Process.Count, cfg.Drive.Tracks,
		cfg.Scheduler.MaxRequestsPerSecond, cfg.Run.Seed, cfg.Run.TargetCompletions)
	startTime := time.Now()
	s.RunUntilCompletions(cfg.Run.TargetCompletions)
	logrus.Infof("Simulated %d ms in %s", s.Clock, time.Since(startTime))

	s.Metrics.Fprint(out, cfg.Policy.Name)
	if s.Trace != nil {
		printTraceSummary(out, trace.Summarize(s.Trace))
	}

	if rec != nil {
		if err := rec.Close(); err != nil {
			return s, err
		}
		fmt.Fprintf(out, "Recorded run %s to %s\n", rec.RunID(), rec.Path())
	}
	if collector != nil {
		if err := collector.WriteTextfile(o.metricsFile); err != nil {
			return s, err
		}
		fmt.Fprintf(out, "Metrics written to %s\n", o.metricsFile)
	}
	return s, nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Traced Completions   : %d (%d reads, %d writes)\n", ts.TotalCompletions, ts.ReadCount, ts.WriteCount)
	fmt.Fprintf(w, "Mean Elapsed         : %.2f ms\n", ts.MeanElapsedMs)
	fmt.Fprintf(w, "Max Elapsed          : %d ms\n", ts.MaxElapsedMs)
	fmt.Fprintf(w, "Tracks Travelled     : %d\n", ts.TotalSeekTracks)
	if ts.MeanBudget > 0 {
		fmt.Fprintf(w, "Mean Budget          : %.2f requests/s\n", ts.MeanBudget)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	opts.register(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&recordDB, "record-db", "", `Record the run into this SQLite file ("auto" picks disksched_<xid>.sqlite3)`)
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in the textfile format to this path")

	rootCmd.AddCommand(runCmd, compareCmd, layoutCmd, configCmd, presetsCmd)
}
