package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disksched-sim/disksched-sim/sim"
)

// parseConfigFlags registers a fresh configFlags on its own flag set and parses args.
func parseConfigFlags(t *testing.T, args ...string) (*configFlags, *pflag.FlagSet) {
	t.Helper()
	f := &configFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f, fs
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolve_NoFlags_DefaultConfig(t *testing.T) {
	f, fs := parseConfigFlags(t)

	cfg, err := f.resolve(fs)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestResolve_ChangedFlags_Override(t *testing.T) {
	f, fs := parseConfigFlags(t, "--policy", "sstf", "--max-rps", "30", "--completions", "500", "--horizon", "9000")

	cfg, err := f.resolve(fs)

	require.NoError(t, err)
	assert.Equal(t, sim.PolicySSTF, cfg.Policy.Name)
	assert.Equal(t, 30, cfg.Scheduler.MaxRequestsPerSecond)
	assert.Equal(t, 500, cfg.Run.TargetCompletions)
	assert.Equal(t, int64(9000), cfg.Run.HorizonMs)
	assert.Equal(t, sim.DefaultConfig().Drive, cfg.Drive)
}

func TestResolve_ConfigFile_FlagsWinOverFile(t *testing.T) {
	// GIVEN a config file setting the policy and seed
	path := writeFile(t, "config.yaml", "policy:\n  name: flook\n  queue_capacity: 8\nrun:\n  seed: 7\n")

	// WHEN --seed is also passed
	f, fs := parseConfigFlags(t, "--config", path, "--seed", "9")
	cfg, err := f.resolve(fs)

	// THEN the flag overrides the file and the file overrides the defaults
	require.NoError(t, err)
	assert.Equal(t, sim.PolicyFLOOK, cfg.Policy.Name)
	assert.Equal(t, 8, cfg.Policy.QueueCapacity)
	assert.Equal(t, int64(9), cfg.Run.Seed)
}

func TestResolve_UnchangedFlag_KeepsFileValue(t *testing.T) {
	path := writeFile(t, "config.yaml", "policy:\n  queue_capacity: 40\n")
	f, fs := parseConfigFlags(t, "--config", path)

	cfg, err := f.resolve(fs)

	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Policy.QueueCapacity, "flag default must not clobber the file")
}

func TestResolve_PresetThenConfigThenFlags(t *testing.T) {
	defaults := writeFile(t, "defaults.yaml", `
version: "1"
presets:
  tiny:
    drive:
      tracks: 50
    process:
      count: 2
`)
	config := writeFile(t, "config.yaml", "process:\n  count: 3\n")
	f, fs := parseConfigFlags(t, "--defaults-file", defaults, "--preset", "tiny", "--config", config, "--tracks", "60")

	cfg, err := f.resolve(fs)

	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Drive.Tracks)
	assert.Equal(t, 3, cfg.Process.Count)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}, "reading config"},
		{"zero queue capacity", []string{"--queue-capacity", "0"}, "invalid config"},
		{"flook needs two slots", []string{"--policy", "flook", "--queue-capacity", "1"}, "invalid config"},
		{"unknown policy", []string{"--policy", "scan"}, "unknown selection policy"},
		{"unknown trace level", []string{"--trace-level", "verbose"}, "unknown trace level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, fs := parseConfigFlags(t, tc.args...)
			_, err := f.resolve(fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func smallRunConfig(policy string) sim.SimConfig {
	cfg := sim.DefaultConfig()
	cfg.Policy.Name = policy
	cfg.Run.TargetCompletions = 50
	return cfg
}

func TestRunSimulation_PrintsMetrics(t *testing.T) {
	var out bytes.Buffer

	s, err := runSimulation(smallRunConfig(sim.PolicySSTF), &out, outputOptions{})

	require.NoError(t, err)
	assert.Equal(t, 50, s.Metrics.CompletedRequests)
	assert.Contains(t, out.String(), "=== Simulation Metrics (sstf) ===")
	assert.Contains(t, out.String(), "Completed Requests   : 50 (")
	assert.NotContains(t, out.String(), "Trace Summary")
}

func TestRunSimulation_TraceLevel_PrintsTraceSummary(t *testing.T) {
	cfg := smallRunConfig(sim.PolicyFCFS)
	cfg.Run.TraceLevel = "completions"
	var out bytes.Buffer

	_, err := runSimulation(cfg, &out, outputOptions{})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "=== Trace Summary ===")
	assert.Contains(t, out.String(), "Traced Completions   : 50 (")
}

func TestRunSimulation_WritesRecordingAndMetrics(t *testing.T) {
	// GIVEN both optional outputs enabled
	dir := t.TempDir()
	o := outputOptions{
		recordDB:    filepath.Join(dir, "run.sqlite3"),
		metricsFile: filepath.Join(dir, "run.prom"),
	}
	var out bytes.Buffer

	// WHEN the run finishes
	_, err := runSimulation(smallRunConfig(sim.PolicyFLOOK), &out, o)

	// THEN both files exist and the report names them
	require.NoError(t, err)
	assert.FileExists(t, o.recordDB)
	assert.FileExists(t, o.metricsFile)
	assert.Contains(t, out.String(), "to "+o.recordDB)
	assert.Contains(t, out.String(), "Metrics written to "+o.metricsFile)

	prom, err := os.ReadFile(o.metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `policy="flook"`)
}

func TestRunSimulation_ExistingRecordDB_Refused(t *testing.T) {
	path := writeFile(t, "taken.sqlite3", "")
	var out bytes.Buffer

	_, err := runSimulation(smallRunConfig(sim.PolicyFCFS), &out, outputOptions{recordDB: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, out.String())
}
