package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 500, cfg.Drive.Tracks)
	assert.Equal(t, PolicyFCFS, cfg.Policy.Name)
	assert.Equal(t, 20, cfg.Policy.QueueCapacity)
	assert.Equal(t, int64(1303), cfg.Run.Seed)
}

func TestLoadConfig_PartialFile_KeepsDefaults(t *testing.T) {
	// GIVEN a file overriding only the policy and seed
	path := writeConfig(t, `
policy:
  name: flook
  queue_capacity: 8
run:
  seed: 7
`)

	// WHEN loaded
	cfg, err := LoadConfig(path)

	// THEN overridden keys change and everything else keeps its default
	require.NoError(t, err)
	assert.Equal(t, PolicyFLOOK, cfg.Policy.Name)
	assert.Equal(t, 8, cfg.Policy.QueueCapacity)
	assert.Equal(t, int64(7), cfg.Run.Seed)
	assert.Equal(t, DefaultConfig().Drive, cfg.Drive)
	assert.Equal(t, DefaultConfig().Run.TargetCompletions, cfg.Run.TargetCompletions)
}

func TestLoadConfig_UnknownKey_Rejected(t *testing.T) {
	path := writeConfig(t, `
drive:
  tracks: 10
  heads: 2
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadConfig_InvalidValue_Rejected(t *testing.T) {
	path := writeConfig(t, `
policy:
  name: elevator
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown selection policy")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSimConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *SimConfig)
		errMsg string
	}{
		{"no tracks", func(c *SimConfig) { c.Drive.Tracks = 0 }, "drive.tracks"},
		{"zero seek", func(c *SimConfig) { c.Drive.SeekMsPerTrack = 0 }, "seek_ms_per_track"},
		{"zero rotation", func(c *SimConfig) { c.Drive.RotationMs = 0 }, "rotation_ms"},
		{"negative full stroke", func(c *SimConfig) { c.Drive.FirstToOuterTrackMs = -1 }, "first_to_outer_track_ms"},
		{"unknown policy", func(c *SimConfig) { c.Policy.Name = "scan" }, "unknown selection policy"},
		{"zero capacity", func(c *SimConfig) { c.Policy.QueueCapacity = 0 }, "queue_capacity"},
		{"flook capacity one", func(c *SimConfig) { c.Policy.Name = PolicyFLOOK; c.Policy.QueueCapacity = 1 }, "two buffers"},
		{"zero quantum", func(c *SimConfig) { c.Scheduler.TimeQuantumMs = 0 }, "time_quantum_ms"},
		{"no processes", func(c *SimConfig) { c.Process.Count = 0 }, "process.count"},
		{"zero creation", func(c *SimConfig) { c.Process.CreationTimeMs = 0 }, "creation_time_ms"},
		{"probability above one", func(c *SimConfig) { c.Workload.NeighboringSectorProbability = 1.5 }, "neighboring_sector_probability"},
		{"negative probability", func(c *SimConfig) { c.Workload.ReadOnlyProbability = -0.1 }, "read_only_probability"},
		{"negative target", func(c *SimConfig) { c.Run.TargetCompletions = -1 }, "target_completions"},
		{"negative horizon", func(c *SimConfig) { c.Run.HorizonMs = -1 }, "horizon_ms"},
		{"bad trace level", func(c *SimConfig) { c.Run.TraceLevel = "verbose" }, "trace level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSimConfig_Validate_NegativeRateMeansUnlimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scheduler.MaxRequestsPerSecond = -3
	assert.NoError(t, cfg.Validate())
}

func TestDecodeConfig_LayersOverBase(t *testing.T) {
	base := DefaultConfig()
	base.Policy.Name = PolicySSTF

	cfg, err := DecodeConfig([]byte("scheduler:\n  max_requests_per_second: 30\n"), base)

	require.NoError(t, err)
	assert.Equal(t, PolicySSTF, cfg.Policy.Name)
	assert.Equal(t, 30, cfg.Scheduler.MaxRequestsPerSecond)
}

func TestDecodeConfig_EmptyDocument_ReturnsBase(t *testing.T) {
	cfg, err := DecodeConfig(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
