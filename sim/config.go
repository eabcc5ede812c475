package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/disksched-sim/disksched-sim/sim/trace"
)

// DriveConfig groups the physical drive parameters.
type DriveConfig struct {
	Tracks              int `yaml:"tracks"`                  // number of tracks (> 0)
	SeekMsPerTrack      int `yaml:"seek_ms_per_track"`       // head movement time per track
	RotationMs          int `yaml:"rotation_ms"`             // rotational latency after a seek
	FirstToOuterTrackMs int `yaml:"first_to_outer_track_ms"` // full-stroke time, reported but not used by the seek model
}

// PolicyConfig groups selection policy parameters.
type PolicyConfig struct {
	Name          string `yaml:"name"`           // "fcfs" (default), "sstf", "flook"
	QueueCapacity int    `yaml:"queue_capacity"` // pending query bound (flook: split over two buffers)
}

// SchedulerConfig groups CPU scheduler parameters.
type SchedulerConfig struct {
	TimeQuantumMs        int `yaml:"time_quantum_ms"`
	MaxRequestsPerSecond int `yaml:"max_requests_per_second"` // 0 = no rate cap
}

// ProcessConfig groups workload process parameters.
type ProcessConfig struct {
	Count            int `yaml:"count"`
	CreationTimeMs   int `yaml:"creation_time_ms"`
	ProcessingTimeMs int `yaml:"processing_time_ms"`
}

// WorkloadConfig groups file layout generation parameters.
type WorkloadConfig struct {
	NeighboringSectorProbability float64 `yaml:"neighboring_sector_probability"` // chance the next block is adjacent
	ReadOnlyProbability          float64 `yaml:"read_only_probability"`
}

// RunConfig groups run control parameters.
type RunConfig struct {
	Seed              int64  `yaml:"seed"`
	TargetCompletions int    `yaml:"target_completions"`
	HorizonMs         int64  `yaml:"horizon_ms"`  // 0 = no horizon
	TraceLevel        string `yaml:"trace_level"` // "none", "completions", "full"
}

// SimConfig is the full simulation configuration, loadable from a YAML file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type SimConfig struct {
	Drive     DriveConfig     `yaml:"drive"`
	Policy    PolicyConfig    `yaml:"policy"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Process   ProcessConfig   `yaml:"process"`
	Workload  WorkloadConfig  `yaml:"workload"`
	Run       RunConfig       `yaml:"run"`
}

// DefaultConfig returns the reference experiment: a 500-track drive, ten
// processes, a 20-slot queue and 100 000 completions.
func DefaultConfig() SimConfig {
	return SimConfig{
		Drive: DriveConfig{
			Tracks:              500,
			SeekMsPerTrack:      10,
			RotationMs:          8,
			FirstToOuterTrackMs: 130,
		},
		Policy: PolicyConfig{
			Name:          PolicyFCFS,
			QueueCapacity: 20,
		},
		Scheduler: SchedulerConfig{
			TimeQuantumMs:        20,
			MaxRequestsPerSecond: 0,
		},
		Process: ProcessConfig{
			Count:            10,
			CreationTimeMs:   7,
			ProcessingTimeMs: 7,
		},
		Workload: WorkloadConfig{
			NeighboringSectorProbability: 0.3,
			ReadOnlyProbability:          0.5,
		},
		Run: RunConfig{
			Seed:              1303,
			TargetCompletions: 100_000,
			HorizonMs:         0,
			TraceLevel:        string(trace.TraceLevelNone),
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig(). Keys absent from the
// file keep their defaults; unknown keys are an error.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := DecodeConfig(data, DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// DecodeConfig decodes YAML data over base with strict field checking.
// The result is not validated.
func DecodeConfig(data []byte, base SimConfig) (SimConfig, error) {
	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all names and parameter ranges are valid.
func (c *SimConfig) Validate() error {
	if c.Drive.Tracks < 1 {
		return fmt.Errorf("drive.tracks must be >= 1, got %d", c.Drive.Tracks)
	}
	if c.Drive.SeekMsPerTrack < 1 {
		return fmt.Errorf("drive.seek_ms_per_track must be >= 1, got %d", c.Drive.SeekMsPerTrack)
	}
	if c.Drive.RotationMs < 1 {
		return fmt.Errorf("drive.rotation_ms must be >= 1, got %d", c.Drive.RotationMs)
	}
	if c.Drive.FirstToOuterTrackMs < 0 {
		return fmt.Errorf("drive.first_to_outer_track_ms must be non-negative, got %d", c.Drive.FirstToOuterTrackMs)
	}
	if !IsValidPolicy(c.Policy.Name) {
		return fmt.Errorf("unknown selection policy %q", c.Policy.Name)
	}
	if c.Policy.QueueCapacity < 1 {
		return fmt.Errorf("policy.queue_capacity must be >= 1, got %d", c.Policy.QueueCapacity)
	}
	if c.Policy.Name == PolicyFLOOK && c.Policy.QueueCapacity < 2 {
		return fmt.Errorf("policy.queue_capacity must be >= 2 for %s (two buffers of capacity/2), got %d",
			PolicyFLOOK, c.Policy.QueueCapacity)
	}
	if c.Scheduler.TimeQuantumMs < 1 {
		return fmt.Errorf("scheduler.time_quantum_ms must be >= 1, got %d", c.Scheduler.TimeQuantumMs)
	}
	if c.Process.Count < 1 {
		return fmt.Errorf("process.count must be >= 1, got %d", c.Process.Count)
	}
	if c.Process.CreationTimeMs < 1 || c.Process.ProcessingTimeMs < 1 {
		return fmt.Errorf("process.creation_time_ms and process.processing_time_ms must be >= 1, got %d and %d",
			c.Process.CreationTimeMs, c.Process.ProcessingTimeMs)
	}
	if p := c.Workload.NeighboringSectorProbability; p < 0 || p > 1 {
		return fmt.Errorf("workload.neighboring_sector_probability must be in [0, 1], got %f", p)
	}
	if p := c.Workload.ReadOnlyProbability; p < 0 || p > 1 {
		return fmt.Errorf("workload.read_only_probability must be in [0, 1], got %f", p)
	}
	if c.Run.TargetCompletions < 0 {
		return fmt.Errorf("run.target_completions must be non-negative, got %d", c.Run.TargetCompletions)
	}
	if c.Run.HorizonMs < 0 {
		return fmt.Errorf("run.horizon_ms must be non-negative, got %d", c.Run.HorizonMs)
	}
	if !trace.IsValidTraceLevel(c.Run.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", c.Run.TraceLevel)
	}
	return nil
}
