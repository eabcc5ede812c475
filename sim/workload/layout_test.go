package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disksched-sim/disksched-sim/sim"
)

func testConfig(seed int64) sim.SimConfig {
	cfg := sim.DefaultConfig()
	cfg.Run.Seed = seed
	return cfg
}

func TestGenerateLayout_Deterministic_SameSeedSameLayout(t *testing.T) {
	a, err := GenerateLayout(testConfig(42))
	require.NoError(t, err)
	b, err := GenerateLayout(testConfig(42))
	require.NoError(t, err)

	require.Len(t, b.Files, len(a.Files))
	for i := range a.Files {
		assert.Equal(t, a.Files[i].Class, b.Files[i].Class, "file %d class", i)
		assert.Equal(t, a.Files[i].Blocks(), b.Files[i].Blocks(), "file %d blocks", i)
	}
	assert.Equal(t, a.ReadOnly, b.ReadOnly)
	assert.Equal(t, a.Grid, b.Grid)
}

func TestGenerateLayout_OneFilePerProcess_SizesWithinClass(t *testing.T) {
	cfg := testConfig(7)
	cfg.Process.Count = 30

	layout, err := GenerateLayout(cfg)
	require.NoError(t, err)
	require.Len(t, layout.Files, 30)
	require.Len(t, layout.ReadOnly, 30)
	require.Len(t, layout.Grid, cfg.Drive.Tracks)

	total := 0
	for i, f := range layout.Files {
		lo, hi := classSizeRange(f.Class)
		assert.GreaterOrEqual(t, f.Size, lo, "file %d (%s)", i, f.Class)
		assert.LessOrEqual(t, f.Size, hi, "file %d (%s)", i, f.Class)
		assert.Equal(t, f.Size, f.NumBlocks())
		total += f.Size
	}
	// every block marks exactly one distinct sector
	assert.Equal(t, total, UsedSectors(layout.Grid))
}

func TestGenerate_AlwaysNeighboring_PacksFromSectorZero(t *testing.T) {
	// GIVEN every block lands on the adjacent sector
	wc := sim.WorkloadConfig{NeighboringSectorProbability: 1, ReadOnlyProbability: 0}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(3)).ForSubsystem(sim.SubsystemWorkload)

	// WHEN three files are laid out
	layout, err := generate(rng, 500, 3, wc)
	require.NoError(t, err)

	// THEN blocks are 0, 1, 2, ... across file boundaries
	want := 0
	for _, f := range layout.Files {
		for _, b := range f.Blocks() {
			assert.Equal(t, want, b)
			want++
		}
	}
	assert.Equal(t, []bool{false, false, false}, layout.ReadOnly)
}

func TestGenerate_NeverNeighboring_SkipsOneSectorPerBlock(t *testing.T) {
	wc := sim.WorkloadConfig{NeighboringSectorProbability: 0, ReadOnlyProbability: 1}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(3)).ForSubsystem(sim.SubsystemWorkload)

	layout, err := generate(rng, 500, 2, wc)
	require.NoError(t, err)

	want := 1
	for _, f := range layout.Files {
		for _, b := range f.Blocks() {
			assert.Equal(t, want, b)
			assert.False(t, layout.Grid[(b-1)/sim.SectorsPerTrack][(b-1)%sim.SectorsPerTrack],
				"sector before block %d must stay free", b)
			want += 2
		}
	}
	assert.Equal(t, []bool{true, true}, layout.ReadOnly)
}

func TestGenerate_DriveTooSmall_ReturnsError(t *testing.T) {
	// 60 files of at least one block, each costing two sectors, cannot fit in 100 sectors
	wc := sim.WorkloadConfig{NeighboringSectorProbability: 0, ReadOnlyProbability: 0.5}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1)).ForSubsystem(sim.SubsystemWorkload)

	_, err := generate(rng, 1, 60, wc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not fit")
}

func TestGenerate_InvalidArguments_ReturnError(t *testing.T) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1)).ForSubsystem(sim.SubsystemWorkload)
	_, err := generate(rng, 0, 1, sim.WorkloadConfig{})
	assert.Error(t, err)
	_, err = generate(rng, 1, -1, sim.WorkloadConfig{})
	assert.Error(t, err)
}

func TestGenerateLayout_FeedsSimulator(t *testing.T) {
	cfg := testConfig(11)
	cfg.Run.TargetCompletions = 50

	layout, err := GenerateLayout(cfg)
	require.NoError(t, err)

	s := sim.NewSimulator(cfg, layout)
	s.RunUntilCompletions(cfg.Run.TargetCompletions)
	assert.Equal(t, 50, s.Metrics.CompletedRequests)
}
