// Package workload generates the file layouts the simulated processes work on.
package workload

import (
	"fmt"
	"math/rand"

	"github.com/disksched-sim/disksched-sim/sim"
)

// fileClasses is the draw order of file size classes. Each class is equally likely.
var fileClasses = []sim.FileClass{sim.FileSmall, sim.FileMedium, sim.FileLarge}

// classSizeRange returns the inclusive block-count bounds of a file class.
func classSizeRange(class sim.FileClass) (lo, hi int) {
	switch class {
	case sim.FileSmall:
		return 1, 10
	case sim.FileMedium:
		return 11, 150
	case sim.FileLarge:
		return 151, 500
	default:
		panic(fmt.Sprintf("unhandled file class %q", class))
	}
}

// GenerateLayout lays out one file per process on an empty drive.
// Deterministic given the same config: all draws come from the workload
// RNG subsystem of cfg.Run.Seed.
// Returns an error if the files do not fit on cfg.Drive.Tracks tracks.
func GenerateLayout(cfg sim.SimConfig) (sim.Layout, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Run.Seed))
	return generate(rng.ForSubsystem(sim.SubsystemWorkload), cfg.Drive.Tracks, cfg.Process.Count, cfg.Workload)
}

// generate places files back to back from sector 0. Each block lands on the
// sector right after the previous one with probability
// NeighboringSectorProbability; otherwise one sector is left free.
// Per file the draw order is class, size, one draw per block, read-only flag.
func generate(rng *rand.Rand, tracks, count int, wc sim.WorkloadConfig) (sim.Layout, error) {
	if tracks < 1 {
		return sim.Layout{}, fmt.Errorf("drive must have at least one track, got %d", tracks)
	}
	if count < 0 {
		return sim.Layout{}, fmt.Errorf("process count must be non-negative, got %d", count)
	}
	capacity := tracks * sim.SectorsPerTrack

	grid := make([][]bool, tracks)
	for i := range grid {
		grid[i] = make([]bool, sim.SectorsPerTrack)
	}
	layout := sim.Layout{
		Grid:     grid,
		Files:    make([]sim.File, 0, count),
		ReadOnly: make([]bool, 0, count),
	}

	next := 0
	for i := 0; i < count; i++ {
		class := fileClasses[rng.Intn(len(fileClasses))]
		lo, hi := classSizeRange(class)
		size := lo + rng.Intn(hi-lo+1)

		blocks := make([]int, size)
		for j := range blocks {
			block := next + 1
			if rng.Float64() < wc.NeighboringSectorProbability {
				block = next
			}
			if block >= capacity {
				return sim.Layout{}, fmt.Errorf("file %d (%s, %d blocks) does not fit: block %d beyond last sector %d",
					i, class, size, block, capacity-1)
			}
			grid[block/sim.SectorsPerTrack][block%sim.SectorsPerTrack] = true
			blocks[j] = block
			next = block + 1
		}

		layout.Files = append(layout.Files, sim.NewFile(class, blocks))
		layout.ReadOnly = append(layout.ReadOnly, rng.Float64() < wc.ReadOnlyProbability)
	}
	return layout, nil
}

// UsedSectors counts the occupied sectors of a grid.
func UsedSectors(grid [][]bool) int {
	n := 0
	for _, track := range grid {
		for _, used := range track {
			if used {
				n++
			}
		}
	}
	return n
}
