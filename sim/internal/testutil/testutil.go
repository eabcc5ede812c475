// Package testutil provides shared test infrastructure for the disk
// scheduling simulator: drive-grid builders and assertion helpers used
// across sim/ and its sub-package tests. It must not import sim.
package testutil

import (
	"math"
	"testing"
)

// Grid returns an empty occupancy grid of tracks × sectorsPerTrack with the
// given absolute sectors marked as used.
func Grid(tracks, sectorsPerTrack int, used ...int) [][]bool {
	grid := make([][]bool, tracks)
	for i := range grid {
		grid[i] = make([]bool, sectorsPerTrack)
	}
	for _, s := range used {
		grid[s/sectorsPerTrack][s%sectorsPerTrack] = true
	}
	return grid
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
