package workload

import (
	"fmt"
	"strings"

	"github.com/disksched-sim/disksched-sim/sim"
)

const (
	usedSector = "■"
	freeSector = "□"
)

// RenderGrid draws the occupancy map: one line per track, the track number
// followed by a tab and one glyph per sector.
func RenderGrid(grid [][]bool) string {
	var sb strings.Builder
	for track, sectors := range grid {
		fmt.Fprintf(&sb, "%d\t", track)
		for _, used := range sectors {
			if used {
				sb.WriteString(usedSector)
			} else {
				sb.WriteString(freeSector)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// LastUsedTrack returns the highest track holding a file block, or -1 on an empty grid.
// Used to crop the rendered map to the part of the drive the workload touches.
func LastUsedTrack(grid [][]bool) int {
	for track := len(grid) - 1; track >= 0; track-- {
		for _, used := range grid[track] {
			if used {
				return track
			}
		}
	}
	return -1
}

// FileTracks returns the first and last track spanned by f.
func FileTracks(f sim.File) (first, last int) {
	return f.Block(0) / sim.SectorsPerTrack, f.Block(f.NumBlocks()-1) / sim.SectorsPerTrack
}
