package sim

import "fmt"

// FileClass is the size class of a workload file.
type FileClass string

const (
	FileSmall  FileClass = "small"  // 1 to 10 blocks
	FileMedium FileClass = "medium" // 11 to 150 blocks
	FileLarge  FileClass = "large"  // 151 to 500 blocks
)

// File is the immutable block layout of one workload.
// Blocks holds absolute sector numbers in file order.
type File struct {
	Class  FileClass
	Size   int
	blocks []int
}

// NewFile copies blocks into a new File. Panics on an empty block list,
// since a process with no blocks could never issue a request.
func NewFile(class FileClass, blocks []int) File {
	if len(blocks) == 0 {
		panic("NewFile: blocks must not be empty")
	}
	cp := make([]int, len(blocks))
	copy(cp, blocks)
	return File{Class: class, Size: len(cp), blocks: cp}
}

// Blocks returns a copy of the file's sector list.
func (f File) Blocks() []int {
	cp := make([]int, len(f.blocks))
	copy(cp, f.blocks)
	return cp
}

// Block returns the sector of the i-th block.
func (f File) Block(i int) int {
	return f.blocks[i]
}

// NumBlocks returns the number of blocks in the file.
func (f File) NumBlocks() int {
	return len(f.blocks)
}

func (f File) String() string {
	return fmt.Sprintf("File{class=%s, size=%d, blocks=%v}", f.Class, f.Size, f.blocks)
}
