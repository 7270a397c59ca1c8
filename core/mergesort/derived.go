// Package mergesort implements the External Merge-Sort Engine:
// replacement-selection run generation, cascaded K-way merges under a
// fixed memory budget, and a pull-driven online final merge.
package mergesort

import "math"

// Params are the memory-budget inputs to the sort engine. All four
// ratios must lie in [0, 1].
type Params struct {
	ObjectSize             int64
	MemSize                int64
	FinalMemSize           int64
	BlockSize              int64
	FirstOutputBufferRatio float64
	OutputBufferRatio      float64
	InputBufferRatio       float64
	FinalInputBufferRatio  float64
}

// derived holds every page-aligned quantity computed from Params. None
// of this is a library concern - it is the sort engine's own
// buffer-sizing arithmetic.
type derived struct {
	firstOutputBufferSize int64
	heapSize              int64
	outputBufferSize      int64
	inputBufferSize       int64
	fanIn                 int64
	finalInputBufferSize  int64
	finalFanIn            int64
}

// ceilToBlock rounds x*ratio up to the next multiple of blockSize.
func ceilToBlock(x int64, ratio float64, blockSize int64) int64 {
	if blockSize <= 0 {
		return 0
	}
	scaled := float64(x) * ratio / float64(blockSize)
	return int64(math.Ceil(scaled)) * blockSize
}

func deriveParams(p Params) derived {
	var d derived

	d.firstOutputBufferSize = ceilToBlock(p.MemSize-p.ObjectSize-p.BlockSize, p.FirstOutputBufferRatio, p.BlockSize)
	if d.firstOutputBufferSize < p.BlockSize {
		d.firstOutputBufferSize = p.BlockSize
	}

	d.heapSize = (p.MemSize - d.firstOutputBufferSize) / p.ObjectSize

	d.outputBufferSize = ceilToBlock(p.MemSize-p.BlockSize-2*(p.ObjectSize+p.BlockSize), p.OutputBufferRatio, p.BlockSize)

	d.inputBufferSize = ceilToBlock((p.MemSize-d.outputBufferSize)/2-(p.ObjectSize+p.BlockSize), p.InputBufferRatio, p.BlockSize)

	d.fanIn = (p.MemSize - d.outputBufferSize) / (d.inputBufferSize + p.ObjectSize)

	d.finalInputBufferSize = ceilToBlock(p.FinalMemSize-p.ObjectSize-p.BlockSize, p.FinalInputBufferRatio, p.BlockSize)

	d.finalFanIn = p.FinalMemSize / (d.finalInputBufferSize + p.ObjectSize)

	return d
}

// firstMergeFanIn computes the fan-in of the first intermediate merge,
// chosen so that exactly finalFanIn runs remain once every subsequent
// merge uses fanIn.
func firstMergeFanIn(n, finalFanIn, fanIn int64) int64 {
	if fanIn <= 1 {
		return n
	}
	mod := fanIn - 1
	return ((n-finalFanIn+fanIn-2)%mod+mod)%mod + 2
}
