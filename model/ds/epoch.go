package ds

import (
	"math"
)

// RewardNotConfigured is the block reward value callers pass when no reward
// amount is configured. Any negative reward is treated the same way.
const RewardNotConfigured int64 = -1

// EpochWindow is the half-open range of block numbers [First, First+Count)
// covered by an epoch.
type EpochWindow struct {
	First uint64
	Count uint64
}

// WindowFor returns the block window of the given epoch. Epochs are numbered
// from zero and every epoch spans blocksInEpoch blocks. The arithmetic
// saturates instead of wrapping around.
func WindowFor(epoch uint64, blocksInEpoch uint64) EpochWindow {
	if blocksInEpoch != 0 && epoch > math.MaxUint64/blocksInEpoch {
		return EpochWindow{First: math.MaxUint64, Count: 0}
	}
	first := epoch * blocksInEpoch
	count := blocksInEpoch
	if first > math.MaxUint64-count {
		count = math.MaxUint64 - first
	}
	return EpochWindow{First: first, Count: count}
}

// Contains reports whether the block number lies within the window.
func (w EpochWindow) Contains(block uint64) bool {
	return block >= w.First && block-w.First < w.Count
}

// Last returns the last block number of the window. It is only meaningful
// for non-empty windows.
func (w EpochWindow) Last() uint64 {
	return w.First + w.Count - 1
}
