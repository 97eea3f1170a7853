package storage

import (
	"github.com/shardchain/dscommittee/model/ds"
)

// EpochStates persists the committee and performance ledger published after
// each finalized DS block. Stored states are immutable.
type EpochStates interface {

	// Store persists the state and makes it the latest finalized state.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if a state for the epoch was stored before
	Store(state *ds.EpochState) error

	// ByEpoch returns the state stored for the given epoch.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no state was stored for the epoch
	ByEpoch(epoch uint64) (*ds.EpochState, error)

	// Latest returns the most recently stored state.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no state was stored yet
	Latest() (*ds.EpochState, error)

	// Epochs returns the epochs of all stored states in ascending order.
	Epochs() ([]uint64, error)
}
