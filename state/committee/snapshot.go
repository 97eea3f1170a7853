package committee

import (
	"github.com/shardchain/dscommittee/model/ds"
)

// Snapshot is an immutable view of the committee state after a finalized DS
// block. Accessors returning collections return copies, so callers may
// modify them freely.
type Snapshot struct {
	state *ds.EpochState
}

func newSnapshot(state *ds.EpochState) *Snapshot {
	return &Snapshot{state: state}
}

// Epoch returns the epoch the committee serves.
func (s *Snapshot) Epoch() uint64 {
	return s.state.Epoch
}

func (s *Snapshot) Committee() ds.Committee {
	return s.state.Committee.Copy()
}

// Ledger returns the performance scores accounted for the previous epoch.
func (s *Snapshot) Ledger() ds.PerformanceLedger {
	return s.state.Ledger.Copy()
}

func (s *Snapshot) Size() int {
	return s.state.Committee.Size()
}

func (s *Snapshot) Fingerprint() [32]byte {
	return s.state.Committee.Fingerprint()
}

// Member returns the member with the given key and its position.
func (s *Snapshot) Member(pk ds.PubKey) (ds.Member, int, bool) {
	index, ok := s.state.Committee.IndexOf(pk)
	if !ok {
		return ds.Member{}, -1, false
	}
	return s.state.Committee[index], index, true
}

func (s *Snapshot) Score(pk ds.PubKey) (uint32, bool) {
	score, ok := s.state.Ledger[pk]
	return score, ok
}

// EpochState returns a copy of the underlying state.
func (s *Snapshot) EpochState() *ds.EpochState {
	return s.state.Copy()
}
