package ds

// EpochState is the committee serving an epoch together with the performance
// ledger accounted for the epoch before it. The root state of a chain serves
// its first epoch and carries an empty or operator supplied ledger.
type EpochState struct {
	Epoch     uint64
	Committee Committee
	Ledger    PerformanceLedger
}

// Copy returns a deep copy of the state.
func (s *EpochState) Copy() *EpochState {
	return &EpochState{
		Epoch:     s.Epoch,
		Committee: s.Committee.Copy(),
		Ledger:    s.Ledger.Copy(),
	}
}
