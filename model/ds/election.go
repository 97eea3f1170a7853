package ds

// ElectionResult is the decoded membership change carried by a finalized DS
// block header.
//
// Removals distinguishes two cases: a nil slice means the block does not carry
// a removal list at all (older block format) and eviction falls back to
// trimming the tail, while a non-nil slice, even an empty one, is an explicit
// list of members to remove.
type ElectionResult struct {
	Winners  map[PubKey]Endpoint `json:"winners"`
	Removals []PubKey            `json:"removals"`
}

// NewElectionResult creates an election result without a removal list.
func NewElectionResult(winners map[PubKey]Endpoint) ElectionResult {
	return ElectionResult{Winners: winners}
}

// NewElectionResultWithRemovals creates an election result carrying an
// explicit removal list. A nil list is normalized to an empty one.
func NewElectionResultWithRemovals(winners map[PubKey]Endpoint, removals []PubKey) ElectionResult {
	if removals == nil {
		removals = []PubKey{}
	}
	return ElectionResult{Winners: winners, Removals: removals}
}

// HasRemovals reports whether an explicit removal list is present.
func (e ElectionResult) HasRemovals() bool {
	return e.Removals != nil
}

// NumWinners returns the number of newly elected members.
func (e ElectionResult) NumWinners() int {
	return len(e.Winners)
}

// Members returns the winners as members in no particular order. Rotation
// sorts them into canonical order before processing.
func (e ElectionResult) Members() Committee {
	winners := make(Committee, 0, len(e.Winners))
	for key, endpoint := range e.Winners {
		winners = append(winners, Member{PubKey: key, Endpoint: endpoint})
	}
	return winners
}
