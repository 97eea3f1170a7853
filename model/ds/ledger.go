package ds

import (
	"golang.org/x/exp/maps"
)

// PerformanceLedger maps each current committee member to its participation
// score for the last accounted epoch.
type PerformanceLedger map[PubKey]uint32

// LedgerEntry is a single ledger score. Slices of entries sorted by key are the
// deterministic, encodable form of a ledger.
type LedgerEntry struct {
	PubKey PubKey
	Score  uint32
}

// Copy returns a copy of the ledger.
func (l PerformanceLedger) Copy() PerformanceLedger {
	dup := make(PerformanceLedger, len(l))
	for key, score := range l {
		dup[key] = score
	}
	return dup
}

// Keys returns the keys of the ledger in ascending order.
func (l PerformanceLedger) Keys() PubKeyList {
	return PubKeyList(maps.Keys(l)).Sort()
}

// Entries returns the ledger as a slice sorted by key.
func (l PerformanceLedger) Entries() []LedgerEntry {
	keys := l.Keys()
	entries := make([]LedgerEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, LedgerEntry{PubKey: key, Score: l[key]})
	}
	return entries
}

// LedgerFromEntries rebuilds a ledger from its entries.
func LedgerFromEntries(entries []LedgerEntry) PerformanceLedger {
	ledger := make(PerformanceLedger, len(entries))
	for _, entry := range entries {
		ledger[entry.PubKey] = entry.Score
	}
	return ledger
}
