// Package eviction derives the removal list a DS block proposer publishes from
// the performance ledger of the closing epoch.
package eviction

import (
	"math"

	"github.com/shardchain/dscommittee/model/ds"
)

// Policy configures which members are proposed for removal.
type Policy struct {
	// Threshold is the minimum score a member needs to stay. Members scoring
	// strictly below it are under-performers.
	Threshold uint32
	// MaxRemovals caps how many under-performers are removed ahead of the
	// longest tenured members.
	MaxRemovals uint
	// NumWinners is the number of members the accompanying election admits.
	NumWinners uint
}

// DetermineRemovals returns exactly as many members as the tail eviction of
// the same election would, that is min(NumWinners, committee size), so the
// committee size is the same with and without the policy. Under-performers
// are taken first, tail first and up to MaxRemovals. The remaining slots are
// filled from the tail. Members without a ledger entry are never treated as
// under-performers. The result is always non-nil, so that an election result
// built from it carries an explicit removal list.
func DetermineRemovals(committee ds.Committee, ledger ds.PerformanceLedger, policy Policy) []ds.PubKey {
	limit := policy.NumWinners
	if uint(len(committee)) < limit {
		limit = uint(len(committee))
	}
	budget := policy.MaxRemovals
	if limit < budget {
		budget = limit
	}

	removals := make([]ds.PubKey, 0, limit)
	chosen := make(map[int]struct{}, limit)
	for i := len(committee) - 1; i >= 0 && uint(len(removals)) < budget; i-- {
		score, ok := ledger[committee[i].PubKey]
		if !ok || score >= policy.Threshold {
			continue
		}
		removals = append(removals, committee[i].PubKey)
		chosen[i] = struct{}{}
	}
	for i := len(committee) - 1; i >= 0 && uint(len(removals)) < limit; i-- {
		if _, ok := chosen[i]; ok {
			continue
		}
		removals = append(removals, committee[i].PubKey)
	}
	return removals
}

// ThresholdFromFraction converts a required participation fraction into a
// score threshold for an epoch of the given length, rounding up.
func ThresholdFromFraction(blocksInEpoch uint64, fraction float64) uint32 {
	if fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	threshold := math.Ceil(fraction * float64(blocksInEpoch))
	if threshold >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(threshold)
}
