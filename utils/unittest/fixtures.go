package unittest

import (
	crand "crypto/rand"
	"net"

	"github.com/shardchain/dscommittee/model/ds"
)

const (
	// BasePort is the first port assigned by committee fixtures.
	BasePort = 2600
)

// Localhost is the IP every endpoint fixture uses.
var Localhost = net.IPv4(127, 0, 0, 1)

// PubKeyFixture returns a random compressed public key.
func PubKeyFixture(opts ...func(*ds.PubKey)) ds.PubKey {
	var pk ds.PubKey
	_, _ = crand.Read(pk[:])
	// compressed point prefix
	pk[0] = 0x02 | (pk[0] & 0x01)
	for _, apply := range opts {
		apply(&pk)
	}
	return pk
}

// WithPrefix overwrites the leading bytes of the key, which fixes its
// position in canonical order relative to keys with other prefixes.
func WithPrefix(prefix ...byte) func(*ds.PubKey) {
	return func(pk *ds.PubKey) {
		copy(pk[:], prefix)
	}
}

// PubKeyListFixture returns n distinct random public keys.
func PubKeyListFixture(n int, opts ...func(*ds.PubKey)) ds.PubKeyList {
	seen := make(map[ds.PubKey]struct{}, n)
	keys := make(ds.PubKeyList, 0, n)
	for len(keys) < n {
		pk := PubKeyFixture(opts...)
		if _, ok := seen[pk]; ok {
			continue
		}
		seen[pk] = struct{}{}
		keys = append(keys, pk)
	}
	return keys
}

// EndpointFixture returns a localhost endpoint on the given port.
func EndpointFixture(port uint32) ds.Endpoint {
	return ds.NewEndpoint(Localhost, port)
}

// MemberFixture returns a member with a random key.
func MemberFixture(opts ...func(*ds.Member)) ds.Member {
	member := ds.Member{
		PubKey:   PubKeyFixture(),
		Endpoint: EndpointFixture(BasePort),
	}
	for _, apply := range opts {
		apply(&member)
	}
	return member
}

// WithPubKey sets the key of a member.
func WithPubKey(pk ds.PubKey) func(*ds.Member) {
	return func(member *ds.Member) {
		member.PubKey = pk
	}
}

// WithPort sets the endpoint port of a member.
func WithPort(port uint32) func(*ds.Member) {
	return func(member *ds.Member) {
		member.Endpoint = EndpointFixture(port)
	}
}

// CommitteeFixture returns a committee of n members with random keys, the
// member at index i listening on BasePort+i.
func CommitteeFixture(n int) ds.Committee {
	keys := PubKeyListFixture(n)
	committee := make(ds.Committee, 0, n)
	for i, key := range keys {
		committee = append(committee, ds.Member{
			PubKey:   key,
			Endpoint: EndpointFixture(uint32(BasePort + i)),
		})
	}
	return committee
}

// WinnersFixture returns n elected members keyed by public key, listening on
// consecutive ports starting at basePort. Keys are distinct from every key
// in the excluded committees.
func WinnersFixture(n int, basePort uint32, exclude ...ds.Committee) map[ds.PubKey]ds.Endpoint {
	taken := make(map[ds.PubKey]struct{})
	for _, committee := range exclude {
		for _, member := range committee {
			taken[member.PubKey] = struct{}{}
		}
	}
	winners := make(map[ds.PubKey]ds.Endpoint, n)
	for len(winners) < n {
		pk := PubKeyFixture()
		if _, ok := taken[pk]; ok {
			continue
		}
		if _, ok := winners[pk]; ok {
			continue
		}
		winners[pk] = EndpointFixture(basePort + uint32(len(winners)))
	}
	return winners
}

// ElectionFixture returns an election result of n winners without a removal
// list, disjoint from the given committee.
func ElectionFixture(n int, committee ds.Committee) ds.ElectionResult {
	return ds.NewElectionResult(WinnersFixture(n, uint32(BasePort+committee.Size()), committee))
}

// FullParticipationFixture returns a rewardee table in which every member of
// the committee is credited in the directory sub-group for every block of
// the window.
func FullParticipationFixture(committee ds.Committee, window ds.EpochWindow) ds.RewardeeTable {
	table := make(ds.RewardeeTable)
	for block := window.First; window.Contains(block); block++ {
		table.Add(block, ds.DirectoryGroup(), committee.PubKeys()...)
	}
	return table
}

// FinalizedBlockFixture returns a finalized block for the epoch carrying the
// election and an empty rewardee table.
func FinalizedBlockFixture(epoch uint64, blocksInEpoch uint64, election ds.ElectionResult) ds.FinalizedBlock {
	return ds.FinalizedBlock{
		Number:        epoch,
		Epoch:         epoch,
		BlocksInEpoch: blocksInEpoch,
		BlockReward:   ds.RewardNotConfigured,
		Election:      election,
		Rewardees:     make(ds.RewardeeTable),
	}
}
