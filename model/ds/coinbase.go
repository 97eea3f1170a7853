package ds

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SubGroupKind distinguishes the directory shard from the numbered shards.
type SubGroupKind uint8

const (
	SubGroupDirectory SubGroupKind = iota
	SubGroupShard
)

// legacyDirectoryID is the signed sub-group id older block formats use for
// the directory shard.
const legacyDirectoryID int32 = -1

const directoryGroupText = "ds"
const shardGroupPrefix = "shard-"

// SubGroup identifies the group a coinbase rewardee was credited in. Shard is
// only meaningful for SubGroupShard.
type SubGroup struct {
	Kind  SubGroupKind
	Shard uint32
}

// DirectoryGroup returns the sub-group of the directory shard itself.
func DirectoryGroup() SubGroup {
	return SubGroup{Kind: SubGroupDirectory}
}

// ShardGroup returns the sub-group of the numbered shard.
func ShardGroup(shard uint32) SubGroup {
	return SubGroup{Kind: SubGroupShard, Shard: shard}
}

// SubGroupFromLegacyID converts a signed sub-group id, where -1 denotes the
// directory shard and non-negative values denote shard indices.
func SubGroupFromLegacyID(id int32) (SubGroup, error) {
	switch {
	case id == legacyDirectoryID:
		return DirectoryGroup(), nil
	case id >= 0:
		return ShardGroup(uint32(id)), nil
	default:
		return SubGroup{}, fmt.Errorf("invalid sub-group id %d", id)
	}
}

// IsDirectory reports whether the sub-group is the directory shard.
func (g SubGroup) IsDirectory() bool {
	return g.Kind == SubGroupDirectory
}

// Compare orders the directory shard before all numbered shards, and shards
// by index.
func (g SubGroup) Compare(other SubGroup) int {
	switch {
	case g.Kind != other.Kind:
		if g.Kind < other.Kind {
			return -1
		}
		return 1
	case g.Shard < other.Shard:
		return -1
	case g.Shard > other.Shard:
		return 1
	default:
		return 0
	}
}

func (g SubGroup) String() string {
	if g.IsDirectory() {
		return directoryGroupText
	}
	return shardGroupPrefix + strconv.FormatUint(uint64(g.Shard), 10)
}

func (g SubGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *SubGroup) UnmarshalText(text []byte) error {
	s := string(text)
	if s == directoryGroupText {
		*g = DirectoryGroup()
		return nil
	}
	if !strings.HasPrefix(s, shardGroupPrefix) {
		return fmt.Errorf("invalid sub-group (%s)", s)
	}
	shard, err := strconv.ParseUint(strings.TrimPrefix(s, shardGroupPrefix), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid shard index in sub-group (%s): %w", s, err)
	}
	*g = ShardGroup(uint32(shard))
	return nil
}

// RewardeeTable records, per block number and per sub-group, which keys
// were credited with the coinbase reward of that block.
type RewardeeTable map[uint64]map[SubGroup][]PubKey

// Add credits the keys for the given block and sub-group.
func (t RewardeeTable) Add(block uint64, group SubGroup, keys ...PubKey) {
	groups, ok := t[block]
	if !ok {
		groups = make(map[SubGroup][]PubKey)
		t[block] = groups
	}
	groups[group] = append(groups[group], keys...)
}

// Blocks returns the block numbers present in the table in ascending order.
func (t RewardeeTable) Blocks() []uint64 {
	blocks := maps.Keys(t)
	slices.Sort(blocks)
	return blocks
}

// SubGroups returns the sub-groups recorded for the block in canonical order.
func (t RewardeeTable) SubGroups(block uint64) []SubGroup {
	groups := maps.Keys(t[block])
	slices.SortFunc(groups, func(a, b SubGroup) int {
		return a.Compare(b)
	})
	return groups
}

// Rewarded returns the set of keys credited for the block in any sub-group.
func (t RewardeeTable) Rewarded(block uint64) map[PubKey]struct{} {
	rewarded := make(map[PubKey]struct{})
	for _, keys := range t[block] {
		for _, key := range keys {
			rewarded[key] = struct{}{}
		}
	}
	return rewarded
}
