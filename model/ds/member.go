package ds

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/slices"
)

// Member is a DS committee member. Two members are the same member iff their
// public keys are equal; the endpoint is informational.
type Member struct {
	PubKey   PubKey
	Endpoint Endpoint
}

// String returns a string representation of the member.
func (m Member) String() string {
	return fmt.Sprintf("%s@%s", m.PubKey, m.Endpoint)
}

// MemberFilter is a filter on committee members.
type MemberFilter func(Member) bool

// MemberOrder is a sort order for committee members, returning a negative
// number if the first member comes first.
type MemberOrder func(Member, Member) int

// Committee is the ordered DS committee. Position 0 holds the most recently
// admitted member; the tail holds the longest-tenured ones. Members are only
// ever inserted at the front or deleted, survivors never change their order
// relative to each other.
type Committee []Member

// Size returns the number of members.
func (c Committee) Size() int {
	return len(c)
}

// Copy returns a copy of the committee sharing no backing array with c.
func (c Committee) Copy() Committee {
	dup := make(Committee, len(c))
	copy(dup, c)
	return dup
}

// Filter returns the members passing the filter, in committee order.
func (c Committee) Filter(filter MemberFilter) Committee {
	var dup Committee
	for _, member := range c {
		if !filter(member) {
			continue
		}
		dup = append(dup, member)
	}
	return dup
}

// Sort returns a copy of the committee sorted by the given order.
func (c Committee) Sort(less MemberOrder) Committee {
	dup := c.Copy()
	slices.SortFunc[Committee, Member](dup, less)
	return dup
}

// PubKeys returns the keys of all members in committee order.
func (c Committee) PubKeys() PubKeyList {
	keys := make(PubKeyList, 0, len(c))
	for _, member := range c {
		keys = append(keys, member.PubKey)
	}
	return keys
}

// IndexOf returns the position of the member with the given key.
func (c Committee) IndexOf(pk PubKey) (int, bool) {
	for i, member := range c {
		if member.PubKey == pk {
			return i, true
		}
	}
	return -1, false
}

// ByPubKey returns the member with the given key.
func (c Committee) ByPubKey(pk PubKey) (Member, bool) {
	i, ok := c.IndexOf(pk)
	if !ok {
		return Member{}, false
	}
	return c[i], true
}

// ByIndex returns the member at the given position.
func (c Committee) ByIndex(index uint) (Member, bool) {
	if index >= uint(len(c)) {
		return Member{}, false
	}
	return c[index], true
}

// Contains reports whether a member with the given key is in the committee.
func (c Committee) Contains(pk PubKey) bool {
	_, ok := c.IndexOf(pk)
	return ok
}

// Equal compares two committees element for element, including endpoints.
func (c Committee) Equal(other Committee) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i].PubKey != other[i].PubKey || !c[i].Endpoint.Equal(other[i].Endpoint) {
			return false
		}
	}
	return true
}

// Duplicates returns every key that occurs more than once, in the order of
// its second occurrence.
func (c Committee) Duplicates() PubKeyList {
	var dups PubKeyList
	seen := make(map[PubKey]int, len(c))
	for _, member := range c {
		seen[member.PubKey]++
		if seen[member.PubKey] == 2 {
			dups = append(dups, member.PubKey)
		}
	}
	return dups
}

// Fingerprint returns a SHA3-256 digest over the ordered members. Two nodes
// holding byte-identical committees produce the same fingerprint.
func (c Committee) Fingerprint() [32]byte {
	hasher := sha3.New256()
	var port [4]byte
	for _, member := range c {
		_, _ = hasher.Write(member.PubKey[:])
		_, _ = hasher.Write(member.Endpoint.IP.To16())
		binary.BigEndian.PutUint32(port[:], member.Endpoint.Port)
		_, _ = hasher.Write(port[:])
	}
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}
