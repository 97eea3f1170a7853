package order

import (
	"bytes"

	"github.com/shardchain/dscommittee/model/ds"
)

// PubKeyCanonical is a function for sorting public keys into canonical
// (ascending byte-lexicographic) order.
func PubKeyCanonical(pk1 ds.PubKey, pk2 ds.PubKey) int {
	return bytes.Compare(pk1[:], pk2[:])
}

// MemberCanonical orders committee members by their public key.
func MemberCanonical(m1 ds.Member, m2 ds.Member) int {
	return PubKeyCanonical(m1.PubKey, m2.PubKey)
}

// IsCanonical reports whether the keys are sorted in canonical order without
// repetitions.
func IsCanonical(keys ds.PubKeyList) bool {
	for i := 1; i < len(keys); i++ {
		if PubKeyCanonical(keys[i-1], keys[i]) >= 0 {
			return false
		}
	}
	return true
}
