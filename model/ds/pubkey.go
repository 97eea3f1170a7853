package ds

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/exp/slices"
)

// PubKeyLen is the length of a compressed public key.
const PubKeyLen = 33

// PubKey is the public key identifying a DS committee member. Keys are
// totally ordered by byte-lexicographic comparison; this order is the only
// tie-break used anywhere in committee bookkeeping.
type PubKey [PubKeyLen]byte

// ZeroPubKey is the empty public key.
var ZeroPubKey = PubKey{}

// BytesToPubKey converts raw bytes into a public key.
func BytesToPubKey(b []byte) (PubKey, error) {
	var pk PubKey
	if len(b) != PubKeyLen {
		return pk, fmt.Errorf("illegal public key length (got: %d, expected: %d)", len(b), PubKeyLen)
	}
	copy(pk[:], b)
	return pk, nil
}

// HexStringToPubKey parses a hex encoded public key.
func HexStringToPubKey(s string) (PubKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroPubKey, fmt.Errorf("could not decode public key hex: %w", err)
	}
	return BytesToPubKey(b)
}

// MustHexStringToPubKey is like HexStringToPubKey but panics on malformed input.
// Only meant for constants and tests.
func MustHexStringToPubKey(s string) PubKey {
	pk, err := HexStringToPubKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the hex representation of the key.
func (pk PubKey) String() string {
	return hex.EncodeToString(pk[:])
}

// Compare returns -1, 0 or 1 depending on whether pk sorts before, equal to
// or after other.
func (pk PubKey) Compare(other PubKey) int {
	return bytes.Compare(pk[:], other[:])
}

// Less reports whether pk sorts strictly before other.
func (pk PubKey) Less(other PubKey) bool {
	return pk.Compare(other) < 0
}

func (pk PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PubKey) UnmarshalText(text []byte) error {
	var err error
	*pk, err = HexStringToPubKey(string(text))
	return err
}

// PubKeyList is a list of public keys.
type PubKeyList []PubKey

// Sort sorts the list in place in ascending key order and returns it.
func (l PubKeyList) Sort() PubKeyList {
	slices.SortFunc(l, func(a, b PubKey) int {
		return a.Compare(b)
	})
	return l
}

// Copy returns a copy of the list. A nil list stays nil.
func (l PubKeyList) Copy() PubKeyList {
	if l == nil {
		return nil
	}
	dup := make(PubKeyList, len(l))
	copy(dup, l)
	return dup
}

// Contains reports whether the key is in the list.
func (l PubKeyList) Contains(pk PubKey) bool {
	for _, key := range l {
		if key == pk {
			return true
		}
	}
	return false
}

// Lookup converts the list into a set.
func (l PubKeyList) Lookup() map[PubKey]struct{} {
	lookup := make(map[PubKey]struct{}, len(l))
	for _, key := range l {
		lookup[key] = struct{}{}
	}
	return lookup
}
