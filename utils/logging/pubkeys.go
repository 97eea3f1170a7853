package logging

import (
	"encoding/hex"

	"github.com/shardchain/dscommittee/model/ds"
)

func PubKeys(keys []ds.PubKey) []string {
	ss := make([]string, 0, len(keys))
	for _, key := range keys {
		ss = append(ss, key.String())
	}
	return ss
}

// Fingerprint renders a committee fingerprint for log fields.
func Fingerprint(committee ds.Committee) string {
	fp := committee.Fingerprint()
	return hex.EncodeToString(fp[:])
}
