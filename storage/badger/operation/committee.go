package operation

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/dgraph-io/badger/v2"

	"github.com/shardchain/dscommittee/model/ds"
)

// storedMember is the encodable form of a committee member.
type storedMember struct {
	PubKey []byte
	IP     []byte
	Port   uint32
}

// storedScore is the encodable form of a performance ledger entry.
type storedScore struct {
	PubKey []byte
	Score  uint32
}

// InsertCommittee stores the committee in effect after the given epoch.
// Expected errors during normal operations:
//   - storage.ErrAlreadyExists if a committee was already stored for the epoch
func InsertCommittee(epoch uint64, committee ds.Committee) func(*badger.Txn) error {
	members := make([]storedMember, 0, len(committee))
	for _, member := range committee {
		pk := member.PubKey
		members = append(members, storedMember{
			PubKey: pk[:],
			IP:     member.Endpoint.IP.To16(),
			Port:   member.Endpoint.Port,
		})
	}
	return insert(makePrefix(codeCommittee, epoch), members)
}

// RetrieveCommittee retrieves the committee in effect after the given epoch.
// Expected errors during normal operations:
//   - storage.ErrNotFound if no committee was stored for the epoch
func RetrieveCommittee(epoch uint64, committee *ds.Committee) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var members []storedMember
		err := retrieve(makePrefix(codeCommittee, epoch), &members)(tx)
		if err != nil {
			return err
		}
		result := make(ds.Committee, 0, len(members))
		for _, member := range members {
			pk, err := ds.BytesToPubKey(member.PubKey)
			if err != nil {
				return fmt.Errorf("invalid committee member key: %w", err)
			}
			result = append(result, ds.Member{
				PubKey:   pk,
				Endpoint: ds.NewEndpoint(net.IP(member.IP), member.Port),
			})
		}
		*committee = result
		return nil
	}
}

// InsertPerformanceLedger stores the ledger computed when the given epoch was
// finalized. Entries are stored in canonical key order.
// Expected errors during normal operations:
//   - storage.ErrAlreadyExists if a ledger was already stored for the epoch
func InsertPerformanceLedger(epoch uint64, ledger ds.PerformanceLedger) func(*badger.Txn) error {
	entries := ledger.Entries()
	scores := make([]storedScore, 0, len(entries))
	for _, entry := range entries {
		pk := entry.PubKey
		scores = append(scores, storedScore{PubKey: pk[:], Score: entry.Score})
	}
	return insert(makePrefix(codePerformance, epoch), scores)
}

// RetrievePerformanceLedger retrieves the ledger computed for the given epoch.
// Expected errors during normal operations:
//   - storage.ErrNotFound if no ledger was stored for the epoch
func RetrievePerformanceLedger(epoch uint64, ledger *ds.PerformanceLedger) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var scores []storedScore
		err := retrieve(makePrefix(codePerformance, epoch), &scores)(tx)
		if err != nil {
			return err
		}
		result := make(ds.PerformanceLedger, len(scores))
		for _, score := range scores {
			pk, err := ds.BytesToPubKey(score.PubKey)
			if err != nil {
				return fmt.Errorf("invalid ledger key: %w", err)
			}
			result[pk] = score.Score
		}
		*ledger = result
		return nil
	}
}

// SetFinalizedEpoch points the finalized epoch marker at the given epoch.
func SetFinalizedEpoch(epoch uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeFinalizedEpoch), epoch)
}

// RetrieveFinalizedEpoch retrieves the epoch of the latest stored state.
// Expected errors during normal operations:
//   - storage.ErrNotFound if no state was stored yet
func RetrieveFinalizedEpoch(epoch *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeFinalizedEpoch), epoch)
}

// HasCommittee checks whether a committee was stored for the epoch.
func HasCommittee(epoch uint64, exists *bool) func(*badger.Txn) error {
	return check(makePrefix(codeCommittee, epoch), exists)
}

// LookupCommitteeEpochs collects the epochs of all stored committees in
// ascending order.
func LookupCommitteeEpochs(epochs *[]uint64) func(*badger.Txn) error {
	*epochs = (*epochs)[:0]
	return traverseKeys(makePrefix(codeCommittee), func(key []byte) error {
		if len(key) != 9 {
			return fmt.Errorf("unexpected committee key length %d", len(key))
		}
		*epochs = append(*epochs, binary.BigEndian.Uint64(key[1:]))
		return nil
	})
}
