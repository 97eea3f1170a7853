package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/sethvargo/go-retry"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module"
	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/storage"
	"github.com/shardchain/dscommittee/storage/badger/operation"
)

// EpochStates implements storage.EpochStates on top of badger. Committee and
// ledger of an epoch are written in one transaction together with the
// finalized epoch marker.
const (
	conflictRetries = 5
	conflictBackoff = 10 * time.Millisecond
)

type EpochStates struct {
	db    *badger.DB
	cache *Cache[uint64, *ds.EpochState]
}

var _ storage.EpochStates = (*EpochStates)(nil)

func NewEpochStates(collector module.CacheMetrics, db *badger.DB, cacheSize uint) *EpochStates {

	store := func(epoch uint64, state *ds.EpochState) func(*badger.Txn) error {
		return func(tx *badger.Txn) error {
			err := operation.InsertCommittee(epoch, state.Committee)(tx)
			if err != nil {
				return fmt.Errorf("could not insert committee: %w", err)
			}
			err = operation.InsertPerformanceLedger(epoch, state.Ledger)(tx)
			if err != nil {
				return fmt.Errorf("could not insert performance ledger: %w", err)
			}
			err = operation.SetFinalizedEpoch(epoch)(tx)
			if err != nil {
				return fmt.Errorf("could not update finalized epoch: %w", err)
			}
			return nil
		}
	}

	retrieve := func(epoch uint64) func(*badger.Txn) (*ds.EpochState, error) {
		return func(tx *badger.Txn) (*ds.EpochState, error) {
			state := &ds.EpochState{Epoch: epoch}
			err := operation.RetrieveCommittee(epoch, &state.Committee)(tx)
			if err != nil {
				return nil, fmt.Errorf("could not retrieve committee: %w", err)
			}
			err = operation.RetrievePerformanceLedger(epoch, &state.Ledger)(tx)
			if err != nil {
				return nil, fmt.Errorf("could not retrieve performance ledger: %w", err)
			}
			return state, nil
		}
	}

	return &EpochStates{
		db: db,
		cache: newCache[uint64, *ds.EpochState](collector,
			withLimit[uint64, *ds.EpochState](cacheSize),
			withStore[uint64, *ds.EpochState](store),
			withRetrieve[uint64, *ds.EpochState](retrieve),
			withResource[uint64, *ds.EpochState](metrics.ResourceCommittee),
		),
	}
}

func (s *EpochStates) Store(state *ds.EpochState) error {
	stored := state.Copy()
	backoff := retry.WithMaxRetries(conflictRetries, retry.NewConstant(conflictBackoff))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		err := s.db.Update(s.cache.Insert(stored.Epoch, stored))
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("could not store state of epoch %d: %w", state.Epoch, err)
	}
	s.cache.Put(stored.Epoch, stored)
	return nil
}

func (s *EpochStates) ByEpoch(epoch uint64) (*ds.EpochState, error) {
	var state *ds.EpochState
	err := s.db.View(func(tx *badger.Txn) error {
		var err error
		state, err = s.cache.Get(epoch)(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve state of epoch %d: %w", epoch, err)
	}
	return state.Copy(), nil
}

func (s *EpochStates) Latest() (*ds.EpochState, error) {
	var epoch uint64
	err := s.db.View(operation.RetrieveFinalizedEpoch(&epoch))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve finalized epoch: %w", err)
	}
	state, err := s.ByEpoch(epoch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("finalized epoch %d has no stored state: %w", epoch, err)
	}
	return state, err
}

func (s *EpochStates) Epochs() ([]uint64, error) {
	var epochs []uint64
	err := s.db.View(operation.LookupCommitteeEpochs(&epochs))
	if err != nil {
		return nil, fmt.Errorf("could not look up stored epochs: %w", err)
	}
	return epochs, nil
}
