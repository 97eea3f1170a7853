package committee

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module"
	"github.com/shardchain/dscommittee/module/eviction"
	"github.com/shardchain/dscommittee/module/performance"
	"github.com/shardchain/dscommittee/module/rotation"
	"github.com/shardchain/dscommittee/state"
	"github.com/shardchain/dscommittee/storage"
	"github.com/shardchain/dscommittee/utils/logging"
)

type evictionConfig struct {
	fraction    float64
	maxRemovals uint
}

// State holds the DS committee and its performance ledger. Writers are
// serialized by a single lock; every finalized DS block runs performance
// accounting and committee rotation back to back inside it. Readers access
// the last published snapshot without locking and never observe a partially
// applied block.
type State struct {
	mu         sync.Mutex
	log        zerolog.Logger
	metrics    module.CommitteeMetrics
	rotator    *rotation.Rotator
	accountant *performance.Accountant
	self       ds.PubKey
	states     storage.EpochStates
	eviction   *evictionConfig
	consumers  *Distributor
	final      *atomic.Pointer[Snapshot]
}

type Option func(*State)

// WithStorage persists every published state. Without storage the state only
// lives in memory.
func WithStorage(states storage.EpochStates) Option {
	return func(s *State) {
		s.states = states
	}
}

// WithEvictionPolicy derives a removal list for elections that do not carry
// one. The list evicts as many members as the tail eviction would. Up to
// maxRemovals members that were rewarded in less than the given fraction of
// the closed epoch's blocks go first, the rest is taken from the tail.
func WithEvictionPolicy(fraction float64, maxRemovals uint) Option {
	return func(s *State) {
		s.eviction = &evictionConfig{fraction: fraction, maxRemovals: maxRemovals}
	}
}

func WithConsumer(consumer Consumer) Option {
	return func(s *State) {
		s.consumers.AddConsumer(consumer)
	}
}

// NewState creates a committee state starting from the given root state,
// which must not contain duplicate members.
func NewState(
	log zerolog.Logger,
	metrics module.CommitteeMetrics,
	rotator *rotation.Rotator,
	accountant *performance.Accountant,
	self ds.PubKey,
	root *ds.EpochState,
	opts ...Option,
) (*State, error) {
	if root == nil {
		return nil, fmt.Errorf("root state must not be nil")
	}
	duplicates := root.Committee.Duplicates()
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("root committee contains duplicate members %v", logging.PubKeys(duplicates))
	}

	s := &State{
		log:        log.With().Str("component", "committee_state").Logger(),
		metrics:    metrics,
		rotator:    rotator,
		accountant: accountant,
		self:       self,
		consumers:  NewDistributor(),
		final:      atomic.NewPointer[Snapshot](nil),
	}
	for _, apply := range opts {
		apply(s)
	}

	initial := root.Copy()
	s.final.Store(newSnapshot(initial))
	s.metrics.FinalizedEpoch(initial.Epoch)
	return s, nil
}

// Bootstrap persists the root state and creates a committee state on top of
// it.
// Expected errors during normal operations:
//   - storage.ErrAlreadyExists if the storage already holds a state for the root epoch
func Bootstrap(
	log zerolog.Logger,
	metrics module.CommitteeMetrics,
	rotator *rotation.Rotator,
	accountant *performance.Accountant,
	self ds.PubKey,
	states storage.EpochStates,
	root *ds.EpochState,
	opts ...Option,
) (*State, error) {
	s, err := NewState(log, metrics, rotator, accountant, self, root, append(opts, WithStorage(states))...)
	if err != nil {
		return nil, fmt.Errorf("invalid root state: %w", err)
	}
	err = states.Store(root)
	if err != nil {
		return nil, fmt.Errorf("could not store root state: %w", err)
	}
	return s, nil
}

// OpenState creates a committee state from the latest persisted state.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the storage was never bootstrapped
func OpenState(
	log zerolog.Logger,
	metrics module.CommitteeMetrics,
	rotator *rotation.Rotator,
	accountant *performance.Accountant,
	self ds.PubKey,
	states storage.EpochStates,
	opts ...Option,
) (*State, error) {
	latest, err := states.Latest()
	if err != nil {
		return nil, fmt.Errorf("could not load latest committee state: %w", err)
	}
	return NewState(log, metrics, rotator, accountant, self, latest, append(opts, WithStorage(states))...)
}

// Final returns the most recently published snapshot.
func (s *State) Final() *Snapshot {
	return s.final.Load()
}

// Finalize applies a finalized DS block: the performance of the outgoing
// committee is accounted for the closed epoch, then the committee is rotated
// according to the block's election result. The resulting state serves the
// epoch after the closed one. On any error the published state is unchanged.
//
// Expected errors during normal operations:
//   - state.OutdatedBlockError if the block closes an epoch that was already closed
//   - state.InvalidBlockError if the block closes the last representable epoch
//
// All other errors are exceptions, in particular rotation errors wrapping
// rotation.ErrInvalidComposition and storage failures.
func (s *State) Finalize(block ds.FinalizedBlock) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.final.Load()
	if block.Epoch < previous.Epoch() {
		return nil, state.NewOutdatedBlockErrorf("block %d closes epoch %d, but the committee already serves epoch %d",
			block.Number, block.Epoch, previous.Epoch())
	}
	if block.Epoch == math.MaxUint64 {
		return nil, state.NewInvalidBlockErrorf("block %d closes the last representable epoch", block.Number)
	}

	committee := previous.state.Committee.Copy()
	ledger := make(ds.PerformanceLedger, len(committee))
	err := s.accountant.Recompute(block.Rewardees, &ledger, committee, block.Epoch, block.BlocksInEpoch, block.BlockReward)
	if err != nil {
		return nil, fmt.Errorf("could not recompute performance for block %d: %w", block.Number, err)
	}

	election := block.Election
	if !election.HasRemovals() && s.eviction != nil {
		policy := eviction.Policy{
			Threshold:   eviction.ThresholdFromFraction(block.BlocksInEpoch, s.eviction.fraction),
			MaxRemovals: s.eviction.maxRemovals,
			NumWinners:  uint(election.NumWinners()),
		}
		election.Removals = eviction.DetermineRemovals(committee, ledger, policy)
		s.log.Debug().
			Uint64("epoch", block.Epoch).
			Uint32("threshold", policy.Threshold).
			Strs("removals", logging.PubKeys(election.Removals)).
			Msg("derived removal list from performance ledger")
	}

	err = s.rotator.Rotate(s.self, &committee, election)
	if err != nil {
		return nil, fmt.Errorf("could not rotate committee for block %d: %w", block.Number, err)
	}

	next := &ds.EpochState{
		Epoch:     block.Epoch + 1,
		Committee: committee,
		Ledger:    ledger,
	}
	if s.states != nil {
		err = s.states.Store(next)
		if err != nil {
			return nil, fmt.Errorf("could not persist committee state for epoch %d: %w", next.Epoch, err)
		}
	}

	snapshot := newSnapshot(next)
	s.final.Store(snapshot)
	s.metrics.FinalizedEpoch(next.Epoch)

	s.log.Info().
		Uint64("block", block.Number).
		Uint64("closed_epoch", block.Epoch).
		Int("size", committee.Size()).
		Str("fingerprint", logging.Fingerprint(committee)).
		Msg("committee state finalized")

	s.consumers.OnCommitteeRotated(previous, snapshot)
	return snapshot, nil
}
