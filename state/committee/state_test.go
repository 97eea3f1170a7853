package committee_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/model/ds/order"
	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/module/performance"
	"github.com/shardchain/dscommittee/module/rotation"
	"github.com/shardchain/dscommittee/state"
	"github.com/shardchain/dscommittee/state/committee"
	"github.com/shardchain/dscommittee/storage"
	bstorage "github.com/shardchain/dscommittee/storage/badger"
	storagemock "github.com/shardchain/dscommittee/storage/mock"
	"github.com/shardchain/dscommittee/utils/unittest"
)

const (
	committeeSize = 20
	numElected    = 5
	blocksInEpoch = 100
)

type StateSuite struct {
	suite.Suite

	root     *ds.EpochState
	consumer *recordingConsumer
	state    *committee.State
}

func TestState(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.root = &ds.EpochState{
		Epoch:     0,
		Committee: unittest.CommitteeFixture(committeeSize),
		Ledger:    make(ds.PerformanceLedger),
	}
	s.consumer = &recordingConsumer{}
	s.state = s.newState(committee.WithConsumer(s.consumer))
}

func (s *StateSuite) newState(opts ...committee.Option) *committee.State {
	st, err := newState(s.root, opts...)
	s.Require().NoError(err)
	return st
}

func newState(root *ds.EpochState, opts ...committee.Option) (*committee.State, error) {
	log := unittest.Logger()
	collector := metrics.NewNoopCollector()
	return committee.NewState(log, collector,
		rotation.NewRotator(log, collector, rotation.WithTargetSize(committeeSize)),
		performance.NewAccountant(log, collector),
		root.Committee[0].PubKey,
		root,
		opts...,
	)
}

// TestFinalize checks that accounting runs on the outgoing committee and the
// rotation is applied on top of it.
func (s *StateSuite) TestFinalize() {
	election := unittest.ElectionFixture(numElected, s.root.Committee)
	snapshot, err := s.state.Finalize(unittest.FinalizedBlockFixture(0, blocksInEpoch, election))
	s.Require().NoError(err)

	s.Assert().Equal(uint64(1), snapshot.Epoch())
	s.Assert().Equal(committeeSize, snapshot.Size())
	s.Assert().Same(snapshot, s.state.Final())

	// ledger scores the committee that served the closed epoch
	ledger := snapshot.Ledger()
	s.Require().Len(ledger, committeeSize)
	for _, member := range s.root.Committee {
		score, ok := snapshot.Score(member.PubKey)
		s.Require().True(ok)
		s.Assert().Equal(uint32(blocksInEpoch), score)
	}

	next := snapshot.Committee()
	for i, winner := range election.Members().Sort(order.MemberCanonical) {
		s.Assert().Equal(winner.PubKey, next[numElected-1-i].PubKey)
	}
	s.Assert().Equal(s.root.Committee[:committeeSize-numElected].PubKeys(), next[numElected:].PubKeys())

	// consumers observe previous and next snapshot
	s.Require().Len(s.consumer.events, 1)
	s.Assert().Equal(uint64(0), s.consumer.events[0].previous.Epoch())
	s.Assert().Same(snapshot, s.consumer.events[0].next)
}

// TestFinalize_Outdated checks that an epoch is closed at most once.
func (s *StateSuite) TestFinalize_Outdated() {
	_, err := s.state.Finalize(unittest.FinalizedBlockFixture(3, blocksInEpoch, unittest.ElectionFixture(numElected, s.root.Committee)))
	s.Require().NoError(err)
	final := s.state.Final()

	for _, epoch := range []uint64{0, 2, 3} {
		_, err = s.state.Finalize(unittest.FinalizedBlockFixture(epoch, blocksInEpoch, unittest.ElectionFixture(numElected, final.Committee())))
		s.Require().Error(err)
		s.Assert().True(state.IsOutdatedBlockError(err))
		s.Assert().Same(final, s.state.Final())
	}
	s.Assert().Len(s.consumer.events, 1)

	_, err = s.state.Finalize(unittest.FinalizedBlockFixture(4, blocksInEpoch, unittest.ElectionFixture(numElected, final.Committee())))
	s.Require().NoError(err)
	s.Assert().Equal(uint64(5), s.state.Final().Epoch())
}

func (s *StateSuite) TestFinalize_LastEpoch() {
	_, err := s.state.Finalize(unittest.FinalizedBlockFixture(^uint64(0), blocksInEpoch, ds.ElectionResult{}))
	s.Require().Error(err)
	s.Assert().True(state.IsInvalidBlockError(err))
	s.Assert().Equal(uint64(0), s.state.Final().Epoch())
}

// TestFinalize_InvalidComposition checks that a rejected rotation leaves the
// published state untouched.
func (s *StateSuite) TestFinalize_InvalidComposition() {
	before := s.state.Final()

	winners := unittest.WinnersFixture(numElected-1, unittest.BasePort+committeeSize, s.root.Committee)
	winners[s.root.Committee[1].PubKey] = s.root.Committee[1].Endpoint
	_, err := s.state.Finalize(unittest.FinalizedBlockFixture(0, blocksInEpoch, ds.NewElectionResult(winners)))
	s.Require().Error(err)
	s.Assert().True(rotation.IsInvalidCompositionError(err))
	s.Assert().False(state.IsOutdatedBlockError(err))

	s.Assert().Same(before, s.state.Final())
	s.Assert().True(s.root.Committee.Equal(s.state.Final().Committee()))
	s.Assert().Empty(s.consumer.events)
}

// TestFinalize_EvictionPolicy checks that elections without removal list get
// one derived from the freshly accounted ledger.
func (s *StateSuite) TestFinalize_EvictionPolicy() {
	st := s.newState(committee.WithEvictionPolicy(0.5, 2))

	absent := map[int]bool{2: true, 10: true, 15: true}
	var credited []ds.PubKey
	for i, member := range s.root.Committee {
		if !absent[i] {
			credited = append(credited, member.PubKey)
		}
	}
	block := unittest.FinalizedBlockFixture(0, blocksInEpoch, unittest.ElectionFixture(numElected, s.root.Committee))
	window := ds.WindowFor(0, blocksInEpoch)
	for number := window.First; window.Contains(number); number++ {
		block.Rewardees.Add(number, ds.DirectoryGroup(), credited...)
	}

	snapshot, err := st.Finalize(block)
	s.Require().NoError(err)

	// the two under-performers closest to the tail go first, the remaining
	// slots are taken from the tail
	s.Assert().Equal(committeeSize, snapshot.Size())
	next := snapshot.Committee()
	s.Assert().False(next.Contains(s.root.Committee[15].PubKey))
	s.Assert().False(next.Contains(s.root.Committee[10].PubKey))
	for _, i := range []int{17, 18, 19} {
		s.Assert().False(next.Contains(s.root.Committee[i].PubKey), "member %d should be evicted", i)
	}
	s.Assert().True(next.Contains(s.root.Committee[16].PubKey))
	s.Assert().True(next.Contains(s.root.Committee[2].PubKey))

	score, ok := snapshot.Score(s.root.Committee[2].PubKey)
	s.Require().True(ok)
	s.Assert().Equal(uint32(0), score)
}

// TestFinalize_EvictionPolicy_FullParticipation checks that with nobody
// under-performing the policy evicts exactly what the tail eviction does.
func (s *StateSuite) TestFinalize_EvictionPolicy_FullParticipation() {
	withPolicy := s.newState(committee.WithEvictionPolicy(0.5, numElected))
	withoutPolicy := s.newState()

	block := unittest.FinalizedBlockFixture(0, blocksInEpoch, unittest.ElectionFixture(numElected, s.root.Committee))
	block.Rewardees = unittest.FullParticipationFixture(s.root.Committee, ds.WindowFor(0, blocksInEpoch))

	expected, err := withoutPolicy.Finalize(block)
	s.Require().NoError(err)
	actual, err := withPolicy.Finalize(block)
	s.Require().NoError(err)

	s.Assert().Equal(committeeSize, actual.Size())
	s.Assert().True(expected.Committee().Equal(actual.Committee()))
	s.Assert().Equal(expected.Fingerprint(), actual.Fingerprint())
}

// TestFinalize_EvictionPolicy_KeepsSize checks that the committee size stays
// fixed over consecutive epochs in which every member under-performs.
func (s *StateSuite) TestFinalize_EvictionPolicy_KeepsSize() {
	st := s.newState(committee.WithEvictionPolicy(0.5, numElected))

	for epoch := uint64(0); epoch < 4; epoch++ {
		current := st.Final().Committee()
		snapshot, err := st.Finalize(unittest.FinalizedBlockFixture(epoch, blocksInEpoch, unittest.ElectionFixture(numElected, current)))
		s.Require().NoError(err)
		s.Require().Equal(committeeSize, snapshot.Size(), "epoch %d", epoch)
	}
}

// TestFinalize_ExplicitRemovalsWin checks that the eviction policy never
// overrides a removal list carried by the block.
func (s *StateSuite) TestFinalize_ExplicitRemovalsWin() {
	st := s.newState(committee.WithEvictionPolicy(1, numElected))

	winners := unittest.WinnersFixture(numElected, unittest.BasePort+committeeSize, s.root.Committee)
	removals := []ds.PubKey{s.root.Committee[4].PubKey}
	snapshot, err := st.Finalize(unittest.FinalizedBlockFixture(0, blocksInEpoch, ds.NewElectionResultWithRemovals(winners, removals)))
	s.Require().NoError(err)

	s.Assert().Equal(committeeSize+numElected-1, snapshot.Size())
	s.Assert().False(snapshot.Committee().Contains(s.root.Committee[4].PubKey))
}

// TestFinalize_StorageFailure checks that nothing is published when the new
// state cannot be persisted.
func (s *StateSuite) TestFinalize_StorageFailure() {
	failure := errors.New("disk on fire")
	states := storagemock.NewEpochStates(s.T())
	states.On("Store", mock.MatchedBy(func(state *ds.EpochState) bool {
		return state.Epoch == s.root.Epoch+1
	})).Return(failure).Once()
	st := s.newState(committee.WithStorage(states), committee.WithConsumer(s.consumer))
	before := st.Final()

	_, err := st.Finalize(unittest.FinalizedBlockFixture(0, blocksInEpoch, unittest.ElectionFixture(numElected, s.root.Committee)))
	s.Require().ErrorIs(err, failure)
	s.Assert().Same(before, st.Final())
	s.Assert().Empty(s.consumer.events)
}

// TestSnapshotIsolation checks that snapshots hand out copies.
func (s *StateSuite) TestSnapshotIsolation() {
	snapshot := s.state.Final()
	members := snapshot.Committee()
	members[0] = unittest.MemberFixture()
	ledger := snapshot.Ledger()
	ledger[unittest.PubKeyFixture()] = 1

	s.Assert().True(s.root.Committee.Equal(snapshot.Committee()))
	s.Assert().Empty(snapshot.Ledger())

	member, index, ok := snapshot.Member(s.root.Committee[3].PubKey)
	s.Require().True(ok)
	s.Assert().Equal(3, index)
	s.Assert().Equal(s.root.Committee[3], member)

	_, _, ok = snapshot.Member(unittest.PubKeyFixture())
	s.Assert().False(ok)
}

func TestNewState_RejectsDuplicates(t *testing.T) {
	members := unittest.CommitteeFixture(3)
	members = append(members, members[1])
	_, err := newState(&ds.EpochState{Committee: members})
	require.Error(t, err)
	assert.Contains(t, err.Error(), members[1].PubKey.String())
}

// TestConcurrentFinalize checks that concurrent writers are serialized and
// readers only ever observe complete snapshots.
func TestConcurrentFinalize(t *testing.T) {
	root := &ds.EpochState{Committee: unittest.CommitteeFixture(committeeSize)}
	st, err := newState(root)
	require.NoError(t, err)

	const blocks = 16
	elections := make([]ds.ElectionResult, 0, blocks)
	taken := root.Committee.Copy()
	for i := 0; i < blocks; i++ {
		election := unittest.ElectionFixture(numElected, taken)
		taken = append(taken, election.Members().Sort(order.MemberCanonical)...)
		elections = append(elections, election)
	}

	done := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snapshot := st.Final()
				members := snapshot.Committee()
				assert.Equal(t, committeeSize, len(members))
				assert.Empty(t, members.Duplicates())
			}
		}()
	}

	var writers errgroup.Group
	for i := 0; i < blocks; i++ {
		epoch := uint64(i)
		writers.Go(func() error {
			_, err := st.Finalize(unittest.FinalizedBlockFixture(epoch, blocksInEpoch, elections[epoch]))
			if err != nil && !state.IsOutdatedBlockError(err) {
				return err
			}
			return nil
		})
	}

	var writeErr error
	unittest.RequireReturnsBefore(t, func() { writeErr = writers.Wait() }, 5*time.Second)
	require.NoError(t, writeErr)
	close(done)
	unittest.RequireReturnsBefore(t, readers.Wait, 5*time.Second)

	// the block closing the highest epoch can never be outdated
	assert.Equal(t, uint64(blocks), st.Final().Epoch())
}

// TestPersistence checks that a state reopened from the database continues
// where the previous instance stopped.
func TestPersistence(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		log := unittest.Logger()
		collector := metrics.NewNoopCollector()
		rotator := rotation.NewRotator(log, collector, rotation.WithTargetSize(committeeSize))
		accountant := performance.NewAccountant(log, collector)
		root := &ds.EpochState{Committee: unittest.CommitteeFixture(committeeSize)}
		self := unittest.PubKeyFixture()

		_, err := committee.OpenState(log, collector, rotator, accountant, self, bstorage.NewEpochStates(collector, db, 10))
		require.ErrorIs(t, err, storage.ErrNotFound)

		states := bstorage.NewEpochStates(collector, db, 10)
		st, err := committee.Bootstrap(log, collector, rotator, accountant, self, states, root)
		require.NoError(t, err)

		for epoch := uint64(0); epoch < 2; epoch++ {
			election := unittest.ElectionFixture(numElected, st.Final().Committee())
			_, err = st.Finalize(unittest.FinalizedBlockFixture(epoch, blocksInEpoch, election))
			require.NoError(t, err)
		}

		reopened, err := committee.OpenState(log, collector, rotator, accountant, self, bstorage.NewEpochStates(collector, db, 10))
		require.NoError(t, err)
		assert.Equal(t, st.Final().Epoch(), reopened.Final().Epoch())
		assert.Equal(t, st.Final().Fingerprint(), reopened.Final().Fingerprint())
		assert.Equal(t, st.Final().Ledger(), reopened.Final().Ledger())

		epochs, err := states.Epochs()
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 1, 2}, epochs)

		// bootstrapping twice is refused
		_, err = committee.Bootstrap(log, collector, rotator, accountant, self, states, root)
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

// TestOpenState_StorageFailure checks that a storage failure while loading the
// latest state is returned to the caller.
func TestOpenState_StorageFailure(t *testing.T) {
	failure := errors.New("corrupted")
	states := storagemock.NewEpochStates(t)
	states.On("Latest").Return(nil, failure).Once()

	collector := metrics.NewNoopCollector()
	log := unittest.Logger()
	_, err := committee.OpenState(log, collector, rotation.NewRotator(log, collector), performance.NewAccountant(log, collector), unittest.PubKeyFixture(), states)
	require.ErrorIs(t, err, failure)
}

type rotatedEvent struct {
	previous *committee.Snapshot
	next     *committee.Snapshot
}

type recordingConsumer struct {
	events []rotatedEvent
}

func (r *recordingConsumer) OnCommitteeRotated(previous *committee.Snapshot, next *committee.Snapshot) {
	r.events = append(r.events, rotatedEvent{previous: previous, next: next})
}
