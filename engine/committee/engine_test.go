package committee_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardchain/dscommittee/engine/committee"
	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/model/ds/order"
	"github.com/shardchain/dscommittee/module/irrecoverable"
	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/module/performance"
	"github.com/shardchain/dscommittee/module/rotation"
	"github.com/shardchain/dscommittee/state"
	protocol "github.com/shardchain/dscommittee/state/committee"
	"github.com/shardchain/dscommittee/utils/unittest"
)

const (
	committeeSize = 20
	numElected    = 5
	blocksInEpoch = 100
)

func newCommitteeState(t *testing.T, root ds.Committee) *protocol.State {
	log := unittest.Logger()
	collector := metrics.NewNoopCollector()
	st, err := protocol.NewState(log, collector,
		rotation.NewRotator(log, collector, rotation.WithTargetSize(committeeSize)),
		performance.NewAccountant(log, collector),
		root[0].PubKey,
		&ds.EpochState{Committee: root},
	)
	require.NoError(t, err)
	return st
}

// TestEngine_AppliesInOrder checks that submitted blocks are applied in
// submission order by the worker.
func TestEngine_AppliesInOrder(t *testing.T) {
	root := unittest.CommitteeFixture(committeeSize)
	st := newCommitteeState(t, root)
	engine, err := committee.New(unittest.Logger(), metrics.NewNoopCollector(), st)
	require.NoError(t, err)

	// submitted before start
	first := unittest.ElectionFixture(numElected, root)
	require.True(t, engine.Submit(unittest.FinalizedBlockFixture(0, blocksInEpoch, first)))

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	engine.Start(ctx)
	unittest.RequireClosedBefore(t, engine.Ready(), time.Second, "engine not ready")

	taken := append(root.Copy(), first.Members().Sort(order.MemberCanonical)...)
	var elections []ds.ElectionResult
	for epoch := uint64(1); epoch < 5; epoch++ {
		election := unittest.ElectionFixture(numElected, taken)
		taken = append(taken, election.Members().Sort(order.MemberCanonical)...)
		elections = append(elections, election)
		require.True(t, engine.Submit(unittest.FinalizedBlockFixture(epoch, blocksInEpoch, election)))
	}

	require.Eventually(t, func() bool {
		return st.Final().Epoch() == 5
	}, 5*time.Second, 10*time.Millisecond)

	// the latest election sits at the front
	final := st.Final().Committee()
	last := elections[len(elections)-1].Members().Sort(order.MemberCanonical)
	assert.Equal(t, last[numElected-1].PubKey, final[0].PubKey)
	assert.Equal(t, committeeSize, len(final))

	cancel()
	unittest.RequireClosedBefore(t, engine.Done(), time.Second, "engine did not shut down")
}

// TestEngine_DropsOutdated checks that outdated blocks do not stop the engine.
func TestEngine_DropsOutdated(t *testing.T) {
	root := unittest.CommitteeFixture(committeeSize)
	st := newCommitteeState(t, root)
	collector := &engineCounter{}
	engine, err := committee.New(unittest.Logger(), collector, st)
	require.NoError(t, err)

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	defer cancel()
	engine.Start(ctx)

	election := unittest.ElectionFixture(numElected, root)
	engine.Submit(unittest.FinalizedBlockFixture(3, blocksInEpoch, election))
	engine.Submit(unittest.FinalizedBlockFixture(3, blocksInEpoch, election))
	engine.Submit(unittest.FinalizedBlockFixture(1, blocksInEpoch, election))
	engine.Submit(unittest.FinalizedBlockFixture(4, blocksInEpoch, unittest.ElectionFixture(numElected, root)))

	require.Eventually(t, func() bool {
		return collector.processedCount() == 2 && collector.droppedCount() == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(5), st.Final().Epoch())
}

// TestEngine_ThrowsOnException checks that unexpected errors are escalated
// and shut the engine down.
func TestEngine_ThrowsOnException(t *testing.T) {
	failure := errors.New("state corrupted")
	engine, err := committee.New(unittest.Logger(), metrics.NewNoopCollector(), failingState{err: failure})
	require.NoError(t, err)

	ctx, cancel, errCh := irrecoverable.WithSignalerAndCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	engine.Submit(unittest.FinalizedBlockFixture(0, blocksInEpoch, ds.ElectionResult{}))

	select {
	case thrown := <-errCh:
		require.ErrorIs(t, thrown, failure)
	case <-time.After(5 * time.Second):
		t.Fatal("no error thrown")
	}
	unittest.RequireClosedBefore(t, engine.Done(), time.Second, "engine did not shut down")
}

func TestEngine_QueueFull(t *testing.T) {
	collector := &engineCounter{}
	engine, err := committee.New(unittest.Logger(), collector, failingState{}, committee.WithQueueCapacity(2))
	require.NoError(t, err)

	// not started, nothing is drained
	assert.True(t, engine.Submit(unittest.FinalizedBlockFixture(0, blocksInEpoch, ds.ElectionResult{})))
	assert.True(t, engine.Submit(unittest.FinalizedBlockFixture(1, blocksInEpoch, ds.ElectionResult{})))
	assert.False(t, engine.Submit(unittest.FinalizedBlockFixture(2, blocksInEpoch, ds.ElectionResult{})))
	assert.Equal(t, 1, collector.droppedCount())
}

func TestEngine_StartTwice(t *testing.T) {
	engine, err := committee.New(unittest.Logger(), metrics.NewNoopCollector(), failingState{})
	require.NoError(t, err)

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	defer cancel()
	engine.Start(ctx)
	assert.Panics(t, func() { engine.Start(ctx) })
}

type failingState struct {
	err error
}

func (f failingState) Finalize(ds.FinalizedBlock) (*protocol.Snapshot, error) {
	if f.err == nil {
		return nil, state.NewOutdatedBlockErrorf("outdated")
	}
	return nil, f.err
}

type engineCounter struct {
	metrics.NoopCollector
	mu        sync.Mutex
	processed int
	dropped   int
}

func (c *engineCounter) BlockProcessed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
}

func (c *engineCounter) BlockDropped(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped++
}

func (c *engineCounter) processedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processed
}

func (c *engineCounter) droppedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
