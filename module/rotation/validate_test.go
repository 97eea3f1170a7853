package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/utils/unittest"
)

func TestValidate(t *testing.T) {
	r := NewRotator(unittest.Logger(), metrics.NewNoopCollector(), WithTargetSize(4))
	current := unittest.CommitteeFixture(4)

	t.Run("target size kept", func(t *testing.T) {
		next := unittest.CommitteeFixture(4)
		require.NoError(t, r.validate(current, next, 2, 2))
	})

	t.Run("size violation", func(t *testing.T) {
		next := unittest.CommitteeFixture(5)
		err := r.validate(current, next, 2, 2)
		require.Error(t, err)
		assert.True(t, IsInvalidCompositionError(err))
	})

	t.Run("bootstrap may grow", func(t *testing.T) {
		next := unittest.CommitteeFixture(5)
		require.NoError(t, r.validate(current[:3], next, 2, 0))
	})

	t.Run("explicit removal count may change size", func(t *testing.T) {
		next := unittest.CommitteeFixture(5)
		require.NoError(t, r.validate(current, next, 2, 1))
	})

	t.Run("violations are aggregated", func(t *testing.T) {
		next := append(unittest.CommitteeFixture(4), current[0], current[1])
		next = append(next, current[0:2]...)
		err := r.validate(current, next, 2, 2)
		require.Error(t, err)
		assert.True(t, IsInvalidCompositionError(err))
		assert.Contains(t, err.Error(), current[0].PubKey.String())
		assert.Contains(t, err.Error(), current[1].PubKey.String())
		assert.Contains(t, err.Error(), "expected 4")
	})

	t.Run("disabled check", func(t *testing.T) {
		unchecked := NewRotator(unittest.Logger(), metrics.NewNoopCollector())
		require.NoError(t, unchecked.validate(current, unittest.CommitteeFixture(7), 2, 2))
	})
}

func TestTrimTail(t *testing.T) {
	committee := unittest.CommitteeFixture(6)

	kept, evicted := trimTail(committee.Copy(), 2, 4)
	assert.Equal(t, committee[:4].PubKeys(), kept.PubKeys())
	assert.Equal(t, committee[4:].PubKeys(), evicted.PubKeys())

	kept, evicted = trimTail(committee.Copy(), 5, 1)
	assert.Equal(t, committee[:5].PubKeys(), kept.PubKeys())
	assert.Len(t, evicted, 1)
}
