package performance

import (
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module"
	"github.com/shardchain/dscommittee/module/irrecoverable"
)

// Accountant recomputes the per-epoch participation scores of the committee
// from the coinbase rewardee records.
//
// Every member starts the epoch with full credit, one point per block of the
// epoch, and loses one point for each block of the epoch window in which it
// was not rewarded in any sub-group. Scores never go below zero and the block
// reward never influences them.
type Accountant struct {
	log     zerolog.Logger
	metrics module.CommitteeMetrics
}

func NewAccountant(log zerolog.Logger, metrics module.CommitteeMetrics) *Accountant {
	return &Accountant{
		log:     log.With().Str("component", "performance_accounting").Logger(),
		metrics: metrics,
	}
}

// Recompute replaces the contents of the ledger with the scores of the given
// committee for the epoch. A non-nil ledger is cleared and refilled in place,
// a nil ledger is allocated. Afterwards the ledger has exactly one entry per
// committee member.
//
// Expected errors during normal operations:
//   - none; a nil ledger pointer is reported as an irrecoverable exception
func (a *Accountant) Recompute(
	table ds.RewardeeTable,
	ledger *ds.PerformanceLedger,
	committee ds.Committee,
	epoch uint64,
	blocksInEpoch uint64,
	blockReward int64,
) error {
	if ledger == nil {
		return irrecoverable.NewExceptionf("cannot recompute performance into nil ledger reference")
	}
	if *ledger == nil {
		*ledger = make(ds.PerformanceLedger, len(committee))
	}
	scores := *ledger
	maps.Clear(scores)

	baseline := uint32(math.MaxUint32)
	if blocksInEpoch < math.MaxUint32 {
		baseline = uint32(blocksInEpoch)
	}
	for _, member := range committee {
		scores[member.PubKey] = baseline
	}

	window := ds.WindowFor(epoch, blocksInEpoch)
	var deductions uint64
	var accounted, ignored int
	for _, block := range table.Blocks() {
		if !window.Contains(block) {
			ignored++
			continue
		}
		accounted++
		rewarded := table.Rewarded(block)
		for _, member := range committee {
			if _, ok := rewarded[member.PubKey]; ok {
				continue
			}
			if scores[member.PubKey] > 0 {
				scores[member.PubKey]--
				deductions++
			}
		}
	}

	if ignored > 0 {
		a.log.Debug().
			Uint64("epoch", epoch).
			Int("ignored_blocks", ignored).
			Msg("ignored rewardee records outside of epoch window")
	}

	log := a.log.Info().
		Uint64("epoch", epoch).
		Uint64("window_first", window.First).
		Uint64("window_count", window.Count).
		Int("members", len(scores)).
		Int("accounted_blocks", accounted).
		Uint64("deductions", deductions)
	if blockReward >= 0 {
		log = log.Int64("block_reward", blockReward)
	}
	log.Msg("performance ledger recomputed")

	a.metrics.PerformanceRecomputed(epoch, len(scores), deductions)
	return nil
}
