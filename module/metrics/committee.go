package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shardchain/dscommittee/module"
)

type CommitteeCollector struct {
	committeeSize        prometheus.Gauge
	rotations            prometheus.Counter
	admitted             prometheus.Counter
	evicted              prometheus.Counter
	invalidCompositions  prometheus.Counter
	accountedEpoch       prometheus.Gauge
	accountedMembers     prometheus.Gauge
	deductions           prometheus.Counter
	deductionsPerAccount prometheus.Histogram
	finalizedEpoch       prometheus.Gauge
}

var _ module.CommitteeMetrics = (*CommitteeCollector)(nil)

func NewCommitteeCollector(registerer prometheus.Registerer) *CommitteeCollector {
	r := NewRegisterer(registerer)

	return &CommitteeCollector{
		committeeSize: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "size",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the number of members in the DS committee after the latest rotation",
		}),
		rotations: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "rotations_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the number of committee rotations applied",
		}),
		admitted: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "admitted_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the number of members admitted into the committee",
		}),
		evicted: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "evicted_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the number of members evicted from the committee",
		}),
		invalidCompositions: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "invalid_compositions_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the number of rotations rejected for violating a committee invariant",
		}),
		accountedEpoch: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "accounted_epoch",
			Namespace: namespaceDirectory,
			Subsystem: subsystemPerformance,
			Help:      "the epoch of the latest performance recomputation",
		}),
		accountedMembers: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "members",
			Namespace: namespaceDirectory,
			Subsystem: subsystemPerformance,
			Help:      "the number of ledger entries after the latest performance recomputation",
		}),
		deductions: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "deductions_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemPerformance,
			Help:      "the number of participation deductions applied",
		}),
		deductionsPerAccount: r.RegisterNewHistogram(prometheus.HistogramOpts{
			Name:      "deductions_per_recomputation",
			Namespace: namespaceDirectory,
			Subsystem: subsystemPerformance,
			Help:      "the number of participation deductions applied by a single recomputation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		finalizedEpoch: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "finalized_epoch",
			Namespace: namespaceDirectory,
			Subsystem: subsystemCommittee,
			Help:      "the epoch of the latest published committee snapshot",
		}),
	}
}

func (cc *CommitteeCollector) CommitteeRotated(admitted int, evicted int, size int) {
	cc.rotations.Inc()
	cc.admitted.Add(float64(admitted))
	cc.evicted.Add(float64(evicted))
	cc.committeeSize.Set(float64(size))
}

func (cc *CommitteeCollector) InvalidComposition() {
	cc.invalidCompositions.Inc()
}

func (cc *CommitteeCollector) PerformanceRecomputed(epoch uint64, members int, deductions uint64) {
	cc.accountedEpoch.Set(float64(epoch))
	cc.accountedMembers.Set(float64(members))
	cc.deductions.Add(float64(deductions))
	cc.deductionsPerAccount.Observe(float64(deductions))
}

func (cc *CommitteeCollector) FinalizedEpoch(epoch uint64) {
	cc.finalizedEpoch.Set(float64(epoch))
}
