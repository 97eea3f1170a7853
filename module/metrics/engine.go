package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shardchain/dscommittee/module"
)

type EngineCollector struct {
	queueLength prometheus.Gauge
	dropped     *prometheus.CounterVec
	processed   prometheus.Counter
}

var _ module.EngineMetrics = (*EngineCollector)(nil)

func NewEngineCollector(registerer prometheus.Registerer) *EngineCollector {
	r := NewRegisterer(registerer)

	return &EngineCollector{
		queueLength: r.RegisterNewGauge(prometheus.GaugeOpts{
			Name:      "queued_blocks",
			Namespace: namespaceDirectory,
			Subsystem: subsystemEngine,
			Help:      "the number of finalized blocks waiting to be applied",
		}),
		dropped: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Name:      "dropped_blocks_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemEngine,
			Help:      "the number of finalized blocks dropped by the engine",
		}, []string{LabelReason}),
		processed: r.RegisterNewCounter(prometheus.CounterOpts{
			Name:      "processed_blocks_total",
			Namespace: namespaceDirectory,
			Subsystem: subsystemEngine,
			Help:      "the number of finalized blocks applied to the committee state",
		}),
	}
}

func (ec *EngineCollector) BlockQueued(queueLength int) {
	ec.queueLength.Set(float64(queueLength))
}

func (ec *EngineCollector) BlockDropped(reason string) {
	ec.dropped.With(prometheus.Labels{LabelReason: reason}).Inc()
}

func (ec *EngineCollector) BlockProcessed() {
	ec.processed.Inc()
}
