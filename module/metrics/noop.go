package metrics

import (
	"github.com/shardchain/dscommittee/module"
)

type NoopCollector struct{}

var _ module.CommitteeMetrics = (*NoopCollector)(nil)
var _ module.CacheMetrics = (*NoopCollector)(nil)
var _ module.EngineMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) CommitteeRotated(admitted int, evicted int, size int)               {}
func (nc *NoopCollector) InvalidComposition()                                                {}
func (nc *NoopCollector) PerformanceRecomputed(epoch uint64, members int, deductions uint64) {}
func (nc *NoopCollector) FinalizedEpoch(epoch uint64)                                        {}
func (nc *NoopCollector) CacheEntries(resource string, entries uint)                         {}
func (nc *NoopCollector) CacheHit(resource string)                                           {}
func (nc *NoopCollector) CacheMiss(resource string)                                          {}
func (nc *NoopCollector) BlockQueued(queueLength int)                                        {}
func (nc *NoopCollector) BlockDropped(reason string)                                         {}
func (nc *NoopCollector) BlockProcessed()                                                    {}
