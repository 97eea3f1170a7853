package module

// CommitteeMetrics tracks committee rotation and performance accounting.
type CommitteeMetrics interface {
	// CommitteeRotated is called after a committee rotation admitted the given
	// number of winners and evicted the given number of members, resulting in
	// a committee of the given size.
	CommitteeRotated(admitted int, evicted int, size int)

	// InvalidComposition is called when a rotation produced a committee that
	// violates a consensus invariant and was rejected.
	InvalidComposition()

	// PerformanceRecomputed is called after the performance ledger of an
	// epoch was recomputed for the given number of members, with the total
	// number of participation deductions applied.
	PerformanceRecomputed(epoch uint64, members int, deductions uint64)

	// FinalizedEpoch tracks the epoch of the latest published committee
	// snapshot.
	FinalizedEpoch(epoch uint64)
}

// CacheMetrics tracks the read caches of the storage layer.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheMiss report the number of times the queried item is not found in
	// the cache, and had to be loaded from the database
	CacheMiss(resource string)
}

// EngineMetrics tracks the inbound queue of the committee engine.
type EngineMetrics interface {
	// BlockQueued is called when a finalized block entered the queue.
	BlockQueued(queueLength int)
	// BlockDropped is called when a finalized block was dropped, either
	// because the queue was full or because it was outdated.
	BlockDropped(reason string)
	// BlockProcessed is called after a finalized block was applied.
	BlockProcessed()
}
