package committee

import (
	"sync"
)

// Consumer defines the events emitted by the committee state. Consumer
// implementations must be non-blocking, as they are notified while the state
// holds its writer lock.
type Consumer interface {
	// OnCommitteeRotated is called once the snapshot produced by a finalized
	// DS block has been published.
	OnCommitteeRotated(previous *Snapshot, next *Snapshot)
}

// NoopConsumer satisfies Consumer and ignores every event.
type NoopConsumer struct{}

var _ Consumer = (*NoopConsumer)(nil)

func (n *NoopConsumer) OnCommitteeRotated(*Snapshot, *Snapshot) {}

// Distributor distributes committee events to a list of consumers.
type Distributor struct {
	subscribers []Consumer
	mu          sync.RWMutex
}

var _ Consumer = (*Distributor)(nil)

func NewDistributor() *Distributor {
	return &Distributor{}
}

func (d *Distributor) AddConsumer(consumer Consumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, consumer)
}

func (d *Distributor) OnCommitteeRotated(previous *Snapshot, next *Snapshot) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subscribers {
		sub.OnCommitteeRotated(previous, next)
	}
}
