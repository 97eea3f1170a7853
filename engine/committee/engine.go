package committee

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/shardchain/dscommittee/engine/common/fifoqueue"
	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module"
	"github.com/shardchain/dscommittee/module/irrecoverable"
	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/state"
	protocol "github.com/shardchain/dscommittee/state/committee"
)

// DefaultQueueCapacity is the number of finalized blocks the engine buffers.
const DefaultQueueCapacity = 1000

// CommitteeState is the subset of the committee state the engine writes to.
type CommitteeState interface {
	Finalize(block ds.FinalizedBlock) (*protocol.Snapshot, error)
}

// Engine is the single writer of the committee state. Finalized DS blocks are
// submitted from any goroutine, buffered in FIFO order and applied one at a
// time by a single worker.
type Engine struct {
	log      zerolog.Logger
	metrics  module.EngineMetrics
	state    CommitteeState
	queue    *fifoqueue.FifoQueue[ds.FinalizedBlock]
	notifier module.Notifier
	started  *atomic.Bool
	ready    chan struct{}
	done     chan struct{}
}

var _ module.Component = (*Engine)(nil)

type Option func(*config)

type config struct {
	capacity int
}

// WithQueueCapacity limits the number of buffered blocks. Blocks submitted
// while the queue is full are dropped.
func WithQueueCapacity(capacity int) Option {
	return func(c *config) {
		c.capacity = capacity
	}
}

func New(log zerolog.Logger, collector module.EngineMetrics, committeeState CommitteeState, opts ...Option) (*Engine, error) {
	cfg := config{capacity: DefaultQueueCapacity}
	for _, apply := range opts {
		apply(&cfg)
	}

	queue, err := fifoqueue.NewFifoQueue[ds.FinalizedBlock](
		fifoqueue.WithCapacity(cfg.capacity),
		fifoqueue.WithLengthObserver(collector.BlockQueued),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create block queue: %w", err)
	}

	return &Engine{
		log:      log.With().Str("engine", "committee").Logger(),
		metrics:  collector,
		state:    committeeState,
		queue:    queue,
		notifier: module.NewNotifier(),
		started:  atomic.NewBool(false),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Submit queues a finalized DS block for processing. It returns false if the
// queue is full and the block was dropped. Submit is non-blocking and may be
// called before the engine is started.
func (e *Engine) Submit(block ds.FinalizedBlock) bool {
	if !e.queue.Push(block) {
		e.log.Warn().
			Uint64("block", block.Number).
			Uint64("epoch", block.Epoch).
			Msg("block queue full, dropping finalized block")
		e.metrics.BlockDropped(metrics.DropReasonQueueFull)
		return false
	}
	e.notifier.Notify()
	return true
}

// Start launches the worker. The engine shuts down when the context is
// cancelled. Any unexpected error while applying a block is thrown on the
// context, which also shuts the engine down.
func (e *Engine) Start(ctx irrecoverable.SignalerContext) {
	if !e.started.CompareAndSwap(false, true) {
		panic("committee engine already started")
	}
	go e.loop(ctx)
}

func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) loop(ctx irrecoverable.SignalerContext) {
	// Throw exits the goroutine, deferred calls still run
	defer close(e.done)
	close(e.ready)

	// blocks submitted before start are pending already
	e.notifier.Notify()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.notifier.Channel():
			err := e.processQueue(ctx)
			if err != nil {
				ctx.Throw(err)
				return
			}
		}
	}
}

// processQueue drains the queue, returning on cancellation or on the first
// unexpected error.
func (e *Engine) processQueue(ctx irrecoverable.SignalerContext) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		block, ok := e.queue.Pop()
		if !ok {
			return nil
		}

		err := e.processBlock(block)
		if err != nil {
			return err
		}
	}
}

func (e *Engine) processBlock(block ds.FinalizedBlock) error {
	log := e.log.With().
		Uint64("block", block.Number).
		Uint64("epoch", block.Epoch).
		Logger()

	snapshot, err := e.state.Finalize(block)
	if state.IsOutdatedBlockError(err) {
		log.Info().Err(err).Msg("dropping outdated finalized block")
		e.metrics.BlockDropped(metrics.DropReasonOutdated)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not apply finalized block %d: %w", block.Number, err)
	}

	log.Debug().
		Uint64("serving_epoch", snapshot.Epoch()).
		Int("committee_size", snapshot.Size()).
		Msg("finalized block applied")
	e.metrics.BlockProcessed()
	return nil
}
