package fifoqueue

import (
	"fmt"
	mathbits "math/bits"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a concurrency safe FIFO queue with an optional capacity and an
// optional length observer. Elements pushed beyond the capacity are dropped.
// The length observer is called with the new length after every successful
// push and pop; it must be non-blocking.
type FifoQueue[T any] struct {
	mu             sync.RWMutex
	queue          deque.Deque
	maxCapacity    int
	lengthObserver QueueLengthObserver
}

type ConstructorOption func(*fifoOptions) error

type QueueLengthObserver func(int)

type fifoOptions struct {
	capacity       int
	lengthObserver QueueLengthObserver
}

// WithCapacity limits the number of elements the queue holds. Without it the
// capacity is the largest int.
func WithCapacity(capacity int) ConstructorOption {
	return func(opts *fifoOptions) error {
		if capacity < 1 {
			return fmt.Errorf("capacity for Fifo queue must be positive")
		}
		opts.capacity = capacity
		return nil
	}
}

// WithLengthObserver registers a callback receiving the queue length after
// every change.
func WithLengthObserver(callback QueueLengthObserver) ConstructorOption {
	return func(opts *fifoOptions) error {
		if callback == nil {
			return fmt.Errorf("nil is not a valid QueueLengthObserver")
		}
		opts.lengthObserver = callback
		return nil
	}
}

func NewFifoQueue[T any](options ...ConstructorOption) (*FifoQueue[T], error) {
	opts := fifoOptions{
		capacity:       1<<(mathbits.UintSize-1) - 1,
		lengthObserver: func(int) {},
	}
	for _, apply := range options {
		err := apply(&opts)
		if err != nil {
			return nil, fmt.Errorf("failed to apply constructor option to fifoqueue queue: %w", err)
		}
	}
	return &FifoQueue[T]{
		maxCapacity:    opts.capacity,
		lengthObserver: opts.lengthObserver,
	}, nil
}

// Push appends the element to the tail of the queue. It returns false if the
// queue is full and the element was dropped.
func (q *FifoQueue[T]) Push(element T) bool {
	q.mu.Lock()
	length := q.queue.Len()
	pushed := length < q.maxCapacity
	if pushed {
		q.queue.PushBack(element)
		length++
	}
	q.mu.Unlock()

	if pushed {
		q.lengthObserver(length)
	}
	return pushed
}

// Front returns the head of the queue without removing it.
func (q *FifoQueue[T]) Front() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	element, ok := q.queue.Front()
	if !ok {
		var zero T
		return zero, false
	}
	return element.(T), true
}

// Pop removes and returns the head of the queue.
func (q *FifoQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	element, ok := q.queue.PopFront()
	length := q.queue.Len()
	q.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	q.lengthObserver(length)
	return element.(T), true
}

func (q *FifoQueue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.queue.Len()
}
