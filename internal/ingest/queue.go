package ingest

import "sync"

// Queue is the FIFO of pending file paths shared by the watch side
// (producer) and the worker (consumer). It imposes no capacity bound; the
// real bottleneck is the OS notification buffer upstream. Duplicate paths
// are kept as delivered; the queue does not deduplicate.
type Queue struct {
	mu    sync.Mutex
	items []string
	wake  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Enqueue appends path and signals a parked consumer. It never blocks; the
// wake channel holds at most one pending signal.
func (q *Queue) Enqueue(path string) {
	q.mu.Lock()
	q.items = append(q.items, path)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// TryDequeue removes and returns the front element, or reports empty without
// blocking.
func (q *Queue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	path := q.items[0]
	q.items = q.items[1:]
	return path, true
}

// Len reports the number of pending paths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake exposes the consumer wake signal. A receive may be spurious; callers
// must re-check the queue after waking.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}
