// Package queue holds the in-memory FIFO of jobs waiting for a worker slot.
// Its contents are disposable: everything in it can be rebuilt from the
// record store at startup.
package queue

import "sync"

// Descriptor is the dispatch-relevant copy of a job. MaxRetries and
// BaseTime are the values captured when the job was created.
type Descriptor struct {
	ID         string
	Command    string
	Attempts   int
	MaxRetries int
	BaseTime   int
}

// Queue is a mutex-guarded FIFO safe for many producers and consumers.
type Queue struct {
	mu    sync.Mutex
	items []Descriptor
	ready chan struct{}
}

func New() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Enqueue appends d to the tail.
func (q *Queue) Enqueue(d Descriptor) {
	q.mu.Lock()
	q.items = append(q.items, d)
	q.mu.Unlock()
	q.signal()
}

// PushFront puts d back at the head, used when a dispatch attempt is
// aborted after the descriptor was already taken.
func (q *Queue) PushFront(d Descriptor) {
	q.mu.Lock()
	q.items = append([]Descriptor{d}, q.items...)
	q.mu.Unlock()
	q.signal()
}

// Dequeue removes and returns the head. It never blocks.
func (q *Queue) Dequeue() (Descriptor, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Descriptor{}, false
	}
	d := q.items[0]
	q.items[0] = Descriptor{}
	q.items = q.items[1:]
	return d, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready receives a value after at least one push since the last receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
