package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := New()
	q.Enqueue(Descriptor{ID: "a"})
	q.Enqueue(Descriptor{ID: "b"})
	q.PushFront(Descriptor{ID: "z"})

	require.Equal(t, 3, q.Len())

	var got []string
	for {
		d, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, d.ID)
	}

	assert.Equal(t, []string{"z", "a", "b"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q := New()

	d, ok := q.Dequeue()

	assert.False(t, ok)
	assert.Equal(t, Descriptor{}, d)
}

func TestQueue_ReadySignal(t *testing.T) {
	q := New()

	select {
	case <-q.Ready():
		t.Fatal("ready fired on an empty queue")
	default:
	}

	q.Enqueue(Descriptor{ID: "a"})
	q.Enqueue(Descriptor{ID: "b"})

	select {
	case <-q.Ready():
	default:
		t.Fatal("ready did not fire after enqueue")
	}

	// Signals coalesce.
	select {
	case <-q.Ready():
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := New()
	const producers, perProducer = 8, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(Descriptor{ID: fmt.Sprintf("%d-%d", p, i)})
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make(map[string]int)
	var consumers sync.WaitGroup
	done := make(chan struct{})
	for c := 0; c < 4; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				d, ok := q.Dequeue()
				if ok {
					mu.Lock()
					seen[d.ID]++
					mu.Unlock()
					continue
				}
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(done)
	consumers.Wait()

	// Drain anything the consumers left after done closed.
	for {
		d, ok := q.Dequeue()
		if !ok {
			break
		}
		seen[d.ID]++
	}

	assert.Len(t, seen, producers*perProducer)
	for id, n := range seen {
		assert.Equal(t, 1, n, "descriptor %s dequeued %d times", id, n)
	}
}
