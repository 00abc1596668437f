package input

import (
	"context"
	"sync"

	"github.com/lixenwraith/keyflow/keys"
)

// queue is an unbounded FIFO between the worker and the consumer channel
type queue struct {
	mu     sync.Mutex
	items  []keys.Event
	head   int
	closed bool
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(ev keys.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop returns the oldest item; ok is false when empty, closed reports no more pushes will come
func (q *queue) pop() (ev keys.Event, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head < len(q.items) {
		ev = q.items[q.head]
		q.items[q.head] = keys.Event{}
		q.head++
		if q.head == len(q.items) {
			q.items = q.items[:0]
			q.head = 0
		}
		return ev, true, false
	}
	return keys.Event{}, false, q.closed
}

// drainTo delivers items in order until the queue is closed and empty, or ctx ends
func (q *queue) drainTo(ctx context.Context, out chan<- keys.Event) {
	for {
		ev, ok, closed := q.pop()
		if ok {
			select {
			case out <- ev:
				continue
			case <-ctx.Done():
				return
			}
		}
		if closed {
			return
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return
		}
	}
}

// len reports queued items
func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
