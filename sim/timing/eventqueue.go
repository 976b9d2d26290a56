package timing

import (
	"container/heap"
	"sync"
)

// EventQueue orders events by time. Events of the same time leave the queue
// in the order they entered it.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Peek() Event
	Len() int
}

// EventQueueImpl is a thread-safe EventQueue backed by a binary heap.
type EventQueueImpl struct {
	lock    sync.Mutex
	entries queueEntries
	pushed  uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueueImpl {
	return &EventQueueImpl{}
}

// Push adds an event.
func (q *EventQueueImpl) Push(evt Event) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.pushed++
	heap.Push(&q.entries, queueEntry{evt: evt, order: q.pushed})
}

// Pop removes and returns the earliest event.
func (q *EventQueueImpl) Pop() Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	return heap.Pop(&q.entries).(queueEntry).evt
}

// Peek returns the earliest event without removing it.
func (q *EventQueueImpl) Peek() Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.entries[0].evt
}

// Len returns the number of queued events.
func (q *EventQueueImpl) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.entries)
}

type queueEntry struct {
	evt   Event
	order uint64
}

type queueEntries []queueEntry

func (h queueEntries) Len() int { return len(h) }

func (h queueEntries) Less(i, j int) bool {
	if h[i].evt.Time() != h[j].evt.Time() {
		return h[i].evt.Time() < h[j].evt.Time()
	}

	return h[i].order < h[j].order
}

func (h queueEntries) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *queueEntries) Push(x any) { *h = append(*h, x.(queueEntry)) }

func (h *queueEntries) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]

	return last
}
