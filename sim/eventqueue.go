package sim

import (
	"container/heap"
	"fmt"
	"strings"
)

// TieBreak decides the order of events that share the same time.
type TieBreak int

const (
	// FIFOOrder pops equal-time events in insertion order.
	FIFOOrder TieBreak = iota

	// LIFOOrder pops the most recently inserted of equal-time events first.
	LIFOOrder
)

// ParseTieBreak converts "fifo" or "lifo" into a TieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(s) {
	case "", "fifo":
		return FIFOOrder, nil
	case "lifo":
		return LIFOOrder, nil
	default:
		return FIFOOrder, fmt.Errorf("unknown tie break %q", s)
	}
}

func (t TieBreak) String() string {
	if t == LIFOOrder {
		return "lifo"
	}

	return "fifo"
}

// EventQueue is a queue of events ordered by time, with ties broken by
// insertion order according to its TieBreak.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue(order TieBreak) *EventQueue {
	q := new(EventQueue)
	q.events.order = order
	heap.Init(&q.events)

	return q
}

// Insert adds an event to the queue.
func (q *EventQueue) Insert(evt Event) {
	q.nextSeq++
	evt.seq = q.nextSeq
	heap.Push(&q.events, evt)
}

// PopEarliest removes and returns the event at the head of the queue. It
// reports false when the queue is empty.
func (q *EventQueue) PopEarliest() (Event, bool) {
	if q.events.Len() == 0 {
		return Event{}, false
	}

	return heap.Pop(&q.events).(Event), true
}

// Peek returns the head of the queue without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if q.events.Len() == 0 {
		return Event{}, false
	}

	return q.events.items[0], true
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// Cancel removes the earliest event, in pop order, that satisfies match.
// It reports false if no event matches.
func (q *EventQueue) Cancel(match func(Event) bool) (Event, bool) {
	found := -1

	for i, evt := range q.events.items {
		if !match(evt) {
			continue
		}

		if found < 0 || q.events.Less(i, found) {
			found = i
		}
	}

	if found < 0 {
		return Event{}, false
	}

	return heap.Remove(&q.events, found).(Event), true
}

// Count returns the number of events that satisfy match.
func (q *EventQueue) Count(match func(Event) bool) int {
	n := 0

	for _, evt := range q.events.items {
		if match(evt) {
			n++
		}
	}

	return n
}

// Events returns a copy of all queued events in pop order.
func (q *EventQueue) Events() []Event {
	sorted := eventHeap{
		order: q.events.order,
		items: make([]Event, len(q.events.items)),
	}
	copy(sorted.items, q.events.items)

	out := make([]Event, 0, len(sorted.items))
	for sorted.Len() > 0 {
		out = append(out, heap.Pop(&sorted).(Event))
	}

	return out
}

type eventHeap struct {
	order TieBreak
	items []Event
}

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h.items)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}

	if h.order == LIFOOrder {
		return a.seq > b.seq
	}

	return a.seq < b.seq
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x any) {
	h.items = append(h.items, x.(Event))
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() any {
	old := h.items
	n := len(old)
	evt := old[n-1]
	h.items = old[0 : n-1]

	return evt
}
