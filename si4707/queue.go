// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "container/heap"

// queuedCommand pairs a Command with the sort key that orders the command
// queue: priority in the high bits, serial number in the low bits, so a
// lower-numbered priority (0, uninterruptable) always drains ahead of a
// higher-numbered one regardless of submission order, while within a
// priority tier, lower serial numbers (older commands) go first.
type queuedCommand struct {
	key     uint64
	command Command
	future  *Future
}

// commandQueue is a min-heap of queuedCommand ordered by key, giving O(log
// n) priority-ordered submission and removal in place of the buffered
// channels used elsewhere in this driver for non-priority queues.
type commandQueue []*queuedCommand

func (q commandQueue) Len() int            { return len(q) }
func (q commandQueue) Less(i, j int) bool  { return q[i].key < q[j].key }
func (q commandQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *commandQueue) Push(x interface{}) { *q = append(*q, x.(*queuedCommand)) }
func (q *commandQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ heap.Interface = (*commandQueue)(nil)

// delayedEvent is a scheduled future event, ordered by fire time.
type delayedEvent struct {
	at    float64 // unix seconds
	event Event
}

type delayedEventHeap []delayedEvent

func (h delayedEventHeap) Len() int            { return len(h) }
func (h delayedEventHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h delayedEventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *delayedEventHeap) Push(x interface{}) { *h = append(*h, x.(delayedEvent)) }
func (h *delayedEventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*delayedEventHeap)(nil)
