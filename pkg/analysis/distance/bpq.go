package distance

import (
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// BucketQueue is a monotone priority queue over small integer keys in
// [0, maxKey]. Keys are path weights, which are bounded by the connection's
// maximum path weight, so an array of buckets beats a general heap: push and
// pop are O(1) amortized.
//
// The queue is monotone: Pop returns keys in non-decreasing order, and
// pushing a key below the last popped key is invalid (Dijkstra with
// non-negative weights never does).
type BucketQueue struct {
	buckets [][]rrgraph.ID
	size    int
	cursor  int
}

// NewBucketQueue creates a queue accepting keys 0..maxKey.
func NewBucketQueue(maxKey int) *BucketQueue {
	return &BucketQueue{buckets: make([][]rrgraph.ID, maxKey+1)}
}

// Len returns the number of queued entries.
func (q *BucketQueue) Len() int { return q.size }

// Push enqueues id at the given key. A key outside [0, maxKey] is a
// capacity violation: callers are expected to have pruned such entries.
func (q *BucketQueue) Push(id rrgraph.ID, key int) error {
	if key < 0 || key >= len(q.buckets) {
		return errors.New(errors.ErrCodeQueueBound,
			"queue key %d outside [0,%d] for node %d", key, len(q.buckets)-1, id)
	}
	q.buckets[key] = append(q.buckets[key], id)
	q.size++
	if key < q.cursor {
		q.cursor = key
	}
	return nil
}

// Pop removes and returns the entry with the lowest key.
// ok is false when the queue is empty.
func (q *BucketQueue) Pop() (id rrgraph.ID, key int, ok bool) {
	if q.size == 0 {
		return 0, 0, false
	}
	for len(q.buckets[q.cursor]) == 0 {
		q.cursor++
	}
	b := q.buckets[q.cursor]
	id = b[len(b)-1]
	q.buckets[q.cursor] = b[:len(b)-1]
	q.size--
	return id, q.cursor, true
}
