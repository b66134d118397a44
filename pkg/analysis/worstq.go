package analysis

import (
	"container/heap"
	"sort"
)

// worstQueue retains the worst fixed-size fraction of a value stream. With
// keepLowest set it keeps the lowest values seen, evicting its maximum when
// full (worst connection probabilities); otherwise it keeps the highest,
// evicting its minimum (worst node demands).
type worstQueue struct {
	items      []float64
	capacity   int
	keepLowest bool
}

func newWorstQueue(capacity int, keepLowest bool) *worstQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &worstQueue{items: make([]float64, 0, capacity), capacity: capacity, keepLowest: keepLowest}
}

// The heap root is the entry to evict: the maximum when keeping the lowest
// values, the minimum otherwise.
func (q *worstQueue) Less(i, j int) bool {
	if q.keepLowest {
		return q.items[i] > q.items[j]
	}
	return q.items[i] < q.items[j]
}
func (q *worstQueue) Len() int            { return len(q.items) }
func (q *worstQueue) Swap(i, j int)       { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *worstQueue) Push(x any)    { q.items = append(q.items, x.(float64)) }
func (q *worstQueue) Pop() any {
	v := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return v
}

// Add offers a value to the queue.
func (q *worstQueue) Add(v float64) {
	if len(q.items) < q.capacity {
		heap.Push(q, v)
		return
	}
	evict := q.items[0]
	if (q.keepLowest && v < evict) || (!q.keepLowest && v > evict) {
		q.items[0] = v
		heap.Fix(q, 0)
	}
}

// Values returns the retained values in ascending order.
func (q *worstQueue) Values() []float64 {
	out := make([]float64, len(q.items))
	copy(out, q.items)
	sort.Float64s(out)
	return out
}

// Mean returns the average of the retained values, 0 when empty.
func (q *worstQueue) Mean() float64 {
	if len(q.items) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range q.items {
		sum += v
	}
	return sum / float64(len(q.items))
}
