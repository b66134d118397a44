package distance

import (
	"testing"

	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

func TestBucketQueueAscendingOrder(t *testing.T) {
	q := NewBucketQueue(10)
	for _, e := range []struct {
		id  rrgraph.ID
		key int
	}{{1, 5}, {2, 0}, {3, 10}, {4, 5}, {5, 2}} {
		if err := q.Push(e.id, e.key); err != nil {
			t.Fatalf("Push(%d, %d): %v", e.id, e.key, err)
		}
	}

	prev := -1
	n := 0
	for {
		_, key, ok := q.Pop()
		if !ok {
			break
		}
		if key < prev {
			t.Errorf("keys out of order: %d after %d", key, prev)
		}
		prev = key
		n++
	}
	if n != 5 {
		t.Errorf("popped %d entries, want 5", n)
	}
}

func TestBucketQueueKeyBounds(t *testing.T) {
	q := NewBucketQueue(3)
	if err := q.Push(1, 4); errors.GetCode(err) != errors.ErrCodeQueueBound {
		t.Errorf("Push(key=4) = %v, want queue bound error", err)
	}
	if err := q.Push(1, -1); errors.GetCode(err) != errors.ErrCodeQueueBound {
		t.Errorf("Push(key=-1) = %v, want queue bound error", err)
	}
	if q.Len() != 0 {
		t.Errorf("rejected pushes changed Len to %d", q.Len())
	}
}

func TestBucketQueueEmptyPop(t *testing.T) {
	q := NewBucketQueue(2)
	if _, _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue returned ok")
	}
	q.Push(7, 1)
	q.Pop()
	if _, _, ok := q.Pop(); ok {
		t.Error("Pop after draining returned ok")
	}
}
