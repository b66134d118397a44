package analysis

import (
	"math"
	"testing"
)

func TestWorstQueueKeepsLowest(t *testing.T) {
	q := newWorstQueue(3, true)
	for _, v := range []float64{0.9, 0.1, 0.5, 0.8, 0.2, 0.7} {
		q.Add(v)
	}
	got := q.Values()
	want := []float64{0.1, 0.2, 0.5}
	if len(got) != len(want) {
		t.Fatalf("Values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values = %v, want %v", got, want)
		}
	}
}

func TestWorstQueueKeepsHighest(t *testing.T) {
	q := newWorstQueue(2, false)
	for _, v := range []float64{0.3, 0.9, 0.1, 0.6} {
		q.Add(v)
	}
	got := q.Values()
	if len(got) != 2 || got[0] != 0.6 || got[1] != 0.9 {
		t.Errorf("Values = %v, want [0.6 0.9]", got)
	}
}

func TestWorstQueueCapacityFloor(t *testing.T) {
	q := newWorstQueue(0, true)
	q.Add(0.4)
	q.Add(0.2)
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
	if got := q.Values()[0]; got != 0.2 {
		t.Errorf("kept %v, want 0.2", got)
	}
}

func TestWorstQueueMean(t *testing.T) {
	q := newWorstQueue(4, true)
	if q.Mean() != 0 {
		t.Errorf("empty Mean = %v, want 0", q.Mean())
	}
	for _, v := range []float64{0.2, 0.4} {
		q.Add(v)
	}
	if math.Abs(q.Mean()-0.3) > 1e-12 {
		t.Errorf("Mean = %v, want 0.3", q.Mean())
	}
}
