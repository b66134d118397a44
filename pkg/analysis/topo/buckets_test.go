package topo

import (
	"math"
	"testing"

	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

func TestTableAddGetTotal(t *testing.T) {
	tbl := NewTable(2)
	tbl.Alloc(0, 3)

	if err := tbl.Add(0, distance.Forward, 1, 2.5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add(0, distance.Forward, 1, 0.5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add(0, distance.Backward, 3, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := tbl.Get(0, distance.Forward, 1); got != 3 {
		t.Errorf("Get = %v, want 3", got)
	}
	if got := tbl.Total(0, distance.Forward); got != 3 {
		t.Errorf("Total(forward) = %v, want 3", got)
	}
	if got := tbl.Total(0, distance.Backward); got != 1 {
		t.Errorf("Total(backward) = %v, want 1", got)
	}
}

func TestTableAddOutOfRange(t *testing.T) {
	tbl := NewTable(1)
	tbl.Alloc(0, 2)
	if err := tbl.Add(0, distance.Forward, 3, 1); errors.GetCode(err) != errors.ErrCodeBucketBound {
		t.Errorf("Add(idx=3) = %v, want bucket bound error", err)
	}
	if err := tbl.Add(0, distance.Backward, -1, 1); errors.GetCode(err) != errors.ErrCodeBucketBound {
		t.Errorf("Add(idx=-1) = %v, want bucket bound error", err)
	}
}

func TestPathsThroughConvolution(t *testing.T) {
	// Node weight 1, max weight 4. Source bucket 2 holds 2 paths, sink
	// buckets 1 and 3 hold one each. Pair (2,3) weighs 2+3-1 = 4, in
	// budget; only with a tighter budget is it excluded.
	tbl := NewTable(1)
	tbl.Alloc(0, 4)
	tbl.Add(0, distance.Forward, 2, 2)
	tbl.Add(0, distance.Backward, 1, 1)
	tbl.Add(0, distance.Backward, 3, 1)

	if got := tbl.PathsThrough(0, 1, 4); math.Abs(got-4) > 1e-12 {
		t.Errorf("PathsThrough(maxWeight=4) = %v, want 4", got)
	}
	if got := tbl.PathsThrough(0, 1, 3); math.Abs(got-2) > 1e-12 {
		t.Errorf("PathsThrough(maxWeight=3) = %v, want 2", got)
	}
}

func TestTableReset(t *testing.T) {
	tbl := NewTable(2)
	tbl.Alloc(0, 2)
	tbl.Alloc(1, 2)
	tbl.Reset([]rrgraph.ID{0})
	if tbl.Allocated(0) {
		t.Error("entry 0 should be released")
	}
	if !tbl.Allocated(1) {
		t.Error("entry 1 should be untouched")
	}
}
