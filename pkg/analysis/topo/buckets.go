// Package topo implements the topological traversal that drives path
// enumeration and probability propagation: nodes are processed in
// non-decreasing distance order once all their legal parents have been
// processed, with a waiting structure that breaks cycles by forcing the
// lowest-keyed stalled node through when nothing else is ready.
//
// Per-node path mass is kept in weight-indexed buckets: bucket i of a node
// holds the mass of paths whose weight from the traversal's start up to and
// including the node is i, not counting the start node's own weight.
package topo

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Buckets holds one node's weight-indexed path mass, split by which end of
// the connection the traversal started from.
type Buckets struct {
	Source []float64
	Sink   []float64
}

func (b *Buckets) byDir(dir distance.Direction) []float64 {
	if dir == distance.Forward {
		return b.Source
	}
	return b.Sink
}

// Table is a per-worker store of buckets, one entry per graph node. Entries
// are allocated per connection for touched nodes only and released by Reset
// through the visited log.
type Table []Buckets

// NewTable allocates an empty table for numNodes nodes.
func NewTable(numNodes int) Table { return make(Table, numNodes) }

// Alloc sizes both bucket arrays of id for path weights 0..maxWeight.
func (t Table) Alloc(id rrgraph.ID, maxWeight int) {
	t[id].Source = make([]float64, maxWeight+1)
	t[id].Sink = make([]float64, maxWeight+1)
}

// Allocated reports whether id has buckets for the current connection.
func (t Table) Allocated(id rrgraph.ID) bool { return t[id].Source != nil }

// Add accumulates v into bucket idx of id for the given traversal direction.
// An index outside the allocated range is a capacity violation: the caller
// must have pruned paths beyond the maximum weight already.
func (t Table) Add(id rrgraph.ID, dir distance.Direction, idx int, v float64) error {
	b := t[id].byDir(dir)
	if idx < 0 || idx >= len(b) {
		return errors.New(errors.ErrCodeBucketBound,
			"bucket index %d outside [0,%d] for node %d (%s)", idx, len(b)-1, id, dir)
	}
	b[idx] += v
	return nil
}

// Set overwrites bucket idx of id for the given traversal direction.
func (t Table) Set(id rrgraph.ID, dir distance.Direction, idx int, v float64) error {
	b := t[id].byDir(dir)
	if idx < 0 || idx >= len(b) {
		return errors.New(errors.ErrCodeBucketBound,
			"bucket index %d outside [0,%d] for node %d (%s)", idx, len(b)-1, id, dir)
	}
	b[idx] = v
	return nil
}

// Get returns bucket idx of id for the given traversal direction.
func (t Table) Get(id rrgraph.ID, dir distance.Direction, idx int) float64 {
	return t[id].byDir(dir)[idx]
}

// Bucket returns the full bucket array of id for the traversal direction.
func (t Table) Bucket(id rrgraph.ID, dir distance.Direction) []float64 {
	return t[id].byDir(dir)
}

// Total sums all buckets of id for the traversal direction.
func (t Table) Total(id rrgraph.ID, dir distance.Direction) float64 {
	sum := 0.0
	for _, v := range t[id].byDir(dir) {
		sum += v
	}
	return sum
}

// PathsThrough returns the mass of source-to-sink paths running through id:
// the convolution of its source and sink buckets, restricted to pairs whose
// combined weight fits the maximum path weight. The node's own weight is
// counted by both bucket indices, so it is subtracted once.
func (t Table) PathsThrough(id rrgraph.ID, nodeWeight, maxWeight int) float64 {
	src, snk := t[id].Source, t[id].Sink
	total := 0.0
	for i, s := range src {
		if s == 0 {
			continue
		}
		for j, k := range snk {
			if k == 0 {
				continue
			}
			if i+j-nodeWeight > maxWeight {
				break
			}
			total += s * k
		}
	}
	return total
}

// Reset releases the buckets of the listed nodes.
func (t Table) Reset(visited []rrgraph.ID) {
	for _, id := range visited {
		t[id] = Buckets{}
	}
}
