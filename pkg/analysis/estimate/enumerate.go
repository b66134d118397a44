package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/topo"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// enumerator propagates path counts along a topological traversal. A popped
// node's buckets are final, so each child receives the parent's full mass,
// shifted by the child's weight (or by one hop in hop mode). Mass that
// would land past the maximum weight belongs to over-budget paths and is
// dropped.
type enumerator struct {
	g         *rrgraph.Graph
	s         *Scratch
	dir       distance.Direction
	mode      topo.Mode
	maxWeight int

	routingPops int
}

func (e *enumerator) OnNodePopped(id rrgraph.ID) error {
	if e.g.Node(id).Type.IsWire() {
		e.routingPops++
	}
	return nil
}

func (e *enumerator) OnChildIterated(parent, child rrgraph.ID) error {
	if !e.s.Buckets.Allocated(child) {
		e.s.Buckets.Alloc(child, e.maxWeight)
	}
	step := 1
	if e.mode == topo.ByWeight {
		step = e.g.Node(child).Weight
	}
	pb := e.s.Buckets.Bucket(parent, e.dir)
	cb := e.s.Buckets.Bucket(child, e.dir)
	for i, v := range pb {
		if v == 0 {
			continue
		}
		idx := i + step
		if idx >= len(cb) {
			continue
		}
		cb[idx] += v
	}
	return nil
}

func (e *enumerator) OnTraversalDone() error { return nil }

// Enumerate counts the source-to-sink paths of one connection within the
// weight budget and fills both bucket directions: a backward pass from the
// sink yields the path count and per-node sink-side mass, then a forward
// pass from the source spreads source-side mass for PathsThrough queries.
//
// When scaling is positive the forward seed is scaling divided by the path
// count, so that total forward mass at the sink equals scaling; this is how
// pin-equivalence scaling enters the demand estimate. A scaling of zero
// seeds 1.
//
// Returns the number of enumerated paths and the number of routing nodes
// in the legal subgraph. A path count of zero skips the forward pass.
func Enumerate(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int, mode topo.Mode, scaling float64) (float64, int, error) {
	back := &enumerator{g: g, s: s, dir: distance.Backward, mode: mode, maxWeight: maxWeight}
	if !s.Buckets.Allocated(snk) {
		s.Buckets.Alloc(snk, maxWeight)
	}
	if err := s.Buckets.Set(snk, distance.Backward, 0, 1); err != nil {
		return 0, 0, err
	}
	if err := topo.Traverse(g, s.Recs, s.Infos, snk, maxWeight, distance.Backward, mode, back); err != nil {
		return 0, 0, err
	}

	numPaths := 0.0
	if s.Buckets.Allocated(src) {
		numPaths = s.Buckets.Total(src, distance.Backward)
	}
	if numPaths == 0 {
		return 0, back.routingPops, nil
	}

	seed := 1.0
	if scaling > 0 {
		seed = scaling / numPaths
	}

	// The forward pass reuses the traversal infos, so clear them; the
	// backward buckets must survive for PathsThrough.
	s.Infos.Reset(s.Log.Nodes())

	fwd := &enumerator{g: g, s: s, dir: distance.Forward, mode: mode, maxWeight: maxWeight}
	if err := s.Buckets.Set(src, distance.Forward, 0, seed); err != nil {
		return 0, 0, err
	}
	if err := topo.Traverse(g, s.Recs, s.Infos, src, maxWeight, distance.Forward, mode, fwd); err != nil {
		return 0, 0, err
	}
	return numPaths, fwd.routingPops, nil
}
