package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/topo"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// propagator spreads availability probabilities through the weight buckets.
// Bucket i of a node holds the probability that at least one source-side
// path of weight i reaches the node and finds it available. Contributions
// for the same bucket from different parents describe overlapping events
// and are combined as a union, never summed.
type propagator struct {
	g         *rrgraph.Graph
	s         *Scratch
	maxWeight int
}

func (p *propagator) OnNodePopped(id rrgraph.ID) error { return nil }

func (p *propagator) OnChildIterated(parent, child rrgraph.ID) error {
	if !p.s.Buckets.Allocated(child) {
		p.s.Buckets.Alloc(child, p.maxWeight)
	}
	n := p.g.Node(child)
	avail := availability(n.Demand)
	pb := p.s.Buckets.Bucket(parent, distance.Forward)
	cb := p.s.Buckets.Bucket(child, distance.Forward)
	for i, v := range pb {
		if v == 0 {
			continue
		}
		idx := i + n.Weight
		if idx >= len(cb) {
			continue
		}
		cb[idx] = 1 - (1-cb[idx])*(1-v*avail)
	}
	return nil
}

func (p *propagator) OnTraversalDone() error { return nil }

// PropagateProbability estimates the probability that the connection can be
// routed, by propagating per-bucket availability probabilities from source
// to sink over the legal subgraph. The sink's buckets are combined as a
// union across path weights.
func PropagateProbability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int) (float64, error) {
	s.ResetTraversal()

	s.Buckets.Alloc(src, maxWeight)
	if err := s.Buckets.Set(src, distance.Forward, 0, 1); err != nil {
		return 0, err
	}
	v := &propagator{g: g, s: s, maxWeight: maxWeight}
	if err := topo.Traverse(g, s.Recs, s.Infos, src, maxWeight, distance.Forward, topo.ByWeight, v); err != nil {
		return 0, err
	}

	if !s.Buckets.Allocated(snk) {
		return 0, nil
	}
	noPath := 1.0
	for i, b := range s.Buckets.Bucket(snk, distance.Forward) {
		if b < 0 || b > 1 {
			return 0, errors.New(errors.ErrCodeInconsistentProbs,
				"sink bucket %d holds %v for connection %d->%d", i, b, src, snk)
		}
		noPath *= 1 - b
	}
	return 1 - noPath, nil
}
