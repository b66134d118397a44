package estimate

import (
	"math"

	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/topo"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// ReliabilityPolyProbability evaluates the two-terminal reliability
// polynomial under a uniform routing-node demand: paths are enumerated by
// hop count, a path of h hops survives with probability p^(h-1) where
// p = 1 - demand, and the paths are treated as independent.
//
// With N_h paths of h hops the estimate is
//
//	P = 1 - prod_h (1 - p^(h-1))^N_h
//
// computed through log1p so that huge path counts do not underflow.
func ReliabilityPolyProbability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int, routingDemand float64) (float64, error) {
	distance.ComputeHops(g, s.Recs, src, maxWeight, distance.Forward)
	distance.ComputeHops(g, s.Recs, snk, maxWeight, distance.Backward)

	s.ResetTraversal()
	if _, _, err := Enumerate(g, s, src, snk, maxWeight, topo.ByHops, 0); err != nil {
		return 0, err
	}
	if !s.Buckets.Allocated(src) {
		return 0, nil
	}

	p := 1 - routingDemand
	logNoPath := 0.0
	for hops, count := range s.Buckets.Bucket(src, distance.Backward) {
		if count == 0 || hops < 1 {
			continue
		}
		pathUp := math.Pow(p, float64(hops-1))
		if pathUp >= 1 {
			return 1, nil
		}
		logNoPath += count * math.Log1p(-pathUp)
	}
	return 1 - math.Exp(logNoPath), nil
}
