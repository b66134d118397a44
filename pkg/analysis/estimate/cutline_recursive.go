package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// CutlineRecursiveProbability refines the hop cutline: cut membership is
// restricted to nodes that lie on a path of at most bound hops, so dead
// ends do not dilute the cuts, and the levels are evaluated by bounded
// recursion from the source side.
func CutlineRecursiveProbability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int) (float64, error) {
	distance.ComputeHops(g, s.Recs, src, maxWeight, distance.Forward)
	distance.ComputeHops(g, s.Recs, snk, maxWeight, distance.Backward)
	if !s.Recs[snk].VisitedHops(distance.Forward) {
		return 0, nil
	}
	bound := s.Recs[snk].Hops(distance.Forward)

	return cutRecurse(g, hopLevels(s, bound, true), 1), nil
}

// cutRecurse multiplies the availability of the cut at lvl by the
// routability of everything past it. Depth is bounded by the hop distance
// of the connection.
func cutRecurse(g *rrgraph.Graph, levels [][]rrgraph.ID, lvl int) float64 {
	if lvl >= len(levels) {
		return 1
	}
	nodes := levels[lvl]
	if len(nodes) == 0 {
		return cutRecurse(g, levels, lvl+1)
	}
	allBlocked := 1.0
	for _, id := range nodes {
		allBlocked *= blockage(g.Node(id).Demand)
	}
	return (1 - allBlocked) * cutRecurse(g, levels, lvl+1)
}
