package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// hopLevels groups the connection's nodes by forward hop count into levels
// 1..bound-1. With pathOnly set, a node must also lie on a path of at most
// bound hops; otherwise every hop-reachable node counts.
//
// The visited log can hold a node once per traversal pass, so membership is
// deduplicated.
func hopLevels(s *Scratch, bound int, pathOnly bool) [][]rrgraph.ID {
	levels := make([][]rrgraph.ID, bound)
	seen := make(map[rrgraph.ID]bool)
	for _, id := range s.Log.Nodes() {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec := &s.Recs[id]
		if !rec.VisitedHops(distance.Forward) {
			continue
		}
		sh := rec.Hops(distance.Forward)
		if sh <= 0 || sh >= bound {
			continue
		}
		if pathOnly {
			if !rec.VisitedHops(distance.Backward) || sh+rec.Hops(distance.Backward) > bound {
				continue
			}
		}
		levels[sh] = append(levels[sh], id)
	}
	return levels
}

// CutlineSimpleProbability cuts the legal subgraph by hop distance from the
// source: every node at hop level l forms one cut, and the estimate is the
// product of the cuts' availabilities. Cruder than the traversal-level
// cutline because dead-end nodes inflate the cuts.
func CutlineSimpleProbability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int) (float64, error) {
	distance.ComputeHops(g, s.Recs, src, maxWeight, distance.Forward)
	if !s.Recs[snk].VisitedHops(distance.Forward) {
		return 0, nil
	}
	bound := s.Recs[snk].Hops(distance.Forward)

	prob := 1.0
	for _, nodes := range hopLevels(s, bound, false) {
		if len(nodes) == 0 {
			continue
		}
		allBlocked := 1.0
		for _, id := range nodes {
			allBlocked *= blockage(g.Node(id).Demand)
		}
		prob *= 1 - allBlocked
	}
	return prob, nil
}
