package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/topo"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// levelCollector groups processed nodes by the level the traversal assigned
// them. Each level is treated as a cut of the legal subgraph.
type levelCollector struct {
	infos  topo.Infos
	levels map[int][]rrgraph.ID
}

func (c *levelCollector) OnNodePopped(id rrgraph.ID) error {
	lvl := c.infos[id].Level
	c.levels[lvl] = append(c.levels[lvl], id)
	return nil
}

func (c *levelCollector) OnChildIterated(parent, child rrgraph.ID) error { return nil }
func (c *levelCollector) OnTraversalDone() error                         { return nil }

// CutlineProbability estimates routability as the product, over the levels
// strictly between source and sink, of the probability that at least one
// node of the level is available. Levels come from the topological
// traversal, so each one separates source from sink.
func CutlineProbability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int) (float64, error) {
	s.ResetTraversal()

	col := &levelCollector{infos: s.Infos, levels: make(map[int][]rrgraph.ID)}
	if err := topo.Traverse(g, s.Recs, s.Infos, src, maxWeight, distance.Forward, topo.ByWeight, col); err != nil {
		return 0, err
	}
	if !s.Infos[snk].Done() {
		return 0, nil
	}

	prob := 1.0
	for lvl := 1; lvl < s.Infos[snk].Level; lvl++ {
		nodes := col.levels[lvl]
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
