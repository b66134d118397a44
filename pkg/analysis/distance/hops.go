package distance

import "github.com/shikc/wotan/pkg/rrgraph"

// ComputeHops labels nodes with their minimum hop count from `from` in the
// given direction, via breadth-first search. Only legal nodes are expanded:
// both weight-distance traversals must have run already, and every node the
// BFS touches is therefore already in the connection's visited log.
func ComputeHops(g *rrgraph.Graph, recs Records, from rrgraph.ID, maxWeight int, dir Direction) {
	recs[from].setHops(dir, 0)
	queue := []rrgraph.ID{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		hops := recs[id].Hops(dir)

		children := g.OutEdges(id)
		if dir == Backward {
			children = g.InEdges(id)
		}
		for _, child := range children {
			rec := &recs[child]
			if rec.VisitedHops(dir) {
				continue
			}
			if !rec.Legal(g.Node(child).Weight, maxWeight) {
				continue
			}
			rec.setHops(dir, hops+1)
			queue = append(queue, child)
		}
	}
}
