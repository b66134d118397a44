package distance

import (
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Compute labels every node reachable from `from` within maxWeight with its
// shortest path weight in the given direction, recording touched nodes in
// the visited log. `to` is the traversal's destination (the paired sink for
// Forward, the paired source for Backward); it steers pruning but the
// traversal does not stop on reaching it.
//
// Pruning is deliberately asymmetric. Forward expansion applies a geometric
// admissible lower bound against the destination footprint before a child is
// enqueued; backward expansion records the child's distance first, then
// un-marks it if the combined forward+backward weight cannot fit maxWeight.
// The backward check needs forward distances, so Forward must run first.
//
// A node's distance counts its own weight but not the start node's; the
// start is labeled 0.
func Compute(g *rrgraph.Graph, recs Records, from, to rrgraph.ID, maxWeight int, dir Direction, visited *VisitedLog) error {
	dest := g.Node(to)
	if !dest.IsPoint() {
		return errors.New(errors.ErrCodeFootprint,
			"destination node %d (%s) must be localized to a single tile, got (%d,%d)-(%d,%d)",
			to, dest.Type, dest.XLow, dest.YLow, dest.XHigh, dest.YHigh)
	}
	destX, destY := dest.XLow, dest.YLow

	pq := NewBucketQueue(maxWeight)
	recs[from].setDist(dir, 0)
	if err := pq.Push(from, 0); err != nil {
		return err
	}

	for {
		id, pathWeight, ok := pq.Pop()
		if !ok {
			break
		}

		children := g.OutEdges(id)
		if dir == Backward {
			children = g.InEdges(id)
		}
		for _, child := range children {
			rec := &recs[child]
			if rec.Visited(dir) {
				continue
			}
			childWeight := g.Node(child).Weight
			childPathWeight := pathWeight + childWeight

			if dir == Forward {
				reachable, err := hasChanceToReach(g.Node(child), destX, destY, childPathWeight, maxWeight)
				if err != nil {
					return err
				}
				if !reachable {
					continue
				}
				rec.setDist(dir, childPathWeight)
			} else {
				rec.setDist(dir, childPathWeight)
				if !rec.Legal(childWeight, maxWeight) {
					rec.unsetDist(dir)
					continue
				}
			}

			if err := pq.Push(child, childPathWeight); err != nil {
				return err
			}
		}

		visited.Add(id)
	}
	return nil
}

// hasChanceToReach computes an admissible lower bound on the weight still
// needed to reach (destX, destY) from the node, using its footprint, and
// reports whether pathWeight plus that bound fits maxWeight. The bound
// snaps the destination to the nearest edge of the footprint rectangle;
// wires spanning x and wires spanning y snap differently, matching the
// geometry of unit-weight segments in an island-style fabric.
func hasChanceToReach(n *rrgraph.Node, destX, destY, pathWeight, maxWeight int) (bool, error) {
	var xDiff, yDiff int

	switch {
	case !n.SpansX():
		// Node spans in the y direction (or is a point).
		switch {
		case destY <= n.YHigh && destY >= n.YLow:
			xDiff = abs(destX - n.XLow)
			yDiff = 0
		case destY > n.YHigh:
			xDiff = abs(destX - n.XLow)
			yDiff = destY - n.YHigh
		default:
			xDiff = abs(destX - n.XLow)
			yDiff = n.YLow - destY
		}
	case !n.SpansY():
		// Node spans in the x direction.
		switch {
		case destX <= n.XHigh && destX >= n.XLow:
			xDiff = 0
			yDiff = abs(destY-n.YLow) - 1
		case destX > n.XHigh:
			xDiff = destX - n.XHigh
			yDiff = abs(destY - n.YLow)
		default:
			xDiff = n.XLow - destX
			yDiff = abs(destY - n.YLow)
		}
	default:
		return false, errors.New(errors.ErrCodeFootprint,
			"node has a span in both the x and y directions: (%d,%d)-(%d,%d)",
			n.XLow, n.YLow, n.XHigh, n.YHigh)
	}

	remainingLowerBound := max(xDiff+yDiff-1, 0)
	return pathWeight+remainingLowerBound <= maxWeight, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
