package topo

import (
	"sort"

	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Mode selects the ordering key of a traversal: shortest path weight or
// minimum hop count from the start node.
type Mode uint8

const (
	ByWeight Mode = iota
	ByHops
)

// String returns "by-weight" or "by-hops".
func (m Mode) String() string {
	if m == ByHops {
		return "by-hops"
	}
	return "by-weight"
}

// Visitor receives traversal events. Any error aborts the traversal and is
// returned unchanged from Traverse.
type Visitor interface {
	// OnNodePopped fires when a node is processed, in traversal order.
	OnNodePopped(id rrgraph.ID) error
	// OnChildIterated fires for every legal, not yet processed child of a
	// popped node, before the child is scheduled.
	OnChildIterated(parent, child rrgraph.ID) error
	// OnTraversalDone fires exactly once, after the last node.
	OnTraversalDone() error
}

// NodeInfo is per-node traversal scratch state.
type NodeInfo struct {
	// Level is the depth at which the node was first reached from the
	// start node. Assigned once, on the first parent touch.
	Level int

	parentsReady int
	legalParents int
	done         bool
	enqueued     bool
	waiting      bool
}

// Done reports whether the node was processed by the last traversal.
func (n *NodeInfo) Done() bool { return n.done }

// Clear resets the info to its untouched state.
func (n *NodeInfo) Clear() {
	*n = NodeInfo{Level: -1, legalParents: -1}
}

// Infos is a per-worker table of traversal state, one entry per graph node.
type Infos []NodeInfo

// NewInfos allocates a cleared info table.
func NewInfos(numNodes int) Infos {
	infos := make(Infos, numNodes)
	for i := range infos {
		infos[i].Clear()
	}
	return infos
}

// Reset clears exactly the entries named in visited.
func (infos Infos) Reset(visited []rrgraph.ID) {
	for _, id := range visited {
		infos[id].Clear()
	}
}

// waitingEntry holds a node that has been reached but still has unprocessed
// legal parents, keyed for deterministic lowest-first forcing.
type waitingEntry struct {
	key int
	id  rrgraph.ID
}

// waitingSet is an ordered set of stalled nodes. It is consulted only when
// the ready queue runs dry, which on an acyclic legal subgraph is never; on
// cyclic subgraphs its lowest entry is forced through to break the cycle.
type waitingSet struct {
	entries []waitingEntry
}

func (w *waitingSet) search(e waitingEntry) int {
	return sort.Search(len(w.entries), func(i int) bool {
		c := w.entries[i]
		return c.key > e.key || (c.key == e.key && c.id >= e.id)
	})
}

func (w *waitingSet) insert(e waitingEntry) {
	i := w.search(e)
	w.entries = append(w.entries, waitingEntry{})
	copy(w.entries[i+1:], w.entries[i:])
	w.entries[i] = e
}

func (w *waitingSet) remove(e waitingEntry) {
	i := w.search(e)
	if i < len(w.entries) && w.entries[i] == e {
		w.entries = append(w.entries[:i], w.entries[i+1:]...)
	}
}

func (w *waitingSet) popLowest() (waitingEntry, bool) {
	if len(w.entries) == 0 {
		return waitingEntry{}, false
	}
	e := w.entries[0]
	w.entries = w.entries[1:]
	return e, true
}

func (w *waitingSet) empty() bool { return len(w.entries) == 0 }

// Traverse processes the legal subgraph of one connection in topological
// order, starting at start and following the direction's edges. A node
// enters the ready queue once every legal parent has been processed; when
// the ready queue is empty but stalled nodes remain, the lowest-keyed
// stalled node is processed anyway, which is what terminates on routing
// graphs with cycles.
//
// Both weight-distance traversals (and, for ByHops, both hop traversals)
// must have run already so that legality and keys are defined.
func Traverse(g *rrgraph.Graph, recs distance.Records, infos Infos,
	start rrgraph.ID, maxWeight int, dir distance.Direction, mode Mode, v Visitor) error {

	key := func(id rrgraph.ID) int {
		if mode == ByHops {
			return recs[id].Hops(dir)
		}
		return recs[id].Dist(dir)
	}

	ready := distance.NewBucketQueue(maxWeight)
	var waiting waitingSet

	if infos[start].Level < 0 {
		infos[start].Level = 0
	}
	infos[start].enqueued = true
	if err := ready.Push(start, 0); err != nil {
		return err
	}

	for {
		id, _, ok := ready.Pop()
		if !ok {
			e, found := waiting.popLowest()
			if !found {
				break
			}
			id = e.id
			infos[id].waiting = false
			infos[id].enqueued = true
		}
		info := &infos[id]
		if info.done {
			continue
		}

		if err := v.OnNodePopped(id); err != nil {
			return err
		}
		info.done = true

		children := g.OutEdges(id)
		if dir == distance.Backward {
			children = g.InEdges(id)
		}
		for _, child := range children {
			cinfo := &infos[child]
			if cinfo.done {
				// Back edge of a cycle.
				continue
			}
			if !recs[child].Legal(g.Node(child).Weight, maxWeight) {
				continue
			}

			if err := v.OnChildIterated(id, child); err != nil {
				return err
			}

			if cinfo.Level < 0 {
				cinfo.Level = info.Level + 1
			}
			if cinfo.legalParents < 0 {
				cinfo.legalParents = countLegalParents(g, recs, child, maxWeight, dir)
			}
			cinfo.parentsReady++

			if cinfo.enqueued {
				continue
			}
			if cinfo.parentsReady >= cinfo.legalParents {
				if cinfo.waiting {
					waiting.remove(waitingEntry{key: key(child), id: child})
					cinfo.waiting = false
				}
				cinfo.enqueued = true
				if err := ready.Push(child, key(child)); err != nil {
					return err
				}
			} else if !cinfo.waiting {
				cinfo.waiting = true
				waiting.insert(waitingEntry{key: key(child), id: child})
			}
		}
	}

	if !waiting.empty() {
		// popLowest drains the set, so this cannot happen.
		panic("topo: waiting set not drained")
	}
	return v.OnTraversalDone()
}

// countLegalParents counts the in-direction neighbors of id that can lie on
// a legal path. Computed lazily on first touch because most nodes of the
// graph never enter any one connection's legal subgraph.
func countLegalParents(g *rrgraph.Graph, recs distance.Records, id rrgraph.ID, maxWeight int, dir distance.Direction) int {
	parents := g.InEdges(id)
	if dir == distance.Backward {
		parents = g.OutEdges(id)
	}
	n := 0
	for _, p := range parents {
		if recs[p].Legal(g.Node(p).Weight, maxWeight) {
			n++
		}
	}
	return n
}
