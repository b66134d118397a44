// Package distance implements the bounded-distance precomputation that
// precedes every connection analysis: Dijkstra-style shortest path weights
// from the source (forward, over outgoing edges) and from the sink
// (backward, over incoming edges), plus BFS hop counts in both directions.
//
// All state lives in per-worker Records sized to the whole node table.
// Records are never reset wholesale between connections; only the subset of
// nodes touched by the previous traversal is cleared, via the visited log.
package distance

import "github.com/shikc/wotan/pkg/rrgraph"

// Direction selects which edges a traversal follows.
type Direction uint8

const (
	// Forward follows outgoing edges (expansion away from the source).
	Forward Direction = iota
	// Backward follows incoming edges (expansion away from the sink).
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// Undefined marks a distance or hop count that has not been set.
const Undefined = -1

// Record holds one node's distances for the connection currently being
// analyzed: shortest path weight and minimum hop count from the source and
// from the sink, with independent visited flags for each direction and each
// distance kind.
type Record struct {
	SourceDist int
	SinkDist   int
	SourceHops int
	SinkHops   int

	visitedSource     bool
	visitedSink       bool
	visitedSourceHops bool
	visitedSinkHops   bool
}

// Visited reports whether the weight-distance for dir has been set.
func (r *Record) Visited(dir Direction) bool {
	if dir == Forward {
		return r.visitedSource
	}
	return r.visitedSink
}

// Dist returns the weight-distance for dir (Undefined if unvisited).
func (r *Record) Dist(dir Direction) int {
	if dir == Forward {
		return r.SourceDist
	}
	return r.SinkDist
}

func (r *Record) setDist(dir Direction, d int) {
	if dir == Forward {
		r.SourceDist = d
		r.visitedSource = true
	} else {
		r.SinkDist = d
		r.visitedSink = true
	}
}

func (r *Record) unsetDist(dir Direction) {
	if dir == Forward {
		r.SourceDist = Undefined
		r.visitedSource = false
	} else {
		r.SinkDist = Undefined
		r.visitedSink = false
	}
}

// VisitedHops reports whether the hop count for dir has been set.
func (r *Record) VisitedHops(dir Direction) bool {
	if dir == Forward {
		return r.visitedSourceHops
	}
	return r.visitedSinkHops
}

// Hops returns the hop count for dir (Undefined if unvisited).
func (r *Record) Hops(dir Direction) int {
	if dir == Forward {
		return r.SourceHops
	}
	return r.SinkHops
}

func (r *Record) setHops(dir Direction, h int) {
	if dir == Forward {
		r.SourceHops = h
		r.visitedSourceHops = true
	} else {
		r.SinkHops = h
		r.visitedSinkHops = true
	}
}

// Legal reports whether the node can lie on a source-to-sink path within
// maxWeight. Both directional distances must be known; the node's own
// weight is counted by both, so it is subtracted once.
func (r *Record) Legal(nodeWeight, maxWeight int) bool {
	return r.visitedSource && r.visitedSink &&
		r.SourceDist+r.SinkDist-nodeWeight <= maxWeight
}

// Clear resets the record to its unvisited state.
func (r *Record) Clear() {
	*r = Record{
		SourceDist: Undefined,
		SinkDist:   Undefined,
		SourceHops: Undefined,
		SinkHops:   Undefined,
	}
}

// Records is a per-worker table of distance records, one per graph node.
type Records []Record

// NewRecords allocates a cleared record table for numNodes nodes.
func NewRecords(numNodes int) Records {
	recs := make(Records, numNodes)
	for i := range recs {
		recs[i].Clear()
	}
	return recs
}

// Reset clears exactly the records named in visited. Full-table resets are
// deliberately not provided; they would dominate runtime on large graphs.
func (recs Records) Reset(visited []rrgraph.ID) {
	for _, id := range visited {
		recs[id].Clear()
	}
}

// VisitedLog records which nodes a connection's traversals touched, so that
// scratch state can be cleared without sweeping the whole node table. The
// same log is shared by the distance, hop and topological traversals of one
// connection.
type VisitedLog struct {
	nodes []rrgraph.ID
}

// NewVisitedLog allocates a log with capacity for the whole node table.
func NewVisitedLog(numNodes int) *VisitedLog {
	return &VisitedLog{nodes: make([]rrgraph.ID, 0, numNodes)}
}

// Add appends a node to the log.
func (l *VisitedLog) Add(id rrgraph.ID) { l.nodes = append(l.nodes, id) }

// Nodes returns the logged nodes. The slice is invalidated by Clear.
func (l *VisitedLog) Nodes() []rrgraph.ID { return l.nodes }

// Len returns the number of logged nodes.
func (l *VisitedLog) Len() int { return len(l.nodes) }

// Clear empties the log, keeping its capacity.
func (l *VisitedLog) Clear() { l.nodes = l.nodes[:0] }
