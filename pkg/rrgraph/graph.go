// Package rrgraph models the routing-resource graph of a reconfigurable
// device: a directed graph whose nodes are sources, sinks, pins and wire
// segments, addressed by a typed index into a fixed arena.
//
// A Graph is built once (AddNode/AddEdge, then Freeze) and is read-only for
// the duration of an analysis; multiple goroutines may share it without
// locking. Edge lists are slices into a single shared edge arena, so random
// access stays O(1) without per-node allocations.
package rrgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when a node index is outside the arena.
	ErrUnknownNode = errors.New("unknown node index")

	// ErrFrozen is returned by AddNode and AddEdge after Freeze.
	ErrFrozen = errors.New("graph is frozen")

	// ErrNotFrozen is returned by traversal accessors before Freeze.
	ErrNotFrozen = errors.New("graph is not frozen")

	// ErrBadFootprint is returned by Freeze when a wire node's footprint
	// spans both axes, or a non-wire node's footprint is not a point.
	ErrBadFootprint = errors.New("node footprint spans both axes")

	// ErrBadWeight is returned by Freeze when a node has a negative weight.
	ErrBadWeight = errors.New("node weight must be non-negative")
)

// Graph is an arena of routing-resource nodes with directed edges.
//
// The zero value is not usable - use New. Graphs are not safe for concurrent
// mutation; after Freeze they are immutable (except for SetDemand/AddDemand,
// which the analysis orchestrator calls only between phases) and safe for
// concurrent reads.
type Graph struct {
	nodes  []Node
	outTmp [][]ID // build-time adjacency, packed into the arena by Freeze
	inTmp  [][]ID

	edgeArena []ID
	out       [][]ID // subslices of edgeArena
	in        [][]ID

	frozen bool
}

// New creates an empty graph with capacity hints for the node arena.
func New(nodeCapacity int) *Graph {
	return &Graph{
		nodes:  make([]Node, 0, nodeCapacity),
		outTmp: make([][]ID, 0, nodeCapacity),
		inTmp:  make([][]ID, 0, nodeCapacity),
	}
}

// NumNodes returns the number of nodes in the arena.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// AddNode appends a node to the arena and returns its ID.
func (g *Graph) AddNode(n Node) (ID, error) {
	if g.frozen {
		return None, ErrFrozen
	}
	if n.FanoutSource == 0 {
		// The zero value of ID is a valid index; a zero-value Node must
		// mean "no fanout source". Use SetFanoutSource to link node 0.
		n.FanoutSource = None
	}
	id := ID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.outTmp = append(g.outTmp, nil)
	g.inTmp = append(g.inTmp, nil)
	return id, nil
}

// AddEdge adds a directed edge from -> to.
func (g *Graph) AddEdge(from, to ID) error {
	if g.frozen {
		return ErrFrozen
	}
	if !g.valid(from) {
		return fmt.Errorf("%w: from=%d", ErrUnknownNode, from)
	}
	if !g.valid(to) {
		return fmt.Errorf("%w: to=%d", ErrUnknownNode, to)
	}
	g.outTmp[from] = append(g.outTmp[from], to)
	g.inTmp[to] = append(g.inTmp[to], from)
	return nil
}

// SetFanoutSource links an Ipin to the synthetic node traversals start
// from when enumerating fanout paths out of that pin.
func (g *Graph) SetFanoutSource(ipin, src ID) error {
	if g.frozen {
		return ErrFrozen
	}
	if !g.valid(ipin) || !g.valid(src) {
		return ErrUnknownNode
	}
	if g.nodes[ipin].Type != Ipin {
		return fmt.Errorf("node %d: fanout source only applies to IPIN nodes, got %s", ipin, g.nodes[ipin].Type)
	}
	g.nodes[ipin].FanoutSource = src
	return nil
}

// Freeze validates the graph and packs all edge lists into the shared edge
// arena. After Freeze the graph is immutable and safe for concurrent reads.
func (g *Graph) Freeze() error {
	if g.frozen {
		return nil
	}
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Weight < 0 {
			return fmt.Errorf("%w: node %d has weight %d", ErrBadWeight, i, n.Weight)
		}
		if n.XLow > n.XHigh || n.YLow > n.YHigh {
			return fmt.Errorf("node %d: inverted footprint (%d,%d)-(%d,%d)", i, n.XLow, n.YLow, n.XHigh, n.YHigh)
		}
		if n.Type.IsWire() {
			if n.SpansX() && n.SpansY() {
				return fmt.Errorf("%w: node %d (%s)", ErrBadFootprint, i, n.Type)
			}
		} else if !n.IsPoint() {
			return fmt.Errorf("node %d (%s): expected point footprint, got (%d,%d)-(%d,%d)",
				i, n.Type, n.XLow, n.YLow, n.XHigh, n.YHigh)
		}
		if n.FanoutSource != None && !g.valid(n.FanoutSource) {
			return fmt.Errorf("%w: node %d fanout source %d", ErrUnknownNode, i, n.FanoutSource)
		}
	}

	total := 0
	for i := range g.outTmp {
		total += len(g.outTmp[i]) + len(g.inTmp[i])
	}
	g.edgeArena = make([]ID, 0, total)
	g.out = make([][]ID, len(g.nodes))
	g.in = make([][]ID, len(g.nodes))
	for i := range g.nodes {
		start := len(g.edgeArena)
		g.edgeArena = append(g.edgeArena, g.outTmp[i]...)
		g.out[i] = g.edgeArena[start:len(g.edgeArena):len(g.edgeArena)]

		start = len(g.edgeArena)
		g.edgeArena = append(g.edgeArena, g.inTmp[i]...)
		g.in[i] = g.edgeArena[start:len(g.edgeArena):len(g.edgeArena)]
	}
	g.outTmp, g.inTmp = nil, nil
	g.frozen = true
	return nil
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Node returns a pointer to the node with the given ID.
// The returned node must be treated as read-only while an analysis runs.
func (g *Graph) Node(id ID) *Node { return &g.nodes[id] }

// Valid reports whether id addresses a node in the arena.
func (g *Graph) Valid(id ID) bool { return g.valid(id) }

func (g *Graph) valid(id ID) bool { return id >= 0 && int(id) < len(g.nodes) }

// OutEdges returns the IDs reached by following outgoing edges of id.
// The slice aliases the shared edge arena and must not be modified.
func (g *Graph) OutEdges(id ID) []ID { return g.out[id] }

// InEdges returns the IDs of nodes with an edge into id.
// The slice aliases the shared edge arena and must not be modified.
func (g *Graph) InEdges(id ID) []ID { return g.in[id] }

// NumEdges returns the total directed edge count.
func (g *Graph) NumEdges() int {
	if g.frozen {
		return len(g.edgeArena) / 2
	}
	n := 0
	for _, e := range g.outTmp {
		n += len(e)
	}
	return n
}

// SetDemand overwrites a node's demand value. Only the analysis
// orchestrator may call this, and only between analysis phases.
func (g *Graph) SetDemand(id ID, demand float64) { g.nodes[id].Demand = demand }

// AddDemand adds to a node's demand value. Only the analysis orchestrator
// may call this, and only between analysis phases.
func (g *Graph) AddDemand(id ID, delta float64) { g.nodes[id].Demand += delta }

// FindSingleSourceSink locates the unique Source and Sink node in the graph.
// It is used by the simple-graph analysis mode; more than one of either is
// an error, as is a missing one.
func (g *Graph) FindSingleSourceSink() (source, sink ID, err error) {
	source, sink = None, None
	for i := range g.nodes {
		switch g.nodes[i].Type {
		case Source:
			if source != None {
				return None, None, fmt.Errorf("expected exactly one SOURCE node, found another at %d", i)
			}
			source = ID(i)
		case Sink:
			if sink != None {
				return None, None, fmt.Errorf("expected exactly one SINK node, found another at %d", i)
			}
			sink = ID(i)
		}
	}
	if source == None {
		return None, None, errors.New("graph has no SOURCE node")
	}
	if sink == None {
		return None, None, errors.New("graph has no SINK node")
	}
	return source, sink, nil
}

// MaxWeight returns the largest node weight in the graph.
func (g *Graph) MaxWeight() int {
	max := 0
	for i := range g.nodes {
		if g.nodes[i].Weight > max {
			max = g.nodes[i].Weight
		}
	}
	return max
}
