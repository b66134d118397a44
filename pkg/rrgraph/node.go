package rrgraph

import "fmt"

// ID is a strongly typed index into a Graph's node arena.
// Using a distinct type prevents accidental mixing with plain ints
// (tile coordinates, pin numbers, bucket indices).
type ID int32

// None is the sentinel for "no node".
const None ID = -1

// Type tags a node with its role in the routing fabric.
type Type uint8

const (
	// Source is a super-source standing in for one or more logically
	// equivalent driver pins of a block.
	Source Type = iota
	// Sink is a super-sink standing in for one or more logically
	// equivalent receiver pins of a block.
	Sink
	// Opin is a physical driver (output) pin.
	Opin
	// Ipin is a physical receiver (input) pin.
	Ipin
	// ChanX is a horizontal routing wire segment.
	ChanX
	// ChanY is a vertical routing wire segment.
	ChanY

	numTypes
)

var typeNames = [numTypes]string{"SOURCE", "SINK", "OPIN", "IPIN", "CHANX", "CHANY"}

// String returns the canonical upper-case name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// ParseType converts a canonical type name back to a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if s == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// IsWire reports whether the node is a routing wire segment (ChanX/ChanY).
// Wire nodes may span several tiles along exactly one axis; all other
// types occupy a single tile.
func (t Type) IsWire() bool { return t == ChanX || t == ChanY }

// IsPin reports whether the node is a physical pin (Opin/Ipin).
func (t Type) IsPin() bool { return t == Opin || t == Ipin }

// Node is a vertex in the routing-resource graph.
//
// The footprint (XLow..XHigh, YLow..YHigh) is the set of tiles the node
// occupies. Pin-like nodes are degenerate (low == high on both axes); wire
// nodes span tiles along exactly one axis. A footprint spanning both axes
// is rejected by Graph.Freeze.
//
// PinIndex discriminates nodes sharing a tile: for Source/Sink nodes it is
// the pin-class index, for Opin/Ipin nodes the physical pin number, and for
// wires the track number. FanoutSource, when set on an Ipin, names the
// synthetic node used to start traversals from that pin (fanout accounting).
type Node struct {
	Type     Type
	Weight   int
	XLow     int
	YLow     int
	XHigh    int
	YHigh    int
	PinIndex int

	// FanoutSource is None unless the node is an Ipin that doubles as a
	// traversal start point.
	FanoutSource ID

	// Demand is the node's expected usage, accumulated by path enumeration
	// or supplied directly by the caller. It is read-only while an analysis
	// phase is running.
	Demand float64
}

// SpansX reports whether the footprint extends along the x axis.
func (n *Node) SpansX() bool { return n.XLow != n.XHigh }

// SpansY reports whether the footprint extends along the y axis.
func (n *Node) SpansY() bool { return n.YLow != n.YHigh }

// IsPoint reports whether the footprint is a single tile.
func (n *Node) IsPoint() bool { return !n.SpansX() && !n.SpansY() }
