package rrgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// GraphFile is the canonical serialization format for resource graphs.
// Used for CLI input, API requests, caching, and cross-tool compatibility.
type GraphFile struct {
	Nodes []NodeFile `json:"nodes" bson:"nodes"`
	Edges []EdgeFile `json:"edges" bson:"edges"`
}

// NodeFile is the serialized form of a Node. Degenerate footprints may omit
// the high coordinates (they default to the low ones).
type NodeFile struct {
	Type         string  `json:"type" bson:"type"`
	Weight       int     `json:"weight" bson:"weight"`
	X            int     `json:"x" bson:"x"`
	Y            int     `json:"y" bson:"y"`
	XHigh        *int    `json:"x_high,omitempty" bson:"x_high,omitempty"`
	YHigh        *int    `json:"y_high,omitempty" bson:"y_high,omitempty"`
	PinIndex     int     `json:"pin,omitempty" bson:"pin,omitempty"`
	FanoutSource *int    `json:"fanout_source,omitempty" bson:"fanout_source,omitempty"`
	Demand       float64 `json:"demand,omitempty" bson:"demand,omitempty"`
}

// EdgeFile represents a directed edge by node index.
type EdgeFile struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// MarshalGraph converts a frozen graph to JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	out := FromGraph(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r and returns it frozen.
func ReadGraph(r io.Reader) (*Graph, error) {
	var data GraphFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(data)
}

// ReadGraphFile reads a JSON file and returns the decoded, frozen graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Graph ↔ GraphFile Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
func FromGraph(g *Graph) GraphFile {
	out := GraphFile{
		Nodes: make([]NodeFile, g.NumNodes()),
		Edges: make([]EdgeFile, 0, g.NumEdges()),
	}
	for i := 0; i < g.NumNodes(); i++ {
		id := ID(i)
		n := g.Node(id)
		nf := NodeFile{
			Type:     n.Type.String(),
			Weight:   n.Weight,
			X:        n.XLow,
			Y:        n.YLow,
			PinIndex: n.PinIndex,
			Demand:   n.Demand,
		}
		if n.SpansX() {
			xh := n.XHigh
			nf.XHigh = &xh
		}
		if n.SpansY() {
			yh := n.YHigh
			nf.YHigh = &yh
		}
		if n.FanoutSource != None {
			fs := int(n.FanoutSource)
			nf.FanoutSource = &fs
		}
		out.Nodes[i] = nf
		for _, to := range g.OutEdges(id) {
			out.Edges = append(out.Edges, EdgeFile{From: i, To: int(to)})
		}
	}
	return out
}

// ToGraph converts a GraphFile to a frozen Graph.
// Returns an error if node types are unknown, edges reference missing
// nodes, or footprints violate the graph invariants.
func ToGraph(gf GraphFile) (*Graph, error) {
	g := New(len(gf.Nodes))
	for i, nf := range gf.Nodes {
		typ, err := ParseType(nf.Type)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		n := Node{
			Type:     typ,
			Weight:   nf.Weight,
			XLow:     nf.X,
			YLow:     nf.Y,
			XHigh:    nf.X,
			YHigh:    nf.Y,
			PinIndex: nf.PinIndex,
			Demand:   nf.Demand,
		}
		if nf.XHigh != nil {
			n.XHigh = *nf.XHigh
		}
		if nf.YHigh != nil {
			n.YHigh = *nf.YHigh
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %d: %w", i, err)
		}
	}
	// Fanout links are resolved after all nodes exist.
	for i, nf := range gf.Nodes {
		if nf.FanoutSource == nil {
			continue
		}
		if err := g.SetFanoutSource(ID(i), ID(*nf.FanoutSource)); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}
	for _, ef := range gf.Edges {
		if err := g.AddEdge(ID(ef.From), ID(ef.To)); err != nil {
			return nil, fmt.Errorf("add edge %d→%d: %w", ef.From, ef.To, err)
		}
	}
	if err := g.Freeze(); err != nil {
		return nil, err
	}
	return g, nil
}

// UnmarshalGraph deserializes JSON bytes to a frozen Graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}
