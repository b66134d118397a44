// Package export renders resource graphs for inspection: Graphviz DOT text
// and SVG images, with nodes shaded by demand.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Options controls what the exported graph shows.
type Options struct {
	// ShowDemand appends each node's demand to its label and shades
	// congested nodes.
	ShowDemand bool

	// MaxNodes aborts the export for graphs larger than this, since DOT
	// layouts of full fabrics are unreadable. Zero means no limit.
	MaxNodes int
}

// ToDOT returns a Graphviz DOT representation of the graph.
//
// The DOT format can be rendered with Graphviz tools (dot, neato, etc.) or
// programmatically with RenderSVG.
//
// Node representation:
//   - SOURCE/SINK: ellipse shape
//   - OPIN/IPIN: diamond shape
//   - CHANX/CHANY (wires): box shape, shaded by demand when requested
func ToDOT(g *rrgraph.Graph, opts Options) (string, error) {
	if opts.MaxNodes > 0 && g.NumNodes() > opts.MaxNodes {
		return "", fmt.Errorf("graph has %d nodes, export limited to %d", g.NumNodes(), opts.MaxNodes)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph rrgraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n\n")

	for i := 0; i < g.NumNodes(); i++ {
		id := rrgraph.ID(i)
		n := g.Node(id)
		label := fmt.Sprintf("%s %d\\n(%d,%d)", n.Type, id, n.XLow, n.YLow)
		if opts.ShowDemand {
			label += fmt.Sprintf("\\nd=%.3f", n.Demand)
		}
		fmt.Fprintf(&buf, "  n%d [label=\"%s\", shape=%s%s];\n", id, label, shape(n.Type), fill(n, opts))
	}
	buf.WriteString("\n")
	for i := 0; i < g.NumNodes(); i++ {
		id := rrgraph.ID(i)
		for _, child := range g.OutEdges(id) {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, child)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func shape(t rrgraph.Type) string {
	switch {
	case t == rrgraph.Source || t == rrgraph.Sink:
		return "ellipse"
	case t.IsPin():
		return "diamond"
	default:
		return "box"
	}
}

func fill(n *rrgraph.Node, opts Options) string {
	if !opts.ShowDemand || !n.Type.IsWire() || n.Demand <= 0 {
		return ""
	}
	// Shade from white toward red as demand approaches saturation.
	d := n.Demand
	if d > 1 {
		d = 1
	}
	level := 255 - int(d*160)
	return fmt.Sprintf(", fillcolor=\"#ff%02x%02x\"", level, level)
}

// RenderSVG renders the graph as an SVG image.
//
// RenderSVG generates a DOT representation via ToDOT, then uses Graphviz to
// render it to SVG format. The returned bytes are a complete SVG document.
//
// RenderSVG requires the Graphviz library (github.com/goccy/go-graphviz).
// Errors are returned if Graphviz cannot initialize, the DOT is malformed,
// or rendering fails.
func RenderSVG(ctx context.Context, g *rrgraph.Graph, opts Options) ([]byte, error) {
	dot, err := ToDOT(g, opts)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
