package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shikc/wotan/pkg/analysis"
	"github.com/shikc/wotan/pkg/config"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// writeDiamondGraph writes a graph with one source, one sink and two
// parallel unit-weight wires to a temp file.
func writeDiamondGraph(t *testing.T) string {
	t.Helper()
	g := rrgraph.New(4)
	var ids []rrgraph.ID
	for _, n := range []rrgraph.Node{
		{Type: rrgraph.Source, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanX, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanY, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.Sink, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
	} {
		id, err := g.AddNode(n)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, id)
	}
	for _, e := range [][2]rrgraph.ID{{ids[0], ids[1]}, {ids[0], ids[2]}, {ids[1], ids[3]}, {ids[2], ids[3]}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := rrgraph.WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	return path
}

func TestRunAnalyzeSimpleGraph(t *testing.T) {
	graphPath := writeDiamondGraph(t)
	jsonOut := filepath.Join(t.TempDir(), "summary.json")

	opts := analyzeOpts{simple: true, workers: 1, jsonOut: jsonOut}
	if err := runAnalyze(context.Background(), graphPath, &opts); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	data, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var sum analysis.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if sum.Routability != 0.75 {
		t.Errorf("Routability = %v, want 0.75", sum.Routability)
	}
	if sum.AnalyzedConns != 1 {
		t.Errorf("AnalyzedConns = %d, want 1", sum.AnalyzedConns)
	}
}

func TestRunAnalyzeRequiresInput(t *testing.T) {
	if err := runAnalyze(context.Background(), "", &analyzeOpts{}); err == nil {
		t.Error("expected error without a graph path")
	}

	graphPath := writeDiamondGraph(t)
	if err := runAnalyze(context.Background(), graphPath, &analyzeOpts{}); err == nil {
		t.Error("expected error without a fabric in full mode")
	}
}

func TestMergeAnalyzeOpts(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Mode = "cutline"

	mergeAnalyzeOpts(&cfg, "g.json", &analyzeOpts{simple: true, workers: 3})

	if cfg.Graph.Path != "g.json" {
		t.Errorf("Graph.Path = %q", cfg.Graph.Path)
	}
	if !cfg.Graph.Simple {
		t.Error("Simple flag should be set")
	}
	if cfg.Analysis.Workers != 3 {
		t.Errorf("Workers = %d", cfg.Analysis.Workers)
	}
	// Flags left at their zero value keep the configured setting.
	if cfg.Analysis.Mode != "cutline" {
		t.Errorf("Mode = %q, want cutline", cfg.Analysis.Mode)
	}
}
