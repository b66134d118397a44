package distance

import (
	"testing"

	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// buildGraph freezes a graph from node specs and edge pairs.
func buildGraph(t *testing.T, nodes []rrgraph.Node, edges [][2]int) (*rrgraph.Graph, []rrgraph.ID) {
	t.Helper()
	g := rrgraph.New(len(nodes))
	ids := make([]rrgraph.ID, 0, len(nodes))
	for _, n := range nodes {
		id, err := g.AddNode(n)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, id)
	}
	for _, e := range edges {
		if err := g.AddEdge(ids[e[0]], ids[e[1]]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	if err := g.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return g, ids
}

// linearGraph is SOURCE -> CHANX -> SINK, all weight 1.
func linearGraph(t *testing.T) (*rrgraph.Graph, []rrgraph.ID) {
	t.Helper()
	return buildGraph(t, []rrgraph.Node{
		{Type: rrgraph.Source, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanX, Weight: 1, XLow: 1, YLow: 1, XHigh: 3, YHigh: 1},
		{Type: rrgraph.Sink, Weight: 1, XLow: 3, YLow: 1, XHigh: 3, YHigh: 1},
	}, [][2]int{{0, 1}, {1, 2}})
}

func TestComputeForwardLinear(t *testing.T) {
	g, ids := linearGraph(t)
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	if err := Compute(g, recs, ids[0], ids[2], 3, Forward, log); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := []int{0, 1, 2}
	for i, id := range ids {
		if !recs[id].Visited(Forward) {
			t.Fatalf("node %d not visited", id)
		}
		if d := recs[id].Dist(Forward); d != want[i] {
			t.Errorf("node %d dist = %d, want %d", id, d, want[i])
		}
	}
	if log.Len() != 3 {
		t.Errorf("visited log has %d nodes, want 3", log.Len())
	}
}

func TestComputeBackwardAfterForward(t *testing.T) {
	g, ids := linearGraph(t)
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	if err := Compute(g, recs, ids[0], ids[2], 3, Forward, log); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := Compute(g, recs, ids[2], ids[0], 3, Backward, log); err != nil {
		t.Fatalf("backward: %v", err)
	}

	want := []int{2, 1, 0}
	for i, id := range ids {
		if d := recs[id].Dist(Backward); d != want[i] {
			t.Errorf("node %d sink dist = %d, want %d", id, d, want[i])
		}
		if !recs[id].Legal(g.Node(id).Weight, 3) {
			t.Errorf("node %d should be legal", id)
		}
	}
}

func TestComputeForwardPrunesBeyondBudget(t *testing.T) {
	g, ids := linearGraph(t)
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	// Budget of 1 admits the wire but not the sink.
	if err := Compute(g, recs, ids[0], ids[2], 1, Forward, log); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !recs[ids[1]].Visited(Forward) {
		t.Error("wire should be reachable within budget")
	}
	if recs[ids[2]].Visited(Forward) {
		t.Error("sink should be pruned beyond budget")
	}
}

func TestComputeBackwardDropsIllegalBranch(t *testing.T) {
	// Diamond with one branch too heavy for the budget. The heavy branch
	// never gets a forward distance, so the backward pass must unset it.
	g, ids := buildGraph(t, []rrgraph.Node{
		{Type: rrgraph.Source, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanX, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanY, Weight: 3, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.Sink, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
	}, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	if err := Compute(g, recs, ids[0], ids[3], 2, Forward, log); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := Compute(g, recs, ids[3], ids[0], 2, Backward, log); err != nil {
		t.Fatalf("backward: %v", err)
	}

	if recs[ids[2]].Visited(Backward) {
		t.Error("heavy branch should be unset by backward legality check")
	}
	for _, id := range []rrgraph.ID{ids[0], ids[1], ids[3]} {
		if !recs[id].Legal(g.Node(id).Weight, 2) {
			t.Errorf("node %d should be legal", id)
		}
	}
}

func TestComputeRejectsSpanningDestination(t *testing.T) {
	g, ids := buildGraph(t, []rrgraph.Node{
		{Type: rrgraph.Source, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanX, Weight: 1, XLow: 1, YLow: 1, XHigh: 3, YHigh: 1},
	}, [][2]int{{0, 1}})
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	err := Compute(g, recs, ids[0], ids[1], 3, Forward, log)
	if errors.GetCode(err) != errors.ErrCodeFootprint {
		t.Errorf("Compute = %v, want footprint error", err)
	}
}

func TestHasChanceToReachGeometry(t *testing.T) {
	tests := []struct {
		name       string
		node       rrgraph.Node
		destX      int
		destY      int
		pathWeight int
		maxWeight  int
		want       bool
	}{
		{
			name:       "x wire past high end",
			node:       rrgraph.Node{Type: rrgraph.ChanX, XLow: 2, YLow: 2, XHigh: 5, YHigh: 2},
			destX:      7, destY: 4, pathWeight: 1, maxWeight: 4, want: true,
		},
		{
			name:       "x wire past high end over budget",
			node:       rrgraph.Node{Type: rrgraph.ChanX, XLow: 2, YLow: 2, XHigh: 5, YHigh: 2},
			destX:      7, destY: 4, pathWeight: 2, maxWeight: 4, want: false,
		},
		{
			name:       "y wire dest inside span",
			node:       rrgraph.Node{Type: rrgraph.ChanY, XLow: 3, YLow: 1, XHigh: 3, YHigh: 6},
			destX:      3, destY: 4, pathWeight: 4, maxWeight: 4, want: true,
		},
		{
			name:       "point node far away",
			node:       rrgraph.Node{Type: rrgraph.Opin, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
			destX:      6, destY: 6, pathWeight: 0, maxWeight: 8, want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hasChanceToReach(&tc.node, tc.destX, tc.destY, tc.pathWeight, tc.maxWeight)
			if err != nil {
				t.Fatalf("hasChanceToReach: %v", err)
			}
			if got != tc.want {
				t.Errorf("hasChanceToReach = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasChanceToReachRejectsDoubleSpan(t *testing.T) {
	n := rrgraph.Node{Type: rrgraph.ChanX, XLow: 0, YLow: 0, XHigh: 2, YHigh: 2}
	_, err := hasChanceToReach(&n, 1, 1, 0, 10)
	if errors.GetCode(err) != errors.ErrCodeFootprint {
		t.Errorf("hasChanceToReach = %v, want footprint error", err)
	}
}

func TestComputeHopsDiamond(t *testing.T) {
	g, ids := buildGraph(t, []rrgraph.Node{
		{Type: rrgraph.Source, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanX, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.ChanY, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
		{Type: rrgraph.Sink, Weight: 1, XLow: 1, YLow: 1, XHigh: 1, YHigh: 1},
	}, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	if err := Compute(g, recs, ids[0], ids[3], 3, Forward, log); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := Compute(g, recs, ids[3], ids[0], 3, Backward, log); err != nil {
		t.Fatalf("backward: %v", err)
	}
	ComputeHops(g, recs, ids[0], 3, Forward)
	ComputeHops(g, recs, ids[3], 3, Backward)

	wantFwd := []int{0, 1, 1, 2}
	wantBwd := []int{2, 1, 1, 0}
	for i, id := range ids {
		if h := recs[id].Hops(Forward); h != wantFwd[i] {
			t.Errorf("node %d forward hops = %d, want %d", id, h, wantFwd[i])
		}
		if h := recs[id].Hops(Backward); h != wantBwd[i] {
			t.Errorf("node %d backward hops = %d, want %d", id, h, wantBwd[i])
		}
	}
}

func TestRecordsSubsetReset(t *testing.T) {
	g, ids := linearGraph(t)
	recs := NewRecords(g.NumNodes())
	log := NewVisitedLog(g.NumNodes())

	if err := Compute(g, recs, ids[0], ids[2], 3, Forward, log); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	recs.Reset(log.Nodes())
	log.Clear()

	for _, id := range ids {
		if recs[id].Visited(Forward) {
			t.Errorf("node %d still visited after reset", id)
		}
		if recs[id].Dist(Forward) != Undefined {
			t.Errorf("node %d dist not cleared", id)
		}
	}
	if log.Len() != 0 {
		t.Errorf("log not cleared: %d entries", log.Len())
	}
}
