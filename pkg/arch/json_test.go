package arch

import (
	"path/filepath"
	"testing"

	"github.com/shikc/wotan/pkg/rrgraph"
)

func sampleFabric() *Fabric {
	f := NewFabric(4, 4)
	f.BlockTypes = []BlockType{
		{Name: "clb", Classes: []PinClass{
			{Type: Driver, Pins: []int{0}},
			{Type: Receiver, Pins: []int{1, 2}},
		}},
		{Name: "io"},
	}
	f.FillTypeIndex = 0
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if !f.InBounds(x, y) {
				f.Tiles[x][y].TypeIndex = 1
			}
		}
	}
	f.MapNode(NodeKey{Type: rrgraph.Source, X: 1, Y: 1, Pin: 0}, 7)
	f.MapNode(NodeKey{Type: rrgraph.Sink, X: 2, Y: 2, Pin: 1}, 12)
	return f
}

func TestFabricFileRoundTrip(t *testing.T) {
	f := sampleFabric()
	path := filepath.Join(t.TempDir(), "fabric.json")

	if err := WriteFabricFile(f, path); err != nil {
		t.Fatalf("WriteFabricFile: %v", err)
	}
	got, err := ReadFabricFile(path)
	if err != nil {
		t.Fatalf("ReadFabricFile: %v", err)
	}

	if got.Width != 4 || got.Height != 4 {
		t.Errorf("grid = %dx%d, want 4x4", got.Width, got.Height)
	}
	if got.FillType().Name != "clb" {
		t.Errorf("fill type = %q, want clb", got.FillType().Name)
	}
	if got.Tile(0, 0).TypeIndex != 1 {
		t.Error("perimeter tile lost its io type")
	}
	if got.Tile(1, 1).TypeIndex != 0 {
		t.Error("interior tile should default to the fill type")
	}
	id, ok := got.NodeAt(NodeKey{Type: rrgraph.Source, X: 1, Y: 1, Pin: 0})
	if !ok || id != 7 {
		t.Errorf("NodeAt(source) = %d, %v; want 7, true", id, ok)
	}
	if got.FillType().NumReceivers() != 2 {
		t.Errorf("NumReceivers = %d, want 2", got.FillType().NumReceivers())
	}
}

func TestToFabricRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		file FabricFile
	}{
		{"empty grid", FabricFile{}},
		{"fill type out of range", FabricFile{Width: 2, Height: 2, FillType: 3, BlockTypes: []BlockType{{Name: "clb"}}}},
		{
			"tile outside grid",
			FabricFile{Width: 2, Height: 2, BlockTypes: []BlockType{{Name: "clb"}}, Tiles: []TileFile{{X: 5, Y: 0}}},
		},
		{
			"unknown node type",
			FabricFile{Width: 2, Height: 2, BlockTypes: []BlockType{{Name: "clb"}}, NodeMap: []NodeMapFile{{Type: "BOGUS"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToFabric(tt.file); err == nil {
				t.Error("expected error")
			}
		})
	}
}
