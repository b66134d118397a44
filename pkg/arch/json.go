package arch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shikc/wotan/pkg/rrgraph"
)

// =============================================================================
// Fabric Serialization API
// =============================================================================

// FabricFile is the serialization format for the device description. It is
// loaded alongside the resource graph; the node map ties physical pin roles
// to resource-graph node indices.
type FabricFile struct {
	Width      int           `json:"width" bson:"width"`
	Height     int           `json:"height" bson:"height"`
	FillType   int           `json:"fill_type" bson:"fill_type"`
	BlockTypes []BlockType   `json:"block_types" bson:"block_types"`
	Tiles      []TileFile    `json:"tiles" bson:"tiles"`
	NodeMap    []NodeMapFile `json:"node_map" bson:"node_map"`
}

// TileFile places a block type at a grid position.
type TileFile struct {
	X            int `json:"x" bson:"x"`
	Y            int `json:"y" bson:"y"`
	Type         int `json:"type" bson:"type"`
	WidthOffset  int `json:"width_offset,omitempty" bson:"width_offset,omitempty"`
	HeightOffset int `json:"height_offset,omitempty" bson:"height_offset,omitempty"`
}

// NodeMapFile binds one physical pin role to a resource-graph node.
type NodeMapFile struct {
	Type string `json:"type" bson:"type"`
	X    int    `json:"x" bson:"x"`
	Y    int    `json:"y" bson:"y"`
	Pin  int    `json:"pin" bson:"pin"`
	Node int    `json:"node" bson:"node"`
}

// ReadFabric decodes a JSON fabric description from r.
func ReadFabric(r io.Reader) (*Fabric, error) {
	var data FabricFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToFabric(data)
}

// ReadFabricFile reads a JSON file and returns the decoded fabric.
func ReadFabricFile(path string) (*Fabric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFabric(f)
}

// WriteFabric writes a fabric as indented JSON to w.
func WriteFabric(f *Fabric, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromFabric(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFabricFile writes a fabric to a JSON file with 0644 permissions.
func WriteFabricFile(f *Fabric, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return WriteFabric(f, out)
}

// =============================================================================
// Fabric ↔ FabricFile Conversion
// =============================================================================

// FromFabric converts a fabric to its serialization format. Tiles with the
// fill type and no offset are omitted; ToFabric restores them as the default.
func FromFabric(f *Fabric) FabricFile {
	out := FabricFile{
		Width:      f.Width,
		Height:     f.Height,
		FillType:   f.FillTypeIndex,
		BlockTypes: f.BlockTypes,
	}
	for x := 0; x < f.Width; x++ {
		for y := 0; y < f.Height; y++ {
			t := f.Tiles[x][y]
			if t.TypeIndex == f.FillTypeIndex && t.WidthOffset == 0 && t.HeightOffset == 0 {
				continue
			}
			out.Tiles = append(out.Tiles, TileFile{
				X: x, Y: y,
				Type:         t.TypeIndex,
				WidthOffset:  t.WidthOffset,
				HeightOffset: t.HeightOffset,
			})
		}
	}
	for key, id := range f.nodeIndex {
		out.NodeMap = append(out.NodeMap, NodeMapFile{
			Type: key.Type.String(),
			X:    key.X,
			Y:    key.Y,
			Pin:  key.Pin,
			Node: int(id),
		})
	}
	return out
}

// ToFabric converts a FabricFile to a Fabric. All tiles default to the fill
// type; entries in Tiles override individual positions.
func ToFabric(ff FabricFile) (*Fabric, error) {
	if ff.Width < 1 || ff.Height < 1 {
		return nil, fmt.Errorf("invalid grid %dx%d", ff.Width, ff.Height)
	}
	if ff.FillType < 0 || ff.FillType >= len(ff.BlockTypes) {
		return nil, fmt.Errorf("fill type %d out of range (%d block types)", ff.FillType, len(ff.BlockTypes))
	}

	f := NewFabric(ff.Width, ff.Height)
	f.BlockTypes = ff.BlockTypes
	f.FillTypeIndex = ff.FillType
	for x := 0; x < f.Width; x++ {
		for y := 0; y < f.Height; y++ {
			f.Tiles[x][y].TypeIndex = ff.FillType
		}
	}
	for _, t := range ff.Tiles {
		if t.X < 0 || t.X >= ff.Width || t.Y < 0 || t.Y >= ff.Height {
			return nil, fmt.Errorf("tile (%d,%d) outside %dx%d grid", t.X, t.Y, ff.Width, ff.Height)
		}
		if t.Type < 0 || t.Type >= len(ff.BlockTypes) {
			return nil, fmt.Errorf("tile (%d,%d): block type %d out of range", t.X, t.Y, t.Type)
		}
		f.Tiles[t.X][t.Y] = Tile{TypeIndex: t.Type, WidthOffset: t.WidthOffset, HeightOffset: t.HeightOffset}
	}
	for _, m := range ff.NodeMap {
		typ, err := rrgraph.ParseType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("node map entry (%d,%d): %w", m.X, m.Y, err)
		}
		f.MapNode(NodeKey{Type: typ, X: m.X, Y: m.Y, Pin: m.Pin}, rrgraph.ID(m.Node))
	}
	return f, nil
}
