// Package arch describes the tile grid and pin topology of the analyzed
// device: which block types exist, which pin classes they expose, and which
// resource-graph node corresponds to which physical pin at which tile.
//
// The package is a data model, not a parser: architecture files are read by
// an external collaborator which populates these structures alongside the
// resource graph.
package arch

import (
	"errors"
	"fmt"

	"github.com/shikc/wotan/pkg/rrgraph"
)

var (
	// ErrNotFillType is returned when a tile expected to hold a regular
	// logic block holds something else.
	ErrNotFillType = errors.New("tile is not of fill type")

	// ErrTileOffset is returned for tiles with a non-zero width/height
	// offset; multi-tile logic blocks are not supported.
	ErrTileOffset = errors.New("tile has non-zero width/height offset")
)

// Coord is a tile coordinate on the grid.
type Coord struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// ManhattanTo returns the Manhattan distance from c to (x, y).
func (c Coord) ManhattanTo(x, y int) int {
	return abs(c.X-x) + abs(c.Y-y)
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// PinType distinguishes driver (output) from receiver (input) pin classes.
type PinType uint8

const (
	Driver PinType = iota
	Receiver
)

// PinClass groups physically equivalent pins of a block type. A super-source
// or super-sink node in the resource graph stands in for all pins of one
// class, which is what pin-equivalence scaling corrects for.
type PinClass struct {
	Type PinType `json:"type" bson:"type"`
	Pins []int   `json:"pins" bson:"pins"`
}

// NumPins returns the number of physical pins in the class.
func (c *PinClass) NumPins() int { return len(c.Pins) }

// BlockType describes one physical block type of the device.
type BlockType struct {
	Name      string     `json:"name" bson:"name"`
	Classes   []PinClass `json:"classes" bson:"classes"`
	GlobalPin []bool     `json:"global_pin,omitempty" bson:"global_pin,omitempty"`

	// PinProbability holds the usage probability of each physical pin.
	// Pins past the end of the slice default to 1.
	PinProbability []float64 `json:"pin_probability,omitempty" bson:"pin_probability,omitempty"`
}

// PinProb returns the usage probability of one physical pin.
func (b *BlockType) PinProb(pin int) float64 {
	if pin < len(b.PinProbability) {
		return b.PinProbability[pin]
	}
	return 1
}

// ClassProbability returns the shared usage probability of a pin class.
// Pins within a class are physically equivalent, so differing
// probabilities inside one class are a consistency error.
func (b *BlockType) ClassProbability(ci int) (float64, error) {
	class := &b.Classes[ci]
	if len(class.Pins) == 0 {
		return 0, nil
	}
	prob := b.PinProb(class.Pins[0])
	for _, pin := range class.Pins[1:] {
		if b.PinProb(pin) != prob {
			return 0, fmt.Errorf("block %q class %d: pins carry different probabilities", b.Name, ci)
		}
	}
	return prob, nil
}

// IsGlobalPin reports whether the physical pin is a global (clock-like) pin,
// which is excluded from routability analysis.
func (b *BlockType) IsGlobalPin(pin int) bool {
	return pin < len(b.GlobalPin) && b.GlobalPin[pin]
}

// NumDrivers returns the number of driver pins over all classes.
func (b *BlockType) NumDrivers() int { return b.countPins(Driver) }

// NumReceivers returns the number of receiver pins over all classes.
func (b *BlockType) NumReceivers() int { return b.countPins(Receiver) }

func (b *BlockType) countPins(t PinType) int {
	n := 0
	for i := range b.Classes {
		if b.Classes[i].Type == t {
			n += len(b.Classes[i].Pins)
		}
	}
	return n
}

// Tile is one grid position, referencing its block type.
type Tile struct {
	TypeIndex    int `json:"type" bson:"type"`
	WidthOffset  int `json:"width_offset,omitempty" bson:"width_offset,omitempty"`
	HeightOffset int `json:"height_offset,omitempty" bson:"height_offset,omitempty"`
}

// NodeKey identifies a resource-graph node by its physical role: node type,
// tile coordinate, and pin-index discriminator (pin class for Source/Sink,
// pin number for Opin/Ipin).
type NodeKey struct {
	Type rrgraph.Type
	X    int
	Y    int
	Pin  int
}

// Fabric bundles the grid, block types and node lookup for one device.
type Fabric struct {
	Width, Height int
	Tiles         [][]Tile // indexed [x][y]
	BlockTypes    []BlockType
	FillTypeIndex int

	nodeIndex map[NodeKey]rrgraph.ID
}

// NewFabric creates a fabric with an empty node index.
func NewFabric(width, height int) *Fabric {
	tiles := make([][]Tile, width)
	for x := range tiles {
		tiles[x] = make([]Tile, height)
	}
	return &Fabric{
		Width:     width,
		Height:    height,
		Tiles:     tiles,
		nodeIndex: make(map[NodeKey]rrgraph.ID),
	}
}

// FillType returns the descriptor of the regular logic block type.
func (f *Fabric) FillType() *BlockType { return &f.BlockTypes[f.FillTypeIndex] }

// Tile returns the tile at (x, y).
func (f *Fabric) Tile(x, y int) *Tile { return &f.Tiles[x][y] }

// InBounds reports whether (x, y) is a non-perimeter grid position.
// Perimeter tiles hold I/O blocks and are excluded from analysis.
func (f *Fabric) InBounds(x, y int) bool {
	return x > 0 && x < f.Width-1 && y > 0 && y < f.Height-1
}

// MapNode registers the resource-graph node serving the given physical role.
func (f *Fabric) MapNode(key NodeKey, id rrgraph.ID) { f.nodeIndex[key] = id }

// NodeAt looks up the resource-graph node for a physical role.
func (f *Fabric) NodeAt(key NodeKey) (rrgraph.ID, bool) {
	id, ok := f.nodeIndex[key]
	return id, ok
}

// CheckFillTile verifies that the tile at c is a regular logic block with no
// offset. Both violations are graph-consistency errors for the analysis.
func (f *Fabric) CheckFillTile(c Coord) error {
	t := f.Tile(c.X, c.Y)
	if t.TypeIndex != f.FillTypeIndex {
		return fmt.Errorf("%w: tile %s has type %q", ErrNotFillType, c, f.BlockTypes[t.TypeIndex].Name)
	}
	if t.WidthOffset != 0 || t.HeightOffset != 0 {
		return fmt.Errorf("%w: tile %s", ErrTileOffset, c)
	}
	return nil
}

// ConnsAtLength returns the number of input connections available at exactly
// Manhattan distance length from the tile at (tileX, tileY): the sum of
// receiver-pin counts over every in-bounds tile on that ring. Encountering a
// non-fill tile on the ring is an error.
func (f *Fabric) ConnsAtLength(tileX, tileY, length int) (int, error) {
	numConns := 0
	for dx := -length; dx <= length; dx++ {
		yDist := length - abs(dx)
		for dy := -yDist; dy <= yDist; dy += max(2*yDist, 1) {
			destX := tileX + dx
			destY := tileY + dy
			if !f.InBounds(destX, destY) {
				continue
			}
			typeIdx := f.Tile(destX, destY).TypeIndex
			if typeIdx != f.FillTypeIndex {
				return 0, fmt.Errorf("%w: tile (%d,%d)", ErrNotFillType, destX, destY)
			}
			numConns += f.BlockTypes[typeIdx].NumReceivers()
		}
	}
	return numConns, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
