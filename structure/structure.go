package structure

import (
	"errors"
	"fmt"
	"math"

	"github.com/willf/bitset"

	"github.com/astei/mcstructs/nbt"
)

var (
	ErrOutOfBounds   = errors.New("structure: location out of bounds")
	ErrNegativeSize  = errors.New("structure: negative size")
	ErrTooLarge      = errors.New("structure: too many blocks")
	ErrInvalidBlock  = errors.New("structure: invalid block type")
	ErrNotAContainer = errors.New("structure: block is not a container")
	ErrStaleHandle   = errors.New("structure: block handle is no longer valid")
)

// emptyBlock marks a position that has never been placed.
const emptyBlock int32 = -1

// PositionData is the auxiliary compound attached to one placed block.
type PositionData struct {
	Index uint32
	Data  *nbt.Compound
}

// Structure is a fixed-size grid of blocks with an append-only palette. The
// structure is not safe for concurrent access; usage should be protected by a
// mutex if concurrent access is desired.
type Structure struct {
	size     Vec3[int32]
	blocks   []int32
	palette  []BlockType
	metadata []PositionData

	placed *bitset.BitSet
	// withData marks the flat indices that have an entry in metadata;
	// dataSlot maps each of them to its position in metadata.
	withData *bitset.BitSet
	dataSlot map[uint32]int

	// generation is bumped on every placement and serialization; handles
	// from an older generation are rejected.
	generation uint64
}

// New creates an empty structure. Zero sized axes are allowed.
func New(size Vec3[int32]) (*Structure, error) {
	if size.X() < 0 || size.Y() < 0 || size.Z() < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeSize, size)
	}
	volume := int64(size.X()) * int64(size.Y()) * int64(size.Z())
	if volume > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %v holds %d blocks", ErrTooLarge, size, volume)
	}

	blocks := make([]int32, volume)
	for i := range blocks {
		blocks[i] = emptyBlock
	}
	return &Structure{
		size:     size,
		blocks:   blocks,
		placed:   bitset.New(uint(volume)),
		withData: bitset.New(uint(volume)),
		dataSlot: make(map[uint32]int),
	}, nil
}

func (s *Structure) Size() Vec3[int32] {
	return s.size
}

// FlatIndex maps loc onto the block array: x-major, then y, then z.
func (s *Structure) FlatIndex(loc Vec3[int32]) (uint32, error) {
	if loc.X() < 0 || loc.Y() < 0 || loc.Z() < 0 ||
		loc.X() >= s.size.X() || loc.Y() >= s.size.Y() || loc.Z() >= s.size.Z() {
		return 0, fmt.Errorf("%w: %v in structure of size %v", ErrOutOfBounds, loc, s.size)
	}
	zy := int64(s.size.Z()) * int64(s.size.Y())
	return uint32(zy*int64(loc.X()) + int64(s.size.Z())*int64(loc.Y()) + int64(loc.Z())), nil
}

// SetBlock places block at loc. Every call appends a new palette entry, even
// for a block type that was placed before. The returned handle stays valid
// until the next SetBlock or Serialize on s.
func (s *Structure) SetBlock(loc Vec3[int32], block BlockType) (*BlockHandle, error) {
	index, err := s.FlatIndex(loc)
	if err != nil {
		return nil, err
	}
	if err := validateBlock(block); err != nil {
		return nil, err
	}

	block = block.clone()
	s.blocks[index] = int32(len(s.palette))
	s.palette = append(s.palette, block)
	s.placed.Set(uint(index))
	s.generation++

	return &BlockHandle{
		structure:  s,
		block:      block,
		index:      index,
		generation: s.generation,
	}, nil
}

func validateBlock(block BlockType) error {
	if block.ID == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidBlock)
	}
	seen := make(map[string]struct{}, len(block.States))
	for _, st := range block.States {
		if st.State == nil {
			return fmt.Errorf("%w: %s state %q has no value", ErrInvalidBlock, block.ID, st.Name)
		}
		if _, dup := seen[st.Name]; dup {
			return fmt.Errorf("%w: %s state %q is set twice", ErrInvalidBlock, block.ID, st.Name)
		}
		seen[st.Name] = struct{}{}
	}
	return nil
}

// BlockAt returns the block type most recently placed at loc.
func (s *Structure) BlockAt(loc Vec3[int32]) (BlockType, bool) {
	index, err := s.FlatIndex(loc)
	if err != nil || s.blocks[index] == emptyBlock {
		return BlockType{}, false
	}
	return s.palette[s.blocks[index]].clone(), true
}

// Blocks returns a copy of the flat palette index grid.
func (s *Structure) Blocks() []int32 {
	return append([]int32(nil), s.blocks...)
}

// Palette returns a copy of the palette in placement order.
func (s *Structure) Palette() []BlockType {
	palette := make([]BlockType, len(s.palette))
	for i, b := range s.palette {
		palette[i] = b.clone()
	}
	return palette
}

// PositionData returns a deep copy of the attached metadata in creation order.
func (s *Structure) PositionData() []PositionData {
	out := make([]PositionData, len(s.metadata))
	for i, m := range s.metadata {
		out[i] = PositionData{Index: m.Index, Data: nbt.Clone(m.Data).(*nbt.Compound)}
	}
	return out
}

// Placed reports how many distinct positions hold a block.
func (s *Structure) Placed() int {
	return int(s.placed.Count())
}

func (s *Structure) positionData(index uint32) *nbt.Compound {
	if !s.withData.Test(uint(index)) {
		return nil
	}
	return s.metadata[s.dataSlot[index]].Data
}

func (s *Structure) addPositionData(index uint32, data *nbt.Compound) {
	s.dataSlot[index] = len(s.metadata)
	s.metadata = append(s.metadata, PositionData{Index: index, Data: data})
	s.withData.Set(uint(index))
}
