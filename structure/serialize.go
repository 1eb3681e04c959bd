package structure

import (
	"strconv"

	"github.com/astei/mcstructs/nbt"
)

const formatVersion = 1

// blockEntityKey wraps each entry of block_position_data.
const blockEntityKey = "block_entity_data"

// Serialize encodes the structure as a little-endian structure file. It does
// not change the structure's contents but invalidates outstanding handles.
func (s *Structure) Serialize() ([]byte, error) {
	s.generation++
	root, err := s.Tree()
	if err != nil {
		return nil, err
	}
	return nbt.EncodeCompound(true, root)
}

// Tree builds the root compound of the structure file. The result shares no
// memory with s.
//
// The section order is part of the format:
//
//	format_version, size, block_indices, entities,
//	palette{default{block_palette, block_position_data}}, structure_world_origin
func (s *Structure) Tree() (*nbt.Compound, error) {
	size, err := intList(s.size.X(), s.size.Y(), s.size.Z())
	if err != nil {
		return nil, err
	}
	indices, err := s.blockIndices()
	if err != nil {
		return nil, err
	}
	entities, err := nbt.NewList(nbt.TagCompound)
	if err != nil {
		return nil, err
	}
	palette, err := s.paletteTag()
	if err != nil {
		return nil, err
	}
	origin, err := intList(0, 0, 0)
	if err != nil {
		return nil, err
	}

	return nbt.NewCompound().
		Add("format_version", nbt.Int(formatVersion)).
		Add("size", size).
		Add("block_indices", indices).
		Add("entities", entities).
		Add("palette", palette).
		Add("structure_world_origin", origin), nil
}

// blockIndices holds two layers: the placed blocks, then an unused layer that
// is all empty.
func (s *Structure) blockIndices() (*nbt.List, error) {
	primary := make([]nbt.Data, len(s.blocks))
	secondary := make([]nbt.Data, len(s.blocks))
	for i, b := range s.blocks {
		primary[i] = nbt.Int(b)
		secondary[i] = nbt.Int(emptyBlock)
	}
	first, err := nbt.NewList(nbt.TagInt, primary...)
	if err != nil {
		return nil, err
	}
	second, err := nbt.NewList(nbt.TagInt, secondary...)
	if err != nil {
		return nil, err
	}
	return nbt.NewList(nbt.TagList, first, second)
}

func (s *Structure) paletteTag() (*nbt.Compound, error) {
	blockPalette, err := nbt.NewList(nbt.TagCompound)
	if err != nil {
		return nil, err
	}
	for _, b := range s.palette {
		if err := blockPalette.Append(b.tag()); err != nil {
			return nil, err
		}
	}

	positionData := nbt.NewCompound()
	for _, m := range s.metadata {
		entry := nbt.NewCompound().Add(blockEntityKey, nbt.Clone(m.Data))
		positionData.Add(strconv.FormatUint(uint64(m.Index), 10), entry)
	}

	def := nbt.NewCompound().
		Add("block_palette", blockPalette).
		Add("block_position_data", positionData)
	return nbt.NewCompound().Add("default", def), nil
}

func intList(values ...int32) (*nbt.List, error) {
	items := make([]nbt.Data, len(values))
	for i, v := range values {
		items[i] = nbt.Int(v)
	}
	return nbt.NewList(nbt.TagInt, items...)
}
