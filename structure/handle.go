package structure

import (
	"fmt"

	"github.com/astei/mcstructs/nbt"
)

// itemsKey names the list of item records inside a container's data.
const itemsKey = "Items"

type itemRecord struct {
	Slot  uint8  `nbt:"Slot"`
	Name  string `nbt:"Name"`
	Count uint8  `nbt:"Count"`
}

// BlockHandle refers to the block placed by one SetBlock call. It is the only
// writer for that block's metadata and is invalidated by the next SetBlock or
// Serialize on its structure.
type BlockHandle struct {
	structure  *Structure
	block      BlockType
	index      uint32
	generation uint64
}

func (h *BlockHandle) Index() uint32 {
	return h.index
}

func (h *BlockHandle) Block() BlockType {
	return h.block.clone()
}

// Valid reports whether the handle may still be used. A nil handle is never
// valid.
func (h *BlockHandle) Valid() bool {
	return h != nil && h.structure != nil && h.generation == h.structure.generation
}

// SetItemSlot records an item stack in the container at the handle's
// position. Repeated calls accumulate records, including for the same slot.
func (h *BlockHandle) SetItemSlot(slot uint8, item string, count uint8) (*BlockHandle, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrStaleHandle)
	}
	if !h.Valid() {
		return nil, fmt.Errorf("%w: %s at index %d", ErrStaleHandle, h.block.ID, h.index)
	}
	if !h.block.IsContainer() {
		return nil, fmt.Errorf("%w: %s at index %d", ErrNotAContainer, h.block.ID, h.index)
	}

	record, err := nbt.Marshal(itemRecord{Slot: slot, Name: item, Count: count})
	if err != nil {
		return nil, err
	}

	s := h.structure
	data := s.positionData(h.index)
	created := data == nil
	if created {
		data = nbt.NewCompound()
	}

	items, err := itemList(data)
	if err != nil {
		return nil, fmt.Errorf("structure: index %d: %w", h.index, err)
	}
	if err := items.Append(record); err != nil {
		return nil, err
	}
	if created {
		s.addPositionData(h.index, data)
	}
	return h, nil
}

// itemList finds or creates the item record list inside data.
func itemList(data *nbt.Compound) (*nbt.List, error) {
	if existing, ok := data.Get(itemsKey); ok {
		items, ok := existing.(*nbt.List)
		if !ok || items.Elem != nbt.TagCompound {
			return nil, fmt.Errorf("%w: %s is %s", nbt.ErrListElementKind, itemsKey, existing.Kind())
		}
		return items, nil
	}
	items, err := nbt.NewList(nbt.TagCompound)
	if err != nil {
		return nil, err
	}
	data.Add(itemsKey, items)
	return items, nil
}
