package structure

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astei/mcstructs/nbt"
)

func comparator() BlockType {
	return NewBlockType("minecraft:unpowered_comparator").
		WithState("cardinal_direction", StringState("north")).
		WithState("output_lit_bit", Bool(false)).
		WithState("output_subtract_bit", Bool(true))
}

func newStructure(t *testing.T, x, y, z int32) *Structure {
	t.Helper()
	s, err := New(NewVec3(x, y, z))
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newStructure(t, 2, 3, 4)
	assert.Equal(t, NewVec3[int32](2, 3, 4), s.Size())
	blocks := s.Blocks()
	assert.Len(t, blocks, 24)
	for _, b := range blocks {
		assert.Equal(t, int32(-1), b)
	}
	assert.Empty(t, s.Palette())
	assert.Empty(t, s.PositionData())
	assert.Equal(t, 0, s.Placed())

	_, err := New(NewVec3[int32](1, -1, 1))
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = New(NewVec3[int32](2048, 2048, 2048))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFlatIndexOrder(t *testing.T) {
	s := newStructure(t, 2, 3, 4)
	tests := []struct {
		x, y, z int32
		want    uint32
	}{
		{0, 0, 0, 0},
		{0, 0, 1, 1},
		{0, 1, 0, 4},
		{1, 0, 0, 12},
		{1, 2, 3, 23},
	}
	for _, tt := range tests {
		got, err := s.FlatIndex(NewVec3(tt.x, tt.y, tt.z))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "(%d, %d, %d)", tt.x, tt.y, tt.z)
	}
}

func TestScenarioComparator(t *testing.T) {
	s := newStructure(t, 1, 2, 1)
	h, err := s.SetBlock(Origin, comparator())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h.Index())

	assert.Len(t, s.Palette(), 1)
	assert.Equal(t, []int32{0, -1}, s.Blocks())

	got, ok := s.BlockAt(Origin)
	require.True(t, ok)
	assert.Equal(t, comparator(), got)
	_, ok = s.BlockAt(NewVec3[int32](0, 1, 0))
	assert.False(t, ok)
}

func TestScenarioBarrel(t *testing.T) {
	s := newStructure(t, 1, 2, 1)
	_, err := s.SetBlock(Origin, comparator())
	require.NoError(t, err)

	h, err := s.SetBlock(NewVec3[int32](0, 1, 0), NewBlockType("minecraft:barrel"))
	require.NoError(t, err)
	same, err := h.SetItemSlot(0, "minecraft:redstone", 32)
	require.NoError(t, err)
	assert.Same(t, h, same)

	data := s.PositionData()
	require.Len(t, data, 1)
	assert.Equal(t, uint32(1), data[0].Index)

	items, err := nbt.NewList(nbt.TagCompound, nbt.NewCompound().
		Add("Slot", nbt.Byte(0)).
		Add("Name", nbt.String("minecraft:redstone")).
		Add("Count", nbt.Byte(32)))
	require.NoError(t, err)
	want := nbt.NewCompound().Add("Items", items)
	if diff := cmp.Diff(want, data[0].Data); diff != "" {
		t.Errorf("position data mismatch (-want +got):\n%s", diff)
	}
}

func TestItemSlotsAccumulate(t *testing.T) {
	s := newStructure(t, 2, 1, 1)
	h, err := s.SetBlock(Origin, NewBlockType("minecraft:chest"))
	require.NoError(t, err)

	_, err = h.SetItemSlot(0, "minecraft:redstone", 1)
	require.NoError(t, err)
	_, err = h.SetItemSlot(0, "minecraft:stone", 2)
	require.NoError(t, err)
	_, err = h.SetItemSlot(5, "minecraft:dirt", 64)
	require.NoError(t, err)

	data := s.PositionData()
	require.Len(t, data, 1)
	items, ok := data[0].Data.Get("Items")
	require.True(t, ok)
	assert.Equal(t, 3, items.(*nbt.List).Len())
}

func TestSetItemSlotOnNonContainer(t *testing.T) {
	s := newStructure(t, 1, 1, 1)
	h, err := s.SetBlock(Origin, comparator())
	require.NoError(t, err)

	_, err = h.SetItemSlot(0, "minecraft:redstone", 1)
	assert.ErrorIs(t, err, ErrNotAContainer)
	assert.Empty(t, s.PositionData())
}

func TestStaleHandle(t *testing.T) {
	s := newStructure(t, 2, 1, 1)
	first, err := s.SetBlock(Origin, NewBlockType("minecraft:barrel"))
	require.NoError(t, err)
	assert.True(t, first.Valid())

	second, err := s.SetBlock(NewVec3[int32](1, 0, 0), NewBlockType("minecraft:barrel"))
	require.NoError(t, err)
	assert.False(t, first.Valid())

	_, err = first.SetItemSlot(0, "minecraft:redstone", 1)
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.Empty(t, s.PositionData())

	_, err = second.SetItemSlot(0, "minecraft:redstone", 1)
	require.NoError(t, err)

	_, err = s.Serialize()
	require.NoError(t, err)
	_, err = second.SetItemSlot(1, "minecraft:redstone", 1)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestNilHandle(t *testing.T) {
	s := newStructure(t, 1, 1, 1)
	h, err := s.SetBlock(NewVec3[int32](3, 0, 0), NewBlockType("minecraft:chest"))
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.Nil(t, h)

	assert.False(t, h.Valid())
	_, err = h.SetItemSlot(0, "minecraft:redstone", 1)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestPositionDataFollowsIndex(t *testing.T) {
	s := newStructure(t, 3, 1, 1)
	chest := NewBlockType("minecraft:chest")
	addItem := func(x int32, item string) {
		t.Helper()
		h, err := s.SetBlock(NewVec3(x, 0, 0), chest)
		require.NoError(t, err)
		_, err = h.SetItemSlot(0, item, 1)
		require.NoError(t, err)
	}
	addItem(0, "minecraft:stone")
	addItem(2, "minecraft:dirt")
	addItem(0, "minecraft:sand")

	data := s.PositionData()
	require.Len(t, data, 2)
	itemNames := func(d *nbt.Compound) []string {
		items, ok := d.Get("Items")
		require.True(t, ok)
		var names []string
		for _, item := range items.(*nbt.List).Items {
			name, _ := item.(*nbt.Compound).Get("Name")
			names = append(names, string(name.(nbt.String)))
		}
		return names
	}
	assert.Equal(t, uint32(0), data[0].Index)
	assert.Equal(t, []string{"minecraft:stone", "minecraft:sand"}, itemNames(data[0].Data))
	assert.Equal(t, uint32(2), data[1].Index)
	assert.Equal(t, []string{"minecraft:dirt"}, itemNames(data[1].Data))
}

func TestPaletteGrowsOnEveryPlacement(t *testing.T) {
	s := newStructure(t, 2, 2, 2)
	stone := NewBlockType("minecraft:stone")
	for i := 0; i < 5; i++ {
		_, err := s.SetBlock(NewVec3[int32](0, 0, 0), stone)
		require.NoError(t, err)
	}
	_, err := s.SetBlock(NewVec3[int32](1, 1, 1), stone)
	require.NoError(t, err)

	assert.Len(t, s.Palette(), 6)
	assert.Equal(t, 2, s.Placed())
	blocks := s.Blocks()
	assert.Equal(t, int32(4), blocks[0])
	assert.Equal(t, int32(5), blocks[7])
}

func TestSetBlockOutOfBounds(t *testing.T) {
	s := newStructure(t, 2, 2, 2)
	_, err := s.SetBlock(Origin, comparator())
	require.NoError(t, err)

	for _, loc := range []Vec3[int32]{
		NewVec3[int32](2, 0, 0),
		NewVec3[int32](0, 2, 0),
		NewVec3[int32](0, 0, 2),
		NewVec3[int32](-1, 0, 0),
		NewVec3[int32](0, 0, -5),
	} {
		_, err := s.SetBlock(loc, comparator())
		assert.ErrorIs(t, err, ErrOutOfBounds, "%v", loc)
	}
	assert.Len(t, s.Palette(), 1)
	assert.Equal(t, []int32{0, -1, -1, -1, -1, -1, -1, -1}, s.Blocks())

	empty := newStructure(t, 0, 0, 0)
	_, err = empty.SetBlock(Origin, comparator())
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSetBlockRejectsInvalidBlock(t *testing.T) {
	s := newStructure(t, 1, 1, 1)
	_, err := s.SetBlock(Origin, BlockType{})
	assert.ErrorIs(t, err, ErrInvalidBlock)

	dup := BlockType{ID: "minecraft:stone", States: []NamedState{
		{Name: "a", State: IntState(1)},
		{Name: "a", State: IntState(2)},
	}}
	_, err = s.SetBlock(Origin, dup)
	assert.ErrorIs(t, err, ErrInvalidBlock)

	_, err = s.SetBlock(Origin, BlockType{ID: "minecraft:stone", States: []NamedState{{Name: "a"}}})
	assert.ErrorIs(t, err, ErrInvalidBlock)

	assert.Empty(t, s.Palette())
	assert.Equal(t, 0, s.Placed())
}

func TestWithStateReplacesInPlace(t *testing.T) {
	base := NewBlockType("minecraft:lever").
		WithState("open_bit", Bool(false)).
		WithState("lever_direction", StringState("up"))
	changed := base.WithState("open_bit", Bool(true))

	require.Len(t, changed.States, 2)
	assert.Equal(t, "open_bit", changed.States[0].Name)
	assert.Equal(t, Bool(true), changed.States[0].State)

	// the original value is untouched
	v, ok := base.State("open_bit")
	require.True(t, ok)
	assert.Equal(t, Bool(false), v)

	_, ok = base.State("missing")
	assert.False(t, ok)
}

func TestIsContainer(t *testing.T) {
	assert.True(t, NewBlockType("minecraft:barrel").IsContainer())
	assert.True(t, NewBlockType("minecraft:chest").IsContainer())
	assert.False(t, NewBlockType("minecraft:stone").IsContainer())
	assert.False(t, NewBlockType("barrel").IsContainer())
}

type leBuf []byte

func (b *leBuf) u8(v byte) { *b = append(*b, v) }
func (b *leBuf) i32(v int32) {
	*b = binary.LittleEndian.AppendUint32(*b, uint32(v))
}
func (b *leBuf) str(s string) {
	*b = binary.LittleEndian.AppendUint16(*b, uint16(len(s)))
	*b = append(*b, s...)
}
func (b *leBuf) tag(kind nbt.Kind, name string) {
	b.u8(byte(kind))
	b.str(name)
}

func TestSerializeLayout(t *testing.T) {
	s := newStructure(t, 1, 1, 1)
	_, err := s.SetBlock(Origin, NewBlockType("minecraft:stone").WithState("stone_type", IntState(2)))
	require.NoError(t, err)

	var want leBuf
	want.tag(nbt.TagCompound, "")

	want.tag(nbt.TagInt, "format_version")
	want.i32(1)

	want.tag(nbt.TagList, "size")
	want.u8(byte(nbt.TagInt))
	want.i32(3)
	want.i32(1)
	want.i32(1)
	want.i32(1)

	want.tag(nbt.TagList, "block_indices")
	want.u8(byte(nbt.TagList))
	want.i32(2)
	want.u8(byte(nbt.TagInt))
	want.i32(1)
	want.i32(0)
	want.u8(byte(nbt.TagInt))
	want.i32(1)
	want.i32(-1)

	want.tag(nbt.TagList, "entities")
	want.u8(byte(nbt.TagCompound))
	want.i32(0)

	want.tag(nbt.TagCompound, "palette")
	want.tag(nbt.TagCompound, "default")
	want.tag(nbt.TagList, "block_palette")
	want.u8(byte(nbt.TagCompound))
	want.i32(1)
	want.tag(nbt.TagString, "name")
	want.str("minecraft:stone")
	want.tag(nbt.TagCompound, "states")
	want.tag(nbt.TagInt, "stone_type")
	want.i32(2)
	want.u8(0) // states
	want.u8(0) // palette entry
	want.tag(nbt.TagCompound, "block_position_data")
	want.u8(0) // block_position_data
	want.u8(0) // default
	want.u8(0) // palette

	want.tag(nbt.TagList, "structure_world_origin")
	want.u8(byte(nbt.TagInt))
	want.i32(3)
	want.i32(0)
	want.i32(0)
	want.i32(0)

	want.u8(0) // root

	got, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte(want), got)
}

func TestSerializeRoundTrip(t *testing.T) {
	s := newStructure(t, 1, 2, 1)
	_, err := s.SetBlock(Origin, comparator())
	require.NoError(t, err)
	h, err := s.SetBlock(NewVec3[int32](0, 1, 0), NewBlockType("minecraft:barrel"))
	require.NoError(t, err)
	_, err = h.SetItemSlot(0, "minecraft:redstone", 32)
	require.NoError(t, err)

	tree, err := s.Tree()
	require.NoError(t, err)
	b, err := s.Serialize()
	require.NoError(t, err)
	again, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, b, again)

	root, err := nbt.DecodeCompound(true, b)
	require.NoError(t, err)
	if diff := cmp.Diff(tree, root, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}

	palette, _ := root.Get("palette")
	def, err := nbt.FindChild(palette, "default")
	require.NoError(t, err)
	positions, err := nbt.FindChild(def.Data, "block_position_data")
	require.NoError(t, err)
	entry, err := nbt.FindChild(positions.Data, "1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	blockEntity, err := nbt.FindChild(entry.Data, "block_entity_data")
	require.NoError(t, err)
	items, err := nbt.FindChild(blockEntity.Data, "Items")
	require.NoError(t, err)
	require.Equal(t, 1, items.Data.(*nbt.List).Len())

	states, err := nbt.FindChild(def.Data.(*nbt.Compound).Find("block_palette").Data.(*nbt.List).Items[0], "states")
	require.NoError(t, err)
	assert.Equal(t, []nbt.NamedTag{
		{Name: "cardinal_direction", Data: nbt.String("north")},
		{Name: "output_lit_bit", Data: nbt.Byte(0)},
		{Name: "output_subtract_bit", Data: nbt.Byte(1)},
	}, states.Data.(*nbt.Compound).Tags)
}

func TestSerializeEmpty(t *testing.T) {
	s := newStructure(t, 0, 0, 0)
	b, err := s.Serialize()
	require.NoError(t, err)

	root, err := nbt.DecodeCompound(true, b)
	require.NoError(t, err)
	tree, err := s.Tree()
	require.NoError(t, err)
	if diff := cmp.Diff(tree, root, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}

	size, _ := root.Get("size")
	assert.Equal(t, []nbt.Data{nbt.Int(0), nbt.Int(0), nbt.Int(0)}, size.(*nbt.List).Items)

	indices, _ := root.Get("block_indices")
	layers := indices.(*nbt.List).Items
	require.Len(t, layers, 2)
	assert.Equal(t, 0, layers[0].(*nbt.List).Len())
	assert.Equal(t, 0, layers[1].(*nbt.List).Len())

	palette, _ := root.Get("palette")
	def, _ := palette.(*nbt.Compound).Get("default")
	blockPalette, _ := def.(*nbt.Compound).Get("block_palette")
	assert.Equal(t, 0, blockPalette.(*nbt.List).Len())
}

func TestTreeIsDetached(t *testing.T) {
	s := newStructure(t, 1, 1, 1)
	h, err := s.SetBlock(Origin, NewBlockType("minecraft:barrel"))
	require.NoError(t, err)
	_, err = h.SetItemSlot(0, "minecraft:redstone", 1)
	require.NoError(t, err)

	before, err := s.Serialize()
	require.NoError(t, err)

	tree, err := s.Tree()
	require.NoError(t, err)
	palette, _ := tree.Get("palette")
	palette.(*nbt.Compound).Add("junk", nbt.Int(1))
	s.PositionData()[0].Data.Add("junk", nbt.Int(1))

	after, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
