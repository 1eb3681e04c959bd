package structure

import (
	"github.com/astei/mcstructs/nbt"
)

// BlockState is one property value of a block: StringState, IntState or
// BoolState.
type BlockState interface {
	Tag() nbt.Data
	isState()
}

type (
	StringState string
	IntState    int32
	// BoolState is stored as a byte holding 0 or 1.
	BoolState uint8
)

func Bool(b bool) BoolState {
	if b {
		return 1
	}
	return 0
}

func (s StringState) Tag() nbt.Data { return nbt.String(s) }
func (s IntState) Tag() nbt.Data    { return nbt.Int(s) }
func (s BoolState) Tag() nbt.Data   { return nbt.Byte(int8(s)) }

func (StringState) isState() {}
func (IntState) isState()    {}
func (BoolState) isState()   {}

type NamedState struct {
	Name  string
	State BlockState
}

// BlockType is a block identifier plus its ordered states. State names are
// unique.
type BlockType struct {
	ID     string
	States []NamedState
}

// Block types that may hold items.
var containerTypes = map[string]struct{}{
	"minecraft:barrel":        {},
	"minecraft:chest":         {},
	"minecraft:trapped_chest": {},
}

func NewBlockType(id string) BlockType {
	return BlockType{ID: id}
}

// WithState returns a copy of b with the state set. An existing state keeps
// its position and only has its value replaced.
func (b BlockType) WithState(name string, state BlockState) BlockType {
	states := make([]NamedState, len(b.States), len(b.States)+1)
	copy(states, b.States)
	b.States = states
	for i := range b.States {
		if b.States[i].Name == name {
			b.States[i].State = state
			return b
		}
	}
	b.States = append(b.States, NamedState{Name: name, State: state})
	return b
}

func (b BlockType) State(name string) (BlockState, bool) {
	for _, s := range b.States {
		if s.Name == name {
			return s.State, true
		}
	}
	return nil, false
}

func (b BlockType) IsContainer() bool {
	_, ok := containerTypes[b.ID]
	return ok
}

func (b BlockType) clone() BlockType {
	b.States = append([]NamedState(nil), b.States...)
	return b
}

// tag renders the palette entry for b.
func (b BlockType) tag() *nbt.Compound {
	states := nbt.NewCompound()
	for _, s := range b.States {
		states.Add(s.Name, s.State.Tag())
	}
	return nbt.NewCompound().
		Add("name", nbt.String(b.ID)).
		Add("states", states)
}
