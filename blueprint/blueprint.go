// Package blueprint reads YAML descriptions of structures and builds them.
package blueprint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/astei/mcstructs/structure"
)

var ErrInvalid = errors.New("blueprint: invalid")

type Blueprint struct {
	Size   Coord   `yaml:"size"`
	Blocks []Block `yaml:"blocks"`
}

type Coord [3]int32

func (c Coord) Vec() structure.Vec3[int32] {
	return structure.NewVec3(c[0], c[1], c[2])
}

type Block struct {
	At     Coord  `yaml:"at"`
	Type   string `yaml:"type"`
	States States `yaml:"states,omitempty"`
	Items  []Item `yaml:"items,omitempty"`
}

// Item is one stack in a container. A missing count means a single item;
// an explicit count of zero is invalid.
type Item struct {
	Slot  uint8  `yaml:"slot"`
	Item  string `yaml:"item"`
	Count *uint8 `yaml:"count,omitempty"`
}

// StackSize is the item count, 1 when none was given.
func (i Item) StackSize() uint8 {
	if i.Count == nil {
		return 1
	}
	return *i.Count
}

// States keeps block states in document order. YAML booleans become
// BoolState, integers IntState and any other scalar StringState.
type States []structure.NamedState

func (s *States) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: states must be a mapping", node.Line)
	}
	states := make(States, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: state %q must be a scalar", value.Line, key.Value)
		}

		var state structure.BlockState
		switch value.ShortTag() {
		case "!!bool":
			var b bool
			if err := value.Decode(&b); err != nil {
				return err
			}
			state = structure.Bool(b)
		case "!!int":
			var n int32
			if err := value.Decode(&n); err != nil {
				return fmt.Errorf("line %d: state %q: %w", value.Line, key.Value, err)
			}
			state = structure.IntState(n)
		default:
			state = structure.StringState(value.Value)
		}
		states = append(states, structure.NamedState{Name: key.Value, State: state})
	}
	*s = states
	return nil
}

func (s States) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, st := range s {
		value := &yaml.Node{Kind: yaml.ScalarNode}
		switch v := st.State.(type) {
		case structure.BoolState:
			value.Tag = "!!bool"
			value.Value = fmt.Sprint(v != 0)
		case structure.IntState:
			value.Tag = "!!int"
			value.Value = fmt.Sprint(int32(v))
		case structure.StringState:
			value.Tag = "!!str"
			value.Value = string(v)
		default:
			return nil, fmt.Errorf("state %q has unsupported type %T", st.Name, st.State)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: st.Name}, value)
	}
	return node, nil
}

// Load reads and validates the blueprint at path.
func Load(path string) (*Blueprint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bp, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bp, nil
}

// Parse decodes a blueprint, rejecting unknown fields.
func Parse(b []byte) (*Blueprint, error) {
	var bp Blueprint
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, err
	}
	bp.Normalize()
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// Normalize fills in defaults: an item without a count is a single item.
func (bp *Blueprint) Normalize() {
	for i := range bp.Blocks {
		bp.Blocks[i].Type = strings.TrimSpace(bp.Blocks[i].Type)
		for j := range bp.Blocks[i].Items {
			if bp.Blocks[i].Items[j].Count == nil {
				one := uint8(1)
				bp.Blocks[i].Items[j].Count = &one
			}
		}
	}
}

func (bp *Blueprint) Validate() error {
	for axis, v := range bp.Size {
		if v < 0 {
			return fmt.Errorf("%w: size[%d] is %d", ErrInvalid, axis, v)
		}
	}
	for i, blk := range bp.Blocks {
		if blk.Type == "" {
			return fmt.Errorf("%w: block %d has no type", ErrInvalid, i)
		}
		for j, item := range blk.Items {
			if item.Item == "" {
				return fmt.Errorf("%w: block %d item %d has no item id", ErrInvalid, i, j)
			}
			if item.Count != nil && *item.Count == 0 {
				return fmt.Errorf("%w: block %d item %d has a count of zero", ErrInvalid, i, j)
			}
		}
	}
	return nil
}

// Build places every block in document order.
func (bp *Blueprint) Build() (*structure.Structure, error) {
	s, err := structure.New(bp.Size.Vec())
	if err != nil {
		return nil, err
	}
	for i, blk := range bp.Blocks {
		bt := structure.NewBlockType(blk.Type)
		for _, st := range blk.States {
			bt = bt.WithState(st.Name, st.State)
		}
		h, err := s.SetBlock(blk.At.Vec(), bt)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, blk.Type, err)
		}
		for _, item := range blk.Items {
			if _, err := h.SetItemSlot(item.Slot, item.Item, item.StackSize()); err != nil {
				return nil, fmt.Errorf("block %d (%s): %w", i, blk.Type, err)
			}
		}
	}
	return s, nil
}
