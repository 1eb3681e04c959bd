package nbt

import (
	"fmt"
	"math"
)

// Encode writes tags back to back, each as kind, name and payload. The output
// is deterministic for a given tree.
func Encode(littleEndian bool, tags []NamedTag) ([]byte, error) {
	e := &encoder{w: NewWriter(ByteOrder(littleEndian))}
	for _, tag := range tags {
		if err := e.writeNamed(tag); err != nil {
			return nil, err
		}
	}
	return e.w.Bytes(), nil
}

// EncodeCompound writes c as a single unnamed top-level tag.
func EncodeCompound(littleEndian bool, c *Compound) ([]byte, error) {
	return Encode(littleEndian, []NamedTag{{Data: c}})
}

type encoder struct {
	w     *Writer
	depth int
}

func (e *encoder) writeNamed(tag NamedTag) error {
	if tag.Data == nil {
		return fmt.Errorf("%w: %q has no data", ErrInvalidTagKind, tag.Name)
	}
	kind := tag.Data.Kind()
	if kind == TagEnd {
		return fmt.Errorf("%w: %q cannot be a named %s", ErrInvalidTagKind, tag.Name, kind)
	}
	e.w.WriteUint8(byte(kind))
	if err := e.writeString(tag.Name); err != nil {
		return fmt.Errorf("%s name: %w", kind, err)
	}
	if err := e.writePayload(tag.Data); err != nil {
		return fmt.Errorf("%q: %w", tag.Name, err)
	}
	return nil
}

func (e *encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	e.w.WriteUint16(uint16(len(s)))
	e.w.WriteBytes([]byte(s))
	return nil
}

func (e *encoder) writeCount(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: %d elements", ErrInvalidLength, n)
	}
	e.w.WriteInt32(int32(n))
	return nil
}

func (e *encoder) writePayload(d Data) error {
	switch v := d.(type) {
	case Byte:
		// one byte, identical under either byte order
		e.w.WriteInt8(int8(v))
	case Short:
		e.w.WriteInt16(int16(v))
	case Int:
		e.w.WriteInt32(int32(v))
	case Long:
		e.w.WriteInt64(int64(v))
	case Float:
		e.w.WriteFloat32(float32(v))
	case Double:
		e.w.WriteFloat64(float64(v))
	case String:
		return e.writeString(string(v))
	case ByteArray:
		if err := e.writeCount(len(v)); err != nil {
			return err
		}
		for _, b := range v {
			e.w.WriteInt8(b)
		}
	case IntArray:
		if err := e.writeCount(len(v)); err != nil {
			return err
		}
		for _, n := range v {
			e.w.WriteInt32(n)
		}
	case LongArray:
		if err := e.writeCount(len(v)); err != nil {
			return err
		}
		for _, n := range v {
			e.w.WriteInt64(n)
		}
	case *List:
		if e.depth >= MaxDepth {
			return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
		}
		e.depth++
		defer func() { e.depth-- }()
		return e.writeList(v)
	case *Compound:
		if v == nil {
			return fmt.Errorf("%w: nil compound", ErrInvalidTagKind)
		}
		if e.depth >= MaxDepth {
			return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
		}
		e.depth++
		defer func() { e.depth-- }()
		for _, tag := range v.Tags {
			if err := e.writeNamed(tag); err != nil {
				return err
			}
		}
		e.w.WriteUint8(byte(TagEnd))
	default:
		return fmt.Errorf("%w: cannot encode %s payload", ErrInvalidTagKind, kindOf(d))
	}
	return nil
}

func (e *encoder) writeList(l *List) error {
	if l == nil {
		return fmt.Errorf("%w: nil list", ErrInvalidTagKind)
	}
	if !l.Elem.Valid() {
		return fmt.Errorf("%w: list element %s", ErrInvalidTagKind, l.Elem)
	}
	if l.Elem == TagEnd && len(l.Items) > 0 {
		return fmt.Errorf("%w: %d items in a %s list", ErrListElementKind, len(l.Items), l.Elem)
	}
	if uint64(len(l.Items)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d list items", ErrInvalidLength, len(l.Items))
	}
	e.w.WriteUint8(byte(l.Elem))
	e.w.WriteUint32(uint32(len(l.Items)))
	for i, item := range l.Items {
		if err := l.check(i, item); err != nil {
			return err
		}
		if err := e.writePayload(item); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}
