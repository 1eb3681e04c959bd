package nbt

import (
	"fmt"
	"unicode/utf8"
)

// Decode reads a sequence of named tags until the buffer is exhausted.
// Stray End bytes between top-level tags are skipped.
func Decode(littleEndian bool, b []byte) ([]NamedTag, error) {
	d := &decoder{r: NewReader(b, ByteOrder(littleEndian))}
	var tags []NamedTag
	for !d.r.AtEnd() {
		kind, err := d.readKind()
		if err != nil {
			return nil, err
		}
		if kind == TagEnd {
			continue
		}
		tag, err := d.readNamed(kind)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// DecodeCompound decodes b and returns its single top-level compound, which is
// how structure files are laid out.
func DecodeCompound(littleEndian bool, b []byte) (*Compound, error) {
	tags, err := Decode(littleEndian, b)
	if err != nil {
		return nil, err
	}
	if len(tags) != 1 {
		return nil, fmt.Errorf("nbt: expected one root tag, found %d", len(tags))
	}
	c, ok := tags[0].Data.(*Compound)
	if !ok {
		return nil, fmt.Errorf("%w: root is %s", ErrNotACompound, tags[0].Data.Kind())
	}
	return c, nil
}

type decoder struct {
	r     *Reader
	depth int
}

// enter is called before reading a list or compound payload; the returned
// func undoes it.
func (d *decoder) enter() (func(), error) {
	if d.depth >= MaxDepth {
		return nil, fmt.Errorf("%w: more than %d levels at offset %d", ErrTooDeep, MaxDepth, d.r.Offset())
	}
	d.depth++
	return func() { d.depth-- }, nil
}

func (d *decoder) readKind() (Kind, error) {
	off := d.r.Offset()
	b, err := d.r.ReadUint8()
	if err != nil {
		return 0, err
	}
	kind, err := ParseKind(b)
	if err != nil {
		return 0, fmt.Errorf("%w at offset %d", err, off)
	}
	return kind, nil
}

func (d *decoder) readNamed(kind Kind) (NamedTag, error) {
	name, err := d.readString()
	if err != nil {
		return NamedTag{}, fmt.Errorf("reading %s name: %w", kind, err)
	}
	data, err := d.readPayload(kind)
	if err != nil {
		return NamedTag{}, fmt.Errorf("%q: %w", name, err)
	}
	return NamedTag{Name: name, Data: data}, nil
}

func (d *decoder) readString() (string, error) {
	n, err := d.r.ReadUint16()
	if err != nil {
		return "", err
	}
	off := d.r.Offset()
	b, err := d.r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w at offset %d", ErrInvalidUTF8, off)
	}
	return string(b), nil
}

// readCount reads an array count and checks that size bytes per element fit.
func (d *decoder) readCount(size int) (int, error) {
	n, err := d.r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrInvalidLength, n)
	}
	if int64(n)*int64(size) > int64(d.r.Remaining()) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes, %d remaining", ErrUnexpectedEOF, n, size, d.r.Remaining())
	}
	return int(n), nil
}

func (d *decoder) readPayload(kind Kind) (Data, error) {
	switch kind {
	case TagByte:
		v, err := d.r.ReadInt8()
		return Byte(v), err
	case TagShort:
		v, err := d.r.ReadInt16()
		return Short(v), err
	case TagInt:
		v, err := d.r.ReadInt32()
		return Int(v), err
	case TagLong:
		v, err := d.r.ReadInt64()
		return Long(v), err
	case TagFloat:
		v, err := d.r.ReadFloat32()
		return Float(v), err
	case TagDouble:
		v, err := d.r.ReadFloat64()
		return Double(v), err
	case TagString:
		s, err := d.readString()
		return String(s), err
	case TagByteArray:
		n, err := d.readCount(1)
		if err != nil {
			return nil, err
		}
		raw, err := d.r.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		arr := make(ByteArray, n)
		for i, b := range raw {
			arr[i] = int8(b)
		}
		return arr, nil
	case TagIntArray:
		n, err := d.readCount(4)
		if err != nil {
			return nil, err
		}
		arr := make(IntArray, n)
		for i := range arr {
			if arr[i], err = d.r.ReadInt32(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case TagLongArray:
		n, err := d.readCount(8)
		if err != nil {
			return nil, err
		}
		arr := make(LongArray, n)
		for i := range arr {
			if arr[i], err = d.r.ReadInt64(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case TagList:
		return d.readList()
	case TagCompound:
		return d.readCompound()
	default:
		return nil, fmt.Errorf("%w: %s has no payload", ErrInvalidTagKind, kind)
	}
}

func (d *decoder) readList() (*List, error) {
	leave, err := d.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	elem, err := d.readKind()
	if err != nil {
		return nil, err
	}
	n, err := d.r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if elem == TagEnd && n > 0 {
		return nil, fmt.Errorf("%w: list of %d %s elements", ErrInvalidLength, n, elem)
	}
	// every element kind other than End occupies at least one byte
	if uint64(n) > uint64(d.r.Remaining()) {
		return nil, fmt.Errorf("%w: list of %d elements, %d bytes remaining", ErrUnexpectedEOF, n, d.r.Remaining())
	}
	l := &List{Elem: elem, Items: make([]Data, 0, n)}
	for i := uint32(0); i < n; i++ {
		item, err := d.readPayload(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		l.Items = append(l.Items, item)
	}
	return l, nil
}

func (d *decoder) readCompound() (*Compound, error) {
	leave, err := d.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	c := &Compound{}
	for {
		kind, err := d.readKind()
		if err != nil {
			return nil, err
		}
		if kind == TagEnd {
			return c, nil
		}
		tag, err := d.readNamed(kind)
		if err != nil {
			return nil, err
		}
		c.Tags = append(c.Tags, tag)
	}
}
