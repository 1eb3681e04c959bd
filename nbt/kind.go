package nbt

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF   = errors.New("nbt: unexpected end of input")
	ErrInvalidTagKind  = errors.New("nbt: invalid tag kind")
	ErrInvalidUTF8     = errors.New("nbt: invalid utf-8")
	ErrListElementKind = errors.New("nbt: list element kind mismatch")
	ErrNotACompound    = errors.New("nbt: not a compound")
	ErrInvalidLength   = errors.New("nbt: invalid length")
	ErrStringTooLong   = errors.New("nbt: string too long")
	ErrTooDeep         = errors.New("nbt: nesting too deep")
)

// MaxDepth is how many lists and compounds may nest inside each other.
const MaxDepth = 512

// Kind is the one byte discriminant written in front of every tag.
type Kind byte

const (
	TagEnd Kind = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var kindNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_Byte_Array",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_Int_Array",
	TagLongArray: "TAG_Long_Array",
}

func (k Kind) Valid() bool {
	return k <= TagLongArray
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TAG_Unknown(0x%02X)", byte(k))
	}
	return kindNames[k]
}

// ParseKind converts a wire discriminant into a Kind.
func ParseKind(b byte) (Kind, error) {
	k := Kind(b)
	if !k.Valid() {
		return 0, fmt.Errorf("%w 0x%02X", ErrInvalidTagKind, b)
	}
	return k, nil
}
