package nbt

import "fmt"

// Data is the payload of a tag. The set of implementations is closed: End,
// Byte, Short, Int, Long, Float, Double, ByteArray, String, *List, *Compound,
// IntArray and LongArray.
type Data interface {
	Kind() Kind
	isData()
}

type (
	End       struct{}
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

func (End) Kind() Kind       { return TagEnd }
func (Byte) Kind() Kind      { return TagByte }
func (Short) Kind() Kind     { return TagShort }
func (Int) Kind() Kind       { return TagInt }
func (Long) Kind() Kind      { return TagLong }
func (Float) Kind() Kind     { return TagFloat }
func (Double) Kind() Kind    { return TagDouble }
func (ByteArray) Kind() Kind { return TagByteArray }
func (String) Kind() Kind    { return TagString }
func (*List) Kind() Kind     { return TagList }
func (*Compound) Kind() Kind { return TagCompound }
func (IntArray) Kind() Kind  { return TagIntArray }
func (LongArray) Kind() Kind { return TagLongArray }

func (End) isData()       {}
func (Byte) isData()      {}
func (Short) isData()     {}
func (Int) isData()       {}
func (Long) isData()      {}
func (Float) isData()     {}
func (Double) isData()    {}
func (ByteArray) isData() {}
func (String) isData()    {}
func (*List) isData()     {}
func (*Compound) isData() {}
func (IntArray) isData()  {}
func (LongArray) isData() {}

// NamedTag is one entry of a compound or of the top-level tag sequence.
type NamedTag struct {
	Name string
	Data Data
}

// List is a homogeneous sequence. Every item must report Elem as its kind.
type List struct {
	Elem  Kind
	Items []Data
}

// NewList builds a list of the given element kind, rejecting foreign items.
func NewList(elem Kind, items ...Data) (*List, error) {
	l := &List{Elem: elem, Items: make([]Data, 0, len(items))}
	for _, item := range items {
		if err := l.Append(item); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) Append(d Data) error {
	if err := l.check(len(l.Items), d); err != nil {
		return err
	}
	l.Items = append(l.Items, d)
	return nil
}

func (l *List) Len() int {
	return len(l.Items)
}

func (l *List) check(i int, d Data) error {
	if d == nil {
		return fmt.Errorf("%w: item %d of %s list is nil", ErrListElementKind, i, l.Elem)
	}
	if d.Kind() != l.Elem {
		return fmt.Errorf("%w: item %d is %s, list holds %s", ErrListElementKind, i, d.Kind(), l.Elem)
	}
	return nil
}

// Compound is an ordered set of named tags. Names need not be unique; lookups
// return the first match.
type Compound struct {
	Tags []NamedTag
}

func NewCompound(tags ...NamedTag) *Compound {
	return &Compound{Tags: tags}
}

// Add appends a child and returns the compound for chaining.
func (c *Compound) Add(name string, d Data) *Compound {
	c.Tags = append(c.Tags, NamedTag{Name: name, Data: d})
	return c
}

// Find returns the first child with the given name. The pointer is only valid
// until the compound is next appended to.
func (c *Compound) Find(name string) *NamedTag {
	for i := range c.Tags {
		if c.Tags[i].Name == name {
			return &c.Tags[i]
		}
	}
	return nil
}

func (c *Compound) Get(name string) (Data, bool) {
	if t := c.Find(name); t != nil {
		return t.Data, true
	}
	return nil, false
}

func (c *Compound) Len() int {
	return len(c.Tags)
}

// AddChild appends a named child to d, which must be a compound.
func AddChild(d Data, name string, child Data) error {
	c, ok := d.(*Compound)
	if !ok || c == nil {
		return fmt.Errorf("%w: cannot add %q to %s", ErrNotACompound, name, kindOf(d))
	}
	c.Add(name, child)
	return nil
}

// FindChild looks up the first child of d named name. A nil tag with a nil
// error means d is a compound without such a child.
func FindChild(d Data, name string) (*NamedTag, error) {
	c, ok := d.(*Compound)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: cannot look up %q in %s", ErrNotACompound, name, kindOf(d))
	}
	return c.Find(name), nil
}

func kindOf(d Data) string {
	if d == nil {
		return "nil"
	}
	return d.Kind().String()
}

// Clone returns a deep copy of d.
func Clone(d Data) Data {
	switch v := d.(type) {
	case ByteArray:
		return append(ByteArray(nil), v...)
	case IntArray:
		return append(IntArray(nil), v...)
	case LongArray:
		return append(LongArray(nil), v...)
	case *List:
		if v == nil {
			return v
		}
		l := &List{Elem: v.Elem, Items: make([]Data, len(v.Items))}
		for i, item := range v.Items {
			l.Items[i] = Clone(item)
		}
		return l
	case *Compound:
		if v == nil {
			return v
		}
		c := &Compound{Tags: make([]NamedTag, len(v.Tags))}
		for i, tag := range v.Tags {
			c.Tags[i] = NamedTag{Name: tag.Name, Data: Clone(tag.Data)}
		}
		return c
	default:
		return d
	}
}
