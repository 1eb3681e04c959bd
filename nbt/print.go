package nbt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Style decorates the pieces of a printed tree, e.g. with terminal colors.
type Style interface {
	Kind(s string) string
	Number(s string) string
	Text(s string) string
}

// PlainStyle leaves everything undecorated.
type PlainStyle struct{}

func (PlainStyle) Kind(s string) string   { return s }
func (PlainStyle) Number(s string) string { return s }
func (PlainStyle) Text(s string) string   { return s }

// Lines renders tags as indented text, one line per scalar. A nil style
// prints plain text. Lists and compounds nested deeper than MaxDepth are
// elided.
func Lines(tags []NamedTag, style Style) []string {
	if style == nil {
		style = PlainStyle{}
	}
	p := &printer{style: style}
	for _, tag := range tags {
		p.named(tag, 0)
	}
	return p.lines
}

// Fprint writes the lines produced by Lines to w.
func Fprint(w io.Writer, tags []NamedTag, style Style) error {
	for _, line := range Lines(tags, style) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type printer struct {
	style Style
	lines []string
}

func (p *printer) emit(indent int, s string) {
	p.lines = append(p.lines, strings.Repeat("  ", indent)+s)
}

func (p *printer) named(tag NamedTag, indent int) {
	prefix := ""
	if tag.Name != "" {
		prefix = tag.Name + ": "
	}
	p.value(prefix, tag.Data, indent)
}

// value prints d on a line starting with prefix; nested children go one level
// deeper and the closing bracket returns to indent.
func (p *printer) value(prefix string, d Data, indent int) {
	if d == nil {
		p.emit(indent, prefix+p.style.Kind("nil"))
		return
	}
	head := prefix + p.style.Kind(d.Kind().String()) + " = "
	switch v := d.(type) {
	case End:
		p.emit(indent, prefix+p.style.Kind(TagEnd.String()))
	case Byte:
		p.emit(indent, head+p.style.Number(strconv.FormatInt(int64(v), 10)))
	case Short:
		p.emit(indent, head+p.style.Number(strconv.FormatInt(int64(v), 10)))
	case Int:
		p.emit(indent, head+p.style.Number(strconv.FormatInt(int64(v), 10)))
	case Long:
		p.emit(indent, head+p.style.Number(strconv.FormatInt(int64(v), 10)))
	case Float:
		p.emit(indent, head+p.style.Number(strconv.FormatFloat(float64(v), 'g', -1, 32)))
	case Double:
		p.emit(indent, head+p.style.Number(strconv.FormatFloat(float64(v), 'g', -1, 64)))
	case String:
		p.emit(indent, head+p.style.Text("'"+string(v)+"'"))
	case ByteArray:
		p.numbers(head, len(v), func(i int) int64 { return int64(v[i]) }, indent)
	case IntArray:
		p.numbers(head, len(v), func(i int) int64 { return int64(v[i]) }, indent)
	case LongArray:
		p.numbers(head, len(v), func(i int) int64 { return v[i] }, indent)
	case *List:
		if v == nil || len(v.Items) == 0 {
			p.emit(indent, head+"[]")
			return
		}
		if indent >= MaxDepth {
			p.emit(indent, head+"[...]")
			return
		}
		p.emit(indent, head+"[")
		for _, item := range v.Items {
			p.value("", item, indent+1)
		}
		p.emit(indent, "]")
	case *Compound:
		if v == nil || len(v.Tags) == 0 {
			p.emit(indent, head+"{}")
			return
		}
		if indent >= MaxDepth {
			p.emit(indent, head+"{...}")
			return
		}
		p.emit(indent, head+"{")
		for _, tag := range v.Tags {
			p.named(tag, indent+1)
		}
		p.emit(indent, "}")
	default:
		p.emit(indent, prefix+p.style.Kind(fmt.Sprintf("%T", d)))
	}
}

func (p *printer) numbers(head string, n int, at func(int) int64, indent int) {
	if n == 0 {
		p.emit(indent, head+"[]")
		return
	}
	p.emit(indent, head+"[")
	for i := 0; i < n; i++ {
		p.emit(indent+1, p.style.Number(strconv.FormatInt(at(i), 10)))
	}
	p.emit(indent, "]")
}
