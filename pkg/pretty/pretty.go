// Package pretty renders runtime values as deeply expanded, indented text.
// Runtimes convert their values to a Node tree and call Format.
package pretty

import "strings"

// Node is one element of a value tree.
type Node interface {
	write(b *strings.Builder, depth int)
}

// Scalar is a leaf rendered verbatim.
type Scalar string

// List is an ordered sequence, rendered with square brackets.
type List []Node

// Field is one key/value pair of a Map.
type Field struct {
	Key   string
	Value Node
}

// Map is a keyed collection rendered with braces. Name, when set, prefixes
// the braces (for example a class or type name).
type Map struct {
	Name   string
	Fields []Field
}

const indentUnit = "    "

// Format renders n with one element per line and trailing commas.
func Format(n Node) string {
	if n == nil {
		return "nil"
	}
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

func (s Scalar) write(b *strings.Builder, _ int) {
	b.WriteString(string(s))
}

func (l List) write(b *strings.Builder, depth int) {
	if len(l) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteString("[\n")
	for _, item := range l {
		indent(b, depth+1)
		if item == nil {
			b.WriteString("nil")
		} else {
			item.write(b, depth+1)
		}
		b.WriteString(",\n")
	}
	indent(b, depth)
	b.WriteString("]")
}

func (m Map) write(b *strings.Builder, depth int) {
	if m.Name != "" {
		b.WriteString(m.Name)
		b.WriteString(" ")
	}
	if len(m.Fields) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{\n")
	for _, f := range m.Fields {
		indent(b, depth+1)
		b.WriteString(f.Key)
		b.WriteString(": ")
		if f.Value == nil {
			b.WriteString("nil")
		} else {
			f.Value.write(b, depth+1)
		}
		b.WriteString(",\n")
	}
	indent(b, depth)
	b.WriteString("}")
}

// Quote renders s as a double-quoted string literal with Go-style escapes.
func Quote(s string) Scalar {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\x`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return Scalar(b.String())
}
