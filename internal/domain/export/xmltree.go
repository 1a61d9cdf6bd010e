package export

import "strings"

// The downstream CMS and ERP consumers parse these documents with rigid,
// position-sensitive readers. Elements are therefore modeled as an explicit
// tree with ordered attributes and ordered children, serialized by hand so
// the emitted spelling never depends on struct-tag reflection.

// Attr is a single XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the document tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
}

// Elem creates an element with the given children. Nil children are dropped,
// which lets builders pass optional parts inline.
func Elem(name string, children ...*Element) *Element {
	e := &Element{Name: name}
	return e.Add(children...)
}

// TextElem creates a leaf element holding character data.
func TextElem(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// WithAttr appends an attribute and returns the element for chaining.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Add appends the non-nil children and returns the element for chaining.
func (e *Element) Add(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// Document is a complete XML document.
type Document struct {
	Root *Element
}

// String serializes the document with a UTF-8 declaration and two-space
// indentation.
func (d Document) String() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n")
	writeElement(&b, d.Root, 0)
	return b.String()
}

func writeElement(b *strings.Builder, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(e.Name)
	for _, attr := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(attr.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(attr.Value))
		b.WriteString(`"`)
	}

	switch {
	case len(e.Children) > 0:
		b.WriteString(">\n")
		for _, child := range e.Children {
			writeElement(b, child, depth+1)
		}
		b.WriteString(indent)
		b.WriteString("</")
		b.WriteString(e.Name)
		b.WriteString(">\n")
	case e.Text != "":
		b.WriteString(">")
		b.WriteString(escapeText(e.Text))
		b.WriteString("</")
		b.WriteString(e.Name)
		b.WriteString(">\n")
	default:
		b.WriteString("/>\n")
	}
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
