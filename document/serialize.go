package document

import (
	"regexp"
	"strings"
)

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
	xmlDeclEncoding = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)
)

// Serialize renders the whole document. Output is always UTF-8 and ends
// with a newline.
func (d *Document) Serialize() []byte {
	var b strings.Builder
	for _, c := range d.nodes[d.root].Children {
		d.render(&b, c)
	}
	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out)
}

// Render returns the markup of id and its subtree.
func (d *Document) Render(id NodeID) string {
	var b strings.Builder
	d.render(&b, id)
	return b.String()
}

// RenderChildren returns the concatenated markup of id's children.
func (d *Document) RenderChildren(id NodeID) string {
	var b strings.Builder
	for _, c := range d.nodes[id].Children {
		d.render(&b, c)
	}
	return b.String()
}

// StartTag returns the element name followed by its serialized attributes,
// without angle brackets.
func (d *Document) StartTag(id NodeID) string {
	n := d.nodes[id]
	if len(n.Attrs) == 0 {
		return n.Name
	}
	var b strings.Builder
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// EndTag returns the element name used in the closing tag.
func (d *Document) EndTag(id NodeID) string {
	return d.nodes[id].Name
}

// EntityRef renders a reference to the named entity.
func EntityRef(name string) string {
	return "&" + name + ";"
}

// EscapeText escapes character data and restores masked entity references.
func EscapeText(s string) string {
	return unmask(textEscaper.Replace(s))
}

// EscapeAttr escapes an attribute value and restores masked entity references.
func EscapeAttr(s string) string {
	return unmask(attrEscaper.Replace(s))
}

func unmask(s string) string {
	if !strings.ContainsRune(s, entityOpen) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case entityOpen:
			b.WriteByte('&')
		case entityClose:
			b.WriteByte(';')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (d *Document) render(b *strings.Builder, id NodeID) {
	n := d.nodes[id]
	switch n.Kind {
	case KindDocument:
		for _, c := range n.Children {
			d.render(b, c)
		}
	case KindElement:
		b.WriteByte('<')
		b.WriteString(d.StartTag(id))
		if len(n.Children) == 0 && !n.Explicit {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.Children {
			d.render(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Name)
		b.WriteByte('>')
	case KindText:
		b.WriteString(EscapeText(n.Data))
	case KindEntityRef:
		b.WriteString(EntityRef(n.Name))
	case KindComment:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case KindProcInst:
		data := n.Data
		if n.Name == "xml" {
			data = xmlDeclEncoding.ReplaceAllStringFunc(data, func(decl string) string {
				if strings.Contains(strings.ToLower(decl), "utf-8") {
					return decl
				}
				return `encoding="utf-8"`
			})
		}
		b.WriteString("<?")
		b.WriteString(n.Name)
		if data != "" {
			b.WriteByte(' ')
			b.WriteString(data)
		}
		b.WriteString("?>")
	case KindDoctype:
		b.WriteString("<!")
		b.WriteString(n.Data)
		b.WriteByte('>')
	}
}
