package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// Entity references are masked before decoding so encoding/xml never tries
// to resolve them; the mask survives into text and attribute values and is
// turned back into "&name;" on output.
const (
	entityOpen  = '\uE000'
	entityClose = '\uE001'
)

var predefinedEntities = map[string]bool{
	"lt":   true,
	"gt":   true,
	"amp":  true,
	"apos": true,
	"quot": true,
}

// SyntaxError reports malformed markup.
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse reads a complete XML document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	src, err := toUTF8(data)
	if err != nil {
		return nil, err
	}
	d := New()
	if err := d.decode(d.root, maskEntities(src), 0); err != nil {
		return nil, err
	}
	if d.DocumentElement() == NoNode {
		return nil, &SyntaxError{Line: 1, Msg: "document has no root element"}
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses content wrapped as <start>content</end> into this
// document's arena and returns the detached wrapper element. start is a
// serialized start tag without angle brackets, as returned by StartTag.
// line is the source line reported for the first line of content.
func (d *Document) ParseFragment(start, end, content string, line int) (NodeID, error) {
	holder := d.add(Node{Kind: KindDocument, Parent: NoNode})
	src := "<" + start + ">" + maskEntities(content) + "</" + end + ">"
	offset := line - 1
	if offset < 0 {
		offset = 0
	}
	if err := d.decode(holder, src, offset); err != nil {
		return NoNode, err
	}
	kids := d.nodes[holder].Children
	if len(kids) != 1 || d.nodes[kids[0]].Kind != KindElement {
		return NoNode, &SyntaxError{Line: line, Msg: "fragment must have a single wrapper element"}
	}
	wrapper := kids[0]
	d.nodes[wrapper].Parent = NoNode
	d.nodes[holder].Children = nil
	return wrapper, nil
}

// UnescapeText decodes character and predefined entity references in s.
// Other entity references are kept in their masked form so that rendering
// the value restores them.
func UnescapeText(s string) (string, error) {
	if !strings.ContainsRune(s, '&') {
		return s, nil
	}
	dec := xml.NewDecoder(strings.NewReader("<t>" + maskEntities(s) + "</t>"))
	dec.Strict = true
	var b strings.Builder
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, &SyntaxError{Line: 1, Msg: "invalid escaped text", Err: err}
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return b.String(), nil
}

func (d *Document) decode(parent NodeID, src string, lineOffset int) error {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = true
	// input is already UTF-8, see toUTF8
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	stack := []NodeID{parent}
	for {
		line, _ := dec.InputPos()
		line += lineOffset
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return &SyntaxError{Line: se.Line + lineOffset, Msg: se.Msg}
			}
			return &SyntaxError{Line: line, Msg: "decode failed", Err: err}
		}
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrs = append(attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
			}
			off := int(dec.InputOffset())
			explicit := off < 2 || src[off-2:off] != "/>"
			id := d.add(Node{Kind: KindElement, Name: qualifiedName(t.Name), Attrs: attrs, Line: line, Parent: top, Explicit: explicit})
			d.nodes[top].Children = append(d.nodes[top].Children, id)
			stack = append(stack, id)
		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 1 {
				return &SyntaxError{Line: line, Msg: fmt.Sprintf("unexpected end element </%s>", name)}
			}
			if open := d.nodes[top].Name; open != name {
				return &SyntaxError{Line: line, Msg: fmt.Sprintf("element <%s> closed by </%s>", open, name)}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			d.appendText(top, string(t), line)
		case xml.Comment:
			d.appendLeaf(top, Node{Kind: KindComment, Data: string(t), Line: line})
		case xml.ProcInst:
			d.appendLeaf(top, Node{Kind: KindProcInst, Name: t.Target, Data: string(t.Inst), Line: line})
		case xml.Directive:
			d.appendLeaf(top, Node{Kind: KindDoctype, Data: string(t), Line: line})
			d.scanEntities(string(t))
		}
	}
	if len(stack) != 1 {
		open := d.nodes[stack[len(stack)-1]]
		return &SyntaxError{Line: open.Line, Msg: fmt.Sprintf("element <%s> is never closed", open.Name)}
	}
	return nil
}

func (d *Document) appendLeaf(parent NodeID, n Node) NodeID {
	n.Parent = parent
	id := d.add(n)
	d.nodes[parent].Children = append(d.nodes[parent].Children, id)
	return id
}

// appendText splits masked entity references out of character data and
// merges adjacent text.
func (d *Document) appendText(parent NodeID, s string, line int) {
	for s != "" {
		i := strings.IndexRune(s, entityOpen)
		if i < 0 {
			d.addText(parent, s, line)
			return
		}
		if i > 0 {
			d.addText(parent, s[:i], line)
			line += strings.Count(s[:i], "\n")
		}
		rest := s[i+len(string(entityOpen)):]
		j := strings.IndexRune(rest, entityClose)
		if j < 0 {
			d.addText(parent, s[i:], line)
			return
		}
		d.appendLeaf(parent, Node{Kind: KindEntityRef, Name: rest[:j], Line: line})
		s = rest[j+len(string(entityClose)):]
	}
}

func (d *Document) addText(parent NodeID, s string, line int) {
	kids := d.nodes[parent].Children
	if n := len(kids); n > 0 && d.nodes[kids[n-1]].Kind == KindText {
		d.nodes[kids[n-1]].Data += s
		return
	}
	d.appendLeaf(parent, Node{Kind: KindText, Data: s, Line: line})
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%][^\s]*)\s+(?:SYSTEM\s+("[^"]*"|'[^']*')|PUBLIC\s+(?:"[^"]*"|'[^']*')\s+("[^"]*"|'[^']*')|("[^"]*"|'[^']*'))`)

func (d *Document) scanEntities(directive string) {
	for _, m := range entityDecl.FindAllStringSubmatch(directive, -1) {
		name := m[1]
		if _, seen := d.Entities[name]; seen {
			// first declaration is binding
			continue
		}
		switch {
		case m[2] != "":
			d.Entities[name] = Entity{Name: name, External: true, SystemID: unquote(m[2])}
		case m[3] != "":
			d.Entities[name] = Entity{Name: name, External: true, SystemID: unquote(m[3])}
		default:
			d.Entities[name] = Entity{Name: name, Value: unquote(m[4])}
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

var declaredEncoding = regexp.MustCompile(`^<\?xml\s[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// toUTF8 transcodes data to UTF-8 and rewrites its declared encoding to
// match. Entity masking inserts UTF-8 runes, so it has to run on the
// transcoded text.
func toUTF8(data []byte) (string, error) {
	transcoded := false
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		enc, name, _ := charset.DetermineEncoding(data, "")
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", &SyntaxError{Line: 1, Msg: "cannot decode " + name + " input", Err: err}
		}
		data, transcoded = out, true
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	m := declaredEncoding.FindSubmatchIndex(data)
	if m == nil {
		return string(data), nil
	}
	label := strings.ToLower(string(data[m[2]:m[3]]))
	if label == "utf-8" || label == "utf8" {
		return string(data), nil
	}
	if !transcoded {
		r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
		if err != nil {
			return "", &SyntaxError{Line: 1, Msg: fmt.Sprintf("unsupported encoding %q", label), Err: err}
		}
		if data, err = io.ReadAll(r); err != nil {
			return "", &SyntaxError{Line: 1, Msg: fmt.Sprintf("cannot decode %s input", label), Err: err}
		}
	}
	// everything up to the label is ASCII, so the offsets still hold
	return string(data[:m[2]]) + "utf-8" + string(data[m[3]:]), nil
}

// maskEntities rewrites general entity references outside comments, CDATA
// sections, processing instructions and declarations.
func maskEntities(src string) string {
	if !strings.Contains(src, "&") {
		return src
	}
	var b bytes.Buffer
	b.Grow(len(src))
	i := 0
	for i < len(src) {
		c := src[i]
		if c == '<' {
			if j := skipMarkupDecl(src, i); j > i {
				b.WriteString(src[i:j])
				i = j
				continue
			}
		}
		if c == '&' {
			j := i + 1
			for j < len(src) && isNameByte(src[j], j == i+1) {
				j++
			}
			if j > i+1 && j < len(src) && src[j] == ';' {
				name := src[i+1 : j]
				if !predefinedEntities[name] {
					b.WriteRune(entityOpen)
					b.WriteString(name)
					b.WriteRune(entityClose)
					i = j + 1
					continue
				}
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// skipMarkupDecl returns the end offset of a comment, CDATA section, PI or
// declaration starting at i, or i when none starts there.
func skipMarkupDecl(src string, i int) int {
	rest := src[i:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		return endAfter(src, i+4, "-->")
	case strings.HasPrefix(rest, "<![CDATA["):
		return endAfter(src, i+9, "]]>")
	case strings.HasPrefix(rest, "<?"):
		return endAfter(src, i+2, "?>")
	case strings.HasPrefix(rest, "<!"):
		depth := 0
		var quote byte
		for j := i + 2; j < len(src); j++ {
			c := src[j]
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '[':
				depth++
			case c == ']':
				depth--
			case c == '>' && depth <= 0:
				return j + 1
			}
		}
		return len(src)
	}
	return i
}

func endAfter(src string, from int, marker string) int {
	k := strings.Index(src[from:], marker)
	if k < 0 {
		return len(src)
	}
	return from + k + len(marker)
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':', c >= 0x80:
		return true
	case c >= '0' && c <= '9', c == '-', c == '.':
		return !first
	}
	return false
}
