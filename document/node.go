// Package document holds the in-memory XML tree walked by the extraction
// and merge engines.
//
// Nodes live in an arena owned by the Document and are addressed by NodeID.
// Parent links are plain indices used for upward lookups only; a node's
// children slice is the single owner of its subtree.
package document

import "strings"

// Kind identifies the type of a node.
type Kind int

const (
	// KindDocument is the synthetic root holding the prolog and the root element.
	KindDocument Kind = iota
	// KindElement is a tag with attributes and children.
	KindElement
	// KindText is character data.
	KindText
	// KindComment is an XML comment.
	KindComment
	// KindEntityRef is a general entity reference other than the five predefined ones.
	KindEntityRef
	// KindProcInst is a processing instruction, including the XML declaration.
	KindProcInst
	// KindDoctype is the DOCTYPE directive with its internal subset.
	KindDoctype
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindEntityRef:
		return "entity_ref"
	case KindProcInst:
		return "pi"
	case KindDoctype:
		return "doctype"
	default:
		return "unknown"
	}
}

// NodeID addresses a node inside its Document.
type NodeID int

// NoNode is the parent of the document node and of detached fragments.
const NoNode NodeID = -1

// Attr is a single attribute. Name keeps its prefix ("xml:lang").
type Attr struct {
	Name  string
	Value string
}

// Node is one entry of the arena.
type Node struct {
	Kind     Kind
	Name     string // element name, PI target or entity name
	Attrs    []Attr
	Data     string // text, comment, PI or doctype payload
	Line     int
	Parent   NodeID
	Children []NodeID
	// Explicit marks an element written with a separate end tag, so an empty
	// one renders as <x></x> rather than <x/>.
	Explicit bool
}

// Entity is a general entity declared in the internal DTD subset.
type Entity struct {
	Name     string
	Value    string
	External bool
	SystemID string
}

// Document is a parsed XML file.
type Document struct {
	nodes    []Node
	root     NodeID
	Entities map[string]Entity
}

// New returns an empty document holding only the document node.
func New() *Document {
	d := &Document{Entities: make(map[string]Entity)}
	d.root = d.add(Node{Kind: KindDocument, Parent: NoNode, Line: 1})
	return d
}

func (d *Document) add(n Node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// Root returns the document node.
func (d *Document) Root() NodeID { return d.root }

// DocumentElement returns the first element child of the document node.
func (d *Document) DocumentElement() NodeID {
	for _, c := range d.nodes[d.root].Children {
		if d.nodes[c].Kind == KindElement {
			return c
		}
	}
	return NoNode
}

// Len returns the number of nodes allocated in the arena, detached ones included.
func (d *Document) Len() int { return len(d.nodes) }

// Node returns a copy of the node. Mutate through the Document methods.
func (d *Document) Node(id NodeID) Node { return d.nodes[id] }

// Kind returns the node kind.
func (d *Document) Kind(id NodeID) Kind { return d.nodes[id].Kind }

// Name returns the element name, PI target or entity name.
func (d *Document) Name(id NodeID) string { return d.nodes[id].Name }

// Data returns the textual payload of text, comment, PI and doctype nodes.
func (d *Document) Data(id NodeID) string { return d.nodes[id].Data }

// Line returns the 1-based source line the node starts on.
func (d *Document) Line(id NodeID) int { return d.nodes[id].Line }

// Parent returns the parent node or NoNode.
func (d *Document) Parent(id NodeID) NodeID { return d.nodes[id].Parent }

// Children returns the node's children. The slice must not be modified.
func (d *Document) Children(id NodeID) []NodeID { return d.nodes[id].Children }

// Attrs returns the node's attributes in document order.
func (d *Document) Attrs(id NodeID) []Attr { return d.nodes[id].Attrs }

// Attr returns the value of the named attribute.
func (d *Document) Attr(id NodeID, name string) (string, bool) {
	for _, a := range d.nodes[id].Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, appending it when absent.
func (d *Document) SetAttr(id NodeID, name, value string) {
	n := &d.nodes[id]
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// SetData replaces the payload of a text-like node.
func (d *Document) SetData(id NodeID, data string) { d.nodes[id].Data = data }

// NewElement allocates a detached element.
func (d *Document) NewElement(name string, attrs ...Attr) NodeID {
	return d.add(Node{Kind: KindElement, Name: name, Attrs: attrs, Parent: NoNode})
}

// NewText allocates a detached text node.
func (d *Document) NewText(text string) NodeID {
	return d.add(Node{Kind: KindText, Data: text, Parent: NoNode})
}

// AppendChild attaches child as the last child of parent.
func (d *Document) AppendChild(parent, child NodeID) {
	d.nodes[child].Parent = parent
	kids := d.nodes[parent].Children
	next := make([]NodeID, len(kids), len(kids)+1)
	copy(next, kids)
	d.nodes[parent].Children = append(next, child)
}

// SetChildren replaces the children of id. The previous children become
// detached; callers iterating the old slice keep a consistent view.
func (d *Document) SetChildren(id NodeID, children []NodeID) {
	next := make([]NodeID, len(children))
	copy(next, children)
	for _, c := range next {
		d.nodes[c].Parent = id
	}
	d.nodes[id].Children = next
}

// PrevSibling returns the previous sibling or NoNode.
func (d *Document) PrevSibling(id NodeID) NodeID {
	p := d.nodes[id].Parent
	if p == NoNode {
		return NoNode
	}
	kids := d.nodes[p].Children
	for i, c := range kids {
		if c == id {
			if i == 0 {
				return NoNode
			}
			return kids[i-1]
		}
	}
	return NoNode
}

// NextSibling returns the next sibling or NoNode.
func (d *Document) NextSibling(id NodeID) NodeID {
	p := d.nodes[id].Parent
	if p == NoNode {
		return NoNode
	}
	kids := d.nodes[p].Children
	for i, c := range kids {
		if c == id && i+1 < len(kids) {
			return kids[i+1]
		}
	}
	return NoNode
}

// IsBlank reports whether id is a text node holding only XML whitespace.
// A no-break space is content.
func (d *Document) IsBlank(id NodeID) bool {
	n := d.nodes[id]
	return n.Kind == KindText && IsSpace(n.Data)
}

// IsSpace reports whether s consists of XML whitespace only: space, tab,
// carriage return and line feed.
func IsSpace(s string) bool {
	return strings.Trim(s, " \t\r\n") == ""
}

// FirstChildElement returns the first element child of id named name.
func (d *Document) FirstChildElement(id NodeID, name string) NodeID {
	for _, c := range d.nodes[id].Children {
		if d.nodes[c].Kind == KindElement && LocalName(d.nodes[c].Name) == name {
			return c
		}
	}
	return NoNode
}

// Walk calls fn for id and every descendant in document order. Returning
// false from fn skips the node's subtree.
func (d *Document) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range d.nodes[id].Children {
		d.Walk(c, fn)
	}
}

// SpacePreserve resolves xml:space for id. It returns the inherited value
// and whether any ancestor (or id itself) declared one.
func (d *Document) SpacePreserve(id NodeID) (preserve bool, declared bool) {
	for cur := id; cur != NoNode; cur = d.nodes[cur].Parent {
		if d.nodes[cur].Kind != KindElement {
			continue
		}
		if v, ok := d.Attr(cur, "xml:space"); ok {
			return v == "preserve", true
		}
	}
	return false, false
}

// LocalName strips a namespace prefix.
func LocalName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
