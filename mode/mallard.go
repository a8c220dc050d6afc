package mode

import "github.com/ZaguanLabs/xmlpo/document"

// Mallard is the topic markup policy. code, media and cite are final only
// when they appear as blocks; inside a paragraph they are inline markup.
type Mallard struct {
	final      tagSet
	contextual tagSet
	blocks     tagSet
	space      tagSet
}

// NewMallard returns the Mallard policy.
func NewMallard() *Mallard {
	return &Mallard{
		final: newTagSet([]string{
			"p", "title", "subtitle", "desc", "name", "email", "years",
			"screen", "label",
		}),
		contextual: newTagSet([]string{"code", "media", "cite"}),
		blocks: newTagSet([]string{
			"page", "section", "info", "item", "td", "th", "note", "figure",
			"example", "synopsis", "listing", "quote", "comment", "div",
			"links", "terms", "steps", "list", "tree", "credit",
		}),
		space: newTagSet([]string{"code", "screen"}),
	}
}

func (*Mallard) Name() string                     { return "mallard" }
func (*Mallard) IgnoredTags() []string            { return nil }
func (p *Mallard) SpacePreservingTags() []string  { return p.space.list() }
func (*Mallard) TranslatableAttributes() []string { return nil }
func (*Mallard) CreditsMessage() string           { return CreditsMessage }
func (*Mallard) CreditsComment() string           { return CreditsComment }

func (p *Mallard) IsFinal(doc *document.Document, id document.NodeID) bool {
	if doc.Kind(id) != document.KindElement {
		return false
	}
	name := doc.Name(id)
	if p.final.has(name) {
		return true
	}
	if !p.contextual.has(name) {
		return false
	}
	parent := doc.Parent(id)
	return parent != document.NoNode && doc.Kind(parent) == document.KindElement && p.blocks.has(doc.Name(parent))
}

// PreProcess records one message per image media reference.
func (*Mallard) PreProcess(doc *document.Document, path string, sink Sink) error {
	emitImages(doc, path, sink, "media", "src", func(id document.NodeID) bool {
		t, ok := doc.Attr(id, "type")
		return !ok || t == "image"
	})
	return nil
}

// PostProcess sets xml:lang on the page and adds translator credits to its
// info block, creating the block when missing.
func (*Mallard) PostProcess(doc *document.Document, lang, credits string) error {
	root := doc.DocumentElement()
	if root == document.NoNode || document.LocalName(doc.Name(root)) != "page" {
		return nil
	}
	if lang != "" {
		doc.SetAttr(root, "xml:lang", lang)
	}

	entries := ParseCredits(credits)
	if len(entries) == 0 {
		return nil
	}
	info := doc.FirstChildElement(root, "info")
	if info == document.NoNode {
		info = doc.NewElement("info")
		doc.SetChildren(root, append([]document.NodeID{info}, doc.Children(root)...))
	}
	for _, c := range entries {
		credit := doc.NewElement("credit", document.Attr{Name: "type", Value: "translator"})
		doc.AppendChild(credit, textElement(doc, "name", c.Name))
		if c.Email != "" {
			doc.AppendChild(credit, textElement(doc, "email", c.Email))
		}
		if c.Years != "" {
			doc.AppendChild(credit, textElement(doc, "years", c.Years))
		}
		insertAfter(doc, info, "credit", credit)
	}
	return nil
}
