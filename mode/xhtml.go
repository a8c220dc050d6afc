package mode

import (
	"strings"

	"github.com/ZaguanLabs/xmlpo/document"
	"github.com/ZaguanLabs/xmlpo/locale"
	"golang.org/x/net/html"
)

// XHTML is the web markup policy.
type XHTML struct {
	noHooks
	final   tagSet
	ignored tagSet
	space   tagSet
	attrs   tagSet
}

// NewXHTML returns the XHTML policy.
func NewXHTML() *XHTML {
	return &XHTML{
		final: newTagSet([]string{
			"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "dt", "dd",
			"td", "th", "caption", "title", "pre", "label", "button",
			"option", "legend", "figcaption", "address", "summary",
		}),
		ignored: newTagSet([]string{"script", "style", "noscript"}),
		space:   newTagSet([]string{"pre", "textarea"}),
		attrs:   newTagSet([]string{"title", "alt", "summary", "placeholder"}),
	}
}

func (*XHTML) Name() string                       { return "xhtml" }
func (p *XHTML) IgnoredTags() []string            { return p.ignored.list() }
func (p *XHTML) SpacePreservingTags() []string    { return p.space.list() }
func (p *XHTML) TranslatableAttributes() []string { return p.attrs.list() }

func (p *XHTML) IsFinal(doc *document.Document, id document.NodeID) bool {
	return doc.Kind(id) == document.KindElement && p.final.has(doc.Name(id))
}

// ResolveEntity expands HTML named entities such as &nbsp; that XHTML
// documents use without declaring them.
func (*XHTML) ResolveEntity(name string) (string, bool) {
	ref := "&" + name + ";"
	text := html.UnescapeString(ref)
	if text == ref {
		return "", false
	}
	return text, true
}

// XHTMLLocalized is XHTML that also stamps the target language on the
// document and names the translators in a meta element.
type XHTMLLocalized struct {
	XHTML
}

// NewXHTMLLocalized returns the localizing XHTML policy.
func NewXHTMLLocalized() *XHTMLLocalized {
	return &XHTMLLocalized{XHTML: *NewXHTML()}
}

func (*XHTMLLocalized) Name() string           { return "xhtml-localized" }
func (*XHTMLLocalized) CreditsMessage() string { return CreditsMessage }
func (*XHTMLLocalized) CreditsComment() string { return CreditsComment }

// PostProcess sets lang, xml:lang and dir on the root element and adds a
// translator meta element to the head.
func (*XHTMLLocalized) PostProcess(doc *document.Document, lang, credits string) error {
	root := doc.DocumentElement()
	if root == document.NoNode {
		return nil
	}
	if lang != "" {
		tag := locale.HTMLLang(locale.Normalize(lang))
		doc.SetAttr(root, "lang", tag)
		doc.SetAttr(root, "xml:lang", tag)
		doc.SetAttr(root, "dir", locale.Direction(lang))
	}

	entries := ParseCredits(credits)
	if len(entries) == 0 {
		return nil
	}
	head := doc.FirstChildElement(root, "head")
	if head == document.NoNode {
		return nil
	}
	holders := make([]string, len(entries))
	for i, c := range entries {
		holders[i] = c.Holder()
	}
	meta := doc.NewElement("meta",
		document.Attr{Name: "name", Value: "translator"},
		document.Attr{Name: "content", Value: strings.Join(holders, ", ")},
	)
	insertAfter(doc, head, "meta", meta)
	return nil
}
