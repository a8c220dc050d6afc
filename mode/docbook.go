package mode

import "github.com/ZaguanLabs/xmlpo/document"

var (
	docbookLists = []string{
		"itemizedlist", "orderedlist", "variablelist", "segmentedlist",
		"simplelist", "calloutlist", "varlistentry",
	}
	docbookObjects = []string{
		"figure", "textobject", "imageobject", "mediaobject", "screenshot",
	}
	docbookFinals = []string{
		"para", "formalpara", "simpara", "releaseinfo", "revnumber",
		"title", "subtitle", "date", "term", "programlisting", "screen",
		"literallayout", "synopsis",
	}
	docbookSpace = []string{
		"classsynopsisinfo", "computeroutput", "funcsynopsisinfo",
		"literallayout", "programlisting", "screen", "synopsis", "userinput",
	}
	docbookRoots = []string{
		"appendix", "article", "book", "chapter", "part", "preface", "refentry", "section", "set",
	}
)

// DocBook is the technical manual policy.
//
// List containers are both final and ignored: they become placeholders in
// the surrounding paragraph but never emit a message of their own.
type DocBook struct {
	final   tagSet
	ignored tagSet
	space   tagSet
	roots   tagSet
}

// NewDocBook returns the DocBook policy.
func NewDocBook() *DocBook {
	return &DocBook{
		final:   newTagSet(docbookFinals, docbookObjects, docbookLists),
		ignored: newTagSet(docbookLists),
		space:   newTagSet(docbookSpace),
		roots:   newTagSet(docbookRoots),
	}
}

func (*DocBook) Name() string                     { return "docbook" }
func (p *DocBook) IgnoredTags() []string          { return p.ignored.list() }
func (p *DocBook) SpacePreservingTags() []string  { return p.space.list() }
func (*DocBook) TranslatableAttributes() []string { return nil }
func (*DocBook) CreditsMessage() string           { return CreditsMessage }
func (*DocBook) CreditsComment() string           { return CreditsComment }

func (p *DocBook) IsFinal(doc *document.Document, id document.NodeID) bool {
	return doc.Kind(id) == document.KindElement && p.final.has(doc.Name(id))
}

// PreProcess records one message per imagedata reference so a changed
// image invalidates its translation.
func (*DocBook) PreProcess(doc *document.Document, path string, sink Sink) error {
	emitImages(doc, path, sink, "imagedata", "fileref", nil)
	return nil
}

// PostProcess sets lang on the document element and records each
// translator as a copyright entry in its info block.
func (p *DocBook) PostProcess(doc *document.Document, lang, credits string) error {
	root := doc.DocumentElement()
	if root == document.NoNode || !p.roots.has(doc.Name(root)) {
		return nil
	}
	if lang != "" {
		doc.SetAttr(root, "lang", lang)
	}

	entries := ParseCredits(credits)
	if len(entries) == 0 {
		return nil
	}
	info := doc.FirstChildElement(root, document.LocalName(doc.Name(root))+"info")
	if info == document.NoNode {
		info = doc.FirstChildElement(root, "info")
	}
	if info == document.NoNode {
		return nil
	}
	for _, c := range entries {
		cr := doc.NewElement("copyright")
		if c.Years != "" {
			doc.AppendChild(cr, textElement(doc, "year", c.Years))
		}
		doc.AppendChild(cr, textElement(doc, "holder", c.Holder()))
		insertAfter(doc, info, "copyright", cr)
	}
	return nil
}
