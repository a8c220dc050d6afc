package xmlpo

import (
	"regexp"
	"strings"

	"github.com/ZaguanLabs/xmlpo/document"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Normalize returns the catalog key for a message body: whitespace runs in
// text collapse to a single space, whitespace-only text at the edges of an
// element disappears and one leading and trailing space is trimmed.
// Elements named in preserve, or declaring xml:space="preserve", keep their
// content verbatim. Normalize is idempotent.
//
// When text is not well-formed markup Normalize returns it unchanged along
// with a *NormalizationError.
func Normalize(text string, preserve map[string]bool) (string, error) {
	doc := document.New()
	norm, err := doc.ParseFragment("norm", "norm", text, 1)
	if err != nil {
		return text, &NormalizationError{Text: text, Cause: err}
	}
	normalizeNode(doc, norm, preserve)

	out := doc.RenderChildren(norm)
	out = strings.TrimPrefix(out, " ")
	out = strings.TrimSuffix(out, " ")
	return out, nil
}

func normalizeNode(doc *document.Document, id document.NodeID, preserve map[string]bool) {
	kids := doc.Children(id)
	kept := kids[:0:0]
	for i, c := range kids {
		switch doc.Kind(c) {
		case document.KindText:
			data := doc.Data(c)
			switch {
			case !document.IsSpace(data):
				doc.SetData(c, spaceRun.ReplaceAllString(data, " "))
			case i == 0 || i == len(kids)-1:
				// dropped, so the element renders the same on every pass
				continue
			default:
				doc.SetData(c, " ")
			}
		case document.KindElement:
			if preserve[document.LocalName(doc.Name(c))] {
				break
			}
			if v, ok := doc.Attr(c, "xml:space"); ok && v == "preserve" {
				break
			}
			normalizeNode(doc, c, preserve)
		}
		kept = append(kept, c)
	}
	if len(kept) != len(kids) {
		doc.SetChildren(id, kept)
	}
}
