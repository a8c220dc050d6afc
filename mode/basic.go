package mode

import "github.com/ZaguanLabs/xmlpo/document"

// Basic is the generic policy. It has no fixed vocabulary and decides
// finality from the shape of the tree.
type Basic struct {
	noHooks
}

// NewBasic returns the generic policy.
func NewBasic() *Basic { return &Basic{} }

func (*Basic) Name() string                     { return "basic" }
func (*Basic) IgnoredTags() []string            { return nil }
func (*Basic) SpacePreservingTags() []string    { return nil }
func (*Basic) TranslatableAttributes() []string { return nil }

// IsFinal reports whether id is a run of text with inline markup: it holds
// text of its own and every element child is itself final.
func (*Basic) IsFinal(doc *document.Document, id document.NodeID) bool {
	return structuralFinal(doc, id, nil)
}

// structuralFinal implements the generic finality rule. Comments, blank
// text and processing instructions do not count. Elements in ignored are
// never final.
func structuralFinal(doc *document.Document, id document.NodeID, ignored tagSet) bool {
	if doc.Kind(id) != document.KindElement || ignored.has(doc.Name(id)) {
		return false
	}
	hasText := false
	for _, c := range doc.Children(id) {
		switch doc.Kind(c) {
		case document.KindText:
			if !doc.IsBlank(c) {
				hasText = true
			}
		case document.KindEntityRef:
			hasText = true
		case document.KindElement:
			if !structuralFinal(doc, c, ignored) {
				return false
			}
		}
	}
	return hasText
}
