// Package mode defines the classification policies that tell the engine how
// a markup vocabulary is laid out: which elements are atomic translation
// units, which are skipped, where whitespace is significant and which
// attributes carry text.
package mode

import (
	"sort"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/document"
	"github.com/rs/zerolog"
)

// CreditsMessage is the msgid translators fill with their names.
const CreditsMessage = "translator-credits"

// CreditsComment explains the expected format of CreditsMessage.
const CreditsComment = "Put one translator per line, in the form of NAME <EMAIL>, YEAR1, YEAR2"

// Sink receives synthetic messages from PreProcess.
type Sink interface {
	Add(m catalog.Message)
}

// Policy classifies the nodes of one markup vocabulary.
type Policy interface {
	Name() string
	IgnoredTags() []string
	// IsFinal reports whether element id is an atomic translation unit.
	IsFinal(doc *document.Document, id document.NodeID) bool
	SpacePreservingTags() []string
	TranslatableAttributes() []string
	// PreProcess runs once per document before extraction. path is the
	// document's file name, used to resolve relative references.
	PreProcess(doc *document.Document, path string, sink Sink) error
	// PostProcess runs once after a merge. credits is the translated
	// CreditsMessage, or empty when there is none.
	PostProcess(doc *document.Document, lang, credits string) error
	CreditsMessage() string
	CreditsComment() string
}

// EntityResolver is implemented by policies that know the replacement text
// of entities a document uses without declaring them.
type EntityResolver interface {
	ResolveEntity(name string) (string, bool)
}

// Verify the built-in policies implement Policy
var (
	_ Policy         = (*Basic)(nil)
	_ Policy         = (*DocBook)(nil)
	_ Policy         = (*Mallard)(nil)
	_ Policy         = (*XHTML)(nil)
	_ Policy         = (*XHTMLLocalized)(nil)
	_ Policy         = (*Table)(nil)
	_ EntityResolver = (*XHTML)(nil)
)

// Names lists the built-in policies.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builtin = map[string]func() Policy{
	"basic":           func() Policy { return NewBasic() },
	"docbook":         func() Policy { return NewDocBook() },
	"mallard":         func() Policy { return NewMallard() },
	"xhtml":           func() Policy { return NewXHTML() },
	"xhtml-localized": func() Policy { return NewXHTMLLocalized() },
}

// Lookup returns the built-in policy with the given name.
func Lookup(name string) (Policy, bool) {
	ctor, ok := builtin[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Select returns the named built-in policy. Unknown names fall back to
// basic with a warning.
func Select(name string, logger zerolog.Logger) Policy {
	if p, ok := Lookup(name); ok {
		return p
	}
	logger.Warn().Str("mode", name).Msg("Unknown mode, falling back to basic")
	return NewBasic()
}

// Resolve is Select that also consults user-defined table specs. Specs
// take precedence over built-in names.
func Resolve(name string, specs []Spec, logger zerolog.Logger) Policy {
	for _, s := range specs {
		if s.Name == name {
			return NewTable(s)
		}
	}
	return Select(name, logger)
}

// tagSet is a set of local element or attribute names.
type tagSet map[string]bool

func newTagSet(names ...[]string) tagSet {
	s := make(tagSet)
	for _, list := range names {
		for _, n := range list {
			s[n] = true
		}
	}
	return s
}

func (s tagSet) has(name string) bool {
	return s[document.LocalName(name)]
}

func (s tagSet) list() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// noHooks supplies empty hooks for policies without pre or post processing.
type noHooks struct{}

func (noHooks) PreProcess(*document.Document, string, Sink) error    { return nil }
func (noHooks) PostProcess(*document.Document, string, string) error { return nil }
func (noHooks) CreditsMessage() string                               { return "" }
func (noHooks) CreditsComment() string                               { return "" }
