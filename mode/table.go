package mode

import (
	"fmt"

	"github.com/ZaguanLabs/xmlpo/document"
	"gopkg.in/yaml.v3"
)

// Spec describes a user-defined policy.
type Spec struct {
	Name            string   `yaml:"name"`
	Final           []string `yaml:"final"`
	Ignored         []string `yaml:"ignored"`
	SpacePreserving []string `yaml:"space_preserving"`
	Attributes      []string `yaml:"attributes"`
	// Contextual maps a tag to the parents in which it is final.
	Contextual map[string][]string `yaml:"contextual"`
	// Auto adds the structural rule of the basic policy to Final.
	Auto bool `yaml:"auto"`
	// LangAttribute is set to the target language on the document
	// element after a merge.
	LangAttribute string `yaml:"lang_attribute"`
}

// ParseSpecs reads policy specs from YAML of the form
//
//	modes:
//	  - name: topic
//	    final: [para, title]
func ParseSpecs(data []byte) ([]Spec, error) {
	var file struct {
		Modes []Spec `yaml:"modes"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing mode specs: %w", err)
	}
	for i, s := range file.Modes {
		if s.Name == "" {
			return nil, fmt.Errorf("mode spec %d has no name", i+1)
		}
	}
	return file.Modes, nil
}

// Table is a policy built from a Spec.
type Table struct {
	spec       Spec
	final      tagSet
	ignored    tagSet
	space      tagSet
	attrs      tagSet
	contextual map[string]tagSet
}

// NewTable builds a policy from spec.
func NewTable(spec Spec) *Table {
	t := &Table{
		spec:       spec,
		final:      newTagSet(spec.Final),
		ignored:    newTagSet(spec.Ignored),
		space:      newTagSet(spec.SpacePreserving),
		attrs:      newTagSet(spec.Attributes),
		contextual: make(map[string]tagSet, len(spec.Contextual)),
	}
	for tag, parents := range spec.Contextual {
		t.contextual[tag] = newTagSet(parents)
	}
	return t
}

func (t *Table) Name() string                     { return t.spec.Name }
func (t *Table) IgnoredTags() []string            { return t.ignored.list() }
func (t *Table) SpacePreservingTags() []string    { return t.space.list() }
func (t *Table) TranslatableAttributes() []string { return t.attrs.list() }
func (*Table) CreditsMessage() string             { return "" }
func (*Table) CreditsComment() string             { return "" }

func (*Table) PreProcess(*document.Document, string, Sink) error { return nil }

func (t *Table) IsFinal(doc *document.Document, id document.NodeID) bool {
	if doc.Kind(id) != document.KindElement {
		return false
	}
	name := doc.Name(id)
	if t.final.has(name) {
		return true
	}
	if parents, ok := t.contextual[document.LocalName(name)]; ok {
		p := doc.Parent(id)
		if p != document.NoNode && doc.Kind(p) == document.KindElement && parents.has(doc.Name(p)) {
			return true
		}
	}
	return t.spec.Auto && structuralFinal(doc, id, t.ignored)
}

func (t *Table) PostProcess(doc *document.Document, lang, _ string) error {
	root := doc.DocumentElement()
	if t.spec.LangAttribute == "" || lang == "" || root == document.NoNode {
		return nil
	}
	doc.SetAttr(root, t.spec.LangAttribute, lang)
	return nil
}
