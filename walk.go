package xmlpo

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/document"
	"github.com/ZaguanLabs/xmlpo/mode"
	"github.com/rs/zerolog"
)

// walker performs one extraction or merge pass over a document. The
// classification caches are keyed by node and live only as long as the
// walk, so the tree itself is never annotated.
type walker struct {
	doc    *document.Document
	file   string
	policy mode.Policy
	logger zerolog.Logger

	ignored map[string]bool
	space   map[string]bool
	attrs   map[string]bool

	// resolver expands entities the document uses without declaring.
	resolver         mode.EntityResolver
	keepEntities     bool
	markUntranslated bool

	// tr is set for merge passes, sink for extraction passes.
	tr   Translations
	sink mode.Sink

	final      map[document.NodeID]bool
	structural map[document.NodeID]bool
	worth      map[document.NodeID]bool

	result *Result
}

func (e *Engine) newWalker(doc *document.Document, file string) *walker {
	w := &walker{
		doc:              doc,
		file:             file,
		policy:           e.policy,
		logger:           e.logger,
		ignored:          toSet(e.policy.IgnoredTags()),
		space:            toSet(e.policy.SpacePreservingTags()),
		attrs:            toSet(e.policy.TranslatableAttributes()),
		keepEntities:     e.keepEntities,
		markUntranslated: e.markUntranslated,
		final:            make(map[document.NodeID]bool),
		structural:       make(map[document.NodeID]bool),
		worth:            make(map[document.NodeID]bool),
		result:           &Result{File: file},
	}
	if r, ok := e.policy.(mode.EntityResolver); ok {
		w.resolver = r
	}
	return w
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// run processes every element child of the document node.
func (w *walker) run() *Result {
	for _, c := range w.doc.Children(w.doc.Root()) {
		if w.doc.Kind(c) == document.KindElement {
			w.process(c, nil, true)
		}
	}
	return w.result
}

func (w *walker) local(id document.NodeID) string {
	return document.LocalName(w.doc.Name(id))
}

func (w *walker) isIgnored(id document.NodeID) bool {
	return w.ignored[w.local(id)]
}

func (w *walker) isFinal(id document.NodeID) bool {
	if w.doc.Kind(id) != document.KindElement {
		return false
	}
	if v, ok := w.final[id]; ok {
		return v
	}
	v := w.policy.IsFinal(w.doc, id)
	w.final[id] = v
	return v
}

// structuralWorth reports whether id may emit a message of its own: it is
// final itself, or its nearest final ancestor does not emit.
func (w *walker) structuralWorth(id document.NodeID) bool {
	if v, ok := w.structural[id]; ok {
		return v
	}
	worth := true
	final := w.isFinal(id) && !w.isIgnored(id)
	for p := w.doc.Parent(id); !final && p != document.NoNode && w.doc.Kind(p) == document.KindElement; p = w.doc.Parent(p) {
		if w.isFinal(p) {
			final = true
		}
		if final && !w.isIgnored(p) && w.worthOutputting(p) {
			worth = false
		}
	}
	w.structural[id] = worth
	return worth
}

// worthOutputting reports whether id emits a message: it is structurally
// worth and carries text of its own.
func (w *walker) worthOutputting(id document.NodeID) bool {
	if v, ok := w.worth[id]; ok {
		return v
	}
	v := w.structuralWorth(id) && w.hasContent(id)
	w.worth[id] = v
	return v
}

func (w *walker) hasContent(id document.NodeID) bool {
	if w.isIgnored(id) {
		return false
	}
	for _, c := range w.doc.Children(id) {
		switch w.doc.Kind(c) {
		case document.KindText:
			if !w.doc.IsBlank(c) {
				return true
			}
		case document.KindEntityRef:
			return true
		}
	}
	return false
}

func (w *walker) isSpacePreserve(id document.NodeID) bool {
	if preserve, _ := w.doc.SpacePreserve(id); preserve {
		return true
	}
	for cur := id; cur != document.NoNode && w.doc.Kind(cur) == document.KindElement; cur = w.doc.Parent(cur) {
		if w.space[w.local(cur)] {
			return true
		}
	}
	return false
}

// process renders element id. Nested units are appended to repl, which is
// private to id when restart is set and shared with the caller otherwise.
func (w *walker) process(id document.NodeID, repl *[]rendered, restart bool) rendered {
	if restart || repl == nil {
		repl = new([]rendered)
	}

	if len(w.attrs) > 0 && w.structuralWorth(id) {
		for _, a := range w.doc.Attrs(id) {
			if w.attrs[document.LocalName(a.Name)] {
				w.processAttr(id, a)
			}
		}
	}

	kids := w.doc.Children(id)
	var b strings.Builder
	for _, c := range kids {
		switch w.doc.Kind(c) {
		case document.KindElement:
			if w.isFinal(c) || w.worthOutputting(c) {
				unit := w.process(c, nil, true)
				*repl = append(*repl, unit)
				b.WriteString(Placeholder(len(*repl)))
				continue
			}
			b.WriteString(w.process(c, repl, false).original())
		case document.KindText:
			b.WriteString(document.EscapeText(w.doc.Data(c)))
		case document.KindEntityRef:
			b.WriteString(w.entity(c))
		case document.KindProcInst:
			b.WriteString(w.doc.Render(c))
		}
	}
	outtxt := b.String()

	r := rendered{inner: outtxt, translated: outtxt, empty: len(kids) == 0}
	if !restart {
		r.start, r.end = w.doc.StartTag(id), w.doc.EndTag(id)
		return r
	}

	final := w.isFinal(id) && !w.isIgnored(id)
	emit := w.worthOutputting(id)
	if !emit && !(final && w.structuralWorth(id)) {
		r.translated = w.expand(outtxt, *repl)
		r.changed = anyChanged(*repl)
		r.start, r.end = w.doc.StartTag(id), w.doc.EndTag(id)
		return r
	}

	preserve := w.isSpacePreserve(id)
	key := outtxt
	if !preserve {
		norm, err := Normalize(outtxt, w.space)
		if err != nil {
			w.warn(err, id)
		}
		key = norm
	}
	if !emit && onlyPlaceholders(key) {
		emit = true
	}
	if emit && catalogBlank(key) {
		emit = false
	}

	translated, own := outtxt, false
	if emit {
		w.result.Messages++
		if w.tr == nil {
			w.sink.Add(catalog.Message{
				ID:        key,
				Locations: []catalog.Location{{File: w.file, Tag: w.local(id), Line: w.doc.Line(id)}},
				Comment:   w.commentFor(id),
				NoWrap:    preserve,
			})
		} else if t, ok := w.tr.Lookup("", key); ok && t != "" {
			w.result.Translated++
			if t != key {
				translated, own = t, true
			}
		} else if w.markUntranslated {
			w.doc.SetAttr(id, "xml:lang", "C")
		}
	}

	r.start, r.end = w.doc.StartTag(id), w.doc.EndTag(id)
	expanded, err := expandPlaceholders(translated, *repl)
	if err != nil {
		w.warn(err, id)
		expanded, own = w.expand(outtxt, *repl), false
	}
	r.translated = expanded
	r.changed = own || anyChanged(*repl)

	if emit && w.tr != nil && r.changed {
		if !w.replaceContents(id, expanded) {
			r.translated = w.expand(outtxt, *repl)
		}
	}
	return r
}

// expand substitutes nested units into text that is known to reference
// only defined placeholders.
func (w *walker) expand(text string, units []rendered) string {
	out, _ := expandPlaceholders(text, units)
	return out
}

func anyChanged(units []rendered) bool {
	for _, u := range units {
		if u.changed {
			return true
		}
	}
	return false
}

func catalogBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (w *walker) processAttr(id document.NodeID, a document.Attr) {
	escaped := document.EscapeText(a.Value)
	key, err := Normalize(escaped, nil)
	if err != nil {
		w.warn(err, id)
		key = escaped
	}
	if catalogBlank(key) {
		return
	}
	ctx := w.local(id) + ":" + document.LocalName(a.Name)

	w.result.Messages++
	if w.tr == nil {
		w.sink.Add(catalog.Message{
			Context:   ctx,
			ID:        key,
			Locations: []catalog.Location{{File: w.file, Tag: ctx, Line: w.doc.Line(id)}},
		})
		return
	}
	t, ok := w.tr.Lookup(ctx, key)
	if !ok || t == "" {
		return
	}
	w.result.Translated++
	if t == key {
		return
	}
	value, err := document.UnescapeText(t)
	if err != nil {
		w.warn(&TranslationError{Message: fmt.Sprintf("translation of %s is not valid text", ctx), Cause: err}, id)
		return
	}
	w.doc.SetAttr(id, a.Name, value)
}

// entity renders an entity reference in message text.
func (w *walker) entity(id document.NodeID) string {
	name := w.doc.Name(id)
	ref := document.EntityRef(name)
	if w.keepEntities {
		return ref
	}
	if ent, ok := w.doc.Entities[name]; ok {
		if ent.External {
			return ref
		}
		return ent.Value
	}
	if w.resolver != nil {
		if v, ok := w.resolver.ResolveEntity(name); ok {
			return document.EscapeText(v)
		}
	}
	return ref
}

// commentFor returns the comment directly preceding id, skipping blank text.
func (w *walker) commentFor(id document.NodeID) string {
	for p := w.doc.PrevSibling(id); p != document.NoNode; p = w.doc.PrevSibling(p) {
		if w.doc.IsBlank(p) {
			continue
		}
		if w.doc.Kind(p) == document.KindComment {
			return strings.TrimSpace(w.doc.Data(p))
		}
		return ""
	}
	return ""
}

// replaceContents swaps the children of id for the parsed translation,
// wrapped in id's own tags so its attributes survive.
func (w *walker) replaceContents(id document.NodeID, text string) bool {
	frag, err := w.doc.ParseFragment(w.doc.StartTag(id), w.doc.EndTag(id), text, w.doc.Line(id))
	if err != nil {
		w.warn(&TranslationError{
			Message: fmt.Sprintf("translation of <%s> is not well-formed", w.doc.Name(id)),
			Cause:   err,
		}, id)
		return false
	}
	w.doc.SetChildren(id, w.doc.Children(frag))
	return true
}

func (w *walker) warn(err error, id document.NodeID) {
	w.result.Warnings = append(w.result.Warnings, err)
	w.logger.Warn().
		Err(err).
		Str("file", w.file).
		Int("line", w.doc.Line(id)).
		Msg("Using original text")
}
