package xmlpo

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/document"
	"github.com/ZaguanLabs/xmlpo/mode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine extracts messages from documents and merges translations back,
// classifying nodes with a mode.Policy.
type Engine struct {
	policy           mode.Policy
	logger           zerolog.Logger
	keepEntities     bool
	markUntranslated bool
	language         string
	workers          int
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for warnings.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithKeepEntities keeps internal entity references unexpanded in messages.
func WithKeepEntities(keep bool) EngineOption {
	return func(e *Engine) {
		e.keepEntities = keep
	}
}

// WithMarkUntranslated sets xml:lang="C" on merged units that had no
// translation.
func WithMarkUntranslated(mark bool) EngineOption {
	return func(e *Engine) {
		e.markUntranslated = mark
	}
}

// WithLanguage sets the language passed to the policy after a merge.
func WithLanguage(lang string) EngineOption {
	return func(e *Engine) {
		e.language = lang
	}
}

// WithWorkers sets the number of files ExtractParallel processes at once.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// NewEngine creates an Engine for the given policy. A nil policy selects
// basic.
func NewEngine(policy mode.Policy, opts ...EngineOption) *Engine {
	if policy == nil {
		policy = mode.NewBasic()
	}
	e := &Engine{
		policy:  policy,
		logger:  log.Logger,
		workers: 4,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Policy returns the engine's classification policy.
func (e *Engine) Policy() mode.Policy {
	return e.policy
}

// ReadDocument parses a file, reporting malformed markup as *ParseError.
func ReadDocument(file string) (*document.Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &ParseError{File: file, Cause: err}
	}
	doc, err := document.Parse(bytes.NewReader(data))
	if err != nil {
		perr := &ParseError{File: file, Cause: err}
		var se *document.SyntaxError
		if errors.As(err, &se) {
			perr.Line = se.Line
		}
		return nil, perr
	}
	return doc, nil
}

// ExtractDocument runs the policy's pre-processing and adds every message
// of doc to cat.
func (e *Engine) ExtractDocument(doc *document.Document, file string, cat *catalog.Catalog) (*Result, error) {
	if err := e.policy.PreProcess(doc, file, cat); err != nil {
		return nil, fmt.Errorf("pre-processing %s: %w", file, err)
	}
	w := e.newWalker(doc, file)
	w.sink = cat
	res := w.run()

	e.logger.Debug().
		Str("file", file).
		Str("mode", e.policy.Name()).
		Int("messages", res.Messages).
		Int("warnings", len(res.Warnings)).
		Msg("Extracted messages")
	return res, nil
}

// Extract builds one catalog from all files. A file that cannot be parsed
// is skipped; its error is returned joined with the others alongside the
// catalog of the files that succeeded.
func (e *Engine) Extract(files []string) (*catalog.Catalog, error) {
	cat := catalog.New()
	var errs []error
	for _, file := range files {
		doc, err := ReadDocument(file)
		if err != nil {
			e.logger.Error().Err(err).Str("file", file).Msg("Skipping document")
			errs = append(errs, err)
			continue
		}
		if _, err := e.ExtractDocument(doc, file, cat); err != nil {
			errs = append(errs, err)
		}
	}
	e.addCredits(cat)
	return cat, errors.Join(errs...)
}

func (e *Engine) addCredits(cat *catalog.Catalog) {
	if msg := e.policy.CreditsMessage(); msg != "" {
		cat.Add(catalog.Message{ID: msg, Comment: e.policy.CreditsComment()})
	}
}

// MergeDocument rewrites doc in place with the translations in tr and runs
// the policy's post-processing.
func (e *Engine) MergeDocument(doc *document.Document, file string, tr Translations) (*Result, error) {
	w := e.newWalker(doc, file)
	w.tr = tr
	res := w.run()

	credits := ""
	if msg := e.policy.CreditsMessage(); msg != "" {
		if t, ok := tr.Lookup("", msg); ok {
			credits = t
		}
	}
	if err := e.policy.PostProcess(doc, e.language, credits); err != nil {
		return res, fmt.Errorf("post-processing %s: %w", file, err)
	}

	e.logger.Debug().
		Str("file", file).
		Str("lang", e.language).
		Int("messages", res.Messages).
		Int("translated", res.Translated).
		Msg("Merged translations")
	return res, nil
}

// Merge returns file translated with tr. Nothing is returned unless the
// whole document could be processed.
func (e *Engine) Merge(tr Translations, file string) ([]byte, error) {
	doc, err := ReadDocument(file)
	if err != nil {
		return nil, err
	}
	if _, err := e.MergeDocument(doc, file, tr); err != nil {
		return nil, err
	}
	return doc.Serialize(), nil
}

// Reuse recovers translations from a translated copy of an older source
// document. Messages of newSource are paired by position with those of
// oldTranslated, so the result is only as good as the two documents are
// aligned; it is meant as a starting point for translators.
func (e *Engine) Reuse(oldTranslated, newSource string) (*catalog.Catalog, error) {
	src, err := ReadDocument(newSource)
	if err != nil {
		return nil, err
	}
	old, err := ReadDocument(oldTranslated)
	if err != nil {
		return nil, err
	}

	cat := catalog.NewPositional()
	w := e.newWalker(src, newSource)
	w.sink = cat
	w.run()

	cat.TranslationsFollow()
	w = e.newWalker(old, oldTranslated)
	w.sink = cat
	w.run()

	return cat, nil
}
