package xmlpo

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/internal/worker"
	"github.com/ZaguanLabs/xmlpo/locale"
	"github.com/ZaguanLabs/xmlpo/mode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pretranslator fills untranslated catalog entries from a translation
// memory and an AI provider. Every filled entry is flagged fuzzy so a
// translator reviews it before it is used for a merge.
type Pretranslator struct {
	targetLang    string
	sourceLang    string
	provider      AIProvider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
	batchSize     int
	logger        zerolog.Logger
}

// PretranslatorOption is a functional option for configuring the Pretranslator.
type PretranslatorOption func(*Pretranslator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) PretranslatorOption {
	return func(p *Pretranslator) {
		p.sourceLang = lang
	}
}

// WithCache sets the translation memory.
func WithCache(cache TranslationCache) PretranslatorOption {
	return func(p *Pretranslator) {
		p.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) PretranslatorOption {
	return func(p *Pretranslator) {
		p.excludedTerms = terms
	}
}

// WithContext describes the documents to the provider.
func WithContext(ctx string) PretranslatorOption {
	return func(p *Pretranslator) {
		p.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) PretranslatorOption {
	return func(p *Pretranslator) {
		p.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) PretranslatorOption {
	return func(p *Pretranslator) {
		p.style = style
	}
}

// WithBatchSize sets how many messages go into one provider request.
func WithBatchSize(n int) PretranslatorOption {
	return func(p *Pretranslator) {
		p.batchSize = n
	}
}

// WithPretranslatorLogger sets the logger rejected translations are
// reported on.
func WithPretranslatorLogger(logger zerolog.Logger) PretranslatorOption {
	return func(p *Pretranslator) {
		p.logger = logger
	}
}

// NewPretranslator creates a Pretranslator for targetLang. provider may be
// nil, in which case only the memory is consulted.
func NewPretranslator(targetLang string, provider AIProvider, opts ...PretranslatorOption) *Pretranslator {
	p := &Pretranslator{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		style:      StyleTechnical,
		batchSize:  50,
		logger:     log.Logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FillResult reports what Fill did.
type FillResult struct {
	// Total is the number of untranslated entries considered.
	Total int
	// Cached entries were filled from the memory.
	Cached int
	// Translated entries were filled by the provider.
	Translated int
	// Rejected translations referenced undefined placeholders or were not
	// well-formed; their entries stay untranslated.
	Rejected int
	Warnings []error
}

// Fill translates the untranslated entries of cat in place. Image markers,
// the credits message and entries made only of placeholders are left
// alone. On a provider error the entries filled so far are kept and the
// error is returned.
func (p *Pretranslator) Fill(ctx context.Context, cat *catalog.Catalog) (*FillResult, error) {
	res := &FillResult{}
	if locale.Same(p.targetLang, p.sourceLang) {
		return res, nil
	}

	byKey := make(map[string][]*catalog.Message)
	var pending []*catalog.Message
	for _, m := range cat.Messages() {
		if !p.wants(m) {
			continue
		}
		res.Total++
		if _, seen := byKey[m.Key()]; !seen {
			pending = append(pending, m)
		}
		byKey[m.Key()] = append(byKey[m.Key()], m)
	}
	if len(pending) == 0 {
		return res, nil
	}

	hits, misses := ParallelMemoryLookup(p.cache, pending, p.targetLang)
	for key, t := range hits {
		res.Cached += fill(byKey[key], t)
	}

	if p.provider == nil || len(misses) == 0 {
		return res, nil
	}

	for i, batch := range worker.Batch(misses, p.batchSize) {
		out, err := p.provider.Translate(ctx, p.request(batch))
		if err != nil {
			return res, fmt.Errorf("translating batch %d: %w", i+1, err)
		}
		if len(out) != len(batch) {
			return res, &CountMismatchError{Expected: len(batch), Got: len(out)}
		}
		for j, m := range batch {
			if err := validateTranslation(m.ID, out[j]); err != nil {
				res.Rejected++
				res.Warnings = append(res.Warnings, err)
				p.logger.Warn().Err(err).Str("msgid", m.ID).Msg("Rejecting machine translation")
				continue
			}
			if p.cache != nil {
				if err := p.cache.Set(MemoryKey(m.Context, m.ID, p.targetLang), out[j]); err != nil {
					p.logger.Warn().Err(err).Msg("Failed to store translation in memory")
				}
			}
			res.Translated += fill(byKey[m.Key()], out[j])
		}
	}

	p.logger.Info().
		Str("lang", p.targetLang).
		Int("total", res.Total).
		Int("cached", res.Cached).
		Int("translated", res.Translated).
		Int("rejected", res.Rejected).
		Msg("Pre-translation finished")
	return res, nil
}

func (p *Pretranslator) wants(m *catalog.Message) bool {
	switch {
	case m.Translation != "":
		return false
	case m.ID == mode.CreditsMessage:
		return false
	case strings.HasPrefix(m.ID, "@@image:"):
		return false
	case onlyPlaceholders(m.ID):
		return false
	}
	return true
}

func (p *Pretranslator) request(batch []*catalog.Message) TranslateRequest {
	texts := make([]string, len(batch))
	hints := make([]string, len(batch))
	for i, m := range batch {
		texts[i] = m.ID
		switch {
		case m.Comment != "":
			hints[i] = m.Comment
		case m.Context != "":
			hints[i] = "attribute " + m.Context
		case len(m.Locations) > 0:
			hints[i] = "<" + m.Locations[0].Tag + "> element"
		}
	}
	return TranslateRequest{
		Texts:         texts,
		TargetLang:    p.targetLang,
		SourceLang:    p.sourceLang,
		ExcludedTerms: p.excludedTerms,
		Context:       p.context,
		TextContexts:  hints,
		Glossary:      p.glossary,
		Style:         p.style,
	}
}

// validateTranslation accepts a translation that is well-formed markup
// and refers only to placeholders the source defines.
func validateTranslation(source, translation string) error {
	if strings.TrimSpace(translation) == "" {
		return &TranslationError{Message: fmt.Sprintf("empty translation for %q", source)}
	}
	if err := CheckPlaceholders(source, translation); err != nil {
		return err
	}
	if _, err := Normalize(translation, nil); err != nil {
		return &TranslationError{Message: "translation is not well-formed", Cause: err}
	}
	return nil
}

func fill(msgs []*catalog.Message, translation string) int {
	for _, m := range msgs {
		m.Translation = translation
		m.Fuzzy = true
	}
	return len(msgs)
}
