package xmlpo

import "context"

// TranslationStyle controls the tone and formality of machine translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language.
	StyleCasual TranslationStyle = "casual"
	// StyleTechnical uses precise language for manuals and reference documentation.
	StyleTechnical TranslationStyle = "technical"
)

// StyleDescription returns the register instruction given to providers.
func StyleDescription(style TranslationStyle) string {
	switch style {
	case StyleFormal:
		return "Use a formal, professional register suitable for official documents."
	case StyleCasual:
		return "Use a casual, conversational register."
	case StyleTechnical:
		return "Use precise technical language. Keep established terminology for commands, options and interface labels."
	default:
		return "Use a neutral, professional register."
	}
}

// AIProvider is the interface for machine translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	TextContexts  []string // per-text hints, e.g. the extracted comment
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation memory storage.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// Result describes one extraction or merge of a document.
type Result struct {
	File string
	// Messages is the number of messages emitted or looked up.
	Messages int
	// Translated is the number of messages replaced by a translation
	// during a merge.
	Translated int
	// Warnings holds the localized errors that fell back to the original
	// text: *PlaceholderReferenceError, *NormalizationError and
	// *TranslationError.
	Warnings []error
}
