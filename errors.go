package xmlpo

import "fmt"

// ParseError reports an input document that could not be parsed. It is
// fatal for that file only.
type ParseError struct {
	File  string
	Line  int
	Cause error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %v", e.File, e.Line, e.Cause)
	}
	return fmt.Sprintf("parse error in %s: %v", e.File, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// PlaceholderReferenceError reports a translation that refers to a
// placeholder its source message does not define.
type PlaceholderReferenceError struct {
	Message string // the offending translation
	Index   int
}

func (e *PlaceholderReferenceError) Error() string {
	return fmt.Sprintf("translation references undefined <placeholder-%d/>: %q", e.Index, e.Message)
}

// NormalizationError reports message text that could not be reparsed for
// normalization. The raw text is used as the key instead.
type NormalizationError struct {
	Text  string
	Cause error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize %q: %v", e.Text, e.Cause)
}

func (e *NormalizationError) Unwrap() error {
	return e.Cause
}

// TranslationError reports a translation that could not be applied, such
// as one that is not well-formed markup.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a translation memory failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of
// translations than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
