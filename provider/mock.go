package provider

import (
	"context"
	"regexp"
	"sync"
)

var mockPlaceholder = regexp.MustCompile(`<placeholder-\d+/>`)

// MockProvider answers from a fixed table and records every text it is
// asked for. Unknown messages come back in brackets with their markup
// intact, which keeps them valid translations.
//
// With ReversePlaceholders set, the placeholders of an unknown message are
// written back in reverse order, the way a language with a different word
// order moves nested content around.
type MockProvider struct {
	Translations        map[string]string
	ReversePlaceholders bool

	mu          sync.Mutex
	CallCount   int
	LastRequest *TranslateRequest
	Seen        []string
}

// NewMockProvider creates a mock with a few German translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                   "Hallo",
			"World":                   "Welt",
			"Hello <placeholder-1/>!": "Hallo <placeholder-1/>!",
			"Open file":               "Datei öffnen",
		},
	}
}

// Translate implements AIProvider.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastRequest = &req
	m.Seen = append(m.Seen, req.Texts...)

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if tr, ok := m.Translations[text]; ok {
			out[i] = tr
			continue
		}
		if m.ReversePlaceholders {
			text = reversePlaceholders(text)
		}
		out[i] = "[" + text + "]"
	}
	return out, nil
}

func reversePlaceholders(text string) string {
	tokens := mockPlaceholder.FindAllString(text, -1)
	if len(tokens) < 2 {
		return text
	}
	next := len(tokens)
	return mockPlaceholder.ReplaceAllStringFunc(text, func(string) string {
		next--
		return tokens[next]
	})
}

// Reset clears the recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
	m.Seen = nil
}

var _ AIProvider = (*MockProvider)(nil)
