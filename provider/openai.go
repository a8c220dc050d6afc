package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/ZaguanLabs/xmlpo"
	"github.com/ZaguanLabs/xmlpo/locale"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements AIProvider using an OpenAI compatible chat API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // default "gpt-4o-mini"
	Temperature float32 // default 0.2
	BaseURL     string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of catalog messages.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: batchPayload(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &xmlpo.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &xmlpo.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return decodeReply(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}
	sourceName := locale.Name(sourceLang)
	targetName := locale.Name(req.TargetLang)

	contextText := "The messages come from technical documentation."
	if req.Context != "" {
		contextText = fmt.Sprintf("The messages come from: %s.", req.Context)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are a professional documentation translator working from %s into %s.

# Context
%s
Each message is the text of one paragraph, title or attribute of an XML document, with inline markup kept as XML.

# Register
%s

# Rules
- Translate the human readable text only. Keep every element tag and attribute exactly as written.
- Tokens of the form <placeholder-N/> stand for nested content. Keep each one exactly, move it where the grammar of %s needs it and never invent a new number.
- Keep character and entity references such as &amp; and &product; unchanged.
- Keep the output well-formed: every tag you open must be closed.
- Preserve line breaks and runs of spaces in messages that contain them.
- Do not translate command names, file names, URLs or text inside <command>, <filename>, <literal>, <code> or <userinput>.`,
		sourceName, targetName, contextText, xmlpo.StyleDescription(req.Style), targetName)

	if hint := locale.Clarification(req.TargetLang); hint != "" {
		fmt.Fprintf(&b, "\n- %s", hint)
	}

	if len(req.Glossary) > 0 {
		b.WriteString("\n\n# Glossary\nUse these translations for the following terms:")
		terms := make([]string, 0, len(req.Glossary))
		for source := range req.Glossary {
			terms = append(terms, source)
		}
		sort.Strings(terms)
		for _, source := range terms {
			fmt.Fprintf(&b, "\n- %q → %s", source, req.Glossary[source])
		}
	}

	if len(req.ExcludedTerms) > 0 {
		fmt.Fprintf(&b, "\n\n# Exclusions\nKeep these terms exactly as they appear in the source:\n- %s",
			strings.Join(req.ExcludedTerms, "\n- "))
	}

	b.WriteString(`

# Format
The input is a JSON object whose "messages" array holds numbered messages, some with a "hint" about where they come from.
Return a JSON object with a single key "translations" holding one {"n", "text"} object per input message, keeping each number.
Example: { "translations": [{"n": 1, "text": "first message"}, {"n": 2, "text": "second message"}] }
Do not wrap the JSON in Markdown code blocks. Do not copy the hints into the output.`)

	return b.String()
}

// wireMessage is one catalog message as sent to and read back from the
// model. N is 1-based.
type wireMessage struct {
	N    int    `json:"n"`
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// batchPayload numbers the messages so a reply can be matched back even
// when the model reorders it.
func batchPayload(req TranslateRequest) string {
	msgs := make([]wireMessage, len(req.Texts))
	for i, text := range req.Texts {
		msgs[i] = wireMessage{N: i + 1, Text: text}
		if i < len(req.TextContexts) {
			msgs[i].Hint = req.TextContexts[i]
		}
	}
	data, _ := json.Marshal(struct {
		Messages []wireMessage `json:"messages"`
	}{msgs})
	return string(data)
}

// decodeReply accepts {"translations": [...]}, any other single array key or
// a bare array. Entries are numbered objects or plain strings, which are
// taken in order.
func decodeReply(content string, want int) ([]string, error) {
	entries, ok := replyEntries(stripFence(content))
	if !ok {
		return nil, &xmlpo.ProviderError{
			Message: "invalid response format from OpenAI",
		}
	}

	out := make([]string, want)
	filled := make([]bool, want)
	got := 0
	for i, raw := range entries {
		slot, text := i, ""
		var msg wireMessage
		if err := json.Unmarshal(raw, &text); err != nil {
			if err := json.Unmarshal(raw, &msg); err != nil || msg.N == 0 {
				text = string(raw)
			} else {
				slot, text = msg.N-1, msg.Text
			}
		}
		if slot < 0 || slot >= want || filled[slot] {
			continue
		}
		out[slot], filled[slot] = text, true
		got++
	}

	if got != want || len(entries) != want {
		// duplicated numbers count once
		n := len(entries)
		if n == want {
			n = got
		}
		return nil, &xmlpo.CountMismatchError{Expected: want, Got: n}
	}
	return out, nil
}

func replyEntries(content string) ([]json.RawMessage, bool) {
	if arr, ok := rawArray([]byte(content)); ok {
		return arr, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, false
	}
	if arr, ok := rawArray(obj["translations"]); ok {
		return arr, true
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if arr, ok := rawArray(obj[k]); ok {
			return arr, true
		}
	}
	return nil, false
}

func rawArray(data []byte) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &arr) != nil || arr == nil {
		return nil, false
	}
	return arr, true
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); len(m) > 1 {
		return m[1]
	}
	return content
}

// isRetryableError reports rate limiting, server errors and transient
// network failures.
func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection refused", "connection reset", "temporary"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

var _ AIProvider = (*OpenAIProvider)(nil)
