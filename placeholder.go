package xmlpo

import (
	"regexp"
	"strconv"
	"strings"
)

var placeholderToken = regexp.MustCompile(`<placeholder-(\d+)/>`)

// Placeholder returns the token standing for the k-th nested unit of a
// message, counting from 1.
func Placeholder(k int) string {
	return "<placeholder-" + strconv.Itoa(k) + "/>"
}

// rendered is one nested unit of a message: its tags, the original inner
// markup and the inner markup after translation.
type rendered struct {
	start      string
	inner      string
	end        string
	translated string
	// empty is set for elements without children, rendered as <x/>.
	empty bool
	// changed is set when a translation was applied at or below the unit.
	changed bool
}

func (r rendered) original() string {
	return wrap(r.start, r.inner, r.end, r.empty)
}

func (r rendered) result() string {
	return wrap(r.start, r.translated, r.end, r.empty)
}

func wrap(start, inner, end string, empty bool) string {
	if empty && inner == "" {
		return "<" + start + "/>"
	}
	return "<" + start + ">" + inner + "</" + end + ">"
}

// expandPlaceholders replaces every placeholder token in text with the
// translated markup of the matching unit. Tokens may be reordered or
// dropped; a token without a unit is left in place and reported.
func expandPlaceholders(text string, units []rendered) (string, error) {
	if !strings.Contains(text, "<placeholder-") {
		return text, nil
	}
	var bad error
	out := placeholderToken.ReplaceAllStringFunc(text, func(tok string) string {
		k := placeholderIndex(tok)
		if k < 1 || k > len(units) {
			if bad == nil {
				bad = &PlaceholderReferenceError{Message: text, Index: k}
			}
			return tok
		}
		return units[k-1].result()
	})
	return out, bad
}

func placeholderIndex(tok string) int {
	m := placeholderToken.FindStringSubmatch(tok)
	if m == nil {
		return 0
	}
	k, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return k
}

// Placeholders returns the placeholder indices of a message in order of
// appearance.
func Placeholders(message string) []int {
	var out []int
	for _, m := range placeholderToken.FindAllStringSubmatch(message, -1) {
		k, err := strconv.Atoi(m[1])
		if err == nil {
			out = append(out, k)
		}
	}
	return out
}

// CheckPlaceholders verifies that translation only refers to placeholders
// defined by source. Dropping or reordering placeholders is allowed.
func CheckPlaceholders(source, translation string) error {
	defined := make(map[int]bool)
	for _, k := range Placeholders(source) {
		defined[k] = true
	}
	for _, k := range Placeholders(translation) {
		if !defined[k] {
			return &PlaceholderReferenceError{Message: translation, Index: k}
		}
	}
	return nil
}

// onlyPlaceholders reports whether a normalized message consists of
// placeholder tokens and whitespace alone.
func onlyPlaceholders(message string) bool {
	if !strings.Contains(message, "<placeholder-") {
		return false
	}
	return strings.TrimSpace(placeholderToken.ReplaceAllString(message, "")) == ""
}
