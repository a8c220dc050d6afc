// Package verify compares the element structure of a source document with
// its merged translation. Translators may legitimately add or drop inline
// markup, so differences are reported for review rather than treated as
// errors.
package verify

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TagDelta is the change in the number of elements with one name.
type TagDelta struct {
	Tag    string
	Source int
	Output int
}

func (d TagDelta) String() string {
	return fmt.Sprintf("<%s>: %d -> %d", d.Tag, d.Source, d.Output)
}

// Report lists the structural differences found by Compare.
type Report struct {
	// Deltas holds every tag whose count differs, sorted by name.
	Deltas []TagDelta
	// Placeholders counts <placeholder-N/> tokens left in the output,
	// which means a translation referred to nested content that was never
	// expanded.
	Placeholders int
}

// OK reports whether both documents have the same structure.
func (r *Report) OK() bool {
	return len(r.Deltas) == 0 && r.Placeholders == 0
}

func (r *Report) String() string {
	if r.OK() {
		return "structure unchanged"
	}
	parts := make([]string, 0, len(r.Deltas)+1)
	for _, d := range r.Deltas {
		parts = append(parts, d.String())
	}
	if r.Placeholders > 0 {
		parts = append(parts, fmt.Sprintf("%d unexpanded placeholders", r.Placeholders))
	}
	return strings.Join(parts, ", ")
}

// Compare counts elements by name in src and out.
func Compare(src, out []byte) (*Report, error) {
	before, err := countTags(src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	after, err := countTags(out)
	if err != nil {
		return nil, fmt.Errorf("parsing output: %w", err)
	}

	report := &Report{}
	for tag, n := range after {
		if strings.HasPrefix(tag, "placeholder-") {
			report.Placeholders += n
			delete(after, tag)
		}
	}

	tags := make(map[string]bool)
	for tag := range before {
		tags[tag] = true
	}
	for tag := range after {
		tags[tag] = true
	}
	for tag := range tags {
		if before[tag] != after[tag] {
			report.Deltas = append(report.Deltas, TagDelta{Tag: tag, Source: before[tag], Output: after[tag]})
		}
	}
	sort.Slice(report.Deltas, func(i, j int) bool { return report.Deltas[i].Tag < report.Deltas[j].Tag })
	return report, nil
}

// countTags parses data leniently, so a merged document that is no longer
// well-formed XML can still be compared.
func countTags(data []byte) (map[string]int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		counts[goquery.NodeName(s)]++
	})
	return counts, nil
}
