package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`say "hi"`, `say \"hi\"`},
		{"a\nb", `a\nb`},
		{"tab\there", `tab\there`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got := Unescape(tt.want); got != tt.in {
			t.Errorf("Unescape(%q) = %q, want %q", tt.want, got, tt.in)
		}
	}
}

func TestUnescape_Unusual(t *testing.T) {
	if got := Unescape(`a\rb`); got != "a\rb" {
		t.Errorf("Unescape(\\r) = %q", got)
	}
	if got := Unescape(`\q`); got != "q" {
		t.Errorf("unknown escape = %q, want q", got)
	}
	if got := Unescape(`end\`); got != `end\` {
		t.Errorf("trailing backslash = %q", got)
	}
}

func TestCatalog_WriteParse(t *testing.T) {
	c := New()
	c.Add(Message{
		ID:        "Click <placeholder-1/> to \"start\"",
		Locations: []Location{{File: "guide.xml", Line: 12, Tag: "para"}, {File: "guide.xml", Line: 40, Tag: "para"}},
		Comment:   "Tag: guibutton",
	})
	c.Add(Message{
		Context:     "img:alt",
		ID:          "Logo",
		Locations:   []Location{{File: "index.html", Line: 3, Tag: "img"}},
		Translation: "Logo\nneu",
		Fuzzy:       true,
	})
	c.Add(Message{
		ID:          "  keep\tspacing  ",
		Locations:   []Location{{File: "guide.xml", Line: 50, Tag: "screen"}},
		NoWrap:      true,
		Translation: "  Abstand\tbehalten  ",
	})

	var buf bytes.Buffer
	if err := c.Write(&buf, Header{Project: "guide 1.0", Created: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	parsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(c.Messages(), parsed.Messages()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	err := New().Write(&buf, Header{
		Language:  "de",
		Generator: "xmlpo 0.1.0",
		Created:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`msgid ""`,
		`"Project-Id-Version: PACKAGE VERSION\n"`,
		`"POT-Creation-Date: 2026-03-01 10:00+0000\n"`,
		`"Language: de\n"`,
		`"Content-Type: text/plain; charset=UTF-8\n"`,
		`"X-Generator: xmlpo 0.1.0\n"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %s\n%s", want, out)
		}
	}

	buf.Reset()
	if err := New().Write(&buf, Header{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "Language:") || strings.Contains(buf.String(), "X-Generator") {
		t.Errorf("template header has optional fields:\n%s", buf.String())
	}
}

func TestParse(t *testing.T) {
	input := `# translator comment
msgid ""
msgstr ""
"Language: de\n"

#. Tag: title
#: a.xml:1(title)
msgid ""
"Multi "
"line"
msgstr "Mehr"
"zeilig"

msgctxt "a:title"
msgid "Tip"
msgstr "Hinweis"

msgid "file"
msgid_plural "files"
msgstr[0] "Datei"
msgstr[1] "Dateien"

#~ msgid "old"
#~ msgstr "alt"
`
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []*Message{
		{ID: "Multi line", Comment: "Tag: title", Locations: []Location{{File: "a.xml", Line: 1, Tag: "title"}}, Translation: "Mehrzeilig"},
		{Context: "a:title", ID: "Tip", Translation: "Hinweis"},
		{ID: "file", Translation: "Datei"},
	}
	if diff := cmp.Diff(want, c.Messages()); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_WithoutHeader(t *testing.T) {
	c, err := Parse(strings.NewReader("msgid \"Hello\"\nmsgstr \"Hallo\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, ok := c.Lookup("", "Hello"); !ok || got != "Hallo" {
		t.Errorf("Lookup = %q, %v", got, ok)
	}
}

func TestParse_DuplicateKeepsFirstTranslation(t *testing.T) {
	c, err := Parse(strings.NewReader(`msgid "A"
msgstr ""

msgid "A"
msgstr "Ä"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if got, _ := c.Lookup("", "A"); got != "Ä" {
		t.Errorf("Lookup = %q, want Ä", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"unterminated string", "msgid \"open\nmsgstr \"\"\n", 1},
		{"garbage", "msgid \"a\"\nmsgstr \"b\"\nwhat is this\n", 3},
		{"stray continuation", "\"floating\"\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse error = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		ref  string
		want Location
		ok   bool
	}{
		{"guide.xml:12(para)", Location{File: "guide.xml", Line: 12, Tag: "para"}, true},
		{"guide.xml:12", Location{File: "guide.xml", Line: 12}, true},
		{"dir/a:b.xml:3(title)", Location{File: "dir/a:b.xml", Line: 3, Tag: "title"}, true},
		{"nowhere", Location{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLocation(tt.ref)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, %v; want %+v, %v", tt.ref, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.ref {
			t.Errorf("String() = %q, want %q", got.String(), tt.ref)
		}
	}
}
