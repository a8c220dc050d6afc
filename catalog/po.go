package catalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Header holds the values written into the PO header entry.
type Header struct {
	Project  string    // Project-Id-Version, default "PACKAGE VERSION"
	Created  time.Time // POT-Creation-Date, default now
	Language string    // Language, empty for templates
	// Generator is written as X-Generator when set.
	Generator string
}

// Escape applies PO string escaping.
func Escape(s string) string {
	return poEscaper.Replace(s)
}

var poEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

// Unescape reverses Escape. Unknown escapes keep the escaped character.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Write renders the catalog as a PO file.
func (c *Catalog) Write(w io.Writer, h Header) error {
	bw := bufio.NewWriter(w)

	project := h.Project
	if project == "" {
		project = "PACKAGE VERSION"
	}
	created := h.Created
	if created.IsZero() {
		created = time.Now()
	}
	language := ""
	if h.Language != "" {
		language = fmt.Sprintf("\"Language: %s\\n\"\n", h.Language)
	}
	generator := ""
	if h.Generator != "" {
		generator = fmt.Sprintf("\"X-Generator: %s\\n\"\n", h.Generator)
	}

	fmt.Fprintf(bw, `msgid ""
msgstr ""
"Project-Id-Version: %s\n"
"POT-Creation-Date: %s\n"
"PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n"
"Last-Translator: FULL NAME <EMAIL@ADDRESS>\n"
"Language-Team: LANGUAGE <LL@li.org>\n"
%s"MIME-Version: 1.0\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Content-Transfer-Encoding: 8bit\n"
%s
`, project, created.Format("2006-01-02 15:04-0700"), language, generator)

	for _, m := range c.messages {
		writeEntry(bw, m)
	}
	return bw.Flush()
}

func writeEntry(w *bufio.Writer, m *Message) {
	if m.Comment != "" {
		fmt.Fprintf(w, "#. %s\n", strings.ReplaceAll(m.Comment, "\n", "\n#. "))
	}
	if len(m.Locations) > 0 {
		refs := make([]string, len(m.Locations))
		for i, l := range m.Locations {
			refs[i] = l.String()
		}
		fmt.Fprintf(w, "#: %s\n", strings.Join(refs, " "))
	}
	var flags []string
	if m.Fuzzy {
		flags = append(flags, "fuzzy")
	}
	if m.NoWrap {
		flags = append(flags, "no-wrap")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(flags, ", "))
	}
	if m.Context != "" {
		fmt.Fprintf(w, "msgctxt \"%s\"\n", Escape(m.Context))
	}
	fmt.Fprintf(w, "msgid \"%s\"\n", Escape(m.ID))
	fmt.Fprintf(w, "msgstr \"%s\"\n\n", Escape(m.Translation))
}

// String renders the location the way PO references do: file:line(tag).
func (l Location) String() string {
	if l.Tag == "" {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d(%s)", l.File, l.Line, l.Tag)
}

var reference = regexp.MustCompile(`^(.*):(\d+)(?:\((.*)\))?$`)

// ParseLocation parses a single PO reference.
func ParseLocation(ref string) (Location, bool) {
	m := reference.FindStringSubmatch(ref)
	if m == nil {
		return Location{}, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return Location{}, false
	}
	return Location{File: m[1], Line: line, Tag: m[3]}, true
}

// ParseError reports a malformed PO file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("po line %d: %s", e.Line, e.Msg)
}

type field int

const (
	fieldNone field = iota
	fieldContext
	fieldID
	fieldPlural
	fieldStr
	fieldStrOther
)

// Parse reads a PO file. The header entry and obsolete entries are
// skipped; for plural entries only msgstr[0] is kept.
func Parse(r io.Reader) (*Catalog, error) {
	cat := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		cur     Message
		active  bool
		current field
		lineNo  int
	)
	flush := func() {
		if active && cur.ID != "" {
			cat.Add(cur)
			if m, ok := cat.Get(cur.Context, cur.ID); ok && m.Translation == "" {
				m.Translation = cur.Translation
				m.Fuzzy = cur.Fuzzy
			}
		}
		cur = Message{}
		active = false
		current = fieldNone
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#~"):
			// obsolete entry
		case strings.HasPrefix(line, "#."):
			if current != fieldNone {
				flush()
			}
			text := strings.TrimSpace(line[2:])
			if cur.Comment != "" {
				cur.Comment += "\n" + text
			} else {
				cur.Comment = text
			}
		case strings.HasPrefix(line, "#:"):
			if current != fieldNone {
				flush()
			}
			for _, ref := range strings.Fields(line[2:]) {
				if loc, ok := ParseLocation(ref); ok {
					cur.Locations = append(cur.Locations, loc)
				}
			}
		case strings.HasPrefix(line, "#,"):
			if current != fieldNone {
				flush()
			}
			for _, flag := range strings.Split(line[2:], ",") {
				switch strings.TrimSpace(flag) {
				case "fuzzy":
					cur.Fuzzy = true
				case "no-wrap":
					cur.NoWrap = true
				}
			}
		case strings.HasPrefix(line, "#"):
			// translator comments and previous msgids
		case strings.HasPrefix(line, "msgctxt "):
			if current != fieldNone {
				flush()
			}
			s, err := quoted(line[len("msgctxt "):], lineNo)
			if err != nil {
				return nil, err
			}
			cur.Context, current, active = s, fieldContext, true
		case strings.HasPrefix(line, "msgid_plural "):
			current = fieldPlural
		case strings.HasPrefix(line, "msgid "):
			if current != fieldNone && current != fieldContext {
				flush()
			}
			s, err := quoted(line[len("msgid "):], lineNo)
			if err != nil {
				return nil, err
			}
			cur.ID, current, active = s, fieldID, true
		case strings.HasPrefix(line, "msgstr[0] "), strings.HasPrefix(line, "msgstr "):
			rest := line[strings.IndexByte(line, ' ')+1:]
			s, err := quoted(rest, lineNo)
			if err != nil {
				return nil, err
			}
			cur.Translation, current = s, fieldStr
		case strings.HasPrefix(line, "msgstr["):
			current = fieldStrOther
		case strings.HasPrefix(line, `"`):
			s, err := quoted(line, lineNo)
			if err != nil {
				return nil, err
			}
			switch current {
			case fieldContext:
				cur.Context += s
			case fieldID:
				cur.ID += s
			case fieldStr:
				cur.Translation += s
			case fieldPlural, fieldStrOther:
			default:
				return nil, &ParseError{Line: lineNo, Msg: "string continuation outside of an entry"}
			}
		default:
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected %q", line)}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading po: %w", err)
	}
	flush()
	return cat, nil
}

func quoted(s string, line int) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", &ParseError{Line: line, Msg: fmt.Sprintf("expected quoted string, got %q", s)}
	}
	return Unescape(s[1 : len(s)-1]), nil
}
