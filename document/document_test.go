package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "declaration and comment",
			input: "<?xml version=\"1.0\"?>\n<doc a=\"1\"><p>Hi &amp; bye</p><!-- note --></doc>\n",
		},
		{
			name:  "doctype with entities",
			input: "<!DOCTYPE doc [\n<!ENTITY app \"My App\">\n]>\n<doc>&app; rocks &#169;</doc>\n",
		},
		{
			name:  "processing instruction",
			input: "<doc><?php echo 1; ?><b>x</b></doc>\n",
		},
		{
			name:  "namespaced attributes",
			input: "<doc xml:lang=\"en\" xmlns:its=\"http://www.w3.org/2005/11/its\"><p its:translate=\"no\">x</p></doc>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			want := strings.ReplaceAll(tt.input, "&#169;", "©")
			if diff := cmp.Diff(want, string(d.Serialize())); diff != "" {
				t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_EmptyElements(t *testing.T) {
	d, err := ParseString(`<doc><br></br><img src='a.png'/><ulink url="u"></ulink></doc>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "<doc><br></br><img src=\"a.png\"/><ulink url=\"u\"></ulink></doc>\n"
	if got := string(d.Serialize()); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}

	// built elements have no end tag of their own
	d.AppendChild(d.DocumentElement(), d.NewElement("hr"))
	if got := d.RenderChildren(d.DocumentElement()); !strings.HasSuffix(got, "<hr/>") {
		t.Errorf("new element rendered as %q", got)
	}
}

func TestParse_Entities(t *testing.T) {
	d, err := ParseString(`<!DOCTYPE book [
<!ENTITY app "My App">
<!ENTITY app "Shadowed">
<!ENTITY chap SYSTEM "chap.xml">
<!ENTITY legal PUBLIC "-//X//Legal" 'legal.xml'>
]>
<book>&app; &chap;</book>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := map[string]Entity{
		"app":   {Name: "app", Value: "My App"},
		"chap":  {Name: "chap", External: true, SystemID: "chap.xml"},
		"legal": {Name: "legal", External: true, SystemID: "legal.xml"},
	}
	if diff := cmp.Diff(want, d.Entities); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	root := d.DocumentElement()
	var kinds []Kind
	for _, c := range d.Children(root) {
		kinds = append(kinds, d.Kind(c))
	}
	if diff := cmp.Diff([]Kind{KindEntityRef, KindText, KindEntityRef}, kinds); diff != "" {
		t.Errorf("children kinds mismatch (-want +got):\n%s", diff)
	}
	if got := d.Name(d.Children(root)[0]); got != "app" {
		t.Errorf("entity ref name = %q", got)
	}
}

func TestParse_Lines(t *testing.T) {
	d, err := ParseString("<doc>\n  <p>one</p>\n\n  <p>two</p>\n</doc>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var lines []int
	d.Walk(d.Root(), func(id NodeID) bool {
		if d.Kind(id) == KindElement && d.Name(id) == "p" {
			lines = append(lines, d.Line(id))
		}
		return true
	})
	if diff := cmp.Diff([]int{2, 4}, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"mismatched end", "<doc>\n<p>x</q>\n</doc>", 2},
		{"unclosed", "<doc><p>x</p>", 1},
		{"no root", "<!-- only a comment -->", 1},
		{"bad attribute", "<doc>\n\n<p a=1>x</p></doc>", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *SyntaxError", err)
			}
			if se.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", se.Line, tt.line, err)
			}
		})
	}
}

func TestParse_Charset(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "latin-1",
			input: "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><doc>caf\xe9</doc>",
			want:  "<?xml version=\"1.0\" encoding=\"utf-8\"?><doc>café</doc>\n",
		},
		{
			name: "latin-1 with entity",
			input: "<?xml version='1.0' encoding='ISO-8859-1'?>\n" +
				"<!DOCTYPE doc [<!ENTITY app \"Caf\xe9 App\">]>\n" +
				"<doc a=\"&app; \xe9\"><para>Caf\xe9 &app; ready</para></doc>",
			want: "<?xml version='1.0' encoding='utf-8'?>\n" +
				"<!DOCTYPE doc [<!ENTITY app \"Café App\">]>\n" +
				"<doc a=\"&app; é\"><para>Café &app; ready</para></doc>\n",
		},
		{
			name:  "utf-8 byte order mark",
			input: "\xef\xbb\xbf<doc>é &app;</doc>",
			want:  "<doc>é &app;</doc>\n",
		},
		{
			name:  "utf-16le",
			input: utf16LE("<?xml version=\"1.0\" encoding=\"UTF-16\"?><doc>&app;</doc>"),
			want:  "<?xml version=\"1.0\" encoding=\"utf-8\"?><doc>&app;</doc>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(d.Serialize())); diff != "" {
				t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_CharsetEntityNode(t *testing.T) {
	d, err := ParseString("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><doc>Caf\xe9 &app; ready</doc>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	kids := d.Children(d.DocumentElement())
	if len(kids) != 3 || d.Kind(kids[1]) != KindEntityRef || d.Name(kids[1]) != "app" {
		t.Fatalf("entity reference not recovered: %q", d.Render(d.DocumentElement()))
	}
	if got := d.Data(kids[0]); got != "Café " {
		t.Errorf("leading text = %q", got)
	}
}

func TestParse_UnknownEncoding(t *testing.T) {
	_, err := ParseString(`<?xml version="1.0" encoding="x-klingon"?><doc/>`)
	var se *SyntaxError
	if !errors.As(err, &se) || se.Line != 1 {
		t.Errorf("error = %v, want SyntaxError on line 1", err)
	}
}

// utf16LE encodes an ASCII string as UTF-16 little endian with a byte order
// mark.
func utf16LE(s string) string {
	b := []byte{0xFF, 0xFE}
	for i := 0; i < len(s); i++ {
		b = append(b, s[i], 0)
	}
	return string(b)
}

func TestDocument_ParseFragment(t *testing.T) {
	d, err := ParseString("<doc>\n<p class=\"x\">old</p></doc>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := d.FirstChildElement(d.DocumentElement(), "p")

	frag, err := d.ParseFragment(d.StartTag(p), d.EndTag(p), "new <em>text</em> &app;", d.Line(p))
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if d.Parent(frag) != NoNode {
		t.Errorf("fragment is attached to %d", d.Parent(frag))
	}
	if got, want := d.Render(frag), `<p class="x">new <em>text</em> &app;</p>`; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	d.SetChildren(p, d.Children(frag))
	if got, want := string(d.Serialize()), "<doc>\n<p class=\"x\">new <em>text</em> &app;</p></doc>\n"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}

	_, err = d.ParseFragment("p", "p", "broken <em>", 5)
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
}

func TestUnescapeText(t *testing.T) {
	got, err := UnescapeText("a &amp; b &lt;c&gt; &#65;")
	if err != nil {
		t.Fatalf("UnescapeText: %v", err)
	}
	if got != "a & b <c> A" {
		t.Errorf("UnescapeText() = %q", got)
	}

	got, err = UnescapeText("&custom; stays")
	if err != nil {
		t.Fatalf("UnescapeText: %v", err)
	}
	if EscapeText(got) != "&custom; stays" {
		t.Errorf("custom entity lost: %q", EscapeText(got))
	}

	if _, err := UnescapeText("a & b"); err == nil {
		t.Error("bare ampersand accepted")
	}
}

func TestEscape(t *testing.T) {
	if got := EscapeText(`a < b & "c"`); got != `a &lt; b &amp; "c"` {
		t.Errorf("EscapeText() = %q", got)
	}
	if got := EscapeAttr(`a < b & "c"`); got != `a &lt; b &amp; &quot;c&quot;` {
		t.Errorf("EscapeAttr() = %q", got)
	}
}

func TestDocument_Mutation(t *testing.T) {
	d, err := ParseString(`<doc><p>a</p><p>b</p></doc>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := d.DocumentElement()
	first, second := d.Children(root)[0], d.Children(root)[1]

	if d.NextSibling(first) != second || d.PrevSibling(second) != first {
		t.Error("sibling links broken")
	}
	if d.PrevSibling(first) != NoNode || d.NextSibling(second) != NoNode {
		t.Error("edge siblings should be NoNode")
	}

	d.SetAttr(root, "lang", "de")
	d.SetAttr(root, "lang", "fr")
	if v, _ := d.Attr(root, "lang"); v != "fr" || len(d.Attrs(root)) != 1 {
		t.Errorf("SetAttr: attrs = %v", d.Attrs(root))
	}

	info := d.NewElement("info")
	d.AppendChild(info, d.NewText("x & y"))
	d.AppendChild(root, info)
	if got, want := string(d.Serialize()), "<doc lang=\"fr\"><p>a</p><p>b</p><info>x &amp; y</info></doc>\n"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestDocument_WalkSkip(t *testing.T) {
	d, err := ParseString(`<doc><skip><p>hidden</p></skip><p>seen</p></doc>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var texts []string
	d.Walk(d.Root(), func(id NodeID) bool {
		if d.Kind(id) == KindText {
			texts = append(texts, d.Data(id))
		}
		return d.Name(id) != "skip"
	})
	if diff := cmp.Diff([]string{"seen"}, texts); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_SpacePreserve(t *testing.T) {
	d, err := ParseString(`<doc xml:space="preserve"><a><b xml:space="default">x</b></a><c>y</c></doc>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := d.DocumentElement()
	a := d.FirstChildElement(root, "a")
	b := d.FirstChildElement(a, "b")

	if p, decl := d.SpacePreserve(a); !p || !decl {
		t.Errorf("SpacePreserve(a) = %v, %v", p, decl)
	}
	if p, decl := d.SpacePreserve(b); p || !decl {
		t.Errorf("SpacePreserve(b) = %v, %v", p, decl)
	}

	plain, _ := ParseString(`<doc><a/></doc>`)
	if _, decl := plain.SpacePreserve(plain.DocumentElement()); decl {
		t.Error("undeclared xml:space reported as declared")
	}
}

func TestLocalName(t *testing.T) {
	if got := LocalName("db:para"); got != "para" {
		t.Errorf("LocalName(db:para) = %q", got)
	}
	if got := LocalName("para"); got != "para" {
		t.Errorf("LocalName(para) = %q", got)
	}
	if KindEntityRef.String() != "entity_ref" || Kind(99).String() != "unknown" {
		t.Error("Kind.String mismatch")
	}
}

func TestDocument_IsBlank(t *testing.T) {
	d, err := ParseString("<doc><b>A</b> \n\t<b>B</b>&#160;<b>C</b></doc>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	kids := d.Children(d.DocumentElement())
	if !d.IsBlank(kids[1]) {
		t.Errorf("whitespace text %q not blank", d.Data(kids[1]))
	}
	if d.IsBlank(kids[3]) {
		t.Error("no-break space counted as blank")
	}
	if d.IsBlank(kids[0]) {
		t.Error("element counted as blank")
	}
}
