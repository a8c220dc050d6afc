package mode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/document"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func mustParse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// find returns the first element with the given name.
func find(doc *document.Document, name string) document.NodeID {
	found := document.NoNode
	doc.Walk(doc.Root(), func(id document.NodeID) bool {
		if found != document.NoNode {
			return false
		}
		if doc.Kind(id) == document.KindElement && doc.Name(id) == name {
			found = id
			return false
		}
		return true
	})
	return found
}

func TestSelect_Known(t *testing.T) {
	for _, name := range Names() {
		p := Select(name, zerolog.Nop())
		if p.Name() != name {
			t.Errorf("Select(%q).Name() = %q", name, p.Name())
		}
	}
}

func TestSelect_FallsBackToBasic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	p := Select("gnome-help", logger)
	if p.Name() != "basic" {
		t.Fatalf("expected basic fallback, got %q", p.Name())
	}
	if !strings.Contains(buf.String(), "gnome-help") {
		t.Errorf("expected a warning naming the mode, got %q", buf.String())
	}
}

func TestResolve_PrefersSpecs(t *testing.T) {
	specs := []Spec{{Name: "docbook", Final: []string{"blurb"}}}
	p := Resolve("docbook", specs, zerolog.Nop())
	if _, ok := p.(*Table); !ok {
		t.Fatalf("expected table policy, got %T", p)
	}
}

func TestBasic_IsFinal(t *testing.T) {
	doc := mustParse(t, `<doc>
  <p>Hello <b>world</b>!</p>
  <q><i><b>deep</b></i></q>
  <r>text <!-- note --> more</r>
</doc>`)
	p := NewBasic()

	tests := []struct {
		name string
		want bool
	}{
		{"doc", false},
		{"p", true},
		{"b", true},
		{"q", false},
		{"i", false},
		{"r", true},
	}
	for _, tt := range tests {
		if got := p.IsFinal(doc, find(doc, tt.name)); got != tt.want {
			t.Errorf("IsFinal(<%s>) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBasic_IsFinal_StableAcrossCalls(t *testing.T) {
	doc := mustParse(t, `<doc><p>a <b>b</b> <i>c</i></p></doc>`)
	p := NewBasic()
	ids := []document.NodeID{find(doc, "i"), find(doc, "p"), find(doc, "b"), find(doc, "doc")}

	first := make([]bool, len(ids))
	for i, id := range ids {
		first[i] = p.IsFinal(doc, id)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if got := p.IsFinal(doc, ids[i]); got != first[i] {
			t.Errorf("IsFinal changed between calls for node %d", ids[i])
		}
	}
}

func TestMallard_IsFinal_Contextual(t *testing.T) {
	doc := mustParse(t, `<page><section><code>make</code><p>Run <code>make</code>.</p></section></page>`)
	p := NewMallard()

	sec := find(doc, "section")
	block := doc.FirstChildElement(sec, "code")
	para := doc.FirstChildElement(sec, "p")
	inline := doc.FirstChildElement(para, "code")

	if !p.IsFinal(doc, block) {
		t.Error("code directly in a section should be final")
	}
	if p.IsFinal(doc, inline) {
		t.Error("code inside a paragraph should not be final")
	}
	if !p.IsFinal(doc, para) {
		t.Error("p should be final")
	}
}

func TestDocBook_Lists(t *testing.T) {
	p := NewDocBook()
	doc := mustParse(t, `<article><itemizedlist><listitem><para>x</para></listitem></itemizedlist></article>`)
	list := find(doc, "itemizedlist")
	if !p.IsFinal(doc, list) {
		t.Error("itemizedlist should be final")
	}
	if !contains(p.IgnoredTags(), "itemizedlist") {
		t.Error("itemizedlist should be ignored")
	}
	if !contains(p.SpacePreservingTags(), "programlisting") {
		t.Error("programlisting should preserve space")
	}
}

func TestDocBook_PreProcess(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shot.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "guide.xml")
	doc := mustParse(t, `<article>
<imagedata fileref="shot.png"/>
<imagedata fileref="gone.png"/>
</article>`)

	cat := catalog.New()
	if err := NewDocBook().PreProcess(doc, path, cat); err != nil {
		t.Fatalf("PreProcess: %v", err)
	}

	var ids []string
	for _, m := range cat.Messages() {
		ids = append(ids, m.ID)
	}
	want := []string{
		ImageMessage("shot.png", hashFile(path, "shot.png")),
		"@@image: 'gone.png'; md5=THIS FILE DOESN'T EXIST",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("image messages mismatch (-want +got):\n%s", diff)
	}
	if loc := cat.Messages()[0].Locations[0]; loc.Line != 2 || loc.Tag != "imagedata" {
		t.Errorf("unexpected location %+v", loc)
	}
	if len(hashFile(path, "shot.png")) != 32 {
		t.Errorf("expected a hex md5, got %q", hashFile(path, "shot.png"))
	}
}

func TestDocBook_PostProcess(t *testing.T) {
	doc := mustParse(t, `<article><articleinfo><title>T</title><copyright><year>2001</year><holder>Author</holder></copyright><author/></articleinfo><para>x</para></article>`)

	credits := "Jane Roe <jane@example.org>, 2024\nnot a credit line"
	if err := NewDocBook().PostProcess(doc, "de", credits); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	out := string(doc.Serialize())
	want := `<article lang="de"><articleinfo><title>T</title><copyright><year>2001</year><holder>Author</holder></copyright>` +
		`<copyright><year>2024</year><holder>Jane Roe (jane@example.org)</holder></copyright><author/></articleinfo><para>x</para></article>` + "\n"
	if out != want {
		t.Errorf("PostProcess output:\n got %s\nwant %s", out, want)
	}
}

func TestDocBook_PostProcess_UntranslatedCredits(t *testing.T) {
	src := `<book><bookinfo/></book>`
	doc := mustParse(t, src)
	if err := NewDocBook().PostProcess(doc, "", CreditsMessage); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(doc.Serialize())); got != src {
		t.Errorf("expected document untouched, got %s", got)
	}
}

func TestDocBook_PostProcess_Roots(t *testing.T) {
	for _, root := range []string{"preface", "appendix"} {
		doc := mustParse(t, "<"+root+"><"+root+"info/><para>x</para></"+root+">")
		if err := NewDocBook().PostProcess(doc, "it", "Lia <lia@example.org>, 2025"); err != nil {
			t.Fatalf("PostProcess(%s): %v", root, err)
		}
		want := "<" + root + ` lang="it"><` + root + "info><copyright><year>2025</year><holder>Lia (lia@example.org)</holder></copyright></" +
			root + "info><para>x</para></" + root + ">"
		if got := strings.TrimSpace(string(doc.Serialize())); got != want {
			t.Errorf("got  %s\nwant %s", got, want)
		}
	}

	doc := mustParse(t, `<glossary><glossaryinfo/></glossary>`)
	if err := NewDocBook().PostProcess(doc, "it", "Lia <lia@example.org>, 2025"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(doc.Serialize())); got != `<glossary><glossaryinfo/></glossary>` {
		t.Errorf("non-root document changed: %s", got)
	}
}

func TestMallard_PostProcess(t *testing.T) {
	doc := mustParse(t, `<page id="x"><title>T</title></page>`)
	if err := NewMallard().PostProcess(doc, "fr", "Ana <ana@example.org>, 2023"); err != nil {
		t.Fatal(err)
	}
	want := `<page id="x" xml:lang="fr"><info><credit type="translator"><name>Ana</name><email>ana@example.org</email><years>2023</years></credit></info><title>T</title></page>`
	if got := strings.TrimSpace(string(doc.Serialize())); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestXHTML_ResolveEntity(t *testing.T) {
	p := NewXHTML()
	if v, ok := p.ResolveEntity("nbsp"); !ok || v != "\u00a0" {
		t.Errorf("nbsp resolved to %q, %v", v, ok)
	}
	if _, ok := p.ResolveEntity("product"); ok {
		t.Error("unknown entity should not resolve")
	}
}

func TestXHTMLLocalized_PostProcess(t *testing.T) {
	doc := mustParse(t, `<html><head><title>x</title></head><body/></html>`)
	if err := NewXHTMLLocalized().PostProcess(doc, "ar_SA", "Omar <o@example.org>, 2022"); err != nil {
		t.Fatal(err)
	}
	root := doc.DocumentElement()
	for name, want := range map[string]string{"lang": "ar-SA", "xml:lang": "ar-SA", "dir": "rtl"} {
		if got, _ := doc.Attr(root, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	meta := find(doc, "meta")
	if meta == document.NoNode {
		t.Fatal("expected a translator meta element")
	}
	if got, _ := doc.Attr(meta, "content"); got != "Omar (o@example.org)" {
		t.Errorf("meta content = %q", got)
	}
}

func TestParseSpecs(t *testing.T) {
	data := []byte(`
modes:
  - name: recipe
    final: [step, title]
    ignored: [metadata]
    space_preserving: [verbatim]
    attributes: [caption]
    contextual:
      note: [recipe]
    auto: true
    lang_attribute: language
`)
	specs, err := ParseSpecs(data)
	if err != nil {
		t.Fatalf("ParseSpecs: %v", err)
	}
	want := []Spec{{
		Name:            "recipe",
		Final:           []string{"step", "title"},
		Ignored:         []string{"metadata"},
		SpacePreserving: []string{"verbatim"},
		Attributes:      []string{"caption"},
		Contextual:      map[string][]string{"note": {"recipe"}},
		Auto:            true,
		LangAttribute:   "language",
	}}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Errorf("specs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSpecs_MissingName(t *testing.T) {
	if _, err := ParseSpecs([]byte("modes:\n  - final: [p]\n")); err == nil {
		t.Error("expected error for unnamed spec")
	}
}

func TestTable_IsFinal(t *testing.T) {
	p := NewTable(Spec{
		Name:       "recipe",
		Final:      []string{"step"},
		Ignored:    []string{"metadata"},
		Contextual: map[string][]string{"note": {"recipe"}},
		Auto:       true,
	})
	doc := mustParse(t, `<recipe><note>top</note><step>Mix <note>gently</note></step><metadata>m</metadata><tip>Use <em>salt</em></tip></recipe>`)
	recipe := find(doc, "recipe")
	step := doc.FirstChildElement(recipe, "step")

	tests := []struct {
		name string
		id   document.NodeID
		want bool
	}{
		{"step", step, true},
		{"note in recipe", doc.FirstChildElement(recipe, "note"), true},
		{"note in step", doc.FirstChildElement(step, "note"), true}, // structural
		{"ignored metadata", doc.FirstChildElement(recipe, "metadata"), false},
		{"auto tip", doc.FirstChildElement(recipe, "tip"), true},
	}
	for _, tt := range tests {
		if got := p.IsFinal(doc, tt.id); got != tt.want {
			t.Errorf("%s: IsFinal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTable_PostProcess(t *testing.T) {
	doc := mustParse(t, `<recipe/>`)
	p := NewTable(Spec{Name: "recipe", LangAttribute: "language"})
	if err := p.PostProcess(doc, "it", ""); err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Attr(doc.DocumentElement(), "language"); got != "it" {
		t.Errorf("language = %q", got)
	}
}

func TestParseCredits(t *testing.T) {
	got := ParseCredits("Jane Roe <jane@example.org>, 2023, 2024\nBob, 2020\n\n<x>")
	want := []Credit{
		{Name: "Jane Roe", Email: "jane@example.org", Years: "2023, 2024"},
		{Name: "Bob", Years: "2020"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("credits mismatch (-want +got):\n%s", diff)
	}
	if ParseCredits(CreditsMessage) != nil {
		t.Error("untranslated credits should yield nothing")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
