package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCatalog_AddDeduplicates(t *testing.T) {
	c := New()
	c.Add(Message{ID: "Hello", Locations: []Location{{File: "a.xml", Line: 1, Tag: "p"}}})
	c.Add(Message{ID: "World", Locations: []Location{{File: "a.xml", Line: 2, Tag: "p"}}})
	c.Add(Message{ID: "Hello", Locations: []Location{{File: "b.xml", Line: 7, Tag: "title"}}, Comment: "greeting", NoWrap: true})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	m, ok := c.Get("", "Hello")
	if !ok {
		t.Fatal("Hello not found")
	}
	want := []Location{{File: "a.xml", Line: 1, Tag: "p"}, {File: "b.xml", Line: 7, Tag: "title"}}
	if diff := cmp.Diff(want, m.Locations); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}
	if m.Comment != "greeting" || !m.NoWrap {
		t.Errorf("merged entry = %+v", m)
	}
}

func TestCatalog_AddSkipsBlank(t *testing.T) {
	c := New()
	c.Add(Message{ID: ""})
	c.Add(Message{ID: " \n\t"})
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCatalog_ContextSeparatesEntries(t *testing.T) {
	c := New()
	c.Add(Message{ID: "Close"})
	c.Add(Message{Context: "button:title", ID: "Close"})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("button:title", "Close"); !ok {
		t.Error("context entry not found")
	}
	if Key("ctx", "id") != "ctx\x04id" {
		t.Errorf("Key() = %q", Key("ctx", "id"))
	}
	if Key("", "id") != "id" {
		t.Errorf("Key() without context = %q", Key("", "id"))
	}
}

func TestCatalog_Positional(t *testing.T) {
	c := NewPositional()
	if !c.Positional() {
		t.Fatal("Positional() = false")
	}
	for _, id := range []string{"One", "Two", "One"} {
		c.Add(Message{ID: id})
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	c.TranslationsFollow()
	for _, tr := range []string{"Eins", "Two", "Eins!", "extra"} {
		c.Add(Message{ID: tr})
	}

	var got []string
	for _, m := range c.Messages() {
		got = append(got, m.Translation)
	}
	// identical text means untranslated
	want := []string{"Eins", "", "Eins!"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("translations mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 3 {
		t.Errorf("surplus translation added an entry: Len() = %d", c.Len())
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := New()
	c.Add(Message{ID: "Done", Translation: "Fertig"})
	c.Add(Message{ID: "Maybe", Translation: "Vielleicht", Fuzzy: true})
	c.Add(Message{ID: "Empty"})

	if got, ok := c.Lookup("", "Done"); !ok || got != "Fertig" {
		t.Errorf("Lookup(Done) = %q, %v", got, ok)
	}
	if _, ok := c.Lookup("", "Maybe"); ok {
		t.Error("fuzzy entry returned without UseFuzzy")
	}
	if _, ok := c.Lookup("", "Empty"); ok {
		t.Error("empty translation returned")
	}
	if _, ok := c.Lookup("", "Missing"); ok {
		t.Error("missing entry returned")
	}

	c.UseFuzzy = true
	if got, ok := c.Lookup("", "Maybe"); !ok || got != "Vielleicht" {
		t.Errorf("Lookup(Maybe) with UseFuzzy = %q, %v", got, ok)
	}
}

func TestCatalog_Merge(t *testing.T) {
	a := New()
	a.Add(Message{ID: "A", Locations: []Location{{File: "a.xml", Line: 1}}})
	b := New()
	b.Add(Message{ID: "B", Locations: []Location{{File: "b.xml", Line: 1}}})
	b.Add(Message{ID: "A", Locations: []Location{{File: "b.xml", Line: 4}}})

	a.Merge(b)

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if got := a.Messages()[1].ID; got != "B" {
		t.Errorf("second message = %q, want B", got)
	}
	m, _ := a.Get("", "A")
	if len(m.Locations) != 2 {
		t.Errorf("A locations = %v", m.Locations)
	}
}

func TestCatalog_Translated(t *testing.T) {
	c := New()
	c.Add(Message{ID: "a", Translation: "x"})
	c.Add(Message{ID: "b"})
	c.Add(Message{ID: "c", Translation: "z", Fuzzy: true})
	if got := c.Translated(); got != 2 {
		t.Errorf("Translated() = %d, want 2", got)
	}
}
