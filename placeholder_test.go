package xmlpo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlaceholder(t *testing.T) {
	if got := Placeholder(3); got != "<placeholder-3/>" {
		t.Errorf("Placeholder(3) = %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("<placeholder-2/> then <placeholder-1/> and <placeholder-10/>")
	if diff := cmp.Diff([]int{2, 1, 10}, got); diff != "" {
		t.Errorf("Placeholders mismatch (-want +got):\n%s", diff)
	}
	if got := Placeholders("no markers"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestCheckPlaceholders(t *testing.T) {
	src := "Click <placeholder-1/> then <placeholder-2/>"

	if err := CheckPlaceholders(src, "<placeholder-2/> dann <placeholder-1/>"); err != nil {
		t.Errorf("reordering should be allowed: %v", err)
	}
	if err := CheckPlaceholders(src, "Klicken <placeholder-1/>"); err != nil {
		t.Errorf("dropping should be allowed: %v", err)
	}

	err := CheckPlaceholders(src, "<placeholder-3/>")
	var perr *PlaceholderReferenceError
	if !errors.As(err, &perr) || perr.Index != 3 {
		t.Errorf("expected PlaceholderReferenceError for 3, got %v", err)
	}
}

func TestExpandPlaceholders(t *testing.T) {
	units := []rendered{
		{start: "b", inner: "A", end: "b", translated: "Ä"},
		{start: `img src="x.png"`, end: "img", empty: true},
	}

	got, err := expandPlaceholders("<placeholder-2/> before <placeholder-1/>", units)
	if err != nil {
		t.Fatalf("expandPlaceholders: %v", err)
	}
	if want := `<img src="x.png"/> before <b>Ä</b>`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = expandPlaceholders("x <placeholder-4/>", units)
	var perr *PlaceholderReferenceError
	if !errors.As(err, &perr) || perr.Index != 4 {
		t.Errorf("expected PlaceholderReferenceError for 4, got %v", err)
	}
	if got != "x <placeholder-4/>" {
		t.Errorf("undefined token should stay in place, got %q", got)
	}
}

func TestRendered_Original(t *testing.T) {
	r := rendered{start: "b", inner: "A", end: "b", translated: "B"}
	if r.original() != "<b>A</b>" || r.result() != "<b>B</b>" {
		t.Errorf("unexpected rendering: %q %q", r.original(), r.result())
	}
}

func TestOnlyPlaceholders(t *testing.T) {
	tests := map[string]bool{
		"<placeholder-1/>":                  true,
		"<placeholder-1/> <placeholder-2/>": true,
		"Hi <placeholder-1/>":               false,
		"":                                  false,
	}
	for in, want := range tests {
		if got := onlyPlaceholders(in); got != want {
			t.Errorf("onlyPlaceholders(%q) = %v, want %v", in, got, want)
		}
	}
}
