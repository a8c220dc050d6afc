package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompare_Unchanged(t *testing.T) {
	src := []byte(`<article><para>Press <guibutton>OK</guibutton>.</para></article>`)
	out := []byte(`<article lang="de"><para>Drücken Sie <guibutton>OK</guibutton>.</para></article>`)

	report, err := Compare(src, out)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !report.OK() {
		t.Errorf("expected no differences, got %s", report)
	}
	if report.String() != "structure unchanged" {
		t.Errorf("unexpected summary: %s", report)
	}
}

func TestCompare_Deltas(t *testing.T) {
	src := []byte(`<doc><para><b>A</b> and <i>B</i></para></doc>`)
	out := []byte(`<doc><para><b>A</b> und <b>B</b> <placeholder-3/></para></doc>`)

	report, err := Compare(src, out)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := []TagDelta{
		{Tag: "b", Source: 1, Output: 2},
		{Tag: "i", Source: 1, Output: 0},
	}
	if diff := cmp.Diff(want, report.Deltas); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}
	if report.Placeholders != 1 {
		t.Errorf("expected 1 leftover placeholder, got %d", report.Placeholders)
	}
	if report.OK() {
		t.Error("report should not be OK")
	}
	if got := report.String(); got != "<b>: 1 -> 2, <i>: 1 -> 0, 1 unexpanded placeholders" {
		t.Errorf("unexpected summary: %s", got)
	}
}
