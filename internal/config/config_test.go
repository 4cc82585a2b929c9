package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func baseFixture() Map {
	return Map{
		"a": Map{
			"b": []any{1, 2},
			"c": "keep",
		},
		"top": 42,
	}
}

func TestDeepCopy_Independent(t *testing.T) {
	base := baseFixture()
	cp := base.DeepCopy()

	cp["top"] = 0
	cp["a"].(Map)["c"] = "changed"
	cp["a"].(Map)["b"].([]any)[1] = 99

	want := baseFixture()
	if diff := cmp.Diff(want, base); diff != "" {
		t.Errorf("base mutated through copy (-want +got):\n%s", diff)
	}
}

func TestResolve_ScalarReplace(t *testing.T) {
	base := Map{"a": Map{"c": "old"}}
	got, err := Resolve(base, "a.c", "new")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Map{"a": Map{"c": "new"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved config mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_SequenceHeadReplace(t *testing.T) {
	base := Map{"a": Map{"b": []any{1, 2, 3}}}
	got, err := Resolve(base, "a.b", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Map{"a": Map{"b": []any{10, 2, 3}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sibling elements not preserved (-want +got):\n%s", diff)
	}
}

func TestResolve_BaseUnchanged(t *testing.T) {
	base := baseFixture()
	if _, err := Resolve(base, "a.b", 10); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff(baseFixture(), base); diff != "" {
		t.Errorf("base mutated by Resolve (-want +got):\n%s", diff)
	}
}

func TestResolve_PathErrors(t *testing.T) {
	base := baseFixture()
	cases := []string{
		"missing",
		"a.missing",
		"a.b.too.deep",
		"top.below",
		"",
	}
	for _, entry := range cases {
		if _, err := Resolve(base, entry, 1); !errors.Is(err, ErrEntryPath) {
			t.Errorf("Resolve(%q): got %v, want ErrEntryPath", entry, err)
		}
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	base := baseFixture()
	got, err := Resolve(base, "a.c", "injected")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v, err := Lookup(got, "a.c")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != "injected" {
		t.Errorf("Lookup after Resolve = %v, want %q", v, "injected")
	}
}

func TestParse_RequiresMarkerAndDefaults(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no marker", "defaults:\n  a: 1\n"},
		{"no defaults", "ctwrap: 1.0\n"},
		{"defaults not mapping", "ctwrap: 1.0\ndefaults: [1, 2]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, ErrObsoleteFormat) {
				t.Errorf("got %v, want ErrObsoleteFormat", err)
			}
		})
	}
}

func TestParse_FullDocument(t *testing.T) {
	doc := `
ctwrap: 1.0
defaults:
  a:
    b: [1, 2]
variation:
  entry: a.b
  values: [10, 20]
output:
  name: run
  format: json
  force_overwrite: true
`
	sweep, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sweep.Variation == nil || sweep.Variation.Entry != "a.b" {
		t.Fatalf("variation not parsed: %+v", sweep.Variation)
	}
	if len(sweep.Variation.Values) != 2 {
		t.Errorf("values = %v, want 2 entries", sweep.Variation.Values)
	}
	if sweep.Output["name"] != "run" {
		t.Errorf("output name = %v, want run", sweep.Output["name"])
	}
	if _, err := Lookup(sweep.Defaults, "a.b"); err != nil {
		t.Errorf("defaults did not decode as nested mapping: %v", err)
	}
}

func TestParse_VariationValidation(t *testing.T) {
	noValues := "ctwrap: 1.0\ndefaults:\n  a: 1\nvariation:\n  entry: a\n"
	if _, err := Parse([]byte(noValues)); !errors.Is(err, ErrObsoleteFormat) {
		t.Errorf("missing values: got %v, want ErrObsoleteFormat", err)
	}
	noEntry := "ctwrap: 1.0\ndefaults:\n  a: 1\nvariation:\n  values: [1]\n"
	if _, err := Parse([]byte(noEntry)); !errors.Is(err, ErrObsoleteFormat) {
		t.Errorf("missing entry: got %v, want ErrObsoleteFormat", err)
	}
}
