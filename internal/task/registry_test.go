package task

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ctwrap/internal/config"
)

func defaultsFixture() config.Map {
	return config.Map{"a": config.Map{"b": []any{1, 2}}}
}

func TestNewRegistry_DerivesTasks(t *testing.T) {
	r, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.b", Values: []any{10, 20}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := map[string]any{"a.b_10": 10, "a.b_20": 20}
	if diff := cmp.Diff(want, r.Tasks()); diff != "" {
		t.Errorf("task set mismatch (-want +got):\n%s", diff)
	}

	wantIDs := []string{"a.b_10", "a.b_20"}
	if diff := cmp.Diff(wantIDs, r.Enumerate()); diff != "" {
		t.Errorf("enumeration mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry_CountMatchesValues(t *testing.T) {
	values := []any{1, 2, 3, 4, 5}
	r, err := NewRegistry(config.Map{"x": 0}, Variation{Entry: "x", Values: values})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := len(r.Tasks()); got != len(values) {
		t.Errorf("len(Tasks()) = %d, want %d", got, len(values))
	}
}

func TestNewRegistry_StableUnderRederivation(t *testing.T) {
	v := Variation{Entry: "a.b", Values: []any{10, 20}}
	r1, err := NewRegistry(defaultsFixture(), v)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r2, err := NewRegistry(defaultsFixture(), v)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if diff := cmp.Diff(r1.Enumerate(), r2.Enumerate()); diff != "" {
		t.Errorf("task IDs not stable across re-derivation (-r1 +r2):\n%s", diff)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	if _, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.missing", Values: []any{1}}); !errors.Is(err, config.ErrEntryPath) {
		t.Errorf("bad entry: got %v, want ErrEntryPath", err)
	}
	if _, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.b"}); err == nil {
		t.Error("empty values: expected error")
	}
	if _, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.b", Values: []any{1, 1}}); !errors.Is(err, ErrDuplicateTask) {
		t.Errorf("duplicate values: got %v, want ErrDuplicateTask", err)
	}
}

func TestConfiguration_SubstitutesSequenceHead(t *testing.T) {
	r, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.b", Values: []any{10, 20}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got, err := r.Configuration("a.b_10")
	if err != nil {
		t.Fatalf("Configuration: %v", err)
	}
	want := config.Map{"a": config.Map{"b": []any{10, 2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestConfiguration_UnknownTask(t *testing.T) {
	r, err := NewRegistry(defaultsFixture(), Variation{Entry: "a.b", Values: []any{10}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := r.Configuration("a.b_99"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("got %v, want ErrUnknownTask", err)
	}
}
