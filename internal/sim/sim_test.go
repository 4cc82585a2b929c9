package sim

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistry_BundledModules(t *testing.T) {
	names := Names()
	want := map[string]bool{"minimal": false, "oscillator": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("bundled module %q not registered (got %v)", n, names)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup("no-such-module"); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("got %v, want ErrUnknownModule", err)
	}
}

func TestMinimal_EchoesSleep(t *testing.T) {
	m := &Minimal{}
	cfg := m.Defaults()
	cfg["sleep"] = 0.01

	start := time.Now()
	res, err := m.Run(context.Background(), "main", cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("expected at least 10ms of sleep, got %v", elapsed)
	}
	if got := res.Attrs["sleep"]; got != 0.01 {
		t.Errorf("sleep attr = %v, want 0.01", got)
	}
}

func TestMinimal_Cancellation(t *testing.T) {
	m := &Minimal{}
	cfg := m.Defaults()
	cfg["sleep"] = 10.0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Run(ctx, "main", cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestOscillator_Defaults(t *testing.T) {
	o := &Oscillator{}
	res, err := o.Run(context.Background(), "defaults", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Columns) != 3 {
		t.Fatalf("columns = %v, want t, x, v", res.Columns)
	}
	n := len(res.Data["t"])
	if n == 0 || len(res.Data["x"]) != n || len(res.Data["v"]) != n {
		t.Errorf("ragged series: t=%d x=%d v=%d", n, len(res.Data["x"]), len(res.Data["v"]))
	}
	if res.Data["x"][0] != 1.0 {
		t.Errorf("x[0] = %v, want initial position 1.0", res.Data["x"][0])
	}
}

func TestOscillator_DampingDecays(t *testing.T) {
	o := &Oscillator{}
	cfg := o.Defaults()
	res, err := o.Run(context.Background(), "decay", cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	xs := res.Data["x"]
	last := xs[len(xs)-1]
	if last >= 1.0 || last <= -1.0 {
		t.Errorf("damped amplitude should shrink, final x = %v", last)
	}
}

func TestOscillator_SweptInitialKeepsVelocity(t *testing.T) {
	o := &Oscillator{}
	cfg := o.Defaults()
	// Mimic the sweep substitution: head of the sequence replaced.
	cfg["oscillator"].(Map)["initial"].([]any)[0] = 2.5

	res, err := o.Run(context.Background(), "swept", cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Attrs["x0"] != 2.5 {
		t.Errorf("x0 = %v, want 2.5", res.Attrs["x0"])
	}
	if res.Attrs["v0"] != 0.0 {
		t.Errorf("v0 = %v, want 0.0 (sibling element preserved)", res.Attrs["v0"])
	}
}

func TestFloat_Coercions(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1, 1, true},
		{int64(2), 2, true},
		{2.5, 2.5, true},
		{"nope", 0, false},
	}
	for _, tc := range cases {
		got, err := Float(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("Float(%v): err = %v, ok = %v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("Float(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
