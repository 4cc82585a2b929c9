package sim

import (
	"context"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// oscillatorDefaults holds the embedded defaults of the oscillator module.
// initial is [position, velocity]; sweeping oscillator.initial therefore
// replaces the starting position while keeping the starting velocity.
const oscillatorDefaults = `
# default parameters for the oscillator module
oscillator:
  frequency: 1.0
  damping: 0.1
  initial: [1.0, 0.0]
simulation:
  duration: 10.0
  step: 0.01
`

// Oscillator integrates a damped harmonic oscillator with semi-implicit
// Euler and returns time, position and velocity series. It is the bundled
// stand-in for a real solver-backed simulation module.
type Oscillator struct{}

func init() {
	Register("oscillator", func() Module { return &Oscillator{} })
}

func (*Oscillator) Defaults() Map {
	var m Map
	if err := yaml.Unmarshal([]byte(oscillatorDefaults), &m); err != nil {
		panic("sim: oscillator defaults do not parse: " + err.Error())
	}
	return m
}

func (*Oscillator) Run(ctx context.Context, name string, cfg Map) (*Result, error) {
	if cfg == nil {
		cfg = new(Oscillator).Defaults()
	}

	freq, err := FloatAt(cfg, "oscillator.frequency")
	if err != nil {
		return nil, err
	}
	damping, err := FloatAt(cfg, "oscillator.damping")
	if err != nil {
		return nil, err
	}
	x0, err := FloatAt(cfg, "oscillator.initial")
	if err != nil {
		return nil, err
	}
	duration, err := FloatAt(cfg, "simulation.duration")
	if err != nil {
		return nil, err
	}
	step, err := FloatAt(cfg, "simulation.step")
	if err != nil {
		return nil, err
	}
	if step <= 0 || duration <= 0 {
		return nil, fmt.Errorf("oscillator %q: step and duration must be positive", name)
	}

	// initial is [position, velocity]; velocity sits past the swept head.
	v0 := 0.0
	if raw, err := lookupSeq(cfg, "oscillator.initial"); err == nil && len(raw) > 1 {
		if f, err := Float(raw[1]); err == nil {
			v0 = f
		}
	}

	omega := 2 * math.Pi * freq
	n := int(duration/step) + 1

	ts := make([]float64, 0, n)
	xs := make([]float64, 0, n)
	vs := make([]float64, 0, n)

	x, v := x0, v0
	for i := 0; i < n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		t := float64(i) * step
		ts = append(ts, t)
		xs = append(xs, x)
		vs = append(vs, v)

		a := -2*damping*omega*v - omega*omega*x
		v += a * step
		x += v * step
	}

	return &Result{
		Attrs: map[string]any{
			"frequency": freq,
			"damping":   damping,
			"x0":        x0,
			"v0":        v0,
		},
		Columns: []string{"t", "x", "v"},
		Data:    map[string][]float64{"t": ts, "x": xs, "v": vs},
	}, nil
}
