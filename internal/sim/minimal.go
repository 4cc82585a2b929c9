package sim

import (
	"context"
	"time"

	"gopkg.in/yaml.v3"
)

// minimalDefaults mirrors the embedded defaults of the minimal module.
const minimalDefaults = `
# default parameters for the minimal module
sleep: 0.2
`

// Minimal is a no-op simulation module that sleeps for the configured
// duration and echoes its configuration back. It exists for demos and for
// exercising the sweep machinery end to end.
type Minimal struct{}

func init() {
	Register("minimal", func() Module { return &Minimal{} })
}

func (*Minimal) Defaults() Map {
	var m Map
	if err := yaml.Unmarshal([]byte(minimalDefaults), &m); err != nil {
		panic("sim: minimal defaults do not parse: " + err.Error())
	}
	return m
}

func (*Minimal) Run(ctx context.Context, name string, cfg Map) (*Result, error) {
	if cfg == nil {
		cfg = new(Minimal).Defaults()
	}
	sleep, err := FloatAt(cfg, "sleep")
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(time.Duration(sleep * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Result{Attrs: map[string]any{"sleep": sleep}}, nil
}
