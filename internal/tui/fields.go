package tui

import (
	"fmt"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/models"
)

// ModelFields asks for the initial state, the model parameters and the
// grid of a catalog entry, defaulting each to the catalog value.
func ModelFields(e models.Entry) []Field {
	fields := make([]Field, 0, len(e.Initial)+len(e.Defaults)+3)

	for i, v := range e.Initial {
		label := fmt.Sprintf("x%d", i)
		if i < len(e.Labels) {
			label = e.Labels[i]
		}
		fields = append(fields, Field{Name: fmt.Sprintf("x%d", i), Label: "initial " + label, Default: v})
	}

	names := make([]string, 0, len(e.Defaults))
	for k := range e.Defaults {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fields = append(fields, Field{Name: "param." + k, Label: k, Default: e.Defaults[k]})
	}

	fields = append(fields,
		Field{Name: "t0", Label: "start time", Default: e.Config.T0},
		Field{Name: "h", Label: "step size h", Default: e.Config.H, Check: func(v float64) error {
			if v <= 0 {
				return dynamo.InvalidParameter("h", v, "must be positive")
			}
			return nil
		}},
		Field{Name: "steps", Label: "number of steps", Default: float64(e.Config.Steps), Integer: true, Check: func(v float64) error {
			if v < 0 {
				return dynamo.InvalidParameter("steps", v, "must not be negative")
			}
			return nil
		}},
	)
	return fields
}

// Assemble turns accepted values back into a run for e. Missing values fall
// back to the catalog defaults.
func Assemble(e models.Entry, values map[string]float64) (dynamo.State, models.Params, dynamo.Config) {
	get := func(name string, def float64) float64 {
		if v, ok := values[name]; ok {
			return v
		}
		return def
	}

	x0 := make(dynamo.State, len(e.Initial))
	for i, v := range e.Initial {
		x0[i] = get(fmt.Sprintf("x%d", i), v)
	}
	params := make(models.Params, len(e.Defaults))
	for k, v := range e.Defaults {
		params[k] = get("param."+k, v)
	}
	cfg := e.Config
	cfg.T0 = get("t0", cfg.T0)
	cfg.H = get("h", cfg.H)
	cfg.Steps = int(get("steps", float64(cfg.Steps)))
	return x0, params, cfg
}
