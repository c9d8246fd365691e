package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Params are named scalar model parameters.
type Params map[string]float64

// Entry describes one catalog model and its coursework defaults.
type Entry struct {
	Name     string
	Summary  string
	Defaults Params
	Initial  dynamo.State
	Config   dynamo.Config
	// Chaotic marks fields where reference comparison loses meaning past a
	// short horizon.
	Chaotic bool
	Labels  []string
	build   func(p Params) (dynamo.System, error)
}

// Build constructs the model with p layered over the defaults.
func (e Entry) Build(p Params) (dynamo.System, error) {
	merged := make(Params, len(e.Defaults)+len(p))
	for k, v := range e.Defaults {
		merged[k] = v
	}
	for k, v := range p {
		if _, ok := e.Defaults[k]; !ok {
			return nil, fmt.Errorf("%s: %w", e.Name, unknownParam(k))
		}
		merged[k] = v
	}
	return e.build(merged)
}

var catalog = map[string]Entry{
	"utilization": {
		Name:     "utilization",
		Summary:  "CPU utilization relaxation du/dt = λ(1-u) - μu",
		Defaults: Params{"lambda": 2.0, "mu": 1.0},
		Initial:  dynamo.State{0.2},
		Config:   dynamo.Config{T0: 0, H: 0.001, Steps: 10000, Method: dynamo.RK4},
		Labels:   []string{"u (utilization)"},
		build: func(p Params) (dynamo.System, error) {
			return NewUtilization(p["lambda"], p["mu"])
		},
	},
	"oscillator": {
		Name:     "oscillator",
		Summary:  "harmonic oscillator y'' = -ω²y",
		Defaults: Params{"omega": 4.0},
		Initial:  dynamo.State{1.0, 0.5},
		Config:   dynamo.Config{T0: 0, H: 0.001, Steps: 10000, Method: dynamo.RK4},
		Labels:   []string{"y (displacement)", "v (velocity)"},
		build: func(p Params) (dynamo.System, error) {
			return NewOscillator(p["omega"])
		},
	},
	"expkernel": {
		Name:     "expkernel",
		Summary:  "dy/dx = y / (e^x - 1), singular at x = 0",
		Defaults: Params{},
		Initial:  dynamo.State{1.0},
		Config:   dynamo.Config{T0: 1, H: 0.1, Steps: 20, Method: dynamo.RK4},
		Labels:   []string{"y"},
		build: func(Params) (dynamo.System, error) {
			return NewExpKernel(), nil
		},
	},
	"damped": {
		Name:     "damped",
		Summary:  "critically damped drive y'' + 2y' + y = 2t, from rest",
		Defaults: Params{},
		Initial:  dynamo.State{0, 0},
		Config:   dynamo.Config{T0: 0, H: 0.008, Steps: 1000, Method: dynamo.RK4},
		Labels:   []string{"y", "v"},
		build: func(Params) (dynamo.System, error) {
			return NewDrivenDamped(), nil
		},
	},
	"forced": {
		Name:     "forced",
		Summary:  "undamped drive y'' + y = t², from rest",
		Defaults: Params{},
		Initial:  dynamo.State{0, 0},
		Config:   dynamo.Config{T0: 0, H: 0.008, Steps: 1000, Method: dynamo.RK4},
		Labels:   []string{"y", "v"},
		build: func(Params) (dynamo.System, error) {
			return NewDrivenOscillator(), nil
		},
	},
	"lorenz": {
		Name:     "lorenz",
		Summary:  "Lorenz attractor, r is the bifurcation parameter",
		Defaults: Params{"s": DefaultLorenzS, "r": DefaultLorenzR, "b": DefaultLorenzB},
		Initial:  dynamo.State{0.0, 1.0, 1.05},
		Config:   dynamo.Config{T0: 0, H: 0.01, Steps: 10000, Method: dynamo.Euler},
		Chaotic:  true,
		Labels:   []string{"x", "y", "z"},
		build: func(p Params) (dynamo.System, error) {
			return NewLorenz(p["s"], p["r"], p["b"])
		},
	},
}

func Get(name string) (Entry, error) {
	e, ok := catalog[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownModel, name)
	}
	return e, nil
}

// Build looks up name and constructs it with p over the defaults.
func Build(name string, p Params) (dynamo.System, error) {
	e, err := Get(name)
	if err != nil {
		return nil, err
	}
	return e.Build(p)
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unknownParam(name string) error {
	return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
}
