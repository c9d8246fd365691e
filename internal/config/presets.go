package config

import "sort"

// Presets reproduce the coursework scenarios and a few contrasting ones.
var Presets = map[string]map[string]*Config{
	"utilization": {
		"coursework": {
			Model: "utilization", Method: "rk4", H: 0.001, Steps: 10000,
			Initial: []float64{0.2}, Params: map[string]float64{"lambda": 2, "mu": 1},
		},
		"saturated": {
			Model: "utilization", Method: "rk4", H: 0.001, Steps: 5000,
			Initial: []float64{0}, Params: map[string]float64{"lambda": 9, "mu": 1},
		},
		"idle": {
			Model: "utilization", Method: "euler", H: 0.01, Steps: 500,
			Initial: []float64{0.9}, Params: map[string]float64{"lambda": 0.5, "mu": 4},
		},
	},
	"oscillator": {
		"coursework": {
			Model: "oscillator", Method: "rk4", H: 0.001, Steps: 10000,
			Initial: []float64{1, 0.5}, Params: map[string]float64{"omega": 4},
		},
		"euler": {
			Model: "oscillator", Method: "euler", H: 0.001, Steps: 10000,
			Initial: []float64{1, 0.5}, Params: map[string]float64{"omega": 4},
		},
		"slow": {
			Model: "oscillator", Method: "rk4", H: 0.01, Steps: 2000,
			Initial: []float64{1, 0}, Params: map[string]float64{"omega": 1},
		},
	},
	"expkernel": {
		"coursework": {
			Model: "expkernel", Method: "rk4", T0: 1, H: 0.1, Steps: 20,
			Initial: []float64{1},
		},
		"negative": {
			Model: "expkernel", Method: "rk4", T0: -3, H: 0.1, Steps: 20,
			Initial: []float64{1},
		},
		"crossing": {
			Model: "expkernel", Method: "euler", T0: -1, H: 0.25, Steps: 8,
			Initial: []float64{1},
		},
	},
	"damped": {
		"coursework": {
			Model: "damped", Method: "rk4", H: 0.008, Steps: 1000,
			Initial: []float64{0, 0}, Params: map[string]float64{},
		},
		"coarse": {
			Model: "damped", Method: "euler", H: 0.1, Steps: 80,
			Initial: []float64{0, 0}, Params: map[string]float64{},
		},
	},
	"forced": {
		"coursework": {
			Model: "forced", Method: "rk4", H: 0.008, Steps: 1000,
			Initial: []float64{0, 0}, Params: map[string]float64{},
		},
		"coarse": {
			Model: "forced", Method: "euler", H: 0.1, Steps: 80,
			Initial: []float64{0, 0}, Params: map[string]float64{},
		},
	},
	"lorenz": {
		"coursework": {
			Model: "lorenz", Method: "euler", H: 0.01, Steps: 10000,
			Initial: []float64{0, 1, 1.05}, Params: map[string]float64{"s": 10, "r": 28, "b": 2.667},
		},
		"stable": {
			Model: "lorenz", Method: "rk4", H: 0.01, Steps: 5000,
			Initial: []float64{0, 1, 1.05}, Params: map[string]float64{"s": 10, "r": 10, "b": 2.667},
		},
		"periodic": {
			Model: "lorenz", Method: "rk4", H: 0.005, Steps: 20000,
			Initial: []float64{0, 1, 1.05}, Params: map[string]float64{"s": 10, "r": 160, "b": 2.667},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
