// Package metrics holds run observers that reduce a trajectory to a scalar
// while it is being integrated.
package metrics

import "github.com/san-kum/odelab/internal/dynamo"

// Metric is an observer with a scalar summary.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}

// ForSystem returns the metrics that apply to sys.
func ForSystem(sys dynamo.System, bound float64) []Metric {
	out := make([]Metric, 0, 3)
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		out = append(out, NewEnergyDrift(h))
	}
	if s, ok := sys.(steadyStater); ok {
		out = append(out, NewSteadyStateGap(s.SteadyState()))
	}
	if bound > 0 {
		out = append(out, NewBoundedFraction(bound))
	}
	return out
}
