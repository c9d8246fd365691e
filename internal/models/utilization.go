package models

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Utilization models the fraction of time a CPU is busy under job arrival
// rate Lambda and decay rate Mu.
type Utilization struct {
	Lambda float64
	Mu     float64
}

func NewUtilization(lambda, mu float64) (*Utilization, error) {
	if !positive(lambda) {
		return nil, dynamo.InvalidParameter("lambda", lambda, "must be positive and finite")
	}
	if !positive(mu) {
		return nil, dynamo.InvalidParameter("mu", mu, "must be positive and finite")
	}
	return &Utilization{Lambda: lambda, Mu: mu}, nil
}

func (u *Utilization) StateDim() int { return 1 }

func (u *Utilization) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{u.Lambda*(1-x[0]) - u.Mu*x[0]}
}

// SteadyState is the fixed point λ/(λ+μ).
func (u *Utilization) SteadyState() float64 {
	return u.Lambda / (u.Lambda + u.Mu)
}

func (u *Utilization) Exact(x0 dynamo.State, t0 float64) func(t float64) dynamo.State {
	s := u.SteadyState()
	rate := u.Lambda + u.Mu
	gap := x0[0] - s
	return func(t float64) dynamo.State {
		return dynamo.State{s + gap*math.Exp(-rate*(t-t0))}
	}
}

func (u *Utilization) GetParams() map[string]float64 {
	return map[string]float64{"lambda": u.Lambda, "mu": u.Mu}
}

func (u *Utilization) SetParam(name string, v float64) error {
	if !positive(v) {
		return dynamo.InvalidParameter(name, v, "must be positive and finite")
	}
	switch name {
	case "lambda":
		u.Lambda = v
	case "mu":
		u.Mu = v
	default:
		return unknownParam(name)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
