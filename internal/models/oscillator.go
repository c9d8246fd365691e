package models

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Oscillator is y'' = -ω²y written as the state (y, v).
type Oscillator struct {
	Omega float64
}

func NewOscillator(omega float64) (*Oscillator, error) {
	if omega == 0 || !finite(omega) {
		return nil, dynamo.InvalidParameter("omega", omega, "must be non-zero and finite")
	}
	return &Oscillator{Omega: omega}, nil
}

func (o *Oscillator) StateDim() int { return 2 }

func (o *Oscillator) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -o.Omega * o.Omega * x[0]}
}

// Energy is ½(v² + ω²y²), conserved by the exact flow.
func (o *Oscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[1]*x[1] + o.Omega*o.Omega*x[0]*x[0])
}

func (o *Oscillator) Exact(x0 dynamo.State, t0 float64) func(t float64) dynamo.State {
	y0, v0, w := x0[0], x0[1], o.Omega
	return func(t float64) dynamo.State {
		sin, cos := math.Sincos(w * (t - t0))
		return dynamo.State{
			y0*cos + v0/w*sin,
			-y0*w*sin + v0*cos,
		}
	}
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{"omega": o.Omega}
}

func (o *Oscillator) SetParam(name string, v float64) error {
	if name != "omega" {
		return unknownParam(name)
	}
	if v == 0 || !finite(v) {
		return dynamo.InvalidParameter(name, v, "must be non-zero and finite")
	}
	o.Omega = v
	return nil
}
