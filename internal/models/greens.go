package models

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// DrivenDamped is y'' + 2y' + y = 2t as the state (y, v). The characteristic
// root -1 is repeated, so the homogeneous part is (c1 + c2·τ)e^{-τ}.
type DrivenDamped struct{}

func NewDrivenDamped() *DrivenDamped { return &DrivenDamped{} }

func (d *DrivenDamped) StateDim() int { return 2 }

func (d *DrivenDamped) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], 2*t - 2*x[1] - x[0]}
}

// Exact is (c1 + c2·τ)e^{-τ} + 2t - 4 with τ = t - t0. From rest at t0 = 0
// it reduces to (4 + 2t)e^{-t} + 2t - 4.
func (d *DrivenDamped) Exact(x0 dynamo.State, t0 float64) func(t float64) dynamo.State {
	c1 := x0[0] - (2*t0 - 4)
	c2 := x0[1] - 2 + c1
	return func(t float64) dynamo.State {
		tau := t - t0
		e := math.Exp(-tau)
		return dynamo.State{
			(c1+c2*tau)*e + 2*t - 4,
			(c2-c1-c2*tau)*e + 2,
		}
	}
}

// DrivenOscillator is y'' + y = t² as the state (y, v).
type DrivenOscillator struct{}

func NewDrivenOscillator() *DrivenOscillator { return &DrivenOscillator{} }

func (d *DrivenOscillator) StateDim() int { return 2 }

func (d *DrivenOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], t*t - x[0]}
}

// Exact is a·cos τ + b·sin τ + t² - 2. From rest at t0 = 0 it reduces to
// 2cos t + t² - 2.
func (d *DrivenOscillator) Exact(x0 dynamo.State, t0 float64) func(t float64) dynamo.State {
	a := x0[0] - (t0*t0 - 2)
	b := x0[1] - 2*t0
	return func(t float64) dynamo.State {
		sin, cos := math.Sincos(t - t0)
		return dynamo.State{
			a*cos + b*sin + t*t - 2,
			-a*sin + b*cos + 2*t,
		}
	}
}
