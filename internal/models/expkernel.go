package models

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// ExpKernel is dy/dx = y / (e^x - 1). The independent variable x plays the
// role of time. The field is singular at x = 0.
type ExpKernel struct{}

func NewExpKernel() *ExpKernel { return &ExpKernel{} }

func (e *ExpKernel) StateDim() int { return 1 }

// Derive evaluates the field. At x = 0 the result is ±Inf or NaN and the
// integrator halts the run.
func (e *ExpKernel) Derive(y dynamo.State, x float64) dynamo.State {
	return dynamo.State{y[0] / math.Expm1(x)}
}

func (e *ExpKernel) ValidateStart(_ dynamo.State, x0 float64) error {
	if x0 == 0 {
		return dynamo.InvalidParameter("x0", x0, "field is singular at x=0")
	}
	return nil
}

// Exact is y(x) = y0 (1 - e^{-x}) / (1 - e^{-x0}).
func (e *ExpKernel) Exact(y0 dynamo.State, x0 float64) func(x float64) dynamo.State {
	c := y0[0] / math.Expm1(-x0)
	return func(x float64) dynamo.State {
		return dynamo.State{c * math.Expm1(-x)}
	}
}
