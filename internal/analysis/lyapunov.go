package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent of sys from x0.
//
// Two trajectories start at t0, d0 apart along the first component. After every
// step the separation is measured, its log growth accumulated, and the
// perturbed copy pulled back to distance d0 along the current direction.
// The estimate is the mean log growth per unit time.
func LyapunovExponent(sys dynamo.System, stepper dynamo.Stepper, x0 dynamo.State, t0, h float64, steps int, d0 float64) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("%w: empty initial state", dynamo.ErrInvalidParameter)
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) {
		return 0, dynamo.InvalidParameter("t0", t0, "must be finite")
	}
	if !(h > 0) || math.IsInf(h, 0) {
		return 0, dynamo.InvalidParameter("h", h, "must be positive and finite")
	}
	if steps <= 0 {
		return 0, dynamo.InvalidParameter("steps", float64(steps), "must be positive")
	}
	if !(d0 > 0) || math.IsInf(d0, 0) {
		return 0, dynamo.InvalidParameter("d0", d0, "must be positive and finite")
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	sumLog := 0.0
	t := t0
	for i := 0; i < steps; i++ {
		x = stepper.Step(sys, x, t, h)
		xp = stepper.Step(sys, xp, t, h)
		t = t0 + float64(i+1)*h
		if !x.IsValid() || !xp.IsValid() {
			return 0, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrNonFiniteState}
		}

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			// collapsed onto the same trajectory; restart the perturbation
			xp = x.Clone()
			xp[0] += d0
			continue
		}
		sumLog += math.Log(sep / d0)
		xp = x.AddScaled(d0/sep, xp.Sub(x))
	}

	return sumLog / (float64(steps) * h), nil
}

// PredictabilityHorizon is the time for an initial error d0 to grow to tol
// under exponential divergence at rate lambda: ln(tol/d0)/lambda.
// A non-positive lambda has no finite horizon and yields +Inf.
func PredictabilityHorizon(lambda, tol, d0 float64) (float64, error) {
	if !(d0 > 0) || math.IsInf(d0, 0) {
		return 0, dynamo.InvalidParameter("d0", d0, "must be positive and finite")
	}
	if !(tol > d0) || math.IsInf(tol, 0) {
		return 0, dynamo.InvalidParameter("tol", tol, "must exceed the initial error")
	}
	if math.IsNaN(lambda) {
		return 0, dynamo.InvalidParameter("lambda", lambda, "must be a number")
	}
	if lambda <= 0 {
		return math.Inf(1), nil
	}
	return math.Log(tol/d0) / lambda, nil
}
