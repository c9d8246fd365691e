// Package reference produces high-accuracy trajectories used as the
// "truth" when judging fixed-step runs. Nothing in the fixed-step engine
// depends on it.
package reference

import (
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Solver samples the solution of sys from x0 at each query time. The first
// query time is the start time of x0.
type Solver interface {
	Solve(sys dynamo.System, x0 dynamo.State, times []float64) (*dynamo.Trajectory, error)
}

// Analytic samples a closed-form solution.
type Analytic struct {
	Dim int
	Fn  func(t float64) dynamo.State
}

func (a Analytic) Solve(_ dynamo.System, _ dynamo.State, times []float64) (*dynamo.Trajectory, error) {
	if a.Fn == nil {
		return nil, fmt.Errorf("%w: nil closed form", dynamo.ErrInvalidParameter)
	}
	if err := checkTimes(times); err != nil {
		return nil, err
	}
	traj := dynamo.NewTrajectory(len(times))
	for _, t := range times {
		x := a.Fn(t)
		if len(x) != a.Dim {
			return nil, fmt.Errorf("%w: closed form returned %d components, want %d", dynamo.ErrDimensionMismatch, len(x), a.Dim)
		}
		if !x.IsValid() {
			return nil, fmt.Errorf("%w: closed form at t=%g", dynamo.ErrNonFiniteState, t)
		}
		traj.Append(t, x)
	}
	return traj, nil
}

// For returns the closed form of sys when it has one, and a default
// Dormand-Prince solver otherwise.
func For(sys dynamo.System, x0 dynamo.State, t0 float64) Solver {
	if s, ok := sys.(dynamo.Solvable); ok {
		return Analytic{Dim: sys.StateDim(), Fn: s.Exact(x0, t0)}
	}
	return NewDormandPrince()
}

// Grid returns n evenly spaced times from t0 to t1 inclusive.
func Grid(t0, t1 float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{t0}
	}
	h := (t1 - t0) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = t0 + float64(i)*h
	}
	out[n-1] = t1
	return out
}

func checkTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: no query times", dynamo.ErrInvalidParameter)
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: query time %d is not finite", dynamo.ErrInvalidParameter, i)
		}
		if i > 0 && !(t > times[i-1]) {
			return fmt.Errorf("%w: query times not strictly increasing at %d", dynamo.ErrInvalidParameter, i)
		}
	}
	return nil
}
