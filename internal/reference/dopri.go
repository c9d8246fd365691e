package reference

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/logger"
)

var (
	ErrStepTooSmall = errors.New("step size underflow")
	ErrTooManySteps = errors.New("step budget exhausted")
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// fifth-order weights; the last stage is evaluated at the new point (FSAL)
	dpB = [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	// fifth minus fourth order weights
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// DormandPrince is an adaptive embedded 5(4) Runge-Kutta solver. It lands
// exactly on every query time.
type DormandPrince struct {
	RelTol   float64
	AbsTol   float64
	MinStep  float64
	// MaxSteps bounds attempted steps; zero means the default budget.
	MaxSteps int
}

const (
	safety          = 0.9
	minScale        = 0.2
	maxScale        = 5.0
	defaultMaxSteps = 1_000_000
)

func NewDormandPrince() *DormandPrince {
	return &DormandPrince{
		RelTol:   1e-10,
		AbsTol:   1e-12,
		MinStep:  1e-14,
		MaxSteps: defaultMaxSteps,
	}
}

func (d *DormandPrince) Solve(sys dynamo.System, x0 dynamo.State, times []float64) (*dynamo.Trajectory, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", dynamo.ErrInvalidParameter)
	}
	if err := checkTimes(times); err != nil {
		return nil, err
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: x0 has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidParameter, x0)
	}
	if v, ok := sys.(dynamo.StartValidator); ok {
		if err := v.ValidateStart(x0, times[0]); err != nil {
			return nil, err
		}
	}
	if !(d.RelTol > 0) && !(d.AbsTol > 0) {
		return nil, fmt.Errorf("%w: at least one tolerance must be positive", dynamo.ErrInvalidParameter)
	}

	traj := dynamo.NewTrajectory(len(times))
	traj.Append(times[0], x0.Clone())
	if len(times) == 1 {
		return traj, nil
	}

	budget := d.MaxSteps
	if budget <= 0 {
		budget = defaultMaxSteps
	}
	t, x := times[0], x0.Clone()
	h := d.initialStep(times[len(times)-1] - times[0])
	steps := 0
	for _, target := range times[1:] {
		for t < target {
			if steps >= budget {
				return traj, fmt.Errorf("%w: %d steps at t=%g", ErrTooManySteps, steps, t)
			}
			planned, last := h, false
			if t+h >= target {
				h = target - t
				last = true
			}

			next, errNorm := d.attempt(sys, x, t, h)
			steps++
			if errNorm > 1 {
				h *= d.scale(errNorm)
			} else {
				x = next
				if last {
					// resume with the unclipped step
					t, h = target, planned
				} else {
					t += h
					h *= d.scale(errNorm)
				}
				if !x.IsValid() {
					return traj, &dynamo.SimulationError{Step: steps, Time: t, State: x, Wrapped: dynamo.ErrNonFiniteState}
				}
			}
			if h < d.MinStep && t < target {
				return traj, fmt.Errorf("%w: h=%g at t=%g", ErrStepTooSmall, h, t)
			}
		}
		traj.Append(target, x.Clone())
	}

	logger.Debug().Int("steps", steps).Int("samples", traj.Len()).Msg("reference solve complete")
	return traj, nil
}

func (d *DormandPrince) initialStep(span float64) float64 {
	h := span / 100
	if h < d.MinStep {
		h = d.MinStep
	}
	return h
}

// attempt takes one trial step and returns the fifth-order solution with the
// scaled RMS error estimate. An estimate <= 1 means the step is accepted.
func (d *DormandPrince) attempt(sys dynamo.System, x dynamo.State, t, h float64) (dynamo.State, float64) {
	n := len(x)
	var k [7]dynamo.State
	k[0] = sys.Derive(x, t)
	stage := make(dynamo.State, n)
	for s := 1; s < 7; s++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < s; j++ {
				sum += dpA[s][j] * k[j][i]
			}
			stage[i] = x[i] + h*sum
		}
		k[s] = sys.Derive(stage, t+dpC[s]*h)
		stage = make(dynamo.State, n)
	}

	next := make(dynamo.State, n)
	sq := 0.0
	for i := 0; i < n; i++ {
		hi, est := 0.0, 0.0
		for s := 0; s < 7; s++ {
			hi += dpB[s] * k[s][i]
			est += dpE[s] * k[s][i]
		}
		next[i] = x[i] + h*hi
		tol := d.AbsTol + d.RelTol*math.Max(math.Abs(x[i]), math.Abs(next[i]))
		e := h * est / tol
		sq += e * e
	}
	errNorm := math.Sqrt(sq / float64(n))
	if math.IsNaN(errNorm) {
		errNorm = math.Inf(1)
	}
	return next, errNorm
}

func (d *DormandPrince) scale(errNorm float64) float64 {
	if errNorm == 0 {
		return maxScale
	}
	f := safety * math.Pow(errNorm, -0.2)
	return math.Min(maxScale, math.Max(minScale, f))
}
