package sim

import (
	"fmt"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/logger"
)

// Integrator drives a Stepper from an initial state over a fixed grid.
type Integrator struct {
	stepper   dynamo.Stepper
	observers []dynamo.Observer
}

func New(stepper dynamo.Stepper) *Integrator {
	return &Integrator{
		stepper:   stepper,
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Integrator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run produces cfg.Steps+1 samples at t_i = T0 + i*H.
//
// If a step yields NaN or Inf, stepping halts and the samples computed so far
// are returned with Truncated set, together with a *dynamo.SimulationError
// wrapping dynamo.ErrNonFiniteState.
func (s *Integrator) Run(sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	if err := s.validate(sys, x0, cfg); err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(cfg.Steps + 1)

	x := x0.Clone()
	traj.Append(cfg.T0, x)
	s.notify(0, cfg.T0, x)

	for i := 0; i < cfg.Steps; i++ {
		t := cfg.T0 + float64(i)*cfg.H
		newX := s.stepper.Step(sys, x, t, cfg.H)
		next := cfg.T0 + float64(i+1)*cfg.H

		if len(newX) != len(x) {
			return traj, &dynamo.SimulationError{Step: i, Time: next, State: newX, Wrapped: dynamo.ErrDimensionMismatch}
		}
		if !newX.IsValid() {
			traj.Truncated = true
			logger.Debug().
				Int("step", i).
				Float64("t", t).
				Int("samples", traj.Len()).
				Msg("run truncated on non-finite state")
			return traj, &dynamo.SimulationError{Step: i, Time: next, State: newX, Wrapped: dynamo.ErrNonFiniteState}
		}

		x = newX
		traj.Append(next, x)
		s.notify(i+1, next, x)
	}

	return traj, nil
}

func (s *Integrator) validate(sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) error {
	if sys == nil {
		return fmt.Errorf("%w: nil system", dynamo.ErrInvalidParameter)
	}
	if s.stepper == nil {
		return fmt.Errorf("%w: nil stepper", dynamo.ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(x0) == 0 {
		return fmt.Errorf("%w: empty initial state", dynamo.ErrDimensionMismatch)
	}
	if dim := sys.StateDim(); dim > 0 && dim != len(x0) {
		return fmt.Errorf("%w: system has dimension %d, initial state %d", dynamo.ErrDimensionMismatch, dim, len(x0))
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidParameter, x0)
	}
	if v, ok := sys.(dynamo.StartValidator); ok {
		return v.ValidateStart(x0, cfg.T0)
	}
	return nil
}

func (s *Integrator) notify(step int, t float64, x dynamo.State) {
	for _, obs := range s.observers {
		obs.OnStep(step, t, x)
	}
}
