// Package optim searches a grid of stepping methods and step sizes for the
// cheapest run that stays within an error target.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/logger"
	"github.com/san-kum/odelab/internal/reference"
	"github.com/san-kum/odelab/internal/sim"
)

// Candidate is one grid point of a search with its measured error.
type Candidate struct {
	Method dynamo.Kind
	H      float64
	Steps  int
	// Evals counts derivative evaluations over the run.
	Evals    int
	MaxError float64
	Err      error
}

// Feasible reports whether c ran to completion within target.
func (c Candidate) Feasible(target float64) bool {
	return c.Err == nil && c.MaxError <= target
}

type StepSearch struct {
	Methods []dynamo.Kind
	Hs      []float64
	Workers int
}

func NewStepSearch(methods []dynamo.Kind, hs []float64) *StepSearch {
	return &StepSearch{Methods: methods, Hs: hs}
}

// Search runs every method at every step size over [t0, t1] and compares
// each run with the reference solution of sys. Step sizes are shrunk so a
// whole number of steps lands on t1. The best candidate is the feasible one
// with the fewest evaluations, ties going to the larger h; it is nil when no
// candidate meets target. All candidates are returned in method then
// descending-h order.
func (s *StepSearch) Search(ctx context.Context, sys dynamo.System, x0 dynamo.State, t0, t1, target float64) (*Candidate, []Candidate, error) {
	if len(s.Methods) == 0 || len(s.Hs) == 0 {
		return nil, nil, fmt.Errorf("%w: empty search grid", dynamo.ErrInvalidParameter)
	}
	if !(t1 > t0) || math.IsInf(t1-t0, 0) {
		return nil, nil, fmt.Errorf("%w: need t0 < t1, got [%g, %g]", dynamo.ErrInvalidParameter, t0, t1)
	}
	if !(target > 0) {
		return nil, nil, dynamo.InvalidParameter("target", target, "must be positive")
	}

	grid, err := s.grid(t0, t1)
	if err != nil {
		return nil, nil, err
	}

	var all []Candidate
	for _, m := range s.Methods {
		stepper, err := integrators.New(m)
		if err != nil {
			return nil, nil, err
		}
		jobs := make([]sim.Job, len(grid))
		for i, steps := range grid {
			jobs[i] = sim.Job{
				Name:   fmt.Sprintf("%s/%d", m, steps),
				System: sys,
				X0:     x0,
				Config: dynamo.Config{T0: t0, H: (t1 - t0) / float64(steps), Steps: steps, Method: m},
			}
		}

		outcomes, err := sim.NewEnsemble(stepper, s.Workers).Run(ctx, jobs)
		if err != nil {
			return nil, nil, err
		}
		for _, out := range outcomes {
			all = append(all, evaluate(sys, x0, out))
		}
	}

	var best *Candidate
	for i := range all {
		c := &all[i]
		if !c.Feasible(target) {
			continue
		}
		if best == nil || c.Evals < best.Evals || (c.Evals == best.Evals && c.H > best.H) {
			best = c
		}
	}

	if best != nil {
		logger.Debug().
			Str("method", string(best.Method)).
			Float64("h", best.H).
			Float64("max_error", best.MaxError).
			Msg("step search found candidate")
	}
	return best, all, nil
}

// grid converts the step sizes to distinct step counts, largest h first.
func (s *StepSearch) grid(t0, t1 float64) ([]int, error) {
	seen := make(map[int]bool, len(s.Hs))
	var counts []int
	for _, h := range s.Hs {
		if !(h > 0) || math.IsInf(h, 0) {
			return nil, dynamo.InvalidParameter("h", h, "must be positive and finite")
		}
		n := int(math.Ceil((t1-t0)/h - 1e-9))
		if n < 1 {
			n = 1
		}
		if !seen[n] {
			seen[n] = true
			counts = append(counts, n)
		}
	}
	sort.Ints(counts)
	return counts, nil
}

func evaluate(sys dynamo.System, x0 dynamo.State, out sim.Outcome) Candidate {
	cfg := out.Job.Config
	c := Candidate{
		Method:   cfg.Method,
		H:        cfg.H,
		Steps:    cfg.Steps,
		Evals:    cfg.Steps * cfg.Method.Stages(),
		MaxError: math.Inf(1),
		Err:      out.Err,
	}
	if c.Err != nil {
		return c
	}
	ref, err := reference.For(sys, x0, cfg.T0).Solve(sys, x0, out.Trajectory.Times)
	if err != nil {
		c.Err = fmt.Errorf("reference: %w", err)
		return c
	}
	r, err := compare.Compare(out.Trajectory, ref)
	if err != nil {
		c.Err = err
		return c
	}
	c.MaxError = r.MaxAbsError
	return c
}
