package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/sim"
)

// MonteCarloConfig perturbs the initial state of Base uniformly by up to
// Perturbation in each component.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	// Seed of zero draws a time-based seed.
	Seed    uint64
	Workers int
	// Bound is the component magnitude past which a final state counts as
	// unbounded.
	Bound float64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Bounded    bool
	Truncated  bool
}

// RunMonteCarlo integrates every perturbed start in parallel. Results keep
// trial order.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("%w: no base config", dynamo.ErrInvalidParameter)
	}
	if cfg.NumTrials < 1 {
		return nil, dynamo.InvalidParameter("trials", float64(cfg.NumTrials), "must be at least 1")
	}
	if cfg.Perturbation < 0 || math.IsNaN(cfg.Perturbation) || math.IsInf(cfg.Perturbation, 0) {
		return nil, dynamo.InvalidParameter("perturbation", cfg.Perturbation, "must be finite and non-negative")
	}
	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}

	sys, err := cfg.Base.Build()
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(dynamo.Kind(cfg.Base.Method))
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	base := cfg.Base.InitialState()
	jobs := make([]sim.Job, cfg.NumTrials)
	for i := range jobs {
		x0 := make(dynamo.State, len(base))
		for j, v := range base {
			x0[j] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}
		jobs[i] = sim.Job{Name: fmt.Sprintf("trial %d", i), System: sys, X0: x0, Config: cfg.Base.RunConfig()}
	}

	outcomes, err := sim.NewEnsemble(stepper, cfg.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for i, out := range outcomes {
		r := MonteCarloResult{TrialID: i, InitState: out.Job.X0}
		if out.Trajectory != nil {
			_, r.FinalState = out.Trajectory.Final()
			r.Truncated = out.Trajectory.Truncated
		}
		r.Bounded = out.Err == nil && !r.Truncated
		for _, v := range r.FinalState {
			if math.Abs(v) > bound {
				r.Bounded = false
				break
			}
		}
		results[i] = r
	}
	return results, nil
}

// MonteCarloStats counts bounded and unbounded trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Bounded {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// Spread is the RMS distance of the bounded final states from their mean.
// A spread far above the initial perturbation marks sensitive dependence on
// initial conditions.
func Spread(results []MonteCarloResult) float64 {
	var finals []dynamo.State
	for _, r := range results {
		if r.Bounded && len(r.FinalState) > 0 {
			finals = append(finals, r.FinalState)
		}
	}
	if len(finals) == 0 {
		return math.NaN()
	}

	mean := make(dynamo.State, len(finals[0]))
	for _, f := range finals {
		mean = mean.AddScaled(1/float64(len(finals)), f)
	}
	sum := 0.0
	for _, f := range finals {
		d := f.Sub(mean).Norm()
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(finals)))
}
