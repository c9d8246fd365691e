package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/logger"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/sim"
	"golang.org/x/sync/errgroup"
)

type SweepOptions struct {
	Stepper dynamo.Stepper
	X0      dynamo.State
	Config  dynamo.Config
	// Transient is the number of leading samples ignored when collecting
	// peaks of z.
	Transient int
	// D0 is the initial separation for the Lyapunov estimate.
	D0      float64
	Workers int
}

func DefaultSweepOptions() SweepOptions {
	return SweepOptions{
		Stepper:   integrators.NewRK4(),
		X0:        dynamo.State{0, 1, 1.05},
		Config:    dynamo.Config{H: 0.01, Steps: 5000},
		Transient: 1000,
		D0:        1e-8,
	}
}

// SweepResult summarizes one Lorenz run at a given r.
type SweepResult struct {
	R       float64
	Final   dynamo.State
	MaxAbsX float64
	// Peaks are the distinct local maxima of z after the transient, rounded
	// to 1e-3. A single value is a limit cycle or fixed point; many values
	// indicate chaos.
	Peaks     []float64
	Lyapunov  float64
	Truncated bool
	Err       error
}

// SweepLorenz integrates the Lorenz field for each r with s and b at their
// defaults. Runs and Lyapunov estimates proceed in parallel; results keep
// the order of rs. A failed run is reported in its result, not as an error.
func SweepLorenz(ctx context.Context, rs []float64, opts SweepOptions) ([]SweepResult, error) {
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: no r values", dynamo.ErrInvalidParameter)
	}
	if opts.Stepper == nil {
		return nil, fmt.Errorf("%w: nil stepper", dynamo.ErrInvalidParameter)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	jobs := make([]sim.Job, len(rs))
	for i, r := range rs {
		l, err := models.NewLorenz(models.DefaultLorenzS, r, models.DefaultLorenzB)
		if err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{Name: fmt.Sprintf("r=%g", r), System: l, X0: opts.X0, Config: opts.Config}
	}

	outcomes, err := sim.NewEnsemble(opts.Stepper, opts.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(rs))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, out := range outcomes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = summarize(rs[i], out, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug().Int("runs", len(rs)).Msg("lorenz sweep complete")
	return results, nil
}

func summarize(r float64, out sim.Outcome, opts SweepOptions) SweepResult {
	res := SweepResult{R: r, Err: out.Err}
	traj := out.Trajectory
	if traj == nil {
		return res
	}
	res.Truncated = traj.Truncated
	_, res.Final = traj.Final()

	for _, x := range traj.States {
		res.MaxAbsX = math.Max(res.MaxAbsX, math.Abs(x[0]))
	}
	res.Peaks = peaks(traj.Component(2), opts.Transient)

	if out.Err != nil {
		res.Lyapunov = math.NaN()
		return res
	}
	lambda, err := LyapunovExponent(out.Job.System, opts.Stepper, opts.X0, opts.Config.T0, opts.Config.H, opts.Config.Steps, opts.D0)
	if err != nil {
		res.Lyapunov = math.NaN()
		res.Err = err
		return res
	}
	res.Lyapunov = lambda
	return res
}

// peaks returns distinct local maxima of vals[skip:], quantized to 1e-3.
func peaks(vals []float64, skip int) []float64 {
	if skip < 1 {
		skip = 1
	}
	seen := make(map[int64]bool)
	out := make([]float64, 0)
	for i := skip; i+1 < len(vals); i++ {
		if vals[i] > vals[i-1] && vals[i] >= vals[i+1] {
			key := int64(math.Round(vals[i] * 1000))
			if !seen[key] {
				seen[key] = true
				out = append(out, vals[i])
			}
		}
	}
	return out
}
