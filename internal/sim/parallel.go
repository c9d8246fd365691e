package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/odelab/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Job is one independent run of an ensemble.
type Job struct {
	Name   string
	System dynamo.System
	X0     dynamo.State
	Config dynamo.Config
}

// Outcome pairs a job with its trajectory and run error.
type Outcome struct {
	Job        Job
	Trajectory *dynamo.Trajectory
	Err        error
}

// Ensemble runs independent jobs concurrently. Each job gets its own
// Integrator and owns its trajectory.
type Ensemble struct {
	stepper dynamo.Stepper
	workers int
}

func NewEnsemble(stepper dynamo.Stepper, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{stepper: stepper, workers: workers}
}

// Run returns one outcome per job in job order. Per-job failures, including
// truncation, are reported in the outcome; only cancellation fails the call.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traj, err := New(e.stepper).Run(job.System, job.X0, job.Config)
			outcomes[i] = Outcome{Job: job, Trajectory: traj, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
