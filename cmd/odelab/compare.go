package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/logger"
	"github.com/san-kum/odelab/internal/reference"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
)

// lyapunovD0 is the initial separation of the shadow trajectory used to
// estimate the largest Lyapunov exponent.
const lyapunovD0 = 1e-8

// ErrBeyondHorizon is returned when a chaotic run outlasts its
// predictability horizon and --force was not given.
var ErrBeyondHorizon = errors.New("comparison past predictability horizon")

// compareModel runs the model once per requested method (the configured one
// when none is named) and reports each against the reference solution.
func compareModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args[0])
	if err != nil {
		return err
	}

	methods := args[1:]
	if len(methods) == 0 {
		methods = []string{cfg.Method}
	}
	for _, m := range methods {
		if _, err := integrators.New(dynamo.Kind(m)); err != nil {
			return err
		}
	}

	for _, m := range methods {
		run := cfg.Clone()
		run.Method = m
		res, err := execute(run)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		if res.err != nil {
			fmt.Println(viz.Warning.Render(fmt.Sprintf("%s truncated: %v", m, res.err)))
		}

		report, err := compareRun(res)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		if report == nil {
			continue
		}
		fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s  h=%g", run.Model, m, run.H)))
		fmt.Println(viz.CompareTable(report, res.entry.Labels))
		if showPlot {
			fmt.Println(viz.ErrorChart(report, plotWidth, plotHeight))
		}
	}
	return nil
}

// compareRun builds the reference for res and compares. Chaotic models get
// their limitation printed first; past the horizon the comparison is
// refused unless forced.
func compareRun(res *runResult) (*compare.Report, error) {
	if res.entry.Chaotic {
		horizon, err := chaoticHorizon(res)
		if err != nil {
			return nil, err
		}
		span := res.cfg.End() - res.cfg.T0
		if span > horizon && !force {
			return nil, fmt.Errorf("%w: %s runs to t=%g but errors saturate near t=%.3g after start; shorten the run or pass --force",
				ErrBeyondHorizon, res.cfg.Model, res.cfg.End(), horizon)
		}
	}

	solver := reference.For(res.sys, res.x0, res.cfg.T0)
	ref, err := solver.Solve(res.sys, res.x0, res.traj.Times)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	report, err := compare.Compare(res.traj, ref)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("model", res.cfg.Model).
		Str("method", res.cfg.Method).
		Float64("max_abs_error", report.MaxAbsError).
		Float64("mean_abs_error", report.MeanAbsError).
		Msg("comparison complete")
	return report, nil
}

// chaoticHorizon estimates how long pointwise error stays meaningful and
// prints the limitation.
func chaoticHorizon(res *runResult) (float64, error) {
	lambda, err := analysis.LyapunovExponent(res.sys, integrators.NewRK4(), res.x0, res.cfg.T0, res.cfg.H, res.cfg.Steps, lyapunovD0)
	if err != nil {
		return 0, fmt.Errorf("lyapunov estimate: %w", err)
	}
	horizon, err := analysis.PredictabilityHorizon(lambda, tolerance, delta0)
	if err != nil {
		return 0, err
	}

	msg := fmt.Sprintf("%s is chaotic (λ ≈ %.4f): nearby trajectories separate like e^{λt}, so errors of %g grow to %g within Δt ≈ %.3g. "+
		"Past that, pointwise error measures divergence of the field, not accuracy of %s.",
		res.cfg.Model, lambda, delta0, tolerance, horizon, res.cfg.Method)
	if math.IsInf(horizon, 1) {
		msg = fmt.Sprintf("%s is marked chaotic but λ ≈ %.4f is not positive for this run; errors stay meaningful.", res.cfg.Model, lambda)
	}
	fmt.Println(viz.Warning.Render(msg))
	return horizon, nil
}
