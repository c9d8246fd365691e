package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/automation"
	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/optim"
	"github.com/san-kum/odelab/internal/queueing"
	"github.com/san-kum/odelab/internal/reference"
	"github.com/san-kum/odelab/internal/series"
	"github.com/san-kum/odelab/internal/sim"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/san-kum/odelab/internal/tui"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
)

func sweepLorenz(cmd *cobra.Command, args []string) error {
	stepper, err := integrators.New(dynamo.Kind(sweepMethod))
	if err != nil {
		return err
	}

	opts := analysis.DefaultSweepOptions()
	opts.Stepper = stepper
	opts.X0 = dynamo.State(sweepInit).Clone()
	opts.Config.H = sweepH
	opts.Config.Steps = sweepSteps
	opts.Config.Method = dynamo.Kind(sweepMethod)
	opts.Transient = sweepSteps / 5
	opts.Workers = sweepWorkers

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := analysis.SweepLorenz(ctx, sweepR, opts)
	if err != nil {
		return err
	}

	fmt.Println(viz.SweepTable(results))
	fmt.Println(analysis.BifurcationToASCII(results, 60, 20))
	fmt.Printf("completed %d runs in %v\n", len(results), time.Since(start))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := automation.RunScenario(ctx, sc, st, sweepWorkers)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(sc.Name))
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tMETHOD\tH\tSAMPLES\tRUN\tSTATUS")
	for _, r := range results {
		samples := 0
		if r.Trajectory != nil {
			samples = r.Trajectory.Len()
		}
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		cfg := r.Step.Config
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%s\t%s\n", r.Step.Name, cfg.Model, cfg.Method, cfg.H, samples, r.RunID, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("completed %d steps in %v\n", len(results), time.Since(start))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
		Workers:      sweepWorkers,
		Bound:        stabilityBound,
	})
	if err != nil {
		return err
	}

	bounded, unbounded := automation.MonteCarloStats(results)
	spread := automation.Spread(results)
	rows := []viz.Row{
		{Label: "trials", Value: fmt.Sprintf("%d", len(results))},
		{Label: "bounded", Value: fmt.Sprintf("%d", bounded)},
		{Label: "unbounded", Value: fmt.Sprintf("%d", unbounded)},
		{Label: "perturbation", Value: fmt.Sprintf("%g", mcPerturb)},
		{Label: "final spread", Value: fmt.Sprintf("%.6g", spread)},
	}
	if mcPerturb > 0 && spread > 0 {
		rows = append(rows, viz.Row{Label: "amplification", Value: fmt.Sprintf("%.3g", spread/mcPerturb)})
	}
	fmt.Println(viz.Summary(fmt.Sprintf("Monte Carlo  %s  %s  t=[%g, %g]", cfg.Model, cfg.Method, cfg.T0, cfg.End()), rows))
	return nil
}

func promptModel(cmd *cobra.Command, args []string) error {
	entry, err := models.Get(args[0])
	if err != nil {
		return err
	}
	values, err := tui.Run("odelab · "+entry.Name+"  "+entry.Summary, tui.ModelFields(entry))
	if errors.Is(err, tui.ErrCanceled) {
		fmt.Println("canceled")
		return nil
	}
	if err != nil {
		return err
	}

	x0, params, rc := tui.Assemble(entry, values)
	cfg, err := config.ForModel(entry.Name)
	if err != nil {
		return err
	}
	cfg.Initial = x0
	cfg.Params = params
	cfg.T0, cfg.H, cfg.Steps = rc.T0, rc.H, rc.Steps
	if cmd.Flags().Changed("method") {
		cfg.Method = method
	}
	cfg.Compress = compress
	if err := cfg.Validate(); err != nil {
		return err
	}

	showPlot = promptPlot
	plotWidth, plotHeight = 70, 15
	return runAndReport(cfg)
}

func listPresets(cmd *cobra.Command, args []string) error {
	if _, err := models.Get(args[0]); err != nil {
		return err
	}
	names := config.ListPresets(args[0])
	if len(names) == 0 {
		fmt.Printf("no presets for %s\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMETHOD\tH\tSTEPS\tINITIAL\tPARAMS")
	for _, name := range names {
		p := config.GetPreset(args[0], name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%v\t%s\n", name, p.Method, p.H, p.Steps, p.Initial, formatParams(p.Params))
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDIM\tCLOSED FORM\tCHAOTIC\tSUMMARY")
	for _, name := range models.Names() {
		e, err := models.Get(name)
		if err != nil {
			return err
		}
		sys, err := e.Build(nil)
		if err != nil {
			return err
		}
		_, solvable := sys.(dynamo.Solvable)
		fmt.Fprintf(w, "%s\t%d\t%t\t%t\t%s\n", e.Name, sys.StateDim(), solvable, e.Chaotic, e.Summary)
	}
	return w.Flush()
}

func formatParams(p map[string]float64) string {
	if len(p) == 0 {
		return "-"
	}
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

func seriesTable(cmd *cobra.Command, args []string) error {
	a, err := series.Coefficients(seriesA0, seriesA1, seriesOrder)
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render("series coefficients"))
	for k, v := range a {
		fmt.Printf("  a%-2d = %.10g\n", k, v)
	}
	fmt.Println()

	xs, ys, err := series.Table(func(x float64) float64 { return series.Eval(a, x) }, seriesLo, seriesHi, seriesN-1)
	if err != nil {
		return err
	}
	_, ta, _ := series.Table(series.TaylorA, seriesLo, seriesHi, seriesN-1)
	_, tb, _ := series.Table(series.TaylorB, seriesLo, seriesHi, seriesN-1)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X\tSERIES\tTAYLOR A\tTAYLOR B")
	for i := range xs {
		fmt.Fprintf(w, "%.4f\t%.8g\t%.8g\t%.8g\n", xs[i], ys[i], ta[i], tb[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(ys,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("series solution, a0=%g a1=%g, on [%g, %g]", seriesA0, seriesA1, seriesLo, seriesHi)),
	))
	return nil
}

func queueTable(cmd *cobra.Command, args []string) error {
	ks := queueing.Linspace(queueKMin, queueKMax, queueN)
	rows, err := queueing.Scale(queueLambda, queueMu, ks)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K\tLAMBDA\tMU\tRHO\tTHROUGHPUT\tMEAN N\tMEAN T")
	meanT := make([]float64, len(rows))
	for i, m := range rows {
		fmt.Fprintf(w, "%.3f\t%.4g\t%.4g\t%.4f\t%.4g\t%.4f\t%.6f\n", ks[i], m.Lambda, m.Mu, m.Rho, m.Throughput, m.MeanN, m.MeanT)
		meanT[i] = m.MeanT
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(meanT) > 1 {
		fmt.Println(asciigraph.Plot(meanT,
			asciigraph.Height(8),
			asciigraph.Caption("mean time in system as both rates scale by k"),
		))
	}
	return nil
}

// benchModel times every stepping method over successively halved steps
// spanning the same interval, and for non-chaotic models reports the error
// and the observed order of convergence.
func benchModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args[0])
	if err != nil {
		return err
	}
	entry, err := models.Get(cfg.Model)
	if err != nil {
		return err
	}
	sys, err := cfg.Build()
	if err != nil {
		return err
	}
	x0 := cfg.InitialState()

	fmt.Printf("benchmarking %s over [%g, %g]\n\n", cfg.Model, cfg.T0, cfg.End())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tH\tSTEPS\tTIME\tSTEPS/SEC\tMAX |ERR|\tORDER")

	for _, k := range integrators.Kinds() {
		stepper, err := integrators.New(k)
		if err != nil {
			return err
		}
		prev := math.NaN()
		for i := 0; i < benchLevels; i++ {
			rc := cfg.RunConfig()
			rc.Method = k
			rc.H = cfg.H / float64(int(1)<<i)
			rc.Steps = cfg.Steps << i

			start := time.Now()
			traj, err := sim.New(stepper).Run(sys, x0, rc)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Fprintf(w, "%s\t%g\t%d\t%v\t-\t%v\t-\n", k, rc.H, rc.Steps, elapsed, err)
				prev = math.NaN()
				continue
			}

			errCol, orderCol := "n/a", "-"
			if !entry.Chaotic {
				e, err := benchError(sys, x0, traj)
				if err != nil {
					return err
				}
				errCol = fmt.Sprintf("%.3e", e)
				if prev > 0 && e > 0 {
					orderCol = fmt.Sprintf("%.2f (want %d)", math.Log2(prev/e), k.Order())
				}
				prev = e
			}
			fmt.Fprintf(w, "%s\t%g\t%d\t%v\t%.0f\t%s\t%s\n",
				k, rc.H, rc.Steps, elapsed, float64(rc.Steps)/elapsed.Seconds(), errCol, orderCol)
		}
	}
	return w.Flush()
}

const benchLevels = 4

func tuneModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args[0])
	if err != nil {
		return err
	}
	entry, err := models.Get(cfg.Model)
	if err != nil {
		return err
	}
	if entry.Chaotic {
		return fmt.Errorf("%w: %s is chaotic; an error target over [%g, %g] is not meaningful", ErrBeyondHorizon, cfg.Model, cfg.T0, cfg.End())
	}
	sys, err := cfg.Build()
	if err != nil {
		return err
	}

	hs := tuneHs
	if len(hs) == 0 {
		for k := 4; k >= -3; k-- {
			hs = append(hs, math.Ldexp(cfg.H, k))
		}
	}
	search := optim.NewStepSearch(integrators.Kinds(), hs)
	search.Workers = sweepWorkers

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, all, err := search.Search(ctx, sys, cfg.InitialState(), cfg.T0, cfg.End(), tuneTarget)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tH\tSTEPS\tEVALS\tMAX |ERR|\t")
	for _, c := range all {
		status := ""
		switch {
		case c.Err != nil:
			status = c.Err.Error()
		case c.Feasible(tuneTarget):
			status = "ok"
		}
		fmt.Fprintf(w, "%s\t%g\t%d\t%d\t%.3e\t%s\n", c.Method, c.H, c.Steps, c.Evals, c.MaxError, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("no candidate reaches max |error| <= %g", tuneTarget)))
		return nil
	}
	fmt.Println(viz.Summary("Cheapest run within target", []viz.Row{
		{Label: "method", Value: string(best.Method)},
		{Label: "h", Value: fmt.Sprintf("%g", best.H)},
		{Label: "steps", Value: fmt.Sprintf("%d", best.Steps)},
		{Label: "evaluations", Value: fmt.Sprintf("%d", best.Evals)},
		{Label: "max |error|", Value: fmt.Sprintf("%.3e", best.MaxError)},
	}))
	return nil
}

func benchError(sys dynamo.System, x0 dynamo.State, traj *dynamo.Trajectory) (float64, error) {
	ref, err := reference.For(sys, x0, traj.Times[0]).Solve(sys, x0, traj.Times)
	if err != nil {
		return 0, err
	}
	r, err := compare.Compare(traj, ref)
	if err != nil {
		return 0, err
	}
	return r.MaxAbsError, nil
}
