package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/logger"
	"github.com/san-kum/odelab/internal/metrics"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/sim"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// stabilityBound is the component magnitude past which a sample counts as
// unbounded.
const stabilityBound = 1e6

type runResult struct {
	cfg     *config.Config
	entry   models.Entry
	sys     dynamo.System
	x0      dynamo.State
	traj    *dynamo.Trajectory
	metrics []metrics.Metric
	elapsed time.Duration
	// err is the truncation error of a run that stopped early.
	err error
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := resolveConfig(cmd.Flags(), model)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("compare") {
		cfg.Compare = doCompare
	}
	return runAndReport(cfg)
}

// runAndReport integrates cfg, stores it unless --no-save, and prints the
// summary plus whatever output flags were requested.
func runAndReport(cfg *config.Config) error {
	res, err := execute(cfg)
	if err != nil {
		return err
	}

	runID := ""
	if !noSave {
		st := storage.New(dataDir).WithCompression(cfg.Compress)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(res.metadata(), res.traj)
		if err != nil {
			return err
		}
	}

	fmt.Println(viz.Summary(summaryTitle(cfg.Model, runID), res.rows()))
	if res.err != nil {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("truncated: %v", res.err)))
	}

	if showPlot {
		sink := viz.ChartSink{W: os.Stdout, Width: plotWidth, Height: plotHeight, Caption: cfg.Model + " (" + cfg.Method + ")"}
		if err := sink.Plot(res.traj, res.entry.Labels); err != nil {
			return err
		}
	}
	if showSpectrum {
		printSpectrum(res.traj, res.entry.Labels)
	}
	if cfg.Compare {
		report, err := compareRun(res)
		if err != nil {
			return err
		}
		if report != nil {
			fmt.Println(viz.CompareTable(report, res.entry.Labels))
		}
	}
	return nil
}

// execute integrates cfg with the catalog metrics attached. A run cut short
// by a non-finite state is returned with its error recorded, not failed.
func execute(cfg *config.Config) (*runResult, error) {
	entry, err := models.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	sys, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(dynamo.Kind(cfg.Method))
	if err != nil {
		return nil, err
	}

	in := sim.New(stepper)
	ms := metrics.ForSystem(sys, stabilityBound)
	for _, m := range ms {
		in.AddObserver(m)
	}

	x0 := cfg.InitialState()
	logger.Info().
		Str("model", cfg.Model).
		Str("method", cfg.Method).
		Float64("h", cfg.H).
		Int("steps", cfg.Steps).
		Msg("starting run")

	start := time.Now()
	traj, err := in.Run(sys, x0, cfg.RunConfig())
	elapsed := time.Since(start)

	res := &runResult{cfg: cfg, entry: entry, sys: sys, x0: x0, traj: traj, metrics: ms, elapsed: elapsed}
	if err != nil {
		var simErr *dynamo.SimulationError
		if traj == nil || !errors.As(err, &simErr) || !errors.Is(err, dynamo.ErrNonFiniteState) {
			return nil, err
		}
		logger.Warn().Err(err).Int("samples", traj.Len()).Msg("run truncated")
		res.err = err
	}
	logger.Info().Dur("elapsed", elapsed).Int("samples", traj.Len()).Msg("run complete")
	return res, nil
}

func (r *runResult) metricValues() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		v := m.Value()
		// JSON cannot carry NaN or Inf.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[m.Name()] = v
	}
	return out
}

func (r *runResult) metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Model:   r.cfg.Model,
		Method:  r.cfg.Method,
		T0:      r.cfg.T0,
		H:       r.cfg.H,
		Steps:   r.cfg.Steps,
		Params:  r.cfg.Params,
		Initial: r.x0,
		Labels:  r.entry.Labels,
		Metrics: r.metricValues(),
	}
}

func (r *runResult) rows() []viz.Row {
	tEnd, final := r.traj.Final()
	rows := []viz.Row{
		{Label: "method", Value: r.cfg.Method},
		{Label: "h", Value: strconv.FormatFloat(r.cfg.H, 'g', -1, 64)},
		{Label: "steps", Value: strconv.Itoa(r.cfg.Steps)},
		{Label: "samples", Value: strconv.Itoa(r.traj.Len())},
		{Label: "t end", Value: strconv.FormatFloat(tEnd, 'g', 8, 64)},
	}
	for i, v := range final {
		rows = append(rows, viz.Row{Label: labelOf(r.entry.Labels, i), Value: fmt.Sprintf("%.8g", v)})
	}
	vals := r.metricValues()
	names := make([]string, 0, len(vals))
	for k := range vals {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		rows = append(rows, viz.Row{Label: k, Value: fmt.Sprintf("%.6e", vals[k])})
	}
	rows = append(rows, viz.Row{Label: "elapsed", Value: r.elapsed.String()})
	return rows
}

func summaryTitle(model, runID string) string {
	if runID == "" {
		return model
	}
	return model + "  " + runID
}

func labelOf(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

// resolveConfig layers, in order: catalog defaults or --config or --preset,
// then every run flag the user actually set.
func resolveConfig(flags *pflag.FlagSet, model string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
		if model != "" && model != cfg.Model {
			return nil, fmt.Errorf("%s describes model %q, not %q", configFile, cfg.Model, model)
		}
	case model == "":
		return nil, fmt.Errorf("model name required (one of %s)", strings.Join(models.Names(), ", "))
	case preset != "":
		if _, err := models.Get(model); err != nil {
			return nil, err
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %s)", preset, model, strings.Join(config.ListPresets(model), ", "))
		}
	default:
		cfg, err = config.ForModel(model)
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("h") {
		cfg.H = stepSize
	}
	if flags.Changed("t0") {
		cfg.T0 = startTime
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("init") {
		cfg.Initial = append([]float64(nil), initial...)
	}
	if flags.Changed("param") {
		params, err := parseParams(paramArgs)
		if err != nil {
			return nil, err
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for k, v := range params {
			cfg.Params[k] = v
		}
	}
	if flags.Changed("compress") {
		cfg.Compress = compress
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseParams reads name=value pairs.
func parseParams(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, a := range args {
		name, text, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: parameter %q is not name=value", dynamo.ErrMalformedInput, a)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %s=%q", dynamo.ErrMalformedInput, name, text)
		}
		out[name] = v
	}
	return out, nil
}

func printSpectrum(traj *dynamo.Trajectory, labels []string) {
	for i := 0; i < traj.Dim(); i++ {
		f, err := analysis.DominantFrequency(traj, i)
		if err != nil {
			fmt.Printf("%-20s %v\n", labelOf(labels, i), err)
			continue
		}
		fmt.Printf("%-20s dominant frequency %.6g (period %.6g)\n", labelOf(labels, i), f, 1/f)
	}
}
