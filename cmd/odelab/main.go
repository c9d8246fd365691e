package main

import (
	"os"

	"github.com/san-kum/odelab/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	debug   bool
	verbose bool

	// run parameters shared by run, compare and prompt
	method     string
	stepSize   float64
	startTime  float64
	steps      int
	initial    []float64
	paramArgs  []string
	configFile string
	preset     string
	compress   bool
	noSave     bool

	// output
	showPlot     bool
	showSpectrum bool
	doCompare    bool
	plotWidth    int
	plotHeight   int
	outPath      string
	phaseAxes    []int
	sectionAxes  []int
	sectionLevel float64

	// compare
	force     bool
	tolerance float64
	delta0    float64

	// sweep
	sweepR       []float64
	sweepMethod  string
	sweepH       float64
	sweepSteps   int
	sweepInit    []float64
	sweepWorkers int

	promptPlot bool
	svgWidth   int
	svgHeight  int

	// tune
	tuneTarget float64
	tuneHs     []float64

	// montecarlo
	mcTrials  int
	mcPerturb float64
	mcSeed    uint64

	// series
	seriesA0    float64
	seriesA1    float64
	seriesOrder int
	seriesLo    float64
	seriesHi    float64
	seriesN     int

	// queue
	queueLambda float64
	queueMu     float64
	queueKMin   float64
	queueKMax   float64
	queueN      int
)

// main registers the odelab commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "odelab",
		Short:         "fixed-step ODE lab: Euler and RK4 against reference solutions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug, verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odelab", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "info logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a catalog model and save the run",
		Args:  cobra.RangeArgs(0, 1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&compress, "compress", false, "store states zstd-compressed")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the trajectory")
	runCmd.Flags().BoolVar(&showSpectrum, "spectrum", false, "report the dominant frequency of each component")
	runCmd.Flags().BoolVar(&doCompare, "compare", false, "compare against the reference solution")
	addCompareFlags(runCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method...]",
		Short: "measure stepping error against the reference solution",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareModel,
	}
	addRunFlags(compareCmd)
	addCompareFlags(compareCmd)
	compareCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the error per sample")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "integrate lorenz over several r values in parallel",
		RunE:  sweepLorenz,
	}
	sweepCmd.Flags().Float64SliceVar(&sweepR, "r", []float64{10, 14, 24, 28, 99.96, 160}, "r values")
	sweepCmd.Flags().StringVar(&sweepMethod, "method", "rk4", "stepping method")
	sweepCmd.Flags().Float64Var(&sweepH, "h", 0.01, "step size")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5000, "number of steps")
	sweepCmd.Flags().Float64SliceVar(&sweepInit, "init", []float64{0, 1, 1.05}, "initial state")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (0 = one per CPU)")

	promptCmd := &cobra.Command{
		Use:   "prompt [model]",
		Short: "enter initial state, parameters and grid interactively, then run",
		Args:  cobra.ExactArgs(1),
		RunE:  promptModel,
	}
	promptCmd.Flags().StringVar(&method, "method", "", "stepping method (default from catalog)")
	promptCmd.Flags().BoolVar(&compress, "compress", false, "store states zstd-compressed")
	promptCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	promptCmd.Flags().BoolVar(&promptPlot, "plot", true, "plot the trajectory")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "time each method and measure its order of convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	addRunFlags(benchCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "find the cheapest method and step size within an error target",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneModel,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&tuneTarget, "target", 1e-6, "largest acceptable max |error|")
	tuneCmd.Flags().Float64SliceVar(&tuneHs, "hs", nil, "step sizes to try (default: h scaled by 16 down to 1/8)")
	tuneCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (0 = one per CPU)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (0 = one per CPU)")
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the runs")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "integrate randomly perturbed starts and measure how far they spread",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 50, "number of perturbed runs")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 1e-6, "largest perturbation per component")
	monteCarloCmd.Flags().Uint64Var(&mcSeed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (0 = one per CPU)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntSliceVar(&phaseAxes, "phase", nil, "phase portrait of two components, e.g. 0,1")
	plotCmd.Flags().IntSliceVar(&sectionAxes, "section", nil, "poincare section: crossing component, x, y")
	plotCmd.Flags().Float64Var(&sectionLevel, "level", 0, "crossing level for --section")
	plotCmd.Flags().BoolVar(&showSpectrum, "spectrum", false, "report the dominant frequency of each component")
	addSizeFlags(plotCmd, 70, 15)

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntSliceVar(&phaseAxes, "phase", nil, "phase portrait of two components, e.g. 0,1")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 500, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list catalog models",
		RunE:  listModels,
	}

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "power series coefficients and Taylor polynomial tables",
		RunE:  seriesTable,
	}
	seriesCmd.Flags().Float64Var(&seriesA0, "a0", 0, "a0 = y(0)")
	seriesCmd.Flags().Float64Var(&seriesA1, "a1", 16, "a1 = y'(0)")
	seriesCmd.Flags().IntVar(&seriesOrder, "order", 8, "highest coefficient index")
	seriesCmd.Flags().Float64Var(&seriesLo, "from", -1, "table start")
	seriesCmd.Flags().Float64Var(&seriesHi, "to", 1, "table end")
	seriesCmd.Flags().IntVar(&seriesN, "n", 9, "table rows")

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "M/M/1 metrics as both rates scale by k",
		RunE:  queueTable,
	}
	queueCmd.Flags().Float64Var(&queueLambda, "lambda", 2, "arrival rate")
	queueCmd.Flags().Float64Var(&queueMu, "mu", 5, "service rate")
	queueCmd.Flags().Float64Var(&queueKMin, "kmin", 0.5, "smallest scale factor")
	queueCmd.Flags().Float64Var(&queueKMax, "kmax", 5, "largest scale factor")
	queueCmd.Flags().IntVar(&queueN, "n", 10, "number of scale factors")

	rootCmd.AddCommand(runCmd, compareCmd, benchCmd, tuneCmd, sweepCmd, scenarioCmd, monteCarloCmd, promptCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, modelsCmd, seriesCmd, queueCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", "", "stepping method: euler or rk4")
	cmd.Flags().Float64Var(&stepSize, "h", 0, "step size")
	cmd.Flags().Float64Var(&startTime, "t0", 0, "start time")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	cmd.Flags().Float64SliceVar(&initial, "init", nil, "initial state, comma separated")
	cmd.Flags().StringArrayVar(&paramArgs, "param", nil, "model parameter name=value (repeatable)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	addSizeFlags(cmd, 70, 15)
}

func addCompareFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&force, "force", false, "compare chaotic models past their predictability horizon")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-2, "error treated as total loss of predictability")
	cmd.Flags().Float64Var(&delta0, "delta0", 1e-10, "initial discrepancy assumed between run and reference")
}

func addSizeFlags(cmd *cobra.Command, width, height int) {
	cmd.Flags().IntVar(&plotWidth, "width", width, "plot width")
	cmd.Flags().IntVar(&plotHeight, "height", height, "plot height")
}
