package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/export"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tMETHOD\tH\tSTEPS\tSAMPLES\tFLAGS")

	for _, run := range runs {
		flags := ""
		if run.Truncated {
			flags += "truncated "
		}
		if run.Compressed {
			flags += "zst"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.H,
			run.Steps,
			run.Samples,
			flags,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, traj, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s, h=%g)\n", meta.Model, meta.Method, meta.H)
	fmt.Printf("samples: %d\n\n", traj.Len())

	switch {
	case len(phaseAxes) > 0:
		if len(phaseAxes) != 2 {
			return fmt.Errorf("--phase takes two component indices, got %d", len(phaseAxes))
		}
		p, err := analysis.PhasePortrait(traj, phaseAxes[0], phaseAxes[1])
		if err != nil {
			return err
		}
		fmt.Println(viz.Subtle.Render(fmt.Sprintf("%s vs %s", labelOf(meta.Labels, phaseAxes[1]), labelOf(meta.Labels, phaseAxes[0]))))
		fmt.Println(analysis.ScatterToASCII(p.Points, plotWidth, plotHeight))

	case len(sectionAxes) > 0:
		if len(sectionAxes) != 3 {
			return fmt.Errorf("--section takes crossing, x and y indices, got %d", len(sectionAxes))
		}
		pts, err := analysis.PoincareSection(traj, sectionAxes[0], sectionLevel, sectionAxes[1], sectionAxes[2])
		if err != nil {
			return err
		}
		fmt.Println(viz.Subtle.Render(fmt.Sprintf("%d upward crossings of %s = %g",
			len(pts), labelOf(meta.Labels, sectionAxes[0]), sectionLevel)))
		fmt.Println(analysis.ScatterToASCII(pts, plotWidth, plotHeight))

	default:
		sink := viz.ChartSink{W: os.Stdout, Width: plotWidth, Height: plotHeight, Caption: meta.Model}
		if err := sink.Plot(traj, meta.Labels); err != nil {
			return err
		}
	}

	if showSpectrum {
		printSpectrum(traj, meta.Labels)
	}
	return nil
}

// output opens --out, or stdout when unset. The returned close func is
// always safe to call.
func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, traj); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, traj); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	sink := export.SVGSink{Width: svgWidth, Height: svgHeight}
	if len(phaseAxes) > 0 {
		if len(phaseAxes) != 2 {
			return fmt.Errorf("--phase takes two component indices, got %d", len(phaseAxes))
		}
		sink.Phase = &[2]int{phaseAxes[0], phaseAxes[1]}
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	sink.W = w
	if err := sink.Plot(traj, meta.Labels); err != nil {
		closeFn()
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	}
	return closeFn()
}
