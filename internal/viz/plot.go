package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/dynamo"
)

// Sink consumes a finished trajectory. Labels name the state components and
// may be shorter than the dimension.
type Sink interface {
	Plot(traj *dynamo.Trajectory, labels []string) error
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.DodgerBlue,
	asciigraph.Orange,
	asciigraph.LimeGreen,
	asciigraph.HotPink,
	asciigraph.Gold,
	asciigraph.Turquoise,
}

// ChartSink draws every component of a trajectory on one asciigraph chart.
type ChartSink struct {
	W       io.Writer
	Width   int
	Height  int
	Caption string
	// Components restricts the chart to these state indices when set.
	Components []int
}

func (c ChartSink) Plot(traj *dynamo.Trajectory, labels []string) error {
	if traj == nil || traj.Len() == 0 {
		return fmt.Errorf("%w: nothing to plot", dynamo.ErrInvalidParameter)
	}
	chart, err := Chart(traj, labels, c.Components, c.Width, c.Height, c.Caption)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.W, chart)
	return err
}

// Chart renders the selected components of traj with a colored legend.
func Chart(traj *dynamo.Trajectory, labels []string, components []int, width, height int, caption string) (string, error) {
	if width <= 0 {
		width = 70
	}
	if height <= 0 {
		height = 15
	}
	if len(components) == 0 {
		components = make([]int, traj.Dim())
		for i := range components {
			components[i] = i
		}
	}

	series := make([][]float64, 0, len(components))
	colors := make([]asciigraph.AnsiColor, 0, len(components))
	legend := make([]string, 0, len(components))
	for n, idx := range components {
		if idx < 0 || idx >= traj.Dim() {
			return "", fmt.Errorf("%w: component %d of %d", dynamo.ErrDimensionMismatch, idx, traj.Dim())
		}
		color := seriesColors[n%len(seriesColors)]
		series = append(series, Downsample(traj.Component(idx), width))
		colors = append(colors, color)
		legend = append(legend, color.String()+"■"+asciigraph.Default.String()+" "+label(labels, idx))
	}

	if caption == "" {
		first, last := traj.Times[0], traj.Times[traj.Len()-1]
		caption = fmt.Sprintf("t ∈ [%g, %g], %d samples", first, last, traj.Len())
		if traj.Truncated {
			caption += " (truncated)"
		}
	}

	chart := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
	return chart + "\n" + strings.Join(legend, "   "), nil
}

// ErrorChart plots the largest absolute component error of each sample.
func ErrorChart(r *compare.Report, width, height int) string {
	if r == nil || len(r.AbsErrors) == 0 {
		return ""
	}
	worst := make([]float64, len(r.AbsErrors))
	for i, row := range r.AbsErrors {
		for _, e := range row {
			worst[i] = max(worst[i], e)
		}
	}
	return asciigraph.Plot(Downsample(worst, width),
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(width),
		asciigraph.Precision(6),
		asciigraph.SeriesColors(asciigraph.Red),
		asciigraph.Caption("max |error| per sample"),
	)
}

// Downsample keeps at most n evenly spaced values, always including the
// last one.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	if n == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		out[i] = values[int(float64(i)*step+0.5)]
	}
	return out
}

func label(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("x%d", i)
}
