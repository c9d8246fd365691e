package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/compare"
)

// Row is one label/value line of a summary panel.
type Row struct {
	Label string
	Value string
}

func Summary(title string, rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, Title.Render(title))
	for _, r := range rows {
		lines = append(lines, MetricLabel.Render(r.Label)+MetricValue.Render(r.Value))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// CompareTable lists aggregate and per-component errors of a report.
func CompareTable(r *compare.Report, labels []string) string {
	rows := []Row{
		{"samples", fmt.Sprintf("%d", len(r.Times))},
		{"max |error|", fmt.Sprintf("%.6e", r.MaxAbsError)},
		{"  at t", fmt.Sprintf("%g", r.MaxAbsTime)},
		{"mean |error|", fmt.Sprintf("%.6e", r.MeanAbsError)},
	}
	for j := range r.MaxAbsPerDim {
		rows = append(rows, Row{
			Label: label(labels, j),
			Value: fmt.Sprintf("max %.3e  mean %.3e", r.MaxAbsPerDim[j], r.MeanAbsPerDim[j]),
		})
	}
	return Summary("Comparison against reference", rows)
}

// SweepTable summarizes a Lorenz r sweep, one row per r.
func SweepTable(results []analysis.SweepResult) string {
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%8s  %10s  %10s  %6s  %-24s", "r", "max|x|", "λ", "peaks", "final state"))
	lines := []string{Title.Render("Lorenz sweep"), header}

	for _, res := range results {
		if res.Err != nil && len(res.Final) == 0 {
			lines = append(lines, Failure.Render(fmt.Sprintf("%8g  %v", res.R, res.Err)))
			continue
		}
		lambda := "n/a"
		if !math.IsNaN(res.Lyapunov) {
			lambda = fmt.Sprintf("%.4f", res.Lyapunov)
		}
		line := fmt.Sprintf("%8g  %10.4f  %10s  %6d  %-24s",
			res.R, res.MaxAbsX, lambda, len(res.Peaks), formatState(res.Final))
		switch {
		case res.Truncated || res.Err != nil:
			line = Failure.Render(line)
		case res.Lyapunov > 0:
			line = Warning.Render(line)
		}
		lines = append(lines, line)
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

func formatState(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
