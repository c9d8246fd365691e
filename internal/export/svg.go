// Package export renders trajectories to standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/dynamo"
)

var strokeColors = []string{"#1e90ff", "#ffa500", "#32cd32", "#ff69b4", "#ffd700", "#40e0d0"}

// SVGSink writes a trajectory as SVG: one line per component against time,
// or a single phase-plane curve when Phase is set.
type SVGSink struct {
	W      io.Writer
	Width  int
	Height int
	Phase  *[2]int
}

func (s SVGSink) Plot(traj *dynamo.Trajectory, labels []string) error {
	if traj == nil || traj.Len() < 2 {
		return fmt.Errorf("%w: need at least two samples", dynamo.ErrInvalidParameter)
	}
	width, height := s.Width, s.Height
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 500
	}

	var doc string
	if s.Phase != nil {
		p, err := analysis.PhasePortrait(traj, s.Phase[0], s.Phase[1])
		if err != nil {
			return err
		}
		doc = TrajectoryToSVG(p.Points, width, height, strokeColors[0])
	} else {
		doc = TimeSeriesToSVG(traj, labels, width, height)
	}
	_, err := io.WriteString(s.W, doc)
	return err
}

type bounds struct{ minX, minY, rangeX, rangeY float64 }

// fit pads the bounding box of points by 10% on each side.
func fit(points []analysis.Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	return bounds{minX, minY, maxX - minX, maxY - minY}
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, points []analysis.Point, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x := (p.X - b.minX) / b.rangeX * float64(width)
		y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectoryToSVG draws points as one polyline.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, points, fit(points), width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// TimeSeriesToSVG draws every component against time on shared axes with a
// legend in the top-left corner.
func TimeSeriesToSVG(traj *dynamo.Trajectory, labels []string, width, height int) string {
	if traj.Len() < 2 {
		return ""
	}

	series := make([][]analysis.Point, traj.Dim())
	all := make([]analysis.Point, 0, traj.Len()*traj.Dim())
	for j := range series {
		series[j] = make([]analysis.Point, traj.Len())
		for i, t := range traj.Times {
			series[j][i] = analysis.Point{X: t, Y: traj.States[i][j]}
		}
		all = append(all, series[j]...)
	}
	b := fit(all)

	var sb strings.Builder
	header(&sb, width, height)
	for j, pts := range series {
		color := strokeColors[j%len(strokeColors)]
		path(&sb, pts, b, width, height, color)
		name := fmt.Sprintf("x%d", j)
		if j < len(labels) && labels[j] != "" {
			name = labels[j]
		}
		fmt.Fprintf(&sb, `<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*j, color, escape(name))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
