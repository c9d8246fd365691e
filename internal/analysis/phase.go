package analysis

import (
	"fmt"

	"github.com/san-kum/odelab/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D is the projection of a trajectory onto two state indices.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

func PhasePortrait(traj *dynamo.Trajectory, xIdx, yIdx int) (*PhasePortrait2D, error) {
	dim := traj.Dim()
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("%w: indices (%d, %d) for dimension %d", dynamo.ErrDimensionMismatch, xIdx, yIdx, dim)
	}
	p := &PhasePortrait2D{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(traj.States))}
	for i, x := range traj.States {
		p.Points[i] = Point{x[xIdx], x[yIdx]}
	}
	return p, nil
}

// PoincareSection records (recordX, recordY) wherever component crossIdx
// crosses threshold going upward, linearly interpolated to the crossing.
func PoincareSection(traj *dynamo.Trajectory, crossIdx int, threshold float64, recordX, recordY int) ([]Point, error) {
	dim := traj.Dim()
	for _, idx := range []int{crossIdx, recordX, recordY} {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("%w: index %d for dimension %d", dynamo.ErrDimensionMismatch, idx, dim)
		}
	}

	points := make([]Point, 0)
	for i := 1; i < len(traj.States); i++ {
		prev, curr := traj.States[i-1], traj.States[i]
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			w := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
			points = append(points, Point{
				X: prev[recordX] + w*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + w*(curr[recordY]-prev[recordY]),
			})
		}
	}
	return points, nil
}

// ScatterToASCII draws points on a width x height canvas with 10% padding
// and axes where they cross the visible area.
func ScatterToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
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
	rangeX, rangeY = maxX-minX, maxY-minY

	canvas := blank(width, height)
	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}
	return render(canvas)
}
