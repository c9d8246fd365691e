package metrics

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// BoundedFraction is the share of samples whose every component stays
// within bound in magnitude. It also remembers the first time the bound was
// exceeded and the largest magnitude seen.
type BoundedFraction struct {
	bound    float64
	inside   int
	samples  int
	peak     float64
	exceeded float64
}

func NewBoundedFraction(bound float64) *BoundedFraction {
	b := &BoundedFraction{bound: bound}
	b.Reset()
	return b
}

func (b *BoundedFraction) Name() string { return "bounded_fraction" }

func (b *BoundedFraction) OnStep(_ int, t float64, x dynamo.State) {
	b.samples++
	worst := 0.0
	for _, v := range x {
		worst = max(worst, math.Abs(v))
	}
	b.peak = max(b.peak, worst)
	if worst <= b.bound {
		b.inside++
	} else if math.IsNaN(b.exceeded) {
		b.exceeded = t
	}
}

// Value is 1 before any sample.
func (b *BoundedFraction) Value() float64 {
	if b.samples == 0 {
		return 1
	}
	return float64(b.inside) / float64(b.samples)
}

// Peak is the largest component magnitude observed.
func (b *BoundedFraction) Peak() float64 { return b.peak }

// FirstExceeded is the time of the first sample outside the bound, or NaN.
func (b *BoundedFraction) FirstExceeded() float64 { return b.exceeded }

func (b *BoundedFraction) Reset() {
	b.inside, b.samples, b.peak = 0, 0, 0
	b.exceeded = math.NaN()
}
