package metrics

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

type steadyStater interface {
	SteadyState() float64
}

// SteadyStateGap is |x[0] - target| at the last observed sample.
type SteadyStateGap struct {
	name   string
	target float64
	gap    float64
}

func NewSteadyStateGap(target float64) *SteadyStateGap {
	return &SteadyStateGap{
		name:   "steady_state_gap",
		target: target,
		gap:    math.NaN(),
	}
}

func (s *SteadyStateGap) Name() string { return s.name }

func (s *SteadyStateGap) OnStep(_ int, _ float64, x dynamo.State) {
	if len(x) == 0 {
		return
	}
	s.gap = math.Abs(x[0] - s.target)
}

// Value is NaN until a sample has been observed.
func (s *SteadyStateGap) Value() float64 { return s.gap }

func (s *SteadyStateGap) Reset() { s.gap = math.NaN() }
