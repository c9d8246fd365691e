package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Add returns s + other. Both vectors must have the same length.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + other[i]
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// AddScaled returns s + factor*other without allocating an intermediate.
func (s State) AddScaled(factor float64, other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + factor*other[i]
	}
	return result
}

// System is a vector field. Implementations must be pure: the returned
// derivative depends only on x, t and parameters fixed at construction.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Field adapts a plain derivative function of fixed dimension to System.
type Field struct {
	Dim int
	Fn  func(x State, t float64) State
}

func (f Field) Derive(x State, t float64) State { return f.Fn(x, t) }
func (f Field) StateDim() int                   { return f.Dim }

// StartValidator is implemented by systems whose field is undefined for
// some initial conditions. It is checked before any stepping begins.
type StartValidator interface {
	ValidateStart(x0 State, t0 float64) error
}

// Solvable is implemented by systems with a closed-form solution.
type Solvable interface {
	Exact(x0 State, t0 float64) func(t float64) State
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Stepper advances (x, t) by one fixed increment h.
type Stepper interface {
	Step(sys System, x State, t, h float64) State
}

// Kind names a stepping rule.
type Kind string

const (
	Euler Kind = "euler"
	RK4   Kind = "rk4"
)

// Order returns the global order of accuracy of the rule.
func (k Kind) Order() int {
	switch k {
	case Euler:
		return 1
	case RK4:
		return 4
	}
	return 0
}

// Stages returns the number of derivative evaluations per step.
func (k Kind) Stages() int {
	switch k {
	case Euler:
		return 1
	case RK4:
		return 4
	}
	return 0
}

type Observer interface {
	OnStep(step int, t float64, x State)
}

// Config fixes one integration run. H never changes during the run.
type Config struct {
	T0     float64
	H      float64
	Steps  int
	Method Kind
}

func DefaultConfig() Config {
	return Config{
		T0:     0,
		H:      0.01,
		Steps:  1000,
		Method: RK4,
	}
}

func (c Config) Validate() error {
	if !(c.H > 0) || math.IsInf(c.H, 0) {
		return InvalidParameter("h", c.H, "must be positive and finite")
	}
	if c.Steps < 0 {
		return InvalidParameter("steps", float64(c.Steps), "must not be negative")
	}
	if math.IsNaN(c.T0) || math.IsInf(c.T0, 0) {
		return InvalidParameter("t0", c.T0, "must be finite")
	}
	end := c.End()
	if math.IsInf(end, 0) {
		return InvalidParameter("h", c.H, "grid end overflows")
	}
	// t0 + i*h rounds twice; a few ulps of headroom keep the grid strictly
	// increasing.
	m := math.Max(math.Abs(c.T0), math.Abs(end))
	if c.H <= 4*(math.Nextafter(m, math.Inf(1))-m) {
		return InvalidParameter("h", c.H, "too small to advance t0")
	}
	return nil
}

// End returns the time of the last sample of a complete run.
func (c Config) End() float64 {
	return c.T0 + float64(c.Steps)*c.H
}

// Trajectory is the ordered record of one run. Times are strictly increasing.
type Trajectory struct {
	Times     []float64
	States    []State
	Truncated bool
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]State, 0, capacity),
	}
}

func (tr *Trajectory) Append(t float64, x State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x)
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Dim returns the state dimension, or 0 for an empty trajectory.
func (tr *Trajectory) Dim() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}

func (tr *Trajectory) Final() (float64, State) {
	n := len(tr.Times)
	if n == 0 {
		return 0, nil
	}
	return tr.Times[n-1], tr.States[n-1]
}

// Component extracts state index i across all samples.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Validate checks the structural invariants of a trajectory.
func (tr *Trajectory) Validate() error {
	if len(tr.Times) != len(tr.States) {
		return fmt.Errorf("%w: %d times, %d states", ErrDimensionMismatch, len(tr.Times), len(tr.States))
	}
	dim := tr.Dim()
	for i := range tr.Times {
		if len(tr.States[i]) != dim {
			return fmt.Errorf("%w: sample %d has dimension %d, want %d", ErrDimensionMismatch, i, len(tr.States[i]), dim)
		}
		if i > 0 && !(tr.Times[i] > tr.Times[i-1]) {
			return fmt.Errorf("%w: times not strictly increasing at sample %d", ErrInvalidParameter, i)
		}
	}
	return nil
}
