package reference

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/models"
)

var decay = dynamo.Field{Dim: 1, Fn: func(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-x[0]}
}}

func TestDormandPrinceExponentialDecay(t *testing.T) {
	times := Grid(0, 5, 11)
	traj, err := NewDormandPrince().Solve(decay, dynamo.State{1}, times)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if traj.Len() != len(times) {
		t.Fatalf("got %d samples, want %d", traj.Len(), len(times))
	}
	for i, tm := range times {
		if traj.Times[i] != tm {
			t.Errorf("sample %d at t=%v, want exactly %v", i, traj.Times[i], tm)
		}
		if diff := math.Abs(traj.States[i][0] - math.Exp(-tm)); diff > 1e-9 {
			t.Errorf("t=%v: error %v", tm, diff)
		}
	}
}

func TestDormandPrinceOscillatorClosedForm(t *testing.T) {
	osc, _ := models.NewOscillator(4)
	x0 := dynamo.State{1, 0.5}
	exact := osc.Exact(x0, 0)

	times := Grid(0, 10, 101)
	traj, err := NewDormandPrince().Solve(osc, x0, times)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i, tm := range times {
		want := exact(tm)
		if d := traj.States[i].Sub(want).Norm(); d > 1e-7 {
			t.Errorf("t=%v: error %v", tm, d)
		}
	}
}

func TestDormandPrinceSingleQuery(t *testing.T) {
	traj, err := NewDormandPrince().Solve(decay, dynamo.State{3}, []float64{2})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if traj.Len() != 1 || traj.States[0][0] != 3 {
		t.Errorf("unexpected trajectory %+v", traj)
	}
}

func TestDormandPrinceInvalidInputs(t *testing.T) {
	tests := []struct {
		name  string
		sys   dynamo.System
		x0    dynamo.State
		times []float64
		want  error
	}{
		{"no times", decay, dynamo.State{1}, nil, dynamo.ErrInvalidParameter},
		{"decreasing", decay, dynamo.State{1}, []float64{0, 1, 0.5}, dynamo.ErrInvalidParameter},
		{"repeated", decay, dynamo.State{1}, []float64{0, 1, 1}, dynamo.ErrInvalidParameter},
		{"nan time", decay, dynamo.State{1}, []float64{0, math.NaN()}, dynamo.ErrInvalidParameter},
		{"nil system", nil, dynamo.State{1}, []float64{0, 1}, dynamo.ErrInvalidParameter},
		{"dimension", decay, dynamo.State{1, 2}, []float64{0, 1}, dynamo.ErrDimensionMismatch},
		{"non-finite start", decay, dynamo.State{math.Inf(1)}, []float64{0, 1}, dynamo.ErrInvalidParameter},
		{"singular start", models.NewExpKernel(), dynamo.State{1}, []float64{0, 1}, dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDormandPrince().Solve(tt.sys, tt.x0, tt.times)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDormandPrinceStepBudget(t *testing.T) {
	dp := NewDormandPrince()
	dp.MaxSteps = 3
	_, err := dp.Solve(decay, dynamo.State{1}, []float64{0, 100})
	if !errors.Is(err, ErrTooManySteps) {
		t.Errorf("got %v, want ErrTooManySteps", err)
	}
}

func TestDormandPrinceBlowUp(t *testing.T) {
	// x' = x², x(0)=1 blows up at t=1
	blow := dynamo.Field{Dim: 1, Fn: func(x dynamo.State, _ float64) dynamo.State {
		return dynamo.State{x[0] * x[0]}
	}}
	traj, err := NewDormandPrince().Solve(blow, dynamo.State{1}, []float64{0, 0.5, 2})
	if err == nil {
		t.Fatal("expected failure past the blow-up time")
	}
	if traj.Len() != 2 {
		t.Errorf("got %d samples before failure, want 2", traj.Len())
	}
	if d := math.Abs(traj.States[1][0] - 2); d > 1e-8 {
		t.Errorf("x(0.5) error %v", d)
	}
}

func TestAnalytic(t *testing.T) {
	u, _ := models.NewUtilization(2, 1)
	x0 := dynamo.State{0.2}
	a := Analytic{Dim: 1, Fn: u.Exact(x0, 0)}

	traj, err := a.Solve(u, x0, Grid(0, 1, 5))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if traj.States[0][0] != 0.2 {
		t.Errorf("u(0) = %v, want 0.2", traj.States[0][0])
	}

	bad := Analytic{Dim: 2, Fn: u.Exact(x0, 0)}
	if _, err := bad.Solve(u, x0, Grid(0, 1, 5)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
	if _, err := (Analytic{Dim: 1}).Solve(u, x0, Grid(0, 1, 5)); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}

	pole := Analytic{Dim: 1, Fn: func(t float64) dynamo.State { return dynamo.State{1 / t} }}
	if _, err := pole.Solve(u, x0, Grid(-1, 1, 3)); !errors.Is(err, dynamo.ErrNonFiniteState) {
		t.Errorf("got %v, want ErrNonFiniteState", err)
	}
}

func TestFor(t *testing.T) {
	osc, _ := models.NewOscillator(1)
	if _, ok := For(osc, dynamo.State{1, 0}, 0).(Analytic); !ok {
		t.Error("expected closed form for the oscillator")
	}
	if _, ok := For(models.DefaultLorenz(), dynamo.State{0, 1, 1.05}, 0).(*DormandPrince); !ok {
		t.Error("expected Dormand-Prince for Lorenz")
	}
}

func TestGrid(t *testing.T) {
	g := Grid(1, 2, 5)
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	for i := range want {
		if math.Abs(g[i]-want[i]) > 1e-15 {
			t.Errorf("g[%d] = %v, want %v", i, g[i], want[i])
		}
	}
	if len(Grid(0, 1, 0)) != 0 {
		t.Error("expected empty grid")
	}
	if g := Grid(3, 4, 1); len(g) != 1 || g[0] != 3 {
		t.Errorf("got %v", g)
	}
}
