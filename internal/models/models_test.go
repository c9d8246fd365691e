package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
)

func TestUtilizationDerivative_SteadyState(t *testing.T) {
	u, err := NewUtilization(2, 1)
	if err != nil {
		t.Fatalf("NewUtilization: %v", err)
	}

	ss := u.SteadyState()
	if math.Abs(ss-2.0/3.0) > 1e-12 {
		t.Errorf("steady state = %f, want 0.6667", ss)
	}

	dx := u.Derive(dynamo.State{ss}, 0)
	if math.Abs(dx[0]) > 1e-12 {
		t.Errorf("derivative at steady state should be 0, got %e", dx[0])
	}

	dx = u.Derive(dynamo.State{0.2}, 0)
	if want := 2*(1-0.2) - 0.2; math.Abs(dx[0]-want) > 1e-12 {
		t.Errorf("derivative at 0.2 = %f, want %f", dx[0], want)
	}
}

func TestUtilizationExact(t *testing.T) {
	u, _ := NewUtilization(2, 1)
	exact := u.Exact(dynamo.State{0.2}, 0)

	if got := exact(0)[0]; math.Abs(got-0.2) > 1e-12 {
		t.Errorf("exact(0) = %f, want 0.2", got)
	}
	if got := exact(10)[0]; math.Abs(got-u.SteadyState()) > 1e-10 {
		t.Errorf("exact(10) = %f, want steady state", got)
	}
}

func TestOscillatorDerivative(t *testing.T) {
	o, err := NewOscillator(4)
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}

	dx := o.Derive(dynamo.State{1, 0.5}, 0)
	if dx[0] != 0.5 {
		t.Errorf("dy/dt = %f, want 0.5", dx[0])
	}
	if dx[1] != -16 {
		t.Errorf("dv/dt = %f, want -16", dx[1])
	}
}

func TestOscillatorExactConservesEnergy(t *testing.T) {
	o, _ := NewOscillator(4)
	x0 := dynamo.State{1, 0.5}
	exact := o.Exact(x0, 0)
	e0 := o.Energy(x0)

	for _, tm := range []float64{0, 0.3, 1.7, 10} {
		x := exact(tm)
		if math.Abs(o.Energy(x)-e0) > 1e-10 {
			t.Errorf("energy at t=%.1f = %f, want %f", tm, o.Energy(x), e0)
		}
	}

	if got := exact(0); got[0] != 1 || math.Abs(got[1]-0.5) > 1e-15 {
		t.Errorf("exact(0) = %v, want [1 0.5]", got)
	}
}

func TestExpKernelExactSatisfiesField(t *testing.T) {
	k := NewExpKernel()
	exact := k.Exact(dynamo.State{2}, 1)

	if got := exact(1)[0]; math.Abs(got-2) > 1e-12 {
		t.Errorf("exact(x0) = %f, want 2", got)
	}

	// central difference of the closed form matches the field
	for _, x := range []float64{0.5, 1.5, 3} {
		const d = 1e-6
		slope := (exact(x + d)[0] - exact(x - d)[0]) / (2 * d)
		field := k.Derive(exact(x), x)[0]
		if math.Abs(slope-field) > 1e-6 {
			t.Errorf("x=%.1f: slope %f, field %f", x, slope, field)
		}
	}
}

func TestExpKernelSingularity(t *testing.T) {
	k := NewExpKernel()

	if err := k.ValidateStart(dynamo.State{1}, 0); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter at x0=0, got %v", err)
	}
	if err := k.ValidateStart(dynamo.State{1}, 0.5); err != nil {
		t.Errorf("unexpected error at x0=0.5: %v", err)
	}
	if dx := k.Derive(dynamo.State{1}, 0); dx.IsValid() {
		t.Errorf("expected non-finite derivative at x=0, got %v", dx)
	}
}

func TestLorenzDerivative(t *testing.T) {
	l := DefaultLorenz()
	dx := l.Derive(dynamo.State{1, 2, 3}, 0)

	want := dynamo.State{10 * (2 - 1), 28*1 - 2 - 1*3, 1*2 - 2.667*3}
	for i := range want {
		if math.Abs(dx[i]-want[i]) > 1e-12 {
			t.Errorf("dx[%d] = %f, want %f", i, dx[i], want[i])
		}
	}
}

func TestLorenzSetParam(t *testing.T) {
	l := DefaultLorenz()
	if err := l.SetParam("rho", 14); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if l.R != 14 {
		t.Errorf("R = %f, want 14", l.R)
	}
	if err := l.SetParam("q", 1); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown name, got %v", err)
	}
}

func TestInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"zero lambda", func() error { _, err := NewUtilization(0, 1); return err }},
		{"negative mu", func() error { _, err := NewUtilization(1, -1); return err }},
		{"nan lambda", func() error { _, err := NewUtilization(math.NaN(), 1); return err }},
		{"zero omega", func() error { _, err := NewOscillator(0); return err }},
		{"inf omega", func() error { _, err := NewOscillator(math.Inf(1)); return err }},
		{"nan lorenz r", func() error { _, err := NewLorenz(10, math.NaN(), 2.667); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	names := Names()
	want := []string{"damped", "expkernel", "forced", "lorenz", "oscillator", "utilization"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	for _, name := range names {
		e, _ := Get(name)
		sys, err := e.Build(nil)
		if err != nil {
			t.Errorf("%s: build defaults: %v", name, err)
			continue
		}
		if sys.StateDim() != len(e.Initial) {
			t.Errorf("%s: dim %d, initial state %d", name, sys.StateDim(), len(e.Initial))
		}
		if len(e.Labels) != sys.StateDim() {
			t.Errorf("%s: %d labels for dim %d", name, len(e.Labels), sys.StateDim())
		}
	}
}

func TestCatalogBuildOverrides(t *testing.T) {
	sys, err := Build("lorenz", Params{"r": 14})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l := sys.(*Lorenz); l.R != 14 || l.S != DefaultLorenzS {
		t.Errorf("got %+v", l)
	}

	if _, err := Build("lorenz", Params{"omega": 1}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for foreign param, got %v", err)
	}
	if _, err := Build("oscillator", Params{"omega": 0}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for omega=0, got %v", err)
	}
	if _, err := Build("pendulum", nil); !errors.Is(err, dynamo.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestDrivenClosedFormsFromRest(t *testing.T) {
	tests := []struct {
		name string
		sys  interface {
			dynamo.System
			dynamo.Solvable
		}
		want func(t float64) float64
	}{
		{"damped", NewDrivenDamped(), func(t float64) float64 { return (4+2*t)*math.Exp(-t) + 2*t - 4 }},
		{"forced", NewDrivenOscillator(), func(t float64) float64 { return 2*math.Cos(t) + t*t - 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exact := tt.sys.Exact(dynamo.State{0, 0}, 0)
			for _, tm := range []float64{0, 0.5, 1, 3, 8} {
				if got := exact(tm)[0]; math.Abs(got-tt.want(tm)) > 1e-12 {
					t.Errorf("y(%g) = %.15f, want %.15f", tm, got, tt.want(tm))
				}
			}
			if v0 := exact(0)[1]; math.Abs(v0) > 1e-12 {
				t.Errorf("v(0) = %g, want 0", v0)
			}
		})
	}
}

func TestDrivenExactSatisfiesField(t *testing.T) {
	const h = 1e-5
	x0 := dynamo.State{0.3, -1.2}
	t0 := 1.5

	for _, sys := range []interface {
		dynamo.System
		dynamo.Solvable
	}{NewDrivenDamped(), NewDrivenOscillator()} {
		exact := sys.Exact(x0, t0)
		start := exact(t0)
		for i := range x0 {
			if math.Abs(start[i]-x0[i]) > 1e-12 {
				t.Errorf("%T: exact(t0)[%d] = %g, want %g", sys, i, start[i], x0[i])
			}
		}
		for _, tm := range []float64{1.5, 2, 4} {
			x := exact(tm)
			dx := sys.Derive(x, tm)
			fd := exact(tm + h).Sub(exact(tm - h)).Scale(1 / (2 * h))
			for i := range dx {
				if math.Abs(dx[i]-fd[i]) > 1e-6 {
					t.Errorf("%T at t=%g: field[%d] = %g, derivative of closed form %g", sys, tm, i, dx[i], fd[i])
				}
			}
		}
	}
}
