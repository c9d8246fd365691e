package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/sim"
)

func TestEnergyDriftEulerVsRK4(t *testing.T) {
	osc, _ := models.NewOscillator(4)
	cfg := dynamo.Config{H: 0.001, Steps: 10000}
	x0 := dynamo.State{1, 0.5}

	drift := func(st dynamo.Stepper) float64 {
		m := NewEnergyDrift(osc)
		in := sim.New(st)
		in.AddObserver(m)
		if _, err := in.Run(osc, x0, cfg); err != nil {
			t.Fatal(err)
		}
		return m.Value()
	}

	rk4 := drift(integrators.NewRK4())
	euler := drift(integrators.NewEuler())
	if rk4 > 1e-8 {
		t.Errorf("rk4 drift %v", rk4)
	}
	// explicit Euler multiplies the energy by (1+ω²h²) every step
	want := math.Pow(1+16e-6, 10000) - 1
	if math.Abs(euler-want) > 1e-6 {
		t.Errorf("euler drift %v, want %v", euler, want)
	}
}

func TestEnergyDriftReset(t *testing.T) {
	osc, _ := models.NewOscillator(1)
	m := NewEnergyDrift(osc)
	m.OnStep(0, 0, dynamo.State{1, 0})
	m.OnStep(1, 0.1, dynamo.State{2, 0})
	if m.Value() != 3 {
		t.Errorf("got %v, want 3", m.Value())
	}
	if m.Current() != 2 {
		t.Errorf("current %v, want 2", m.Current())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestSteadyStateGap(t *testing.T) {
	u, _ := models.NewUtilization(2, 1)
	m := NewSteadyStateGap(u.SteadyState())
	if !math.IsNaN(m.Value()) {
		t.Error("expected NaN before any sample")
	}

	in := sim.New(integrators.NewRK4())
	in.AddObserver(m)
	if _, err := in.Run(u, dynamo.State{0.2}, dynamo.Config{H: 0.001, Steps: 10000}); err != nil {
		t.Fatal(err)
	}
	if m.Value() > 1e-6 {
		t.Errorf("gap %v after 10 time units", m.Value())
	}
}

func TestBoundedFraction(t *testing.T) {
	m := NewBoundedFraction(1)
	if m.Value() != 1 {
		t.Error("expected 1 with no samples")
	}
	m.OnStep(0, 0, dynamo.State{0.5, -0.5})
	m.OnStep(1, 0.5, dynamo.State{0.5, -2})
	m.OnStep(2, 1, dynamo.State{3, 0})
	m.OnStep(3, 1.5, dynamo.State{1, 0})
	if m.Value() != 0.5 {
		t.Errorf("got %v, want 0.5", m.Value())
	}
	if m.FirstExceeded() != 0.5 {
		t.Errorf("first exceeded at %v, want 0.5", m.FirstExceeded())
	}
	if m.Peak() != 3 {
		t.Errorf("peak = %v, want 3", m.Peak())
	}

	m.Reset()
	if m.Value() != 1 || !math.IsNaN(m.FirstExceeded()) || m.Peak() != 0 {
		t.Error("reset did not clear state")
	}
}

func TestForSystem(t *testing.T) {
	osc, _ := models.NewOscillator(1)
	u, _ := models.NewUtilization(1, 1)

	names := func(ms []Metric) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Name()
		}
		return out
	}

	if got := names(ForSystem(osc, 0)); len(got) != 1 || got[0] != "energy_drift" {
		t.Errorf("oscillator: %v", got)
	}
	if got := names(ForSystem(u, 0)); len(got) != 1 || got[0] != "steady_state_gap" {
		t.Errorf("utilization: %v", got)
	}
	if got := names(ForSystem(models.DefaultLorenz(), 100)); len(got) != 1 || got[0] != "bounded_fraction" {
		t.Errorf("lorenz: %v", got)
	}
}
