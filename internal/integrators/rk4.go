package integrators

import "github.com/san-kum/odelab/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta rule. It holds no scratch
// buffers so a single value may be shared across goroutines.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, h float64) dynamo.State {
	n := len(x)
	half := h * 0.5
	scratch := make(dynamo.State, n)

	k1 := sys.Derive(x, t)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + half*k1[i]
	}
	k2 := sys.Derive(scratch, t+half)

	// Derive may retain its argument, so k3 and k4 get fresh inputs.
	scratch = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i] + half*k2[i]
	}
	k3 := sys.Derive(scratch, t+half)

	scratch = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i] + h*k3[i]
	}
	k4 := sys.Derive(scratch, t+h)

	result := make(dynamo.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return result
}
