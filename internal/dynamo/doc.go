// Package dynamo provides the core primitives of the fixed-step ODE engine.
//
// The package defines the fundamental interfaces and types shared by the
// steppers, the integrator and the comparator:
//
//   - [State]: fixed-length vector of reals
//   - [System]: vector field dX/dt = f(X, t), parameters closed over
//   - [Field]: adapter turning a plain derivative function into a [System]
//   - [Stepper]: explicit one-step update rule
//   - [Trajectory]: ordered (t, X) samples produced by one run
//
// # Example
//
//	osc, _ := models.NewOscillator(4)
//	stepper := integrators.NewRK4()
//	traj, err := sim.New(stepper).Run(osc, dynamo.State{1, 0.5}, dynamo.Config{H: 0.001, Steps: 10000})
//
// # Thread Safety
//
// Steppers and systems carry no mutable state, so independent runs may
// execute concurrently. A [Trajectory] is owned by the caller that
// requested it and must not be mutated once returned.
package dynamo
