// Package analysis provides tools for characterizing fields where a
// reference comparison is not enough.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via renormalized separation
//   - [PredictabilityHorizon]: time until an initial error grows past a tolerance
//   - [SweepLorenz]: parallel sweep of the Lorenz r parameter
//   - [PhasePortrait], [PoincareSection]: 2D projections of a trajectory
//   - [DominantFrequency]: strongest periodic component of one state variable
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics. Past the
// predictability horizon, pointwise comparison against any reference only
// measures the divergence of two nearby trajectories:
//
//	lambda, err := analysis.LyapunovExponent(sys, stepper, x0, t0, h, steps, 1e-8)
//	horizon, err := analysis.PredictabilityHorizon(lambda, 1e-2, 1e-8)
package analysis
