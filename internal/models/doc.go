// Package models provides the vector fields the engine ships with.
//
//   - [Utilization]: CPU utilization relaxation du/dt = λ(1-u) - μu
//   - [Oscillator]: harmonic oscillator y'' = -ω²y
//   - [ExpKernel]: dy/dx = y / (e^x - 1), singular at x = 0
//   - [DrivenDamped]: y'' + 2y' + y = 2t
//   - [DrivenOscillator]: y'' + y = t²
//   - [Lorenz]: butterfly attractor
//
// Constructors validate parameters and return dynamo.ErrInvalidParameter
// before any stepping can begin. All but [Lorenz] implement
// [dynamo.Solvable].
package models
