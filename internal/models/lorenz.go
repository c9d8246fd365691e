package models

import "github.com/san-kum/odelab/internal/dynamo"

const (
	DefaultLorenzS = 10.0
	DefaultLorenzR = 28.0
	DefaultLorenzB = 2.667
)

type Lorenz struct{ S, R, B float64 }

func NewLorenz(s, r, b float64) (*Lorenz, error) {
	params := []struct {
		name string
		v    float64
	}{{"s", s}, {"r", r}, {"b", b}}
	for _, p := range params {
		if !finite(p.v) {
			return nil, dynamo.InvalidParameter(p.name, p.v, "must be finite")
		}
	}
	return &Lorenz{S: s, R: r, B: b}, nil
}

func DefaultLorenz() *Lorenz { return &Lorenz{DefaultLorenzS, DefaultLorenzR, DefaultLorenzB} }

func (l *Lorenz) StateDim() int { return 3 }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{l.S * (s[1] - s[0]), l.R*s[0] - s[1] - s[0]*s[2], s[0]*s[1] - l.B*s[2]}
}

func (l *Lorenz) DefaultState() dynamo.State { return dynamo.State{0.0, 1.0, 1.05} }

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"s": l.S, "r": l.R, "b": l.B}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	if !finite(v) {
		return dynamo.InvalidParameter(n, v, "must be finite")
	}
	switch n {
	case "s", "sigma":
		l.S = v
	case "r", "rho":
		l.R = v
	case "b", "beta":
		l.B = v
	default:
		return unknownParam(n)
	}
	return nil
}
