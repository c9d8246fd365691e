// Package series holds the truncated power-series solutions used to check
// short-horizon behaviour of second-order linear equations.
package series

import (
	"fmt"

	"github.com/san-kum/odelab/internal/dynamo"
)

const (
	DefaultA0    = 0.0
	DefaultA1    = 16.0
	DefaultOrder = 8
)

// TaylorA is the 4th order expansion about x=0 of y'' - 2xy' + x²y = 0,
// y(0)=1, y'(0)=-1.
func TaylorA(x float64) float64 {
	return 1 - x - x*x*x/3 - x*x*x*x/12
}

// TaylorB is the 2nd order expansion about x=3 of y'' - (x-2)y' + 2y = 0,
// y(3)=6, y'(3)=1.
func TaylorB(x float64) float64 {
	d := x - 3
	return 6 + d - 5.5*d*d
}

// Coefficients returns a_0..a_n of the series solution with recurrence
// a_{k+2} = -(k²-k+1) / (4(k+2)(k+1)) a_k.
func Coefficients(a0, a1 float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, dynamo.InvalidParameter("n", float64(n), "order must be at least 1")
	}
	a := make([]float64, n+1)
	a[0], a[1] = a0, a1
	for k := 0; k+2 <= n; k++ {
		kf := float64(k)
		a[k+2] = -(kf*kf - kf + 1) / (4 * (kf + 2) * (kf + 1)) * a[k]
	}
	return a, nil
}

// Eval evaluates sum a_k x^k by Horner's rule.
func Eval(a []float64, x float64) float64 {
	sum := 0.0
	for k := len(a) - 1; k >= 0; k-- {
		sum = sum*x + a[k]
	}
	return sum
}

// Table samples fn on n+1 evenly spaced points of [lo, hi].
func Table(fn func(float64) float64, lo, hi float64, n int) ([]float64, []float64, error) {
	if n < 1 || !(hi > lo) {
		return nil, nil, fmt.Errorf("%w: need n >= 1 and hi > lo", dynamo.ErrInvalidParameter)
	}
	xs := make([]float64, n+1)
	ys := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range xs {
		xs[i] = lo + float64(i)*step
		ys[i] = fn(xs[i])
	}
	return xs, ys, nil
}
