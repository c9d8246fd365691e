package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/odelab/internal/dynamo"
)

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: fft length %d is not a power of two", dynamo.ErrInvalidParameter, n)
	}
	return fft(data), nil
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		for i := range data {
			out[i] = complex(data[i], 0)
		}
		return out
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}
	fe, fo := fft(even), fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = fe[k] + w*fo[k]
		out[k+n/2] = fe[k] - w*fo[k]
	}
	return out
}

// PowerSpectrum returns |F_k| for k < n/2 after removing the mean and
// zero-padding to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	f := fft(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-constant component of state index dim. The trajectory must
// be on a uniform grid.
func DominantFrequency(traj *dynamo.Trajectory, dim int) (float64, error) {
	if traj.Len() < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples", dynamo.ErrInvalidParameter)
	}
	if dim < 0 || dim >= traj.Dim() {
		return 0, fmt.Errorf("%w: index %d for dimension %d", dynamo.ErrDimensionMismatch, dim, traj.Dim())
	}

	ps := PowerSpectrum(traj.Component(dim))
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	n := 2 * len(ps)
	h := traj.Times[1] - traj.Times[0]
	return float64(best) / (float64(n) * h), nil
}
