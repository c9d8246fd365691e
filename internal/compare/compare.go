// Package compare aligns a candidate trajectory with a reference trajectory
// and reports the error between them.
//
// The reference is resampled onto the candidate's time grid by linear
// interpolation between the two bracketing samples. Extrapolation is never
// performed: any candidate time outside the reference span fails the whole
// comparison with dynamo.ErrOutOfRange.
package compare

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
)

// spanTolerance absorbs rounding when both grids are built from the same
// t0 and h.
const spanTolerance = 1e-12

// Report holds per-sample and aggregate errors on the candidate's grid.
type Report struct {
	Times []float64
	// AbsErrors[i][j] is |candidate_i[j] - reference(t_i)[j]|.
	AbsErrors [][]float64
	// RelErrors divides by |reference(t_i)[j]|, falling back to the
	// absolute error where the reference component is zero.
	RelErrors [][]float64

	MaxAbsError  float64
	MeanAbsError float64
	// MaxAbsTime is the time of the sample holding MaxAbsError.
	MaxAbsTime float64

	MaxAbsPerDim  []float64
	MeanAbsPerDim []float64
}

// Compare resamples reference onto candidate.Times and computes the error.
func Compare(candidate, reference *dynamo.Trajectory) (*Report, error) {
	if candidate == nil || reference == nil {
		return nil, fmt.Errorf("%w: nil trajectory", dynamo.ErrInvalidParameter)
	}
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	if candidate.Len() == 0 {
		return nil, fmt.Errorf("%w: empty candidate", dynamo.ErrInvalidParameter)
	}
	if reference.Len() == 0 {
		return nil, fmt.Errorf("%w: empty reference", dynamo.ErrOutOfRange)
	}
	dim := candidate.Dim()
	if reference.Dim() != dim {
		return nil, fmt.Errorf("%w: candidate %d, reference %d", dynamo.ErrDimensionMismatch, dim, reference.Dim())
	}

	n := candidate.Len()
	r := &Report{
		Times:         make([]float64, n),
		AbsErrors:     make([][]float64, n),
		RelErrors:     make([][]float64, n),
		MaxAbsPerDim:  make([]float64, dim),
		MeanAbsPerDim: make([]float64, dim),
	}
	copy(r.Times, candidate.Times)

	sum := 0.0
	for i, t := range candidate.Times {
		ref, err := Interpolate(reference, t)
		if err != nil {
			return nil, err
		}
		if !candidate.States[i].IsValid() {
			return nil, fmt.Errorf("%w: candidate sample %d at t=%g", dynamo.ErrNonFiniteState, i, t)
		}
		if !ref.IsValid() {
			return nil, fmt.Errorf("%w: reference at t=%g", dynamo.ErrNonFiniteState, t)
		}

		abs := make([]float64, dim)
		rel := make([]float64, dim)
		for j := 0; j < dim; j++ {
			abs[j] = math.Abs(candidate.States[i][j] - ref[j])
			if d := math.Abs(ref[j]); d > 0 {
				rel[j] = abs[j] / d
			} else {
				rel[j] = abs[j]
			}

			sum += abs[j]
			r.MeanAbsPerDim[j] += abs[j]
			if abs[j] > r.MaxAbsPerDim[j] {
				r.MaxAbsPerDim[j] = abs[j]
			}
			if abs[j] > r.MaxAbsError {
				r.MaxAbsError = abs[j]
				r.MaxAbsTime = t
			}
		}
		r.AbsErrors[i] = abs
		r.RelErrors[i] = rel
	}

	r.MeanAbsError = sum / float64(n*dim)
	for j := range r.MeanAbsPerDim {
		r.MeanAbsPerDim[j] /= float64(n)
	}
	return r, nil
}

// Interpolate returns the linearly interpolated reference state at t.
func Interpolate(reference *dynamo.Trajectory, t float64) (dynamo.State, error) {
	times := reference.Times
	n := len(times)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty reference", dynamo.ErrOutOfRange)
	}

	first, last := times[0], times[n-1]
	eps := spanTolerance * math.Max(1, math.Max(math.Abs(first), math.Abs(last)))
	if math.IsNaN(t) || t < first-eps || t > last+eps {
		return nil, fmt.Errorf("%w: t=%g not in [%g, %g]", dynamo.ErrOutOfRange, t, first, last)
	}

	if t <= first {
		return reference.States[0].Clone(), nil
	}
	if t >= last {
		return reference.States[n-1].Clone(), nil
	}

	// first index with times[k] >= t; k >= 1 here
	k := sort.SearchFloat64s(times, t)
	if times[k] == t {
		return reference.States[k].Clone(), nil
	}

	t0, t1 := times[k-1], times[k]
	w := (t - t0) / (t1 - t0)
	a, b := reference.States[k-1], reference.States[k]
	out := make(dynamo.State, len(a))
	for j := range a {
		out[j] = a[j] + w*(b[j]-a[j])
	}
	return out, nil
}
