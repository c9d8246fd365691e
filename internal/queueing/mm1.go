// Package queueing computes steady-state M/M/1 queue metrics.
package queueing

import (
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Metrics are the steady-state figures of a stable M/M/1 queue.
type Metrics struct {
	Lambda     float64 `json:"lambda"`
	Mu         float64 `json:"mu"`
	Rho        float64 `json:"rho"`
	Throughput float64 `json:"throughput"`
	MeanN      float64 `json:"mean_n"`
	MeanT      float64 `json:"mean_t"`
}

// MM1 requires 0 < lambda < mu.
func MM1(lambda, mu float64) (Metrics, error) {
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return Metrics{}, dynamo.InvalidParameter("lambda", lambda, "must be positive and finite")
	}
	if !(mu > 0) || math.IsInf(mu, 0) {
		return Metrics{}, dynamo.InvalidParameter("mu", mu, "must be positive and finite")
	}
	if lambda >= mu {
		return Metrics{}, fmt.Errorf("%w: unstable queue, lambda=%g >= mu=%g", dynamo.ErrInvalidParameter, lambda, mu)
	}

	rho := lambda / mu
	return Metrics{
		Lambda:     lambda,
		Mu:         mu,
		Rho:        rho,
		Throughput: lambda,
		MeanN:      rho / (1 - rho),
		MeanT:      1 / (mu - lambda),
	}, nil
}

// Scale evaluates MM1(k·lambda, k·mu) for each k. Utilization and mean
// population stay fixed while throughput grows and mean time shrinks by k.
func Scale(lambda, mu float64, ks []float64) ([]Metrics, error) {
	out := make([]Metrics, len(ks))
	for i, k := range ks {
		if !(k > 0) || math.IsInf(k, 0) {
			return nil, dynamo.InvalidParameter("k", k, "must be positive and finite")
		}
		m, err := MM1(k*lambda, k*mu)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
