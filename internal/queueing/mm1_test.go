package queueing

import (
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMM1(t *testing.T) {
	m, err := MM1(2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, m.Rho, 1e-15)
	assert.Equal(t, 2.0, m.Throughput)
	assert.InDelta(t, 0.4/0.6, m.MeanN, 1e-15)
	assert.InDelta(t, 1.0/3, m.MeanT, 1e-15)

	// Little's law
	assert.InDelta(t, m.MeanN, m.Throughput*m.MeanT, 1e-12)
}

func TestMM1Invalid(t *testing.T) {
	tests := []struct {
		name       string
		lambda, mu float64
	}{
		{"unstable", 5, 2},
		{"saturated", 3, 3},
		{"zero arrival", 0, 1},
		{"negative service", 1, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MM1(tt.lambda, tt.mu)
			assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
		})
	}
}

func TestScale(t *testing.T) {
	ks := Linspace(0.5, 5, 10)
	ms, err := Scale(2, 5, ks)
	require.NoError(t, err)
	require.Len(t, ms, len(ks))

	base, _ := MM1(2, 5)
	for i, m := range ms {
		k := ks[i]
		assert.InDelta(t, base.Rho, m.Rho, 1e-12)
		assert.InDelta(t, base.MeanN, m.MeanN, 1e-12)
		assert.InDelta(t, k*base.Throughput, m.Throughput, 1e-12)
		assert.InDelta(t, base.MeanT/k, m.MeanT, 1e-12)
	}

	_, err = Scale(2, 5, []float64{1, 0})
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 3, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}
