package automation

import (
	"context"
	"testing"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursework = `
name: coursework
description: every model once
steps:
  - name: decay
    model: utilization
    steps: 200
  - model: oscillator
    preset: euler
    steps: 500
  - model: expkernel
    preset: crossing
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(coursework))
	require.NoError(t, err)
	assert.Equal(t, "coursework", sc.Name)
	require.Len(t, sc.Steps, 3)

	decay := sc.Steps[0]
	assert.Equal(t, "decay", decay.Name)
	assert.Equal(t, "utilization", decay.Config.Model)
	assert.Equal(t, 200, decay.Config.Steps)
	assert.Equal(t, 0.001, decay.Config.H)

	osc := sc.Steps[1]
	assert.Equal(t, "2-oscillator", osc.Name)
	assert.Equal(t, "euler", osc.Config.Method)
	assert.Equal(t, 500, osc.Config.Steps)

	assert.Equal(t, -1.0, sc.Steps[2].Config.T0)
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{"no steps", "name: empty\n", dynamo.ErrInvalidParameter},
		{"bad step size", "steps:\n  - model: oscillator\n    h: -1\n", dynamo.ErrInvalidParameter},
		{"unknown model", "steps:\n  - model: pendulum\n", dynamo.ErrUnknownModel},
		{"unknown preset", "steps:\n  - model: oscillator\n    preset: nope\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestRunScenarioStoresEveryRun(t *testing.T) {
	sc, err := ParseScenario([]byte(coursework))
	require.NoError(t, err)
	st := storage.New(t.TempDir())

	results, err := RunScenario(context.Background(), sc, st, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 201, results[0].Trajectory.Len())
	assert.NoError(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, dynamo.ErrNonFiniteState)
	assert.True(t, results[2].Trajectory.Truncated)

	for _, r := range results {
		assert.NotEmpty(t, r.RunID, r.Step.Name)
	}
	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	meta, err := st.Load(results[2].RunID)
	require.NoError(t, err)
	assert.True(t, meta.Truncated)
	assert.Equal(t, []string{"y"}, meta.Labels)
}

func TestRunScenarioCanceled(t *testing.T) {
	sc, err := ParseScenario([]byte(coursework))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = RunScenario(ctx, sc, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonteCarloNonChaotic(t *testing.T) {
	base, err := config.ForModel("oscillator")
	require.NoError(t, err)
	base.Steps = 1000

	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, Perturbation: 1e-3, NumTrials: 20, Seed: 1})
	require.NoError(t, err)
	require.Len(t, results, 20)

	stable, unstable := MonteCarloStats(results)
	assert.Equal(t, 20, stable)
	assert.Zero(t, unstable)
	assert.Less(t, Spread(results), 1e-2)

	for i, r := range results {
		assert.Equal(t, i, r.TrialID)
		assert.InDelta(t, 1.0, r.InitState[0], 1e-3)
	}
}

func TestMonteCarloLorenzDiverges(t *testing.T) {
	base, err := config.ForModel("lorenz")
	require.NoError(t, err)
	base.Method = "rk4"
	base.Steps = 3000

	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, Perturbation: 1e-6, NumTrials: 8, Seed: 7})
	require.NoError(t, err)
	assert.Greater(t, Spread(results), 1.0)
}

func TestMonteCarloSeedIsReproducible(t *testing.T) {
	base, err := config.ForModel("utilization")
	require.NoError(t, err)
	base.Steps = 10
	mc := &MonteCarloConfig{Base: base, Perturbation: 0.1, NumTrials: 4, Seed: 42}

	a, err := RunMonteCarlo(context.Background(), mc)
	require.NoError(t, err)
	b, err := RunMonteCarlo(context.Background(), mc)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].InitState, b[i].InitState)
	}
}

func TestMonteCarloInvalid(t *testing.T) {
	base := config.DefaultConfig()
	for name, mc := range map[string]*MonteCarloConfig{
		"nil base":              {NumTrials: 1},
		"no trials":             {Base: base},
		"negative perturbation": {Base: base, NumTrials: 1, Perturbation: -1},
	} {
		_, err := RunMonteCarlo(context.Background(), mc)
		assert.ErrorIs(t, err, dynamo.ErrInvalidParameter, name)
	}
}
