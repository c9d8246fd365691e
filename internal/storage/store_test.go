package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrajectory() *dynamo.Trajectory {
	traj := dynamo.NewTrajectory(3)
	traj.Append(0, dynamo.State{1.0, 0.5})
	traj.Append(0.1, dynamo.State{1.0 / 3, -0.1})
	traj.Append(0.2, dynamo.State{math.Pi, 1e-300})
	return traj
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Model:   "oscillator",
		Method:  "rk4",
		H:       0.1,
		Steps:   2,
		Params:  map[string]float64{"omega": 4},
		Initial: []float64{1, 0.5},
		Metrics: map[string]float64{"energy_drift": 1.5e-9},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	traj := sampleTrajectory()

	runID, err := st.Save(sampleMeta(), traj)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "oscillator_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "oscillator", meta.Model)
	assert.Equal(t, 3, meta.Samples)
	assert.False(t, meta.Compressed)
	assert.Equal(t, 4.0, meta.Params["omega"])
	assert.Equal(t, 1.5e-9, meta.Metrics["energy_drift"])

	got, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, traj.Times, got.Times)
	assert.Equal(t, traj.States, got.States)
}

func TestStoreCompressed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir).WithCompression(true)
	traj := sampleTrajectory()
	traj.Truncated = true

	runID, err := st.Save(sampleMeta(), traj)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "states.csv.zst"))
	assert.NoFileExists(t, filepath.Join(dir, runID, "states.csv"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.True(t, meta.Compressed)
	assert.True(t, meta.Truncated)

	// a store without compression still reads compressed runs
	got, err := New(dir).LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, traj.States, got.States)
	assert.True(t, got.Truncated)
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	a, err := st.Save(sampleMeta(), sampleTrajectory())
	require.NoError(t, err)
	b, err := st.Save(sampleMeta(), sampleTrajectory())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, a, runs[0].ID)
	assert.Equal(t, b, runs[1].ID)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(filepath.Join(dir, "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	st = New(dir)
	_, err = st.Save(sampleMeta(), sampleTrajectory())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadTrajectory("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreSaveNil(t *testing.T) {
	_, err := New(t.TempDir()).Save(sampleMeta(), nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}

func TestReadCSVMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"bad header", "t,x0\n0,1\n"},
		{"bad number", "time,x0\n0,abc\n"},
		{"ragged", "time,x0\n0,1\n1,2,3\n"},
		{"not increasing", "time,x0\n1,1\n0,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, dynamo.ErrMalformedInput)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	traj := dynamo.NewTrajectory(2)
	traj.Append(0, dynamo.State{1, 2})
	traj.Append(0.5, dynamo.State{3, 4})
	require.NoError(t, WriteCSV(&buf, traj))
	assert.Equal(t, "time,x0,x1\n0,1,2\n0.5,3,4\n", buf.String())
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	traj := sampleTrajectory()
	meta := sampleMeta()
	meta.Labels = []string{"y", "v"}
	require.NoError(t, ExportJSON(&buf, meta, traj))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "oscillator", got.Model)
	assert.Equal(t, "rk4", got.Method)
	assert.Equal(t, []string{"y", "v"}, got.Labels)
	assert.Equal(t, traj.Times, got.Times)
	require.Len(t, got.States, 3)
	assert.Equal(t, []float64(traj.States[1]), got.States[1])
}
