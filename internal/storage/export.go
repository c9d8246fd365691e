package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/odelab/internal/dynamo"
)

type ExportData struct {
	Model     string             `json:"model"`
	Method    string             `json:"method"`
	T0        float64            `json:"t0"`
	H         float64            `json:"h"`
	Steps     int                `json:"steps"`
	Truncated bool               `json:"truncated"`
	Params    map[string]float64 `json:"params,omitempty"`
	Labels    []string           `json:"labels,omitempty"`
	Times     []float64          `json:"times"`
	States    [][]float64        `json:"states"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes a self-contained JSON document of one run.
func ExportJSON(w io.Writer, meta RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		Model:     meta.Model,
		Method:    meta.Method,
		T0:        meta.T0,
		H:         meta.H,
		Steps:     meta.Steps,
		Truncated: traj.Truncated,
		Params:    meta.Params,
		Labels:    meta.Labels,
		Times:     traj.Times,
		States:    make([][]float64, len(traj.States)),
		Metrics:   meta.Metrics,
	}
	for i, s := range traj.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
