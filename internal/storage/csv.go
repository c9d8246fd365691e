package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/odelab/internal/dynamo"
)

// WriteCSV writes a header "time,x0,x1,..." and one row per sample. Values
// use the shortest representation that round-trips exactly.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for i := 0; i < traj.Dim(); i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range traj.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, v := range traj.States[i] {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrMalformedInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", dynamo.ErrMalformedInput)
	}
	if records[0][0] != "time" {
		return nil, fmt.Errorf("%w: header %v", dynamo.ErrMalformedInput, records[0])
	}

	traj := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", dynamo.ErrMalformedInput, i+1, err)
		}
		x := make(dynamo.State, len(record)-1)
		for j := range x {
			x[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", dynamo.ErrMalformedInput, i+1, err)
			}
		}
		traj.Append(t, x)
	}

	if err := traj.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrMalformedInput, err)
	}
	return traj, nil
}
