// Package storage archives runs on disk, one directory per run holding
// metadata.json and the sampled states as CSV, optionally zstd-compressed.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/logger"
)

const (
	metadataFile   = "metadata.json"
	statesFile     = "states.csv"
	compressedFile = "states.csv.zst"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir  string
	compress bool
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// WithCompression makes subsequent saves write states.csv.zst.
func (s *Store) WithCompression(on bool) *Store {
	s.compress = on
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Method     string             `json:"method"`
	T0         float64            `json:"t0"`
	H          float64            `json:"h"`
	Steps      int                `json:"steps"`
	Samples    int                `json:"samples"`
	Truncated  bool               `json:"truncated"`
	Compressed bool               `json:"compressed"`
	Params     map[string]float64 `json:"params,omitempty"`
	Initial    []float64          `json:"initial"`
	Labels     []string           `json:"labels,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes traj under a fresh run directory and returns its id. ID,
// Timestamp, Samples, Truncated and Compressed in meta are filled in.
func (s *Store) Save(meta RunMetadata, traj *dynamo.Trajectory) (string, error) {
	if traj == nil {
		return "", fmt.Errorf("%w: nil trajectory", dynamo.ErrInvalidParameter)
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.newRunDir(meta.Model, now)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Samples = traj.Len()
	meta.Truncated = traj.Truncated
	meta.Compressed = s.compress

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	name := statesFile
	if s.compress {
		name = compressedFile
	}
	f, err := os.Create(filepath.Join(runDir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if s.compress {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return "", fmt.Errorf("failed to create encoder: %w", err)
		}
		w = enc
	}

	if err := WriteCSV(w, traj); err != nil {
		return "", err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return "", err
		}
	}

	logger.Info().Str("run", runID).Int("samples", meta.Samples).Bool("compressed", s.compress).Msg("run saved")
	return runID, f.Close()
}

func (s *Store) newRunDir(model string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", model, now.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			logger.Debug().Err(err).Str("dir", entry.Name()).Msg("skipping unreadable run")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrMalformedInput, runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads the states of a run, decompressing when needed.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	runDir := filepath.Join(s.baseDir, runID)
	f, err := os.Open(filepath.Join(runDir, compressedFile))
	compressed := err == nil
	if errors.Is(err, os.ErrNotExist) {
		f, err = os.Open(filepath.Join(runDir, statesFile))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	traj, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	traj.Truncated = meta.Truncated
	return traj, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}
