package automation

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/logger"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/sim"
	"github.com/san-kum/odelab/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of runs, read from YAML.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. In YAML it is a run config, optionally
// starting from a preset, plus a name.
type Step struct {
	Name   string
	Config *config.Config
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Model  string `yaml:"model"`
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	s.Name = head.Name

	if head.Preset == "" {
		cfg, err := config.Decode(node)
		if err != nil {
			return fmt.Errorf("step %q: %w", head.Name, err)
		}
		s.Config = cfg
		return nil
	}

	cfg := config.GetPreset(head.Model, head.Preset)
	if cfg == nil {
		return fmt.Errorf("step %q: unknown preset %q for model %q", head.Name, head.Preset, head.Model)
	}
	if err := node.Decode(cfg); err != nil {
		return fmt.Errorf("step %q: %w", head.Name, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("step %q: %w", head.Name, err)
	}
	s.Config = cfg
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidParameter, scenario.Name)
	}
	for i := range scenario.Steps {
		if scenario.Steps[i].Name == "" {
			scenario.Steps[i].Name = fmt.Sprintf("%d-%s", i+1, scenario.Steps[i].Config.Model)
		}
	}
	return &scenario, nil
}

// StepResult is the outcome of one scenario step. Err holds a truncation
// or any other run failure; RunID is set once the step is stored.
type StepResult struct {
	Step       Step
	Trajectory *dynamo.Trajectory
	RunID      string
	Err        error
}

// RunScenario executes the steps concurrently and, when st is not nil,
// stores each run that produced samples. Results keep step order; only
// cancellation or a storage failure fails the call.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, workers int) ([]StepResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]StepResult, len(scenario.Steps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, step := range scenario.Steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traj, err := runStep(step.Config)
			results[i] = StepResult{Step: step, Trajectory: traj, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if st == nil {
		return results, nil
	}
	for i := range results {
		r := &results[i]
		if r.Trajectory == nil || r.Trajectory.Len() == 0 {
			continue
		}
		id, err := st.WithCompression(r.Step.Config.Compress).Save(Metadata(r.Step.Config), r.Trajectory)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", r.Step.Name, err)
		}
		r.RunID = id
		logger.Info().Str("step", r.Step.Name).Str("run", id).Msg("scenario step stored")
	}
	return results, nil
}

func runStep(cfg *config.Config) (*dynamo.Trajectory, error) {
	sys, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(dynamo.Kind(cfg.Method))
	if err != nil {
		return nil, err
	}
	return sim.New(stepper).Run(sys, cfg.InitialState(), cfg.RunConfig())
}

// Metadata describes a run of cfg for storage.
func Metadata(cfg *config.Config) storage.RunMetadata {
	meta := storage.RunMetadata{
		Model:   cfg.Model,
		Method:  cfg.Method,
		T0:      cfg.T0,
		H:       cfg.H,
		Steps:   cfg.Steps,
		Params:  cfg.Params,
		Initial: cfg.InitialState(),
	}
	if e, err := models.Get(cfg.Model); err == nil {
		meta.Labels = e.Labels
	}
	return meta
}
