package config

import (
	"fmt"
	"os"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"gopkg.in/yaml.v3"
)

const DefaultModel = "oscillator"

// Config is one run as read from a YAML file or assembled from flags.
type Config struct {
	Model    string             `yaml:"model"`
	Method   string             `yaml:"method"`
	T0       float64            `yaml:"t0"`
	H        float64            `yaml:"h"`
	Steps    int                `yaml:"steps"`
	Initial  []float64          `yaml:"initial,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Compare  bool               `yaml:"compare"`
	Compress bool               `yaml:"compress"`
}

func DefaultConfig() *Config {
	cfg, err := ForModel(DefaultModel)
	if err != nil {
		panic(err)
	}
	return cfg
}

// ForModel returns the catalog defaults of a model as a Config.
func ForModel(name string) (*Config, error) {
	e, err := models.Get(name)
	if err != nil {
		return nil, err
	}
	params := make(map[string]float64, len(e.Defaults))
	for k, v := range e.Defaults {
		params[k] = v
	}
	return &Config{
		Model:   e.Name,
		Method:  string(e.Config.Method),
		T0:      e.Config.T0,
		H:       e.Config.H,
		Steps:   e.Config.Steps,
		Initial: e.Initial.Clone(),
		Params:  params,
	}, nil
}

// Load reads path over the defaults of the model named in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return DefaultConfig(), nil
	}
	cfg, err := Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a YAML mapping over the defaults of the model it names, or
// of DefaultModel when it names none. Keys Config does not know are ignored.
func Decode(node *yaml.Node) (*Config, error) {
	var head struct {
		Model string `yaml:"model"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, err
	}
	if head.Model == "" {
		head.Model = DefaultModel
	}

	cfg, err := ForModel(head.Model)
	if err != nil {
		return nil, err
	}
	if err := node.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	e, err := models.Get(c.Model)
	if err != nil {
		return err
	}
	if _, err := integrators.New(dynamo.Kind(c.Method)); err != nil {
		return err
	}
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if len(c.Initial) != 0 && len(c.Initial) != len(e.Initial) {
		return fmt.Errorf("%w: %s takes %d initial values, got %d", dynamo.ErrDimensionMismatch, c.Model, len(e.Initial), len(c.Initial))
	}
	for k := range c.Params {
		if _, ok := e.Defaults[k]; !ok {
			return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrInvalidParameter, c.Model, k)
		}
	}
	return nil
}

func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		T0:     c.T0,
		H:      c.H,
		Steps:  c.Steps,
		Method: dynamo.Kind(c.Method),
	}
}

// End is the time of the last sample of a complete run.
func (c *Config) End() float64 { return c.RunConfig().End() }

// InitialState returns the configured initial state, or the model's
// default when none is set.
func (c *Config) InitialState() dynamo.State {
	if len(c.Initial) > 0 {
		return dynamo.State(c.Initial).Clone()
	}
	e, err := models.Get(c.Model)
	if err != nil {
		return nil
	}
	return e.Initial.Clone()
}

// Build constructs the configured system.
func (c *Config) Build() (dynamo.System, error) {
	return models.Build(c.Model, models.Params(c.Params))
}

func (c *Config) Clone() *Config {
	out := *c
	out.Initial = append([]float64(nil), c.Initial...)
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
