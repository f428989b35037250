package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExperimentBundle holds experiment configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML"; they do not override CLI flags.
// String fields use empty string for "not set".
type ExperimentBundle struct {
	Seed       *int64           `yaml:"seed"`
	Population PopulationConfig `yaml:"population"`
	Scenario   ScenarioBundle   `yaml:"scenario"`
	Repeat     RepeatBundle     `yaml:"repeat"`
}

// PopulationConfig holds population generation settings.
type PopulationConfig struct {
	Users        *int               `yaml:"users"`
	Distribution string             `yaml:"distribution"`
	Params       map[string]float64 `yaml:"params"`
	WindowDays   *float64           `yaml:"window_days"`
}

// ScenarioBundle holds batch simulation settings.
type ScenarioBundle struct {
	PageSize         *int `yaml:"page_size"`
	ChunkSize        *int `yaml:"chunk_size"`
	MaxTotalRequests *int `yaml:"max_total_requests"`
	TargetPerUser    *int `yaml:"target_per_user"`
}

// RepeatBundle holds repeated-simulation settings.
type RepeatBundle struct {
	Repetitions *int   `yaml:"repetitions"`
	Workers     *int   `yaml:"workers"`
	Order       string `yaml:"order"`
	Mode        string `yaml:"mode"`
}

// LoadExperimentBundle reads and parses a YAML experiment file.
// Unknown keys are rejected so typos surface as errors.
func LoadExperimentBundle(path string) (*ExperimentBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment config: %w", err)
	}
	var bundle ExperimentBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing experiment config: %w", err)
	}
	return &bundle, nil
}

// Validate checks the names and ranges of every field that is set.
func (b *ExperimentBundle) Validate() error {
	if b.Population.Users != nil && *b.Population.Users < 0 {
		return fmt.Errorf("%w: population.users must be >= 0, got %d", ErrInvalidConfig, *b.Population.Users)
	}
	if b.Population.WindowDays != nil && *b.Population.WindowDays < 0 {
		return fmt.Errorf("%w: population.window_days must be >= 0, got %g", ErrInvalidConfig, *b.Population.WindowDays)
	}
	if b.Repeat.Repetitions != nil && *b.Repeat.Repetitions < 1 {
		return fmt.Errorf("%w: repeat.repetitions must be >= 1, got %d", ErrInvalidConfig, *b.Repeat.Repetitions)
	}
	if b.Repeat.Workers != nil && *b.Repeat.Workers < 1 {
		return fmt.Errorf("%w: repeat.workers must be >= 1, got %d", ErrInvalidConfig, *b.Repeat.Workers)
	}
	if b.Repeat.Order != "" {
		if _, err := ParseOrderPolicy(b.Repeat.Order); err != nil {
			return err
		}
	}
	if b.Repeat.Mode != "" {
		if _, err := ParseStopMode(b.Repeat.Mode); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo overrides cfg with every scenario field set in the bundle.
func (s ScenarioBundle) ApplyTo(cfg *ScenarioConfig) {
	if s.PageSize != nil {
		cfg.PageSize = *s.PageSize
	}
	if s.ChunkSize != nil {
		cfg.ChunkSize = *s.ChunkSize
	}
	if s.MaxTotalRequests != nil {
		cfg.MaxTotalRequests = *s.MaxTotalRequests
	}
	if s.TargetPerUser != nil {
		cfg.TargetPerUser = *s.TargetPerUser
	}
}
