package workload

import (
	"fmt"
	"time"
)

// PopulationSpec describes a synthetic population and its activity window.
type PopulationSpec struct {
	Users        int
	Distribution DistSpec
	Window       Window
}

// DefaultPopulationSpec returns the reference configuration: ten million
// users, log-normal(0, 2) item counts, events over the seven days before now.
func DefaultPopulationSpec(now time.Time) PopulationSpec {
	return PopulationSpec{
		Users:        10_000_000,
		Distribution: DefaultDistSpec(),
		Window:       LastDays(now, 7),
	}
}

// Validate checks the spec without generating anything.
func (s PopulationSpec) Validate() error {
	if s.Users < 0 {
		return fmt.Errorf("population size must be >= 0, got %d", s.Users)
	}
	if _, err := NewItemCountSampler(s.Distribution); err != nil {
		return err
	}
	return s.Window.Validate()
}
