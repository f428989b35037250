package workload

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fetch-sim/sim"
)

// Dataset is one generated population and its event log. It is read-only
// once built and may be shared by any number of scenario runs.
type Dataset struct {
	Users  []sim.User
	Events sim.EventLog
}

// TotalEvents returns the number of generated events.
func (d Dataset) TotalEvents() int {
	return d.Events.TotalEvents()
}

// Generate builds a Dataset from spec. Item counts are drawn from the
// population subsystem and timestamps from the events subsystem, so the
// result is fully determined by spec and the RNG's key.
func Generate(spec PopulationSpec, rng *sim.PartitionedRNG) (Dataset, error) {
	sampler, err := NewItemCountSampler(spec.Distribution)
	if err != nil {
		return Dataset{}, fmt.Errorf("population distribution: %w", err)
	}
	if err := spec.Window.Validate(); err != nil {
		return Dataset{}, err
	}
	if spec.Users < 0 {
		return Dataset{}, fmt.Errorf("population size must be >= 0, got %d", spec.Users)
	}

	users := GenerateUsers(spec.Users, sampler, rng.ForSubsystem(sim.SubsystemPopulation))
	events, err := GenerateEvents(users, spec.Window, rng.ForSubsystem(sim.SubsystemEvents))
	if err != nil {
		return Dataset{}, err
	}
	ds := Dataset{Users: users, Events: events}
	logrus.Debugf("generated %d users with %d events (%s)", len(users), ds.TotalEvents(), spec.Distribution.Type)
	return ds, nil
}
