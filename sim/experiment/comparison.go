// Package experiment runs scenario configurations against generated
// populations: side-by-side policy comparisons over one shared dataset, and
// repeated independent simulations reduced into a SimulationStats.
package experiment

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/workload"
)

// Policy is one ordering + stop mode combination.
type Policy struct {
	Order sim.OrderPolicy
	Mode  sim.StopMode
}

func (p Policy) String() string {
	return p.Order.String() + " " + p.Mode.String()
}

// DefaultPolicies returns every ordering under the "all" stop mode, then every
// ordering under "first".
func DefaultPolicies() []Policy {
	var out []Policy
	for _, mode := range []sim.StopMode{sim.StopAll, sim.StopFirst} {
		for _, order := range []sim.OrderPolicy{sim.OrderAscending, sim.OrderDescending, sim.OrderRandom} {
			out = append(out, Policy{Order: order, Mode: mode})
		}
	}
	return out
}

// Outcome is the result of one policy over a dataset.
type Outcome struct {
	Policy string            `json:"policy"`
	Stats  sim.ScenarioStats `json:"stats"`
}

// RunComparison simulates every policy over the same dataset. cfg.Mode is
// replaced by each policy's mode. Random orderings draw from the ordering
// subsystem of rng, in policy order.
func RunComparison(ds workload.Dataset, cfg sim.ScenarioConfig, policies []Policy, rng *sim.PartitionedRNG) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(policies))
	for _, p := range policies {
		run := cfg
		run.Mode = p.Mode
		if err := run.Validate(); err != nil {
			return nil, fmt.Errorf("policy %s: %w", p, err)
		}
		users := sim.OrderUsers(ds.Users, p.Order, rng.ForSubsystem(sim.SubsystemOrdering))
		stats := sim.SimulateScenario(users, ds.Events, run)
		logrus.Debugf("policy %s: %d requests over %d batches", p, stats.Requests, stats.Batches)
		outcomes = append(outcomes, Outcome{Policy: p.String(), Stats: stats})
	}
	return outcomes, nil
}
