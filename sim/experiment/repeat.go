package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/workload"
)

// RepeatConfig configures a repeated-simulation experiment.
type RepeatConfig struct {
	Population  workload.PopulationSpec
	Scenario    sim.ScenarioConfig
	Order       sim.OrderPolicy
	Repetitions int
	Workers     int
}

// Validate checks the configuration before any work is scheduled.
func (c RepeatConfig) Validate() error {
	if c.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions must be >= 1, got %d", sim.ErrInvalidConfig, c.Repetitions)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", sim.ErrInvalidConfig, c.Workers)
	}
	if _, ok := sim.ValidOrderPolicies[c.Order.String()]; !ok {
		return fmt.Errorf("%w: unknown order policy %v", sim.ErrInvalidConfig, c.Order)
	}
	if err := c.Population.Validate(); err != nil {
		return err
	}
	return c.Scenario.Validate()
}

// RunRepeated runs cfg.Repetitions independent generate+simulate passes on up
// to cfg.Workers goroutines and reduces them into one SimulationStats.
//
// Repetition i always uses key.ForRepetition(i), and the reduce is over
// results in repetition order, so the report does not depend on cfg.Workers
// or on scheduling. progress is advanced once per finished repetition.
func RunRepeated(ctx context.Context, cfg RepeatConfig, key sim.SimulationKey, progress Progress) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if progress == nil {
		progress = NopProgress{}
	}
	report := Report{
		ID:          uuid.New(),
		Policy:      Policy{Order: cfg.Order, Mode: cfg.Scenario.Mode}.String(),
		Repetitions: cfg.Repetitions,
		Workers:     cfg.Workers,
	}
	logger := logrus.WithField("run_id", report.ID.String())
	logger.Infof("starting %d repetitions of %s on %d workers", cfg.Repetitions, report.Policy, cfg.Workers)
	start := time.Now()

	results := make([]sim.ScenarioStats, cfg.Repetitions)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Repetitions; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := runRepetition(cfg, key.ForRepetition(i))
			if err != nil {
				return fmt.Errorf("repetition %d: %w", i, err)
			}
			results[i] = stats
			if err := progress.Add(1); err != nil {
				logger.Debugf("progress update failed: %v", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report.Stats = Reduce(results, cfg.Workers)
	report.Elapsed = time.Since(start)
	logger.Infof("finished in %s", report.Elapsed)
	return report, nil
}

// runRepetition generates a fresh population from key and runs one scenario.
func runRepetition(cfg RepeatConfig, key sim.SimulationKey) (sim.ScenarioStats, error) {
	rng := sim.NewPartitionedRNG(key)
	ds, err := workload.Generate(cfg.Population, rng)
	if err != nil {
		return sim.ScenarioStats{}, err
	}
	users := sim.OrderUsers(ds.Users, cfg.Order, rng.ForSubsystem(sim.SubsystemOrdering))
	return sim.SimulateScenario(users, ds.Events, cfg.Scenario), nil
}

// Reduce folds results into shards contiguous partial aggregates and merges
// them. Because Fold and Merge are associative, the result is the same for
// any shard count.
func Reduce(results []sim.ScenarioStats, shards int) sim.SimulationStats {
	shards = max(1, min(shards, len(results)))
	var total sim.SimulationStats
	size := (len(results) + shards - 1) / shards
	for start := 0; start < len(results); start += size {
		end := min(start+size, len(results))
		var partial sim.SimulationStats
		for _, s := range results[start:end] {
			partial = partial.Fold(s)
		}
		total = total.Merge(partial)
	}
	return total
}
