package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/experiment"
	"github.com/inference-sim/fetch-sim/sim/workload"
)

// compareCmd runs every ordering x stop mode combination over one population.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare ordering and stop-mode policies over one generated population",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveSettings(cmd.Flags(), time.Now())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Generating %d users (%s, seed=%d)", cfg.population.Users, cfg.population.Distribution.Type, cfg.seed)
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.seed))
		ds, err := workload.Generate(cfg.population, rng)
		if err != nil {
			logrus.Fatalf("Generating population: %v", err)
		}
		total := ds.TotalEvents()
		fmt.Fprintf(cmd.OutOrStdout(), "total events: %d\n", total)

		outcomes, err := experiment.RunComparison(ds, cfg.scenario, experiment.DefaultPolicies(), rng)
		if err != nil {
			logrus.Fatalf("Running comparison: %v", err)
		}
		for _, o := range outcomes {
			experiment.PrintOutcome(cmd.OutOrStdout(), o)
		}

		writeResults(experiment.ComparisonReport{Seed: cfg.seed, TotalEvents: total, Outcomes: outcomes})
		logrus.Info("Comparison complete.")
	},
}
