package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/experiment"
)

var (
	// CLI flags for repeated simulations
	repetitions  int    // Number of independent generate+simulate runs
	workers      int    // Concurrent repetitions
	orderName    string // User ordering policy
	modeName     string // Stop mode
	showProgress bool   // Render a progress bar on stderr
)

// repeatCmd runs many independent simulations under one policy and reports
// the aggregate.
var repeatCmd = &cobra.Command{
	Use:   "repeat",
	Short: "Aggregate many independent simulations under one policy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveSettings(cmd.Flags(), time.Now())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		var progress experiment.Progress = experiment.NopProgress{}
		if showProgress {
			progress = experiment.NewBarProgress(cfg.repetitions, cmd.ErrOrStderr())
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := experiment.RunRepeated(ctx, experiment.RepeatConfig{
			Population:  cfg.population,
			Scenario:    cfg.scenario,
			Order:       cfg.order,
			Repetitions: cfg.repetitions,
			Workers:     cfg.workers,
		}, sim.NewSimulationKey(cfg.seed), progress)
		if err != nil {
			logrus.Fatalf("Repeated simulation failed: %v", err)
		}
		experiment.PrintReport(cmd.OutOrStdout(), report)
		writeResults(report)
	},
}

// registerRepeatFlags binds the flags only the repeat subcommand takes.
func registerRepeatFlags(fs *pflag.FlagSet) {
	fs.IntVar(&repetitions, "repetitions", 100, "Number of independent simulations")
	fs.IntVar(&workers, "workers", runtime.NumCPU(), "Simulations run concurrently")
	fs.StringVar(&orderName, "order", "random", "User ordering (asc, desc, random)")
	fs.StringVar(&modeName, "mode", "all", "Stop mode (first, all)")
	fs.BoolVar(&showProgress, "progress", true, "Show a progress bar")
}

func init() {
	registerRepeatFlags(repeatCmd.Flags())
}
