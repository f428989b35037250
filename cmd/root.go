package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/experiment"
	"github.com/inference-sim/fetch-sim/sim/workload"
)

var (
	// Shared CLI flags
	seed        int64             // Seed for population, event and ordering draws
	logLevel    string            // Log verbosity level
	configPath  string            // Optional YAML experiment bundle
	resultsPath string            // Optional JSON results file
	numUsers    int               // Population size
	distType    string            // Item count distribution family
	distParams  map[string]string // Distribution parameters, e.g. mu=0,sigma=2
	windowDays  float64           // Length of the event window in days
	windowEnd   string            // RFC3339 end of the event window; empty = now
	pageSize    int               // Events per simulated request
	chunkSize   int               // Users per batch
	maxRequests int               // Request ceiling per scenario; 0 = unlimited
	targetItems int               // Minimum served events per user
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fetch-sim",
	Short: "Simulates paginated recent-item fetches over a synthetic user population",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// settings is the fully resolved configuration of one invocation.
type settings struct {
	seed        int64
	population  workload.PopulationSpec
	scenario    sim.ScenarioConfig
	repetitions int
	workers     int
	order       sim.OrderPolicy
}

// resolveSettings layers defaults, then the YAML bundle, then flags the user
// set explicitly.
func resolveSettings(flags *pflag.FlagSet, now time.Time) (settings, error) {
	s := settings{
		seed:        seed,
		population:  workload.DefaultPopulationSpec(now),
		scenario:    sim.DefaultScenarioConfig(),
		repetitions: repetitions,
		workers:     workers,
		order:       sim.OrderRandom,
	}
	days := 7.0

	if configPath != "" {
		bundle, err := sim.LoadExperimentBundle(configPath)
		if err != nil {
			return settings{}, err
		}
		if err := bundle.Validate(); err != nil {
			return settings{}, err
		}
		applyBundle(&s, &days, bundle)
	}

	if flags.Changed("seed") {
		s.seed = seed
	}
	if flags.Changed("repetitions") {
		s.repetitions = repetitions
	}
	if flags.Changed("workers") {
		s.workers = workers
	}
	if flags.Changed("users") {
		s.population.Users = numUsers
	}
	if flags.Changed("dist") {
		s.population.Distribution = workload.DistSpec{Type: distType, Params: map[string]float64{}}
	}
	if flags.Changed("dist-params") {
		params, err := parseDistParams(distParams)
		if err != nil {
			return settings{}, err
		}
		s.population.Distribution.Params = params
	}
	if flags.Changed("window-days") {
		days = windowDays
	}
	end := now
	if windowEnd != "" {
		t, err := time.Parse(time.RFC3339, windowEnd)
		if err != nil {
			return settings{}, fmt.Errorf("parsing --window-end: %w", err)
		}
		end = t
	}
	s.population.Window = workload.LastDays(end, days)

	if flags.Changed("page-size") {
		s.scenario.PageSize = pageSize
	}
	if flags.Changed("chunk-size") {
		s.scenario.ChunkSize = chunkSize
	}
	if flags.Changed("max-requests") {
		s.scenario.MaxTotalRequests = maxRequests
	}
	if flags.Changed("target") {
		s.scenario.TargetPerUser = targetItems
	}
	if flags.Changed("order") {
		o, err := sim.ParseOrderPolicy(orderName)
		if err != nil {
			return settings{}, err
		}
		s.order = o
	}
	if flags.Changed("mode") {
		m, err := sim.ParseStopMode(modeName)
		if err != nil {
			return settings{}, err
		}
		s.scenario.Mode = m
	}
	if err := s.population.Validate(); err != nil {
		return settings{}, err
	}
	if err := s.scenario.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func applyBundle(s *settings, days *float64, b *sim.ExperimentBundle) {
	if b.Seed != nil {
		s.seed = *b.Seed
	}
	if b.Population.Users != nil {
		s.population.Users = *b.Population.Users
	}
	if b.Population.Distribution != "" {
		s.population.Distribution = workload.DistSpec{Type: b.Population.Distribution, Params: b.Population.Params}
	} else if b.Population.Params != nil {
		s.population.Distribution.Params = b.Population.Params
	}
	if b.Population.WindowDays != nil {
		*days = *b.Population.WindowDays
	}
	b.Scenario.ApplyTo(&s.scenario)
	if b.Repeat.Repetitions != nil {
		s.repetitions = *b.Repeat.Repetitions
	}
	if b.Repeat.Workers != nil {
		s.workers = *b.Repeat.Workers
	}
	if b.Repeat.Order != "" {
		s.order, _ = sim.ParseOrderPolicy(b.Repeat.Order)
	}
	if b.Repeat.Mode != "" {
		s.scenario.Mode, _ = sim.ParseStopMode(b.Repeat.Mode)
	}
}

// parseDistParams converts --dist-params values into floats.
func parseDistParams(raw map[string]string) (map[string]float64, error) {
	params := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("distribution parameter %q: %w", k, err)
		}
		params[k] = f
	}
	return params, nil
}

// writeResults writes v as JSON to resultsPath when it is set.
func writeResults(v any) {
	if resultsPath == "" {
		return
	}
	f, err := os.Create(resultsPath)
	if err != nil {
		logrus.Fatalf("Error creating results file %s: %v", resultsPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logrus.Fatalf("Error closing results file %s: %v", resultsPath, closeErr)
		}
	}()
	if err := experiment.WriteJSON(f, v); err != nil {
		logrus.Fatalf("Error writing results file %s: %v", resultsPath, err)
	}
	logrus.Infof("Wrote results to %s", resultsPath)
}

// registerSharedFlags binds the flags common to every subcommand.
func registerSharedFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&seed, "seed", 42, "Seed for population, event and ordering draws")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&configPath, "config", "", "Path to a YAML experiment config; explicit flags override it")
	fs.StringVar(&resultsPath, "results-path", "", "Write results as JSON to this file")

	// Population
	fs.IntVar(&numUsers, "users", 10_000_000, "Number of simulated users")
	fs.StringVar(&distType, "dist", "lognormal", "Item count distribution (lognormal, pareto, normal, exponential, constant)")
	fs.StringToStringVar(&distParams, "dist-params", map[string]string{"mu": "0", "sigma": "2"}, "Distribution parameters, e.g. mu=0,sigma=2")
	fs.Float64Var(&windowDays, "window-days", 7, "Length of the event window in days")
	fs.StringVar(&windowEnd, "window-end", "", "RFC3339 end of the event window (default now)")

	// Scenario
	fs.IntVar(&pageSize, "page-size", 500, "Events returned per request")
	fs.IntVar(&chunkSize, "chunk-size", 100, "Users per batch")
	fs.IntVar(&maxRequests, "max-requests", 12_500, "Request ceiling per scenario (0 = unlimited)")
	fs.IntVar(&targetItems, "target", 100, "Minimum served events per user")
}

// init sets up shared flags and subcommands
func init() {
	registerSharedFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(repeatCmd)
}
