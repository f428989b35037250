package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fetch-sim/sim"
	"github.com/inference-sim/fetch-sim/sim/workload"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// parseFlags binds a fresh flag set to the package flag vars, which also
// resets them to their defaults.
func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerSharedFlags(fs)
	registerRepeatFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveSettings_Defaults(t *testing.T) {
	s, err := resolveSettings(parseFlags(t), testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(42), s.seed)
	assert.Equal(t, 10_000_000, s.population.Users)
	assert.Equal(t, workload.DefaultDistSpec(), s.population.Distribution)
	assert.Equal(t, workload.LastDays(testNow, 7), s.population.Window)
	assert.Equal(t, sim.DefaultScenarioConfig(), s.scenario)
	assert.Equal(t, sim.OrderRandom, s.order)
	assert.Equal(t, 100, s.repetitions)
}

func TestResolveSettings_BundleOverridesDefaults(t *testing.T) {
	// GIVEN a bundle that sets population, scenario and repeat fields
	path := writeConfig(t, `
seed: 9
population:
  users: 5000
  distribution: pareto
  params:
    xm: 2
    alpha: 1.5
  window_days: 3
scenario:
  page_size: 250
  max_total_requests: 0
repeat:
  repetitions: 12
  order: asc
  mode: first
`)

	// WHEN only --config is passed
	s, err := resolveSettings(parseFlags(t, "--config", path), testNow)
	require.NoError(t, err)

	// THEN bundle values replace the defaults and untouched fields keep them
	assert.Equal(t, int64(9), s.seed)
	assert.Equal(t, 5000, s.population.Users)
	assert.Equal(t, "pareto", s.population.Distribution.Type)
	assert.Equal(t, 1.5, s.population.Distribution.Params["alpha"])
	assert.Equal(t, workload.LastDays(testNow, 3), s.population.Window)
	assert.Equal(t, 250, s.scenario.PageSize)
	assert.Equal(t, 0, s.scenario.MaxTotalRequests)
	assert.Equal(t, 100, s.scenario.ChunkSize)
	assert.Equal(t, 100, s.scenario.TargetPerUser)
	assert.Equal(t, sim.StopFirst, s.scenario.Mode)
	assert.Equal(t, sim.OrderAscending, s.order)
	assert.Equal(t, 12, s.repetitions)
}

func TestResolveSettings_ExplicitFlagsOverrideBundle(t *testing.T) {
	path := writeConfig(t, `
seed: 9
population:
  users: 5000
scenario:
  page_size: 250
repeat:
  order: asc
  mode: first
`)

	s, err := resolveSettings(parseFlags(t,
		"--config", path,
		"--seed", "3",
		"--users", "70",
		"--page-size", "10",
		"--order", "desc",
		"--mode", "all",
	), testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.seed)
	assert.Equal(t, 70, s.population.Users)
	assert.Equal(t, 10, s.scenario.PageSize)
	assert.Equal(t, sim.OrderDescending, s.order)
	assert.Equal(t, sim.StopAll, s.scenario.Mode)
}

func TestResolveSettings_DistributionFlags(t *testing.T) {
	s, err := resolveSettings(parseFlags(t, "--dist", "exponential", "--dist-params", "rate=0.25"), testNow)
	require.NoError(t, err)
	assert.Equal(t, workload.DistSpec{Type: "exponential", Params: map[string]float64{"rate": 0.25}}, s.population.Distribution)

	// a new family without its parameters is rejected
	_, err = resolveSettings(parseFlags(t, "--dist", "pareto"), testNow)
	assert.ErrorIs(t, err, workload.ErrInvalidDistribution)
}

func TestResolveSettings_WindowEnd(t *testing.T) {
	s, err := resolveSettings(parseFlags(t, "--window-end", "2023-01-02T00:00:00Z", "--window-days", "1"), testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), s.population.Window.End)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), s.population.Window.Start)

	_, err = resolveSettings(parseFlags(t, "--window-end", "yesterday"), testNow)
	assert.Error(t, err)
}

func TestResolveSettings_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero page size", []string{"--page-size", "0"}},
		{"negative ceiling", []string{"--max-requests", "-1"}},
		{"unknown order", []string{"--order", "sideways"}},
		{"unknown mode", []string{"--mode", "some"}},
		{"non-numeric param", []string{"--dist-params", "mu=zero,sigma=2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveSettings(parseFlags(t, tt.args...), testNow)
			assert.Error(t, err)
		})
	}
}

func TestResolveSettings_UnknownBundleKey(t *testing.T) {
	path := writeConfig(t, "scenario:\n  pagesize: 10\n")
	_, err := resolveSettings(parseFlags(t, "--config", path), testNow)
	assert.Error(t, err)
}

func TestParseDistParams(t *testing.T) {
	got, err := parseDistParams(map[string]string{"mu": "0.5", "sigma": "2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"mu": 0.5, "sigma": 2}, got)

	_, err = parseDistParams(map[string]string{"mu": "x"})
	assert.Error(t, err)
}
