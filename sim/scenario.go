package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every scenario configuration error.
var ErrInvalidConfig = errors.New("invalid simulation config")

// ScenarioConfig configures one sweep of all batches.
type ScenarioConfig struct {
	FetchPolicy
	ChunkSize        int // users per batch
	MaxTotalRequests int // request ceiling for the whole scenario; 0 = unlimited
}

// DefaultScenarioConfig returns the reference configuration.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		FetchPolicy: FetchPolicy{
			PageSize:      500,
			TargetPerUser: 100,
			Mode:          StopAll,
		},
		ChunkSize:        100,
		MaxTotalRequests: 12_500,
	}
}

// Validate rejects configurations the simulator cannot run.
func (c ScenarioConfig) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidConfig, c.PageSize)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be >= 1, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.TargetPerUser < 0 {
		return fmt.Errorf("%w: target per user must be >= 0, got %d", ErrInvalidConfig, c.TargetPerUser)
	}
	if c.MaxTotalRequests < 0 {
		return fmt.Errorf("%w: max total requests must be >= 0, got %d", ErrInvalidConfig, c.MaxTotalRequests)
	}
	if c.Mode != StopFirst && c.Mode != StopAll {
		return fmt.Errorf("%w: unknown stop mode %v", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// ScenarioStats accumulates batch results for one scenario.
// Averages are integer-truncated quotients of the totals and are re-derived
// on every Update; an average with a zero denominator is 0.
type ScenarioStats struct {
	Requests           int `json:"requests"`
	Users              int `json:"users"`
	Events             int `json:"events"`
	Batches            int `json:"batches"`
	UnsatisfiedBatches int `json:"unsatisfied_batches"`

	AvgEventsPerUser    int `json:"avg_events_per_user"`
	AvgEventsPerRequest int `json:"avg_events_per_request"`
}

// Update returns s with one more batch folded in.
func (s ScenarioStats) Update(res BatchResult) ScenarioStats {
	s.Requests += res.Requests
	s.Users += len(res.Served)
	s.Events += res.ServedEvents()
	s.Batches++
	if !res.Satisfied {
		s.UnsatisfiedBatches++
	}
	s.AvgEventsPerUser = quotient(s.Events, s.Users)
	s.AvgEventsPerRequest = quotient(s.Events, s.Requests)
	return s
}

// SimulateScenario partitions users into consecutive chunks of cfg.ChunkSize,
// in the order given, and simulates a fetch session per chunk. Processing
// stops after the chunk that brings the request total to the ceiling.
// The last chunk may be short.
func SimulateScenario(users []User, log EventLog, cfg ScenarioConfig) ScenarioStats {
	if cfg.ChunkSize < 1 {
		panic(fmt.Sprintf("SimulateScenario: chunk size must be >= 1, got %d", cfg.ChunkSize))
	}
	var stats ScenarioStats
	for start := 0; start < len(users); start += cfg.ChunkSize {
		end := min(start+cfg.ChunkSize, len(users))
		stats = stats.Update(SimulateRequest(users[start:end], log, cfg.FetchPolicy))
		if cfg.MaxTotalRequests > 0 && stats.Requests >= cfg.MaxTotalRequests {
			logrus.Debugf("scenario hit request ceiling %d after %d batches", cfg.MaxTotalRequests, stats.Batches)
			break
		}
	}
	return stats
}

// quotient is integer division that reports 0 for a zero denominator.
func quotient(num, den int) int {
	if den == 0 {
		return 0
	}
	return num / den
}
