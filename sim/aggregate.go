package sim

// SimulationStats aggregates ScenarioStats across independent full
// simulations. It is a value type: Fold and Merge return new values and never
// mutate their receiver, so partial aggregates can be built on separate
// goroutines and combined in any grouping.
type SimulationStats struct {
	N                  int `json:"n"`
	TotalEvents        int `json:"total_events"`
	TotalUsers         int `json:"total_users"`
	TotalRequests      int `json:"total_requests"`
	UnsatisfiedBatches int `json:"unsatisfied_batches"`

	AvgEvents           int `json:"avg_events"`
	AvgRequests         int `json:"avg_requests"`
	AvgEventsPerUser    int `json:"avg_events_per_user"`
	AvgEventsPerRequest int `json:"avg_events_per_request"`
}

// Fold returns s with one more scenario added.
func (s SimulationStats) Fold(scenario ScenarioStats) SimulationStats {
	return s.Merge(SimulationStats{
		N:                  1,
		TotalEvents:        scenario.Events,
		TotalUsers:         scenario.Users,
		TotalRequests:      scenario.Requests,
		UnsatisfiedBatches: scenario.UnsatisfiedBatches,
	})
}

// Merge returns the aggregate of s and other. Merge is associative and
// commutative; the zero value is its identity.
func (s SimulationStats) Merge(other SimulationStats) SimulationStats {
	out := SimulationStats{
		N:                  s.N + other.N,
		TotalEvents:        s.TotalEvents + other.TotalEvents,
		TotalUsers:         s.TotalUsers + other.TotalUsers,
		TotalRequests:      s.TotalRequests + other.TotalRequests,
		UnsatisfiedBatches: s.UnsatisfiedBatches + other.UnsatisfiedBatches,
	}
	out.AvgEvents = quotient(out.TotalEvents, out.N)
	out.AvgRequests = quotient(out.TotalRequests, out.N)
	out.AvgEventsPerUser = quotient(out.TotalEvents, out.TotalUsers)
	out.AvgEventsPerRequest = quotient(out.TotalEvents, out.TotalRequests)
	return out
}
