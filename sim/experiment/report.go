package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/inference-sim/fetch-sim/sim"
)

// Report is the result of a repeated-simulation experiment.
type Report struct {
	ID          uuid.UUID           `json:"id"`
	Policy      string              `json:"policy"`
	Repetitions int                 `json:"repetitions"`
	Workers     int                 `json:"workers"`
	Stats       sim.SimulationStats `json:"stats"`
	Elapsed     time.Duration       `json:"elapsed_ns"`
}

// ComparisonReport is the result of a policy comparison over one dataset.
type ComparisonReport struct {
	Seed        int64     `json:"seed"`
	TotalEvents int       `json:"total_events"`
	Outcomes    []Outcome `json:"outcomes"`
}

// PrintOutcome writes one scenario's statistics in human-readable form.
func PrintOutcome(w io.Writer, o Outcome) {
	s := o.Stats
	fmt.Fprintf(w, "=== %s ===\n", o.Policy)
	fmt.Fprintf(w, "Requests              : %d\n", s.Requests)
	fmt.Fprintf(w, "Users                 : %d\n", s.Users)
	fmt.Fprintf(w, "Events                : %d\n", s.Events)
	fmt.Fprintf(w, "Batches               : %d (%d unsatisfied)\n", s.Batches, s.UnsatisfiedBatches)
	fmt.Fprintf(w, "Avg Events per User   : %d\n", s.AvgEventsPerUser)
	fmt.Fprintf(w, "Avg Events per Request: %d\n", s.AvgEventsPerRequest)
}

// PrintReport writes a repeated-simulation report in human-readable form.
func PrintReport(w io.Writer, r Report) {
	s := r.Stats
	fmt.Fprintf(w, "=== %s x%d ===\n", r.Policy, r.Repetitions)
	fmt.Fprintf(w, "Scenarios             : %d\n", s.N)
	fmt.Fprintf(w, "Total Events          : %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Total Users           : %d\n", s.TotalUsers)
	fmt.Fprintf(w, "Total Requests        : %d\n", s.TotalRequests)
	fmt.Fprintf(w, "Unsatisfied Batches   : %d\n", s.UnsatisfiedBatches)
	fmt.Fprintf(w, "Avg Events            : %d\n", s.AvgEvents)
	fmt.Fprintf(w, "Avg Requests          : %d\n", s.AvgRequests)
	fmt.Fprintf(w, "Avg Events per User   : %d\n", s.AvgEventsPerUser)
	fmt.Fprintf(w, "Avg Events per Request: %d\n", s.AvgEventsPerRequest)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
