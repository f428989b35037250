package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/inference-sim/fetch-sim/sim"
)

// ErrInvertedWindow is returned when a Window ends before it starts.
var ErrInvertedWindow = errors.New("time window ends before it starts")

// Window is the closed interval [Start, End] that event timestamps fall in.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the window of the given length ending at now.
func LastDays(now time.Time, days float64) Window {
	return Window{Start: now.Add(-time.Duration(days * float64(24*time.Hour))), End: now}
}

// Validate rejects inverted windows.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: start=%s end=%s", ErrInvertedWindow,
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Seconds returns the whole number of seconds the window spans.
func (w Window) Seconds() int64 {
	return int64(w.End.Sub(w.Start) / time.Second)
}

// GenerateEvents draws ItemCount timestamps per user, each a whole number of
// seconds after w.Start, uniform over [0, w.Seconds()]. Users with no items
// are left out of the log. The window is validated before anything is drawn.
func GenerateEvents(users []sim.User, w Window, rng *rand.Rand) (sim.EventLog, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	span := w.Seconds() + 1
	log := make(sim.EventLog)
	for _, u := range users {
		if u.ItemCount == 0 {
			continue
		}
		events := make([]sim.Event, u.ItemCount)
		for i := range events {
			offset := time.Duration(rng.Int64N(span)) * time.Second
			events[i] = sim.Event{UserID: u.ID, Timestamp: w.Start.Add(offset)}
		}
		log[u.ID] = events
	}
	return log, nil
}
