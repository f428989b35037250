package sim

import (
	"fmt"
	"slices"
)

// StopMode decides when a batch's fetch session has served enough events.
type StopMode int

const (
	// StopFirst stops once any single user in the batch reached the target.
	StopFirst StopMode = iota
	// StopAll stops once every user in the batch reached the target.
	StopAll
)

// ValidStopModes is the set of recognized stop mode names.
var ValidStopModes = map[string]StopMode{"first": StopFirst, "all": StopAll}

func (m StopMode) String() string {
	switch m {
	case StopFirst:
		return "first"
	case StopAll:
		return "all"
	default:
		return fmt.Sprintf("StopMode(%d)", int(m))
	}
}

// ParseStopMode converts a CLI/YAML name into a StopMode.
func ParseStopMode(name string) (StopMode, error) {
	mode, ok := ValidStopModes[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown stop mode %q", ErrInvalidConfig, name)
	}
	return mode, nil
}

// FetchPolicy configures one simulated paginated fetch session.
type FetchPolicy struct {
	PageSize      int      // events returned per request; must be >= 1
	TargetPerUser int      // minimum served events a user needs
	Mode          StopMode // stop criterion evaluated at page boundaries
}

// BatchResult is the outcome of one batch fetch session.
type BatchResult struct {
	// Requests is the number of pages the session needed. Never below 1.
	Requests int
	// Served holds every batch user's served event count, including users
	// with zero events.
	Served map[UserID]int
	// Satisfied reports whether the stop criterion was met at a page
	// boundary. False means the event supply ran out first.
	Satisfied bool
}

// ServedEvents returns the total number of events delivered in the session.
func (r BatchResult) ServedEvents() int {
	total := 0
	for _, n := range r.Served {
		total += n
	}
	return total
}

// SimulateRequest models fetching the batch's events in pages of
// policy.PageSize, merged across users in ascending timestamp order.
//
// The stop criterion is only evaluated when a full page boundary is crossed.
// A trailing partial page never stops the session, so Requests counts the
// first page plus every boundary that did not satisfy the criterion.
//
// Panics if policy.PageSize < 1.
func SimulateRequest(batch []User, log EventLog, policy FetchPolicy) BatchResult {
	if policy.PageSize < 1 {
		panic(fmt.Sprintf("SimulateRequest: page size must be >= 1, got %d", policy.PageSize))
	}

	served := make(map[UserID]int, len(batch))
	events := make([]Event, 0, len(batch))
	for _, u := range batch {
		if _, dup := served[u.ID]; dup {
			continue
		}
		served[u.ID] = 0
		events = append(events, log[u.ID]...)
	}

	// Stable: timestamp ties keep batch order, then creation order.
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	tracker := newSatisfaction(len(served), policy.TargetPerUser)
	requests := 1
	for i, ev := range events {
		count, ok := served[ev.UserID]
		if !ok {
			continue
		}
		count++
		served[ev.UserID] = count
		tracker.observe(count)

		if (i+1)%policy.PageSize != 0 {
			continue
		}
		if tracker.met(policy.Mode) {
			return BatchResult{Requests: requests, Served: served, Satisfied: true}
		}
		requests++
	}
	return BatchResult{Requests: requests, Served: served}
}

// satisfaction tracks how many users reached the target so that the max/min
// checks at each page boundary are O(1).
//
//	max(served) >= target  <=>  satisfied > 0
//	min(served) >= target  <=>  satisfied == users
type satisfaction struct {
	users     int
	target    int
	satisfied int
}

func newSatisfaction(users, target int) *satisfaction {
	s := &satisfaction{users: users, target: target}
	if target <= 0 {
		s.satisfied = users
	}
	return s
}

// observe records that some user's served count just became count.
func (s *satisfaction) observe(count int) {
	if s.target > 0 && count == s.target {
		s.satisfied++
	}
}

func (s *satisfaction) met(mode StopMode) bool {
	switch mode {
	case StopFirst:
		return s.satisfied > 0
	case StopAll:
		return s.satisfied == s.users
	default:
		panic(fmt.Sprintf("unhandled stop mode %v", mode))
	}
}
