package sim

import "time"

// UserID is the identity of a simulated user. Ids are 0-based and contiguous
// within one generated population.
type UserID int

// User is a member of the simulated population.
// ItemCount is drawn once at generation time and never changes.
//
// Containers must key on UserID, never on User: two records with the same ID
// are the same user even if ItemCount differs.
type User struct {
	ID        UserID
	ItemCount int
}

// Event is a single timestamped item produced by a user.
type Event struct {
	UserID    UserID
	Timestamp time.Time
}

// EventLog maps a user to the events it produced, in creation order.
// Users that produced no events are absent.
type EventLog map[UserID][]Event

// Count returns the number of events for id; a missing user has zero events.
func (l EventLog) Count(id UserID) int {
	return len(l[id])
}

// TotalEvents returns the number of events across all users.
func (l EventLog) TotalEvents() int {
	total := 0
	for _, events := range l {
		total += len(events)
	}
	return total
}
