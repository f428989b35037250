package sim

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// logFromOffsets builds an EventLog where each user's events sit at the given
// second offsets from testEpoch.
func logFromOffsets(offsets map[UserID][]int) EventLog {
	log := make(EventLog)
	for id, secs := range offsets {
		for _, s := range secs {
			log[id] = append(log[id], Event{UserID: id, Timestamp: testEpoch.Add(time.Duration(s) * time.Second)})
		}
	}
	return log
}

// randomBatch generates n users with random item counts and a matching log.
func randomBatch(rng *rand.Rand, n, maxItems int) ([]User, EventLog) {
	users := make([]User, n)
	log := make(EventLog)
	for i := range users {
		id := UserID(i)
		users[i] = User{ID: id, ItemCount: rng.IntN(maxItems + 1)}
		for j := 0; j < users[i].ItemCount; j++ {
			log[id] = append(log[id], Event{UserID: id, Timestamp: testEpoch.Add(time.Duration(rng.IntN(7*86400)) * time.Second)})
		}
	}
	return users, log
}

func TestSimulateRequest_ZeroEventUserNeverSatisfiesAll(t *testing.T) {
	// GIVEN three users with {2, 0, 5} events and page size 3
	users := []User{{ID: 0, ItemCount: 2}, {ID: 1, ItemCount: 0}, {ID: 2, ItemCount: 5}}
	log := logFromOffsets(map[UserID][]int{
		0: {1, 4},
		2: {0, 2, 3, 5, 6},
	})

	// WHEN every user must reach 2 events
	res := SimulateRequest(users, log, FetchPolicy{PageSize: 3, TargetPerUser: 2, Mode: StopAll})

	// THEN both completed boundaries (after events 3 and 6) fail, and the
	// trailing seventh event cannot stop the session: 1 + 2 requests
	assert.Equal(t, 3, res.Requests)
	assert.False(t, res.Satisfied)
	assert.Equal(t, map[UserID]int{0: 2, 1: 0, 2: 5}, res.Served)
}

func TestSimulateRequest_FirstStopsOnAnySatisfiedUser(t *testing.T) {
	users := []User{{ID: 0, ItemCount: 2}, {ID: 1, ItemCount: 0}, {ID: 2, ItemCount: 5}}
	log := logFromOffsets(map[UserID][]int{
		0: {1, 4},
		2: {0, 2, 3, 5, 6},
	})

	// First page holds user 2 at t=0, user 0 at t=1, user 2 at t=2
	res := SimulateRequest(users, log, FetchPolicy{PageSize: 3, TargetPerUser: 2, Mode: StopFirst})

	assert.Equal(t, 1, res.Requests)
	assert.True(t, res.Satisfied)
	assert.Equal(t, map[UserID]int{0: 1, 1: 0, 2: 2}, res.Served)
}

func TestSimulateRequest_EmptyBatchEvents(t *testing.T) {
	users := []User{{ID: 3}, {ID: 4}}

	for _, mode := range []StopMode{StopFirst, StopAll} {
		t.Run(mode.String(), func(t *testing.T) {
			res := SimulateRequest(users, EventLog{}, FetchPolicy{PageSize: 10, TargetPerUser: 1, Mode: mode})
			assert.Equal(t, 1, res.Requests)
			assert.Equal(t, map[UserID]int{3: 0, 4: 0}, res.Served)
			assert.False(t, res.Satisfied)
		})
	}
}

func TestSimulateRequest_ExactMultipleCountsExtraRequest(t *testing.T) {
	// 4 events, page 2, target unreachable: boundaries at 2 and 4 both fail
	users := []User{{ID: 0, ItemCount: 4}}
	log := logFromOffsets(map[UserID][]int{0: {0, 1, 2, 3}})

	res := SimulateRequest(users, log, FetchPolicy{PageSize: 2, TargetPerUser: 10, Mode: StopAll})

	assert.Equal(t, 3, res.Requests)
	assert.Equal(t, 4, res.ServedEvents())
}

func TestSimulateRequest_ZeroTargetStopsAtFirstBoundary(t *testing.T) {
	users := []User{{ID: 0, ItemCount: 4}, {ID: 1}}
	log := logFromOffsets(map[UserID][]int{0: {0, 1, 2, 3}})

	for _, mode := range []StopMode{StopFirst, StopAll} {
		res := SimulateRequest(users, log, FetchPolicy{PageSize: 2, TargetPerUser: 0, Mode: mode})
		assert.Equal(t, 1, res.Requests, mode.String())
		assert.Equal(t, 2, res.ServedEvents(), mode.String())
	}
}

func TestSimulateRequest_DuplicateUsersCollapse(t *testing.T) {
	// GIVEN the same user listed twice with diverging item counts
	users := []User{{ID: 7, ItemCount: 3}, {ID: 7, ItemCount: 99}}
	log := logFromOffsets(map[UserID][]int{7: {0, 1, 2}})

	res := SimulateRequest(users, log, FetchPolicy{PageSize: 100, TargetPerUser: 1, Mode: StopAll})

	// THEN its events are only collected once
	assert.Equal(t, map[UserID]int{7: 3}, res.Served)
}

func TestSimulateRequest_MissingUserInLogHasZeroEvents(t *testing.T) {
	users := []User{{ID: 0, ItemCount: 1}, {ID: 5, ItemCount: 0}}
	log := logFromOffsets(map[UserID][]int{0: {0}})

	res := SimulateRequest(users, log, FetchPolicy{PageSize: 1, TargetPerUser: 1, Mode: StopFirst})

	assert.Equal(t, map[UserID]int{0: 1, 5: 0}, res.Served)
	assert.True(t, res.Satisfied)
}

func TestSimulateRequest_PanicsOnZeroPageSize(t *testing.T) {
	assert.Panics(t, func() {
		SimulateRequest([]User{{ID: 0}}, EventLog{}, FetchPolicy{PageSize: 0, Mode: StopAll})
	})
}

func TestSimulateRequest_Deterministic(t *testing.T) {
	// Ties on timestamp must resolve the same way every time
	users := []User{{ID: 0, ItemCount: 3}, {ID: 1, ItemCount: 3}}
	log := logFromOffsets(map[UserID][]int{0: {5, 5, 5}, 1: {5, 5, 5}})
	policy := FetchPolicy{PageSize: 2, TargetPerUser: 2, Mode: StopFirst}

	first := SimulateRequest(users, log, policy)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, SimulateRequest(users, log, policy))
	}
	// Stable sort keeps batch order on ties: user 0 is served first
	assert.Equal(t, map[UserID]int{0: 2, 1: 0}, first.Served)
}

func TestSimulateRequest_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for trial := 0; trial < 300; trial++ {
		users, log := randomBatch(rng, 1+rng.IntN(40), 30)
		pageSize := 1 + rng.IntN(25)
		target := rng.IntN(15)

		first := SimulateRequest(users, log, FetchPolicy{PageSize: pageSize, TargetPerUser: target, Mode: StopFirst})
		all := SimulateRequest(users, log, FetchPolicy{PageSize: pageSize, TargetPerUser: target, Mode: StopAll})

		// Requests never below 1; All is never faster than First
		require.GreaterOrEqual(t, first.Requests, 1)
		require.GreaterOrEqual(t, all.Requests, first.Requests, "trial %d", trial)

		// Every batch user appears in Served
		require.Len(t, all.Served, len(users))

		available := 0
		for _, u := range users {
			available += log.Count(u.ID)
		}
		for _, res := range []BatchResult{first, all} {
			if res.Satisfied {
				// Stopped on a full page boundary
				require.Equal(t, res.Requests*pageSize, res.ServedEvents(), "trial %d", trial)
			} else {
				// Walked the whole merged list, nothing dropped or doubled
				require.Equal(t, available, res.ServedEvents(), "trial %d", trial)
			}
		}
	}
}

func TestParseStopMode(t *testing.T) {
	m, err := ParseStopMode("first")
	require.NoError(t, err)
	assert.Equal(t, StopFirst, m)

	m, err = ParseStopMode("all")
	require.NoError(t, err)
	assert.Equal(t, StopAll, m)

	_, err = ParseStopMode("some")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
