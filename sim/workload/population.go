package workload

import (
	"math/rand/v2"

	"github.com/inference-sim/fetch-sim/sim"
)

// GenerateUsers creates count users with ids 0..count-1, each with an
// independent item count drawn from sampler.
func GenerateUsers(count int, sampler ItemCountSampler, rng *rand.Rand) []sim.User {
	users := make([]sim.User, count)
	for i := range users {
		users[i] = sim.User{ID: sim.UserID(i), ItemCount: sampler.Sample(rng)}
	}
	return users
}
