package sim

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// OrderPolicy decides the order in which users are assigned to batches.
type OrderPolicy int

const (
	OrderAscending OrderPolicy = iota
	OrderDescending
	OrderRandom
)

// ValidOrderPolicies is the set of recognized ordering names.
var ValidOrderPolicies = map[string]OrderPolicy{
	"asc":    OrderAscending,
	"desc":   OrderDescending,
	"random": OrderRandom,
}

func (o OrderPolicy) String() string {
	switch o {
	case OrderAscending:
		return "asc"
	case OrderDescending:
		return "desc"
	case OrderRandom:
		return "random"
	default:
		return fmt.Sprintf("OrderPolicy(%d)", int(o))
	}
}

// ParseOrderPolicy converts a CLI/YAML name into an OrderPolicy.
func ParseOrderPolicy(name string) (OrderPolicy, error) {
	o, ok := ValidOrderPolicies[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown order policy %q", ErrInvalidConfig, name)
	}
	return o, nil
}

// OrderUsers returns a reordered copy of users; the input is not modified.
// Ascending is stable by ItemCount, Descending is exactly its reverse, and
// Random is a uniform shuffle drawn from rng. rng is only used by OrderRandom
// and may be nil otherwise.
func OrderUsers(users []User, policy OrderPolicy, rng *rand.Rand) []User {
	out := slices.Clone(users)
	switch policy {
	case OrderAscending:
		sortByItemCount(out)
	case OrderDescending:
		sortByItemCount(out)
		slices.Reverse(out)
	case OrderRandom:
		if rng == nil {
			panic("OrderUsers: random ordering requires an rng")
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default:
		panic(fmt.Sprintf("unhandled order policy %v", policy))
	}
	return out
}

func sortByItemCount(users []User) {
	slices.SortStableFunc(users, func(a, b User) int {
		return a.ItemCount - b.ItemCount
	})
}
