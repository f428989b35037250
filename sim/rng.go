package sim

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// ForRepetition derives the key of the i-th independent repetition.
// The derivation depends only on (key, i), never on the order in which
// repetitions are scheduled.
func (k SimulationKey) ForRepetition(i int) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64("repetition_"+strconv.Itoa(i)))
}

// === Subsystem Constants ===

const (
	// SubsystemPopulation draws per-user item counts.
	SubsystemPopulation = "population"

	// SubsystemEvents draws event timestamps.
	SubsystemEvents = "events"

	// SubsystemOrdering shuffles users for the random ordering policy.
	SubsystemOrdering = "ordering"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: seed = masterSeed XOR fnv1a64(subsystemName), fed to a
// PCG source. Drawing from one subsystem never shifts another's sequence.
//
// Thread-safety: NOT thread-safe. Parallel callers each build their own
// PartitionedRNG (see SimulationKey.ForRepetition).
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := uint64(int64(p.key) ^ fnv1a64(name))
	rng := rand.New(rand.NewPCG(derived, uint64(fnv1a64(name))))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
