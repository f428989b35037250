// Package sim provides the core of the paginated fetch simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - user.go: User, Event and EventLog, the population data model
//   - fetch.go: one batched request cycle (merge, page, stop check)
//   - scenario.go: chunking a population into batches under a request ceiling
//
// # Architecture
//
// The sim package holds the pure simulation; everything random or concurrent
// lives in sub-packages:
//   - sim/workload/: item count distributions, population and event generation
//   - sim/experiment/: policy comparison, repeated runs and reporting
//
// Randomness flows through PartitionedRNG so that population, event and
// ordering draws are isolated from each other and reproducible from one seed.
// Repeated runs derive an independent key per repetition with
// SimulationKey.ForRepetition.
//
// # Key Types
//   - FetchPolicy: page size, per-user target and stop mode of one request cycle
//   - ScenarioConfig: FetchPolicy plus chunk size and request ceiling
//   - ScenarioStats / SimulationStats: per-scenario results and their fold
//   - ExperimentBundle: YAML experiment file layered under CLI flags
package sim
