package workload

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidDistribution is wrapped by every distribution construction error.
var ErrInvalidDistribution = errors.New("invalid distribution")

// maxItemCount caps a single user's item count so heavy-tailed draws cannot
// exhaust memory.
const maxItemCount = math.MaxInt32

// ItemCountSampler draws the number of items a user produces.
type ItemCountSampler interface {
	// Sample returns a non-negative item count.
	Sample(rng *rand.Rand) int
}

// DistSpec parameterizes an item count distribution.
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// DefaultDistSpec is log-normal with mu=0, sigma=2.
func DefaultDistSpec() DistSpec {
	return DistSpec{Type: "lognormal", Params: map[string]float64{"mu": 0, "sigma": 2}}
}

// LogNormalSampler draws exp(N(mu, sigma)).
type LogNormalSampler struct {
	dist distuv.LogNormal
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) int {
	d := s.dist
	d.Src = rng
	return toItemCount(d.Rand())
}

// ParetoSampler draws from Pareto(xm, alpha). alpha is the shape parameter.
type ParetoSampler struct {
	dist distuv.Pareto
}

func (s *ParetoSampler) Sample(rng *rand.Rand) int {
	d := s.dist
	d.Src = rng
	return toItemCount(d.Rand())
}

// NormalSampler draws from N(mean, std_dev); negative draws become 0.
type NormalSampler struct {
	dist distuv.Normal
}

func (s *NormalSampler) Sample(rng *rand.Rand) int {
	d := s.dist
	d.Src = rng
	return toItemCount(d.Rand())
}

// ExponentialSampler draws from Exp(rate).
type ExponentialSampler struct {
	dist distuv.Exponential
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int {
	d := s.dist
	d.Src = rng
	return toItemCount(d.Rand())
}

// ConstantSampler always returns the same count.
type ConstantSampler struct {
	value int
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int {
	return s.value
}

// toItemCount rounds to the nearest integer and floors at zero.
func toItemCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= maxItemCount:
		return maxItemCount
	}
	return int(math.Round(v))
}

// requireParam checks that all required keys exist and are finite.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("%w: requires parameter %q", ErrInvalidDistribution, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameter %q must be finite, got %v", ErrInvalidDistribution, k, v)
		}
	}
	return nil
}

func requirePositive(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if params[k] <= 0 {
			return fmt.Errorf("%w: parameter %q must be > 0, got %v", ErrInvalidDistribution, k, params[k])
		}
	}
	return nil
}

// NewItemCountSampler creates an ItemCountSampler from a DistSpec.
// Invalid parameters are rejected here rather than surfacing as NaN samples.
func NewItemCountSampler(spec DistSpec) (ItemCountSampler, error) {
	p := spec.Params
	switch spec.Type {
	case "lognormal":
		if err := requireParam(p, "mu", "sigma"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "sigma"); err != nil {
			return nil, err
		}
		return &LogNormalSampler{dist: distuv.LogNormal{Mu: p["mu"], Sigma: p["sigma"]}}, nil

	case "pareto":
		if err := requireParam(p, "xm", "alpha"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "xm", "alpha"); err != nil {
			return nil, err
		}
		return &ParetoSampler{dist: distuv.Pareto{Xm: p["xm"], Alpha: p["alpha"]}}, nil

	case "normal":
		if err := requireParam(p, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "std_dev"); err != nil {
			return nil, err
		}
		return &NormalSampler{dist: distuv.Normal{Mu: p["mean"], Sigma: p["std_dev"]}}, nil

	case "exponential":
		if err := requireParam(p, "rate"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "rate"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{dist: distuv.Exponential{Rate: p["rate"]}}, nil

	case "constant":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		if p["value"] < 0 {
			return nil, fmt.Errorf("%w: parameter \"value\" must be >= 0, got %v", ErrInvalidDistribution, p["value"])
		}
		return &ConstantSampler{value: toItemCount(p["value"])}, nil

	default:
		return nil, fmt.Errorf("%w: unknown distribution type %q", ErrInvalidDistribution, spec.Type)
	}
}
