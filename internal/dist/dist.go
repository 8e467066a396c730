// Package dist provides the seeded sampling primitives shared by the
// analytical engines: triangular, discrete, log-normal and Pareto draws from
// a single pseudo-random source, plus the closed-form CDFs and moments the
// engines report alongside empirical estimates.
package dist

import (
	"fmt"
	"math"
	"math/rand/v2"

	"cyberrisk/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// ProbabilityTolerance bounds the accepted deviation of a probability vector
// from summing to exactly 1.
const ProbabilityTolerance = 1e-6

// Source is a seeded random source. One Source backs all draws of a single
// engine call; the draw order is part of the reproducibility contract, so a
// Source must never be shared across concurrent calls.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a source with a fixed seed. Equal seeds yield
// bit-identical draw sequences.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Triangular returns n independent draws from Triangular(min, mode, max).
func (s *Source) Triangular(min, mode, max float64, n int) ([]float64, error) {
	if err := ValidateTriangular(min, mode, max); err != nil {
		return nil, err
	}
	if err := validateSize(n); err != nil {
		return nil, err
	}
	d := distuv.NewTriangle(min, max, mode, s.rng)
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out, nil
}

// Discrete returns n independent draws from the custom discrete distribution
// defined by values and their probabilities.
func (s *Source) Discrete(values, probs []float64, n int) ([]float64, error) {
	if err := ValidateDiscrete(values, probs); err != nil {
		return nil, err
	}
	if err := validateSize(n); err != nil {
		return nil, err
	}
	d := distuv.NewCategorical(probs, s.rng)
	out := make([]float64, n)
	for i := range out {
		out[i] = values[int(d.Rand())]
	}
	return out, nil
}

// LogNormal returns n independent draws from LogNormal(mu, sigma).
func (s *Source) LogNormal(mu, sigma float64, n int) ([]float64, error) {
	if sigma <= 0 {
		return nil, core.NewInvalidParameterError("lognormal_sigma",
			fmt.Sprintf("sigma %g must be positive", sigma))
	}
	if err := validateSize(n); err != nil {
		return nil, err
	}
	d := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out, nil
}

// Pareto returns n independent draws from Pareto(scale, shape), bounded
// below by scale.
func (s *Source) Pareto(scale, shape float64, n int) ([]float64, error) {
	if scale <= 0 {
		return nil, core.NewInvalidParameterError("pareto_scale",
			fmt.Sprintf("scale %g must be positive", scale))
	}
	if shape <= 0 {
		return nil, core.NewInvalidParameterError("pareto_shape",
			fmt.Sprintf("shape %g must be positive", shape))
	}
	if err := validateSize(n); err != nil {
		return nil, err
	}
	d := distuv.Pareto{Xm: scale, Alpha: shape, Src: s.rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out, nil
}

// ValidateTriangular checks min <= mode <= max with a non-degenerate support.
func ValidateTriangular(min, mode, max float64) error {
	if !(min < max) {
		return core.NewInvalidParameterError("triangular",
			fmt.Sprintf("min %g must be strictly below max %g", min, max))
	}
	if mode < min || mode > max {
		return core.NewInvalidParameterError("triangular",
			fmt.Sprintf("mode %g outside [%g, %g]", mode, min, max))
	}
	return nil
}

// ValidateDiscrete checks matching lengths and a probability vector that is
// non-negative and sums to 1 within tolerance.
func ValidateDiscrete(values, probs []float64) error {
	if len(values) == 0 {
		return core.NewInvalidParameterError("discrete", "values must not be empty")
	}
	if len(values) != len(probs) {
		return core.NewInvalidParameterError("discrete",
			fmt.Sprintf("%d probabilities for %d values", len(probs), len(values)))
	}
	sum := 0.0
	for i, p := range probs {
		if p < 0 {
			return core.NewInvalidParameterError("discrete",
				fmt.Sprintf("probability %g at index %d is negative", p, i))
		}
		sum += p
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return core.NewInvalidParameterError("discrete",
			fmt.Sprintf("probabilities sum to %.6g, expected 1.0 ± %.0e", sum, ProbabilityTolerance))
	}
	return nil
}

func validateSize(n int) error {
	if n < 1 {
		return core.NewInvalidParameterError("sample_size",
			fmt.Sprintf("%d must be positive", n))
	}
	return nil
}

// TriangularCDF evaluates the piecewise-quadratic triangular CDF at x.
func TriangularCDF(x, min, mode, max float64) float64 {
	switch {
	case x <= min:
		return 0
	case x <= mode:
		return (x - min) * (x - min) / ((max - min) * (mode - min))
	case x < max:
		return 1 - (max-x)*(max-x)/((max-min)*(max-mode))
	default:
		return 1
	}
}

// TriangularMean returns the closed-form mean (min + mode + max) / 3.
func TriangularMean(min, mode, max float64) float64 {
	return (min + mode + max) / 3
}

// TriangularMedian returns the closed-form median, branching on which side
// of the mode holds probability mass 0.5.
func TriangularMedian(min, mode, max float64) float64 {
	fMode := (mode - min) / (max - min)
	switch {
	case math.Abs(fMode-0.5) < 1e-15:
		return mode
	case fMode > 0.5:
		return min + math.Sqrt(0.5*(max-min)*(mode-min))
	default:
		return max - math.Sqrt(0.5*(max-min)*(max-mode))
	}
}

// DiscreteMoments returns the exact mean and variance of a discrete
// distribution over values with the given probabilities.
func DiscreteMoments(values, probs []float64) (mean, variance float64) {
	var ex2 float64
	for i, v := range values {
		mean += v * probs[i]
		ex2 += v * v * probs[i]
	}
	variance = ex2 - mean*mean
	return mean, variance
}
