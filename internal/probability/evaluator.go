// Package probability evaluates marginal, joint and conditional queries over
// a fixed joint observation table of two categorical variables and a binary
// downstream detection test.
package probability

import (
	"fmt"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
)

// Evaluator answers probability queries against joint observation tables.
// It is stateless and safe for concurrent use.
type Evaluator struct{}

// NewEvaluator creates an evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate computes the three requested probabilities:
//
//   - the marginal probability of the queried Y level,
//   - the probability of the categorical sum X+Y falling in [SumMin, SumMax],
//   - the posterior P(Y = y | T = positive) by Bayes' rule.
//
// The detection vector carries P(T+|X=x) for every X level and P(T+|Y=y) for
// all but the last Y level; the last Y conditional is derived from
// law-of-total-probability consistency between the X-side and Y-side
// expansions of P(T+).
func (ev *Evaluator) Evaluate(table risk.JointObservationTable, det risk.DetectionProbabilities, query risk.ProbabilityQuery) (*risk.ProbabilityResult, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := det.Validate(table); err != nil {
		return nil, err
	}

	marginalX, marginalY := marginals(table)

	yIdx, err := levelIndex(table.YLevels, query.MarginalY, "marginal_y")
	if err != nil {
		return nil, err
	}
	postIdx, err := levelIndex(table.YLevels, query.PosteriorY, "posterior_y")
	if err != nil {
		return nil, err
	}

	pRange := sumRange(table, query.SumMin, query.SumMax)

	// P(T+) expanded over the X marginals.
	var positiveRate float64
	for i, px := range marginalX {
		positiveRate += px * det.GivenX[i]
	}
	if positiveRate == 0 {
		return nil, core.NewDivisionByZeroError("P(T=positive)")
	}

	pConditional, err := posteriorY(marginalY, det, positiveRate, postIdx)
	if err != nil {
		return nil, err
	}

	return &risk.ProbabilityResult{
		PMarginal:    marginalY[yIdx],
		PRange:       pRange,
		PConditional: pConditional,
		MarginalX:    marginalX,
		MarginalY:    marginalY,
		PositiveRate: positiveRate,
	}, nil
}

// marginals sums joint counts along each axis and normalizes by the total.
func marginals(table risk.JointObservationTable) (x, y []float64) {
	total := float64(table.Total)
	x = make([]float64, len(table.XLevels))
	y = make([]float64, len(table.YLevels))
	for i, row := range table.Counts {
		for j, c := range row {
			y[i] += float64(c) / total
			x[j] += float64(c) / total
		}
	}
	return x, y
}

// sumRange accumulates the joint probability of cells whose level sum falls
// inside [lo, hi].
func sumRange(table risk.JointObservationTable, lo, hi int) float64 {
	total := float64(table.Total)
	var p float64
	for i, row := range table.Counts {
		for j, c := range row {
			s := table.XLevels[j] + table.YLevels[i]
			if s >= lo && s <= hi {
				p += float64(c) / total
			}
		}
	}
	return p
}

// posteriorY applies Bayes' rule for the queried Y level. The conditional of
// the last Y level is not supplied; it is recovered from
// P(T+) = Σ P(T+|Y=y)·P(Y=y).
func posteriorY(marginalY []float64, det risk.DetectionProbabilities, positiveRate float64, idx int) (float64, error) {
	last := len(marginalY) - 1

	var pTGivenY float64
	if idx < last {
		pTGivenY = det.GivenY[idx]
	} else {
		if marginalY[last] == 0 {
			return 0, core.NewDivisionByZeroError(
				fmt.Sprintf("P(Y=level %d)", last))
		}
		known := 0.0
		for i, p := range det.GivenY {
			known += p * marginalY[i]
		}
		// The derived conditional may leave [0,1] when the caller-supplied
		// conditionals are not mutually consistent; only the final
		// posterior is clamped.
		pTGivenY = (positiveRate - known) / marginalY[last]
	}

	return clamp01(pTGivenY * marginalY[idx] / positiveRate), nil
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

func levelIndex(levels []int, level int, field string) (int, error) {
	for i, l := range levels {
		if l == level {
			return i, nil
		}
	}
	return 0, core.NewInvalidParameterError(field,
		fmt.Sprintf("level %d not present in %v", level, levels))
}
