// Package simulation implements the Monte Carlo loss-expectancy engine. It
// draws asset-value, occurrence-frequency and loss-magnitude vectors from a
// single seeded source and reduces them to the aggregate risk metrics.
package simulation

import (
	"context"
	"math/rand/v2"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
	"cyberrisk/internal/dist"

	"github.com/montanaflynn/stats"
)

// Engine runs loss-expectancy simulations. It is stateless; every call uses
// an independent random source, so concurrent calls are safe.
type Engine struct{}

// NewEngine creates a simulation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Run executes a full scenario simulation.
//
// The draw order is fixed and part of the reproducibility contract:
// asset values, occurrence counts, log-normal losses, Pareto losses.
// Cancellation is checked between phases; no partial results are returned.
func (e *Engine) Run(ctx context.Context, params risk.ScenarioParameters) (*risk.SimulationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	seed := resolveSeed(params.Seed)
	src := dist.NewSource(uint64(seed))
	n := params.Iterations

	assets, err := src.Triangular(params.AssetMin, params.AssetMode, params.AssetMax, n)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	counts, err := src.Discrete(params.OccurrenceCounts, params.OccurrenceProbs, n)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	flawA, err := src.LogNormal(params.LogNormalMu, params.LogNormalSigma, n)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	flawB, err := src.Pareto(params.ParetoScale, params.ParetoShape, n)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	// Two independent loss channels affecting the same incident are
	// combined by addition; the per-iteration loss estimate scales with
	// both asset exposure and incident frequency.
	combined := make([]float64, n)
	losses := make([]float64, n)
	for i := 0; i < n; i++ {
		combined[i] = flawA[i] + flawB[i]
		losses[i] = assets[i] * combined[i] * counts[i]
	}

	return e.aggregate(params, seed, assets, combined, losses)
}

func (e *Engine) aggregate(params risk.ScenarioParameters, seed int64, assets, combined, losses []float64) (*risk.SimulationResult, error) {
	n := len(assets)

	ale, _ := stats.Mean(losses)
	assetMean, _ := stats.Mean(assets)
	assetMedian, _ := stats.Median(assets)
	lossMean, _ := stats.Mean(combined)
	lossVariance, _ := stats.Variance(combined)

	freqMean, freqVariance := dist.DiscreteMoments(params.OccurrenceCounts, params.OccurrenceProbs)

	var belowAsset, exceedLoss, withinLoss int
	for i := 0; i < n; i++ {
		if assets[i] <= params.AssetThreshold {
			belowAsset++
		}
		if combined[i] > params.LossThreshold {
			exceedLoss++
		}
		if combined[i] >= params.LossRangeLow && combined[i] <= params.LossRangeHigh {
			withinLoss++
		}
	}

	pct, err := assetPercentiles(assets)
	if err != nil {
		return nil, err
	}

	return &risk.SimulationResult{
		ALE:               ale,
		AssetMean:         assetMean,
		AssetMedian:       assetMedian,
		LossMean:          lossMean,
		LossVariance:      lossVariance,
		FrequencyMean:     freqMean,
		FrequencyVariance: freqVariance,
		ProbAssetBelow:    float64(belowAsset) / float64(n),
		ProbLossExceeds:   float64(exceedLoss) / float64(n),
		ProbLossWithin:    float64(withinLoss) / float64(n),
		AssetPercentiles:  pct,
		Iterations:        n,
		Seed:              seed,
	}, nil
}

func assetPercentiles(assets []float64) (risk.Percentiles, error) {
	var pct risk.Percentiles
	targets := []struct {
		p   float64
		dst *float64
	}{
		{50, &pct.P50},
		{75, &pct.P75},
		{90, &pct.P90},
		{95, &pct.P95},
		{99, &pct.P99},
	}
	for _, t := range targets {
		v, err := stats.Percentile(assets, t.p)
		if err != nil {
			return risk.Percentiles{}, err
		}
		*t.dst = v
	}
	return pct, nil
}

// resolveSeed returns the explicit seed, or draws a fresh one so the chosen
// value can be echoed back for replay.
func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return rand.Int64()
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return core.NewCancelledError(err)
	}
	return nil
}
