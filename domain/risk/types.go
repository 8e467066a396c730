// Package risk defines the value objects exchanged with the analytical
// engines: scenario inputs, simulation outputs, joint observation tables and
// control optimization records. All types are plain numeric records; the
// engines never mutate them after construction.
package risk

import (
	"fmt"
	"math"

	"cyberrisk/domain/core"
)

const (
	// ProbabilityTolerance bounds the accepted deviation of a probability
	// vector from summing to exactly 1.
	ProbabilityTolerance = 1e-6

	// MaxIterations is the practical upper bound on Monte Carlo iterations.
	MaxIterations = 1_000_000
)

// ScenarioParameters describes a single loss-expectancy scenario.
//
// Asset value follows a triangular distribution, annual occurrence count a
// discrete distribution, and the two loss channels a log-normal and a Pareto
// distribution respectively.
type ScenarioParameters struct {
	AssetMin  float64 `json:"asset_min"`
	AssetMode float64 `json:"asset_mode"`
	AssetMax  float64 `json:"asset_max"`

	OccurrenceCounts []float64 `json:"occurrence_counts"`
	OccurrenceProbs  []float64 `json:"occurrence_probs"`

	LogNormalMu    float64 `json:"lognormal_mu"`
	LogNormalSigma float64 `json:"lognormal_sigma"`
	ParetoScale    float64 `json:"pareto_scale"`
	ParetoShape    float64 `json:"pareto_shape"`

	// Probability query thresholds: P(asset <= AssetThreshold),
	// P(loss > LossThreshold), P(LossRangeLow <= loss <= LossRangeHigh).
	AssetThreshold float64 `json:"asset_threshold"`
	LossThreshold  float64 `json:"loss_threshold"`
	LossRangeLow   float64 `json:"loss_range_low"`
	LossRangeHigh  float64 `json:"loss_range_high"`

	Iterations int `json:"iterations"`

	// Seed makes the run bit-for-bit reproducible when set. A nil seed
	// draws a fresh one; the chosen value is echoed in the result.
	Seed *int64 `json:"seed,omitempty"`
}

// Validate rejects constraint-violating parameters before any sampling.
func (p ScenarioParameters) Validate() error {
	if !(p.AssetMin < p.AssetMax) {
		return core.NewInvalidParameterError("asset_value",
			fmt.Sprintf("min %g must be strictly below max %g", p.AssetMin, p.AssetMax))
	}
	if p.AssetMode < p.AssetMin || p.AssetMode > p.AssetMax {
		return core.NewInvalidParameterError("asset_mode",
			fmt.Sprintf("mode %g outside [%g, %g]", p.AssetMode, p.AssetMin, p.AssetMax))
	}
	if err := validateDiscrete(p.OccurrenceCounts, p.OccurrenceProbs); err != nil {
		return err
	}
	if p.LogNormalSigma <= 0 {
		return core.NewInvalidParameterError("lognormal_sigma",
			fmt.Sprintf("sigma %g must be positive", p.LogNormalSigma))
	}
	if p.ParetoScale <= 0 {
		return core.NewInvalidParameterError("pareto_scale",
			fmt.Sprintf("scale %g must be positive", p.ParetoScale))
	}
	if p.ParetoShape <= 0 {
		return core.NewInvalidParameterError("pareto_shape",
			fmt.Sprintf("shape %g must be positive", p.ParetoShape))
	}
	if p.LossRangeLow > p.LossRangeHigh {
		return core.NewInvalidParameterError("loss_range",
			fmt.Sprintf("lower bound %g exceeds upper bound %g", p.LossRangeLow, p.LossRangeHigh))
	}
	if p.Iterations < 1 || p.Iterations > MaxIterations {
		return core.NewInvalidParameterError("iterations",
			fmt.Sprintf("%d outside [1, %d]", p.Iterations, MaxIterations))
	}
	return nil
}

func validateDiscrete(values, probs []float64) error {
	if len(values) == 0 {
		return core.NewInvalidParameterError("occurrence_counts", "must not be empty")
	}
	if len(values) != len(probs) {
		return core.NewInvalidParameterError("occurrence_probs",
			fmt.Sprintf("%d probabilities for %d values", len(probs), len(values)))
	}
	sum := 0.0
	for i, pr := range probs {
		if pr < 0 {
			return core.NewInvalidParameterError("occurrence_probs",
				fmt.Sprintf("probability %g at index %d is negative", pr, i))
		}
		sum += pr
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return core.NewInvalidParameterError("occurrence_probs",
			fmt.Sprintf("probabilities sum to %.6g, expected 1.0 ± %.0e", sum, ProbabilityTolerance))
	}
	return nil
}

// Percentiles holds the order-statistic breakdown of a sample.
type Percentiles struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// SimulationResult is the immutable outcome of one scenario run.
type SimulationResult struct {
	// ALE is the annualized loss expectancy: the mean per-iteration loss
	// estimate across the whole sample.
	ALE float64 `json:"ale"`

	AssetMean   float64 `json:"asset_mean"`
	AssetMedian float64 `json:"asset_median"`

	LossMean     float64 `json:"loss_mean"`
	LossVariance float64 `json:"loss_variance"`

	// Closed-form moments of the occurrence distribution.
	FrequencyMean     float64 `json:"frequency_mean"`
	FrequencyVariance float64 `json:"frequency_variance"`

	ProbAssetBelow  float64 `json:"prob_asset_below"`
	ProbLossExceeds float64 `json:"prob_loss_exceeds"`
	ProbLossWithin  float64 `json:"prob_loss_within"`

	AssetPercentiles Percentiles `json:"asset_percentiles"`

	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
}

// NamedScenario pairs a caller-chosen label with scenario parameters for
// batch evaluation.
type NamedScenario struct {
	Name       string             `json:"name"`
	Parameters ScenarioParameters `json:"parameters"`
}

// ScenarioOutcome is one entry of a batch evaluation.
type ScenarioOutcome struct {
	RunID  core.RunID        `json:"run_id"`
	Name   string            `json:"name"`
	Result *SimulationResult `json:"result"`
}

// JointObservationTable records joint occurrence counts of two categorical
// variables over Total trials. Rows index Y levels, columns X levels.
type JointObservationTable struct {
	Counts  [][]int `json:"counts"`
	XLevels []int   `json:"x_levels"`
	YLevels []int   `json:"y_levels"`
	Total   int     `json:"total"`
}

// Validate checks table shape, non-negativity and count consistency.
func (t JointObservationTable) Validate() error {
	if len(t.YLevels) == 0 || len(t.XLevels) == 0 {
		return core.NewInvalidParameterError("levels", "X and Y levels must not be empty")
	}
	if len(t.Counts) != len(t.YLevels) {
		return core.NewInvalidParameterError("counts",
			fmt.Sprintf("%d rows for %d Y levels", len(t.Counts), len(t.YLevels)))
	}
	sum := 0
	for i, row := range t.Counts {
		if len(row) != len(t.XLevels) {
			return core.NewInvalidParameterError("counts",
				fmt.Sprintf("row %d has %d cells for %d X levels", i, len(row), len(t.XLevels)))
		}
		for j, c := range row {
			if c < 0 {
				return core.NewInvalidParameterError("counts",
					fmt.Sprintf("cell (%d,%d) is negative: %d", i, j, c))
			}
			sum += c
		}
	}
	if sum != t.Total {
		return core.NewInvalidParameterError("total",
			fmt.Sprintf("table entries sum to %d, expected %d", sum, t.Total))
	}
	if t.Total == 0 {
		return core.NewInvalidParameterError("total", "table must contain at least one observation")
	}
	return nil
}

// DetectionProbabilities carries the conditional probabilities of a positive
// downstream test. GivenX holds P(T+|X=x) for every X level; GivenY holds
// P(T+|Y=y) for all but the last Y level, whose conditional is derived from
// total-probability consistency.
type DetectionProbabilities struct {
	GivenX []float64 `json:"given_x"`
	GivenY []float64 `json:"given_y"`
}

// Validate checks vector lengths against the table and probability ranges.
func (d DetectionProbabilities) Validate(table JointObservationTable) error {
	if len(d.GivenX) != len(table.XLevels) {
		return core.NewInvalidParameterError("given_x",
			fmt.Sprintf("%d conditionals for %d X levels", len(d.GivenX), len(table.XLevels)))
	}
	if len(d.GivenY) != len(table.YLevels)-1 {
		return core.NewInvalidParameterError("given_y",
			fmt.Sprintf("%d conditionals for %d Y levels, expected %d",
				len(d.GivenY), len(table.YLevels), len(table.YLevels)-1))
	}
	for i, p := range d.GivenX {
		if p < 0 || p > 1 {
			return core.NewInvalidParameterError("given_x",
				fmt.Sprintf("probability %g at index %d outside [0,1]", p, i))
		}
	}
	for i, p := range d.GivenY {
		if p < 0 || p > 1 {
			return core.NewInvalidParameterError("given_y",
				fmt.Sprintf("probability %g at index %d outside [0,1]", p, i))
		}
	}
	return nil
}

// ProbabilityQuery selects the three derived probabilities to report.
type ProbabilityQuery struct {
	// MarginalY is the Y level whose marginal probability is requested.
	MarginalY int `json:"marginal_y"`
	// SumMin and SumMax bound the categorical sum X+Y.
	SumMin int `json:"sum_min"`
	SumMax int `json:"sum_max"`
	// PosteriorY is the Y level for P(Y=y | T=positive).
	PosteriorY int `json:"posterior_y"`
}

// ProbabilityResult bundles the query answers with the supporting marginals.
type ProbabilityResult struct {
	PMarginal    float64 `json:"p_marginal"`
	PRange       float64 `json:"p_range"`
	PConditional float64 `json:"p_conditional"`

	MarginalX    []float64 `json:"marginal_x"`
	MarginalY    []float64 `json:"marginal_y"`
	PositiveRate float64   `json:"positive_rate"`
}

// ControlDeploymentMatrix holds per-period historical deployment counts for
// each control type alongside the observed outcomes.
type ControlDeploymentMatrix struct {
	// Counts has one row per control type; columns are observation periods.
	Counts          [][]float64 `json:"counts"`
	SafeguardEffect []float64   `json:"safeguard_effect"`
	MaintenanceLoad []float64   `json:"maintenance_load"`
}

// ControlTypes returns the number of control types.
func (m ControlDeploymentMatrix) ControlTypes() int { return len(m.Counts) }

// Periods returns the number of observation periods.
func (m ControlDeploymentMatrix) Periods() int { return len(m.SafeguardEffect) }

// Validate checks all sequences share one length of at least two periods.
func (m ControlDeploymentMatrix) Validate() error {
	if len(m.Counts) == 0 {
		return core.NewInvalidParameterError("counts", "at least one control type required")
	}
	periods := len(m.SafeguardEffect)
	if periods < 2 {
		return core.NewInvalidParameterError("safeguard_effect",
			fmt.Sprintf("%d observation periods, need at least 2", periods))
	}
	if len(m.MaintenanceLoad) != periods {
		return core.NewInvalidParameterError("maintenance_load",
			fmt.Sprintf("%d values for %d periods", len(m.MaintenanceLoad), periods))
	}
	for i, row := range m.Counts {
		if len(row) != periods {
			return core.NewInvalidParameterError("counts",
				fmt.Sprintf("control type %d has %d values for %d periods", i, len(row), periods))
		}
		for j, c := range row {
			if c < 0 {
				return core.NewInvalidParameterError("counts",
					fmt.Sprintf("control type %d period %d has negative count %g", i, j, c))
			}
		}
	}
	return nil
}

// ControlModel holds the fitted regression coefficients for the two effect
// measures, one weight per control type. No intercept is modeled: a zero
// deployment predicts zero effect.
type ControlModel struct {
	EffectWeights []float64 `json:"effect_weights"`
	LoadWeights   []float64 `json:"load_weights"`
}

// OptimizationSpec states the deployment question: what is the cheapest
// addition of controls meeting the safeguard target without exceeding the
// maintenance limit.
//
// Additional units are continuous; fractional deployments are a deliberate
// relaxation of the integer problem and are not rounded.
type OptimizationSpec struct {
	Current          []float64 `json:"current"`
	UnitCosts        []float64 `json:"unit_costs"`
	MaxAdditional    []float64 `json:"max_additional"`
	SafeguardTarget  float64   `json:"safeguard_target"`
	MaintenanceLimit float64   `json:"maintenance_limit"`
}

// Validate checks vector lengths and sign constraints.
func (s OptimizationSpec) Validate() error {
	n := len(s.Current)
	if n == 0 {
		return core.NewInvalidParameterError("current", "at least one control type required")
	}
	if len(s.UnitCosts) != n {
		return core.NewInvalidParameterError("unit_costs",
			fmt.Sprintf("%d costs for %d control types", len(s.UnitCosts), n))
	}
	if len(s.MaxAdditional) != n {
		return core.NewInvalidParameterError("max_additional",
			fmt.Sprintf("%d bounds for %d control types", len(s.MaxAdditional), n))
	}
	for i, c := range s.UnitCosts {
		if c < 0 {
			return core.NewInvalidParameterError("unit_costs",
				fmt.Sprintf("cost %g for control type %d is negative", c, i))
		}
	}
	for i, b := range s.MaxAdditional {
		if b < 0 {
			return core.NewInvalidParameterError("max_additional",
				fmt.Sprintf("bound %g for control type %d is negative", b, i))
		}
	}
	for i, c := range s.Current {
		if c < 0 {
			return core.NewInvalidParameterError("current",
				fmt.Sprintf("deployment %g for control type %d is negative", c, i))
		}
	}
	return nil
}

// SolverStatus is the outcome class of a linear program.
type SolverStatus string

const (
	StatusOptimal    SolverStatus = "optimal"
	StatusInfeasible SolverStatus = "infeasible"
	StatusUnbounded  SolverStatus = "unbounded"
)

// OptimizationResult reports the recommended additional deployment.
// Infeasibility is an expected business outcome carried in Status, not an
// error.
type OptimizationResult struct {
	Status     SolverStatus `json:"status"`
	Additional []float64    `json:"additional,omitempty"`
	TotalCost  float64      `json:"total_cost"`

	AchievedEffect float64       `json:"achieved_effect"`
	AchievedLoad   float64       `json:"achieved_load"`
	Model          *ControlModel `json:"model,omitempty"`
}

// PortfolioEvaluation scores a concrete deployment under a fitted model.
type PortfolioEvaluation struct {
	SafeguardEffect float64 `json:"safeguard_effect"`
	MaintenanceLoad float64 `json:"maintenance_load"`
}

// ROIReport relates a deployment's cost to the risk reduction it buys.
type ROIReport struct {
	TotalCost          float64 `json:"total_cost"`
	AnnualSavings      float64 `json:"annual_savings"`
	ROIPercent         float64 `json:"roi_percent"`
	PaybackYears       float64 `json:"payback_years"`
	NetPresentValue3Y  float64 `json:"net_present_value_3y"`
}

// BudgetAllocation is the relaxed control-selection answer under a budget.
type BudgetAllocation struct {
	Selected           []float64 `json:"selected"`
	TotalCost          float64   `json:"total_cost"`
	TotalEffectiveness float64   `json:"total_effectiveness"`
	BudgetUtilization  float64   `json:"budget_utilization"`
}

// Recommendation is a human-readable deployment delta for one control type.
type Recommendation struct {
	ControlName           string  `json:"control_name"`
	CurrentCount          float64 `json:"current_count"`
	RecommendedAdditional float64 `json:"recommended_additional"`
	NewTotal              float64 `json:"new_total"`
	Priority              string  `json:"priority"`
}
