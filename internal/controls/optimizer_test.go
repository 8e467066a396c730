package controls

import (
	"math"
	"testing"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
	"cyberrisk/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constraintTol = 1e-6

func flatModel() *risk.ControlModel {
	return &risk.ControlModel{
		EffectWeights: []float64{1, 1, 1, 1},
		LoadWeights:   []float64{0, 0, 0, 0},
	}
}

func TestOptimize_PicksCheapestControl(t *testing.T) {
	spec := risk.OptimizationSpec{
		Current:          []float64{0, 0, 0, 0},
		UnitCosts:        []float64{1, 2, 3, 4},
		MaxAdditional:    []float64{10, 10, 10, 10},
		SafeguardTarget:  2,
		MaintenanceLimit: 100,
	}

	result, err := Optimize(flatModel(), spec)
	require.NoError(t, err)
	require.Equal(t, risk.StatusOptimal, result.Status)

	// All effect weights are equal, so the whole gap lands on the cheapest
	// control and the objective is 2 cost units.
	assert.InDelta(t, 2.0, result.TotalCost, 1e-8)
	assert.InDelta(t, 2.0, result.AchievedEffect, 1e-8)
}

func TestOptimize_ZeroDeltaWhenTargetsAlreadyMet(t *testing.T) {
	spec := risk.OptimizationSpec{
		Current:          []float64{5, 0, 0, 0},
		UnitCosts:        []float64{1, 1, 1, 1},
		MaxAdditional:    []float64{10, 10, 10, 10},
		SafeguardTarget:  3,
		MaintenanceLimit: 100,
	}

	result, err := Optimize(flatModel(), spec)
	require.NoError(t, err)
	require.Equal(t, risk.StatusOptimal, result.Status)
	assert.InDelta(t, 0.0, result.TotalCost, 1e-8)
}

func TestOptimize_FixtureSatisfiesAllConstraints(t *testing.T) {
	model, err := FitModels(testkit.DeploymentHistory())
	require.NoError(t, err)
	spec := testkit.DeploymentSpec()

	result, err := Optimize(model, spec)
	require.NoError(t, err)
	require.Equal(t, risk.StatusOptimal, result.Status)
	require.Len(t, result.Additional, 4)

	for i, d := range result.Additional {
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, spec.MaxAdditional[i]+constraintTol)
	}
	assert.GreaterOrEqual(t, result.AchievedEffect, spec.SafeguardTarget-constraintTol)
	assert.LessOrEqual(t, result.AchievedLoad, spec.MaintenanceLimit+constraintTol)

	// Pinned solution, derived in exact arithmetic from the nine-period
	// history: effect weights [105/8, 7/8, 62/3, -59/24], load weights
	// [527/40, -19/8, 67/15, 151/24]. The unique optimum adds 5/31 units of
	// the third control for a total cost of 40000/31.
	assert.InDelta(t, 105.0/8.0, model.EffectWeights[0], 1e-8)
	assert.InDelta(t, 7.0/8.0, model.EffectWeights[1], 1e-8)
	assert.InDelta(t, 62.0/3.0, model.EffectWeights[2], 1e-8)
	assert.InDelta(t, -59.0/24.0, model.EffectWeights[3], 1e-8)
	assert.InDelta(t, 527.0/40.0, model.LoadWeights[0], 1e-8)
	assert.InDelta(t, -19.0/8.0, model.LoadWeights[1], 1e-8)
	assert.InDelta(t, 67.0/15.0, model.LoadWeights[2], 1e-8)
	assert.InDelta(t, 151.0/24.0, model.LoadWeights[3], 1e-8)

	assert.InDelta(t, 0.0, result.Additional[0], 1e-6)
	assert.InDelta(t, 0.0, result.Additional[1], 1e-6)
	assert.InDelta(t, 5.0/31.0, result.Additional[2], 1e-6)
	assert.InDelta(t, 0.0, result.Additional[3], 1e-6)
	assert.InDelta(t, 40_000.0/31.0, result.TotalCost, 1e-4)
	assert.InDelta(t, 90.0, result.AchievedEffect, 1e-6)
	assert.InDelta(t, 44.387096774, result.AchievedLoad, 1e-6)
}

func TestOptimize_ObjectiveIsIdempotent(t *testing.T) {
	model, err := FitModels(testkit.DeploymentHistory())
	require.NoError(t, err)
	spec := testkit.DeploymentSpec()

	first, err := Optimize(model, spec)
	require.NoError(t, err)
	second, err := Optimize(model, spec)
	require.NoError(t, err)

	// Degenerate optima may differ in the vertex, never in the objective
	assert.InDelta(t, first.TotalCost, second.TotalCost, 1e-9)
}

func TestOptimize_InfeasibleTargetIsStatusNotError(t *testing.T) {
	model, err := FitModels(testkit.DeploymentHistory())
	require.NoError(t, err)

	spec := testkit.DeploymentSpec()
	spec.SafeguardTarget = 1e6

	result, err := Optimize(model, spec)
	require.NoError(t, err, "infeasibility is a business outcome, not an error")
	assert.Equal(t, risk.StatusInfeasible, result.Status)
	assert.Nil(t, result.Additional)
}

func TestOptimize_RejectsMismatchedSpec(t *testing.T) {
	spec := testkit.DeploymentSpec()
	spec.UnitCosts = spec.UnitCosts[:3]

	_, err := Optimize(flatModel(), spec)
	require.Error(t, err)
}

func TestOptimizeBudget_SelectsHighestValueControl(t *testing.T) {
	alloc, err := OptimizeBudget(20, []float64{10, 20}, []float64{1, 5})
	require.NoError(t, err)

	require.Len(t, alloc.Selected, 2)
	assert.InDelta(t, 0.0, alloc.Selected[0], 1e-8)
	assert.InDelta(t, 1.0, alloc.Selected[1], 1e-8)
	assert.InDelta(t, 20.0, alloc.TotalCost, 1e-8)
	assert.InDelta(t, 5.0, alloc.TotalEffectiveness, 1e-8)
	assert.InDelta(t, 100.0, alloc.BudgetUtilization, 1e-6)
}

func TestROI(t *testing.T) {
	report, err := ROI([]float64{1}, []float64{1_000}, 10, 50_000)
	require.NoError(t, err)

	assert.InDelta(t, 1_000.0, report.TotalCost, 1e-9)
	assert.InDelta(t, 5_000.0, report.AnnualSavings, 1e-9)
	assert.InDelta(t, 400.0, report.ROIPercent, 1e-9)
	assert.InDelta(t, 0.2, report.PaybackYears, 1e-9)
	assert.InDelta(t, 14_000.0, report.NetPresentValue3Y, 1e-9)

	// No savings: payback never happens
	report, err = ROI([]float64{1}, []float64{1_000}, 0, 50_000)
	require.NoError(t, err)
	assert.True(t, math.IsInf(report.PaybackYears, 1))
}

func TestROI_RejectsMismatchedCosts(t *testing.T) {
	_, err := ROI([]float64{1, 2}, []float64{1_000}, 10, 50_000)
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}

func TestRecommendations_SortedAndFiltered(t *testing.T) {
	names := testkit.ControlNames()
	current := []float64{2, 1, 3, 1}
	additional := []float64{0.005, 2.5, 1.2, 0}

	recs, err := Recommendations(names, current, additional)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "IDS/IPS", recs[0].ControlName)
	assert.Equal(t, "High", recs[0].Priority)
	assert.InDelta(t, 3.5, recs[0].NewTotal, 1e-9)

	assert.Equal(t, "Endpoint Protection", recs[1].ControlName)
	assert.Equal(t, "Medium", recs[1].Priority)
}

func TestRecommendations_RejectsMismatchedLengths(t *testing.T) {
	_, err := Recommendations(testkit.ControlNames(), []float64{2, 1}, []float64{0.5, 1.0, 0.2, 0})
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}

func TestEvaluatePortfolio(t *testing.T) {
	model := &risk.ControlModel{
		EffectWeights: []float64{2, 3},
		LoadWeights:   []float64{1, 1},
	}

	eval, err := EvaluatePortfolio(model, []float64{2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, eval.SafeguardEffect, 1e-12)
	assert.InDelta(t, 3.0, eval.MaintenanceLoad, 1e-12)
}

func TestEvaluatePortfolio_RejectsMismatchedCounts(t *testing.T) {
	model, err := FitModels(testkit.DeploymentHistory())
	require.NoError(t, err)

	// A short counts vector must be rejected up front, not indexed past
	_, err = EvaluatePortfolio(model, []float64{2, 1})
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))

	_, err = EvaluatePortfolio(model, []float64{2, 1, 3, 1, 9})
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}
