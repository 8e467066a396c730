package app

import (
	"context"
	"testing"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
	"cyberrisk/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *RiskService {
	return NewRiskService(2, nil)
}

func TestRunSimulation_Deterministic(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	params := testkit.BreachScenario()

	first, err := svc.RunSimulation(ctx, params)
	require.NoError(t, err)
	second, err := svc.RunSimulation(ctx, params)
	require.NoError(t, err)

	require.Equal(t, first, second)
	assert.Greater(t, first.ALE, 0.0)
}

func TestRunSimulation_CancelledContext(t *testing.T) {
	svc := newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.RunSimulation(ctx, testkit.BreachScenario())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, core.IsCancelled(err))
}

func TestRunScenarios_ReturnsAllOutcomes(t *testing.T) {
	svc := newService()
	base := testkit.BreachScenario()
	scenarios := []risk.NamedScenario{
		{Name: "baseline", Parameters: base},
		{Name: "baseline-repeat", Parameters: base},
	}

	outcomes, err := svc.RunScenarios(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "baseline", outcomes[0].Name)
	assert.Equal(t, outcomes[0].Result, outcomes[1].Result)
}

func TestEvaluateConditionalProbabilities_FixtureValues(t *testing.T) {
	svc := newService()
	table, det, query := testkit.ScreeningTable()

	result, err := svc.EvaluateConditionalProbabilities(context.Background(), table, det, query)
	require.NoError(t, err)

	for name, p := range map[string]float64{
		"marginal":    result.PMarginal,
		"range":       result.PRange,
		"conditional": result.PConditional,
	} {
		assert.GreaterOrEqual(t, p, 0.0, name)
		assert.LessOrEqual(t, p, 1.0, name)
	}
	assert.InDelta(t, 90.0/290.0, result.PMarginal, 1e-12)
}

func TestEvaluateConditionalProbabilities_CancelledContext(t *testing.T) {
	svc := newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	table, det, query := testkit.ScreeningTable()

	_, err := svc.EvaluateConditionalProbabilities(ctx, table, det, query)
	require.Error(t, err)
	assert.True(t, core.IsCancelled(err))
}

func TestOptimizeControls_CancelledContext(t *testing.T) {
	svc := newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.OptimizeControls(ctx, testkit.DeploymentHistory(), testkit.DeploymentSpec())
	require.Error(t, err)
	assert.True(t, core.IsCancelled(err))
}

func TestOptimizeControls_FixtureIsOptimal(t *testing.T) {
	svc := newService()

	result, err := svc.OptimizeControls(context.Background(), testkit.DeploymentHistory(), testkit.DeploymentSpec())
	require.NoError(t, err)

	assert.Equal(t, risk.StatusOptimal, result.Status)
	require.Len(t, result.Additional, 4)
	assert.Greater(t, result.TotalCost, 0.0)
	assert.GreaterOrEqual(t, result.AchievedEffect, testkit.DeploymentSpec().SafeguardTarget-1e-6)
}

func TestOptimizeControls_FitFailurePropagates(t *testing.T) {
	svc := newService()
	history := testkit.DeploymentHistory()
	history.SafeguardEffect = history.SafeguardEffect[:4]

	_, err := svc.OptimizeControls(context.Background(), history, testkit.DeploymentSpec())
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}

func TestEvaluatePortfolio_CurrentDeployment(t *testing.T) {
	svc := newService()

	eval, err := svc.EvaluatePortfolio(testkit.DeploymentHistory(), testkit.DeploymentSpec().Current)
	require.NoError(t, err)
	assert.Greater(t, eval.SafeguardEffect, 0.0)
	assert.Greater(t, eval.MaintenanceLoad, 0.0)
}

func TestEvaluatePortfolio_RejectsShortCountsVector(t *testing.T) {
	svc := newService()

	// Two counts against the four fitted control types
	_, err := svc.EvaluatePortfolio(testkit.DeploymentHistory(), []float64{2, 1})
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}
