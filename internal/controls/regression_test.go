package controls

import (
	"testing"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
	"cyberrisk/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitModels_RecoversExactLinearRelation(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6}
	x2 := []float64{2, 1, 4, 3, 6, 2}

	hist := risk.ControlDeploymentMatrix{
		Counts:          [][]float64{x1, x2},
		SafeguardEffect: make([]float64, len(x1)),
		MaintenanceLoad: make([]float64, len(x1)),
	}
	for i := range x1 {
		hist.SafeguardEffect[i] = 2*x1[i] + 0.5*x2[i]
		hist.MaintenanceLoad[i] = 3*x1[i] + x2[i]
	}

	model, err := FitModels(hist)
	require.NoError(t, err)

	require.Len(t, model.EffectWeights, 2)
	assert.InDelta(t, 2.0, model.EffectWeights[0], 1e-8)
	assert.InDelta(t, 0.5, model.EffectWeights[1], 1e-8)

	require.Len(t, model.LoadWeights, 2)
	assert.InDelta(t, 3.0, model.LoadWeights[0], 1e-8)
	assert.InDelta(t, 1.0, model.LoadWeights[1], 1e-8)
}

func TestFitModels_FixtureHistory(t *testing.T) {
	model, err := FitModels(testkit.DeploymentHistory())
	require.NoError(t, err)

	require.Len(t, model.EffectWeights, 4)
	require.Len(t, model.LoadWeights, 4)

	// The fitted models reproduce the observed outcomes reasonably well
	hist := testkit.DeploymentHistory()
	for i := 0; i < hist.Periods(); i++ {
		counts := make([]float64, hist.ControlTypes())
		for j := range counts {
			counts[j] = hist.Counts[j][i]
		}
		predicted := Predict(model.EffectWeights, counts)
		assert.InDelta(t, hist.SafeguardEffect[i], predicted, 3.0)
	}
}

func TestFitModels_InsufficientObservations(t *testing.T) {
	hist := risk.ControlDeploymentMatrix{
		Counts: [][]float64{
			{1, 2, 3, 4},
			{2, 3, 1, 2},
			{3, 1, 2, 4},
			{1, 1, 2, 1},
		},
		SafeguardEffect: []float64{80, 85, 90, 82},
		MaintenanceLoad: []float64{40, 45, 38, 42},
	}

	_, err := FitModels(hist)
	require.Error(t, err)
	assert.True(t, core.IsModelError(err))
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestFitModels_SingularDesign(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6}
	x2 := []float64{2, 4, 6, 8, 10, 12} // exactly collinear with x1

	hist := risk.ControlDeploymentMatrix{
		Counts:          [][]float64{x1, x2},
		SafeguardEffect: []float64{5, 8, 11, 14, 17, 20},
		MaintenanceLoad: []float64{1, 2, 3, 4, 5, 6},
	}

	_, err := FitModels(hist)
	require.Error(t, err)
	assert.True(t, core.IsModelError(err))
	assert.ErrorIs(t, err, core.ErrSingularModel)
}

func TestFitModels_RejectsRaggedHistory(t *testing.T) {
	hist := testkit.DeploymentHistory()
	hist.Counts[2] = hist.Counts[2][:5]

	_, err := FitModels(hist)
	require.Error(t, err)
	assert.True(t, core.IsInvalidParameter(err))
}
