// Package testkit provides deterministic fixtures shared by the test suites
// and the demo CLI: a breach scenario, a two-phase screening table and a
// control-deployment history with its optimization question.
package testkit

import (
	"cyberrisk/domain/risk"
)

// BreachScenario returns the e-commerce data-breach scenario: triangular
// asset value, six-point occurrence distribution, log-normal downtime costs
// and Pareto regulatory fines. Seeded, so results are reproducible.
func BreachScenario() risk.ScenarioParameters {
	seed := int64(42)
	return risk.ScenarioParameters{
		AssetMin:  50_000,
		AssetMode: 150_000,
		AssetMax:  500_000,

		OccurrenceCounts: []float64{0, 1, 2, 3, 4, 5},
		OccurrenceProbs:  []float64{0.3, 0.4, 0.2, 0.06, 0.03, 0.01},

		LogNormalMu:    9.2,
		LogNormalSigma: 1.0,
		ParetoScale:    5_000,
		ParetoShape:    2.5,

		AssetThreshold: 100_000,
		LossThreshold:  50_000,
		LossRangeLow:   20_000,
		LossRangeHigh:  100_000,

		Iterations: 50_000,
		Seed:       &seed,
	}
}

// ScreeningTable returns the two-phase screening fixture: a 3×4 joint table
// over X∈{2..5}, Y∈{6..8}, the six detection conditionals and the standard
// query asked of it.
func ScreeningTable() (risk.JointObservationTable, risk.DetectionProbabilities, risk.ProbabilityQuery) {
	table := risk.JointObservationTable{
		Counts: [][]int{
			{25, 35, 20, 15},
			{30, 40, 25, 10},
			{15, 25, 30, 20},
		},
		XLevels: []int{2, 3, 4, 5},
		YLevels: []int{6, 7, 8},
		Total:   290,
	}
	det := risk.DetectionProbabilities{
		GivenX: []float64{0.8, 0.75, 0.7, 0.65},
		GivenY: []float64{0.6, 0.55},
	}
	query := risk.ProbabilityQuery{
		MarginalY:  8,
		SumMin:     0,
		SumMax:     10,
		PosteriorY: 8,
	}
	return table, det, query
}

// DeploymentHistory returns nine periods of deployment counts for four
// control types with the observed safeguard effects and maintenance loads.
func DeploymentHistory() risk.ControlDeploymentMatrix {
	return risk.ControlDeploymentMatrix{
		Counts: [][]float64{
			{2, 3, 1, 4, 2, 3, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 1, 2},
			{3, 2, 4, 1, 3, 2, 4, 3, 2},
			{1, 1, 2, 2, 1, 1, 2, 1, 1},
		},
		SafeguardEffect: []float64{85, 78, 92, 70, 88, 82, 95, 87, 80},
		MaintenanceLoad: []float64{45, 52, 38, 65, 42, 48, 35, 44, 50},
	}
}

// DeploymentSpec returns the standard optimization question over the
// DeploymentHistory fit.
func DeploymentSpec() risk.OptimizationSpec {
	return risk.OptimizationSpec{
		Current:          []float64{2, 1, 3, 1},
		UnitCosts:        []float64{10_000, 15_000, 8_000, 5_000},
		MaxAdditional:    []float64{5, 4, 6, 3},
		SafeguardTarget:  90,
		MaintenanceLimit: 50,
	}
}

// ControlNames returns display names for the four fixture control types.
func ControlNames() []string {
	return []string{"Firewalls", "IDS/IPS", "Endpoint Protection", "Security Training"}
}
