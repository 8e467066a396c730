package controls

import (
	"fmt"
	"math"
	"sort"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
)

// recommendationFloor filters out additions too small to act on.
const recommendationFloor = 0.01

// EvaluatePortfolio scores a concrete deployment under the fitted models.
func EvaluatePortfolio(model *risk.ControlModel, counts []float64) (risk.PortfolioEvaluation, error) {
	if err := validateModelShape(model, len(counts)); err != nil {
		return risk.PortfolioEvaluation{}, err
	}
	return risk.PortfolioEvaluation{
		SafeguardEffect: Predict(model.EffectWeights, counts),
		MaintenanceLoad: Predict(model.LoadWeights, counts),
	}, nil
}

// ROI relates the cost of an additional deployment to the annual savings
// implied by the expected risk reduction against the current loss
// expectancy.
func ROI(additional, costs []float64, riskReductionPercent, currentALE float64) (risk.ROIReport, error) {
	if len(additional) != len(costs) {
		return risk.ROIReport{}, core.NewInvalidParameterError("costs",
			fmt.Sprintf("%d costs for %d additional entries", len(costs), len(additional)))
	}

	var totalCost float64
	for i, d := range additional {
		totalCost += d * costs[i]
	}
	annualSavings := currentALE * riskReductionPercent / 100

	report := risk.ROIReport{
		TotalCost:         totalCost,
		AnnualSavings:     annualSavings,
		PaybackYears:      math.Inf(1),
		NetPresentValue3Y: 3*annualSavings - totalCost,
	}
	if totalCost > 0 {
		report.ROIPercent = (annualSavings - totalCost) / totalCost * 100
	}
	if annualSavings > 0 {
		report.PaybackYears = totalCost / annualSavings
	}
	return report, nil
}

// Recommendations turns an optimal delta vector into named, prioritized
// deployment advice, largest additions first.
func Recommendations(names []string, current, additional []float64) ([]risk.Recommendation, error) {
	if len(current) != len(additional) {
		return nil, core.NewInvalidParameterError("current",
			fmt.Sprintf("%d current counts for %d additional entries", len(current), len(additional)))
	}

	recs := make([]risk.Recommendation, 0, len(additional))
	for i, add := range additional {
		if add <= recommendationFloor {
			continue
		}
		rounded := math.Round(add*100) / 100
		recs = append(recs, risk.Recommendation{
			ControlName:           controlName(names, i),
			CurrentCount:          current[i],
			RecommendedAdditional: rounded,
			NewTotal:              current[i] + rounded,
			Priority:              priority(add),
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].RecommendedAdditional > recs[j].RecommendedAdditional
	})
	return recs, nil
}

func controlName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return defaultControlName(i)
}

func defaultControlName(i int) string {
	return fmt.Sprintf("Control Type %d", i+1)
}

func priority(added float64) string {
	switch {
	case added > 2:
		return "High"
	case added > 1:
		return "Medium"
	default:
		return "Low"
	}
}
