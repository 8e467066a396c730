// Package controls fits linear control-effectiveness models from historical
// deployment data and solves the minimum-cost deployment linear program over
// the fitted coefficients.
package controls

import (
	"fmt"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"

	"gonum.org/v1/gonum/mat"
)

// FitModels fits two independent ordinary-least-squares models, one per
// effect measure, from per-period control deployment counts. The models
// carry one weight per control type and no intercept.
//
// Rank deficiency is reported, never silently approximated: too few
// observations yield ErrInsufficientData, a singular design ErrSingularModel.
func FitModels(hist risk.ControlDeploymentMatrix) (*risk.ControlModel, error) {
	if err := hist.Validate(); err != nil {
		return nil, err
	}
	types := hist.ControlTypes()
	periods := hist.Periods()
	if periods < types+1 {
		return nil, fmt.Errorf("%w: %d observation periods for %d control types, need at least %d",
			core.ErrInsufficientData, periods, types, types+1)
	}

	design := mat.NewDense(periods, types, nil)
	for i := 0; i < periods; i++ {
		for j := 0; j < types; j++ {
			design.Set(i, j, hist.Counts[j][i])
		}
	}

	effect, err := leastSquares(design, hist.SafeguardEffect)
	if err != nil {
		return nil, fmt.Errorf("%w: safeguard-effect fit: %v", core.ErrSingularModel, err)
	}
	load, err := leastSquares(design, hist.MaintenanceLoad)
	if err != nil {
		return nil, fmt.Errorf("%w: maintenance-load fit: %v", core.ErrSingularModel, err)
	}

	return &risk.ControlModel{
		EffectWeights: effect,
		LoadWeights:   load,
	}, nil
}

// leastSquares solves the overdetermined system design·beta ≈ y via QR.
func leastSquares(design *mat.Dense, y []float64) ([]float64, error) {
	_, cols := design.Dims()
	rhs := mat.NewDense(len(y), 1, y)

	var beta mat.Dense
	if err := beta.Solve(design, rhs); err != nil {
		return nil, err
	}

	out := make([]float64, cols)
	for i := range out {
		out[i] = beta.At(i, 0)
	}
	return out, nil
}

// Predict evaluates weights · counts.
func Predict(weights, counts []float64) float64 {
	var v float64
	for i, w := range weights {
		v += w * counts[i]
	}
	return v
}
