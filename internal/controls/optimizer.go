package controls

import (
	"errors"
	"fmt"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// simplexTol is the pivot tolerance handed to the simplex solver.
	simplexTol = 1e-10
	// cleanupTol absorbs solver noise when reading deltas off the vertex.
	cleanupTol = 1e-9
)

// Optimize finds the minimum-cost additional deployment satisfying the
// safeguard target and maintenance limit under the fitted model:
//
//	minimize   costs · Δ
//	subject to effect_weights · (current + Δ) ≥ safeguard_target
//	           load_weights · (current + Δ) ≤ maintenance_limit
//	           0 ≤ Δᵢ ≤ max_additionalᵢ
//
// Deltas are continuous; fractional units are an accepted relaxation.
// Infeasibility and unboundedness are business outcomes reported in the
// result status, not errors. Under degeneracy any optimal vertex may be
// returned; only the objective value is stable.
func Optimize(model *risk.ControlModel, spec risk.OptimizationSpec) (*risk.OptimizationResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := validateModelShape(model, len(spec.Current)); err != nil {
		return nil, err
	}

	n := len(spec.Current)
	currentEffect := Predict(model.EffectWeights, spec.Current)
	currentLoad := Predict(model.LoadWeights, spec.Current)

	// Inequality rows over Δ: the safeguard floor (negated into ≤ form),
	// the maintenance ceiling, and one upper bound per control type.
	rows := 2 + n
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for j := 0; j < n; j++ {
		g.Set(0, j, -model.EffectWeights[j])
		g.Set(1, j, model.LoadWeights[j])
	}
	h[0] = -(spec.SafeguardTarget - currentEffect)
	h[1] = spec.MaintenanceLimit - currentLoad
	for i := 0; i < n; i++ {
		g.Set(2+i, i, 1)
		h[2+i] = spec.MaxAdditional[i]
	}

	delta, err := solveInequalityForm(spec.UnitCosts, g, h)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &risk.OptimizationResult{Status: risk.StatusInfeasible, Model: model}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &risk.OptimizationResult{Status: risk.StatusUnbounded, Model: model}, nil
	case err != nil:
		return nil, fmt.Errorf("control optimization: %w", err)
	}

	deployed := make([]float64, n)
	totalCost := 0.0
	for i, d := range delta {
		totalCost += spec.UnitCosts[i] * d
		deployed[i] = spec.Current[i] + d
	}

	return &risk.OptimizationResult{
		Status:         risk.StatusOptimal,
		Additional:     delta,
		TotalCost:      totalCost,
		AchievedEffect: Predict(model.EffectWeights, deployed),
		AchievedLoad:   Predict(model.LoadWeights, deployed),
		Model:          model,
	}, nil
}

// OptimizeBudget solves the relaxed control-selection problem: maximize
// total effectiveness under a spending budget, each control selectable
// fractionally in [0, 1].
func OptimizeBudget(budget float64, costs, effectiveness []float64) (*risk.BudgetAllocation, error) {
	if len(costs) == 0 || len(costs) != len(effectiveness) {
		return nil, fmt.Errorf("control optimization: %d costs for %d effectiveness scores",
			len(costs), len(effectiveness))
	}
	if budget < 0 {
		return nil, fmt.Errorf("control optimization: budget %g is negative", budget)
	}

	n := len(costs)
	rows := 1 + n
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	obj := make([]float64, n)
	for i := 0; i < n; i++ {
		obj[i] = -effectiveness[i] // maximize by minimizing the negation
		g.Set(0, i, costs[i])
		g.Set(1+i, i, 1)
		h[1+i] = 1
	}
	h[0] = budget

	selected, err := solveInequalityForm(obj, g, h)
	if err != nil {
		return nil, fmt.Errorf("budget optimization: %w", err)
	}

	alloc := &risk.BudgetAllocation{Selected: selected}
	for i, s := range selected {
		alloc.TotalCost += s * costs[i]
		alloc.TotalEffectiveness += s * effectiveness[i]
	}
	if budget > 0 {
		alloc.BudgetUtilization = alloc.TotalCost / budget * 100
	}
	return alloc, nil
}

// solveInequalityForm minimizes c·x subject to g·x ≤ h, x ≥ 0 by adding one
// slack variable per row and running the simplex method on the standard
// form.
func solveInequalityForm(c []float64, g *mat.Dense, h []float64) ([]float64, error) {
	rows, n := g.Dims()

	std := mat.NewDense(rows, n+rows, nil)
	stdC := make([]float64, n+rows)
	copy(stdC, c)
	for i := 0; i < rows; i++ {
		for j := 0; j < n; j++ {
			std.Set(i, j, g.At(i, j))
		}
		std.Set(i, n+i, 1)
	}

	_, x, err := lp.Simplex(stdC, std, h, simplexTol, nil)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		v := x[i]
		if v < 0 && v > -cleanupTol {
			v = 0
		}
		out[i] = v
	}
	return out, nil
}

func validateModelShape(model *risk.ControlModel, n int) error {
	if model == nil {
		return core.NewInvalidParameterError("model", "must not be nil")
	}
	if len(model.EffectWeights) != n || len(model.LoadWeights) != n {
		return core.NewInvalidParameterError("model",
			fmt.Sprintf("%d/%d weights for %d control types",
				len(model.EffectWeights), len(model.LoadWeights), n))
	}
	return nil
}
