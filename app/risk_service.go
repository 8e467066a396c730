// Package app exposes the analytical core through a single service facade.
// Surrounding layers (HTTP handlers, job runners) validate payloads into the
// domain records, call these methods and render the results; the facade
// itself performs no I/O and keeps no state between calls.
package app

import (
	"context"
	"time"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"
	"cyberrisk/internal"
	"cyberrisk/internal/controls"
	"cyberrisk/internal/probability"
	"cyberrisk/internal/simulation"
)

// RiskService orchestrates the three analytical engines
type RiskService struct {
	engine    *simulation.Engine
	batch     *simulation.BatchRunner
	evaluator *probability.Evaluator
	log       *internal.Logger
}

// NewRiskService creates a risk service with the given batch worker limit
func NewRiskService(workers int, logger *internal.Logger) *RiskService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	engine := simulation.NewEngine()
	return &RiskService{
		engine:    engine,
		batch:     simulation.NewBatchRunner(engine, workers),
		evaluator: probability.NewEvaluator(),
		log:       logger,
	}
}

// RunSimulation executes one loss-expectancy scenario.
func (s *RiskService) RunSimulation(ctx context.Context, params risk.ScenarioParameters) (*risk.SimulationResult, error) {
	start := time.Now()
	result, err := s.engine.Run(ctx, params)
	if err != nil {
		s.log.Error("simulation failed after %s: %v", time.Since(start), err)
		return nil, err
	}
	s.log.Info("simulation complete: %d iterations, seed %d, ALE %.2f (%s)",
		result.Iterations, result.Seed, result.ALE, time.Since(start))
	return result, nil
}

// RunScenarios evaluates independent scenarios in parallel, one random
// source per scenario.
func (s *RiskService) RunScenarios(ctx context.Context, scenarios []risk.NamedScenario) ([]risk.ScenarioOutcome, error) {
	outcomes, err := s.batch.RunAll(ctx, scenarios)
	if err != nil {
		s.log.Error("batch evaluation failed: %v", err)
		return nil, err
	}
	s.log.Info("batch evaluation complete: %d scenarios", len(outcomes))
	return outcomes, nil
}

// EvaluateConditionalProbabilities answers marginal, range and posterior
// queries over a joint observation table.
func (s *RiskService) EvaluateConditionalProbabilities(ctx context.Context, table risk.JointObservationTable, det risk.DetectionProbabilities, query risk.ProbabilityQuery) (*risk.ProbabilityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewCancelledError(err)
	}
	result, err := s.evaluator.Evaluate(table, det, query)
	if err != nil {
		s.log.Error("probability evaluation failed: %v", err)
		return nil, err
	}
	return result, nil
}

// OptimizeControls fits the effect models from history and solves the
// minimum-cost deployment program. Infeasibility is reported in the result
// status, not as an error.
func (s *RiskService) OptimizeControls(ctx context.Context, history risk.ControlDeploymentMatrix, spec risk.OptimizationSpec) (*risk.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewCancelledError(err)
	}
	model, err := controls.FitModels(history)
	if err != nil {
		s.log.Error("control model fit failed: %v", err)
		return nil, err
	}
	result, err := controls.Optimize(model, spec)
	if err != nil {
		s.log.Error("control optimization failed: %v", err)
		return nil, err
	}
	s.log.Info("control optimization: status %s, total cost %.2f", result.Status, result.TotalCost)
	return result, nil
}

// EvaluatePortfolio scores a deployment under models fit from history.
func (s *RiskService) EvaluatePortfolio(history risk.ControlDeploymentMatrix, counts []float64) (*risk.PortfolioEvaluation, error) {
	model, err := controls.FitModels(history)
	if err != nil {
		return nil, err
	}
	eval, err := controls.EvaluatePortfolio(model, counts)
	if err != nil {
		return nil, err
	}
	return &eval, nil
}
