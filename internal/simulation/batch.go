package simulation

import (
	"context"
	"fmt"

	"cyberrisk/domain/core"
	"cyberrisk/domain/risk"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent scenario evaluations when the caller
// does not configure a limit.
const DefaultWorkers = 4

// BatchRunner evaluates independent scenarios in parallel. Each scenario
// gets its own random source inside Engine.Run, so no generator state is
// shared across workers.
type BatchRunner struct {
	engine  *Engine
	workers int
}

// NewBatchRunner creates a batch runner with the given worker limit
func NewBatchRunner(engine *Engine, workers int) *BatchRunner {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &BatchRunner{engine: engine, workers: workers}
}

// RunAll evaluates every scenario, preserving input order in the outcomes.
// The first failure cancels the remaining work and is returned.
func (r *BatchRunner) RunAll(ctx context.Context, scenarios []risk.NamedScenario) ([]risk.ScenarioOutcome, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	outcomes := make([]risk.ScenarioOutcome, len(scenarios))
	for i, sc := range scenarios {
		g.Go(func() error {
			result, err := r.engine.Run(ctx, sc.Parameters)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			outcomes[i] = risk.ScenarioOutcome{
				RunID:  core.NewRunID(),
				Name:   sc.Name,
				Result: result,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
