package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cyberrisk/app"
	"cyberrisk/domain/risk"
	"cyberrisk/internal"
	"cyberrisk/internal/config"
	"cyberrisk/internal/controls"
	"cyberrisk/internal/dataset"
	"cyberrisk/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	service := app.NewRiskService(cfg.Simulation.MaxWorkers, logger)

	rootCmd := &cobra.Command{
		Use:   "riskcli",
		Short: "Cyber-risk quantification demos: simulation, probabilities, control optimization",
	}
	rootCmd.AddCommand(
		newSimulateCmd(service, cfg),
		newProbabilityCmd(service),
		newOptimizeCmd(service, cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSimulateCmd(service *app.RiskService, cfg *config.Config) *cobra.Command {
	var iterations int
	var seed int64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the data-breach loss-expectancy scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := testkit.BreachScenario()
			if iterations > 0 {
				params.Iterations = iterations
			} else {
				params.Iterations = cfg.Simulation.DefaultIterations
			}
			if cmd.Flags().Changed("seed") {
				params.Seed = &seed
			}

			result, err := service.RunSimulation(context.Background(), params)
			if err != nil {
				return err
			}

			fmt.Printf("Asset value: mean %s, median %s\n",
				formatGBP(result.AssetMean), formatGBP(result.AssetMedian))
			fmt.Printf("P(asset ≤ %s): %.3f\n", formatGBP(params.AssetThreshold), result.ProbAssetBelow)
			fmt.Printf("Expected annual occurrences: %.2f (variance %.2f)\n",
				result.FrequencyMean, result.FrequencyVariance)
			fmt.Printf("P(loss > %s): %.3f\n", formatGBP(params.LossThreshold), result.ProbLossExceeds)
			fmt.Printf("P(%s ≤ loss ≤ %s): %.3f\n",
				formatGBP(params.LossRangeLow), formatGBP(params.LossRangeHigh), result.ProbLossWithin)
			fmt.Printf("Asset percentiles: P50 %s  P75 %s  P90 %s  P95 %s  P99 %s\n",
				formatGBP(result.AssetPercentiles.P50), formatGBP(result.AssetPercentiles.P75),
				formatGBP(result.AssetPercentiles.P90), formatGBP(result.AssetPercentiles.P95),
				formatGBP(result.AssetPercentiles.P99))
			fmt.Printf("Annualized loss expectancy: %s (seed %d)\n", formatGBP(result.ALE), result.Seed)
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Monte Carlo iterations (default from SIM_ITERATIONS)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for reproducible runs")
	return cmd
}

func newProbabilityCmd(service *app.RiskService) *cobra.Command {
	return &cobra.Command{
		Use:   "probability",
		Short: "Evaluate the two-phase screening joint table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, det, query := testkit.ScreeningTable()
			result, err := service.EvaluateConditionalProbabilities(context.Background(), table, det, query)
			if err != nil {
				return err
			}
			fmt.Printf("P(Y = %d): %.4f\n", query.MarginalY, result.PMarginal)
			fmt.Printf("P(%d ≤ X+Y ≤ %d): %.4f\n", query.SumMin, query.SumMax, result.PRange)
			fmt.Printf("P(Y = %d | T = positive): %.4f\n", query.PosteriorY, result.PConditional)
			fmt.Printf("P(T = positive): %.4f\n", result.PositiveRate)
			return nil
		},
	}
}

func newOptimizeCmd(service *app.RiskService, cfg *config.Config) *cobra.Command {
	var historyFile string
	var target, limit float64

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Recommend the minimum-cost control deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			history := testkit.DeploymentHistory()
			names := testkit.ControlNames()

			if historyFile == "" {
				historyFile = cfg.Paths.HistoryFile
			}
			if historyFile != "" {
				loaded, err := dataset.NewLoader(historyFile).Load()
				if err != nil {
					return err
				}
				history = loaded.Matrix
				names = loaded.ControlNames
			}

			spec := testkit.DeploymentSpec()
			if cmd.Flags().Changed("target") {
				spec.SafeguardTarget = target
			}
			if cmd.Flags().Changed("limit") {
				spec.MaintenanceLimit = limit
			}

			result, err := service.OptimizeControls(context.Background(), history, spec)
			if err != nil {
				return err
			}
			if result.Status != risk.StatusOptimal {
				fmt.Printf("No deployment satisfies the constraints: status %s\n", result.Status)
				return nil
			}

			fmt.Printf("Recommended additional deployment (total cost %s):\n", formatGBP(result.TotalCost))
			recs, err := controls.Recommendations(names, spec.Current, result.Additional)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("  current deployment already meets the targets")
			}
			for _, rec := range recs {
				fmt.Printf("  %-20s +%.2f units (now %.2f, priority %s)\n",
					rec.ControlName, rec.RecommendedAdditional, rec.NewTotal, rec.Priority)
			}
			fmt.Printf("Achieved safeguard effect %.2f, maintenance load %.2f\n",
				result.AchievedEffect, result.AchievedLoad)
			return nil
		},
	}
	cmd.Flags().StringVar(&historyFile, "history", "", "control-history file (xlsx or csv)")
	cmd.Flags().Float64Var(&target, "target", 90, "minimum safeguard effect")
	cmd.Flags().Float64Var(&limit, "limit", 50, "maximum maintenance load")
	return cmd
}

// formatGBP renders a monetary amount with thousands separators.
func formatGBP(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-£" + b.String() + frac
	}
	return "£" + b.String() + frac
}
