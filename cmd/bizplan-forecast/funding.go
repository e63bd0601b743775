package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/internal/optimizer"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/format"
	"github.com/iwvelando/bizplan-forecast/pkg/optimization"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type fundingOptions struct {
	configPath string
	logLevel   string
	workers    int
}

var fundingOpts fundingOptions

var fundingCmd = &cobra.Command{
	Use:   "funding",
	Short: "Find the loan each scenario needs to keep cash above the plan's floor",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfiguration(fundingOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration at %s: %w", fundingOpts.configPath, err)
		}

		logger, err := initializeLogger(conf.Logging, fundingOpts.logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		summaries, err := fundingSummaries(logger, conf, forecast.Options{Workers: fundingOpts.workers})
		if err != nil {
			return err
		}
		return writeFunding(cmd.OutOrStdout(), summaries)
	},
}

func init() {
	fundingCmd.Flags().StringVar(&fundingOpts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	fundingCmd.Flags().StringVar(&fundingOpts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fundingCmd.Flags().IntVar(&fundingOpts.workers, "workers", 1, "months computed concurrently per scenario")

	rootCmd.AddCommand(fundingCmd)
}

// fundingSummaries runs the funding search in active scenario order.
func fundingSummaries(logger *zap.Logger, conf *config.Configuration, opts forecast.Options) ([]optimization.Summary, error) {
	runner, err := optimizer.NewRunner(logger, conf, opts)
	if err != nil {
		return nil, err
	}
	result, err := runner.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to compute funding requirement: %w", err)
	}

	var ordered []optimization.Summary
	for _, scenario := range conf.ActiveScenarios() {
		if summary, ok := result.Summaries[scenario.Name]; ok {
			ordered = append(ordered, summary)
		}
	}
	return ordered, nil
}

func writeFunding(w io.Writer, summaries []optimization.Summary) error {
	if _, err := fmt.Fprintf(w, "%-20s | %16s | %16s | %8s | %s\n",
		"Scenario", "Funding", "Minimum cash", "Month", "Notes"); err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-20s | %16s | %16s | %8s | %s\n",
			s.Scenario,
			format.Currency(s.Value),
			format.Currency(s.MinimumCash),
			s.MinimumCashDate,
			strings.Join(s.Notes, "; "),
		); err != nil {
			return err
		}
	}
	return nil
}
