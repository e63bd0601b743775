package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/internal/store"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/optimization"
	"github.com/iwvelando/bizplan-forecast/pkg/output"
	"github.com/iwvelando/bizplan-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	configPath   string
	outputFormat string
	outputFile   string
	logLevel     string
	persist      bool
	workers      int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Project every active scenario of a plan",
	Long: `Project every active scenario of a plan.

When the plan has a funding section, pretty output ends with the funding
requirement of each scenario. Other formats only carry the projection; the
funding command prints the requirement on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProjection(cmd, runOpts)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a plan and print its warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfiguration(runOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration at %s: %w", runOpts.configPath, err)
		}
		if _, err := forecast.ProjectFromConfig(*conf); err != nil {
			return err
		}
		warnings := conf.ValidateConfiguration()
		for _, w := range warnings {
			fmt.Fprintln(cmd.OutOrStdout(), w)
		}
		if len(warnings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&runOpts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	}
	runCmd.Flags().StringVar(&runOpts.outputFormat, "output-format", "", "type of output override: pretty, csv, xlsx, pdf")
	runCmd.Flags().StringVar(&runOpts.outputFile, "output-file", "", "write output to this file instead of stdout")
	runCmd.Flags().StringVar(&runOpts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runOpts.persist, "persist", false, "store the results in the configured database")
	runCmd.Flags().IntVar(&runOpts.workers, "workers", 1, "months computed concurrently per scenario")

	rootCmd.AddCommand(runCmd, validateCmd)
}

func runProjection(cmd *cobra.Command, opts runOptions) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	format, file, err := resolveOutput(conf.Output, opts.outputFormat, opts.outputFile)
	if err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	results, err := forecast.GetForecast(logger, *conf, forecast.Options{Workers: opts.workers})
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	var funding []optimization.Summary
	if conf.Funding != nil {
		funding, err = fundingSummaries(logger, conf, forecast.Options{Workers: opts.workers})
		if err != nil {
			return err
		}
	}

	if opts.persist || conf.Database.Persist {
		if err := persist(cmd, logger, *conf, results); err != nil {
			return err
		}
	}

	return writeResults(cmd.OutOrStdout(), format, file, results, funding)
}

// resolveOutput applies the CLI overrides to the plan's output settings.
func resolveOutput(conf config.OutputConfig, formatFlag, fileFlag string) (string, string, error) {
	format := conf.Format
	if formatFlag != "" {
		format = formatFlag
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", "", err
	}

	file := conf.File
	if fileFlag != "" {
		file = fileFlag
	}
	if file == "" && validation.RequiresFile(format) {
		return "", "", fmt.Errorf("output format %s requires an output file", format)
	}
	return format, file, nil
}

func persist(cmd *cobra.Command, logger *zap.Logger, conf config.Configuration, results []forecast.Projection) error {
	project, err := forecast.ProjectFromConfig(conf)
	if err != nil {
		return err
	}
	repo, err := store.Open(cmd.Context(), logger, conf.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = repo.Close()
	}()

	if err := repo.SaveProjections(cmd.Context(), project.ID, results); err != nil {
		return fmt.Errorf("failed to persist projection: %w", err)
	}
	logger.Info(fmt.Sprintf("persisted %d scenarios for project %s", len(results), project.ID),
		zap.String("op", "main.persist"),
	)
	return nil
}

// writeResults renders to file when one is given, otherwise to w. Funding
// summaries follow a pretty projection and are left out of other formats.
func writeResults(w io.Writer, format, file string, results []forecast.Projection, funding []optimization.Summary) error {
	if file == "" {
		return render(w, format, results, funding)
	}

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", file, err)
	}
	if err := render(f, format, results, funding); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func render(w io.Writer, format string, results []forecast.Projection, funding []optimization.Summary) error {
	if err := output.Write(w, format, results); err != nil {
		return err
	}
	if format != constants.OutputFormatPretty || len(funding) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\n--- Funding requirement ---"); err != nil {
		return err
	}
	return writeFunding(w, funding)
}
