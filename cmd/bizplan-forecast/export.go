package main

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/internal/store"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportOptions struct {
	configPath   string
	outputFormat string
	outputFile   string
	logLevel     string
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the stored projection of a plan without recomputing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportStored(cmd, exportOpts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	exportCmd.Flags().StringVar(&exportOpts.outputFormat, "output-format", "", "type of output override: pretty, csv, xlsx, pdf")
	exportCmd.Flags().StringVar(&exportOpts.outputFile, "output-file", "", "write output to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportOpts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(exportCmd)
}

func exportStored(cmd *cobra.Command, opts exportOptions) error {
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

	project, err := forecast.ProjectFromConfig(*conf)
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

	results, err := repo.ListProject(cmd.Context(), project.ID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no stored projection for project %s", project.ID)
	}
	logger.Debug(fmt.Sprintf("loaded %d stored scenarios", len(results)),
		zap.String("op", "main.export"),
	)

	return writeResults(cmd.OutOrStdout(), format, file, results, nil)
}
