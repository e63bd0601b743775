package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/iwvelando/bizplan-forecast/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPlan = "../../test/test_config.yaml"

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		conf     config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", conf: config.LoggingConfig{}},
		{name: "console debug", conf: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", conf: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", conf: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "invalid format", conf: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.conf, tt.override)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestInitializeLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "forecast.log")
	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "")
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestResolveOutput(t *testing.T) {
	tests := []struct {
		name       string
		conf       config.OutputConfig
		formatFlag string
		fileFlag   string
		wantFormat string
		wantFile   string
		wantErr    bool
	}{
		{name: "default pretty", wantFormat: "pretty"},
		{name: "config format", conf: config.OutputConfig{Format: "csv"}, wantFormat: "csv"},
		{name: "flag overrides config", conf: config.OutputConfig{Format: "csv"}, formatFlag: "pretty", wantFormat: "pretty"},
		{name: "xlsx with file", formatFlag: "xlsx", fileFlag: "out.xlsx", wantFormat: "xlsx", wantFile: "out.xlsx"},
		{name: "pdf file from config", conf: config.OutputConfig{Format: "pdf", File: "plan.pdf"}, wantFormat: "pdf", wantFile: "plan.pdf"},
		{name: "xlsx without file", formatFlag: "xlsx", wantErr: true},
		{name: "unknown format", formatFlag: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, file, err := resolveOutput(tt.conf, tt.formatFlag, tt.fileFlag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}

func TestWriteResultsToFile(t *testing.T) {
	results := []forecast.Projection{testutil.SampleProjection("Base", datetime.NewPeriod(2025, 1), 3)}
	path := filepath.Join(t.TempDir(), "out.csv")

	var stdout bytes.Buffer
	require.NoError(t, writeResults(&stdout, "csv", path, results, nil))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Base,2025-01,0,"))
}

func newTestCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunProjectionCSV(t *testing.T) {
	var out bytes.Buffer
	err := runProjection(newTestCommand(&out), runOptions{
		configPath:   testPlan,
		outputFormat: "csv",
		logLevel:     "error",
		workers:      4,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// header plus 36 months for each of the two active scenarios
	assert.Len(t, lines, 1+2*36)
	assert.True(t, strings.HasPrefix(lines[0], "scenario,date,month index"))
}

func TestRunProjectionRendersFunding(t *testing.T) {
	plan, err := os.ReadFile(testPlan)
	require.NoError(t, err)
	plan = append(plan, []byte(`
funding:
  cashFloor: -100000000
  interestRate: 6
  term: 60
  maxPrincipal: 50000
`)...)
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, plan, 0o600))

	var pretty bytes.Buffer
	require.NoError(t, runProjection(newTestCommand(&pretty), runOptions{configPath: path, logLevel: "error"}))
	assert.Contains(t, pretty.String(), "--- Results for scenario base")
	assert.Contains(t, pretty.String(), "--- Funding requirement")
	assert.Contains(t, pretty.String(), "no additional funding needed")

	var csvOut bytes.Buffer
	require.NoError(t, runProjection(newTestCommand(&csvOut), runOptions{configPath: path, outputFormat: "csv", logLevel: "error"}))
	assert.NotContains(t, csvOut.String(), "Funding requirement")
	assert.Len(t, strings.Split(strings.TrimSpace(csvOut.String()), "\n"), 1+2*36)
}

func TestRunProjectionMissingConfig(t *testing.T) {
	var out bytes.Buffer
	err := runProjection(newTestCommand(&out), runOptions{configPath: "does-not-exist.yaml"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestLoadServerConfigOverrides(t *testing.T) {
	cfg, err := loadServerConfig(serveOptions{
		configPath:    filepath.Join(t.TempDir(), "missing.yaml"),
		address:       "127.0.0.1:9090",
		maxUploadSize: "1M",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Address)
	assert.Equal(t, int64(1024*1024), cfg.UploadSizeBytes())

	_, err = loadServerConfig(serveOptions{maxUploadSize: "lots"})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIZPLAN_DOTENV_CHECK=present\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BIZPLAN_DOTENV_CHECK") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "present", os.Getenv("BIZPLAN_DOTENV_CHECK"))
}

func TestFundingSummaries(t *testing.T) {
	conf, err := config.LoadConfiguration(testPlan)
	require.NoError(t, err)
	conf.Funding = &config.FundingConfig{
		CashFloor:    mathutil.MustParse("-100000000"),
		InterestRate: mathutil.MustParse("6"),
		Term:         60,
		MaxPrincipal: mathutil.MustParse("50000"),
	}

	summaries, err := fundingSummaries(zap.NewNop(), conf, forecast.Options{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "base", summaries[0].Scenario)
	assert.Equal(t, "pessimistic", summaries[1].Scenario)

	var out bytes.Buffer
	require.NoError(t, writeFunding(&out, summaries))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "base "))
	assert.Contains(t, lines[1], "$0.00")
	assert.Contains(t, lines[1], "no additional funding needed")

	conf.Funding = nil
	_, err = fundingSummaries(zap.NewNop(), conf, forecast.Options{})
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, version+"\n", out.String())
}
