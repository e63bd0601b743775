// Package constants provides shared constants for the bizplan-forecast application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxHorizonYears is the longest projection horizon accepted
	MaxHorizonYears = 100

	// MonthsPerQuarter is the number of months in a quarter
	MonthsPerQuarter = 3

	// DaysPerMonth is the day count used to approximate daily revenue and cost
	// for working-capital estimates.
	DaysPerMonth = 30

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// DivisionPrecision is the number of decimal places kept by non-terminating
	// decimal divisions.
	DivisionPrecision = 28

	// CurrencyPlaces is the number of decimal places used when displaying
	// currency values.
	CurrencyPlaces = 2

	// CurrentAssetsShare is the fraction of the cumulative asset base used as a
	// proxy for current assets in the current ratio.
	CurrentAssetsShare = "0.30"

	// CurrentLiabilitiesShare is the fraction of cumulative debt used as a proxy
	// for current liabilities in the current ratio.
	CurrentLiabilitiesShare = "0.40"
)

// OPEX periodicities
const (
	PeriodicityMonthly   = "monthly"
	PeriodicityQuarterly = "quarterly"
	PeriodicityAnnual    = "annual"
)

// Depreciation methods
const (
	DepreciationLinear    = "linear"
	DepreciationDeclining = "declining"
)

// Working-capital change modes
const (
	// WorkingCapitalChangeLevel books the full BFR level as the period change.
	WorkingCapitalChangeLevel = "level"

	// WorkingCapitalChangeDelta books the month-over-month BFR difference.
	WorkingCapitalChangeDelta = "delta"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the spreadsheet output format
	OutputFormatXLSX = "xlsx"

	// OutputFormatPDF is the printable summary format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "plan.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. BIZPLAN_DATABASE_DSN
	EnvPrefix = "BIZPLAN"

	// DefaultScenarioName is used when a plan declares no scenarios
	DefaultScenarioName = "base"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML plans (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
