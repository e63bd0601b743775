// Package config defines the data structures related to configuration and
// includes functions for loading and parsing a business plan.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds a complete business plan and the settings used to run it.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`

	Project          Project           `yaml:"project"`
	Assumptions      Assumptions       `yaml:"assumptions"`
	Tax              Tax               `yaml:"tax"`
	WorkingCapital   WorkingCapital    `yaml:"workingCapital" mapstructure:"workingCapital"`
	Products         []Product         `yaml:"products"`
	SalesProjections []SalesProjection `yaml:"salesProjections" mapstructure:"salesProjections"`
	Opex             []OpexLine        `yaml:"opex"`
	PayrollRoles     []PayrollRole     `yaml:"payrollRoles" mapstructure:"payrollRoles"`
	Headcount        []Headcount       `yaml:"headcount"`
	Capex            []CapexAsset      `yaml:"capex"`
	Loans            []Loan            `yaml:"loans"`
	Scenarios        []Scenario        `yaml:"scenarios"`
	Funding          *FundingConfig    `yaml:"funding,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`                                  // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`                                 // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, xlsx, pdf
	File   string `yaml:"file,omitempty"`   // required for xlsx and pdf
}

// DatabaseConfig controls persistence of projection results.
type DatabaseConfig struct {
	DSN     string `yaml:"dsn,omitempty"`
	Persist bool   `yaml:"persist,omitempty"`
}

// Project describes the modeled business and its forecast horizon.
type Project struct {
	ID           string `yaml:"id,omitempty"`
	Name         string `yaml:"name"`
	StartDate    string `yaml:"startDate" mapstructure:"startDate"`
	HorizonYears int    `yaml:"horizonYears" mapstructure:"horizonYears"`
}

// Assumptions holds plan-wide economic assumptions.
type Assumptions struct {
	InflationRate decimal.Decimal `yaml:"inflationRate" mapstructure:"inflationRate"` // annual, percent
}

// Tax holds corporate tax settings.
type Tax struct {
	CorporateRate decimal.Decimal `yaml:"corporateRate" mapstructure:"corporateRate"` // percent
}

// WorkingCapital holds the BFR assumptions.
type WorkingCapital struct {
	DSO              decimal.Decimal `yaml:"dso"`
	InventoryDays    decimal.Decimal `yaml:"inventoryDays" mapstructure:"inventoryDays"`
	DPO              decimal.Decimal `yaml:"dpo"`
	ClientAdvances   decimal.Decimal `yaml:"clientAdvances" mapstructure:"clientAdvances"`
	SupplierAdvances decimal.Decimal `yaml:"supplierAdvances" mapstructure:"supplierAdvances"`
	ChangeMode       string          `yaml:"changeMode,omitempty" mapstructure:"changeMode"` // level, delta
}

// Product is a sellable product or service.
type Product struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	UnitPrice   decimal.Decimal   `yaml:"unitPrice" mapstructure:"unitPrice"`
	UnitCost    decimal.Decimal   `yaml:"unitCost" mapstructure:"unitCost"`
	Seasonality []decimal.Decimal `yaml:"seasonality,omitempty"`
}

// SalesProjection is the planned volume of a product in a month.
type SalesProjection struct {
	Product string          `yaml:"product"`
	Date    string          `yaml:"date"`
	Volume  decimal.Decimal `yaml:"volume"`
}

// OpexLine is a fixed or revenue-indexed operating expense.
type OpexLine struct {
	Name              string          `yaml:"name"`
	Amount            decimal.Decimal `yaml:"amount"`
	Periodicity       string          `yaml:"periodicity,omitempty"` // monthly, quarterly, annual
	StartDate         string          `yaml:"startDate,omitempty" mapstructure:"startDate"`
	EndDate           string          `yaml:"endDate,omitempty" mapstructure:"endDate"`
	Variable          bool            `yaml:"variable,omitempty"`
	RevenuePercentage decimal.Decimal `yaml:"revenuePercentage,omitempty" mapstructure:"revenuePercentage"`
}

// PayrollRole is a position and its monthly cost per head.
type PayrollRole struct {
	ID                 string          `yaml:"id"`
	Name               string          `yaml:"name"`
	GrossSalary        decimal.Decimal `yaml:"grossSalary" mapstructure:"grossSalary"`
	EmployerChargeRate decimal.Decimal `yaml:"employerChargeRate" mapstructure:"employerChargeRate"` // percent
	Benefits           decimal.Decimal `yaml:"benefits"`
}

// Headcount is the number of heads planned for a role in a month.
type Headcount struct {
	Role  string `yaml:"role"`
	Date  string `yaml:"date"`
	Count int    `yaml:"count"`
}

// CapexAsset is a capital expenditure.
type CapexAsset struct {
	Name             string          `yaml:"name"`
	AcquisitionDate  string          `yaml:"acquisitionDate" mapstructure:"acquisitionDate"`
	Amount           decimal.Decimal `yaml:"amount"`
	SalvageValue     decimal.Decimal `yaml:"salvageValue" mapstructure:"salvageValue"`
	UsefulLifeMonths int             `yaml:"usefulLifeMonths" mapstructure:"usefulLifeMonths"`
	Method           string          `yaml:"method,omitempty"` // linear, declining
}

// Loan is an amortizing loan.
type Loan struct {
	Name             string          `yaml:"name"`
	DisbursementDate string          `yaml:"disbursementDate" mapstructure:"disbursementDate"`
	Principal        decimal.Decimal `yaml:"principal"`
	InterestRate     decimal.Decimal `yaml:"interestRate" mapstructure:"interestRate"` // annual nominal, percent
	Term             int             `yaml:"term"`                                     // months
}

// Scenario is a named variant of the plan. Factors scale the corresponding
// inputs linearly and default to 1; Loans and Capex are added to the plan's own.
type Scenario struct {
	Name             string           `yaml:"name"`
	ID               string           `yaml:"id,omitempty"`
	Active           bool             `yaml:"active"`
	RevenueFactor    *decimal.Decimal `yaml:"revenueFactor,omitempty" mapstructure:"revenueFactor"`
	DirectCostFactor *decimal.Decimal `yaml:"directCostFactor,omitempty" mapstructure:"directCostFactor"`
	OpexFactor       *decimal.Decimal `yaml:"opexFactor,omitempty" mapstructure:"opexFactor"`
	CapexFactor      *decimal.Decimal `yaml:"capexFactor,omitempty" mapstructure:"capexFactor"`
	Loans            []Loan           `yaml:"loans,omitempty"`
	Capex            []CapexAsset     `yaml:"capex,omitempty"`
}

// FundingConfig asks for the smallest loan, disbursed at the horizon start,
// that keeps cumulative cash at or above CashFloor in every active scenario.
type FundingConfig struct {
	CashFloor    decimal.Decimal `yaml:"cashFloor" mapstructure:"cashFloor"`
	InterestRate decimal.Decimal `yaml:"interestRate" mapstructure:"interestRate"` // annual nominal, percent
	Term         int             `yaml:"term"`                                     // months
	MaxPrincipal decimal.Decimal `yaml:"maxPrincipal" mapstructure:"maxPrincipal"`
	// Tolerance is the precision of the search; zero means one currency unit.
	Tolerance decimal.Decimal `yaml:"tolerance,omitempty"`
}

// Validate checks the search can run.
func (f *FundingConfig) Validate() error {
	switch {
	case f.Term <= 0:
		return fmt.Errorf("funding term must be positive, got %d", f.Term)
	case !f.MaxPrincipal.IsPositive():
		return fmt.Errorf("funding maxPrincipal must be positive, got %s", f.MaxPrincipal)
	case f.InterestRate.IsNegative():
		return fmt.Errorf("funding interestRate cannot be negative, got %s", f.InterestRate)
	case f.Tolerance.IsNegative():
		return fmt.Errorf("funding tolerance cannot be negative, got %s", f.Tolerance)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// io.Reader. Each call uses its own viper instance so concurrent loads do not
// share state.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys absent from the file are only picked up from the environment when bound.
	_ = v.BindEnv("database.dsn")
	_ = v.BindEnv("database.persist")
	_ = v.BindEnv("logging.level")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		DecimalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	decimalPtrType = reflect.TypeOf(&decimal.Decimal{})
)

// DecimalHookFunc decodes YAML numbers and numeric strings into decimal.Decimal.
func DecimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType && t != decimalPtrType {
			return data, nil
		}
		if data == nil {
			return data, nil
		}

		d, err := toDecimal(data)
		if err != nil {
			return nil, err
		}
		if t == decimalPtrType {
			return &d, nil
		}
		return d, nil
	}
}

func toDecimal(data interface{}) (decimal.Decimal, error) {
	switch v := data.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		return *v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return decimal.NewFromInt(int64(v)), nil
	default:
		return decimal.Zero, fmt.Errorf("cannot decode %T into a decimal", data)
	}
}

// ApplyDefaults fills in settings a plan may omit.
func (conf *Configuration) ApplyDefaults() {
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if conf.WorkingCapital.ChangeMode == "" {
		conf.WorkingCapital.ChangeMode = constants.WorkingCapitalChangeLevel
	}
	if len(conf.Scenarios) == 0 {
		conf.Scenarios = []Scenario{{Name: constants.DefaultScenarioName, Active: true}}
	}
}

// ActiveScenarios returns the scenarios that should be forecast, in order.
func (conf *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range conf.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		StartDate:          c.Project.StartDate,
		HorizonYears:       c.Project.HorizonYears,
		WorkingCapitalMode: strings.ToLower(strings.TrimSpace(c.WorkingCapital.ChangeMode)),
		Capex:              capexInfo(c.Capex),
		Loans:              loanInfo(c.Loans),
	}

	for _, product := range c.Products {
		validator.Products = append(validator.Products, validation.ProductConfig{
			ID:             product.ID,
			SeasonalityLen: len(product.Seasonality),
		})
	}
	for _, projection := range c.SalesProjections {
		validator.SalesProjections = append(validator.SalesProjections, validation.ReferenceConfig{
			Ref:  projection.Product,
			Date: projection.Date,
		})
	}
	for _, role := range c.PayrollRoles {
		validator.RoleIDs = append(validator.RoleIDs, role.ID)
	}
	for _, entry := range c.Headcount {
		validator.Headcount = append(validator.Headcount, validation.ReferenceConfig{
			Ref:  entry.Role,
			Date: entry.Date,
		})
	}
	for _, line := range c.Opex {
		validator.Opex = append(validator.Opex, validation.OpexConfig{
			Name:        line.Name,
			Periodicity: strings.ToLower(strings.TrimSpace(line.Periodicity)),
			StartDate:   line.StartDate,
			EndDate:     line.EndDate,
			Variable:    line.Variable,
		})
	}
	for _, scenario := range c.Scenarios {
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:   scenario.Name,
			Active: scenario.Active,
			Loans:  loanInfo(scenario.Loans),
			Capex:  capexInfo(scenario.Capex),
		})
	}

	return validator.ValidateAll()
}

func loanInfo(loans []Loan) []validation.LoanConfig {
	var info []validation.LoanConfig
	for _, loan := range loans {
		info = append(info, validation.LoanConfig{
			Name:             loan.Name,
			DisbursementDate: loan.DisbursementDate,
			Term:             loan.Term,
		})
	}
	return info
}

func capexInfo(assets []CapexAsset) []validation.CapexConfig {
	var info []validation.CapexConfig
	for _, asset := range assets {
		info = append(info, validation.CapexConfig{
			Name:             asset.Name,
			AcquisitionDate:  asset.AcquisitionDate,
			UsefulLifeMonths: asset.UsefulLifeMonths,
			Method:           strings.ToLower(strings.TrimSpace(asset.Method)),
		})
	}
	return info
}
