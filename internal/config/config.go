package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/harchamaq/informes/internal/env"
)

// Config represents the full application configuration surface.
type Config struct {
	Quarter Quarter
	Rates   RatesConfig
	Files   FilesConfig
	UF      UFConfig
	Server  ServerConfig
}

// Quarter is the fixed reporting window: three consecutive months of one year.
type Quarter struct {
	Year   int
	Months [3]time.Month
}

// Contains reports whether the date falls inside the reporting quarter.
func (q Quarter) Contains(t time.Time) bool {
	if t.Year() != q.Year {
		return false
	}
	for _, m := range q.Months {
		if t.Month() == m {
			return true
		}
	}
	return false
}

// Label is the human form used in report headings, e.g. "Q4 2025".
func (q Quarter) Label() string {
	return fmt.Sprintf("Q%d %d", (int(q.Months[0])-1)/3+1, q.Year)
}

// RatesConfig holds the business constants used across valuation and
// aggregation. They are configuration, not literals, so tests and future
// quarters can override them.
type RatesConfig struct {
	// HourlyLaborCost is the fixed shop rate applied to every labor hour (CLP).
	HourlyLaborCost decimal.Decimal
	// UFUnitsPerReport is the mandated UF amount billed per index-unit
	// production report, regardless of the row's quantity field.
	UFUnitsPerReport decimal.Decimal
	// LeaseVATDivisor strips the 19% VAT embedded in lease installments.
	LeaseVATDivisor decimal.Decimal
	// HoursPerDay converts day-rated production into equivalent hours.
	HoursPerDay decimal.Decimal
}

// FilesConfig locates the quarter's input exports and output artifacts.
type FilesConfig struct {
	ProductionCSV  string
	LaborHoursCSV  string
	PartsCSV       string
	LeasingCSV     string
	LedgerDir      string
	ContractsXLSX  string
	OutputXLSX     string
	OutputHTML     string
	OutputJSON     string
	WorkshopOrigin string
}

// UFConfig controls the Unidad de Fomento rate lookup chain.
type UFConfig struct {
	APIBaseURL string
	ConfigPath string
	// ManualValue short-circuits the lookup chain when positive.
	ManualValue decimal.Decimal
	// DefaultValue is the last-resort rate when API and config file both fail.
	DefaultValue decimal.Decimal
}

// ServerConfig holds options for the report-serving API.
type ServerConfig struct {
	Addr string
}

// Load reads environment variables (optionally from a .env file) and
// materializes a Config instance.
func Load() (*Config, error) {
	// Missing .env files are acceptable when configuration comes from the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Quarter: Quarter{
			Year:   env.GetInt("REPORT_YEAR", 2025),
			Months: quarterMonths(env.GetInt("REPORT_QUARTER", 4)),
		},
		Rates: RatesConfig{
			HourlyLaborCost:  env.GetDecimal("HOURLY_LABOR_COST", decimal.NewFromInt(35000)),
			UFUnitsPerReport: env.GetDecimal("UF_UNITS_PER_REPORT", decimal.RequireFromString("0.9")),
			LeaseVATDivisor:  decimal.RequireFromString("1.19"),
			HoursPerDay:      decimal.NewFromInt(8),
		},
		Files: FilesConfig{
			ProductionCSV:  env.GetString("PRODUCTION_CSV", "gastos/reportes_produccion.csv"),
			LaborHoursCSV:  env.GetString("LABOR_HOURS_CSV", "gastos/horas_hombre.csv"),
			PartsCSV:       env.GetString("PARTS_CSV", "gastos/DATABODEGA.csv"),
			LeasingCSV:     env.GetString("LEASING_CSV", "gastos/leasing.csv"),
			LedgerDir:      env.GetString("LEDGER_DIR", "gastos"),
			ContractsXLSX:  env.GetString("CONTRACTS_XLSX", "gastos/precios_contratos.xlsx"),
			OutputXLSX:     env.GetString("OUTPUT_XLSX", "informe_produccion_gastos.xlsx"),
			OutputHTML:     env.GetString("OUTPUT_HTML", "informe_produccion_gastos.html"),
			OutputJSON:     env.GetString("OUTPUT_JSON", "informe_produccion_gastos.json"),
			WorkshopOrigin: env.GetString("WORKSHOP_ORIGIN", "taller.csv"),
		},
		UF: UFConfig{
			APIBaseURL:   env.GetString("UF_API_URL", "https://mindicador.cl/api"),
			ConfigPath:   env.GetString("UF_CONFIG_PATH", "config_uf.json"),
			ManualValue:  env.GetDecimal("UF_VALUE", decimal.Zero),
			DefaultValue: env.GetDecimal("UF_DEFAULT_VALUE", decimal.NewFromInt(38000)),
		},
		Server: ServerConfig{
			Addr: env.GetString("ADDR", ":8080"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// quarterMonths maps a quarter number to its calendar months. Out-of-range
// values fall back to the fourth quarter.
func quarterMonths(q int) [3]time.Month {
	if q < 1 || q > 4 {
		q = 4
	}
	first := time.Month((q-1)*3 + 1)
	return [3]time.Month{first, first + 1, first + 2}
}

// Validate ensures the configuration is internally consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Quarter.Year < 2000 {
		return fmt.Errorf("REPORT_YEAR %d is not a plausible reporting year", c.Quarter.Year)
	}

	if !c.Rates.HourlyLaborCost.IsPositive() {
		return errors.New("HOURLY_LABOR_COST must be positive")
	}

	if !c.Rates.UFUnitsPerReport.IsPositive() {
		return errors.New("UF_UNITS_PER_REPORT must be positive")
	}

	if c.UF.ManualValue.IsNegative() {
		return errors.New("UF_VALUE must not be negative")
	}

	if !c.UF.DefaultValue.IsPositive() {
		return errors.New("UF_DEFAULT_VALUE must be positive")
	}

	if c.Files.LedgerDir != "" {
		if _, err := os.Stat(c.Files.LedgerDir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("checking LEDGER_DIR: %w", err)
		}
	}

	return nil
}
