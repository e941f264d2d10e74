// Command informe runs the full quarterly pipeline: it ingests the
// administrative exports, values production against the contract catalog,
// aggregates expenses and writes the report as JSON, a spreadsheet and an
// HTML dashboard.
package main

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/aggregate"
	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/export"
	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/ingest"
	"github.com/harchamaq/informes/internal/logger"
	"github.com/harchamaq/informes/internal/records"
	"github.com/harchamaq/informes/internal/report"
	"github.com/harchamaq/informes/internal/ufrate"
	"github.com/harchamaq/informes/internal/valuation"
)

func main() {
	log := logger.Must(logger.New()).Named("informe")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("pipeline failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	normalizer := fleet.NewNormalizer(nil)

	uf := ufrate.New(ufrate.Options{
		BaseURL:      cfg.UF.APIBaseURL,
		ManualValue:  cfg.UF.ManualValue,
		ConfigPath:   cfg.UF.ConfigPath,
		DefaultValue: cfg.UF.DefaultValue,
	}, logger.Named(log, "uf"))

	catalog, catalogStats, err := ingest.NewContractReader(logger.Named(log, "contracts")).
		Read(cfg.Files.ContractsXLSX)
	if err != nil {
		return err
	}

	ingestion := map[string]ingest.LoadStats{}

	rawProduction, stats, err := ingest.NewProductionReader(normalizer, cfg.Quarter, logger.Named(log, "production")).
		Read(cfg.Files.ProductionCSV)
	if err != nil {
		return err
	}
	ingestion["production"] = stats

	valuer := valuation.New(catalog, uf.RateFunc(),
		cfg.Rates.HourlyLaborCost, cfg.Rates.UFUnitsPerReport, cfg.Rates.HoursPerDay,
		logger.Named(log, "valuation"))

	production := make([]records.Production, 0, len(rawProduction))
	for _, row := range rawProduction {
		production = append(production, valuer.Value(row))
	}

	labor, stats, err := ingest.NewLaborReader(normalizer, cfg.Quarter, logger.Named(log, "labor")).
		Read(cfg.Files.LaborHoursCSV)
	if err != nil {
		return err
	}
	ingestion["labor"] = stats

	parts, stats, err := ingest.NewPartsReader(normalizer, cfg.Quarter, logger.Named(log, "parts")).
		Read(cfg.Files.PartsCSV)
	if err != nil {
		return err
	}
	ingestion["parts"] = stats

	leases, stats, err := ingest.NewLeaseReader(normalizer, cfg.Rates.LeaseVATDivisor, logger.Named(log, "leases")).
		Read(cfg.Files.LeasingCSV)
	if err != nil {
		return err
	}
	ingestion["leases"] = stats

	ledger, stats, err := ingest.NewLedgerReader(normalizer, cfg.Quarter, logger.Named(log, "ledger")).
		ReadDir(cfg.Files.LedgerDir)
	if err != nil {
		return err
	}
	ingestion["ledger"] = stats

	machineExpenses, workshopExpenses := aggregate.NewWorkshopFilter(cfg.Files.WorkshopOrigin).Split(ledger)

	rep := report.Build(report.Inputs{
		Quarter:      cfg.Quarter,
		Rates:        cfg.Rates,
		UFValue:      uf.Value(quarterEnd(cfg.Quarter)),
		CatalogStats: catalogStats,
		Ingestion:    ingestion,
		Production:   production,
		Labor:        labor,
		Parts:        parts,
		Leases:       leases,
		Expenses:     machineExpenses,
		Workshop:     workshopExpenses,
	}, logger.Named(log, "report"))

	if err := writeJSON(rep, cfg.Files.OutputJSON); err != nil {
		return err
	}
	log.Info("report json written", zap.String("path", cfg.Files.OutputJSON))

	excel := export.NewExcelExporter(logger.Named(log, "excel"))
	if err := excel.Export(rep, export.Detail{Parts: parts, Labor: labor}, cfg.Files.OutputXLSX); err != nil {
		return err
	}

	html, err := export.NewHTMLExporter(logger.Named(log, "html"))
	if err != nil {
		return err
	}
	return html.Export(rep, cfg.Files.OutputHTML)
}

// quarterEnd is the last day of the quarter's closing month, the reference
// date for the UF value shown in the report heading.
func quarterEnd(q config.Quarter) time.Time {
	last := q.Months[len(q.Months)-1]
	return time.Date(q.Year, last+1, 0, 0, 0, 0, 0, time.UTC)
}

func writeJSON(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
