package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/valuation"
)

// ProductionReader loads the daily production export. Each row is one report
// of work done by a machine under a contract; pricing happens later.
type ProductionReader struct {
	normalizer *fleet.Normalizer
	quarter    config.Quarter
	logger     *zap.Logger
}

func NewProductionReader(n *fleet.Normalizer, quarter config.Quarter, logger *zap.Logger) *ProductionReader {
	return &ProductionReader{normalizer: n, quarter: quarter, logger: logger}
}

func (r *ProductionReader) Read(path string) ([]valuation.Row, LoadStats, error) {
	df, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("reading production export: %w", err)
	}

	var (
		colDate     = colIndex(df, "FECHA REPORTE")
		colMachine  = colIndex(df, "MAQUINA_FULL")
		colUnitType = colIndex(df, "vc_Tipo_Unidad")
		colUnits    = colIndex(df, "vc_Unidades")
		colPrice    = colIndex(df, "vc_Precio_Unidades")
		colContract = colIndex(df, "CONTRATO_TXT")
	)
	if colDate < 0 || colMachine < 0 {
		return nil, LoadStats{}, fmt.Errorf("production export %s is missing its date or machine column", path)
	}

	var (
		rows  []valuation.Row
		stats LoadStats
	)
	for i := 0; i < df.Nrow(); i++ {
		stats.Rows++

		code, ok := r.normalizer.Normalize(getStr(df, i, colMachine))
		if !ok {
			stats.SkippedNoMachine++
			continue
		}

		date, ok := parseDate(getStr(df, i, colDate))
		if !ok || !r.quarter.Contains(date) {
			stats.SkippedOutOfPeriod++
			continue
		}

		quantity, coerced := parseAmount(getStr(df, i, colUnits))
		if coerced {
			stats.Coerced++
		}
		price, coerced := parseAmount(getStr(df, i, colPrice))
		if coerced {
			stats.Coerced++
		}

		rows = append(rows, valuation.Row{
			MachineCode: code,
			Date:        date,
			UnitType:    getStr(df, i, colUnitType),
			Quantity:    quantity,
			UnitPrice:   price,
			ContractID:  getStr(df, i, colContract),
		})
		stats.Loaded++
	}

	logStats(r.logger, "production", path, stats)
	return rows, stats, nil
}

func logStats(logger *zap.Logger, kind, path string, stats LoadStats) {
	logger.Info("export loaded",
		zap.String("kind", kind),
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped_no_machine", stats.SkippedNoMachine),
		zap.Int("skipped_out_of_period", stats.SkippedOutOfPeriod),
		zap.Int("coerced", stats.Coerced),
	)
	if stats.Coerced > 0 {
		logger.Warn("numeric fields coerced to zero",
			zap.String("kind", kind),
			zap.Int("coerced", stats.Coerced))
	}
}
