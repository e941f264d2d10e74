package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/records"
)

// PartsReader loads the warehouse exit export listing parts issued to
// machines. The machine is resolved from the cost center, falling back to
// the free-text assignment column.
type PartsReader struct {
	normalizer *fleet.Normalizer
	quarter    config.Quarter
	logger     *zap.Logger
}

func NewPartsReader(n *fleet.Normalizer, quarter config.Quarter, logger *zap.Logger) *PartsReader {
	return &PartsReader{normalizer: n, quarter: quarter, logger: logger}
}

func (r *PartsReader) Read(path string) ([]records.Part, LoadStats, error) {
	df, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("reading warehouse export: %w", err)
	}

	var (
		colDate       = colIndex(df, "Fecha Salida")
		colCostCenter = colIndex(df, "Centro Costo(Salida)")
		colName       = colIndex(df, "Nombre")
		colQuantity   = colIndex(df, "Cantidad")
		colPrice      = colIndex(df, "Precio")
		colTotal      = colIndex(df, "Total")
		colAssigned   = colIndex(df, "Asignado A")
	)
	if colDate < 0 || colCostCenter < 0 {
		return nil, LoadStats{}, fmt.Errorf("warehouse export %s is missing required columns", path)
	}

	var (
		out   []records.Part
		stats LoadStats
	)
	for i := 0; i < df.Nrow(); i++ {
		stats.Rows++

		costCenter := getStr(df, i, colCostCenter)
		assigned := getStr(df, i, colAssigned)

		code, ok := r.normalizer.Normalize(costCenter)
		if !ok {
			code, ok = r.normalizer.Normalize(assigned)
		}
		// Workshop consumption carries no machine code; keep the raw label
		// so the row lands in the workshop bucket instead of vanishing.
		if !ok {
			code, ok = workshopLabel(costCenter, assigned)
		}
		if !ok {
			stats.SkippedNoMachine++
			continue
		}

		date, ok := parseDate(getStr(df, i, colDate))
		if !ok || !r.quarter.Contains(date) {
			stats.SkippedOutOfPeriod++
			continue
		}

		quantity, coerced := parseAmount(getStr(df, i, colQuantity))
		if coerced {
			stats.Coerced++
		}
		price, coerced := parseAmount(getStr(df, i, colPrice))
		if coerced {
			stats.Coerced++
		}
		total, coerced := parseAmount(getStr(df, i, colTotal))
		if coerced {
			stats.Coerced++
		}

		rec, err := records.NewPart(code, date, getStr(df, i, colName), quantity, price, total, assigned)
		if err != nil {
			stats.Coerced++
			continue
		}
		out = append(out, rec)
		stats.Loaded++
	}

	logStats(r.logger, "parts", path, stats)
	return out, stats, nil
}
