package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/records"
)

// LaborReader loads the workshop order export listing mechanic hours worked
// against each machine.
type LaborReader struct {
	normalizer *fleet.Normalizer
	quarter    config.Quarter
	logger     *zap.Logger
}

func NewLaborReader(n *fleet.Normalizer, quarter config.Quarter, logger *zap.Logger) *LaborReader {
	return &LaborReader{normalizer: n, quarter: quarter, logger: logger}
}

func (r *LaborReader) Read(path string) ([]records.LaborHours, LoadStats, error) {
	df, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("reading labor export: %w", err)
	}

	var (
		colDate    = colIndex(df, "FECHA_SALIDA")
		colMachine = colIndex(df, "MAQUINA")
		colWorker  = colIndex(df, "MECANICO")
		colOrder   = colIndex(df, "TIPO_ORDEN")
		colHours   = colIndex(df, "HORAS HOMBRE")
	)
	if colDate < 0 || colMachine < 0 || colHours < 0 {
		return nil, LoadStats{}, fmt.Errorf("labor export %s is missing required columns", path)
	}

	var (
		out   []records.LaborHours
		stats LoadStats
	)
	for i := 0; i < df.Nrow(); i++ {
		stats.Rows++

		machine := getStr(df, i, colMachine)

		code, ok := r.normalizer.Normalize(machine)
		// Orders worked inside the workshop name it instead of a machine.
		if !ok {
			code, ok = workshopLabel(machine)
		}
		if !ok {
			stats.SkippedNoMachine++
			continue
		}

		// Order exit dates come in Spanish, e.g. "31 dic 2025".
		date, ok := parseSpanishDate(getStr(df, i, colDate))
		if !ok || !r.quarter.Contains(date) {
			stats.SkippedOutOfPeriod++
			continue
		}

		hours, coerced := parseAmount(getStr(df, i, colHours))
		if coerced {
			stats.Coerced++
		}

		rec, err := records.NewLaborHours(code, date, getStr(df, i, colWorker), getStr(df, i, colOrder), hours)
		if err != nil {
			stats.Coerced++
			continue
		}
		out = append(out, rec)
		stats.Loaded++
	}

	logStats(r.logger, "labor", path, stats)
	return out, stats, nil
}
