package ingest

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/records"
)

// LeaseReader loads the bank leasing sheet. Installments arrive VAT-inclusive
// and are stripped to net on the way in.
type LeaseReader struct {
	normalizer *fleet.Normalizer
	vatDivisor decimal.Decimal
	logger     *zap.Logger
}

func NewLeaseReader(n *fleet.Normalizer, vatDivisor decimal.Decimal, logger *zap.Logger) *LeaseReader {
	return &LeaseReader{normalizer: n, vatDivisor: vatDivisor, logger: logger}
}

func (r *LeaseReader) Read(path string) ([]records.Lease, LoadStats, error) {
	df, closeFile, err := readLatinCSV(path, ';')
	if err != nil {
		if closeFile != nil {
			closeFile()
		}
		return nil, LoadStats{}, fmt.Errorf("reading leasing sheet: %w", err)
	}
	defer closeFile()

	var (
		colStatus = colIndex(df, "ESTADO LEASSING")
		colCode   = colIndex(df, "CODIGO INT")
		colAmount = colIndex(df, "MONTO cuota Leasing")
		colLender = colIndex(df, "BANCO")
	)
	if colCode < 0 || colAmount < 0 {
		return nil, LoadStats{}, fmt.Errorf("leasing sheet %s is missing required columns", path)
	}

	var (
		out   []records.Lease
		stats LoadStats
	)
	for i := 0; i < df.Nrow(); i++ {
		stats.Rows++

		code, ok := r.normalizer.Normalize(getStr(df, i, colCode))
		if !ok {
			stats.SkippedNoMachine++
			continue
		}

		gross, coerced := parseAmount(getStr(df, i, colAmount))
		if coerced {
			stats.Coerced++
		}
		net := gross.Div(r.vatDivisor)

		rec, err := records.NewLease(code, net, getStr(df, i, colLender), getStr(df, i, colStatus))
		if err != nil {
			stats.Coerced++
			continue
		}
		out = append(out, rec)
		stats.Loaded++
	}

	logStats(r.logger, "leases", path, stats)
	return out, stats, nil
}
