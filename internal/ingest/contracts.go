package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/pricing"
)

// ContractReader loads the contract price workbook into a pricing catalog.
type ContractReader struct {
	logger *zap.Logger
}

func NewContractReader(logger *zap.Logger) *ContractReader {
	return &ContractReader{logger: logger}
}

var contractColumns = []string{
	"CONTRATO_TXT",
	"TIPO_CONTRATO",
	"PRECIO_HORA",
	"PRECIO_KM",
	"PRECIO_MT3",
	"PRECIO_VUELTA",
	"PRECIO_DIARIO",
}

// Read loads the first sheet of the price workbook. Empty cells and the
// "No hay datos" placeholder price at zero; duplicate contracts keep their
// first row.
func (r *ContractReader) Read(path string) (*pricing.Catalog, pricing.Stats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, pricing.Stats{}, fmt.Errorf("opening price workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pricing.Stats{}, fmt.Errorf("price workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pricing.Stats{}, fmt.Errorf("reading price workbook: %w", err)
	}
	if len(rows) == 0 {
		return nil, pricing.Stats{}, fmt.Errorf("price workbook %s is empty", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range contractColumns {
		if _, ok := cols[name]; !ok {
			return nil, pricing.Stats{}, fmt.Errorf("price workbook %s is missing column %s", path, name)
		}
	}

	cell := func(row []string, name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var prices []pricing.ContractPrice
	sourceRows := 0
	for _, row := range rows[1:] {
		contractID := cell(row, "CONTRATO_TXT")
		if contractID == "" {
			continue
		}
		sourceRows++

		prices = append(prices, pricing.NewContractPrice(
			contractID,
			cell(row, "TIPO_CONTRATO"),
			parsePrice(cell(row, "PRECIO_HORA")),
			parsePrice(cell(row, "PRECIO_KM")),
			parsePrice(cell(row, "PRECIO_MT3")),
			parsePrice(cell(row, "PRECIO_VUELTA")),
			parsePrice(cell(row, "PRECIO_DIARIO")),
		))
	}

	catalog := pricing.NewCatalog(prices)
	stats := catalog.Stats(sourceRows)

	r.logger.Info("contract prices loaded",
		zap.String("path", path),
		zap.Int("contracts", stats.Total),
		zap.Int("with_price", stats.WithPrice),
		zap.Int("without_price", stats.WithoutPrice),
		zap.Int("hybrid", stats.Hybrid),
	)
	if stats.WithoutPrice > 0 {
		r.logger.Warn("contracts without any price",
			zap.Int("count", stats.WithoutPrice))
	}

	return catalog, stats, nil
}

// parsePrice parses a workbook price cell. The export writes "No hay datos"
// for unknown prices.
func parsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "no hay datos", "nan", "none":
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, _ = parseAmount(s)
	}
	return d
}
