// Package valuation turns raw production rows into valued production records.
package valuation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/pricing"
	"github.com/harchamaq/informes/internal/records"
)

// Row is one raw production report as ingested, before any pricing.
type Row struct {
	MachineCode string
	Date        time.Time
	UnitType    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	ContractID  string
}

// RateFunc resolves the UF value for a date.
type RateFunc func(time.Time) decimal.Decimal

// Valuer prices production rows. The contract catalog takes precedence; rows
// it cannot price fall back to the per-unit price carried on the row itself,
// and rows with no usable unit at all are valued in UF.
type Valuer struct {
	catalog     *pricing.Catalog
	rate        RateFunc
	hourlyRate  decimal.Decimal
	ufUnits     decimal.Decimal
	hoursPerDay decimal.Decimal
	logger      *zap.Logger
}

func New(catalog *pricing.Catalog, rate RateFunc, hourlyRate, ufUnits, hoursPerDay decimal.Decimal, logger *zap.Logger) *Valuer {
	return &Valuer{
		catalog:     catalog,
		rate:        rate,
		hourlyRate:  hourlyRate,
		ufUnits:     ufUnits,
		hoursPerDay: hoursPerDay,
		logger:      logger,
	}
}

// Value prices a single row. It never fails; rows the catalog and the legacy
// unit pricing cannot resolve are valued in UF at the row's date.
func (v *Valuer) Value(row Row) records.Production {
	p := records.Production{
		MachineCode: row.MachineCode,
		Date:        row.Date,
		UnitType:    row.UnitType,
		UnitPrice:   row.UnitPrice,
		ContractID:  row.ContractID,
	}

	tag := effectiveTag(row.UnitType, row.ContractID)

	q := quantitiesFor(tag, row.Quantity)

	if v.catalog != nil {
		if r, ok := v.catalog.ProductionValue(row.ContractID, q); ok && r.HasPrice && r.Total.IsPositive() {
			p.Value = r.Total
			p.Hybrid = r.Hybrid
			p.HasContractPrice = true
			p.Breakdown = r.Breakdown
			v.applyQuantities(&p, q)
			return p
		}
	}

	switch tag {
	case "MT3":
		p.CubicMeters = row.Quantity
		p.Value = row.Quantity.Mul(row.UnitPrice)
	case "HR":
		p.Hours = row.Quantity
		p.Value = row.Quantity.Mul(row.UnitPrice)
	case "KM":
		p.Kilometers = row.Quantity
		p.Value = row.Quantity.Mul(row.UnitPrice)
	case "DIA":
		// Day rentals count a configured number of machine hours per day.
		p.Hours = row.Quantity.Mul(v.hoursPerDay)
		p.Value = row.Quantity.Mul(row.UnitPrice)
	default:
		v.valueInUF(row, &p)
	}

	return p
}

// valueInUF prices rows with no resolvable unit. The contract yields a fixed
// fraction of one UF per report; machine hours are backed out from the row's
// unit price, or from the standard hourly rate when the row has none.
func (v *Valuer) valueInUF(row Row, p *records.Production) {
	ufValue := v.rate(row.Date)
	p.Value = v.ufUnits.Mul(ufValue)
	p.UnitType = "UF"

	divisor := row.UnitPrice
	if !divisor.IsPositive() {
		divisor = v.hourlyRate
	}
	if divisor.IsPositive() {
		p.Hours = p.Value.Div(divisor)
	}

	v.logger.Debug("valued report in uf",
		zap.String("machine", row.MachineCode),
		zap.String("contract", row.ContractID),
		zap.String("uf", ufValue.String()),
		zap.String("value", p.Value.String()))
}

// effectiveTag normalizes the row's unit tag, falling back to keywords in the
// contract text when the export left the tag blank or as "?". An explicit UF
// tag is terminal: those rows are index-unit denominated and never reroute
// through the contract text.
func effectiveTag(unitType, contractText string) string {
	tag := strings.ToUpper(strings.TrimSpace(unitType))
	switch tag {
	case "MT3", "M3", "M³":
		return "MT3"
	case "HR", "HORA", "HORAS", "H":
		return "HR"
	case "KM", "K":
		return "KM"
	case "DIA", "DIARIO", "DAY":
		return "DIA"
	case "UF":
		return "UF"
	}

	text := strings.ToUpper(contractText)
	switch {
	case strings.Contains(text, "MT3"):
		return "MT3"
	case strings.Contains(text, "HORAS"), strings.Contains(text, " HR"):
		return "HR"
	case strings.Contains(text, "KM"):
		return "KM"
	case strings.Contains(text, "DIA"):
		return "DIA"
	}
	return ""
}

func quantitiesFor(tag string, qty decimal.Decimal) pricing.Quantities {
	switch tag {
	case "MT3":
		return pricing.Quantities{CubicMeters: qty}
	case "HR":
		return pricing.Quantities{Hours: qty}
	case "KM":
		return pricing.Quantities{Km: qty}
	case "DIA":
		return pricing.Quantities{Days: qty}
	}
	return pricing.Quantities{}
}

func (v *Valuer) applyQuantities(p *records.Production, q pricing.Quantities) {
	p.CubicMeters = q.CubicMeters
	p.Hours = q.Hours
	p.Kilometers = q.Km
	p.Laps = q.Laps
	if q.Days.IsPositive() {
		p.Hours = q.Days.Mul(v.hoursPerDay)
	}
}
