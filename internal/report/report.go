// Package report assembles the quarterly production-versus-expenses report
// from the aggregated rollups.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/aggregate"
	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/ingest"
	"github.com/harchamaq/informes/internal/pricing"
	"github.com/harchamaq/informes/internal/records"
)

// MachineMonthRow is one machine in one month, production against expenses.
type MachineMonthRow struct {
	MachineCode string     `json:"machine_code"`
	Month       time.Month `json:"month"`
	MonthName   string     `json:"month_name"`

	ProductionValue decimal.Decimal `json:"production_value"`
	Hours           decimal.Decimal `json:"hours"`
	Kilometers      decimal.Decimal `json:"kilometers"`
	CubicMeters     decimal.Decimal `json:"cubic_meters"`
	Reports         int             `json:"reports"`

	Parts            decimal.Decimal            `json:"parts"`
	LaborHours       decimal.Decimal            `json:"labor_hours"`
	LaborCost        decimal.Decimal            `json:"labor_cost"`
	Leasing          decimal.Decimal            `json:"leasing"`
	Categories       map[string]decimal.Decimal `json:"categories"`
	OperationalTotal decimal.Decimal            `json:"operational_total"`
	ExpenseTotal     decimal.Decimal            `json:"expense_total"`

	Net decimal.Decimal `json:"net"`
}

// MachineRow is one machine's full-quarter totals.
type MachineRow struct {
	MachineCode string `json:"machine_code"`

	ProductionValue decimal.Decimal `json:"production_value"`
	Hours           decimal.Decimal `json:"hours"`
	Kilometers      decimal.Decimal `json:"kilometers"`
	CubicMeters     decimal.Decimal `json:"cubic_meters"`
	Reports         int             `json:"reports"`

	Parts            decimal.Decimal            `json:"parts"`
	LaborHours       decimal.Decimal            `json:"labor_hours"`
	LaborCost        decimal.Decimal            `json:"labor_cost"`
	Leasing          decimal.Decimal            `json:"leasing"`
	Categories       map[string]decimal.Decimal `json:"categories"`
	OperationalTotal decimal.Decimal            `json:"operational_total"`
	ExpenseTotal     decimal.Decimal            `json:"expense_total"`

	Net decimal.Decimal `json:"net"`
}

// WorkshopSummary totals the workshop's own overhead, which is kept out of
// the per-machine results.
type WorkshopSummary struct {
	Entries    int                        `json:"entries"`
	Categories map[string]decimal.Decimal `json:"categories"`
	Parts      decimal.Decimal            `json:"parts"`
	LaborHours decimal.Decimal            `json:"labor_hours"`
	LaborCost  decimal.Decimal            `json:"labor_cost"`
	Total      decimal.Decimal            `json:"total"`
}

// Totals is the fleet-wide bottom line.
type Totals struct {
	ProductionValue decimal.Decimal `json:"production_value"`
	ExpenseTotal    decimal.Decimal `json:"expense_total"`
	Net             decimal.Decimal `json:"net"`
}

// Report is the complete quarterly result, serializable as JSON and the
// source for the spreadsheet and dashboard exports.
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Quarter     string    `json:"quarter"`
	Year        int       `json:"year"`

	UFValue      decimal.Decimal             `json:"uf_value"`
	CatalogStats pricing.Stats               `json:"catalog_stats"`
	Ingestion    map[string]ingest.LoadStats `json:"ingestion"`

	MachineMonths []MachineMonthRow `json:"machine_months"`
	Machines      []MachineRow      `json:"machines"`
	Workshop      WorkshopSummary   `json:"workshop"`
	Totals        Totals            `json:"totals"`
}

// Inputs carries everything the assembly needs, already ingested and valued.
type Inputs struct {
	Quarter config.Quarter
	Rates   config.RatesConfig

	UFValue      decimal.Decimal
	CatalogStats pricing.Stats
	Ingestion    map[string]ingest.LoadStats

	Production []records.Production
	Labor      []records.LaborHours
	Parts      []records.Part
	Leases     []records.Lease

	// Expenses holds machine-attributable ledger entries; Workshop holds the
	// workshop's own, already split out.
	Expenses []records.OperationalExpense
	Workshop []records.OperationalExpense
}

// Build aggregates the inputs into the final report.
func Build(in Inputs, logger *zap.Logger) *Report {
	agg := aggregate.New(in.Rates.HourlyLaborCost, in.Quarter.Months)

	// Parts issued to the workshop and hours worked inside it are overhead,
	// not machine costs.
	filter := aggregate.WorkshopFilter{}
	machineParts, workshopParts := filter.SplitParts(in.Parts)
	machineLabor, workshopLabor := filter.SplitLabor(in.Labor)

	prodByMonth := agg.ProductionByMachineMonth(in.Production)
	expByMonth := agg.ExpensesByMachineMonth(machineLabor, machineParts, in.Leases, in.Expenses)
	netByMonth := aggregate.NetByMachineMonth(prodByMonth, expByMonth)

	prodByMachine := agg.ProductionByMachine(in.Production)
	expByMachine := agg.ExpensesByMachine(expByMonth)
	netByMachine := aggregate.NetByMachine(prodByMachine, expByMachine)

	r := &Report{
		RunID:        uuid.New(),
		GeneratedAt:  time.Now().UTC(),
		Quarter:      in.Quarter.Label(),
		Year:         in.Quarter.Year,
		UFValue:      in.UFValue,
		CatalogStats: in.CatalogStats,
		Ingestion:    in.Ingestion,
		Workshop:     workshopSummary(in.Workshop, workshopParts, workshopLabor, in.Rates.HourlyLaborCost),
	}

	for key, net := range netByMonth {
		row := MachineMonthRow{
			MachineCode:  key.MachineCode,
			Month:        key.Month,
			MonthName:    monthName(key.Month),
			ExpenseTotal: net.ExpenseTotal,
			Net:          net.Net,
			Categories:   map[string]decimal.Decimal{},
		}
		if p, ok := prodByMonth[key]; ok {
			row.ProductionValue = p.Value
			row.Hours = p.Hours
			row.Kilometers = p.Kilometers
			row.CubicMeters = p.CubicMeters
			row.Reports = p.Reports
		}
		if e, ok := expByMonth[key]; ok {
			row.Parts = e.Parts
			row.LaborHours = e.LaborHours
			row.LaborCost = e.LaborCost
			row.Leasing = e.Leasing
			row.OperationalTotal = e.OperationalTotal
			for cat, amount := range e.Categories {
				row.Categories[string(cat)] = amount
			}
		}
		r.MachineMonths = append(r.MachineMonths, row)
	}
	r.sortMachineMonths(in.Quarter)

	for code, net := range netByMachine {
		row := MachineRow{
			MachineCode:  code,
			ExpenseTotal: net.ExpenseTotal,
			Net:          net.Net,
			Categories:   map[string]decimal.Decimal{},
		}
		if p, ok := prodByMachine[code]; ok {
			row.ProductionValue = p.Value
			row.Hours = p.Hours
			row.Kilometers = p.Kilometers
			row.CubicMeters = p.CubicMeters
			row.Reports = p.Reports
		}
		if e, ok := expByMachine[code]; ok {
			row.Parts = e.Parts
			row.LaborHours = e.LaborHours
			row.LaborCost = e.LaborCost
			row.Leasing = e.Leasing
			row.OperationalTotal = e.OperationalTotal
			for cat, amount := range e.Categories {
				row.Categories[string(cat)] = amount
			}
		}
		r.Machines = append(r.Machines, row)

		r.Totals.ProductionValue = r.Totals.ProductionValue.Add(row.ProductionValue)
		r.Totals.ExpenseTotal = r.Totals.ExpenseTotal.Add(row.ExpenseTotal)
	}
	r.Totals.Net = r.Totals.ProductionValue.Sub(r.Totals.ExpenseTotal)

	sort.Slice(r.Machines, func(i, j int) bool {
		return r.Machines[i].MachineCode < r.Machines[j].MachineCode
	})

	logger.Info("report assembled",
		zap.String("run_id", r.RunID.String()),
		zap.String("quarter", r.Quarter),
		zap.Int("machines", len(r.Machines)),
		zap.Int("machine_months", len(r.MachineMonths)),
		zap.String("net", r.Totals.Net.String()),
	)

	return r
}

func (r *Report) sortMachineMonths(q config.Quarter) {
	idx := map[time.Month]int{}
	for i, m := range q.Months {
		idx[m] = i
	}
	sort.Slice(r.MachineMonths, func(i, j int) bool {
		a, b := r.MachineMonths[i], r.MachineMonths[j]
		if a.MachineCode != b.MachineCode {
			return a.MachineCode < b.MachineCode
		}
		return idx[a.Month] < idx[b.Month]
	})
}

func workshopSummary(entries []records.OperationalExpense, parts []records.Part, labor []records.LaborHours, hourlyRate decimal.Decimal) WorkshopSummary {
	s := WorkshopSummary{Categories: map[string]decimal.Decimal{}}
	for _, c := range records.OperationalCategories {
		s.Categories[string(c)] = decimal.Zero
	}
	for _, e := range entries {
		if e.IsIncome {
			continue
		}
		cat, ok := e.Category()
		if !ok {
			continue
		}
		s.Entries++
		s.Categories[string(cat)] = s.Categories[string(cat)].Add(e.Amount)
		s.Total = s.Total.Add(e.Amount)
	}
	for _, p := range parts {
		s.Parts = s.Parts.Add(p.Total)
	}
	for _, l := range labor {
		s.LaborHours = s.LaborHours.Add(l.Hours)
	}
	s.LaborCost = s.LaborHours.Mul(hourlyRate)
	s.Total = s.Total.Add(s.Parts).Add(s.LaborCost)
	return s
}

var monthNames = map[time.Month]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}

func monthName(m time.Month) string { return monthNames[m] }
