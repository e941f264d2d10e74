// Package aggregate rolls valued records up into per-machine and
// per-machine-month totals and nets production against expenses.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harchamaq/informes/internal/records"
)

// MonthKey identifies one machine in one month of the reporting quarter.
type MonthKey struct {
	MachineCode string     `json:"machine_code"`
	Month       time.Month `json:"month"`
}

// ProductionTotals accumulates valued production for one key.
type ProductionTotals struct {
	Value       decimal.Decimal
	Hours       decimal.Decimal
	Kilometers  decimal.Decimal
	CubicMeters decimal.Decimal
	Laps        decimal.Decimal
	Reports     int
}

func (t ProductionTotals) add(p records.Production) ProductionTotals {
	t.Value = t.Value.Add(p.Value)
	t.Hours = t.Hours.Add(p.Hours)
	t.Kilometers = t.Kilometers.Add(p.Kilometers)
	t.CubicMeters = t.CubicMeters.Add(p.CubicMeters)
	t.Laps = t.Laps.Add(p.Laps)
	t.Reports++
	return t
}

// ExpenseTotals accumulates every expense stream for one key. Categories
// always carries all operational buckets so downstream tables render zeros
// instead of missing cells.
type ExpenseTotals struct {
	Parts      decimal.Decimal
	LaborHours decimal.Decimal
	LaborCost  decimal.Decimal
	Leasing    decimal.Decimal
	Categories map[records.Category]decimal.Decimal

	// OperationalTotal sums the category buckets; GrandTotal adds parts,
	// labor cost and leasing on top.
	OperationalTotal decimal.Decimal
	GrandTotal       decimal.Decimal
}

func newExpenseTotals() ExpenseTotals {
	cats := make(map[records.Category]decimal.Decimal, len(records.OperationalCategories))
	for _, c := range records.OperationalCategories {
		cats[c] = decimal.Zero
	}
	return ExpenseTotals{Categories: cats}
}

func (t ExpenseTotals) finalize() ExpenseTotals {
	t.OperationalTotal = decimal.Zero
	for _, c := range records.OperationalCategories {
		t.OperationalTotal = t.OperationalTotal.Add(t.Categories[c])
	}
	t.GrandTotal = t.Parts.Add(t.LaborCost).Add(t.Leasing).Add(t.OperationalTotal)
	return t
}

// Aggregator holds the rates and quarter calendar the rollups depend on.
type Aggregator struct {
	hourlyRate decimal.Decimal
	months     [3]time.Month
}

func New(hourlyRate decimal.Decimal, months [3]time.Month) *Aggregator {
	return &Aggregator{hourlyRate: hourlyRate, months: months}
}

// ProductionByMachineMonth rolls valued production up per machine and month.
func (a *Aggregator) ProductionByMachineMonth(rows []records.Production) map[MonthKey]ProductionTotals {
	out := make(map[MonthKey]ProductionTotals)
	for _, p := range rows {
		key := MonthKey{MachineCode: p.MachineCode, Month: p.Month()}
		out[key] = out[key].add(p)
	}
	return out
}

// ProductionByMachine rolls valued production up per machine for the whole
// quarter.
func (a *Aggregator) ProductionByMachine(rows []records.Production) map[string]ProductionTotals {
	out := make(map[string]ProductionTotals)
	for _, p := range rows {
		out[p.MachineCode] = out[p.MachineCode].add(p)
	}
	return out
}

// ExpensesByMachineMonth rolls every expense stream up per machine and month.
// Active leases charge their monthly installment once in each month of the
// quarter regardless of activity; income ledger entries are skipped.
func (a *Aggregator) ExpensesByMachineMonth(
	labor []records.LaborHours,
	parts []records.Part,
	leases []records.Lease,
	expenses []records.OperationalExpense,
) map[MonthKey]ExpenseTotals {
	out := make(map[MonthKey]ExpenseTotals)

	get := func(key MonthKey) ExpenseTotals {
		t, ok := out[key]
		if !ok {
			t = newExpenseTotals()
		}
		return t
	}

	for _, l := range labor {
		key := MonthKey{MachineCode: l.MachineCode, Month: l.Date.Month()}
		t := get(key)
		t.LaborHours = t.LaborHours.Add(l.Hours)
		t.LaborCost = t.LaborCost.Add(l.Hours.Mul(a.hourlyRate))
		out[key] = t
	}

	for _, p := range parts {
		key := MonthKey{MachineCode: p.MachineCode, Month: p.ExitDate.Month()}
		t := get(key)
		t.Parts = t.Parts.Add(p.Total)
		out[key] = t
	}

	for _, l := range leases {
		if !l.Active() {
			continue
		}
		for _, m := range a.months {
			key := MonthKey{MachineCode: l.MachineCode, Month: m}
			t := get(key)
			t.Leasing = t.Leasing.Add(l.MonthlyInstallment)
			out[key] = t
		}
	}

	for _, e := range expenses {
		if e.IsIncome {
			continue
		}
		cat, ok := e.Category()
		if !ok {
			continue
		}
		key := MonthKey{MachineCode: e.MachineCode, Month: e.Month()}
		t := get(key)
		t.Categories[cat] = t.Categories[cat].Add(e.Amount)
		out[key] = t
	}

	for key, t := range out {
		out[key] = t.finalize()
	}
	return out
}

// ExpensesByMachine collapses the machine-month rollup into per-machine
// quarter totals.
func (a *Aggregator) ExpensesByMachine(byMonth map[MonthKey]ExpenseTotals) map[string]ExpenseTotals {
	out := make(map[string]ExpenseTotals)
	for key, t := range byMonth {
		acc, ok := out[key.MachineCode]
		if !ok {
			acc = newExpenseTotals()
		}
		acc.Parts = acc.Parts.Add(t.Parts)
		acc.LaborHours = acc.LaborHours.Add(t.LaborHours)
		acc.LaborCost = acc.LaborCost.Add(t.LaborCost)
		acc.Leasing = acc.Leasing.Add(t.Leasing)
		for _, c := range records.OperationalCategories {
			acc.Categories[c] = acc.Categories[c].Add(t.Categories[c])
		}
		out[key.MachineCode] = acc
	}
	for code, t := range out {
		out[code] = t.finalize()
	}
	return out
}

// NetResult nets a key's production value against its expense grand total.
type NetResult struct {
	ProductionValue decimal.Decimal
	ExpenseTotal    decimal.Decimal
	Net             decimal.Decimal
}

// NetByMachineMonth merges the two rollups over the union of their keys. A
// machine that produced without expenses, or spent without producing, still
// gets a row with the missing side at zero.
func NetByMachineMonth(
	production map[MonthKey]ProductionTotals,
	expenses map[MonthKey]ExpenseTotals,
) map[MonthKey]NetResult {
	out := make(map[MonthKey]NetResult, len(production))
	for key, p := range production {
		out[key] = NetResult{ProductionValue: p.Value, Net: p.Value}
	}
	for key, e := range expenses {
		r := out[key]
		r.ExpenseTotal = e.GrandTotal
		r.Net = r.ProductionValue.Sub(e.GrandTotal)
		out[key] = r
	}
	return out
}

// NetByMachine merges per-machine rollups the same way.
func NetByMachine(
	production map[string]ProductionTotals,
	expenses map[string]ExpenseTotals,
) map[string]NetResult {
	out := make(map[string]NetResult, len(production))
	for code, p := range production {
		out[code] = NetResult{ProductionValue: p.Value, Net: p.Value}
	}
	for code, e := range expenses {
		r := out[code]
		r.ExpenseTotal = e.GrandTotal
		r.Net = r.ProductionValue.Sub(e.GrandTotal)
		out[code] = r
	}
	return out
}
