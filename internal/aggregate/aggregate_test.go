package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harchamaq/informes/internal/records"
)

var q4 = [3]time.Month{time.October, time.November, time.December}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func testAggregator() *Aggregator {
	return New(dec("35000"), q4)
}

func TestProductionRollups(t *testing.T) {
	rows := []records.Production{
		{MachineCode: "CT-10", Date: day(time.October, 5), Value: dec("100000"), Hours: dec("4")},
		{MachineCode: "CT-10", Date: day(time.October, 20), Value: dec("50000"), Kilometers: dec("120")},
		{MachineCode: "CT-10", Date: day(time.November, 2), Value: dec("80000"), Hours: dec("2")},
		{MachineCode: "EX-16", Date: day(time.October, 5), Value: dec("200000"), CubicMeters: dec("90")},
	}
	a := testAggregator()

	byMonth := a.ProductionByMachineMonth(rows)
	oct := byMonth[MonthKey{"CT-10", time.October}]
	if !oct.Value.Equal(dec("150000")) || oct.Reports != 2 {
		t.Fatalf("CT-10 october = %+v", oct)
	}
	if !oct.Hours.Equal(dec("4")) || !oct.Kilometers.Equal(dec("120")) {
		t.Fatalf("CT-10 october units = %+v", oct)
	}

	byMachine := a.ProductionByMachine(rows)
	if got := byMachine["CT-10"]; !got.Value.Equal(dec("230000")) || got.Reports != 3 {
		t.Fatalf("CT-10 quarter = %+v", got)
	}
	if got := byMachine["EX-16"]; !got.CubicMeters.Equal(dec("90")) {
		t.Fatalf("EX-16 quarter = %+v", got)
	}
}

func TestExpenseRollupCombinesAllStreams(t *testing.T) {
	labor := []records.LaborHours{
		{MachineCode: "CT-10", Date: day(time.October, 3), Hours: dec("2")},
		{MachineCode: "CT-10", Date: day(time.October, 9), Hours: dec("1.5")},
	}
	parts := []records.Part{
		{MachineCode: "CT-10", ExitDate: day(time.October, 3), Total: dec("45000")},
	}
	leases := []records.Lease{
		{MachineCode: "CT-10", MonthlyInstallment: dec("500000"), Status: "VIGENTE"},
		{MachineCode: "CT-10", MonthlyInstallment: dec("999999"), Status: "TERMINADO"},
	}
	expenses := []records.OperationalExpense{
		{MachineCode: "CT-10", Date: day(time.October, 12), AccountCode: "401010101", Amount: dec("120000")},
		{MachineCode: "CT-10", Date: day(time.October, 15), AccountCode: "401099999", Amount: dec("10000")},
		{MachineCode: "CT-10", Date: day(time.October, 18), AccountCode: "401010101", Amount: dec("30000"), IsIncome: true},
	}

	a := testAggregator()
	byMonth := a.ExpensesByMachineMonth(labor, parts, leases, expenses)

	oct := byMonth[MonthKey{"CT-10", time.October}]
	if !oct.LaborHours.Equal(dec("3.5")) {
		t.Fatalf("LaborHours = %s", oct.LaborHours)
	}
	if !oct.LaborCost.Equal(dec("122500")) {
		t.Fatalf("LaborCost = %s, want 3.5x35000", oct.LaborCost)
	}
	if !oct.Parts.Equal(dec("45000")) {
		t.Fatalf("Parts = %s", oct.Parts)
	}
	if !oct.Leasing.Equal(dec("500000")) {
		t.Fatalf("Leasing = %s, terminated lease must not charge", oct.Leasing)
	}
	if got := oct.Categories[records.CategoryFuel]; !got.Equal(dec("120000")) {
		t.Fatalf("fuel = %s, income row must be skipped", got)
	}
	if got := oct.Categories[records.CategoryOther]; !got.Equal(dec("10000")) {
		t.Fatalf("otros_gastos = %s, unknown 401 account should land here", got)
	}
	if !oct.OperationalTotal.Equal(dec("130000")) {
		t.Fatalf("OperationalTotal = %s", oct.OperationalTotal)
	}
	// 45000 parts + 122500 labor + 500000 lease + 130000 operational.
	if !oct.GrandTotal.Equal(dec("797500")) {
		t.Fatalf("GrandTotal = %s", oct.GrandTotal)
	}
}

func TestActiveLeaseChargesEachQuarterMonth(t *testing.T) {
	leases := []records.Lease{
		{MachineCode: "CT-10", MonthlyInstallment: dec("500000"), Status: "vigente"},
	}
	a := testAggregator()
	byMonth := a.ExpensesByMachineMonth(nil, nil, leases, nil)

	for _, m := range q4 {
		got := byMonth[MonthKey{"CT-10", m}]
		if !got.Leasing.Equal(dec("500000")) {
			t.Fatalf("%s leasing = %s, want 500000", m, got.Leasing)
		}
	}

	byMachine := a.ExpensesByMachine(byMonth)
	if got := byMachine["CT-10"]; !got.Leasing.Equal(dec("1500000")) {
		t.Fatalf("quarter leasing = %s, want 3x500000", got.Leasing)
	}
}

func TestNetMergesUnionOfKeys(t *testing.T) {
	prod := map[MonthKey]ProductionTotals{
		{"CT-10", time.October}: {Value: dec("800000")},
		{"EX-16", time.October}: {Value: dec("300000")},
	}
	exp := map[MonthKey]ExpenseTotals{
		{"CT-10", time.October}: {GrandTotal: dec("500000")},
		{"RD-08", time.November}: {GrandTotal: dec("120000")},
	}

	net := NetByMachineMonth(prod, exp)
	if len(net) != 3 {
		t.Fatalf("keys = %d, want union of 3", len(net))
	}
	if got := net[MonthKey{"CT-10", time.October}]; !got.Net.Equal(dec("300000")) {
		t.Fatalf("CT-10 net = %s", got.Net)
	}
	// Production with no expenses keeps the full value.
	if got := net[MonthKey{"EX-16", time.October}]; !got.Net.Equal(dec("300000")) || !got.ExpenseTotal.IsZero() {
		t.Fatalf("EX-16 net = %+v", got)
	}
	// Expenses with no production go negative.
	if got := net[MonthKey{"RD-08", time.November}]; !got.Net.Equal(dec("-120000")) || !got.ProductionValue.IsZero() {
		t.Fatalf("RD-08 net = %+v", got)
	}
}

func TestWorkshopSplit(t *testing.T) {
	f := NewWorkshopFilter("informe_taller.csv")

	entries := []records.OperationalExpense{
		{MachineCode: "CT-10", Origin: "informe_maquinas.csv"},
		{MachineCode: "TALLER CENTRAL", Origin: "informe_maquinas.csv"},
		{MachineCode: "CT-12", Origin: "informe_taller.csv"},
		{MachineCode: "EX-16", Origin: "informe_maquinas.csv"},
	}

	machines, workshop := f.Split(entries)
	if len(machines) != 2 || len(workshop) != 2 {
		t.Fatalf("split = %d machines, %d workshop", len(machines), len(workshop))
	}
	if machines[0].MachineCode != "CT-10" || machines[1].MachineCode != "EX-16" {
		t.Fatalf("machines = %v", machines)
	}
}

func TestWorkshopSplitPartsAndLabor(t *testing.T) {
	f := WorkshopFilter{}

	parts := []records.Part{
		{MachineCode: "CT-10", Total: dec("45000")},
		{MachineCode: "TALLER CENTRAL", Total: dec("80000")},
	}
	machineParts, workshopParts := f.SplitParts(parts)
	if len(machineParts) != 1 || len(workshopParts) != 1 {
		t.Fatalf("parts split = %d machines, %d workshop", len(machineParts), len(workshopParts))
	}
	if workshopParts[0].MachineCode != "TALLER CENTRAL" {
		t.Fatalf("workshop parts = %v", workshopParts)
	}

	labor := []records.LaborHours{
		{MachineCode: "TALLER", Hours: dec("6")},
		{MachineCode: "EX-16", Hours: dec("3")},
	}
	machineLabor, workshopLabor := f.SplitLabor(labor)
	if len(machineLabor) != 1 || len(workshopLabor) != 1 {
		t.Fatalf("labor split = %d machines, %d workshop", len(machineLabor), len(workshopLabor))
	}
	if machineLabor[0].MachineCode != "EX-16" {
		t.Fatalf("machine labor = %v", machineLabor)
	}
}
