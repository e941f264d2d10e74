package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/records"
)

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

func testInputs() Inputs {
	return Inputs{
		Quarter: config.Quarter{
			Year:   2025,
			Months: [3]time.Month{time.October, time.November, time.December},
		},
		Rates: config.RatesConfig{
			HourlyLaborCost:  dec("35000"),
			UFUnitsPerReport: dec("0.9"),
			LeaseVATDivisor:  dec("1.19"),
			HoursPerDay:      dec("8"),
		},
		UFValue: dec("38000"),
		Production: []records.Production{
			{MachineCode: "CT-10", Date: day(time.October, 5), Value: dec("800000"), Hours: dec("20")},
			{MachineCode: "CT-10", Date: day(time.November, 5), Value: dec("400000"), Hours: dec("10")},
			{MachineCode: "EX-16", Date: day(time.October, 8), Value: dec("300000"), CubicMeters: dec("150")},
		},
		Labor: []records.LaborHours{
			{MachineCode: "CT-10", Date: day(time.October, 3), Hours: dec("2")},
		},
		Parts: []records.Part{
			{MachineCode: "CT-10", ExitDate: day(time.October, 3), Total: dec("45000")},
		},
		Leases: []records.Lease{
			{MachineCode: "CT-10", MonthlyInstallment: dec("500000"), Status: "VIGENTE"},
		},
		Expenses: []records.OperationalExpense{
			{MachineCode: "CT-10", Date: day(time.October, 10), AccountCode: "401010101", Amount: dec("120000")},
		},
		Workshop: []records.OperationalExpense{
			{MachineCode: "TALLER", Date: day(time.October, 10), AccountCode: "401010108", Amount: dec("900000")},
			{MachineCode: "TALLER", Date: day(time.October, 12), AccountCode: "401010101", Amount: dec("60000"), IsIncome: true},
		},
	}
}

func TestBuildReport(t *testing.T) {
	r := Build(testInputs(), zap.NewNop())

	if r.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("run id not assigned")
	}
	if r.Quarter != "Q4 2025" || r.Year != 2025 {
		t.Fatalf("quarter = %q %d", r.Quarter, r.Year)
	}

	// CT-10: oct, nov, dic (lease only) plus EX-16 oct.
	if len(r.MachineMonths) != 4 {
		t.Fatalf("machine months = %d, want 4", len(r.MachineMonths))
	}

	first := r.MachineMonths[0]
	if first.MachineCode != "CT-10" || first.Month != time.October {
		t.Fatalf("first row = %s %s, rows must sort by machine then quarter month", first.MachineCode, first.MonthName)
	}
	// 45000 parts + 70000 labor + 500000 lease + 120000 fuel.
	if !first.ExpenseTotal.Equal(dec("735000")) {
		t.Fatalf("CT-10 october expenses = %s", first.ExpenseTotal)
	}
	if !first.Net.Equal(dec("65000")) {
		t.Fatalf("CT-10 october net = %s", first.Net)
	}
	if first.MonthName != "Octubre" {
		t.Fatalf("MonthName = %q", first.MonthName)
	}

	// December carries the lease even without production.
	dic := r.MachineMonths[2]
	if dic.Month != time.December || !dic.ExpenseTotal.Equal(dec("500000")) || !dic.Net.Equal(dec("-500000")) {
		t.Fatalf("CT-10 december = %+v", dic)
	}

	if len(r.Machines) != 2 || r.Machines[0].MachineCode != "CT-10" {
		t.Fatalf("machines = %+v", r.Machines)
	}
	ct10 := r.Machines[0]
	if !ct10.ProductionValue.Equal(dec("1200000")) {
		t.Fatalf("CT-10 production = %s", ct10.ProductionValue)
	}
	// 45000 + 70000 + 3x500000 + 120000.
	if !ct10.ExpenseTotal.Equal(dec("1735000")) {
		t.Fatalf("CT-10 expenses = %s", ct10.ExpenseTotal)
	}
	if !ct10.Leasing.Equal(dec("1500000")) {
		t.Fatalf("CT-10 leasing = %s", ct10.Leasing)
	}

	ex16 := r.Machines[1]
	if !ex16.Net.Equal(dec("300000")) || !ex16.ExpenseTotal.IsZero() {
		t.Fatalf("EX-16 = %+v", ex16)
	}

	if !r.Totals.ProductionValue.Equal(dec("1500000")) {
		t.Fatalf("total production = %s", r.Totals.ProductionValue)
	}
	if !r.Totals.Net.Equal(r.Totals.ProductionValue.Sub(r.Totals.ExpenseTotal)) {
		t.Fatalf("totals inconsistent: %+v", r.Totals)
	}
}

func TestWorkshopStaysOutOfMachineRows(t *testing.T) {
	r := Build(testInputs(), zap.NewNop())

	for _, m := range r.Machines {
		if m.MachineCode == "TALLER" {
			t.Fatal("workshop entries must not appear as a machine")
		}
	}

	if r.Workshop.Entries != 1 {
		t.Fatalf("workshop entries = %d, income rows must be skipped", r.Workshop.Entries)
	}
	if !r.Workshop.Total.Equal(dec("900000")) {
		t.Fatalf("workshop total = %s", r.Workshop.Total)
	}
	if got := r.Workshop.Categories[string(records.CategoryWages)]; !got.Equal(dec("900000")) {
		t.Fatalf("workshop wages = %s", got)
	}
}

func TestWorkshopPartsAndLaborRollIntoSummary(t *testing.T) {
	in := testInputs()
	in.Parts = append(in.Parts,
		records.Part{MachineCode: "TALLER CENTRAL", ExitDate: day(time.October, 4), Total: dec("80000")})
	in.Labor = append(in.Labor,
		records.LaborHours{MachineCode: "TALLER", Date: day(time.October, 6), Hours: dec("6")})

	r := Build(in, zap.NewNop())

	if !r.Workshop.Parts.Equal(dec("80000")) {
		t.Fatalf("workshop parts = %s", r.Workshop.Parts)
	}
	if !r.Workshop.LaborHours.Equal(dec("6")) {
		t.Fatalf("workshop labor hours = %s", r.Workshop.LaborHours)
	}
	// 6 h at the 35000 CLP shop rate.
	if !r.Workshop.LaborCost.Equal(dec("210000")) {
		t.Fatalf("workshop labor cost = %s", r.Workshop.LaborCost)
	}
	if !r.Workshop.Total.Equal(dec("1190000")) {
		t.Fatalf("workshop total = %s", r.Workshop.Total)
	}

	// The workshop rows must not leak into any machine rollup.
	for _, m := range r.Machines {
		if records.IsWorkshopLabel(m.MachineCode) {
			t.Fatalf("workshop label %q surfaced as a machine", m.MachineCode)
		}
	}
	ct10 := r.Machines[0]
	if !ct10.Parts.Equal(dec("45000")) || !ct10.LaborHours.Equal(dec("2")) {
		t.Fatalf("CT-10 = %+v", ct10)
	}
}
