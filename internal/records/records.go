package records

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Production is one valued production report for a machine. Records are
// created by the production ingestion adapter and never mutated afterwards.
type Production struct {
	MachineCode string
	Date        time.Time

	CubicMeters decimal.Decimal
	Hours       decimal.Decimal
	Kilometers  decimal.Decimal
	Laps        decimal.Decimal

	// UnitType is the original tag from the export: MT3, HR, KM, DIA, ?, UF.
	UnitType  string
	UnitPrice decimal.Decimal

	// Value is the resolved monetary value of the report.
	Value      decimal.Decimal
	ContractID string

	// Hybrid and HasContractPrice describe how Value was resolved against the
	// contract-price catalog; both are false when the legacy per-unit
	// calculation was used.
	Hybrid           bool
	HasContractPrice bool
	// Breakdown holds the per-unit value split for catalog-priced records,
	// keyed by unit name (horas, km, mt3, vueltas, dias).
	Breakdown map[string]decimal.Decimal
}

func (p Production) Month() time.Month { return p.Date.Month() }

// LaborHours is one mechanic work entry against a machine.
type LaborHours struct {
	MachineCode string
	Date        time.Time
	Worker      string
	OrderType   string
	Hours       decimal.Decimal
}

// NewLaborHours validates that hours are not negative.
func NewLaborHours(machineCode string, date time.Time, worker, orderType string, hours decimal.Decimal) (LaborHours, error) {
	if hours.IsNegative() {
		return LaborHours{}, errors.New("labor hours cannot be negative")
	}
	return LaborHours{
		MachineCode: machineCode,
		Date:        date,
		Worker:      worker,
		OrderType:   orderType,
		Hours:       hours,
	}, nil
}

// Part is one warehouse part issued to a machine.
type Part struct {
	MachineCode string
	ExitDate    time.Time
	Name        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	AssignedTo  string
}

// NewPart validates the numeric fields and derives the total from
// quantity x unit price when the export left it blank.
func NewPart(machineCode string, exitDate time.Time, name string, quantity, unitPrice, total decimal.Decimal, assignedTo string) (Part, error) {
	switch {
	case quantity.IsNegative():
		return Part{}, errors.New("part quantity cannot be negative")
	case unitPrice.IsNegative():
		return Part{}, errors.New("part unit price cannot be negative")
	case total.IsNegative():
		return Part{}, errors.New("part total cannot be negative")
	}

	if total.IsZero() && quantity.IsPositive() && unitPrice.IsPositive() {
		total = quantity.Mul(unitPrice)
	}

	return Part{
		MachineCode: machineCode,
		ExitDate:    exitDate,
		Name:        name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
		AssignedTo:  assignedTo,
	}, nil
}

// Lease is one active leasing contract for a machine. MonthlyInstallment is
// net of VAT; the 19% embedded in the source value is stripped at ingestion.
type Lease struct {
	MachineCode        string
	MonthlyInstallment decimal.Decimal
	Lender             string
	Status             string
}

// NewLease validates that the installment is not negative.
func NewLease(machineCode string, installment decimal.Decimal, lender, status string) (Lease, error) {
	if installment.IsNegative() {
		return Lease{}, errors.New("lease installment cannot be negative")
	}
	return Lease{
		MachineCode:        machineCode,
		MonthlyInstallment: installment,
		Lender:             lender,
		Status:             status,
	}, nil
}

// IsWorkshopLabel reports whether a machine code or raw cost-center label
// names the workshop itself rather than a fleet machine.
func IsWorkshopLabel(label string) bool {
	return strings.Contains(strings.ToUpper(label), "TALLER")
}

// Active reports whether the lease is currently in force. Only active leases
// charge installments into the quarter.
func (l Lease) Active() bool {
	return strings.EqualFold(strings.TrimSpace(l.Status), "VIGENTE")
}

// OperationalExpense is one categorized ledger entry from the accounting
// report exports. MachineCode may hold a raw cost-center label when the
// normalizer could not resolve a canonical code.
type OperationalExpense struct {
	MachineCode string
	Date        time.Time
	// AccountCode is the hierarchical ledger account, e.g. "401010101".
	AccountCode string
	Memo        string
	Amount      decimal.Decimal
	IsIncome    bool
	// Origin is the source file the entry was read from.
	Origin string
}

func (e OperationalExpense) Month() time.Month { return e.Date.Month() }

// Category resolves the expense bucket for the entry's account code.
func (e OperationalExpense) Category() (Category, bool) {
	return CategoryForAccount(e.AccountCode)
}
