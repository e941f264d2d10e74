package aggregate

import (
	"github.com/harchamaq/informes/internal/records"
)

// WorkshopFilter separates workshop overhead from machine-attributable
// costs. A ledger entry belongs to the workshop when it came from the
// workshop ledger file or when its cost-center label names the workshop;
// parts and labor rows match on their label alone.
type WorkshopFilter struct {
	origin string
}

func NewWorkshopFilter(workshopOrigin string) WorkshopFilter {
	return WorkshopFilter{origin: workshopOrigin}
}

func (w WorkshopFilter) IsWorkshop(e records.OperationalExpense) bool {
	if w.origin != "" && e.Origin == w.origin {
		return true
	}
	return records.IsWorkshopLabel(e.MachineCode)
}

// Split partitions ledger entries into machine expenses and workshop
// overhead, preserving input order within each side.
func (w WorkshopFilter) Split(expenses []records.OperationalExpense) (machines, workshop []records.OperationalExpense) {
	for _, e := range expenses {
		if w.IsWorkshop(e) {
			workshop = append(workshop, e)
		} else {
			machines = append(machines, e)
		}
	}
	return machines, workshop
}

// SplitParts partitions warehouse parts the same way, by label.
func (w WorkshopFilter) SplitParts(parts []records.Part) (machines, workshop []records.Part) {
	for _, p := range parts {
		if records.IsWorkshopLabel(p.MachineCode) {
			workshop = append(workshop, p)
		} else {
			machines = append(machines, p)
		}
	}
	return machines, workshop
}

// SplitLabor partitions mechanic hours the same way, by label.
func (w WorkshopFilter) SplitLabor(labor []records.LaborHours) (machines, workshop []records.LaborHours) {
	for _, l := range labor {
		if records.IsWorkshopLabel(l.MachineCode) {
			workshop = append(workshop, l)
		} else {
			machines = append(machines, l)
		}
	}
	return machines, workshop
}
