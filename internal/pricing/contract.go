package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ContractPrice holds the unit prices of one rental contract. A contract may
// price any combination of the five measured units; a contract pricing more
// than one unit is hybrid and its production value is the sum across all
// priced units.
type ContractPrice struct {
	ContractID string
	// Type is the contract's display label from the price sheet,
	// e.g. "Km , Hr" or "Mt3".
	Type string

	Hour       decimal.Decimal
	Km         decimal.Decimal
	CubicMeter decimal.Decimal
	Lap        decimal.Decimal
	Day        decimal.Decimal
}

// NewContractPrice builds a ContractPrice, clamping negative prices to zero.
func NewContractPrice(contractID, contractType string, hour, km, cubicMeter, lap, day decimal.Decimal) ContractPrice {
	clamp := func(d decimal.Decimal) decimal.Decimal {
		if d.IsNegative() {
			return decimal.Zero
		}
		return d
	}
	return ContractPrice{
		ContractID: contractID,
		Type:       contractType,
		Hour:       clamp(hour),
		Km:         clamp(km),
		CubicMeter: clamp(cubicMeter),
		Lap:        clamp(lap),
		Day:        clamp(day),
	}
}

// ActivePrices counts the unit prices set above zero.
func (p ContractPrice) ActivePrices() int {
	count := 0
	for _, d := range []decimal.Decimal{p.Hour, p.Km, p.CubicMeter, p.Lap, p.Day} {
		if d.IsPositive() {
			count++
		}
	}
	return count
}

// HasAnyPrice reports whether at least one unit is priced.
func (p ContractPrice) HasAnyPrice() bool { return p.ActivePrices() > 0 }

// IsHybrid reports whether more than one unit is priced.
func (p ContractPrice) IsHybrid() bool { return p.ActivePrices() > 1 }

// PriceFor returns the price for a unit-type tag as it appears in the
// production exports (HORA/HR/H, KM/K, MT3/M3/M³, VUELTA, DIA/DIARIO/DAY).
// Unknown tags price at zero.
func (p ContractPrice) PriceFor(unitTag string) decimal.Decimal {
	switch strings.ToUpper(strings.TrimSpace(unitTag)) {
	case "HORA", "HR", "H":
		return p.Hour
	case "KM", "K":
		return p.Km
	case "MT3", "M3", "M³":
		return p.CubicMeter
	case "VUELTA":
		return p.Lap
	case "DIA", "DIARIO", "DAY":
		return p.Day
	}
	return decimal.Zero
}

// HasPriceFor reports whether the contract prices the given unit-type tag.
func (p ContractPrice) HasPriceFor(unitTag string) bool {
	return p.PriceFor(unitTag).IsPositive()
}

// Quantities carries the measured amounts of one production report, one field
// per unit kind. Unmeasured units stay zero.
type Quantities struct {
	Hours       decimal.Decimal
	Km          decimal.Decimal
	CubicMeters decimal.Decimal
	Laps        decimal.Decimal
	Days        decimal.Decimal
}

// Valuation is the result of pricing a set of quantities against a contract.
type Valuation struct {
	Total     decimal.Decimal
	UnitsUsed []string
	Breakdown map[string]decimal.Decimal
}

// ProductionValue prices the quantities against the contract. Every unit with
// both a positive price and a positive quantity contributes quantity x price;
// hybrid contracts therefore sum across all their priced units, they never
// pick one exclusively.
func (p ContractPrice) ProductionValue(q Quantities) Valuation {
	v := Valuation{
		Total:     decimal.Zero,
		Breakdown: map[string]decimal.Decimal{},
	}

	add := func(price, qty decimal.Decimal, unit, key string) {
		if price.IsPositive() && qty.IsPositive() {
			value := qty.Mul(price)
			v.Total = v.Total.Add(value)
			v.UnitsUsed = append(v.UnitsUsed, unit)
			v.Breakdown[key] = value
		}
	}

	add(p.Hour, q.Hours, "Horas", "horas")
	add(p.Km, q.Km, "Km", "km")
	add(p.CubicMeter, q.CubicMeters, "Mt3", "mt3")
	add(p.Lap, q.Laps, "Vueltas", "vueltas")
	add(p.Day, q.Days, "Dias", "dias")

	return v
}

// PriceSummary renders the active prices for operator-facing output,
// e.g. "Hr: $35000, Km: $2500", or "Sin precio" for unpriced contracts.
func (p ContractPrice) PriceSummary() string {
	var parts []string
	appendIf := func(label string, d decimal.Decimal) {
		if d.IsPositive() {
			parts = append(parts, fmt.Sprintf("%s: $%s", label, d.String()))
		}
	}
	appendIf("Hr", p.Hour)
	appendIf("Km", p.Km)
	appendIf("Mt3", p.CubicMeter)
	appendIf("Vueltas", p.Lap)
	appendIf("Dia", p.Day)

	if len(parts) == 0 {
		return "Sin precio"
	}
	return strings.Join(parts, ", ")
}
