package pricing

import "strings"

// Catalog indexes contract prices by contract identifier. Duplicate contract
// rows in the source workbook keep the first occurrence.
type Catalog struct {
	prices map[string]ContractPrice
	order  []string
}

// NewCatalog builds a catalog from a list of contract prices, first row wins
// on duplicate contract identifiers.
func NewCatalog(prices []ContractPrice) *Catalog {
	c := &Catalog{prices: make(map[string]ContractPrice, len(prices))}
	for _, p := range prices {
		key := normalizeContractID(p.ContractID)
		if key == "" {
			continue
		}
		if _, seen := c.prices[key]; seen {
			continue
		}
		c.prices[key] = p
		c.order = append(c.order, key)
	}
	return c
}

func normalizeContractID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), " "))
}

// Lookup returns the price entry for a contract identifier. Matching is
// case-insensitive and whitespace-insensitive.
func (c *Catalog) Lookup(contractID string) (ContractPrice, bool) {
	p, ok := c.prices[normalizeContractID(contractID)]
	return p, ok
}

// Result is a catalog valuation plus the contract flags the report surfaces.
type Result struct {
	Valuation
	Hybrid   bool
	HasPrice bool
}

// ProductionValue prices the quantities against the contract's catalog entry.
// Unknown contracts and contracts with no priced unit return a zero result
// with HasPrice false, which callers use to fall through to legacy pricing.
func (c *Catalog) ProductionValue(contractID string, q Quantities) (Result, bool) {
	p, ok := c.Lookup(contractID)
	if !ok {
		return Result{}, false
	}
	return Result{
		Valuation: p.ProductionValue(q),
		Hybrid:    p.IsHybrid(),
		HasPrice:  p.HasAnyPrice(),
	}, true
}

// Stats summarizes catalog composition for the ingestion report.
type Stats struct {
	Total        int `json:"total"`
	WithPrice    int `json:"with_price"`
	WithoutPrice int `json:"without_price"`
	Hybrid       int `json:"hybrid"`
	Rows         int `json:"rows"`
}

// Stats reports catalog totals. sourceRows counts the workbook rows the
// catalog was built from, which may exceed Total when duplicates were dropped.
func (c *Catalog) Stats(sourceRows int) Stats {
	s := Stats{Total: len(c.order), Rows: sourceRows}
	if s.Rows < s.Total {
		s.Rows = s.Total
	}
	for _, key := range c.order {
		p := c.prices[key]
		switch {
		case p.IsHybrid():
			s.Hybrid++
			s.WithPrice++
		case p.HasAnyPrice():
			s.WithPrice++
		default:
			s.WithoutPrice++
		}
	}
	return s
}

// Unpriced lists the contracts with no priced unit, in load order.
func (c *Catalog) Unpriced() []ContractPrice {
	var out []ContractPrice
	for _, key := range c.order {
		if p := c.prices[key]; !p.HasAnyPrice() {
			out = append(out, p)
		}
	}
	return out
}

// Hybrids lists the contracts pricing more than one unit, in load order.
func (c *Catalog) Hybrids() []ContractPrice {
	var out []ContractPrice
	for _, key := range c.order {
		if p := c.prices[key]; p.IsHybrid() {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of distinct contracts in the catalog.
func (c *Catalog) Len() int { return len(c.order) }
