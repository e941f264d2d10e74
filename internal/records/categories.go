package records

import "strings"

// Category is one of the fixed operational-expense buckets of the quarterly
// report. Values are the ledger vocabulary used in the exported workbook.
type Category string

const (
	CategoryFuel      Category = "combustibles"
	CategoryRepairs   Category = "reparaciones"
	CategoryInsurance Category = "seguros"
	CategoryFees      Category = "honorarios"
	CategoryPPE       Category = "epp"
	CategoryTolls     Category = "peajes"
	CategoryWages     Category = "remuneraciones"
	CategoryPermits   Category = "permisos"
	CategoryMeals     Category = "alimentacion"
	CategoryFares     Category = "pasajes"
	CategoryPostage   Category = "correspondencia"
	CategoryLegal     Category = "gastos_legales"
	CategoryFines     Category = "multas"
	CategoryOther     Category = "otros_gastos"
)

// OperationalCategories is the fixed, ordered superset of buckets every
// aggregate row carries. Absent categories stay at zero, never omitted.
var OperationalCategories = []Category{
	CategoryFuel,
	CategoryRepairs,
	CategoryInsurance,
	CategoryFees,
	CategoryPPE,
	CategoryTolls,
	CategoryWages,
	CategoryPermits,
	CategoryMeals,
	CategoryFares,
	CategoryPostage,
	CategoryLegal,
	CategoryFines,
	CategoryOther,
}

// accountCategories routes ledger account codes to buckets. Codes absent
// here but under the 401 operating-expense root still count as CategoryOther
// so new ledger accounts never silently drop money.
var accountCategories = map[string]Category{
	"401010101": CategoryFuel,
	"401010103": CategoryRepairs,
	"401010114": CategoryRepairs, // mantención varios
	"401010115": CategoryInsurance,
	"401010109": CategoryFees,
	"401010104": CategoryPPE,
	"401010105": CategoryTolls,
	"401010108": CategoryWages,
	"401010116": CategoryPermits,
	"401010112": CategoryMeals,
	"401010111": CategoryFares,
	"401020107": CategoryPostage,
	"401020108": CategoryLegal,
	"401030102": CategoryFines,
	"401010107": CategoryOther, // revisión técnica
	"401010113": CategoryOther, // varios
	"401010118": CategoryOther, // otro gasto taller
	"401010119": CategoryOther, // alquiler maquinaria
	"401020101": CategoryOther, // servicios externos
	"401020102": CategoryOther, // electricidad
	"401020103": CategoryOther, // agua
	"401020114": CategoryOther, // otro gasto operacional
	"401030107": CategoryOther,
	"401040101": CategoryOther, // suministros
	"401040104": CategoryOther, // otros suministros
}

// accountNames gives the human names used in dashboards and audit output.
var accountNames = map[string]string{
	"401010101": "Combustibles",
	"401010102": "Repuestos y accesorios",
	"401010103": "Reparaciones y mantención",
	"401010104": "EPP (Protección personal)",
	"401010105": "Peajes y transbordador",
	"401010106": "Servicio transporte",
	"401010107": "Revisión técnica",
	"401010108": "Remuneraciones",
	"401010109": "Honorarios",
	"401010111": "Pasajes nacionales",
	"401010112": "Alimentación",
	"401010113": "Varios",
	"401010114": "Mantención varios",
	"401010115": "Seguros",
	"401010116": "Permisos de circulación",
	"401010117": "Revisión técnica",
	"401010118": "Otro gasto taller",
	"401010119": "Alquiler maquinaria",
	"401020101": "Servicios externos",
	"401020102": "Electricidad",
	"401020103": "Agua",
	"401020107": "Correspondencia",
	"401020108": "Gastos legales",
	"401020114": "Otro gasto operacional",
	"401030102": "Multas",
	"401030107": "Otros gastos",
	"401040101": "Suministros",
	"401040104": "Otros suministros",
}

var categoryNames = map[Category]string{
	CategoryFuel:      "Combustibles",
	CategoryRepairs:   "Reparaciones y mantención",
	CategoryInsurance: "Seguros",
	CategoryFees:      "Honorarios",
	CategoryPPE:       "EPP",
	CategoryTolls:     "Peajes",
	CategoryWages:     "Remuneraciones",
	CategoryPermits:   "Permisos de circulación",
	CategoryMeals:     "Alimentación",
	CategoryFares:     "Pasajes",
	CategoryPostage:   "Correspondencia",
	CategoryLegal:     "Gastos legales",
	CategoryFines:     "Multas",
	CategoryOther:     "Otros gastos",
}

// CategoryForAccount maps a ledger account code to its expense bucket. Any
// unmapped code under the 401 root falls back to CategoryOther; codes outside
// the 401 root are not operating expenses and report ok=false.
func CategoryForAccount(code string) (Category, bool) {
	if cat, ok := accountCategories[code]; ok {
		return cat, true
	}
	if strings.HasPrefix(code, "401") {
		return CategoryOther, true
	}
	return "", false
}

// AccountName returns the readable name of a ledger account, or a generic
// label for codes outside the known table.
func AccountName(code string) string {
	if name, ok := accountNames[code]; ok {
		return name
	}
	return "Cuenta " + code
}

// Name returns the display name of a category.
func (c Category) Name() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}
