package export

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/report"
)

// HTMLExporter renders the report as a standalone dashboard page.
type HTMLExporter struct {
	logger *zap.Logger
	tmpl   *template.Template
}

func NewHTMLExporter(logger *zap.Logger) (*HTMLExporter, error) {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"clp": formatCLP,
		"num": formatNumber,
	}).Parse(dashboardTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	return &HTMLExporter{logger: logger, tmpl: tmpl}, nil
}

func (e *HTMLExporter) Export(r *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dashboard file: %w", err)
	}
	defer f.Close()

	if err := e.tmpl.Execute(f, r); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}

	e.logger.Info("dashboard written", zap.String("path", path))
	return nil
}

// Render writes the dashboard to any writer, used by the report API.
func (e *HTMLExporter) Render(w io.Writer, r *report.Report) error {
	return e.tmpl.Execute(w, r)
}

// formatCLP renders Chilean pesos: no decimals, dots as thousands separators.
func formatCLP(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Round(0).String()

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func formatNumber(d decimal.Decimal) string {
	return d.Round(1).String()
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Informe Trimestral {{.Quarter}}</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; margin: 2rem; color: #222; }
h1 { color: #366092; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th { background: #366092; color: #fff; padding: 6px 10px; text-align: left; }
td { border: 1px solid #ccc; padding: 5px 10px; }
tr:nth-child(even) { background: #f4f7fb; }
.neg { color: #b00020; }
.pos { color: #1b7a2a; }
.meta { color: #666; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Producción vs Gastos {{.Quarter}}</h1>
<p class="meta">Generado {{.GeneratedAt.Format "02/01/2006 15:04"}} UTC · UF {{clp .UFValue}} · Ejecución {{.RunID}}</p>

<h2>Resumen de Flota</h2>
<table>
<tr><th>Producción Total</th><th>Gastos Totales</th><th>Resultado Neto</th></tr>
<tr>
<td>{{clp .Totals.ProductionValue}}</td>
<td>{{clp .Totals.ExpenseTotal}}</td>
<td class="{{if .Totals.Net.IsNegative}}neg{{else}}pos{{end}}">{{clp .Totals.Net}}</td>
</tr>
</table>

<h2>Resultado por Máquina</h2>
<table>
<tr><th>Máquina</th><th>Producción</th><th>Repuestos</th><th>Costo HH</th><th>Leasing</th><th>G. Operacionales</th><th>Total Gastos</th><th>Neto</th></tr>
{{range .Machines}}
<tr>
<td>{{.MachineCode}}</td>
<td>{{clp .ProductionValue}}</td>
<td>{{clp .Parts}}</td>
<td>{{clp .LaborCost}}</td>
<td>{{clp .Leasing}}</td>
<td>{{clp .OperationalTotal}}</td>
<td>{{clp .ExpenseTotal}}</td>
<td class="{{if .Net.IsNegative}}neg{{else}}pos{{end}}">{{clp .Net}}</td>
</tr>
{{end}}
</table>

<h2>Detalle Mensual</h2>
<table>
<tr><th>Máquina</th><th>Mes</th><th>Horas</th><th>Km</th><th>Mt3</th><th>Producción</th><th>Gastos</th><th>Neto</th></tr>
{{range .MachineMonths}}
<tr>
<td>{{.MachineCode}}</td>
<td>{{.MonthName}}</td>
<td>{{num .Hours}}</td>
<td>{{num .Kilometers}}</td>
<td>{{num .CubicMeters}}</td>
<td>{{clp .ProductionValue}}</td>
<td>{{clp .ExpenseTotal}}</td>
<td class="{{if .Net.IsNegative}}neg{{else}}pos{{end}}">{{clp .Net}}</td>
</tr>
{{end}}
</table>

<h2>Taller</h2>
<table>
<tr><th>Partidas</th><th>Repuestos</th><th>HH</th><th>Costo HH</th><th>Total</th></tr>
<tr><td>{{.Workshop.Entries}}</td><td>{{clp .Workshop.Parts}}</td><td>{{num .Workshop.LaborHours}}</td><td>{{clp .Workshop.LaborCost}}</td><td>{{clp .Workshop.Total}}</td></tr>
</table>
</body>
</html>
`
