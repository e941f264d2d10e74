// Package export renders the quarterly report as a spreadsheet and as an
// HTML dashboard.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/records"
	"github.com/harchamaq/informes/internal/report"
)

// ExcelExporter writes the report workbook: a quarter summary sheet plus
// detail sheets for production, expenses, parts and labor.
type ExcelExporter struct {
	logger *zap.Logger
}

func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Detail carries the row-level records the detail sheets list alongside the
// aggregated report.
type Detail struct {
	Parts []records.Part
	Labor []records.LaborHours
}

func (e *ExcelExporter) Export(r *report.Report, detail Detail, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("building workbook style: %w", err)
	}

	if err := e.summarySheet(f, header, r); err != nil {
		return err
	}
	if err := e.productionSheet(f, header, r); err != nil {
		return err
	}
	if err := e.expenseSheet(f, header, r); err != nil {
		return err
	}
	if err := e.partsSheet(f, header, detail.Parts); err != nil {
		return err
	}
	if err := e.laborSheet(f, header, detail.Labor); err != nil {
		return err
	}
	if err := e.workshopSheet(f, header, r); err != nil {
		return err
	}

	// Drop the default sheet left over from workbook creation.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	e.logger.Info("workbook written",
		zap.String("path", path),
		zap.Int("machine_months", len(r.MachineMonths)))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeHeader(f *excelize.File, sheet string, style int, titles []interface{}) error {
	if err := writeRow(f, sheet, 1, titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func money(d decimal.Decimal) float64  { f, _ := d.Float64(); return f }
func number(d decimal.Decimal) float64 { f, _ := d.Float64(); return f }

func (e *ExcelExporter) summarySheet(f *excelize.File, style int, r *report.Report) error {
	const sheet = "Resumen Trimestral"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{
		"Máquina", "Mes", "Producción", "Repuestos", "HH Taller", "Costo HH",
		"Leasing", "Gastos Operacionales", "Total Gastos", "Resultado Neto",
	}
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, m := range r.MachineMonths {
		values := []interface{}{
			m.MachineCode, m.MonthName,
			money(m.ProductionValue), money(m.Parts), number(m.LaborHours),
			money(m.LaborCost), money(m.Leasing), money(m.OperationalTotal),
			money(m.ExpenseTotal), money(m.Net),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	row++
	totals := []interface{}{
		"TOTAL FLOTA", r.Quarter,
		money(r.Totals.ProductionValue), "", "", "", "", "",
		money(r.Totals.ExpenseTotal), money(r.Totals.Net),
	}
	return writeRow(f, sheet, row, totals)
}

func (e *ExcelExporter) productionSheet(f *excelize.File, style int, r *report.Report) error {
	const sheet = "Detalle Producción"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{"Máquina", "Mes", "Horas", "Km", "Mt3", "Reportes", "Valor"}
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, m := range r.MachineMonths {
		if m.Reports == 0 {
			continue
		}
		values := []interface{}{
			m.MachineCode, m.MonthName,
			number(m.Hours), number(m.Kilometers), number(m.CubicMeters),
			m.Reports, money(m.ProductionValue),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (e *ExcelExporter) expenseSheet(f *excelize.File, style int, r *report.Report) error {
	const sheet = "Detalle Gastos"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{"Máquina", "Mes"}
	for _, c := range records.OperationalCategories {
		titles = append(titles, c.Name())
	}
	titles = append(titles, "Total Operacional")
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, m := range r.MachineMonths {
		if m.OperationalTotal.IsZero() {
			continue
		}
		values := []interface{}{m.MachineCode, m.MonthName}
		for _, c := range records.OperationalCategories {
			values = append(values, money(m.Categories[string(c)]))
		}
		values = append(values, money(m.OperationalTotal))
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (e *ExcelExporter) partsSheet(f *excelize.File, style int, parts []records.Part) error {
	const sheet = "Desglose Repuestos"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{"Máquina", "Fecha", "Repuesto", "Cantidad", "Precio", "Total", "Asignado A"}
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, p := range parts {
		values := []interface{}{
			p.MachineCode, p.ExitDate.Format("02/01/2006"), p.Name,
			number(p.Quantity), money(p.UnitPrice), money(p.Total), p.AssignedTo,
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (e *ExcelExporter) laborSheet(f *excelize.File, style int, labor []records.LaborHours) error {
	const sheet = "Desglose Horas Hombre"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{"Máquina", "Fecha", "Mecánico", "Tipo Orden", "Horas"}
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, l := range labor {
		values := []interface{}{
			l.MachineCode, l.Date.Format("02/01/2006"), l.Worker, l.OrderType, number(l.Hours),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (e *ExcelExporter) workshopSheet(f *excelize.File, style int, r *report.Report) error {
	const sheet = "Taller"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titles := []interface{}{"Categoría", "Monto"}
	if err := writeHeader(f, sheet, style, titles); err != nil {
		return err
	}

	row := 2
	for _, c := range records.OperationalCategories {
		amount := r.Workshop.Categories[string(c)]
		if amount.IsZero() {
			continue
		}
		if err := writeRow(f, sheet, row, []interface{}{c.Name(), money(amount)}); err != nil {
			return err
		}
		row++
	}

	if err := writeRow(f, sheet, row, []interface{}{"Repuestos", money(r.Workshop.Parts)}); err != nil {
		return err
	}
	row++
	if err := writeRow(f, sheet, row, []interface{}{"Costo HH", money(r.Workshop.LaborCost)}); err != nil {
		return err
	}
	row++

	row++
	return writeRow(f, sheet, row, []interface{}{"TOTAL", money(r.Workshop.Total)})
}
