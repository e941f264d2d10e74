package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/fleet"
)

var testQuarter = config.Quarter{
	Year:   2025,
	Months: [3]time.Month{time.October, time.November, time.December},
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		coerced bool
	}{
		{"2.700.000", "2700000", false},
		{"78.384", "78384", false},
		{"1.234,56", "1234.56", false},
		{"12,5", "12.5", false},
		{"$ 595.000", "595000", false},
		{"35000", "35000", false},
		{"8.5", "8.5", false},
		{"", "0", false},
		{"-", "0", false},
		{"no aplica", "0", true},
	}
	for _, tc := range cases {
		got, coerced := parseAmount(tc.in)
		if !got.Equal(mustDec(tc.want)) || coerced != tc.coerced {
			t.Errorf("parseAmount(%q) = %s, %v; want %s, %v", tc.in, got, coerced, tc.want, tc.coerced)
		}
	}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseSpanishDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"31 dic 2025", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), true},
		{"1 oct. 2025", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), true},
		{"15 mayo 2025", time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC), true},
		{"31 xyz 2025", time.Time{}, false},
		{"sin fecha", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := parseSpanishDate(tc.in)
		if ok != tc.ok || (ok && !got.Equal(tc.want)) {
			t.Errorf("parseSpanishDate(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestProductionReader(t *testing.T) {
	path := writeFixture(t, "reportes.csv",
		"FECHA REPORTE,MAQUINA_FULL,vc_Tipo_Unidad,vc_Unidades,vc_Precio_Unidades,CONTRATO_TXT\n"+
			"05/12/2025,[CT-10 HKDX21] CAMION TOLVA,HR,\"8\",\"35000\",301 ARIDOS\n"+
			"15/07/2025,CT-10 CAMION TOLVA,HR,\"4\",\"35000\",301 ARIDOS\n"+
			"05/12/2025,SIN DATOS,HR,\"4\",\"35000\",301 ARIDOS\n"+
			"10/11/2025,EX 16 EXCAVADORA,MT3,\"1.234,5\",\"1800\",302 MOVIMIENTO TIERRA\n")

	r := NewProductionReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	rows, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Rows != 4 || stats.Loaded != 2 || stats.SkippedNoMachine != 1 || stats.SkippedOutOfPeriod != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.MachineCode != "CT-10 HKDX21" {
		t.Fatalf("MachineCode = %q", first.MachineCode)
	}
	if !first.Quantity.Equal(mustDec("8")) || !first.UnitPrice.Equal(mustDec("35000")) {
		t.Fatalf("first row numbers = %s, %s", first.Quantity, first.UnitPrice)
	}

	second := rows[1]
	if second.MachineCode != "EX-16" {
		t.Fatalf("MachineCode = %q, want spaced code joined", second.MachineCode)
	}
	if !second.Quantity.Equal(mustDec("1234.5")) {
		t.Fatalf("Quantity = %s, want 1234.5", second.Quantity)
	}
}

func TestLaborReader(t *testing.T) {
	path := writeFixture(t, "horas.csv",
		"FECHA_SALIDA,MAQUINA,MECANICO,TIPO_ORDEN,HORAS HOMBRE\n"+
			"\"31 dic 2025\",CT-10 CAMION TOLVA,JUAN PEREZ,CORRECTIVA,\"3,5\"\n"+
			"\"15 ago 2025\",CT-10 CAMION TOLVA,JUAN PEREZ,PREVENTIVA,\"2\"\n")

	r := NewLaborReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 1 || stats.SkippedOutOfPeriod != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if out[0].MachineCode != "CT-10" || !out[0].Hours.Equal(mustDec("3.5")) {
		t.Fatalf("entry = %+v", out[0])
	}
	if out[0].Worker != "JUAN PEREZ" || out[0].OrderType != "CORRECTIVA" {
		t.Fatalf("entry = %+v", out[0])
	}
}

func TestPartsReaderFallsBackToAssignment(t *testing.T) {
	path := writeFixture(t, "bodega.csv",
		"Fecha Salida,Centro Costo(Salida),Nombre,Cantidad,Precio,Total,Asignado A\n"+
			"03/10/2025,CT-10 CAMION TOLVA,FILTRO ACEITE,2,\"22.500\",\"45.000\",PEDRO\n"+
			"07/10/2025,BODEGA GENERAL,NEUMATICO,1,\"180.000\",,EX 16 EXCAVADORA\n"+
			"09/10/2025,BODEGA GENERAL,GRASA,1,\"5.000\",\"5.000\",SIN ASIGNAR\n")

	r := NewPartsReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 2 || stats.SkippedNoMachine != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if out[0].MachineCode != "CT-10" || !out[0].Total.Equal(mustDec("45000")) {
		t.Fatalf("first part = %+v", out[0])
	}
	// Total derived from quantity x price when the export leaves it blank.
	if out[1].MachineCode != "EX-16" || !out[1].Total.Equal(mustDec("180000")) {
		t.Fatalf("second part = %+v", out[1])
	}
}

func TestPartsReaderKeepsWorkshopRows(t *testing.T) {
	path := writeFixture(t, "bodega.csv",
		"Fecha Salida,Centro Costo(Salida),Nombre,Cantidad,Precio,Total,Asignado A\n"+
			"03/10/2025,TALLER CENTRAL,SOLDADURA,4,\"20.000\",\"80.000\",MAESTRANZA\n"+
			"05/10/2025,BODEGA GENERAL,GUANTES,2,\"3.000\",\"6.000\",taller maestranza\n"+
			"09/10/2025,BODEGA GENERAL,GRASA,1,\"5.000\",\"5.000\",SIN ASIGNAR\n")

	r := NewPartsReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 2 || stats.SkippedNoMachine != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if out[0].MachineCode != "TALLER CENTRAL" || !out[0].Total.Equal(mustDec("80000")) {
		t.Fatalf("workshop part = %+v", out[0])
	}
	// A workshop name in the assignment column counts too, uppercased.
	if out[1].MachineCode != "TALLER MAESTRANZA" {
		t.Fatalf("second part = %+v", out[1])
	}
}

func TestLaborReaderKeepsWorkshopRows(t *testing.T) {
	path := writeFixture(t, "horas.csv",
		"FECHA_SALIDA,MAQUINA,MECANICO,TIPO_ORDEN,HORAS HOMBRE\n"+
			"\"10 nov 2025\",TALLER,DIEGO SOTO,INTERNA,\"6\"\n"+
			"\"12 nov 2025\",SIN MAQUINA,DIEGO SOTO,INTERNA,\"2\"\n")

	r := NewLaborReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 1 || stats.SkippedNoMachine != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if out[0].MachineCode != "TALLER" || !out[0].Hours.Equal(mustDec("6")) {
		t.Fatalf("workshop hours = %+v", out[0])
	}
}

func TestLeaseReaderStripsVAT(t *testing.T) {
	path := writeFixture(t, "leasing.csv",
		"ESTADO LEASSING;CODIGO INT;MONTO cuota Leasing;BANCO\n"+
			"VIGENTE;CT-10;\"595.000\";BCI\n"+
			"TERMINADO;EX-16;\"238.000\";SANTANDER\n")

	r := NewLeaseReader(fleet.NewNormalizer(nil), mustDec("1.19"), zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if !out[0].MonthlyInstallment.Equal(mustDec("500000")) {
		t.Fatalf("net installment = %s, want 595000/1.19 = 500000", out[0].MonthlyInstallment)
	}
	if !out[0].Active() {
		t.Fatal("VIGENTE lease should be active")
	}
	if out[1].Active() {
		t.Fatal("TERMINADO lease should not be active")
	}
}

func TestLedgerReaderCarriesState(t *testing.T) {
	path := writeFixture(t, "camiones.csv",
		"C.Costo;;CT-10 CAMION TOLVA;;;;;;;;;;;\n"+
			"Cuenta;;401010101 Combustibles y lubricantes;;;;;;;;;;;\n"+
			"5;diciembre;;;;;;;;COMPRA DIESEL;120.000;;;\n"+
			"7;diciembre;;;;;;;;ABONO PROVEEDOR;50.000;30.000;;\n"+
			"3;julio;;;;;;;;FUERA DE PERIODO;10.000;;;\n"+
			"Cuenta;;401010103 Repuestos;;;;;;;;;;;\n"+
			"12;noviembre;;;;;;;;KIT EMBRAGUE;240.000;;;\n")

	r := NewLedgerReader(fleet.NewNormalizer(nil), testQuarter, zap.NewNop())
	out, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Loaded != 4 || stats.SkippedOutOfPeriod != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	first := out[0]
	if first.MachineCode != "CT-10" || first.AccountCode != "401010101" {
		t.Fatalf("first = %+v", first)
	}
	if !first.Amount.Equal(mustDec("120000")) || first.IsIncome {
		t.Fatalf("first = %+v", first)
	}
	if first.Memo != "COMPRA DIESEL" {
		t.Fatalf("Memo = %q", first.Memo)
	}
	if first.Date.Day() != 5 || first.Date.Month() != time.December || first.Date.Year() != 2025 {
		t.Fatalf("Date = %v", first.Date)
	}

	// A line with both amounts yields an expense and an income entry.
	if out[1].IsIncome || !out[1].Amount.Equal(mustDec("50000")) {
		t.Fatalf("loss entry = %+v", out[1])
	}
	if !out[2].IsIncome || !out[2].Amount.Equal(mustDec("30000")) {
		t.Fatalf("gain entry = %+v", out[2])
	}

	// Account state switches on the next Cuenta line.
	last := out[3]
	if last.AccountCode != "401010103" || !last.Amount.Equal(mustDec("240000")) {
		t.Fatalf("last = %+v", last)
	}
	if last.Origin != "camiones.csv" {
		t.Fatalf("Origin = %q", last.Origin)
	}
}

func TestContractReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precios.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"CONTRATO_TXT", "TIPO_CONTRATO", "PRECIO_HORA", "PRECIO_KM", "PRECIO_MT3", "PRECIO_VUELTA", "PRECIO_DIARIO"}
	rows := [][]interface{}{
		{"301 ARIDOS", "Km , Hr", 35000, 2500, "No hay datos", "", ""},
		{"302 MOVIMIENTO TIERRA", "Mt3", "", "", 1800, "", ""},
		{"900 SIN PRECIO", "?", "No hay datos", "No hay datos", "No hay datos", "No hay datos", "No hay datos"},
		{"301 ARIDOS", "Km , Hr", 99999, 9999, "", "", ""},
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	r := NewContractReader(zap.NewNop())
	catalog, stats, err := r.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Total != 3 || stats.Rows != 4 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Hybrid != 1 || stats.WithoutPrice != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	p, ok := catalog.Lookup("301 ARIDOS")
	if !ok || !p.Hour.Equal(mustDec("35000")) {
		t.Fatalf("first row should win, got %+v", p)
	}
	if _, ok := catalog.Lookup("900 SIN PRECIO"); !ok {
		t.Fatal("unpriced contract should still be present")
	}
}
