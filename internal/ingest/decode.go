// Package ingest reads the five administrative exports the quarterly report
// is built from. The files come from different systems with different
// encodings, delimiters and numeric conventions; every reader here normalizes
// them into the record types and counts what it had to skip or coerce.
package ingest

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/harchamaq/informes/internal/records"
)

// LoadStats reports what a reader did with its source file.
type LoadStats struct {
	Rows               int `json:"rows"`
	Loaded             int `json:"loaded"`
	SkippedNoMachine   int `json:"skipped_no_machine"`
	SkippedOutOfPeriod int `json:"skipped_out_of_period"`
	Coerced            int `json:"coerced"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// openUTF8 opens an export saved as UTF-8, stripping the BOM the reporting
// tools prepend.
func openUTF8(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	head := make([]byte, 3)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, err
	}
	if n == 3 && bytes.Equal(head, utf8BOM) {
		return f, nil
	}
	return &prefixedReadCloser{r: io.MultiReader(bytes.NewReader(head[:n]), f), c: f}, nil
}

type prefixedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (p *prefixedReadCloser) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *prefixedReadCloser) Close() error               { return p.c.Close() }

// readLatinCSV loads a Windows-1252 encoded export into a dataframe.
func readLatinCSV(path string, delimiter rune) (dataframe.DataFrame, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	df := dataframe.ReadCSV(charmap.Windows1252.NewDecoder().Reader(f),
		dataframe.WithDelimiter(delimiter),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	return df, f.Close, df.Err
}

// readCSV loads a UTF-8 export into a dataframe.
func readCSV(path string, delimiter rune) (dataframe.DataFrame, error) {
	r, err := openUTF8(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer r.Close()

	// Numeric columns arrive Chilean-formatted; type detection would read
	// "595.000" as a float, so every column loads as text.
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(delimiter),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	return df, df.Err
}

// workshopLabel returns the first candidate that names the workshop,
// uppercased, so unmatchable rows still reach the workshop bucket.
func workshopLabel(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if records.IsWorkshopLabel(c) {
			return strings.ToUpper(strings.TrimSpace(c)), true
		}
	}
	return "", false
}

func colIndex(df dataframe.DataFrame, name string) int {
	for i, n := range df.Names() {
		if strings.TrimSpace(n) == name {
			return i
		}
	}
	return -1
}

func getStr(df dataframe.DataFrame, row, col int) string {
	if col < 0 {
		return ""
	}
	s := df.Elem(row, col).String()
	if s == "NaN" {
		return ""
	}
	return strings.TrimSpace(s)
}

var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// parseAmount parses Chilean-formatted numbers: "$ 1.234.567", "1.234,56",
// "12,5". Unparseable values coerce to zero; the second return reports
// whether a coercion happened.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true
	}
	return d, false
}

var spanishMonths = map[string]time.Month{
	"ene":  time.January,
	"feb":  time.February,
	"mar":  time.March,
	"abr":  time.April,
	"may":  time.May,
	"jun":  time.June,
	"jul":  time.July,
	"ago":  time.August,
	"sep":  time.September,
	"sept": time.September,
	"oct":  time.October,
	"nov":  time.November,
	"dic":  time.December,
}

// spanishMonth resolves a Spanish month token, abbreviated or full,
// with or without a trailing period.
func spanishMonth(token string) (time.Month, bool) {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	if m, ok := spanishMonths[t]; ok {
		return m, true
	}
	if len(t) > 3 {
		if m, ok := spanishMonths[t[:3]]; ok {
			return m, true
		}
	}
	return 0, false
}

// parseDate parses "dd/mm/yyyy" dates, tolerating single-digit day and month.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseSpanishDate parses dates written as "31 dic 2025" or "31 dic. 2025".
func parseSpanishDate(raw string) (time.Time, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	day, badDay := parseAmount(fields[0])
	month, okMonth := spanishMonth(fields[1])
	year, badYear := parseAmount(fields[2])
	if badDay || !okMonth || badYear {
		return time.Time{}, false
	}
	d := int(day.IntPart())
	y := int(year.IntPart())
	if d < 1 || d > 31 || y < 2000 {
		return time.Time{}, false
	}
	return time.Date(y, month, d, 0, 0, 0, 0, time.UTC), true
}
