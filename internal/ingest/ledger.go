package ingest

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/fleet"
	"github.com/harchamaq/informes/internal/records"
)

// LedgerReader loads the accounting report exports. These files are not
// tabular: cost-center and account header lines interleave with entry lines,
// so they are parsed line by line carrying the current cost center and
// account as state.
type LedgerReader struct {
	normalizer *fleet.Normalizer
	quarter    config.Quarter
	logger     *zap.Logger
}

func NewLedgerReader(n *fleet.Normalizer, quarter config.Quarter, logger *zap.Logger) *LedgerReader {
	return &LedgerReader{normalizer: n, quarter: quarter, logger: logger}
}

// ReadDir reads every ledger CSV in a directory, in name order, and
// concatenates their entries. The file name is recorded as each entry's
// origin so workshop files can be told apart later.
func (r *LedgerReader) ReadDir(dir string) ([]records.OperationalExpense, LoadStats, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("scanning ledger directory: %w", err)
	}
	sort.Strings(matches)

	var (
		out   []records.OperationalExpense
		stats LoadStats
	)
	for _, path := range matches {
		entries, s, err := r.Read(path)
		if err != nil {
			return nil, stats, err
		}
		out = append(out, entries...)
		stats.Rows += s.Rows
		stats.Loaded += s.Loaded
		stats.SkippedNoMachine += s.SkippedNoMachine
		stats.SkippedOutOfPeriod += s.SkippedOutOfPeriod
		stats.Coerced += s.Coerced
	}
	return out, stats, nil
}

var accountCodePattern = regexp.MustCompile(`^(\d+)`)

// Read parses one ledger file. Expense lines yield one entry for the loss
// amount and, when present, a second income-flagged entry for the gain.
func (r *LedgerReader) Read(path string) ([]records.OperationalExpense, LoadStats, error) {
	f, err := openUTF8(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("reading ledger export: %w", err)
	}
	defer f.Close()

	origin := filepath.Base(path)

	var (
		out   []records.OperationalExpense
		stats LoadStats

		machineCode string
		costCenter  string
		accountCode string
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ";")
		if len(fields) == 0 {
			continue
		}

		switch {
		case strings.Contains(fields[0], "C.Costo"):
			costCenter = firstNonEmpty(fields[1:])
			machineCode, _ = r.normalizer.Normalize(costCenter)
			continue
		case strings.Contains(fields[0], "Cuenta"):
			account := firstNonEmpty(fields[1:])
			if m := accountCodePattern.FindStringSubmatch(account); m != nil {
				accountCode = m[1]
			}
			continue
		}

		if len(fields) <= 5 {
			continue
		}

		date, ok := r.entryDate(fields)
		if !ok {
			continue
		}
		stats.Rows++
		if !r.quarter.Contains(date) {
			stats.SkippedOutOfPeriod++
			continue
		}

		code := machineCode
		if code == "" {
			code = costCenter
		}
		if code == "" {
			stats.SkippedNoMachine++
			continue
		}

		memo := entryMemo(fields)
		loss, gain := entryAmounts(fields)

		if loss.IsPositive() {
			out = append(out, records.OperationalExpense{
				MachineCode: code,
				Date:        date,
				AccountCode: accountCode,
				Memo:        memo,
				Amount:      loss,
				Origin:      origin,
			})
			stats.Loaded++
		}
		if gain.IsPositive() {
			out = append(out, records.OperationalExpense{
				MachineCode: code,
				Date:        date,
				AccountCode: accountCode,
				Memo:        memo,
				Amount:      gain,
				IsIncome:    true,
				Origin:      origin,
			})
			stats.Loaded++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading ledger export: %w", err)
	}

	logStats(r.logger, "ledger", path, stats)
	return out, stats, nil
}

// entryDate recognizes entry lines by their leading day number and a Spanish
// month name within the first few columns. The ledger omits the year, which
// comes from the reporting quarter.
func (r *LedgerReader) entryDate(fields []string) (time.Time, bool) {
	day := strings.TrimSpace(fields[0])
	if day == "" || !isDigits(day) {
		return time.Time{}, false
	}

	limit := len(fields)
	if limit > 8 {
		limit = 8
	}
	for _, field := range fields[1:limit] {
		month, ok := spanishMonth(field)
		if !ok {
			continue
		}
		d, _ := parseAmount(day)
		t := time.Date(r.quarter.Year, month, int(d.IntPart()), 0, 0, 0, 0, time.UTC)
		// Overflowed days roll the date into the next month.
		if t.Month() != month {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// entryMemo picks the first descriptive column of an entry line.
func entryMemo(fields []string) string {
	limit := len(fields)
	if limit > 14 {
		limit = 14
	}
	for i := 9; i < limit; i++ {
		s := strings.TrimSpace(fields[i])
		if s == "" {
			continue
		}
		if !isNumericLike(s) {
			return s
		}
	}
	return ""
}

// entryAmounts scans the amount columns: the first positive value is the loss
// side of the entry, the second the gain side.
func entryAmounts(fields []string) (loss, gain decimal.Decimal) {
	for i := 10; i < len(fields); i++ {
		amount, _ := parseAmount(fields[i])
		if !amount.IsPositive() {
			continue
		}
		if loss.IsZero() {
			loss = amount
			continue
		}
		gain = amount
		break
	}
	return loss, gain
}

func firstNonEmpty(fields []string) string {
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			return s
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isNumericLike(s string) bool {
	stripped := strings.NewReplacer(".", "", ",", "", "-", "").Replace(s)
	return stripped != "" && isDigits(stripped)
}
