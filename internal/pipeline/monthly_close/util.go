package monthly_close

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Thousands grouping for each decimal convention: 1,234,567.8 and 1.234.567,8.
var (
	pointGrouping = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)
	commaGrouping = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+(,\d*)?$`)
)

// numberFormat is the decimal convention of a source. The zero value reads
// a decimal point.
type numberFormat struct {
	decimalComma bool
}

// parse reads a cell as a float. Separators only count as thousands when
// they group digits by three; "1,5" under a decimal point is not a number.
// ok is false for blank or non-numeric cells.
func (nf numberFormat) parse(raw string) (v float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if nf.decimalComma {
		// "1.5" without grouping is still read as one and a half.
		if commaGrouping.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Contains(s, ",") {
		if !pointGrouping.MatchString(s) {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// float is parse with failures coerced to zero.
func (nf numberFormat) float(raw string) float64 {
	f, _ := nf.parse(raw)
	return f
}

// component parses a day, month or year cell. Anything that is not an
// integral number is null.
func (nf numberFormat) component(raw string) NullInt {
	f, ok := nf.parse(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return NullInt{}
	}
	return NullInt{Int: int(f), Valid: true}
}

// composeDate builds a calendar date from its components. Combinations that
// time.Date would normalize (day 31 of a 30-day month) are rejected.
func composeDate(year, month, day NullInt) (time.Time, bool) {
	if !year.Valid || !month.Valid || !day.Valid {
		return time.Time{}, false
	}
	if year.Int < 1 || year.Int > 9999 || month.Int < 1 || month.Int > 12 || day.Int < 1 {
		return time.Time{}, false
	}

	d := time.Date(year.Int, time.Month(month.Int), day.Int, 0, 0, 0, 0, time.UTC)
	if d.Year() != year.Int || int(d.Month()) != month.Int || d.Day() != day.Int {
		return time.Time{}, false
	}
	return d, true
}

// cellAt returns the trimmed cell at idx, or "" when the row is short.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
