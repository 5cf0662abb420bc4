package monthly_close

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// monthAbbrev are the Spanish month abbreviations used in the period
// quantity column name.
var monthAbbrev = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Period is the calendar month being closed.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidPeriod, s)
	}

	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Period{}, fmt.Errorf("%w: year %q is not a number", ErrInvalidPeriod, parts[0])
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q is not a number", ErrInvalidPeriod, parts[1])
	}

	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidPeriod, month)
	}
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}

	return Period{Year: year, Month: month}, nil
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// QtyColumn is the name of the period quantity column, e.g. "Mar-qty-2024".
func (p Period) QtyColumn() string {
	return fmt.Sprintf("%s-qty-%04d", monthAbbrev[p.Month-1], p.Year)
}

// First is midnight UTC on the first day of the period.
func (p Period) First() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// TrailingWindow returns the half-open range [start, end) of the trailing
// aggregate: twelve months before the first of the period up to the first of
// the following month.
func (p Period) TrailingWindow() (start, end time.Time) {
	first := p.First()
	return first.AddDate(0, -12, 0), first.AddDate(0, 1, 0)
}

// Contains reports whether d falls inside the trailing window.
func (p Period) Contains(d time.Time) bool {
	start, end := p.TrailingWindow()
	return !d.Before(start) && d.Before(end)
}
