// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month int // 1-12
}

// NewPeriod builds a period, normalizing months outside 1-12 into the
// neighbouring years.
func NewPeriod(year, month int) Period {
	return FromIndex(year*constants.MonthsPerYear + month - 1)
}

// FromIndex is the inverse of Period.Index.
func FromIndex(index int) Period {
	year := index / constants.MonthsPerYear
	month := index % constants.MonthsPerYear
	if month < 0 {
		month += constants.MonthsPerYear
		year--
	}
	return Period{Year: year, Month: month + 1}
}

// ParsePeriod parses a "2006-01" formatted string.
func ParsePeriod(date string) (Period, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", date, err)
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// MustParsePeriod parses a period and panics on error. This is intended for use
// in tests where the date string is known to be valid.
func MustParsePeriod(date string) Period {
	p, err := ParsePeriod(date)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Index returns the absolute month count of the period, suitable for ordering
// and differences.
func (p Period) Index() int {
	return p.Year*constants.MonthsPerYear + p.Month - 1
}

// Offset returns the period the given number of months later (or earlier for
// negative values).
func (p Period) Offset(months int) Period {
	return FromIndex(p.Index() + months)
}

// MonthsUntil returns the integer month difference from p to other; it is
// negative when other precedes p.
func (p Period) MonthsUntil(other Period) int {
	return other.Index() - p.Index()
}

// Before reports whether p is strictly before other.
func (p Period) Before(other Period) bool {
	return p.Index() < other.Index()
}

// After reports whether p is strictly after other.
func (p Period) After(other Period) bool {
	return p.Index() > other.Index()
}

// Equal reports whether both periods denote the same month.
func (p Period) Equal(other Period) bool {
	return p.Index() == other.Index()
}

// String formats the period using DateTimeLayout.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Time returns the first instant of the period in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}
