package locale

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthLayout is the canonical period label format.
const MonthLayout = "2006-01"

var (
	yearMonthRe = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	monthYearRe = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	namedRe     = regexp.MustCompile(`^([A-Za-z]+)[\s\-/.]*(?:de\s+|del\s+)?(\d{4}|\d{2})$`)

	errBadMonth = errors.New("unrecognized month label")
)

// ParseMonth reads a reporting-period cell ("2025-01", "01/2025",
// "Enero 2025", "ene-25" or any date ParseDate accepts) and returns the
// first day of that month.
func ParseMonth(v any) (time.Time, error) {
	s := CellString(v)
	if s == "" {
		return time.Time{}, newParseError("month", v, ErrEmpty)
	}
	if m := yearMonthRe.FindStringSubmatch(s); m != nil {
		return monthStart(m[1], m[2], v)
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		return monthStart(m[2], m[1], v)
	}
	if m := namedRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		if mo, ok := monthNumber(m[1]); ok {
			year := m[2]
			if len(year) == 2 {
				year = "20" + year
			}
			return monthStart(year, strconv.Itoa(mo), v)
		}
	}
	d, err := ParseDate(v)
	if err != nil {
		return time.Time{}, newParseError("month", v, errBadMonth)
	}
	return MonthStart(d), nil
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthWindow returns the half-open range [start, next) covering t's month.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := MonthStart(t)
	return start, start.AddDate(0, 1, 0)
}

func monthStart(year, month string, v any) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, newParseError("month", v, err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, newParseError("month", v, err)
	}
	if m < 1 || m > 12 {
		return time.Time{}, newParseError("month", v, fmt.Errorf("%w: month %d", errBadMonth, m))
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), nil
}

func monthNumber(name string) (int, bool) {
	en := englishMonths(strings.ToLower(name))
	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, en); err == nil {
			return int(t.Month()), true
		}
	}
	return 0, false
}
