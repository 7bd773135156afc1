package locale

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[ T]\S.*)?$`)
	serialRe      = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	compactRe     = regexp.MustCompile(`^\d{8}$`)
	yearDotRe     = regexp.MustCompile(`^\d{4}\.\d{1,2}$`)
	excelEpoch    = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	errBadDate    = errors.New("unrecognized date")
	errBadCalDate = errors.New("date out of calendar range")
)

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

var dayFirstLayouts = []string{
	"2/1/2006", "2-1-2006", "2.1.2006",
	"2/1/2006 15:04:05", "2/1/2006 15:04", "2-1-2006 15:04:05",
	"2/1/06", "2-1-06", "2.1.06",
	"2-Jan-2006", "2/Jan/2006", "2 Jan 2006", "2-Jan-06", "2/Jan/06", "2 Jan 06",
	"2 January 2006", "2 de January de 2006",
}

var monthFirstLayouts = []string{
	"1/2/2006", "1-2-2006", "1.2.2006",
	"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 3:04:05 PM",
	"1/2/06", "1-2-06",
	"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
}

// spanishMonths maps Spanish month names and abbreviations to the English
// forms understood by time.Parse.
var spanishMonths = []struct{ es, en string }{
	{"septiembre", "September"}, {"setiembre", "September"}, {"noviembre", "November"},
	{"diciembre", "December"}, {"febrero", "February"}, {"octubre", "October"},
	{"agosto", "August"}, {"enero", "January"}, {"marzo", "March"}, {"abril", "April"},
	{"mayo", "May"}, {"junio", "June"}, {"julio", "July"},
	{"sept", "Sep"}, {"ene", "Jan"}, {"feb", "Feb"}, {"mar", "Mar"}, {"abr", "Apr"},
	{"may", "May"}, {"jun", "Jun"}, {"jul", "Jul"}, {"ago", "Aug"}, {"sep", "Sep"},
	{"set", "Sep"}, {"oct", "Oct"}, {"nov", "Nov"}, {"dic", "Dec"},
}

// ParseDate reads a date cell. time.Time values are truncated to their
// calendar day. Text is tried as ISO (YYYY-MM-DD or YYYY/MM/DD), then
// day-first, then month-first; numeric values are Excel serial days.
func ParseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, newParseError("date", v, ErrEmpty)
	case time.Time:
		if t.IsZero() {
			return time.Time{}, newParseError("date", v, ErrEmpty)
		}
		return dateOnly(t), nil
	case float64:
		return fromSerial(t, v)
	case float32:
		return fromSerial(float64(t), v)
	case int:
		return fromSerial(float64(t), v)
	case int64:
		return fromSerial(float64(t), v)
	}

	s := CellString(v)
	if s == "" {
		return time.Time{}, newParseError("date", v, ErrEmpty)
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return isoDate(m, v)
	}
	// "2025.01" is how some readers render a date cell with its day
	// dropped; it is not a serial.
	if yearDotRe.MatchString(s) {
		return time.Time{}, newParseError("date", v, errBadDate)
	}
	// Eight digits are past the last serial (9999-12-31), so read YYYYMMDD.
	if compactRe.MatchString(s) {
		t, err := time.Parse("20060102", s)
		if err != nil {
			return time.Time{}, newParseError("date", v, errBadCalDate)
		}
		return t, nil
	}
	if serialRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, newParseError("date", v, err)
		}
		return fromSerial(f, v)
	}

	text := englishMonths(s)
	if t, ok := tryLayouts(text, dayFirstLayouts); ok {
		return t, nil
	}
	t, err := parseMonthFirst(text)
	if err != nil {
		return time.Time{}, newParseError("date", v, err)
	}
	return t, nil
}

func parseMonthFirst(s string) (time.Time, error) {
	if t, ok := tryLayouts(s, monthFirstLayouts); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", errBadDate, s)
}

func tryLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func isoDate(m []string, v any) (time.Time, error) {
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 2025-02-30 into March; reject instead.
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, newParseError("date", v, errBadCalDate)
	}
	return t, nil
}

func fromSerial(f float64, v any) (time.Time, error) {
	if math.IsNaN(f) || f < 1 || f > maxExcelSerial {
		return time.Time{}, newParseError("date", v, errBadCalDate)
	}
	return excelEpoch.AddDate(0, 0, int(f)), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// englishMonths rewrites Spanish month words ("15-ene-2025",
// "3 de marzo de 2025") so the English layouts can match them. Month
// names are matched case-insensitively by time.Parse, so other words are
// left untouched.
func englishMonths(s string) string {
	fields := splitWords(s)
	changed := false
	for i, f := range fields {
		lf := strings.ToLower(f)
		for _, m := range spanishMonths {
			if lf == m.es {
				fields[i] = m.en
				changed = true
				break
			}
		}
	}
	if !changed {
		return s
	}
	return strings.Join(fields, "")
}

// splitWords splits on letter/non-letter boundaries so "15-ene-2025"
// becomes ["15" "-" "ene" "-" "2025"].
func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isASCIILetter(s[i]) != isASCIILetter(s[i-1]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
