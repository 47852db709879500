package evidence

import (
	"regexp"
	"strconv"
	"time"
)

// A pattern family matches one filename convention and knows how to build a
// timestamp from the capture groups. Families are tried strictly in order
// and the first one that matches and validates wins; the order is a
// tie-break policy, with the bare-year fallback deliberately last.
type patternFamily struct {
	name  string
	re    *regexp.Regexp
	build func(groups []string) (time.Time, bool)
}

var patternFamilies = []patternFamily{
	{
		name:  "IMG/MOV_yyyyMMdd_HHmmss",
		re:    regexp.MustCompile(`(?i)(?:IMG|MOV)_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`),
		build: buildDateTime,
	},
	{
		name:  "yyyyMMdd_HHmmss",
		re:    regexp.MustCompile(`(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`),
		build: buildDateTime,
	},
	{
		name:  "yyyy-MM-dd HH-mm-ss",
		re:    regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})[\s_-](\d{2})[-_](\d{2})[-_](\d{2})`),
		build: buildDateTime,
	},
	{
		name:  "yyyyMMdd",
		re:    regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),
		build: buildDateNoon,
	},
	{
		name:  "yyyy-MM-dd",
		re:    regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`),
		build: buildDateNoon,
	},
	{
		name:  "Screenshot pattern",
		re:    regexp.MustCompile(`(?i)screenshot[\s_-](\d{4})[-_](\d{2})[-_](\d{2})[\s_-]at[\s_-](\d{1,2})[.\-_](\d{2})[.\-_](\d{2})`),
		build: buildDateTime,
	},
	{
		name: "Year only (approximate)",
		re:   regexp.MustCompile(`(20[0-2][0-9])`),
		build: func(groups []string) (time.Time, bool) {
			year := atoi(groups[0])
			return time.Date(year, time.January, 1, 12, 0, 0, 0, time.Local), true
		},
	},
}

// ExtractFilenameDate tries each pattern family against the filename and
// returns the timestamp from the first family whose match parses to a real
// calendar date within the accepted year range. Only the first match per
// family is considered; a family whose match fails validation falls through
// to the next family rather than scanning for a later match.
func ExtractFilenameDate(filename string) (time.Time, string, bool) {
	for _, family := range patternFamilies {
		m := family.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		dt, ok := family.build(m[1:])
		if !ok || !ValidYear(dt.Year()) {
			continue
		}
		return dt, family.name, true
	}
	return time.Time{}, "", false
}

func buildDateTime(groups []string) (time.Time, bool) {
	return makeDate(atoi(groups[0]), atoi(groups[1]), atoi(groups[2]),
		atoi(groups[3]), atoi(groups[4]), atoi(groups[5]))
}

func buildDateNoon(groups []string) (time.Time, bool) {
	return makeDate(atoi(groups[0]), atoi(groups[1]), atoi(groups[2]), 12, 0, 0)
}

// makeDate rejects component combinations that do not form a real calendar
// moment (month 13, day 32, hour 25). time.Date silently normalizes those,
// so the components are checked against the round-trip.
func makeDate(year, month, day, hour, minute, second int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	dt := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	if dt.Year() != year || dt.Month() != time.Month(month) || dt.Day() != day {
		return time.Time{}, false
	}
	return dt, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
