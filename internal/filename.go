package internal

import (
	"regexp"
	"strconv"
	"time"
)

// Years outside this window are considered implausible capture dates and
// rejected at every resolution tier.
const (
	minPlausibleYear = 1970
	maxPlausibleYear = 2100
)

func plausibleYear(t time.Time) bool {
	return t.Year() >= minPlausibleYear && t.Year() <= maxPlausibleYear
}

// Files whose names carry a date but no time get a fixed midday placeholder
// instead of midnight, so a chronological sort does not pile them up on the
// day boundary.
const (
	placeholderHour = 12
)

type datePattern struct {
	re    *regexp.Regexp
	parse func(m []string) (time.Time, bool)
}

// Tried in order, first match wins.
var datePatterns = []datePattern{
	// 2023-05-02 or 2023-05-02_14-30-00 (also "T"/" " separators and ":" in time)
	{
		regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})(?:[_T ](\d{2})[-:.](\d{2})[-:.](\d{2}))?`),
		parseDashedDate,
	},
	// 20230502_143000 contiguous digits
	{
		regexp.MustCompile(`(\d{8})_(\d{6})`),
		parseCompactDateTime,
	},
	// Messaging apps: IMG-20230502-WA0001, IMG_20230502_143000
	{
		regexp.MustCompile(`(?i)IMG[-_](\d{8})[-_]`),
		parseCompactDate,
	},
}

var digitRun = regexp.MustCompile(`\d+`)

// ParseFilenameDate extracts a best-guess capture date from a file base
// name (extension already stripped). After the explicit patterns it falls
// back to any run of exactly 8 digits that forms a valid calendar date.
// That catch-all can false-positive on serial numbers that happen to look
// like dates; the behavior is deliberate and documented.
func ParseFilenameDate(base string) (time.Time, bool) {
	for _, pat := range datePatterns {
		m := pat.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		if t, ok := pat.parse(m); ok {
			return t, true
		}
	}
	for _, run := range digitRun.FindAllString(base, -1) {
		if len(run) != 8 {
			continue
		}
		if t, ok := dateFromDigits(run, placeholderHour, 0, 0); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDashedDate(m []string) (time.Time, bool) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, min, sec := placeholderHour, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		min, _ = strconv.Atoi(m[5])
		sec, _ = strconv.Atoi(m[6])
	}
	return buildDate(year, month, day, hour, min, sec)
}

func parseCompactDateTime(m []string) (time.Time, bool) {
	hour, _ := strconv.Atoi(m[2][0:2])
	min, _ := strconv.Atoi(m[2][2:4])
	sec, _ := strconv.Atoi(m[2][4:6])
	return dateFromDigits(m[1], hour, min, sec)
}

func parseCompactDate(m []string) (time.Time, bool) {
	return dateFromDigits(m[1], placeholderHour, 0, 0)
}

func dateFromDigits(yyyymmdd string, hour, min, sec int) (time.Time, bool) {
	year, _ := strconv.Atoi(yyyymmdd[0:4])
	month, _ := strconv.Atoi(yyyymmdd[4:6])
	day, _ := strconv.Atoi(yyyymmdd[6:8])
	return buildDate(year, month, day, hour, min, sec)
}

// buildDate validates the calendar fields by round-tripping through
// time.Date, which normalizes overflow (e.g. month 13, day 32).
func buildDate(year, month, day, hour, min, sec int) (time.Time, bool) {
	if year < minPlausibleYear || year > maxPlausibleYear {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day ||
		t.Hour() != hour || t.Minute() != min || t.Second() != sec {
		return time.Time{}, false
	}
	return t, true
}
