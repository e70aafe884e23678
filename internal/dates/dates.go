// Package dates parses the loosely formatted release-date strings the
// metadata provider reports and compares them at day granularity.
package dates

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrNoDate is returned when a raw fragment does not contain a usable date
// ("TBA", empty strings, partial dates, unknown formats).
var ErrNoDate = errors.New("no parseable release date")

// Family selects which of the provider's two date formats to expect.
type Family int

const (
	// LongMonth matches movie release dates like "15 June 2024".
	LongMonth Family = iota
	// ShortMonth matches episode air dates like "12 Jun. 2024".
	ShortMonth
)

var (
	longMonthPattern  = regexp.MustCompile(`\d{1,2}\s\w{3,9}\s\d{4}`)
	shortMonthPattern = regexp.MustCompile(`\d{1,2}\s\w{3}\.?,?\s\d{4}`)
)

// Parse validates raw against the family's pattern and then parses it
// strictly. Validation happens first so malformed provider fragments
// surface as ErrNoDate instead of a parse fault. The returned time is
// truncated to day granularity in UTC.
func Parse(raw string, family Family) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	var pattern *regexp.Regexp
	var layout string
	switch family {
	case LongMonth:
		pattern = longMonthPattern
		layout = "2 January 2006"
	case ShortMonth:
		pattern = shortMonthPattern
		layout = "2 Jan 2006"
	default:
		return time.Time{}, ErrNoDate
	}

	if !pattern.MatchString(raw) {
		return time.Time{}, ErrNoDate
	}

	// The provider sometimes punctuates short months ("12 Jun. 2024",
	// "12 Jun, 2024"); strip before strict parsing.
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(raw)
	parsed, err := time.Parse(layout, cleaned)
	if err != nil {
		return time.Time{}, ErrNoDate
	}
	return Day(parsed), nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFuture reports whether d is strictly after now truncated to day
// granularity.
func IsFuture(d, now time.Time) bool {
	return Day(d).After(Day(now))
}

// DueOn reports whether d falls on the same calendar day as now.
func DueOn(d, now time.Time) bool {
	return Day(d).Equal(Day(now))
}
