package match

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	crerr "github.com/cockroachdb/errors"
)

const DateLayout = "2006-01-02"

// CurrentWeek returns Monday..Sunday of the week containing now, evaluated in now's location.
func CurrentWeek(now time.Time) DateRange {
	today := civil.DateOf(now)
	// time.Weekday starts at Sunday=0; shift so Monday=0.
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDays(-offset)
	return DateRange{
		From: monday,
		To:   monday.AddDays(6),
	}
}

// WeekAfter returns the Monday..Sunday range n weeks after r.From's week.
func WeekAfter(r DateRange, n int) DateRange {
	from := r.From.AddDays(7 * n)
	return DateRange{From: from, To: from.AddDays(6)}
}

// ParseDate accepts YYYY-MM-DD and RFC 3339 timestamps. Timestamps are moved into
// loc before the calendar date is taken.
func ParseDate(raw string, loc *time.Location) (civil.Date, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return civil.Date{}, crerr.New("date is empty")
	}
	if loc == nil {
		loc = time.UTC
	}

	if d, err := civil.ParseDate(value); err == nil {
		return d, nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		ts, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return civil.DateOf(ts.In(loc)), nil
		}
	}

	return civil.Date{}, crerr.Newf("unsupported date %q", value)
}
