package match

import (
	"cloud.google.com/go/civil"
	sonic "github.com/bytedance/sonic"
)

// Match represents one scheduled match read from the arena calendar export.
type Match struct {
	Date       Date   `json:"date"`
	Day        string `json:"day"`
	Time       string `json:"time"`
	HomeTeam   string `json:"homeTeam"`
	Result     string `json:"result"`
	AwayTeam   string `json:"awayTeam"`
	Pitch      string `json:"pitch"`
	Tournament string `json:"tournament"`
	PlayType   string `json:"playType"`
	MatchID    string `json:"matchId"`
}

// timezoneTypeIdentifier marks Timezone as an IANA zone name.
const timezoneTypeIdentifier = 3

// Date is the calendar date of a match together with the venue's zone name.
// A zero Date means the date cell was empty.
type Date struct {
	Civil    civil.Date
	Timezone string
}

// NewDate pairs a calendar date with an IANA zone name such as "Europe/Oslo".
func NewDate(d civil.Date, timezone string) Date {
	return Date{Civil: d, Timezone: timezone}
}

func (d Date) IsZero() bool {
	return d.Civil.IsZero()
}

// String returns the date as YYYY-MM-DD, or "" when the cell was empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Civil.String()
}

type dateObject struct {
	Date         string `json:"date"`
	TimezoneType int    `json:"timezone_type"`
	Timezone     string `json:"timezone"`
}

// MarshalJSON writes the object the schedule table reads, e.g.
// {"date":"2023-03-15 00:00:00.000000","timezone_type":3,"timezone":"Europe/Oslo"}.
// An empty date cell becomes null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	timezone := d.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	return sonic.Marshal(dateObject{
		Date:         d.Civil.String() + " 00:00:00.000000",
		TimezoneType: timezoneTypeIdentifier,
		Timezone:     timezone,
	})
}

// DateRange is an inclusive calendar range. From <= To is expected but not enforced.
type DateRange struct {
	From civil.Date `json:"from"`
	To   civil.Date `json:"to"`
}

const cacheKeyPrefix = "matches-"

// CacheKey derives the cache key for a range, e.g. "matches-2024-01-01-2024-01-07".
func CacheKey(r DateRange) string {
	return cacheKeyPrefix + r.From.String() + "-" + r.To.String()
}
