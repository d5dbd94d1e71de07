package match

import (
	"errors"
	"fmt"
)

var (
	ErrFetch         = errors.New("schedule fetch failed")
	ErrEmptySchedule = errors.New("schedule response body is empty")
	ErrParse         = errors.New("schedule spreadsheet parse failed")
	ErrCache         = errors.New("schedule cache unavailable")
)

// FetchError is returned when the upstream calendar request fails. StatusCode is
// zero when no HTTP response was received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status=%d: %v", ErrFetch, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrFetch, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError is returned when the spreadsheet cannot be mapped onto matches.
// Row is zero for workbook-level failures.
type ParseError struct {
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("%s: cell %s%d: %v", ErrParse, e.Column, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s: column %q: %v", ErrParse, e.Column, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrParse, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
