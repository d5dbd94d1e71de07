package match

import (
	"context"

	"cloud.google.com/go/civil"
)

// ScheduleSource downloads the raw arena calendar workbook for a venue.
type ScheduleSource interface {
	FetchSchedule(ctx context.Context, stadiumID int, from, to civil.Date) ([]byte, error)
}

// ScheduleParser turns a raw calendar workbook into matches in row order.
type ScheduleParser interface {
	Parse(ctx context.Context, body []byte) ([]Match, error)
}
