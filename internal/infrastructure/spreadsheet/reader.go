package spreadsheet

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/logging"
	"github.com/xuri/excelize/v2"
)

// ColumnMapping assigns each match field to a column letter of the calendar export.
type ColumnMapping struct {
	Date       string
	Day        string
	Time       string
	HomeTeam   string
	Result     string
	AwayTeam   string
	Pitch      string
	Tournament string
	MatchID    string
	PlayType   string
}

// DefaultColumnMapping is the layout of the fotball.no arena calendar download.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Date:       "B",
		Day:        "C",
		Time:       "D",
		HomeTeam:   "E",
		Result:     "F",
		AwayTeam:   "G",
		Pitch:      "H",
		Tournament: "I",
		MatchID:    "J",
		PlayType:   "K",
	}
}

func (m ColumnMapping) normalized() ColumnMapping {
	clean := func(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
	return ColumnMapping{
		Date:       clean(m.Date),
		Day:        clean(m.Day),
		Time:       clean(m.Time),
		HomeTeam:   clean(m.HomeTeam),
		Result:     clean(m.Result),
		AwayTeam:   clean(m.AwayTeam),
		Pitch:      clean(m.Pitch),
		Tournament: clean(m.Tournament),
		MatchID:    clean(m.MatchID),
		PlayType:   clean(m.PlayType),
	}
}

func (m ColumnMapping) columns() []string {
	return []string{m.Date, m.Day, m.Time, m.HomeTeam, m.Result, m.AwayTeam, m.Pitch, m.Tournament, m.MatchID, m.PlayType}
}

type Options struct {
	// HasHeaders makes reading start at row 2.
	HasHeaders bool
	Columns    ColumnMapping
	// Location names the zone reported with each match date. Defaults to UTC.
	Location *time.Location
	Logger   *logging.Logger
}

func DefaultOptions() Options {
	return Options{
		HasHeaders: true,
		Columns:    DefaultColumnMapping(),
	}
}

type Reader struct {
	hasHeaders bool
	columns    ColumnMapping
	timezone   string
	logger     *logging.Logger
}

func NewReader(opts Options) *Reader {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{
		hasHeaders: opts.HasHeaders,
		columns:    opts.Columns.normalized(),
		timezone:   loc.String(),
		logger:     logger,
	}
}

// Parse reads every data row of the active sheet into matches, top to bottom.
func (r *Reader) Parse(ctx context.Context, body []byte) ([]match.Match, error) {
	if err := r.validateColumns(); err != nil {
		return nil, err
	}

	book, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, &match.ParseError{Err: crerr.Wrap(err, "open workbook")}
	}
	defer func() {
		if closeErr := book.Close(); closeErr != nil {
			r.logger.WarnContext(ctx, "close workbook failed", "error", closeErr)
		}
	}()

	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	if sheet == "" {
		return nil, &match.ParseError{Err: crerr.New("workbook has no active sheet")}
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, &match.ParseError{Err: crerr.Wrapf(err, "read rows of sheet %q", sheet)}
	}

	date1904 := false
	if props, err := book.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	firstRow := r.firstRow()
	lastRow := len(rows)

	out := make([]match.Match, 0, max(lastRow-firstRow+1, 0))
	for row := firstRow; row <= lastRow; row++ {
		item, err := r.readRow(book, sheet, row, date1904)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	r.logger.DebugContext(ctx, "schedule workbook parsed", "sheet", sheet, "rows", len(out))
	return out, nil
}

func (r *Reader) firstRow() int {
	if r.hasHeaders {
		return 2
	}
	return 1
}

func (r *Reader) validateColumns() error {
	for _, column := range r.columns.columns() {
		if _, err := excelize.ColumnNameToNumber(column); err != nil {
			return &match.ParseError{Column: column, Err: crerr.Wrap(err, "invalid column")}
		}
	}
	return nil
}

func (r *Reader) readRow(book *excelize.File, sheet string, row int, date1904 bool) (match.Match, error) {
	var readErr error
	text := func(column string) string {
		if readErr != nil {
			return ""
		}
		value, err := book.GetCellValue(sheet, cellName(column, row))
		if err != nil {
			readErr = &match.ParseError{Row: row, Column: column, Err: err}
			return ""
		}
		return value
	}

	date, err := r.readDate(book, sheet, row, date1904)
	if err != nil {
		return match.Match{}, err
	}

	item := match.Match{
		Date:       date,
		Day:        text(r.columns.Day),
		Time:       text(r.columns.Time),
		HomeTeam:   text(r.columns.HomeTeam),
		Result:     text(r.columns.Result),
		AwayTeam:   text(r.columns.AwayTeam),
		Pitch:      text(r.columns.Pitch),
		Tournament: text(r.columns.Tournament),
		PlayType:   text(r.columns.PlayType),
		MatchID:    text(r.columns.MatchID),
	}
	if readErr != nil {
		return match.Match{}, readErr
	}

	return item, nil
}

// readDate returns a zero match.Date for an empty cell.
func (r *Reader) readDate(book *excelize.File, sheet string, row int, date1904 bool) (match.Date, error) {
	column := r.columns.Date
	raw, err := book.GetCellValue(sheet, cellName(column, row), excelize.Options{RawCellValue: true})
	if err != nil {
		return match.Date{}, &match.ParseError{Row: row, Column: column, Err: err}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return match.Date{}, nil
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return match.Date{}, &match.ParseError{Row: row, Column: column, Err: crerr.Newf("date cell %q is not an excel serial", raw)}
	}

	ts, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return match.Date{}, &match.ParseError{Row: row, Column: column, Err: err}
	}

	return match.NewDate(civil.DateOf(ts), r.timezone), nil
}

func cellName(column string, row int) string {
	return column + strconv.Itoa(row)
}
