package spreadsheet

import (
	"context"
	"errors"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReader_Parse_ReturnsRowsInOrder(t *testing.T) {
	t.Parallel()

	rows := testutil.SampleRows(3)
	rows[1].Result = "2 - 1"
	body := testutil.ScheduleWorkbook(t, rows...)

	got, err := NewReader(DefaultOptions()).Parse(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, "2024-01-01", got[0].Date.String())
	require.Equal(t, "2024-01-02", got[1].Date.String())
	require.Equal(t, "2024-01-03", got[2].Date.String())

	second := got[1]
	require.Equal(t, "tirsdag", second.Day)
	require.Equal(t, "18:00", second.Time)
	require.Equal(t, "Heimlag B", second.HomeTeam)
	require.Equal(t, "2 - 1", second.Result)
	require.Equal(t, "Bortelag B", second.AwayTeam)
	require.Equal(t, "Kunstgress 1", second.Pitch)
	require.Equal(t, "G14 1. divisjon", second.Tournament)
	require.Equal(t, "9100001", second.MatchID)
	require.Equal(t, "9er", second.PlayType)
	require.Empty(t, got[0].Result)
}

func TestReader_Parse_ExcelSerialToCalendarDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		serial any
		want   string
	}{
		{name: "integer serial", serial: 45000, want: "2023-03-15"},
		{name: "serial with kickoff fraction", serial: 45000.75, want: "2023-03-15"},
		{name: "leap day", serial: 45351, want: "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body := testutil.ScheduleWorkbook(t, testutil.ScheduleRow{DateSerial: tt.serial, HomeTeam: "A", AwayTeam: "B"})
			got, err := NewReader(DefaultOptions()).Parse(context.Background(), body)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, tt.want, got[0].Date.String())
		})
	}
}

func TestReader_Parse_HeaderOnlyIsEmpty(t *testing.T) {
	t.Parallel()

	body := testutil.ScheduleWorkbook(t)
	got, err := NewReader(DefaultOptions()).Parse(context.Background(), body)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestReader_Parse_WithoutHeaders(t *testing.T) {
	t.Parallel()

	body := testutil.ScheduleWorkbook(t, testutil.SampleRows(2)...)
	opts := DefaultOptions()
	opts.HasHeaders = false

	_, err := NewReader(opts).Parse(context.Background(), body)
	// Row 1 is the header, so its "Dato" text cannot be read as a serial.
	var parseErr *match.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, parseErr.Row)
	require.Equal(t, "B", parseErr.Column)
}

func TestReader_Parse_WithoutHeadersReadsFirstRow(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 45000))
	require.NoError(t, f.SetCellValue("Sheet1", "E1", "Heimlag"))
	require.NoError(t, f.SetCellValue("Sheet1", "G1", "Bortelag"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.HasHeaders = false
	got, err := NewReader(opts).Parse(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2023-03-15", got[0].Date.String())
	require.Equal(t, "Heimlag", got[0].HomeTeam)
	require.Equal(t, "Bortelag", got[0].AwayTeam)
}

func TestReader_Parse_InvalidWorkbook(t *testing.T) {
	t.Parallel()

	_, err := NewReader(DefaultOptions()).Parse(context.Background(), []byte("<html>maintenance</html>"))
	if !errors.Is(err, match.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestReader_Parse_InvalidColumnMapping(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Columns.Pitch = "1H"

	_, err := NewReader(opts).Parse(context.Background(), testutil.ScheduleWorkbook(t, testutil.SampleRows(1)...))
	var parseErr *match.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Column != "1H" {
		t.Fatalf("unexpected column in error: %q", parseErr.Column)
	}
}

func TestReader_Parse_TextDateCellFails(t *testing.T) {
	t.Parallel()

	body := testutil.ScheduleWorkbook(t, testutil.ScheduleRow{DateSerial: "15.03.2023", HomeTeam: "A"})
	_, err := NewReader(DefaultOptions()).Parse(context.Background(), body)
	var parseErr *match.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 2, parseErr.Row)
}

func TestReader_Parse_EmptyDateCellKeepsRow(t *testing.T) {
	t.Parallel()

	body := testutil.ScheduleWorkbook(t, testutil.ScheduleRow{HomeTeam: "A", AwayTeam: "B", MatchID: "x-1"})
	got, err := NewReader(DefaultOptions()).Parse(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Date.IsZero())
	require.Equal(t, "x-1", got[0].MatchID)

	raw, err := sonic.Marshal(got[0])
	require.NoError(t, err)
	var encoded map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &encoded))
	require.Contains(t, encoded, "date")
	require.Nil(t, encoded["date"])
}

func TestReader_Parse_DateCarriesLocation(t *testing.T) {
	t.Parallel()

	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Location = oslo
	body := testutil.ScheduleWorkbook(t, testutil.ScheduleRow{DateSerial: 45000, HomeTeam: "A"})

	got, err := NewReader(opts).Parse(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Europe/Oslo", got[0].Date.Timezone)

	raw, err := sonic.Marshal(got[0].Date)
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2023-03-15 00:00:00.000000","timezone_type":3,"timezone":"Europe/Oslo"}`, string(raw))
}

func TestDefaultColumnMapping(t *testing.T) {
	t.Parallel()

	m := DefaultColumnMapping()
	require.Equal(t, []string{"B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}, m.columns())
}
