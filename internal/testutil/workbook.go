// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// ScheduleRow is one data row of a fake arena calendar export, columns B..K.
type ScheduleRow struct {
	DateSerial any
	Day        string
	Time       string
	HomeTeam   string
	Result     string
	AwayTeam   string
	Pitch      string
	Tournament string
	MatchID    any
	PlayType   string
}

var scheduleHeader = []any{"Kampnr", "Dato", "Dag", "Tid", "Hjemmelag", "Resultat", "Bortelag", "Bane", "Turnering", "Kamp-ID", "Spilleform"}

// ScheduleWorkbook builds an xlsx calendar export with a header row followed by rows.
func ScheduleWorkbook(t testing.TB, rows ...ScheduleRow) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	setRow(t, f, sheet, 1, scheduleHeader)
	for i, row := range rows {
		setRow(t, f, sheet, i+2, []any{
			i + 1,
			row.DateSerial,
			row.Day,
			row.Time,
			row.HomeTeam,
			row.Result,
			row.AwayTeam,
			row.Pitch,
			row.Tournament,
			row.MatchID,
			row.PlayType,
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// SampleRows returns n deterministic rows starting on 2024-01-01 (serial 45292).
func SampleRows(n int) []ScheduleRow {
	days := []string{"mandag", "tirsdag", "onsdag", "torsdag", "fredag", "lørdag", "søndag"}
	out := make([]ScheduleRow, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ScheduleRow{
			DateSerial: 45292 + i,
			Day:        days[i%len(days)],
			Time:       "18:00",
			HomeTeam:   "Heimlag " + string(rune('A'+i)),
			AwayTeam:   "Bortelag " + string(rune('A'+i)),
			Pitch:      "Kunstgress 1",
			Tournament: "G14 1. divisjon",
			MatchID:    9100000 + i,
			PlayType:   "9er",
		})
	}
	return out
}

func setRow(t testing.TB, f *excelize.File, sheet string, row int, values []any) {
	t.Helper()
	for i, value := range values {
		if value == nil || value == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
}
