package match

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestDate_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date Date
		want string
	}{
		{
			name: "zoned date",
			date: NewDate(civil.Date{Year: 2023, Month: time.March, Day: 15}, "Europe/Oslo"),
			want: `{"date":"2023-03-15 00:00:00.000000","timezone_type":3,"timezone":"Europe/Oslo"}`,
		},
		{
			name: "zone defaults to UTC",
			date: NewDate(civil.Date{Year: 2024, Month: time.January, Day: 1}, ""),
			want: `{"date":"2024-01-01 00:00:00.000000","timezone_type":3,"timezone":"UTC"}`,
		},
		{
			name: "empty cell",
			date: Date{},
			want: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := sonic.Marshal(tt.date)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestMatch_MarshalJSONEmptyDateIsNull(t *testing.T) {
	t.Parallel()

	raw, err := sonic.Marshal(Match{HomeTeam: "A", MatchID: "x-1"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &got))
	require.Contains(t, got, "date")
	require.Nil(t, got["date"])
	require.Equal(t, "x-1", got["matchId"])
}

func TestDate_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Date{}.String())
	require.Equal(t, "2023-03-15", NewDate(civil.Date{Year: 2023, Month: time.March, Day: 15}, "UTC").String())
}
